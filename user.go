package omegabot

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/omega-numworks/omegabot/config"
	"github.com/slack-go/slack"
	"github.com/spf13/viper"
)

const (
	userInfoCacheSizeDisabledValue = 0
)

// UserInfoFinder defines the interface for finding a slack user's info
type UserInfoFinder interface {
	GetUserInfo(userID string) (user *slack.User, err error)
}

// selfInfoFinder defines the interface for finding our own identity once connected
type selfInfoFinder interface {
	GetInfo() (info *slack.Info)
}

// cachingUserInfoFinder loads user infos from a loader and keeps them in an ARC cache
type cachingUserInfoFinder struct {
	loader UserInfoFinder
	logger SLogger
	cache  *lru.ARCCache
}

// NewCachingUserInfoFinder creates a new UserInfoFinder caching results of loader when config.UserInfoCacheSizeKey
// is greater than zero
func NewCachingUserInfoFinder(v *viper.Viper, loader UserInfoFinder, logger SLogger) (uf UserInfoFinder, err error) {
	cuf := &cachingUserInfoFinder{loader: loader, logger: logger}

	cs := v.GetInt(config.UserInfoCacheSizeKey)
	if cs < userInfoCacheSizeDisabledValue {
		return nil, fmt.Errorf("Invalid user info cache size [%d], must be zero (disabled) or positive", cs)
	}

	if cs > userInfoCacheSizeDisabledValue {
		cuf.cache, err = lru.NewARC(cs)
		if err != nil {
			return nil, err
		}
	}

	return cuf, nil
}

// GetUserInfo gets the user info from cache or from the loader on a miss
func (c *cachingUserInfoFinder) GetUserInfo(userID string) (u *slack.User, err error) {
	if c.cache == nil {
		return c.loader.GetUserInfo(userID)
	}

	if cached, exists := c.cache.Get(userID); exists {
		c.logger.Debugf("User info for [%s] found in cache\n", userID)

		user, ok := cached.(slack.User)
		if !ok {
			return nil, fmt.Errorf("Error converting cached value for user id [%s]", userID)
		}

		return &user, nil
	}

	c.logger.Debugf("User info for [%s] not in cache, loading it\n", userID)
	u, err = c.loader.GetUserInfo(userID)
	if err != nil {
		return nil, err
	}

	c.cache.Add(userID, *u)

	return u, nil
}

// isBot returns true if the user is a bot
func isBot(finder UserInfoFinder, userID string) (bot bool, err error) {
	u, err := finder.GetUserInfo(userID)
	if err != nil {
		return false, err
	}

	return u.IsBot, nil
}
