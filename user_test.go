package omegabot_test

import (
	"fmt"
	"log"
	"strings"
	"testing"

	"github.com/omega-numworks/omegabot"
	"github.com/omega-numworks/omegabot/config"
	"github.com/slack-go/slack"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingUserInfoFinder struct {
	fail  bool
	calls int
}

func (u *countingUserInfoFinder) GetUserInfo(userID string) (user *slack.User, err error) {
	u.calls++

	if u.fail {
		return nil, fmt.Errorf("Error loading user [%s]", userID)
	}

	return &slack.User{ID: userID, Name: "quentin", RealName: "Quentin Guidée"}, nil
}

func newTestLogger() omegabot.SLogger {
	var b strings.Builder
	return omegabot.NewSLogger(log.New(&b, "", 0), true)
}

func TestNewCachingUserInfoFinderWithInvalidSize(t *testing.T) {
	v := viper.New()
	v.Set(config.UserInfoCacheSizeKey, -1)

	_, err := omegabot.NewCachingUserInfoFinder(v, &countingUserInfoFinder{}, newTestLogger())

	assert.EqualError(t, err, "Invalid user info cache size [-1], must be zero (disabled) or positive")
}

func TestGetUserInfo(t *testing.T) {
	tests := map[string]struct {
		cacheSize     int
		expectedCalls int
	}{
		"CacheDisabled": {cacheSize: 0, expectedCalls: 3},
		"CacheEnabled":  {cacheSize: 10, expectedCalls: 1},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			v := viper.New()
			v.Set(config.UserInfoCacheSizeKey, tc.cacheSize)

			loader := &countingUserInfoFinder{}
			uf, err := omegabot.NewCachingUserInfoFinder(v, loader, newTestLogger())
			require.NoError(t, err)

			for i := 0; i < 3; i++ {
				user, err := uf.GetUserInfo("U0001")
				require.NoError(t, err)
				assert.Equal(t, slack.User{ID: "U0001", Name: "quentin", RealName: "Quentin Guidée"}, *user)
			}

			assert.Equal(t, tc.expectedCalls, loader.calls)
		})
	}
}

func TestGetUserInfoFailureIsNotCached(t *testing.T) {
	v := viper.New()
	v.Set(config.UserInfoCacheSizeKey, 10)

	loader := &countingUserInfoFinder{fail: true}
	uf, err := omegabot.NewCachingUserInfoFinder(v, loader, newTestLogger())
	require.NoError(t, err)

	_, err = uf.GetUserInfo("U0001")
	assert.Error(t, err)

	_, err = uf.GetUserInfo("U0001")
	assert.Error(t, err)
	assert.Equal(t, 2, loader.calls)
}
