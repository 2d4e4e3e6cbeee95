package omegabot

import (
	"time"

	"github.com/slack-go/slack"
	"go.opentelemetry.io/otel/metric"
)

// userInfoFinderWithTelemetry implements UserInfoFinder with all methods wrapped with call metrics
type userInfoFinderWithTelemetry struct {
	base UserInfoFinder
	*callInstruments
}

// newUserInfoFinderWithTelemetry returns a UserInfoFinder decorated with timing and count metrics
func newUserInfoFinderWithTelemetry(base UserInfoFinder, appName string, meter metric.Meter) (uf *userInfoFinderWithTelemetry, err error) {
	ci, err := newCallInstruments("UserInfoFinder", appName, meter, "GetUserInfo")
	if err != nil {
		return nil, err
	}

	return &userInfoFinderWithTelemetry{base: base, callInstruments: ci}, nil
}

// GetUserInfo implements UserInfoFinder
func (d *userInfoFinderWithTelemetry) GetUserInfo(userID string) (user *slack.User, err error) {
	defer d.record("GetUserInfo", time.Now(), &err)

	return d.base.GetUserInfo(userID)
}
