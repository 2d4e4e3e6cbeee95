package omegabot

import (
	"time"

	"github.com/slack-go/slack"
	"go.opentelemetry.io/otel/metric"
)

// emojiReactorWithTelemetry implements EmojiReactor with all methods wrapped with call metrics
type emojiReactorWithTelemetry struct {
	base EmojiReactor
	*callInstruments
}

// newEmojiReactorWithTelemetry returns an EmojiReactor decorated with timing and count metrics
func newEmojiReactorWithTelemetry(base EmojiReactor, appName string, meter metric.Meter) (er *emojiReactorWithTelemetry, err error) {
	ci, err := newCallInstruments("EmojiReactor", appName, meter, "AddReaction", "RemoveReaction")
	if err != nil {
		return nil, err
	}

	return &emojiReactorWithTelemetry{base: base, callInstruments: ci}, nil
}

// AddReaction implements EmojiReactor
func (d *emojiReactorWithTelemetry) AddReaction(name string, item slack.ItemRef) (err error) {
	defer d.record("AddReaction", time.Now(), &err)

	return d.base.AddReaction(name, item)
}

// RemoveReaction implements EmojiReactor
func (d *emojiReactorWithTelemetry) RemoveReaction(name string, item slack.ItemRef) (err error) {
	defer d.record("RemoveReaction", time.Now(), &err)

	return d.base.RemoveReaction(name, item)
}
