package omegabot

import (
	"context"
	"time"
	"unicode"

	"github.com/slack-go/slack"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// callInstruments counts calls and errors and records the duration of the methods of a decorated
// interface. Instruments are named <interface>_<suffix> with the method as an attribute
type callInstruments struct {
	calls  metric.Int64Counter
	errs   metric.Int64Counter
	timing metric.Int64Histogram
	attrs  map[string]metric.MeasurementOption
}

func newCallInstruments(interfaceName string, appName string, meter metric.Meter, methods ...string) (ci *callInstruments, err error) {
	ci = &callInstruments{attrs: make(map[string]metric.MeasurementOption)}

	if ci.calls, err = meter.Int64Counter(instrumentName(interfaceName, "Calls")); err != nil {
		return nil, err
	}

	if ci.errs, err = meter.Int64Counter(instrumentName(interfaceName, "Errors")); err != nil {
		return nil, err
	}

	if ci.timing, err = meter.Int64Histogram(instrumentName(interfaceName, "ProcessingTimeMillis"), metric.WithUnit("ms")); err != nil {
		return nil, err
	}

	for _, m := range methods {
		ci.attrs[m] = metric.WithAttributes(attribute.String("name", appName), attribute.String("method", m))
	}

	return ci, nil
}

func instrumentName(interfaceName string, suffix string) string {
	n := []rune(interfaceName + "_" + suffix)
	n[0] = unicode.ToLower(n[0])

	return string(n)
}

// record is meant to be deferred with the start time of a call and a pointer to its error result
func (ci *callInstruments) record(method string, since time.Time, err *error) {
	attrs := ci.attrs[method]
	if *err != nil {
		ci.errs.Add(context.Background(), 1, attrs)
	}

	ci.calls.Add(context.Background(), 1, attrs)
	ci.timing.Record(context.Background(), time.Since(since).Milliseconds(), attrs)
}

// chatDriverWithTelemetry implements ChatDriver with all methods wrapped with call metrics
type chatDriverWithTelemetry struct {
	base ChatDriver
	*callInstruments
}

// newChatDriverWithTelemetry returns a ChatDriver decorated with timing and count metrics
func newChatDriverWithTelemetry(base ChatDriver, appName string, meter metric.Meter) (cd *chatDriverWithTelemetry, err error) {
	ci, err := newCallInstruments("ChatDriver", appName, meter, "SendMessage", "DeleteMessage")
	if err != nil {
		return nil, err
	}

	return &chatDriverWithTelemetry{base: base, callInstruments: ci}, nil
}

// SendMessage implements ChatDriver
func (d *chatDriverWithTelemetry) SendMessage(channelID string, options ...slack.MsgOption) (rChannelID string, rTimestamp string, rText string, err error) {
	defer d.record("SendMessage", time.Now(), &err)

	return d.base.SendMessage(channelID, options...)
}

// DeleteMessage implements ChatDriver
func (d *chatDriverWithTelemetry) DeleteMessage(channelID string, timestamp string) (rChannelID string, rTimestamp string, err error) {
	defer d.record("DeleteMessage", time.Now(), &err)

	return d.base.DeleteMessage(channelID, timestamp)
}
