package omegabot

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	newMsgType      = "new"
	deleteMsgType   = "delete"
	reactionMsgType = "reaction"
)

// instrumenter holds the core and plugin instruments
type instrumenter struct {
	appName       string
	coreMetrics   coreMetrics
	pluginMetrics map[string]pluginMetrics
	meter         metric.Meter
}

// coreMetrics holds the engine's instruments
type coreMetrics struct {
	msgsSeen                   metric.Int64Counter
	msgsProcessed              metric.Int64Counter
	msgProcessingLatencyMillis metric.Int64Histogram
	msgDispatchLatencyMillis   metric.Int64Histogram
	slackLatencyMillis         metric.Int64Gauge
}

// pluginMetrics holds the instruments of a single plugin
type pluginMetrics struct {
	processingTimeMillis metric.Int64Histogram
	answerCount          metric.Int64Counter
	attrs                metric.MeasurementOption
}

// newInstrumenter creates all core instruments and the instruments of every plugin
func newInstrumenter(appName string, meter metric.Meter, plugins []*Plugin) (ins *instrumenter, err error) {
	ins = &instrumenter{appName: appName, meter: meter, pluginMetrics: make(map[string]pluginMetrics)}

	if ins.coreMetrics.msgsSeen, err = meter.Int64Counter("msgSeen", metric.WithDescription("Messages and reactions received")); err != nil {
		return nil, err
	}

	if ins.coreMetrics.msgsProcessed, err = meter.Int64Counter("msgProcessed", metric.WithDescription("Events processed by type")); err != nil {
		return nil, err
	}

	if ins.coreMetrics.msgProcessingLatencyMillis, err = meter.Int64Histogram("msgProcessingLatencyMillis", metric.WithUnit("ms")); err != nil {
		return nil, err
	}

	if ins.coreMetrics.msgDispatchLatencyMillis, err = meter.Int64Histogram("msgDispatchLatencyMillis", metric.WithUnit("ms")); err != nil {
		return nil, err
	}

	if ins.coreMetrics.slackLatencyMillis, err = meter.Int64Gauge("slackLatencyMillis", metric.WithUnit("ms")); err != nil {
		return nil, err
	}

	for _, p := range plugins {
		pm, err := newPluginMetrics(appName, p.Name, meter)
		if err != nil {
			return nil, err
		}

		ins.pluginMetrics[p.Name] = pm
	}

	return ins, nil
}

// newPluginMetrics returns the instruments of a plugin
func newPluginMetrics(appName string, pluginName string, meter metric.Meter) (pm pluginMetrics, err error) {
	if pm.answerCount, err = meter.Int64Counter("answerCount"); err != nil {
		return pm, err
	}

	if pm.processingTimeMillis, err = meter.Int64Histogram("processingTimeMillis", metric.WithUnit("ms")); err != nil {
		return pm, err
	}

	pm.attrs = metric.WithAttributes(attribute.String("name", appName), attribute.String("plugin", pluginName))

	return pm, nil
}

// nameAttrs returns the attributes identifying the bot, optionally with the type of message
func (ins *instrumenter) nameAttrs(msgType string) metric.MeasurementOption {
	if msgType == "" {
		return metric.WithAttributes(attribute.String("name", ins.appName))
	}

	return metric.WithAttributes(attribute.String("name", ins.appName), attribute.String("msgType", msgType))
}

// recordProcessed counts one processed event of msgType along with its processing duration
func (ins *instrumenter) recordProcessed(msgType string, d time.Duration) {
	ins.coreMetrics.msgsProcessed.Add(context.Background(), 1, ins.nameAttrs(msgType))
	ins.coreMetrics.msgProcessingLatencyMillis.Record(context.Background(), d.Milliseconds(), ins.nameAttrs(msgType))
}

// recordPluginAction records the processing duration of a plugin action and whether it answered
func (ins *instrumenter) recordPluginAction(pluginName string, d time.Duration, answered bool) {
	pm, ok := ins.pluginMetrics[pluginName]
	if !ok {
		return
	}

	pm.processingTimeMillis.Record(context.Background(), d.Milliseconds(), pm.attrs)
	if answered {
		pm.answerCount.Add(context.Background(), 1, pm.attrs)
	}
}

type timed func()

// measure returns the execution duration of a timed function
func measure(operation timed) (d time.Duration) {
	before := time.Now()

	operation()

	return time.Since(before)
}
