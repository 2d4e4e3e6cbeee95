package omegabot

import (
	"fmt"
	"log"
)

// SLogger is the omegabot logging interface. It is injected in plugins so they log
// the same way the engine does
type SLogger interface {
	Printf(format string, v ...interface{})

	Debugf(format string, v ...interface{})
}

type sLogger struct {
	logger *log.Logger
	debug  bool
}

// NewSLogger creates a new SLogger writing to logger. Debug lines are only written when debug is true
func NewSLogger(logger *log.Logger, debug bool) (l *sLogger) {
	return &sLogger{logger: logger, debug: debug}
}

// Debugf logs a debug line when debug is enabled
func (sl *sLogger) Debugf(format string, v ...interface{}) {
	if sl.debug {
		sl.logger.Output(2, fmt.Sprintf(format, v...))
	}
}

// Printf logs a line
func (sl *sLogger) Printf(format string, v ...interface{}) {
	sl.logger.Output(2, fmt.Sprintf(format, v...))
}
