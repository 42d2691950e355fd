package xlog

import (
	"go.uber.org/zap/zapcore"
)

// AntsXLogger adapts XLogger to ants.Logger. Ants only logs
// recovered worker panics, so every line is written at error level.
type AntsXLogger struct {
	logger XLogger
}

func (l *AntsXLogger) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Logf(zapcore.ErrorLevel, format, args...)
}

func NewAntsXLogger(logger XLogger) *AntsXLogger {
	if logger == nil {
		return &AntsXLogger{}
	}
	return &AntsXLogger{logger: logger.Named("Ants")}
}
