package pubsub

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/beautyops/beautyops/internal/logger"
)

// LoggerAdapter routes watermill's logs through the application logger
type LoggerAdapter struct {
	log    *logger.Logger
	fields watermill.LogFields
}

// NewLoggerAdapter wraps log for use by watermill components
func NewLoggerAdapter(log *logger.Logger) watermill.LoggerAdapter {
	return &LoggerAdapter{log: log}
}

func (a *LoggerAdapter) keysAndValues(fields watermill.LogFields) []interface{} {
	merged := a.fields.Add(fields)
	kv := make([]interface{}, 0, len(merged)*2)
	for k, v := range merged {
		kv = append(kv, k, v)
	}
	return kv
}

func (a *LoggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Errorw(msg, append(a.keysAndValues(fields), "error", err)...)
}

func (a *LoggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Infow(msg, a.keysAndValues(fields)...)
}

func (a *LoggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debugw(msg, a.keysAndValues(fields)...)
}

// Trace is folded into debug
func (a *LoggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debugw(msg, a.keysAndValues(fields)...)
}

func (a *LoggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &LoggerAdapter{log: a.log, fields: a.fields.Add(fields)}
}
