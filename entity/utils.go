package entity

import (
	"github.com/heroiclabs/nakama-common/runtime"
)

func MaxIn64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// EmptyLogger discards everything, used where no Nakama logger exists.
type EmptyLogger struct{}

func (l *EmptyLogger) Debug(format string, v ...interface{}) {}
func (l *EmptyLogger) Info(format string, v ...interface{})  {}
func (l *EmptyLogger) Warn(format string, v ...interface{})  {}
func (l *EmptyLogger) Error(format string, v ...interface{}) {}
func (l *EmptyLogger) WithField(key string, v interface{}) runtime.Logger {
	return l
}
func (l *EmptyLogger) WithFields(fields map[string]interface{}) runtime.Logger {
	return l
}
func (l *EmptyLogger) Fields() map[string]interface{} {
	return map[string]interface{}{}
}
