package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// badgerLogger routes badger's printf-style logging into slog. Badger's info
// chatter goes to debug.
type badgerLogger struct {
	logger *slog.Logger
}

func (b badgerLogger) log(level slog.Level, format string, args ...interface{}) {
	b.logger.Log(context.Background(), level, strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.log(slog.LevelError, format, args...)
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.log(slog.LevelWarn, format, args...)
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.log(slog.LevelDebug, format, args...)
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	b.log(slog.LevelDebug, format, args...)
}
