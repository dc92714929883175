package loader

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the loader's package logger.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger installs l as the package logger. Call before constructing a
// System; a System built earlier keeps the logger it was given. Systems
// can also carry their own logger via Config.Logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		return
	}
	logger = l
	loggerOnce.Do(func() {})
}
