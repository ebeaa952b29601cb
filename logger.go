package ownership

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the package's logger.
// Lifecycle events are emitted at debug level. Passing nil restores the
// no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

func logCounter(msg string, cb *controlBlock) {
	if ce := Logger().Check(zap.DebugLevel, msg); ce != nil {
		ce.Write(
			zap.Uint64("counter", cb.ID()),
			zap.Int("owners", cb.Owners()),
			zap.Int("observers", cb.Observers()),
			zap.Uintptr("resource", cb.Resource()),
		)
	}
}

func logResource(msg, kind string, addr uintptr) {
	if ce := Logger().Check(zap.DebugLevel, msg); ce != nil {
		ce.Write(
			zap.String("handle", kind),
			zap.Uintptr("resource", addr),
		)
	}
}
