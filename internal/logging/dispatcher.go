package logging

import "log/slog"

// DispatcherLogger adapts slog.Logger to the dispatcher.Logger interface.
// Records carry component=dispatcher.
type DispatcherLogger struct {
	logger *slog.Logger
}

// NewDispatcherLogger creates a new DispatcherLogger wrapping a slog.Logger.
func NewDispatcherLogger(logger *slog.Logger) *DispatcherLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &DispatcherLogger{logger: logger.With("component", "dispatcher")}
}

func (l *DispatcherLogger) Debug(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *DispatcherLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *DispatcherLogger) Error(msg string, keysAndValues ...any) {
	l.logger.Error(msg, keysAndValues...)
}
