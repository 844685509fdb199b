package log

// NoneLogger discards all log entries. Useful as a default and in tests.
type NoneLogger struct{}

// Info implements the Logger interface.
func (l *NoneLogger) Info(_ ...any) {}

// Infof implements the Logger interface.
func (l *NoneLogger) Infof(_ string, _ ...any) {}

// Warn implements the Logger interface.
func (l *NoneLogger) Warn(_ ...any) {}

// Warnf implements the Logger interface.
func (l *NoneLogger) Warnf(_ string, _ ...any) {}

// Error implements the Logger interface.
func (l *NoneLogger) Error(_ ...any) {}

// Errorf implements the Logger interface.
func (l *NoneLogger) Errorf(_ string, _ ...any) {}

// Debug implements the Logger interface.
func (l *NoneLogger) Debug(_ ...any) {}

// Debugf implements the Logger interface.
func (l *NoneLogger) Debugf(_ string, _ ...any) {}

// WithFields implements the Logger interface.
//
//nolint:ireturn
func (l *NoneLogger) WithFields(_ ...any) Logger { return l }

// Sync implements the Logger interface.
func (l *NoneLogger) Sync() error { return nil }
