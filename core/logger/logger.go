package logger

// Logger is the logging surface used by the scheduling core. Implementations
// live under infra/logger so the core carries no logging dependency.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
