package logger

// Logger is the structured logging interface used throughout the engine.
// Log methods accept a message followed by alternating key-value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With creates a child logger whose entries always carry the given
	// key-value pairs.
	With(args ...any) Logger
}

// nopLogger discards everything. Used as the default in constructors and in
// tests that do not assert on log output.
type nopLogger struct{}

// NewNop returns a Logger that discards all output.
func NewNop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func (n nopLogger) With(...any) Logger { return n }
