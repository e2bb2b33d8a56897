package logging

// NopLogger discards everything. Useful as a constructor fallback when the
// caller passes a nil logger.
type NopLogger struct{}

// NewNopLogger returns a logger that drops all entries.
func NewNopLogger() *NopLogger { return &NopLogger{} }

func (NopLogger) Debug(msg string, fields ...Field) {}
func (NopLogger) Info(msg string, fields ...Field)  {}
func (NopLogger) Warn(msg string, fields ...Field)  {}
func (NopLogger) Error(msg string, fields ...Field) {}

func (n NopLogger) With(fields ...Field) Logger { return n }
