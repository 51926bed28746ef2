package publishers

// Logger is the slice of the request-kit logger that sinks write to. *logger.Logger satisfies it.
type Logger interface {
	Info(msg string)
	DebugObj(msg, key string, obj any)
	ErrorObj(msg, key string, obj any)
}

type noopLogger struct{}

func (noopLogger) Info(string)                  {}
func (noopLogger) DebugObj(string, string, any) {}
func (noopLogger) ErrorObj(string, string, any) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}
