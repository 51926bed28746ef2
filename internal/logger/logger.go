package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/samvad-hq/samvad-request-kit/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DefaultWidth           = 120
	DefaultErrorTraceDepth = 8
)

// Options configures a Logger. The zero value gives a colourised console logger at debug level
// writing to stderr.
type Options struct {
	Level   string
	JSON    bool
	NoColor bool
	Width   int
	// TraceDepth bounds frames rendered for non-error levels. ErrorTraceDepth does the same for Error.
	TraceDepth      int
	ErrorTraceDepth int
	Output          zapcore.WriteSyncer
}

// Logger is the logging facade shared by the request handler and the CLI runtime.
type Logger struct {
	z               *zap.Logger
	traceDepth      int
	errorTraceDepth int
}

// Process-wide logger, created on first use.
var std atomic.Pointer[Logger]

// New builds a Logger from opts.
func New(opts Options) *Logger {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.ErrorTraceDepth <= 0 {
		opts.ErrorTraceDepth = DefaultErrorTraceDepth
	}
	if opts.TraceDepth < 0 {
		opts.TraceDepth = 0
	}
	out := opts.Output
	if out == nil {
		out = zapcore.Lock(os.Stderr)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.StacktraceKey = ""

	var encoder zapcore.Encoder
	if opts.JSON {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoderCfg.EncodeLevel = emojiLevelEncoder(!opts.NoColor)
		encoder = widthEncoder{Encoder: zapcore.NewConsoleEncoder(encoderCfg), width: opts.Width}
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), parseLevel(opts.Level))
	return &Logger{
		z:               zap.New(core),
		traceDepth:      opts.TraceDepth,
		errorTraceDepth: opts.ErrorTraceDepth,
	}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{z: zap.NewNop(), errorTraceDepth: DefaultErrorTraceDepth}
}

// Init builds the process-wide logger from config and installs it as the default. Entries go to
// out, or to stderr when out is nil, so they never mix with a command's output.
func Init(cfg *config.Config, out io.Writer) (*Logger, error) {
	opts := Options{}
	if out != nil {
		opts.Output = zapcore.AddSync(out)
	}
	if cfg != nil {
		opts.Level = cfg.LogLevel
		opts.JSON = strings.EqualFold(cfg.LogFormat, "json")
		opts.NoColor = !cfg.LogColor
	}
	l := New(opts)
	std.Store(l)
	return l, nil
}

// Default returns the process-wide logger, creating it with default options on first use.
func Default() *Logger {
	if l := std.Load(); l != nil {
		return l
	}
	std.CompareAndSwap(nil, New(Options{}))
	return std.Load()
}

// Close flushes the process-wide logger.
func Close() error {
	l := std.Load()
	if l == nil {
		return nil
	}
	return l.Sync()
}

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func (l *Logger) Sync() error {
	if l == nil || l.z == nil {
		return nil
	}
	if err := l.z.Sync(); err != nil && !isIgnorableSyncErr(err) {
		return err
	}
	return nil
}

// Zap exposes the underlying zap logger.
func (l *Logger) Zap() *zap.Logger {
	if l == nil || l.z == nil {
		return zap.NewNop()
	}
	return l.z
}

func (l *Logger) Info(msg string)    { l.log(zapcore.InfoLevel, msg, nil, nil) }
func (l *Logger) Debug(msg string)   { l.log(zapcore.DebugLevel, msg, nil, nil) }
func (l *Logger) Warning(msg string) { l.log(zapcore.WarnLevel, msg, nil, nil) }

// Error logs msg with an optional cause. When trace is nil the caller's stack is captured.
func (l *Logger) Error(msg string, cause error, trace []uintptr) {
	if trace == nil {
		trace = CaptureTrace(1)
	}
	l.log(zapcore.ErrorLevel, msg, cause, trace)
}

func (l *Logger) log(level zapcore.Level, msg string, cause error, trace []uintptr) {
	if l == nil || l.z == nil {
		return
	}
	ce := l.z.Check(level, "")
	if ce == nil {
		return
	}
	depth := l.traceDepth
	if level >= zapcore.ErrorLevel {
		depth = l.errorTraceDepth
	}

	lines := []string{msg}
	if cause != nil {
		lines = append(lines, "cause: "+cause.Error())
	}
	lines = append(lines, formatTrace(trace, depth)...)
	ce.Message = strings.Join(lines, "\n")
	ce.Write()
}

// Minimal object logging helpers -------------------------------------------------
// These log the given object as a structured field named `key`.

func InfoObj(msg, key string, obj interface{})  { Default().InfoObj(msg, key, obj) }
func DebugObj(msg, key string, obj interface{}) { Default().DebugObj(msg, key, obj) }
func WarnObj(msg, key string, obj interface{})  { Default().WarnObj(msg, key, obj) }
func ErrorObj(msg, key string, obj interface{}) { Default().ErrorObj(msg, key, obj) }

func (l *Logger) InfoObj(msg, key string, obj interface{}) {
	l.Zap().Info(msg, zap.Any(key, obj))
}

func (l *Logger) DebugObj(msg, key string, obj interface{}) {
	l.Zap().Debug(msg, zap.Any(key, obj))
}

func (l *Logger) WarnObj(msg, key string, obj interface{}) {
	l.Zap().Warn(msg, zap.Any(key, obj))
}

func (l *Logger) ErrorObj(msg, key string, obj interface{}) {
	l.Zap().Error(msg, zap.Any(key, obj))
}

// Package-level facade over Default().

func Info(msg string)    { Default().Info(msg) }
func Debug(msg string)   { Default().Debug(msg) }
func Warning(msg string) { Default().Warning(msg) }

func Error(msg string, cause error, trace []uintptr) {
	if trace == nil {
		trace = CaptureTrace(1)
	}
	Default().Error(msg, cause, trace)
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func isIgnorableSyncErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "invalid argument") || strings.Contains(msg, "inappropriate ioctl")
}
