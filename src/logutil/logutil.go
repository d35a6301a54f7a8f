package logutil

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileName = "screenshot_ocr_debug.log"
	maxSizeMB   = 10
	maxArchives = 3
)

// Log level names accepted by SetLevel.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

var encoderConfig = zapcore.EncoderConfig{
	TimeKey:        "ts",
	LevelKey:       "lvl",
	NameKey:        "name",
	CallerKey:      "caller",
	MessageKey:     "message",
	StacktraceKey:  "stacktrace",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.CapitalLevelEncoder,
	EncodeTime:     zapcore.RFC3339TimeEncoder,
	EncodeDuration: zapcore.SecondsDurationEncoder,
	EncodeCaller:   zapcore.ShortCallerEncoder,
}

// Setup installs the global zap logger. With file logging enabled, output
// goes to a size-rotated file (10MB, max 3 archives); otherwise to stderr.
// Stray standard library log calls are redirected to the same logger.
func Setup(enableFileLogging bool) {
	var sink zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	if enableFileLogging {
		sink = zapcore.Lock(zapcore.AddSync(newFileSink(logFileName)))
	}
	logger := zap.New(
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), sink, level),
		zap.AddCaller(),
	)
	zap.ReplaceGlobals(logger)
	zap.RedirectStdLog(logger)
}

// SetLevel changes the level of the installed logger. Unknown names fall
// back to info.
func SetLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case LevelDebug:
		level.SetLevel(zapcore.DebugLevel)
	case LevelWarn:
		level.SetLevel(zapcore.WarnLevel)
	case LevelError:
		level.SetLevel(zapcore.ErrorLevel)
	default:
		level.SetLevel(zapcore.InfoLevel)
	}
}

// Level returns the current level name.
func Level() string { return level.Level().String() }

// newFileSink returns the rotating log file writer. Archives are named by
// lumberjack with a timestamp suffix next to path.
func newFileSink(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxArchives,
	}
}

// Sanitize makes recognized text safe to log: at most 100 bytes, line
// breaks and tabs escaped, other control characters replaced.
func Sanitize(text string) string {
	const maxLogLength = 100
	truncated := false
	if len(text) > maxLogLength {
		text = text[:maxLogLength]
		truncated = true
	}

	var b strings.Builder
	for _, r := range text {
		switch {
		case r == '\n' || r == '\r':
			b.WriteString("\\n")
		case r == '\t':
			b.WriteString("\\t")
		case r < 32 || r == 127:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	if truncated {
		b.WriteString("...")
	}
	return b.String()
}
