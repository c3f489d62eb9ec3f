package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

var (
	mu         sync.RWMutex
	logger     zerolog.Logger
	loggerOnce sync.Once
)

// initLogger initializes the global logger to write human-readable lines to stderr.
func initLogger() {
	loggerOnce.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339Nano
		logger = newLogger(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}, LevelInfo)
	})
}

func newLogger(w io.Writer, l Level) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger().Level(toZerolog(l))
}

// ParseLevel maps a config string ("debug", "info", "error") to a Level.
// Unknown values fall back to INFO.
func ParseLevel(s string) Level {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

func SetLevel(l Level) {
	initLogger()
	mu.Lock()
	logger = logger.Level(toZerolog(l))
	mu.Unlock()
}

// SetOutput redirects log output (JSON lines) to w. Used by tests and by
// deployments that ship logs to a collector.
func SetOutput(w io.Writer, l Level) {
	initLogger()
	mu.Lock()
	logger = newLogger(w, l)
	mu.Unlock()
}

// Logger returns the underlying zerolog logger, for components that take one.
func Logger() zerolog.Logger {
	initLogger()
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debug(msg string, kv ...any) {
	l := Logger()
	write(l.Debug(), msg, kv...)
}

func Info(msg string, kv ...any) {
	l := Logger()
	write(l.Info(), msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	l := Logger()
	write(l.Error().Err(err), msg, kv...)
}

// write attaches key-value pairs and emits the event. kv is expected as
// key, value, key, value, ...; a trailing odd value is ignored.
func write(ev *zerolog.Event, msg string, kv ...any) {
	if ev == nil {
		return
	}
	if len(kv)%2 == 1 {
		kv = kv[:len(kv)-1]
	}
	if len(kv) > 0 {
		ev = ev.Fields(kv)
	}
	ev.Msg(msg)
}

func toZerolog(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
