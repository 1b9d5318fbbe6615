package lillydap

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the small structured-logging surface the rest of the package
// calls against, mirroring the teacher's internal/logging.Logger
// interface shape so call sites stay decoupled from the concrete backend.
// The default implementation wraps zerolog; a caller that already has its
// own zerolog.Logger can wrap it directly with NewLogger.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
	With(kv ...any) Logger
}

type zeroLogger struct {
	z zerolog.Logger
}

// NewLogger wraps a zerolog.Logger as a Logger.
func NewLogger(z zerolog.Logger) Logger { return &zeroLogger{z: z} }

// NewDefaultLogger returns a zerolog JSON logger with timestamps writing to
// w (stderr when w is nil). It sets no minimum level of its own, so Debug
// events are written too unless zerolog's global level filters them.
func NewDefaultLogger(w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}
	z := zerolog.New(w).With().Timestamp().Logger()
	return NewLogger(z)
}

func (l *zeroLogger) event(level zerolog.Level, msg string, kv []any) {
	e := l.z.WithLevel(level)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}

func (l *zeroLogger) Debug(msg string, kv ...any) { l.event(zerolog.DebugLevel, msg, kv) }
func (l *zeroLogger) Info(msg string, kv ...any)  { l.event(zerolog.InfoLevel, msg, kv) }
func (l *zeroLogger) Warn(msg string, kv ...any)  { l.event(zerolog.WarnLevel, msg, kv) }
func (l *zeroLogger) Error(msg string, kv ...any) { l.event(zerolog.ErrorLevel, msg, kv) }

func (l *zeroLogger) With(kv ...any) Logger {
	ctx := l.z.With()
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, kv[i+1])
	}
	return &zeroLogger{z: ctx.Logger()}
}

// noopLogger discards everything; used as Structural's zero-value logger
// so a Connection never needs a nil check before logging.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any)    {}
func (noopLogger) Info(string, ...any)     {}
func (noopLogger) Warn(string, ...any)     {}
func (noopLogger) Error(string, ...any)    {}
func (n noopLogger) With(...any) Logger    { return n }
