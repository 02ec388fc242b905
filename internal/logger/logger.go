package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a console logger on stderr so stdout stays free for reports
func New() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

// NewWithWriter creates a new structured logger with a custom writer
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// WithVerbose lowers the level to debug when verbose is set
func WithVerbose(logger zerolog.Logger, verbose bool) zerolog.Logger {
	if verbose {
		return logger.Level(zerolog.DebugLevel)
	}
	return logger
}

// WithContext attaches the run logger to ctx. Engine and importer read it
// back with FromContext.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// FromContext returns the logger attached to ctx, or a disabled logger
func FromContext(ctx context.Context) zerolog.Logger {
	return *zerolog.Ctx(ctx)
}

// WithFields returns logger with fields added to every event
func WithFields(logger zerolog.Logger, fields map[string]interface{}) zerolog.Logger {
	return logger.With().Fields(fields).Logger()
}

// KVLogger adapts a zerolog logger to the key/value logging interface
// the API client and retry transport accept
type KVLogger struct {
	log zerolog.Logger
}

// KV wraps logger
func KV(logger zerolog.Logger) *KVLogger {
	return &KVLogger{log: logger}
}

func (l *KVLogger) Debug(msg string, keysAndValues ...interface{}) {
	emit(l.log.Debug(), msg, keysAndValues)
}

func (l *KVLogger) Info(msg string, keysAndValues ...interface{}) {
	emit(l.log.Info(), msg, keysAndValues)
}

func (l *KVLogger) Warn(msg string, keysAndValues ...interface{}) {
	emit(l.log.Warn(), msg, keysAndValues)
}

func (l *KVLogger) Error(msg string, keysAndValues ...interface{}) {
	emit(l.log.Error(), msg, keysAndValues)
}

func emit(event *zerolog.Event, msg string, keysAndValues []interface{}) {
	if event == nil {
		return
	}
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 >= len(keysAndValues) {
			event = event.Interface(key, "MISSING")
			break
		}
		if err, ok := keysAndValues[i+1].(error); ok {
			event = event.AnErr(key, err)
			continue
		}
		event = event.Interface(key, keysAndValues[i+1])
	}
	event.Msg(msg)
}
