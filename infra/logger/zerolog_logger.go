package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger builds a logger tagged with the given component. Output is
// JSON by default; DISPATCH_ENV=dev switches to a human-readable console
// writer and DISPATCH_LOG_LEVEL overrides the minimum level.
func NewZerologLogger(component string) Logger {
	out := zerolog.LevelWriter(zerolog.MultiLevelWriter(os.Stdout))
	if strings.ToLower(os.Getenv("DISPATCH_ENV")) == "dev" {
		out = zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	z := zerolog.New(out).With().Timestamp().Str("component", component).Logger()
	if lvl, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("DISPATCH_LOG_LEVEL"))); err == nil && lvl != zerolog.NoLevel {
		z = z.Level(lvl)
	}
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) msgf(lvl zerolog.Level, format string, args []any) {
	l.log.WithLevel(lvl).Msgf(format, args...)
}

func (l *ZerologLogger) Debugf(format string, args ...any) { l.msgf(zerolog.DebugLevel, format, args) }
func (l *ZerologLogger) Infof(format string, args ...any)  { l.msgf(zerolog.InfoLevel, format, args) }
func (l *ZerologLogger) Warnf(format string, args ...any)  { l.msgf(zerolog.WarnLevel, format, args) }
func (l *ZerologLogger) Errorf(format string, args ...any) { l.msgf(zerolog.ErrorLevel, format, args) }

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	l.log.Debug().Fields(fields).Msg(msg)
}
