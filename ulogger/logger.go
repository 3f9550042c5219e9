// Package ulogger provides the structured logger used across the module.
// It wraps zerolog the way the rest of the stack expects: Infof/Debugf/
// Warnf/Errorf helpers, a pretty console writer for local runs (toggled by
// gocore's PRETTY_LOGS setting), and a log level chosen at construction.
package ulogger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ordishs/gocore"
	"github.com/rs/zerolog"
)

const (
	colorRed    = 31
	colorGreen  = 32
	colorYellow = 33
	colorBlue   = 34
	colorWhite  = 37
	colorBold   = 1
)

// Logger is the interface every component in this module depends on,
// never a concrete zerolog type.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

// ZLogger is the default Logger implementation.
type ZLogger struct {
	zerolog.Logger
	service string
}

// New builds a logger for the named component. If logLevel is omitted, it
// defaults to INFO, matching gocore's convention.
func New(service string, logLevel ...string) *ZLogger {
	if service == "" {
		service = "infinitynode"
	}

	var z *ZLogger
	if gocore.Config().GetBool("PRETTY_LOGS", true) {
		z = prettyLogger(service)
	} else {
		z = &ZLogger{
			Logger: zerolog.New(os.Stdout).With().
				Timestamp().
				CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + 1).
				Logger(),
			service: service,
		}
	}

	level := "INFO"
	if len(logLevel) > 0 {
		level = logLevel[0]
	}
	setLevel(level, z)

	return z
}

func setLevel(level string, z *ZLogger) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		z.Logger = z.Logger.Level(zerolog.DebugLevel)
	case "WARN":
		z.Logger = z.Logger.Level(zerolog.WarnLevel)
	case "ERROR":
		z.Logger = z.Logger.Level(zerolog.ErrorLevel)
	default:
		z.Logger = z.Logger.Level(zerolog.InfoLevel)
	}
}

func prettyLogger(service string) *ZLogger {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}

	output.FormatTimestamp = func(i interface{}) string {
		parsed, _ := time.Parse(time.RFC3339, fmt.Sprintf("%s", i))
		return parsed.Format("15:04:05")
	}

	output.FormatLevel = func(i interface{}) string {
		l := strings.ToUpper(fmt.Sprintf("%-5s", i))

		switch i {
		case "debug":
			l = colorize(l, colorBlue)
		case "info":
			l = colorize(l, colorGreen)
		case "warn":
			l = colorize(l, colorYellow)
		case "error", "fatal":
			l = colorize(l, colorRed)
		default:
			l = colorize(l, colorWhite)
		}

		return fmt.Sprintf("| %s|", l)
	}

	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("| %-14s| %s", service, i)
	}

	return &ZLogger{
		Logger: zerolog.New(output).With().
			Timestamp().
			CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + 1).
			Logger(),
		service: service,
	}
}

func (z *ZLogger) Debugf(format string, args ...interface{}) { z.Logger.Debug().Msgf(format, args...) }
func (z *ZLogger) Infof(format string, args ...interface{})  { z.Logger.Info().Msgf(format, args...) }
func (z *ZLogger) Warnf(format string, args ...interface{})  { z.Logger.Warn().Msgf(format, args...) }
func (z *ZLogger) Errorf(format string, args ...interface{}) { z.Logger.Error().Msgf(format, args...) }
func (z *ZLogger) Fatalf(format string, args ...interface{}) { z.Logger.Fatal().Msgf(format, args...) }

func colorize(s string, c int) string {
	if os.Getenv("NO_COLOR") != "" {
		return s
	}
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m", c, s)
}

var _ Logger = (*ZLogger)(nil)
