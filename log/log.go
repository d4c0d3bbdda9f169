// Package log wraps logrus. Output goes to a daily file under where.Logs() and is discarded unless enabled.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/lrcshow-cli/lrcshow/filesystem"
	"github.com/lrcshow-cli/lrcshow/key"
	"github.com/lrcshow-cli/lrcshow/where"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var enabled bool

// Attach mirrors log output to w in addition to the log file, enabling logging if it was off.
// The daemon uses it for its --verbose flag.
func Attach(w io.Writer, level string) {
	if enabled {
		logrus.SetOutput(io.MultiWriter(logrus.StandardLogger().Out, w))
	} else {
		logrus.SetOutput(w)
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	enabled = true

	if parsed, err := logrus.ParseLevel(level); err == nil {
		logrus.SetLevel(parsed)
	}
}

// Setup opens today's log file when logs.write is set and applies the configured format and level.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		return nil
	}

	path := filepath.Join(where.Logs(), time.Now().Format("2006-01-02")+".log")

	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logrus.SetOutput(f)

	if viper.GetBool(key.LogsJson) {
		logrus.SetFormatter(&logrus.JSONFormatter{PrettyPrint: true})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{})
	}

	lvl := viper.GetString(key.LogsLevel)
	parsed, err := logrus.ParseLevel(lvl)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)

	return nil
}

// WithField returns an entry carrying a structured field, or a discarding entry when logging is disabled.
func WithField(key string, value any) *logrus.Entry {
	return logger().WithField(key, value)
}

var discard = &logrus.Logger{Out: io.Discard, Formatter: new(logrus.TextFormatter), Hooks: make(logrus.LevelHooks), Level: logrus.PanicLevel}

func logger() *logrus.Logger {
	if !enabled {
		return discard
	}
	return logrus.StandardLogger()
}

func Error(args ...any)                 { logger().Error(args...) }
func Errorf(format string, args ...any) { logger().Errorf(format, args...) }
func Warn(args ...any)                  { logger().Warn(args...) }
func Warnf(format string, args ...any)  { logger().Warnf(format, args...) }
func Info(args ...any)                  { logger().Info(args...) }
func Infof(format string, args ...any)  { logger().Infof(format, args...) }
func Debug(args ...any)                 { logger().Debug(args...) }
func Debugf(format string, args ...any) { logger().Debugf(format, args...) }
func Trace(args ...any)                 { logger().Trace(args...) }
func Tracef(format string, args ...any) { logger().Tracef(format, args...) }
