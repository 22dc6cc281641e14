// Package debug provides conditional debug logging.
//
// Logging is enabled by setting TASKTRACK_DEBUG. The value is the log file
// path, or "1" for debug.log in the working directory:
//
//	TASKTRACK_DEBUG=/tmp/tasktrack.log todo
//
// The terminal belongs to the UI, so output never goes to stdout or stderr.
// When disabled, entries are discarded.
package debug

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// EnvVar names the environment variable that enables logging.
const EnvVar = "TASKTRACK_DEBUG"

const defaultLogFile = "debug.log"

var (
	logger  = newDiscardLogger()
	enabled bool
	logFile *os.File
)

func newDiscardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.WarnLevel)
	return l
}

// Init opens the log file named by TASKTRACK_DEBUG. It is a no-op when the
// variable is unset. The returned function closes the file.
func Init() (func(), error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return func() {}, nil
	}
	if path == "1" {
		path = defaultLogFile
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return func() {}, err
	}
	SetOutput(f)
	logFile = f
	return func() {
		SetOutput(io.Discard)
		enabled = false
		logFile.Close()
		logFile = nil
	}, nil
}

// SetOutput routes debug entries to w and enables debug level. Passing
// io.Discard disables logging again.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
	enabled = w != io.Discard
	if enabled {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000000",
		})
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
}

// Enabled reports whether debug logging is on.
func Enabled() bool {
	return enabled
}

// Log writes a debug message using printf-style formatting.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Debugf(format, args...)
}

// LogTiming records how long name took.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.WithField("elapsed", d).Debugf("%s done", name)
}

// WithFields returns an entry carrying structured fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

// Warn records a problem worth keeping even when debug level is off.
func Warn(format string, args ...any) {
	logger.Warnf(format, args...)
}
