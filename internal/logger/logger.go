package logger

import (
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Logger struct {
	*logrus.Entry
}

// Options override the ENVIRONMENT and LOG_LEVEL variables.
type Options struct {
	Level       string
	Environment string
	Output      io.Writer
}

var (
	mu       sync.RWMutex
	defaults Options
)

// Configure sets the options used by every later New call.
func Configure(o Options) {
	mu.Lock()
	defer mu.Unlock()
	defaults = o
}

func current() Options {
	mu.RLock()
	o := defaults
	mu.RUnlock()
	if o.Environment == "" {
		o.Environment = os.Getenv("ENVIRONMENT")
	}
	if o.Level == "" {
		o.Level = os.Getenv("LOG_LEVEL")
	}
	if o.Output == nil {
		o.Output = os.Stdout
	}
	return o
}

func New() *Logger {
	o := current()
	base := logrus.New()

	// Local env = pretty console; others = JSON
	if o.Environment == "" || o.Environment == "local" {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339Nano,
			ForceColors:     true,
		})
	} else {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	}

	base.SetOutput(o.Output)
	base.SetLevel(ParseLevel(o.Level))

	return &Logger{Entry: logrus.NewEntry(base)}
}

// ParseLevel maps debug, warn and error to their logrus levels; anything else
// is info.
func ParseLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// RequestID returns the caller's X-Request-ID or a fresh one.
func RequestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return uuid.New().String()
}

// WithRequest attaches request metadata and returns an entry
func (l *Logger) WithRequest(r *http.Request) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"req_id":     RequestID(r),
		"method":     r.Method,
		"path":       r.URL.Path,
		"remote_ip":  r.RemoteAddr,
		"user_agent": r.UserAgent(),
	})
}

// WithError standardizes error logging
func (l *Logger) WithError(err error) *logrus.Entry {
	if err == nil {
		return l.Entry
	}
	return l.Entry.WithField("error", err.Error())
}
