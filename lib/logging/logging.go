// Package logging configures logrus once for all plugins and hands out per-plugin entries.
package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// LevelEnv selects the log level (debug, info, warn, error). Default info.
	LevelEnv = "LOG_LEVEL"
	// FormatEnv selects "json" output; anything else is text.
	FormatEnv = "LOG_FORMAT"
)

var setupOnce sync.Once

// Setup applies LOG_LEVEL and LOG_FORMAT to the standard logrus logger. Safe to call repeatedly.
func Setup() {
	setupOnce.Do(func() {
		configure(log.StandardLogger(), os.Getenv(LevelEnv), os.Getenv(FormatEnv))
	})
}

func configure(l *log.Logger, level, format string) {
	lvl, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		l.SetFormatter(&log.JSONFormatter{})
	} else {
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// Plugin returns an entry tagged with the plugin name.
func Plugin(name string) *log.Entry {
	Setup()
	return log.WithField("plugin", name)
}

// Request tags entry with a fresh request id plus the command and user it serves.
func Request(entry *log.Entry, command, user string) *log.Entry {
	return entry.WithFields(log.Fields{
		"request_id": uuid.NewString(),
		"command":    command,
		"user":       user,
	})
}
