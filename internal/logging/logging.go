// Package logging provides a singleton structured logger backed by zerolog.
//
// The TUI owns stdout, so logs go to a file (default
// ~/.aturmation/aturmation.log). Initialise once at startup with Init,
// then retrieve anywhere with Get.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls logger behaviour at initialisation time.
type Options struct {
	// Level is the minimum log level: debug, info, warn, error.
	// Defaults to "info" when empty or unrecognised.
	Level string
	// Path is the log file location. Empty selects the default under the
	// user's home directory.
	Path string
	// Output overrides the file entirely. Used by tests.
	Output io.Writer
}

var (
	instance    zerolog.Logger
	nop         = zerolog.Nop()
	once        sync.Once
	initialized bool
)

// Init initialises the singleton logger. Safe to call multiple times; only
// the first call has any effect.
func Init(opts Options) (zerolog.Logger, error) {
	var initErr error
	once.Do(func() {
		zerolog.TimeFieldFormat = time.RFC3339

		out := opts.Output
		if out == nil {
			path := opts.Path
			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					initErr = fmt.Errorf("get home dir: %w", err)
					return
				}
				path = filepath.Join(home, ".aturmation", "aturmation.log")
			}
			if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
				initErr = fmt.Errorf("create log dir: %w", err)
				return
			}
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
			if err != nil {
				initErr = fmt.Errorf("open log file: %w", err)
				return
			}
			out = f
		}

		lvl := parseLevel(opts.Level)
		instance = zerolog.New(out).
			Level(lvl).
			With().
			Timestamp().
			Logger()
		initialized = true
	})
	return instance, initErr
}

// Get returns the singleton logger. Before Init it returns a disabled
// logger so library code can log unconditionally. The pointer return
// keeps call sites chainable: zerolog's level methods have pointer
// receivers.
func Get() *zerolog.Logger {
	if !initialized {
		return &nop
	}
	return &instance
}

// Reset tears down the singleton so the next Init call rebuilds it.
// Intended for tests only.
func Reset() {
	once = sync.Once{}
	instance = zerolog.Logger{}
	initialized = false
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
