package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	slogmulti "github.com/samber/slog-multi"
	slogjournal "github.com/systemd/slog-journal"
)

// Options configures the process logger.
type Options struct {
	Level   string    // debug | info | warn | error (default: info)
	Stderr  io.Writer // text handler target (default: os.Stderr)
	File    string    // optional JSON log file, appended to
	Journal bool      // also send records to the systemd journal
	Pretty  bool      // human-friendly terminal output instead of logfmt
}

// ParseLevel maps a level name to an slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// New builds the process logger: a terminal handler on stderr fanned out to
// the optional JSON file and journal handlers, all behind a CorrelationHandler.
// The returned closer releases the log file; it is never nil.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	var terminal slog.Handler = slog.NewTextHandler(stderr, handlerOpts)
	if opts.Pretty {
		terminal = charmlog.NewWithOptions(stderr, charmlog.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           charmlog.Level(level),
		})
	}
	handlers := []slog.Handler{terminal}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, handlerOpts))
		closer = f
	}

	if opts.Journal {
		journal, err := slogjournal.NewHandler(&slogjournal.Options{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				a.Key = journalKey(a.Key)
				return a
			},
		})
		if err != nil {
			record := slog.NewRecord(time.Now(), slog.LevelWarn, "systemd journal unavailable", 0)
			record.Add("error", err)
			_ = terminal.Handle(context.Background(), record)
		} else {
			handlers = append(handlers, journal)
		}
	}

	return slog.New(NewCorrelationHandler(slogmulti.Fanout(handlers...))), closer, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// journalKey upper-cases a key and replaces anything outside [A-Z0-9] with
// '_', as journald field names require.
func journalKey(key string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, strings.ToUpper(key))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
