package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Rotator implements io.Writer and handles log file rotation based on size.
type Rotator struct {
	Filename   string
	MaxSize    int64 // Bytes
	MaxBackups int
	file       *os.File
	size       int64
	mu         sync.Mutex
}

// Options configures the process logger.
type Options struct {
	Level      string // debug, info, warn, error
	Pretty     bool   // human-readable console output instead of JSON
	Filename   string // empty disables the log file
	MaxSizeMB  int64
	MaxBackups int
}

// Setup builds the structured logger, writing to stdout and, when a file is
// configured, to a size-rotated log file. It also replaces the zerolog global
// logger so packages logging before injection share the same sinks.
// The returned closer releases the log file and is safe to call without one.
func Setup(opts Options) (zerolog.Logger, io.Closer) {
	zerolog.SetGlobalLevel(parseLevel(opts.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	var console io.Writer = os.Stdout
	if opts.Pretty {
		console = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	out := console
	var closer io.Closer = nopCloser{}
	if opts.Filename != "" {
		rotator := NewRotator(opts.Filename, opts.MaxSizeMB, opts.MaxBackups)
		if err := rotator.openExistingOrNew(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file, using stdout only: %v\n", err)
		} else {
			// MultiWriter writes to both stdout and the rotator
			out = io.MultiWriter(console, rotator)
			closer = rotator
		}
	}

	l := zerolog.New(out).
		With().
		Timestamp().
		Caller().
		Logger()
	log.Logger = l
	return l, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewRotator creates a Rotator; the file is opened on first write.
func NewRotator(filename string, maxSizeMB int64, maxBackups int) *Rotator {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	if maxBackups < 1 {
		maxBackups = 1
	}
	return &Rotator{
		Filename:   filename,
		MaxSize:    maxSizeMB * 1024 * 1024,
		MaxBackups: maxBackups,
	}
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (r *Rotator) openExistingOrNew() error {
	info, err := os.Stat(r.Filename)
	if os.IsNotExist(err) {
		return r.openNew()
	}
	if err != nil {
		return err
	}

	// File exists, open it in append mode
	f, err := os.OpenFile(r.Filename, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	r.file = f
	r.size = info.Size()
	return nil
}

func (r *Rotator) openNew() error {
	f, err := os.OpenFile(r.Filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	r.file = f
	r.size = 0
	return nil
}

// Write satisfies the io.Writer interface. It checks size and rotates if needed.
func (r *Rotator) Write(p []byte) (n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	writeLen := int64(len(p))

	if r.file == nil {
		if err = r.openExistingOrNew(); err != nil {
			return 0, err
		}
	}

	if r.size+writeLen > r.MaxSize {
		if err := r.rotate(); err != nil {
			// The entry is still attempted; a failed reopen is reported below.
			fmt.Fprintf(os.Stderr, "Log rotation failed: %v\n", err)
		}
	}

	if r.file == nil {
		return 0, fmt.Errorf("log file %s is not open", r.Filename)
	}

	n, err = r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// Close closes the underlying file.
func (r *Rotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// rotate closes the current file, renames backups, and opens a new file.
func (r *Rotator) rotate() error {
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}

	// Rename old backups
	// Example: log.2 -> log.3, log.1 -> log.2, log -> log.1
	for i := r.MaxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", r.Filename, i)
		newPath := fmt.Sprintf("%s.%d", r.Filename, i+1)

		// If oldPath doesn't exist, skip
		if _, err := os.Stat(oldPath); os.IsNotExist(err) {
			continue
		}

		// If newPath exists, it will be overwritten
		os.Rename(oldPath, newPath)
	}

	// Rename current log to .1
	if _, err := os.Stat(r.Filename); err == nil {
		os.Rename(r.Filename, fmt.Sprintf("%s.1", r.Filename))
	}

	return r.openNew()
}
