package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// FileName is the log file created under the data directory.
	FileName = "postbox.log"

	// maxLogSize is the size at which the log file is rotated on startup (5 MB).
	maxLogSize = 5 * 1024 * 1024
	// maxLogBackups is the number of rotated files kept.
	maxLogBackups = 3
)

// Init opens <dir>/postbox.log and returns a JSON logger writing to it.
// The returned closer releases the file. The terminal belongs to the TUI,
// so nothing is ever written to stdout or stderr.
//
// When debug is true the logger uses DEBUG level and records source
// locations; otherwise it logs at INFO.
func Init(dir string, debug bool) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, FileName)
	if err := rotateIfNeeded(path); err != nil {
		return nil, nil, fmt.Errorf("rotate log file: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	return slog.New(handler), f, nil
}

// rotateIfNeeded shifts postbox.log to postbox.log.1, .1 to .2 and so on
// once the file passes maxLogSize. The oldest backup is dropped.
func rotateIfNeeded(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Size() < maxLogSize {
		return nil
	}

	for i := maxLogBackups; i >= 1; i-- {
		src := fmt.Sprintf("%s.%d", path, i)
		if i == maxLogBackups {
			os.Remove(src)
			continue
		}
		os.Rename(src, fmt.Sprintf("%s.%d", path, i+1))
	}
	return os.Rename(path, path+".1")
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError + 1,
	}))
}
