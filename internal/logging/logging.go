package logging

import (
        "fmt"
        "io"
        "log/slog"
        "os"
        "path/filepath"
        "strings"
)

// Setup installs a JSON slog logger writing to path and returns a closer for
// the file. With an empty path, logs are discarded: the terminal belongs to the
// page view and command output.
func Setup(path string, debug bool) (*slog.Logger, func() error, error) {
        level := slog.LevelInfo
        if debug {
                level = slog.LevelDebug
        }
        opts := &slog.HandlerOptions{Level: level}

        path = strings.TrimSpace(path)
        if path == "" {
                l := slog.New(slog.NewJSONHandler(io.Discard, opts))
                slog.SetDefault(l)
                return l, func() error { return nil }, nil
        }
        if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
                return nil, nil, fmt.Errorf("create log directory: %w", err)
        }
        f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
        if err != nil {
                return nil, nil, fmt.Errorf("open log file: %w", err)
        }
        l := slog.New(slog.NewJSONHandler(f, opts)).With("pid", os.Getpid())
        slog.SetDefault(l)
        return l, f.Close, nil
}
