package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxLogMegabytes = 6
	maxLogBackups   = 3
	maxLogAgeDays   = 28
)

// newLogFileWriter returns a size-rotated writer for path, creating its
// directory when needed.
func newLogFileWriter(path string) (*lumberjack.Logger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogMegabytes,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
	}, nil
}
