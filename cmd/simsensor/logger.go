// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger writes human-readable text to a terminal and JSON lines
// everywhere else.
func newLogger(level slog.Level) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

// newFileLogger writes JSON lines to path, rotating at 64 MB and
// keeping three old files. The returned closer closes the current file.
func newFileLogger(path string, level slog.Level) (*slog.Logger, io.Closer) {
	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    64,
		MaxBackups: 3,
		Compress:   true,
	}
	return slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})), writer
}
