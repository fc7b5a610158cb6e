// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package capture opens the session capture sink: a file receiving a
// copy of everything the serial line sends, exactly as read and before
// any console-side filtering. The file extension selects a streaming
// encoder, so long console logs can be captured compressed without a
// separate pipeline step.
package capture

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Create opens (and truncates) the capture file at path. A ".zst",
// ".gz", or ".lz4" extension wraps the file in the matching streaming
// encoder; any other name captures raw bytes. Close flushes the
// encoder's final frame before closing the file, so captures survive a
// normal session end intact.
func Create(path string) (io.WriteCloser, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create capture file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst":
		encoder, err := zstd.NewWriter(file, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("capture zstd encoder: %w", err)
		}
		return &encodedSink{encoder: encoder, file: file}, nil
	case ".gz":
		return &encodedSink{encoder: gzip.NewWriter(file), file: file}, nil
	case ".lz4":
		return &encodedSink{encoder: lz4.NewWriter(file), file: file}, nil
	default:
		return file, nil
	}
}

// encodedSink couples a streaming encoder with its backing file so a
// single Close flushes the trailing frame and then closes the file.
type encodedSink struct {
	encoder io.WriteCloser
	file    *os.File
}

func (s *encodedSink) Write(p []byte) (int, error) {
	return s.encoder.Write(p)
}

func (s *encodedSink) Close() error {
	if err := s.encoder.Close(); err != nil {
		s.file.Close()
		return fmt.Errorf("flush capture encoder: %w", err)
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("close capture file: %w", err)
	}
	return nil
}
