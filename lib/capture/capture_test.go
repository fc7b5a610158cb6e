// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// sessionBytes is a plausible capture: boot chatter with control bytes
// that the console path would filter but the capture must keep.
var sessionBytes = []byte("U-Boot 2024.01\r\n\x1b[0mloading kernel\r\nlogin: ")

func decodeRaw(t *testing.T, r io.Reader) []byte {
	t.Helper()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read capture: %v", err)
	}
	return data
}

func decodeZstd(t *testing.T, r io.Reader) []byte {
	t.Helper()
	decoder, err := zstd.NewReader(r)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer decoder.Close()
	return decodeRaw(t, decoder)
}

func decodeGzip(t *testing.T, r io.Reader) []byte {
	t.Helper()
	decoder, err := gzip.NewReader(r)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	defer decoder.Close()
	return decodeRaw(t, decoder)
}

func decodeLZ4(t *testing.T, r io.Reader) []byte {
	t.Helper()
	return decodeRaw(t, lz4.NewReader(r))
}

func TestCreateRoundTrips(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		fileName string
		decode   func(t *testing.T, r io.Reader) []byte
	}{
		{"plain", "console.log", decodeRaw},
		{"zstd", "console.log.zst", decodeZstd},
		{"gzip", "console.log.gz", decodeGzip},
		{"lz4", "console.log.lz4", decodeLZ4},
		{"uppercase extension", "console.ZST", decodeZstd},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), test.fileName)
			sink, err := Create(path)
			if err != nil {
				t.Fatalf("Create(%s): %v", path, err)
			}

			// Write in small pieces the way the relay does, one
			// chunk per serial read.
			for _, chunk := range [][]byte{sessionBytes[:10], sessionBytes[10:]} {
				if _, err := sink.Write(chunk); err != nil {
					t.Fatalf("write capture chunk: %v", err)
				}
			}
			if err := sink.Close(); err != nil {
				t.Fatalf("close capture sink: %v", err)
			}

			file, err := os.Open(path)
			if err != nil {
				t.Fatalf("reopen capture file: %v", err)
			}
			defer file.Close()

			if got := test.decode(t, file); !bytes.Equal(got, sessionBytes) {
				t.Errorf("capture round trip = %q, want %q", got, sessionBytes)
			}
		})
	}
}

func TestCreateTruncatesExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "console.log")
	if err := os.WriteFile(path, []byte("stale previous session"), 0o644); err != nil {
		t.Fatalf("seed existing file: %v", err)
	}

	sink, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := sink.Write([]byte("new")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("file content = %q, want %q", got, "new")
	}
}

func TestCreateFailsInMissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := Create(filepath.Join(t.TempDir(), "missing", "console.log"))
	if err == nil {
		t.Fatal("Create in a missing directory should fail")
	}
}
