// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	t.Parallel()

	defaults := Defaults()
	if defaults.Speed != 115200 {
		t.Errorf("default speed = %d, want 115200", defaults.Speed)
	}
	if defaults.Escape != "X" {
		t.Errorf("default escape = %q, want %q", defaults.Escape, "X")
	}
	if defaults.Device != "" {
		t.Errorf("default device = %q, want empty", defaults.Device)
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	base := Settings{
		Device:  "ttyS0",
		Speed:   9600,
		Newline: "crlf",
		Escape:  "X",
	}

	tests := []struct {
		name    string
		overlay Settings
		want    Settings
	}{
		{
			name:    "empty overlay keeps base",
			overlay: Settings{},
			want:    base,
		},
		{
			name: "overlay fields win",
			overlay: Settings{
				Device: "ttyUSB0",
				Speed:  115200,
			},
			want: Settings{
				Device:  "ttyUSB0",
				Speed:   115200,
				Newline: "crlf",
				Escape:  "X",
			},
		},
		{
			name: "overlay adds unset fields",
			overlay: Settings{
				Delay:           "1ms",
				SuppressControl: true,
				Capture:         "session.log",
			},
			want: Settings{
				Device:          "ttyS0",
				Speed:           9600,
				Newline:         "crlf",
				Escape:          "X",
				Delay:           "1ms",
				SuppressControl: true,
				Capture:         "session.log",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Merge(base, tt.overlay)
			if got != tt.want {
				t.Errorf("Merge() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMergeSuppressControlSticks(t *testing.T) {
	t.Parallel()

	base := Settings{SuppressControl: true}
	got := Merge(base, Settings{})
	if !got.SuppressControl {
		t.Error("merge with empty overlay cleared SuppressControl")
	}
}

func TestParseNewline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode string
		want []byte
	}{
		{"", nil},
		{"lf", []byte("\n")},
		{"cr", []byte("\r")},
		{"crlf", []byte("\r\n")},
		{"lfcr", []byte("\n\r")},
	}

	for _, tt := range tests {
		got, err := ParseNewline(tt.mode)
		if err != nil {
			t.Errorf("ParseNewline(%q) returned error: %v", tt.mode, err)
			continue
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("ParseNewline(%q) = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestParseNewlineUnknownMode(t *testing.T) {
	t.Parallel()

	_, err := ParseNewline("unix")
	if err == nil {
		t.Fatal("ParseNewline accepted unknown mode")
	}
	if !strings.Contains(err.Error(), "unix") {
		t.Errorf("error %q does not name the rejected mode", err)
	}
}

func TestParseEscape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		char string
		want byte
	}{
		{"@", 0x00},
		{"C", 0x03},
		{"X", 0x18},
		{"[", 0x1b},
		{"_", 0x1f},
		{"`", 0x00},
		{"c", 0x03},
		{"x", 0x18},
		{"\x7f", 0x1f},
	}

	for _, tt := range tests {
		got, err := ParseEscape(tt.char)
		if err != nil {
			t.Errorf("ParseEscape(%q) returned error: %v", tt.char, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEscape(%q) = %#02x, want %#02x", tt.char, got, tt.want)
		}
	}
}

func TestParseEscapeRejects(t *testing.T) {
	t.Parallel()

	for _, char := range []string{"", "XX", "5", " ", "?", "\x1f"} {
		if _, err := ParseEscape(char); err == nil {
			t.Errorf("ParseEscape(%q) succeeded, want error", char)
		}
	}
}

func TestParseDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		speed int
		want  time.Duration
	}{
		{"", 115200, 0},
		{"0", 115200, 0},
		{"100", 115200, 100 * time.Microsecond},
		{"100us", 115200, 100 * time.Microsecond},
		{"5ms", 115200, 5 * time.Millisecond},
		// One character is nine bit times: 9e9 ns / speed.
		{"100%", 115200, 78125 * time.Nanosecond},
		{"200%", 115200, 156250 * time.Nanosecond},
		{"100%", 9600, 937500 * time.Nanosecond},
	}

	for _, tt := range tests {
		got, err := ParseDelay(tt.value, tt.speed)
		if err != nil {
			t.Errorf("ParseDelay(%q, %d) returned error: %v", tt.value, tt.speed, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDelay(%q, %d) = %v, want %v", tt.value, tt.speed, got, tt.want)
		}
	}
}

func TestParseDelayRejects(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"abc", "12xy", "12 ms", "%50", "-5", "ms"} {
		if _, err := ParseDelay(value, 115200); err == nil {
			t.Errorf("ParseDelay(%q) succeeded, want error", value)
		}
	}
}

func TestResolveDevicePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"ttyUSB0", "/dev/ttyUSB0"},
		{"/dev/pts/3", "/dev/pts/3"},
		{"./local-pty", "./local-pty"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ResolveDevicePath(tt.name); got != tt.want {
			t.Errorf("ResolveDevicePath(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	settings := Settings{
		Device:          "ttyUSB0",
		Speed:           115200,
		Newline:         "crlf",
		Delay:           "2ms",
		Escape:          "]",
		SuppressControl: true,
		Capture:         "boot.log",
	}

	config, err := settings.Resolve()
	if err != nil {
		t.Fatalf("Resolve() returned error: %v", err)
	}
	if config.Device != "/dev/ttyUSB0" {
		t.Errorf("device = %q, want /dev/ttyUSB0", config.Device)
	}
	if config.Speed != 115200 {
		t.Errorf("speed = %d, want 115200", config.Speed)
	}
	if !bytes.Equal(config.Newline, []byte("\r\n")) {
		t.Errorf("newline = %q, want \\r\\n", config.Newline)
	}
	if config.Escape != 0x1d {
		t.Errorf("escape = %#02x, want 0x1d", config.Escape)
	}
	if config.Delay != 2*time.Millisecond {
		t.Errorf("delay = %v, want 2ms", config.Delay)
	}
	if !config.SuppressControl {
		t.Error("SuppressControl not carried through")
	}
	if config.Capture != "boot.log" {
		t.Errorf("capture = %q, want boot.log", config.Capture)
	}
}

func TestResolveDefaultsAreValid(t *testing.T) {
	t.Parallel()

	settings := Merge(Defaults(), Settings{Device: "ttyS0"})
	config, err := settings.Resolve()
	if err != nil {
		t.Fatalf("Resolve() on defaults returned error: %v", err)
	}
	if config.Escape != 0x18 {
		t.Errorf("default escape = %#02x, want 0x18 (Ctrl-X)", config.Escape)
	}
	if config.Newline != nil {
		t.Errorf("default newline = %q, want none", config.Newline)
	}
	if config.Delay != 0 {
		t.Errorf("default delay = %v, want 0", config.Delay)
	}
}

func TestResolveErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		settings Settings
		wantText string
	}{
		{
			name:     "missing device",
			settings: Settings{Speed: 115200, Escape: "X"},
			wantText: "no serial device",
		},
		{
			name:     "zero speed",
			settings: Settings{Device: "ttyS0", Escape: "X"},
			wantText: "invalid line speed",
		},
		{
			name:     "bad newline",
			settings: Settings{Device: "ttyS0", Speed: 9600, Escape: "X", Newline: "unix"},
			wantText: "newline mode",
		},
		{
			name:     "bad escape",
			settings: Settings{Device: "ttyS0", Speed: 9600, Escape: "55"},
			wantText: "escape",
		},
		{
			name:     "bad delay",
			settings: Settings{Device: "ttyS0", Speed: 9600, Escape: "X", Delay: "soon"},
			wantText: "delay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.settings.Resolve()
			if err == nil {
				t.Fatal("Resolve() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("error %q does not contain %q", err, tt.wantText)
			}
		})
	}
}
