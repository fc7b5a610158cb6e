// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package session resolves how a microterm session behaves: which
// device to open, at what speed, how newlines are sent, how transmit
// pacing works, which byte ends the session, and where output is
// captured.
//
// Settings arrive stringly (command-line flags, a profiles file, or
// built-in defaults) and are merged with a fixed precedence before
// Resolve turns them into the typed values the relay consumes.
// Resolution happens once, before the session starts; the relay never
// parses anything.
package session

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Settings is one source's view of the session options. The zero value
// of a field means "not set here"; Merge layers sources.
type Settings struct {
	// Device is the serial device, either a full path or a bare name
	// resolved under /dev.
	Device string `yaml:"device"`

	// Speed is the line speed in bits per second.
	Speed int `yaml:"speed"`

	// Newline selects what each line feed becomes on the wire: "lf",
	// "cr", "crlf", or "lfcr". Empty means no translation.
	Newline string `yaml:"newline"`

	// Delay paces transmission: bare digits or "us" for microseconds,
	// "ms" for milliseconds, or "%" for a percentage of one
	// character's transmit time. Empty means full speed.
	Delay string `yaml:"delay"`

	// Escape is the character whose control code ends the session,
	// e.g. "X" for Ctrl-X.
	Escape string `yaml:"escape"`

	// SuppressControl replaces control characters in console output
	// with "?".
	SuppressControl bool `yaml:"suppress-control"`

	// Capture mirrors serial output to this file.
	Capture string `yaml:"capture"`
}

// Defaults returns the built-in session settings.
func Defaults() Settings {
	return Settings{
		Speed:  115200,
		Escape: "X",
	}
}

// Merge returns base with every field set in overlay applied on top.
func Merge(base, overlay Settings) Settings {
	merged := base
	if overlay.Device != "" {
		merged.Device = overlay.Device
	}
	if overlay.Speed != 0 {
		merged.Speed = overlay.Speed
	}
	if overlay.Newline != "" {
		merged.Newline = overlay.Newline
	}
	if overlay.Delay != "" {
		merged.Delay = overlay.Delay
	}
	if overlay.Escape != "" {
		merged.Escape = overlay.Escape
	}
	if overlay.SuppressControl {
		merged.SuppressControl = true
	}
	if overlay.Capture != "" {
		merged.Capture = overlay.Capture
	}
	return merged
}

// Config is the resolved, typed form of the merged settings.
type Config struct {
	Device          string
	Speed           int
	Newline         []byte
	Escape          byte
	Delay           time.Duration
	SuppressControl bool
	Capture         string
}

// Resolve validates the merged settings and produces the typed
// configuration the relay and the device layer consume.
func (s Settings) Resolve() (Config, error) {
	if s.Device == "" {
		return Config{}, errors.New("no serial device given")
	}
	if s.Speed <= 0 {
		return Config{}, fmt.Errorf("invalid line speed %d", s.Speed)
	}
	newline, err := ParseNewline(s.Newline)
	if err != nil {
		return Config{}, err
	}
	escape, err := ParseEscape(s.Escape)
	if err != nil {
		return Config{}, err
	}
	delay, err := ParseDelay(s.Delay, s.Speed)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Device:          ResolveDevicePath(s.Device),
		Speed:           s.Speed,
		Newline:         newline,
		Escape:          escape,
		Delay:           delay,
		SuppressControl: s.SuppressControl,
		Capture:         s.Capture,
	}, nil
}

// ParseNewline maps a newline mode name to the byte sequence sent in
// place of each line feed. The empty string disables translation.
func ParseNewline(mode string) ([]byte, error) {
	switch mode {
	case "":
		return nil, nil
	case "lf":
		return []byte("\n"), nil
	case "cr":
		return []byte("\r"), nil
	case "crlf":
		return []byte("\r\n"), nil
	case "lfcr":
		return []byte("\n\r"), nil
	default:
		return nil, fmt.Errorf("unknown newline mode %q (choose lf, cr, crlf, or lfcr)", mode)
	}
}

// ParseEscape maps a character to its control code: "X" yields Ctrl-X
// (0x18). Characters @ through _ and ` through DEL have control
// equivalents; anything else is rejected.
func ParseEscape(char string) (byte, error) {
	if len(char) != 1 {
		return 0, fmt.Errorf("escape must be a single character, got %q", char)
	}
	c := char[0]
	switch {
	case c >= 0x40 && c < 0x60:
		return c - 0x40, nil
	case c >= 0x60 && c < 0x80:
		return c - 0x60, nil
	default:
		return 0, fmt.Errorf("escape character %q has no control equivalent", char)
	}
}

// ParseDelay parses a transmit delay. Bare digits and a "us" suffix
// are microseconds, "ms" is milliseconds, and "%" is a percentage of
// one character's transmit time at the given line speed (a character
// costs nine bit times on the wire). The empty string disables
// pacing.
func ParseDelay(value string, speed int) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}

	digits := value
	unit := ""
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			digits, unit = value[:i], value[i:]
			break
		}
	}
	n, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid delay %q", value)
	}

	switch unit {
	case "", "us":
		return time.Duration(n) * time.Microsecond, nil
	case "ms":
		return time.Duration(n) * time.Millisecond, nil
	case "%":
		if speed <= 0 {
			return 0, fmt.Errorf("relative delay %q needs a line speed", value)
		}
		characterTime := 9 * time.Second / time.Duration(speed)
		return time.Duration(n) * characterTime / 100, nil
	default:
		return 0, fmt.Errorf("invalid delay %q (use us, ms, or %%)", value)
	}
}

// ResolveDevicePath expands a bare device name under /dev. Anything
// containing a path separator passes through unchanged.
func ResolveDevicePath(name string) string {
	if name == "" || strings.ContainsRune(name, '/') {
		return name
	}
	return "/dev/" + name
}
