// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package console switches the local terminal between its normal
// interactive mode and the pass-through mode a serial relay needs.
//
// Pass-through mode is deliberately not full raw mode: only line
// buffering (ICANON), signal generation (ISIG), and local echo (ECHO)
// are disabled, so every keystroke reaches the relay immediately and
// exactly once. Input CR-to-NL mapping and output post-processing stay
// on, which keeps locally printed newlines rendering correctly and
// lets the Enter key arrive as a line feed for newline translation.
package console

import (
	"fmt"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// State remembers a terminal's settings so they can be put back when
// the session ends.
type State struct {
	fd    int
	saved unix.Termios
}

// Raw places the terminal on fd into pass-through mode and returns the
// previous settings. Callers must arrange for Restore to run on every
// exit path, including signals.
func Raw(fd int) (*State, error) {
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("descriptor %d is not a terminal", fd)
	}

	saved, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, fmt.Errorf("read console settings: %w", err)
	}

	mode := *saved
	mode.Lflag &^= unix.ICANON | unix.ISIG | unix.ECHO
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &mode); err != nil {
		return nil, fmt.Errorf("set console mode: %w", err)
	}

	return &State{fd: fd, saved: *saved}, nil
}

// Restore reinstates the settings captured by Raw.
func (s *State) Restore() error {
	if err := unix.IoctlSetTermios(s.fd, unix.TCSETS, &s.saved); err != nil {
		return fmt.Errorf("restore console settings: %w", err)
	}
	return nil
}
