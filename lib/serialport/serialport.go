// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package serialport opens a serial device and places it into the raw,
// 8-bit-clean line discipline a terminal pass-through needs: no echo,
// no canonical buffering, no flow control, no parity, one stop bit.
// The configuration is written from scratch rather than patched onto
// whatever the device had before, so a port left in a strange state by
// a previous program comes up predictable.
package serialport

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Port is an open, configured serial device. The relay works on the
// raw descriptor; Port only owns opening, configuration, and closing.
type Port struct {
	fd   int
	path string
}

// Open opens the device at path and configures it for raw byte
// transfer at the given speed. The device is opened non-blocking so a
// modem line waiting for carrier cannot hang the call, then switched
// back to blocking mode once configured.
func Open(path string, speed int) (*Port, error) {
	baud, err := bits(speed)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	mode := unix.Termios{
		Iflag: unix.IGNBRK | unix.IGNPAR,
		Cflag: unix.CS8 | unix.HUPCL | unix.CLOCAL | unix.CREAD | baud,
	}
	mode.Cc[unix.VMIN] = 1
	mode.Cc[unix.VTIME] = 0

	// Drop anything queued in either direction before the new
	// discipline takes effect.
	if err := unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIOFLUSH); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("flush %s: %w", path, err)
	}
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &mode); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("configure %s: %w", path, err)
	}
	if err := unix.SetNonblock(fd, false); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("clear nonblock on %s: %w", path, err)
	}

	return &Port{fd: fd, path: path}, nil
}

// Fd returns the underlying file descriptor.
func (p *Port) Fd() int { return p.fd }

// Path returns the device path the port was opened with.
func (p *Port) Path() string { return p.path }

// Close releases the device.
func (p *Port) Close() error {
	if err := unix.Close(p.fd); err != nil {
		return fmt.Errorf("close %s: %w", p.path, err)
	}
	return nil
}
