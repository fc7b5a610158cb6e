// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/microterm/lib/clock"
)

// bufferSize is the capacity of each direction's buffer. One read
// fills at most this much; the line side drains it in smaller chunks
// when translation or pacing is active.
const bufferSize = 1024

// ErrLineClosed reports that the serial line returned end of input,
// usually because the device disappeared or the far end hung up.
var ErrLineClosed = errors.New("end of input")

// Config holds the parameters for a relay session. The file
// descriptors are required; everything else defaults to off.
type Config struct {
	// ConsoleIn and ConsoleOut are the descriptors for the local
	// console, usually stdin and stdout with the terminal switched
	// out of canonical mode. They must be open for the session's
	// lifetime; the pump never closes them.
	ConsoleIn  int
	ConsoleOut int

	// Line is the descriptor for the serial line, open for reading
	// and writing in blocking mode.
	Line int

	// Newline is the byte sequence sent to the line in place of each
	// line feed from the console. Nil or empty sends line feeds
	// unchanged.
	Newline []byte

	// Escape is the console byte that ends the session. It is never
	// transmitted; the byte 0x00 makes Ctrl-@ the escape.
	Escape byte

	// Delay inserts a pause after every line write and limits each
	// write to a single byte, for receivers that drop input at full
	// speed. Zero transmits unpaced.
	Delay time.Duration

	// SuppressControl replaces control characters from the line with
	// '?' before they reach the console, keeping a noisy line from
	// garbling the local terminal.
	SuppressControl bool

	// Capture receives a copy of every byte read from the line,
	// before suppression. Write errors are ignored; capture never
	// interferes with the session. May be nil.
	Capture io.Writer

	// Clock supplies the delay sleeps. If nil, the real clock is
	// used. Tests substitute a fake to drive pacing deterministically.
	Clock clock.Clock

	// Logger receives session lifecycle messages. If nil, a no-op
	// logger is used.
	Logger *slog.Logger
}

// Pump shuttles bytes between the console and the serial line. Create
// one with New and drive it with Run; a Pump is single-use.
type Pump struct {
	consoleIn  int
	consoleOut int
	line       int
	escape     byte
	delay      time.Duration
	suppress   bool
	capture    io.Writer
	clock      clock.Clock
	logger     *slog.Logger

	toConsole directionBuffer // line -> console
	toLine    directionBuffer // console -> line
	xlate     translator
}

// New builds a Pump from cfg.
func New(cfg Config) *Pump {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pump{
		consoleIn:  cfg.ConsoleIn,
		consoleOut: cfg.ConsoleOut,
		line:       cfg.Line,
		escape:     cfg.Escape,
		delay:      cfg.Delay,
		suppress:   cfg.SuppressControl,
		capture:    cfg.Capture,
		clock:      clk,
		logger:     logger,
		toConsole:  newDirectionBuffer(bufferSize),
		toLine:     newDirectionBuffer(bufferSize),
		xlate:      translator{replacement: cfg.Newline},
	}
}

// Poll set slots. The line appears once and can carry read and write
// interest in the same iteration.
const (
	lineSlot = iota
	consoleInSlot
	consoleOutSlot
)

// Run relays bytes in both directions until the escape byte arrives
// from the console or either endpoint fails. A nil return means the
// user ended the session; any bytes still buffered in either
// direction are dropped, including bytes that preceded the escape in
// its own read. A line that reaches end of input yields an error
// wrapping ErrLineClosed.
//
// Each direction is either reading or writing, never both: an empty
// buffer polls its source for input, a non-empty buffer polls its
// destination for room. Reads are dispatched before writes so an
// escape is honored before the same iteration transmits anything.
func (p *Pump) Run() error {
	p.logger.Debug("relay started",
		"escape", fmt.Sprintf("0x%02x", p.escape),
		"delay", p.delay,
		"translate", len(p.xlate.replacement) > 0,
		"suppress", p.suppress,
	)

	fds := []unix.PollFd{
		{Fd: int32(p.line)},
		{Fd: int32(p.consoleIn)},
		{Fd: int32(p.consoleOut)},
	}

	for {
		fds[lineSlot].Events = 0
		fds[consoleInSlot].Events = 0
		fds[consoleOutSlot].Events = 0
		if p.toLine.empty() {
			fds[consoleInSlot].Events = unix.POLLIN
		} else {
			fds[lineSlot].Events |= unix.POLLOUT
		}
		if p.toConsole.empty() {
			fds[lineSlot].Events |= unix.POLLIN
		} else {
			fds[consoleOutSlot].Events = unix.POLLOUT
		}

		if _, err := unix.Poll(fds, -1); err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("poll: %w", err)
		}

		if readable(fds[lineSlot]) {
			if err := p.readLine(); err != nil {
				return err
			}
		}
		if readable(fds[consoleInSlot]) {
			quit, err := p.readConsole()
			if err != nil {
				return err
			}
			if quit {
				p.logger.Debug("session ended by escape")
				return nil
			}
		}
		if writable(fds[lineSlot]) {
			if err := p.writeLine(); err != nil {
				return err
			}
		}
		if writable(fds[consoleOutSlot]) {
			if err := p.writeConsole(); err != nil {
				return err
			}
		}
	}
}

// readable reports whether a slot we polled for input has bytes or an
// error condition. Error conditions count so the next read surfaces
// the real failure instead of the loop spinning on the poll.
func readable(fd unix.PollFd) bool {
	return fd.Events&unix.POLLIN != 0 &&
		fd.Revents&(unix.POLLIN|unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0
}

// writable is the write-side analog of readable.
func writable(fd unix.PollFd) bool {
	return fd.Events&unix.POLLOUT != 0 &&
		fd.Revents&(unix.POLLOUT|unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0
}

// readLine fills the console-bound buffer from the serial line, then
// mirrors the chunk to the capture sink and applies control
// suppression. The capture sees the bytes exactly as received.
func (p *Pump) readLine() error {
	n, err := unix.Read(p.line, p.toConsole.data)
	if err != nil {
		if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
			return nil
		}
		return fmt.Errorf("serial line: read: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("serial line: %w", ErrLineClosed)
	}
	p.toConsole.fill(n)

	region := p.toConsole.pending()
	if p.capture != nil {
		_, _ = p.capture.Write(region)
	}
	if p.suppress {
		suppressControls(region)
	}
	return nil
}

// readConsole fills the line-bound buffer from the console and scans
// the chunk for the escape byte. A read of zero bytes is not an
// error: the console is expected to be an interactive terminal, which
// never reports end of input.
func (p *Pump) readConsole() (quit bool, err error) {
	n, err := unix.Read(p.consoleIn, p.toLine.data)
	if err != nil {
		if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
			return false, nil
		}
		return false, fmt.Errorf("console: read: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	p.toLine.fill(n)
	if bytes.IndexByte(p.toLine.pending(), p.escape) >= 0 {
		return true, nil
	}
	return false, nil
}

// writeLine sends the next chunk to the serial line: one untranslated
// run or replacement tail, capped to a single byte when pacing is on.
// The pacing sleep runs inline after the write and stalls the whole
// loop, console-bound traffic included.
func (p *Pump) writeLine() error {
	chunk := p.xlate.next(p.toLine.pending())
	if p.delay > 0 && len(chunk) > 1 {
		chunk = chunk[:1]
	}
	n, err := unix.Write(p.line, chunk)
	if err != nil {
		if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
			return nil
		}
		return fmt.Errorf("serial line: write: %w", err)
	}
	p.toLine.consume(p.xlate.advance(n))
	if p.delay > 0 && n > 0 {
		// TODO: drive pacing from a poll timeout instead of an inline
		// sleep so line output keeps flowing to the console during
		// the pause.
		p.clock.Sleep(p.delay)
	}
	return nil
}

// writeConsole drains the console-bound buffer. Console writes are
// never translated or paced.
func (p *Pump) writeConsole() error {
	n, err := unix.Write(p.consoleOut, p.toConsole.pending())
	if err != nil {
		if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
			return nil
		}
		return fmt.Errorf("console: write: %w", err)
	}
	p.toConsole.consume(n)
	return nil
}
