// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/microterm/lib/session"
)

// options holds the raw command line before profile and default
// settings are merged in.
type options struct {
	device       string
	speed        int
	newline      string
	delay        string
	escape       string
	suppress     bool
	capture      string
	profile      string
	listProfiles bool
	listDevices  bool
	showVersion  bool
	help         bool
}

func (o *options) register(flags *pflag.FlagSet) {
	flags.StringVarP(&o.newline, "newline", "n", "", "sequence sent for each line feed: lf, cr, crlf, or lfcr")
	flags.StringVarP(&o.delay, "delay", "d", "", "transmit pacing: microseconds, NNNms, or NNN% of a character time")
	flags.StringVarP(&o.escape, "escape", "x", "", "character whose control code ends the session (default X, for Ctrl-X)")
	flags.BoolVarP(&o.suppress, "suppress-control", "c", false, "replace control characters from the line with ?")
	flags.StringVarP(&o.capture, "capture", "t", "", "mirror line output to this file (.zst, .gz, .lz4 compress)")
	flags.StringVarP(&o.profile, "profile", "p", "", "start from this saved profile")
	flags.BoolVar(&o.listProfiles, "profiles", false, "list saved profiles and exit")
	flags.BoolVar(&o.listDevices, "list-devices", false, "list serial ports found in sysfs and exit")
	flags.BoolVarP(&o.showVersion, "version", "V", false, "print version and exit")
	flags.BoolVarP(&o.help, "help", "h", false, "show help")
}

// takePositionals consumes the device and speed arguments.
func (o *options) takePositionals(args []string) error {
	switch {
	case len(args) > 2:
		return fmt.Errorf("unexpected argument: %s", args[2])
	case len(args) == 2:
		speed, err := strconv.Atoi(args[1])
		if err != nil || speed <= 0 {
			return fmt.Errorf("invalid line speed %q", args[1])
		}
		o.speed = speed
		fallthrough
	case len(args) == 1:
		o.device = args[0]
	}
	return nil
}

// settings returns the overlay this command line contributes to the
// merge. Zero-valued fields were not given and leave profile or
// default values in place.
func (o *options) settings() session.Settings {
	return session.Settings{
		Device:          o.device,
		Speed:           o.speed,
		Newline:         o.newline,
		Delay:           o.delay,
		Escape:          o.escape,
		SuppressControl: o.suppress,
		Capture:         o.capture,
	}
}

func printHelp(flags *pflag.FlagSet) {
	fmt.Fprint(os.Stderr, `microterm - minimal serial terminal.

Connects the local console to a serial line and relays bytes both
ways. The session ends when the escape character (Ctrl-X unless
changed with --escape) is typed; everything else, control characters
included, goes to the device untouched.

Usage:
  microterm [flags] [device [speed]]

The device may be a bare name under /dev. The default speed is 115200.

Examples:
  # See which serial ports the machine has, then talk to one
  microterm --list-devices
  microterm ttyUSB0

  # A slow device that wants carriage returns and paced input
  microterm --newline cr --delay 100% ttyS0 9600

  # Record the session, compressed
  microterm --capture boot.log.zst ttyUSB0

  # Start from a saved profile, overriding its speed
  microterm --profile router ttyUSB0 57600

Profiles are read from $MICROTERM_PROFILES if set, otherwise from
microterm/profiles.yaml under the user configuration directory.
Setting MICROTERM_DEBUG enables debug logging.

Flags:
`)
	flags.SetOutput(os.Stderr)
	flags.PrintDefaults()
}
