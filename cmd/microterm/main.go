// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// microterm is a minimal serial terminal: it connects the local
// console to a serial line and relays bytes both ways until the
// escape character (Ctrl-X unless changed) ends the session. Apart
// from optional newline rewriting, transmit pacing, and control
// suppression, bytes cross unmodified in both directions.
//
// Usage:
//
//	microterm [flags] [device [speed]]
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/microterm/lib/capture"
	"github.com/bureau-foundation/microterm/lib/console"
	"github.com/bureau-foundation/microterm/lib/devices"
	"github.com/bureau-foundation/microterm/lib/serialport"
	"github.com/bureau-foundation/microterm/lib/session"
	"github.com/bureau-foundation/microterm/lib/version"
	"github.com/bureau-foundation/microterm/relay"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "microterm: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// --version works even when the rest of the line would not parse.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("microterm")
		return nil
	}

	logLevel := slog.LevelInfo
	if os.Getenv("MICROTERM_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	var opts options
	flagSet := pflag.NewFlagSet("microterm", pflag.ContinueOnError)
	opts.register(flagSet)
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if opts.help {
		printHelp(flagSet)
		return nil
	}
	if opts.showVersion {
		version.Print("microterm")
		return nil
	}
	if opts.listProfiles {
		return listProfiles()
	}
	if opts.listDevices {
		return listDevices()
	}
	if err := opts.takePositionals(flagSet.Args()); err != nil {
		return err
	}

	merged := session.Defaults()
	if opts.profile != "" {
		profileSettings, err := loadProfile(opts.profile)
		if err != nil {
			return err
		}
		merged = session.Merge(merged, profileSettings)
	}
	merged = session.Merge(merged, opts.settings())

	config, err := merged.Resolve()
	if err != nil {
		return err
	}

	port, err := serialport.Open(config.Device, config.Speed)
	if err != nil {
		return err
	}
	defer port.Close()

	var sink io.WriteCloser
	if config.Capture != "" {
		sink, err = capture.Create(config.Capture)
		if err != nil {
			return err
		}
	}

	state, err := console.Raw(int(os.Stdin.Fd()))
	if err != nil {
		if sink != nil {
			sink.Close()
		}
		return err
	}

	// The normal exit path and the signal handler funnel through one
	// restore: the terminal must come back exactly once, and the
	// capture must be flushed before the process goes away.
	var once sync.Once
	restore := func() {
		once.Do(func() {
			state.Restore()
			if sink != nil {
				sink.Close()
			}
		})
	}
	defer restore()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		received := <-signals
		restore()
		fmt.Fprintf(os.Stderr, "\nmicroterm: %v\n", received)
		os.Exit(1)
	}()

	fmt.Fprintf(os.Stderr, "microterm: connected to %s at %d baud, Ctrl-%c exits\n",
		config.Device, config.Speed, config.Escape+0x40)
	logger.Debug("session starting",
		"device", config.Device,
		"speed", config.Speed,
		"capture", config.Capture,
	)

	pump := relay.New(relay.Config{
		ConsoleIn:       int(os.Stdin.Fd()),
		ConsoleOut:      int(os.Stdout.Fd()),
		Line:            port.Fd(),
		Newline:         config.Newline,
		Escape:          config.Escape,
		Delay:           config.Delay,
		SuppressControl: config.SuppressControl,
		Capture:         sink,
		Logger:          logger,
	})
	err = pump.Run()
	restore()
	if err != nil {
		fmt.Fprintln(os.Stderr)
		return err
	}
	fmt.Fprint(os.Stderr, "\nmicroterm: session ended\n")
	return nil
}

// loadProfile fetches one named profile from the profiles file.
func loadProfile(name string) (session.Settings, error) {
	path, err := session.DefaultProfilesPath()
	if err != nil {
		return session.Settings{}, err
	}
	profiles, err := session.LoadProfiles(path)
	if err != nil {
		return session.Settings{}, err
	}
	return profiles.Get(name)
}

// listProfiles prints every saved profile with a one-line summary.
func listProfiles() error {
	path, err := session.DefaultProfilesPath()
	if err != nil {
		return err
	}
	profiles, err := session.LoadProfiles(path)
	if err != nil {
		return err
	}
	if len(profiles.Profiles) == 0 {
		fmt.Printf("no profiles defined in %s\n", path)
		return nil
	}
	names := make([]string, 0, len(profiles.Profiles))
	for name := range profiles.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Printf("profiles in %s:\n", path)
	for _, name := range names {
		fmt.Printf("  %-16s %s\n", name, describeSettings(profiles.Profiles[name]))
	}
	return nil
}

// listDevices prints the serial ports the kernel knows about.
func listDevices() error {
	ports := devices.List()
	if len(ports) == 0 {
		fmt.Println("no serial ports found")
		return nil
	}
	for _, port := range ports {
		fmt.Printf("  %-14s %s\n", port.Path, describeDevice(port))
	}
	return nil
}

// describeDevice renders the driver and product of one port.
func describeDevice(d devices.Device) string {
	var parts []string
	if d.Driver != "" {
		parts = append(parts, d.Driver)
	}
	if d.Product != "" {
		parts = append(parts, d.Product)
	}
	return strings.Join(parts, ", ")
}

// describeSettings renders the fields a profile sets, for listings.
func describeSettings(s session.Settings) string {
	var parts []string
	if s.Device != "" {
		parts = append(parts, s.Device)
	}
	if s.Speed != 0 {
		parts = append(parts, fmt.Sprintf("%d baud", s.Speed))
	}
	if s.Newline != "" {
		parts = append(parts, "newline "+s.Newline)
	}
	if s.Delay != "" {
		parts = append(parts, "delay "+s.Delay)
	}
	if s.Escape != "" {
		parts = append(parts, "escape "+s.Escape)
	}
	if s.SuppressControl {
		parts = append(parts, "suppress control")
	}
	if s.Capture != "" {
		parts = append(parts, "capture "+s.Capture)
	}
	if len(parts) == 0 {
		return "(empty)"
	}
	return strings.Join(parts, ", ")
}
