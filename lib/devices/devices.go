// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package devices enumerates the serial ports a machine offers by
// reading the tty class in sysfs. Only hardware-backed ports are
// listed: an entry qualifies when the kernel exposes a device link
// for it, which excludes virtual consoles and pseudo-terminals.
package devices

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Device describes one serial port.
type Device struct {
	// Name is the kernel name, e.g. ttyUSB0.
	Name string

	// Path is the device node, e.g. /dev/ttyUSB0.
	Path string

	// Driver is the kernel driver bound to the port, e.g. ftdi_sio.
	Driver string

	// Product is the USB product string, when the port sits on a USB
	// adapter that reports one.
	Product string
}

// List enumerates the machine's serial ports, sorted by name.
// Enumeration never fails: a machine without sysfs, or without
// ports, yields an empty list.
func List() []Device {
	return listFrom("/sys/class/tty", "/dev")
}

// listFrom is the testable implementation of List. It accepts the tty
// class directory and the device node root so tests can point at a
// synthetic tree.
func listFrom(classDir, devDir string) []Device {
	entries, err := os.ReadDir(classDir)
	if err != nil {
		return nil
	}

	var found []Device
	for _, entry := range entries {
		name := entry.Name()
		deviceDir := filepath.Join(classDir, name, "device")
		if _, err := os.Stat(deviceDir); err != nil {
			// No device link: a virtual console or another
			// software-only tty.
			continue
		}
		found = append(found, Device{
			Name:    name,
			Path:    filepath.Join(devDir, name),
			Driver:  readDriver(deviceDir),
			Product: readProduct(deviceDir),
		})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Name < found[j].Name })
	return found
}

// readDriver resolves the driver symlink under the port's device
// directory. Returns "" when no driver is bound.
func readDriver(deviceDir string) string {
	target, err := os.Readlink(filepath.Join(deviceDir, "driver"))
	if err != nil {
		return ""
	}
	return filepath.Base(target)
}

// readProduct looks for a USB product string among the port's
// ancestor devices. USB serial adapters hang the tty a few levels
// below the device that carries the descriptor.
func readProduct(deviceDir string) string {
	resolved, err := filepath.EvalSymlinks(deviceDir)
	if err != nil {
		return ""
	}
	dir := resolved
	for i := 0; i < 4; i++ {
		if product := readSysfsString(filepath.Join(dir, "product")); product != "" {
			return product
		}
		dir = filepath.Dir(dir)
	}
	return ""
}

// readSysfsString reads a single-line sysfs attribute and returns its
// trimmed content. Returns "" on any error.
func readSysfsString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
