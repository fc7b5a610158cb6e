// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serialport

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sys/unix"
)

// baudBits maps a numeric line speed to the CBAUD bit pattern the
// kernel expects in termios Cflag.
var baudBits = map[int]uint32{
	50:      unix.B50,
	75:      unix.B75,
	110:     unix.B110,
	134:     unix.B134,
	150:     unix.B150,
	200:     unix.B200,
	300:     unix.B300,
	600:     unix.B600,
	1200:    unix.B1200,
	1800:    unix.B1800,
	2400:    unix.B2400,
	4800:    unix.B4800,
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	500000:  unix.B500000,
	576000:  unix.B576000,
	921600:  unix.B921600,
	1000000: unix.B1000000,
	1152000: unix.B1152000,
	1500000: unix.B1500000,
	2000000: unix.B2000000,
	2500000: unix.B2500000,
	3000000: unix.B3000000,
	3500000: unix.B3500000,
	4000000: unix.B4000000,
}

// bits returns the CBAUD bit pattern for speed, or an error naming the
// supported speeds.
func bits(speed int) (uint32, error) {
	b, ok := baudBits[speed]
	if !ok {
		return 0, fmt.Errorf("unsupported line speed %d (supported: %s)", speed, speedList())
	}
	return b, nil
}

// SupportedSpeeds returns every line speed the baud table accepts, in
// ascending order.
func SupportedSpeeds() []int {
	speeds := make([]int, 0, len(baudBits))
	for speed := range baudBits {
		speeds = append(speeds, speed)
	}
	sort.Ints(speeds)
	return speeds
}

func speedList() string {
	speeds := SupportedSpeeds()
	parts := make([]string, len(speeds))
	for i, speed := range speeds {
		parts[i] = fmt.Sprintf("%d", speed)
	}
	return strings.Join(parts, ", ")
}
