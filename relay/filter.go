// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

// suppressControls replaces control characters in region with '?', in
// place. Line feed, carriage return, and backspace pass through; DEL
// (0x7f) is not treated as a control character.
func suppressControls(region []byte) {
	for i, b := range region {
		if b < 0x20 && b != '\n' && b != '\r' && b != '\b' {
			region[i] = '?'
		}
	}
}
