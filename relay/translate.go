// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import "bytes"

// translator rewrites line feeds in console-to-line traffic as a
// configured byte sequence. A replacement can take several writes to
// finish when the line accepts bytes slowly; remaining tracks the
// unsent tail, and the line feed that triggered the replacement is
// consumed from the buffer only once the tail is gone. That way a
// short write never loses the line feed it was translating.
type translator struct {
	replacement []byte // sent in place of each line feed; nil or empty disables
	remaining   []byte // unsent tail of an in-progress replacement
}

// next returns the bytes to offer the line for the given pending
// region: the tail of an in-progress replacement, a fresh replacement
// when the region starts with a line feed, or the run of bytes up to
// the next line feed. pending must not be empty.
func (t *translator) next(pending []byte) []byte {
	if len(t.remaining) > 0 {
		return t.remaining
	}
	if len(t.replacement) == 0 {
		return pending
	}
	if pending[0] == '\n' {
		t.remaining = t.replacement
		return t.remaining
	}
	if idx := bytes.IndexByte(pending, '\n'); idx > 0 {
		return pending[:idx]
	}
	return pending
}

// advance records that n bytes of the chunk from next were written
// and returns how many buffer bytes that consumed. Replacement bytes
// consume nothing until the replacement completes; then the line feed
// itself counts as one.
func (t *translator) advance(n int) int {
	if len(t.remaining) == 0 {
		return n
	}
	t.remaining = t.remaining[n:]
	if len(t.remaining) == 0 {
		return 1
	}
	return 0
}
