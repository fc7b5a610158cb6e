// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

// directionBuffer carries bytes one way between the console and the
// line. Bytes [consumed, filled) are pending delivery; the rest of
// data is dead space. A buffer refills only after it drains
// completely, so each fill holds exactly one read's worth of bytes
// and pending() stays contiguous.
//
// Invariant: 0 <= consumed <= filled <= len(data).
type directionBuffer struct {
	data     []byte
	filled   int
	consumed int
}

func newDirectionBuffer(size int) directionBuffer {
	return directionBuffer{data: make([]byte, size)}
}

// empty reports whether every filled byte has been consumed.
func (b *directionBuffer) empty() bool {
	return b.consumed >= b.filled
}

// pending returns the bytes awaiting delivery. The slice aliases the
// buffer; it is valid until the next fill or consume.
func (b *directionBuffer) pending() []byte {
	return b.data[b.consumed:b.filled]
}

// fill records that a read placed n bytes at the start of data. The
// buffer must be empty.
func (b *directionBuffer) fill(n int) {
	b.filled = n
	b.consumed = 0
}

// consume marks n pending bytes delivered, resetting the offsets once
// the buffer drains.
func (b *directionBuffer) consume(n int) {
	b.consumed += n
	if b.consumed >= b.filled {
		b.filled = 0
		b.consumed = 0
	}
}
