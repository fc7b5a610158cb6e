// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package relay pumps bytes between a local console and a serial
// line. It is the core of microterm: a single-threaded poll loop that
// moves traffic in both directions through two fixed buffers, with
// optional newline translation, transmit pacing, control-character
// suppression, and output capture applied along the way.
//
// The pump owns no descriptors and spawns no goroutines. The caller
// opens the console and the line, hands the descriptors to New, and
// blocks in Run until the user types the escape byte or an endpoint
// fails. Everything that needs parsing or validation happens before
// the pump exists; see the session package.
//
// The implementation is split across:
//
//   - pump.go: the Config, the poll loop, and the four read/write
//     handlers
//   - buffer.go: the per-direction byte buffer
//   - translate.go: line feed rewriting with short-write tracking
//   - filter.go: control-character suppression
package relay
