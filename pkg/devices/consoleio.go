// Package devices implements the device and file abstraction of the
// BASIC runtime: disk streams, the keyboard, the screen and the null
// sink all behave as one uniform text file, reproducing the
// character-level I/O behaviour of the historical interpreter.
package devices

import "io"

// Stream is the opaque byte source/sink a raw file wraps. Disk files,
// the virtual filesystem and in-memory buffers all satisfy it.
type Stream = io.ReadWriteCloser

// Display is the narrow view of the screen renderer the device layer
// consumes. Col/Row are 1-based. Overflow reports the renderer's own
// last-column overflow condition, which costs one extra column in
// width accounting.
type Display interface {
	Col() int
	Row() int
	Width() int
	Height() int
	Overflow() bool
	Write(ch string, echo bool)
	WriteLine(echo bool)
	SetWidth(width int)
}

// Keyboard is the narrow view of the keyboard driver. ReadCodes
// returns up to n already-decoded input codes, each a single byte or a
// multi-byte extended code. PeekByte blocks until a byte is available
// and reports it without consuming it. Both return an error when an
// external break signal interrupts the wait; the device layer
// propagates it unchanged.
type Keyboard interface {
	ReadCodes(n int) ([]string, error)
	PeekByte() (byte, error)
}

// nullDev is the stream behind NUL: and behind files that have no
// backing stream of their own (KYBD:, SCRN:). Reads are at end of
// stream, writes vanish.
type nullDev struct{}

func (nullDev) Read(p []byte) (int, error)  { return 0, io.EOF }
func (nullDev) Write(p []byte) (int, error) { return len(p), nil }
func (nullDev) Close() error                { return nil }

// NullStream returns a fresh always-empty stream.
func NullStream() Stream {
	return nullDev{}
}
