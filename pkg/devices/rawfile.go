package devices

import (
	"errors"
	"io"

	"github.com/fatman2021/pcbasic/pkg/basicerror"
	"github.com/fatman2021/pcbasic/pkg/logger"
)

// softEOF is the in-band end-of-text marker (^Z). It is distinct from
// true end-of-stream but equally terminates text reads.
const softEOF = "\x1a"

// wrapIOError translates a low-level stream fault into the single
// domain error kind. Raw faults never reach the caller.
func wrapIOError(err error) error {
	if err == nil {
		return nil
	}
	logger.DevicesWarn("I/O error on stream access: %v", err)
	return basicerror.NewWithInfo(basicerror.DeviceIOError, "%v", err)
}

// RawFile gives raw access to an underlying stream with uniform fault
// translation.
type RawFile struct {
	stream   Stream
	filetype byte
	mode     byte
}

// NewRawFile wraps a stream. The mode letter is stored uppercased.
func NewRawFile(stream Stream, filetype, mode byte) *RawFile {
	if mode >= 'a' && mode <= 'z' {
		mode -= 'a' - 'A'
	}
	return &RawFile{stream: stream, filetype: filetype, mode: mode}
}

// FileType returns the one-letter file type tag.
func (f *RawFile) FileType() byte { return f.filetype }

// Mode returns the uppercase mode letter.
func (f *RawFile) Mode() byte { return f.mode }

// Close releases the stream. The stream is considered closed even when
// the release faults; the fault is still reported.
func (f *RawFile) Close() error {
	return wrapIOError(f.stream.Close())
}

// readBounded reads up to num bytes from the stream; num == -1 reads
// everything currently available. End of stream is not a fault.
func (f *RawFile) readBounded(num int) (string, error) {
	if num < 0 {
		data, err := io.ReadAll(f.stream)
		if err != nil {
			return string(data), wrapIOError(err)
		}
		return string(data), nil
	}
	buf := make([]byte, num)
	n, err := io.ReadFull(f.stream, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return string(buf[:n]), wrapIOError(err)
	}
	return string(buf[:n]), nil
}

// InputChars reads num characters.
func (f *RawFile) InputChars(num int) (string, error) {
	return f.readBounded(num)
}

// Read reads num characters; num == -1 reads all available.
func (f *RawFile) Read(num int) (string, error) {
	return f.readBounded(num)
}

// Write writes s to the stream.
func (f *RawFile) Write(s string) error {
	_, err := io.WriteString(f.stream, s)
	return wrapIOError(err)
}
