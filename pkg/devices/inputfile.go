package devices

import (
	"errors"
	"strings"
)

// readOnlyStream adapts an in-memory reader to the Stream contract.
type readOnlyStream struct {
	*strings.Reader
}

func (readOnlyStream) Write(p []byte) (int, error) {
	return 0, errors.New("stream is read-only")
}

func (readOnlyStream) Close() error { return nil }

// InputTextFile stages a console input line for field re-parsing.
type InputTextFile struct {
	*TextFile
}

// NewInputTextFile wraps an already-read console line.
func NewInputTextFile(line string) *InputTextFile {
	f := &InputTextFile{
		TextFile: NewTextFile(readOnlyStream{strings.NewReader(line)}, 'D', 'I', ""),
	}
	// spaces do not separate numbers on console INPUT
	f.softSep = ""
	return f
}
