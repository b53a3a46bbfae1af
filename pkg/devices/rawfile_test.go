package devices

import (
	"strings"
	"testing"
)

func TestRawFileModeUppercased(t *testing.T) {
	f := NewRawFile(NullStream(), 'D', 'i')
	if f.Mode() != 'I' {
		t.Errorf("mode = %c, want I", f.Mode())
	}
	if f.FileType() != 'D' {
		t.Errorf("filetype = %c, want D", f.FileType())
	}
}

func TestRawFileRead(t *testing.T) {
	f := NewRawFile(readOnlyStream{strings.NewReader("ABCDE")}, 'D', 'I')
	s, err := f.Read(3)
	if err != nil {
		t.Fatal(err)
	}
	if s != "ABC" {
		t.Errorf("got %q, want ABC", s)
	}
	// -1 reads the rest; a short stream is not a fault
	s, err = f.Read(-1)
	if err != nil {
		t.Fatal(err)
	}
	if s != "DE" {
		t.Errorf("got %q, want DE", s)
	}
	s, err = f.Read(10)
	if err != nil {
		t.Fatal(err)
	}
	if s != "" {
		t.Errorf("got %q at end of stream, want empty", s)
	}
}

func TestRawFileWrite(t *testing.T) {
	buf := &memStream{}
	f := NewRawFile(buf, 'D', 'O')
	if err := f.Write("HELLO"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "HELLO" {
		t.Errorf("stream = %q, want HELLO", buf.String())
	}
}
