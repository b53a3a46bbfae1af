package devices

import (
	"testing"
)

func newKYBDPair() (*fakeKeyboard, *fakeDisplay, *KYBDFile) {
	k := &fakeKeyboard{}
	d := newFakeDisplay()
	return k, d, NewKYBDFile(k, d)
}

func TestKYBDInputCharsCollapsesExtended(t *testing.T) {
	k, _, f := newKYBDPair()
	k.codes = []string{"A", eaUp, "\x01\x02", "B"}

	s, err := f.InputChars(3)
	if err != nil {
		t.Fatal(err)
	}
	// mapped codes collapse to NUL, unmapped multi-byte codes vanish
	if s != "A\x00B" {
		t.Errorf("got %q, want %q", s, "A\x00B")
	}
}

func TestKYBDReadOneKeepsSequences(t *testing.T) {
	k, _, f := newKYBDPair()
	k.codes = []string{eaLeft}
	c, err := f.ReadOne()
	if err != nil {
		t.Fatal(err)
	}
	if c != "\xff\x1d" {
		t.Errorf("got %q, want the full replacement sequence", c)
	}

	// function keys map to nothing; the read keeps going
	k.codes = []string{eaF1, "X"}
	c, err = f.ReadOne()
	if err != nil {
		t.Fatal(err)
	}
	if c != "X" {
		t.Errorf("got %q, want X", c)
	}
}

func TestKYBDReadLineTranslates(t *testing.T) {
	k, _, f := newKYBDPair()
	k.codes = []string{"H", eaRight, "I", "\r"}

	line, term, err := f.ReadLine()
	if err != nil {
		t.Fatal(err)
	}
	if line != "H\xff\x1cI" || term != TermCR {
		t.Errorf("got (%q, %v), want translated line with TermCR", line, term)
	}
}

func TestKYBDLofLoc(t *testing.T) {
	_, _, f := newKYBDPair()
	if n, err := f.LOF(); err != nil || n != 1 {
		t.Errorf("LOF = (%d, %v), want (1, nil)", n, err)
	}
	if n, err := f.LOC(); err != nil || n != 0 {
		t.Errorf("LOC = (%d, %v), want (0, nil)", n, err)
	}
}

func TestKYBDEOF(t *testing.T) {
	// the master is opened in append mode and never reports EOF
	k, _, f := newKYBDPair()
	k.codes = []string{"\x1a"}
	if eof, err := f.EOF(); err != nil || eof {
		t.Errorf("master EOF = (%v, %v), want (false, nil)", eof, err)
	}

	// an input clone peeks the keyboard
	k2 := &fakeKeyboard{codes: []string{"\x1a"}}
	dev := NewKYBDDevice(k2, newFakeDisplay())
	clone := openOn(t, dev, 'D', 'I')
	if eof, err := clone.EOF(); err != nil || !eof {
		t.Errorf("clone EOF = (%v, %v), want (true, nil)", eof, err)
	}

	k2.codes = []string{"A"}
	if eof, _ := clone.EOF(); eof {
		t.Error("clone EOF = true with pending input")
	}
}

func TestKYBDSetWidth(t *testing.T) {
	k, d, f := newKYBDPair()
	f.SetWidth(40)
	if d.width != 40 {
		t.Errorf("display width = %d, master SetWidth must pass through", d.width)
	}

	dev := NewKYBDDevice(k, d)
	clone := openOn(t, dev, 'D', 'I')
	clone.SetWidth(20)
	if d.width != 40 {
		t.Errorf("display width = %d, clone SetWidth must not pass through", d.width)
	}
}

func TestKYBDInputEntryPushback(t *testing.T) {
	k, _, f := newKYBDPair()
	k.codes = []string{"1", "2", " ", "X", "Y", "\r"}

	// numeric field ends at the blank; the X that follows belongs to
	// the next field and is held back
	word, sep, err := f.InputEntry('#', true)
	if err != nil {
		t.Fatal(err)
	}
	if word != "12" || sep != "X" {
		t.Errorf("got (%q, %q), want (12, X)", word, sep)
	}

	word, sep, err = f.InputEntry('$', true)
	if err != nil {
		t.Fatal(err)
	}
	if word != "XY" || sep != "\r" {
		t.Errorf("got (%q, %q), want (XY, \"\\r\")", word, sep)
	}
}

func TestKYBDInputEntryQuoted(t *testing.T) {
	// unlike buffered input there is no last-character gate on quoting
	k, _, f := newKYBDPair()
	k.codes = []string{"\"", "A", "\"", ","}

	word, sep, err := f.InputEntry('$', true)
	if err != nil {
		t.Fatal(err)
	}
	if word != "A" || sep != "," {
		t.Errorf("got (%q, %q), want (A, \",\")", word, sep)
	}
}

func TestKYBDInputEntryPastEnd(t *testing.T) {
	k, _, f := newKYBDPair()
	k.codes = []string{"\r"}
	// CR gives an empty entry, no error
	word, sep, err := f.InputEntry('#', false)
	if err != nil {
		t.Fatal(err)
	}
	if word != "" || sep != "\r" {
		t.Errorf("got (%q, %q), want (\"\", \"\\r\")", word, sep)
	}
}
