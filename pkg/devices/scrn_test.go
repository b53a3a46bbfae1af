package devices

import (
	"testing"

	"github.com/fatman2021/pcbasic/pkg/basicerror"
)

func TestSCRNMasterEcho(t *testing.T) {
	d := newFakeDisplay()
	f := NewSCRNFile(d)
	if err := f.Write("HI", true); err != nil {
		t.Fatal(err)
	}
	if d.echoed != "HI" {
		t.Errorf("echoed %q, want HI", d.echoed)
	}
}

func TestSCRNCloneNoEchoAndIsolation(t *testing.T) {
	d := newFakeDisplay()
	dev := NewSCRNDevice(d)
	f := openOn(t, dev, 'D', 'O')

	if err := f.Write("HI", true); err != nil {
		t.Fatal(err)
	}
	if d.out != "HI" || d.echoed != "" {
		t.Errorf("out %q echoed %q, clone writes must not echo", d.out, d.echoed)
	}

	// clone width is private state
	f.SetWidth(40)
	if f.Width() != 40 {
		t.Errorf("clone width = %d, want 40", f.Width())
	}
	if d.width != 80 {
		t.Errorf("display width = %d, clone SetWidth must not touch it", d.width)
	}
}

func TestSCRNMasterSetWidth(t *testing.T) {
	d := newFakeDisplay()
	f := NewSCRNFile(d)
	f.SetWidth(40)
	if d.width != 40 {
		t.Errorf("display width = %d, want 40", d.width)
	}
	if f.Width() != 40 {
		t.Errorf("master width = %d, want 40", f.Width())
	}
}

func TestSCRNOpenWritesMagicByte(t *testing.T) {
	d := newFakeDisplay()
	dev := NewSCRNDevice(d)
	if _, err := dev.Open(1, "", 'P', 'O', 'R', "", 128, 0, 0, 0, nil); err != nil {
		t.Fatal(err)
	}
	if len(d.out) == 0 || d.out[0] != 0xFE {
		t.Errorf("out = %q, want leading 0xFE", d.out)
	}
	if d.echoed != "" {
		t.Error("magic byte must not echo")
	}
}

func TestSCRNWidthBreak(t *testing.T) {
	d := newFakeDisplay()
	d.col = 8
	f := NewSCRNFile(d)
	f.SetWidth(10)
	d.col = 8 // SetWidth homes the cursor

	if err := f.Write("ABCD", true); err != nil {
		t.Fatal(err)
	}
	// 7+4 > 10: line break before the string
	if d.out != "\nABCD" {
		t.Errorf("out = %q, want %q", d.out, "\nABCD")
	}
}

func TestSCRNNoBreakOnLastRow(t *testing.T) {
	d := newFakeDisplay()
	d.col = 8
	d.row = d.height
	f := NewSCRNFile(d)
	f.vwidth = 10
	f.SetWidth(10)
	d.col, d.row = 8, d.height

	if err := f.Write("ABCD", true); err != nil {
		t.Fatal(err)
	}
	if d.out != "ABCD" {
		t.Errorf("out = %q, break must be suppressed on the last row", d.out)
	}
}

func TestSCRNBackspaceWidthAccounting(t *testing.T) {
	// a backspace takes one column back out of the print width
	d := newFakeDisplay()
	f := NewSCRNFile(d)
	f.SetWidth(10)
	d.col = 9

	// ABC minus one backspace is 2 wide: 8+2 == 10 fits
	if err := f.Write("ABC\b", true); err != nil {
		t.Fatal(err)
	}
	if d.out != "ABC\b" {
		t.Errorf("out = %q, want no break", d.out)
	}

	d2 := newFakeDisplay()
	f2 := NewSCRNFile(d2)
	f2.SetWidth(10)
	d2.col = 9

	// ABCD minus one backspace is 3 wide: 8+3 > 10 breaks
	if err := f2.Write("ABCD\b", true); err != nil {
		t.Fatal(err)
	}
	if d2.out != "\nABCD\b" {
		t.Errorf("out = %q, want leading break", d2.out)
	}
}

func TestSCRNOverflowCostsOneColumn(t *testing.T) {
	// the renderer's overflow flag adds a column to the clone's
	// virtual position
	d := newFakeDisplay()
	dev := NewSCRNDevice(d)
	f := openOn(t, dev, 'D', 'O')
	f.SetWidth(10)
	d.col, d.overflow = 7, true

	// effective column is 8: 7+4 > 10 breaks
	if err := f.Write("ABCD", true); err != nil {
		t.Fatal(err)
	}
	if d.out != "\nABCD" {
		t.Errorf("out = %q, want leading break", d.out)
	}
}

func TestSCRNNarrowFileWraps(t *testing.T) {
	d := newFakeDisplay()
	dev := NewSCRNDevice(d)
	f := openOn(t, dev, 'D', 'O')
	f.SetWidth(5)

	if err := f.Write("ABCDEFG", true); err != nil {
		t.Fatal(err)
	}
	// the file width is narrower than the screen: wrap after 5 chars
	if d.out != "ABCDE\nFG" {
		t.Errorf("out = %q, want %q", d.out, "ABCDE\nFG")
	}
}

func TestSCRNUnsupportedOps(t *testing.T) {
	f := NewSCRNFile(newFakeDisplay())
	if _, err := f.LOF(); !basicerror.IsCode(err, basicerror.BadFileMode) {
		t.Errorf("LOF: %v, want Bad file mode", err)
	}
	if _, err := f.LOC(); !basicerror.IsCode(err, basicerror.BadFileMode) {
		t.Errorf("LOC: %v, want Bad file mode", err)
	}
	if _, err := f.EOF(); !basicerror.IsCode(err, basicerror.BadFileMode) {
		t.Errorf("EOF: %v, want Bad file mode", err)
	}
	if _, _, err := f.ReadLine(); !basicerror.IsCode(err, basicerror.BadFileMode) {
		t.Errorf("ReadLine: %v, want Bad file mode", err)
	}
}
