package devices

import (
	"github.com/fatman2021/pcbasic/pkg/basicerror"
)

// SCRNDevice is the SCRN: device.
type SCRNDevice struct {
	masterDevice
}

// NewSCRNDevice opens a master file on the screen.
func NewSCRNDevice(display Display) *SCRNDevice {
	d := &SCRNDevice{masterDevice{name: "SCRN:", allowedModes: "OR"}}
	d.deviceFile = NewSCRNFile(display)
	return d
}

// Open opens a file on the screen. SAVE "SCRN:" includes a magic byte
// tagging the file type.
func (d *SCRNDevice) Open(number int, param string, filetype, mode, access byte,
	lock string, reclen, seg, offset, length int, field []byte) (File, error) {
	f, err := d.masterDevice.Open(number, param, filetype, mode, access, lock,
		reclen, seg, offset, length, field)
	if err != nil {
		return nil, err
	}
	if magic, ok := TypeToMagic[filetype]; ok {
		if err := f.Write(string([]byte{magic}), true); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// SCRNFile allows writing to the screen as a text file. The device's
// master file works on the live screen; clones carry private virtual
// column and width state and are never echoed.
type SCRNFile struct {
	*RawFile
	display  Display
	isMaster bool
	vwidth   int
	vcol     int
	reclen   int
}

// NewSCRNFile wraps the display as the screen master file.
func NewSCRNFile(display Display) *SCRNFile {
	return &SCRNFile{
		RawFile:  NewRawFile(NullStream(), 'D', 'O'),
		display:  display,
		isMaster: true,
		vwidth:   display.Width(),
		vcol:     display.Col(),
	}
}

func (f *SCRNFile) openClone(filetype, mode byte, reclen int) File {
	inst := NewSCRNFile(f.display)
	inst.mode = mode
	inst.reclen = reclen
	inst.filetype = filetype
	inst.isMaster = false
	return inst
}

// Col returns the current column: the live screen column for the
// master, the private virtual column for clones.
func (f *SCRNFile) Col() int {
	if f.isMaster {
		return f.display.Col()
	}
	return f.vcol
}

// Width returns the screen width for the master, the private virtual
// width for clones.
func (f *SCRNFile) Width() int {
	if f.isMaster {
		return f.display.Width()
	}
	return f.vwidth
}

// SetWidth changes the live screen width on the master; on clones it
// only changes the private virtual width.
func (f *SCRNFile) SetWidth(width int) {
	if f.isMaster {
		f.display.SetWidth(width)
	} else {
		f.vwidth = width
	}
}

// Write writes s to the screen. Clone writes are never echoed. The
// implicit wrap is suppressed on the last screen row, the renderer's
// overflow condition consumes one extra column, and a backspace takes
// a column back out of the computed print width.
func (f *SCRNFile) Write(s string, canBreak bool) error {
	echo := f.isMaster
	f.vcol = f.display.Col()
	if f.display.Overflow() {
		f.vcol++
	}
	sWidth := 0
	newline := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\r' || c == '\n' {
			newline = true
			break
		}
		if c == '\b' {
			sWidth--
		} else if c >= 32 {
			sWidth++
		}
	}
	if canBreak && f.Width() != 255 && f.display.Row() != f.display.Height() &&
		f.Col() != 1 && f.Col()-1+sWidth > f.Width() && !newline {
		f.display.WriteLine(echo)
		f.vcol = 1
	}
	cwidth := f.display.Width()
	for i := 0; i < len(s); i++ {
		c := s[i : i+1]
		if f.Width() <= cwidth && f.Col() > f.Width() {
			f.display.WriteLine(echo)
			f.vcol = 1
		}
		if f.Col() <= cwidth || f.Width() <= cwidth {
			f.display.Write(c, echo)
		}
		if c == "\n" || c == "\r" {
			f.vcol = 1
		} else {
			f.vcol++
		}
	}
	return nil
}

// WriteLine writes s to the screen followed by a line break.
func (f *SCRNFile) WriteLine(s string) error {
	if err := f.Write(s, true); err != nil {
		return err
	}
	f.display.WriteLine(f.isMaster)
	return nil
}

// ReadLine is not supported on the screen device.
func (f *SCRNFile) ReadLine() (string, Terminator, error) {
	return "", TermNone, basicerror.New(basicerror.BadFileMode)
}

// InputEntry is not supported on the screen device.
func (f *SCRNFile) InputEntry(typechar byte, allowPastEnd bool) (string, string, error) {
	return "", "", basicerror.New(basicerror.BadFileMode)
}

// LOF is unsupported on SCRN: by design.
func (f *SCRNFile) LOF() (int, error) {
	return 0, basicerror.New(basicerror.BadFileMode)
}

// LOC is unsupported on SCRN: by design.
func (f *SCRNFile) LOC() (int, error) {
	return 0, basicerror.New(basicerror.BadFileMode)
}

// EOF is unsupported on SCRN: by design.
func (f *SCRNFile) EOF() (bool, error) {
	return false, basicerror.New(basicerror.BadFileMode)
}
