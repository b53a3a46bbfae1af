package devices

import (
	"strings"

	"github.com/fatman2021/pcbasic/pkg/basicerror"
)

// eascii codes for extended keys as the keyboard driver decodes them:
// a NUL prefix followed by the keyboard scan code.
const (
	eaHome     = "\x00\x47"
	eaUp       = "\x00\x48"
	eaPageUp   = "\x00\x49"
	eaLeft     = "\x00\x4b"
	eaRight    = "\x00\x4d"
	eaEnd      = "\x00\x4f"
	eaDown     = "\x00\x50"
	eaPageDown = "\x00\x51"
	eaInsert   = "\x00\x52"
	eaDelete   = "\x00\x53"
	eaF1       = "\x00\x3b"
	eaF2       = "\x00\x3c"
	eaF3       = "\x00\x3d"
	eaF4       = "\x00\x3e"
	eaF5       = "\x00\x3f"
	eaF6       = "\x00\x40"
	eaF7       = "\x00\x41"
	eaF8       = "\x00\x42"
	eaF9       = "\x00\x43"
	eaF10      = "\x00\x44"
)

// inputReplace maps extended input codes to their legacy control
// sequences. Function keys vanish entirely.
var inputReplace = map[string]string{
	eaHome: "\xff\x0b", eaUp: "\xff\x1e", eaPageUp: "\xfe",
	eaLeft: "\xff\x1d", eaRight: "\xff\x1c", eaEnd: "\xff\x0e",
	eaDown: "\xff\x1f", eaPageDown: "\xfe",
	eaDelete: "\xff\x7f", eaInsert: "\xff\x12",
	eaF1: "", eaF2: "", eaF3: "", eaF4: "", eaF5: "",
	eaF6: "", eaF7: "", eaF8: "", eaF9: "", eaF10: "",
}

// KYBDDevice is the KYBD: device.
type KYBDDevice struct {
	masterDevice
}

// NewKYBDDevice opens a master file on the keyboard.
func NewKYBDDevice(keyboard Keyboard, display Display) *KYBDDevice {
	d := &KYBDDevice{masterDevice{name: "KYBD:", allowedModes: "IR"}}
	d.deviceFile = NewKYBDFile(keyboard, display)
	return d
}

// KYBDFile reads the keyboard as a text file.
type KYBDFile struct {
	*TextFile
	keyboard Keyboard
	// display is needed because width on the KYBD: master follows the
	// console width
	display  Display
	isMaster bool
	// one-slot buffer for the separator character that broke the last
	// INPUT# field, to be attached to the next
	inputLast string
}

// NewKYBDFile wraps the keyboard. Append mode avoids a prefetch read
// against the null backing stream.
func NewKYBDFile(keyboard Keyboard, display Display) *KYBDFile {
	f := &KYBDFile{
		TextFile: NewTextFile(NullStream(), 'D', 'A', ""),
		keyboard: keyboard,
		display:  display,
		isMaster: true,
	}
	// line reads must go through keyboard control-code translation
	f.TextFile.readOne = f.ReadOne
	return f
}

func (f *KYBDFile) openClone(filetype, mode byte, reclen int) File {
	inst := NewKYBDFile(f.keyboard, f.display)
	inst.mode = mode
	inst.reclen = reclen
	inst.filetype = filetype
	inst.isMaster = false
	return inst
}

// InputChars reads num characters for INPUT$. Translated extended
// codes collapse to a single NUL placeholder; unmapped multi-byte
// codes are dropped.
func (f *KYBDFile) InputChars(num int) (string, error) {
	var chars strings.Builder
	for chars.Len() < num {
		codes, err := f.keyboard.ReadCodes(num - chars.Len())
		if err != nil {
			return chars.String(), err
		}
		for _, c := range codes {
			if _, ok := inputReplace[c]; ok {
				chars.WriteString("\x00")
			} else if len(c) == 1 {
				chars.WriteString(c)
			}
		}
	}
	return chars.String(), nil
}

// ReadOne reads one character with control-code replacement, keeping
// full translated sequences (INPUT and LINE INPUT). This deliberately
// diverges from InputChars.
func (f *KYBDFile) ReadOne() (string, error) {
	var chars strings.Builder
	for chars.Len() < 1 {
		codes, err := f.keyboard.ReadCodes(1)
		if err != nil {
			return chars.String(), err
		}
		for _, c := range codes {
			if repl, ok := inputReplace[c]; ok {
				chars.WriteString(repl)
			} else {
				chars.WriteString(c)
			}
		}
	}
	return chars.String(), nil
}

// LOF for KYBD: is 1.
func (f *KYBDFile) LOF() (int, error) { return 1, nil }

// LOC for KYBD: is 0.
func (f *KYBDFile) LOC() (int, error) { return 0, nil }

// EOF is only true once ^Z is next on the keyboard. The peek blocks
// until input arrives.
func (f *KYBDFile) EOF() (bool, error) {
	if f.mode == 'A' || f.mode == 'O' {
		return false, nil
	}
	b, err := f.keyboard.PeekByte()
	if err != nil {
		return false, err
	}
	return b == 0x1a, nil
}

// SetWidth on the KYBD: device (not on clones) changes console width.
func (f *KYBDFile) SetWidth(width int) {
	if f.isMaster {
		f.display.SetWidth(width)
	}
}

// InputEntry reads one INPUT# field from the live keyboard. Character
// production is on demand and control-code translation happens in
// ReadOne, so the scan differs from the buffered tokenizer: after a
// closing quote the first non-whitespace, non-terminator character is
// pushed back for the next field instead of being dropped.
func (f *KYBDFile) InputEntry(typechar byte, allowPastEnd bool) (string, string, error) {
	word, blanks := "", ""
	var c string
	var err error
	if f.inputLast != "" {
		c, f.inputLast = f.inputLast, ""
	} else {
		c, err = f.ReadOne()
		if err != nil {
			return "", "", err
		}
	}
	quoted := c == "\"" && typechar == '$'
	if quoted {
		c, err = f.ReadOne()
		if err != nil {
			return "", "", err
		}
	}
	if c == "" && !allowPastEnd {
		return "", "", basicerror.New(basicerror.InputPastEnd)
	}
	parsingTrail := false
	for c != "" && !((c == "," || c == "\r") && !quoted) {
		if c == "\"" && quoted {
			parsingTrail = true
		} else if c == "\n" && !quoted {
			// LF, LFCR are dropped entirely
			c, err = f.ReadOne()
			if err != nil {
				return word, c, err
			}
			if c == "\r" {
				c, err = f.ReadOne()
				if err != nil {
					return word, c, err
				}
			}
			continue
		} else if c == "\x00" {
			// NUL is dropped even within quotes
		} else if strings.Contains(whitespaceInput, c) && !quoted {
			if typechar == '$' {
				blanks += c
			}
		} else {
			word += blanks + c
			blanks = ""
		}
		if len(word)+len(blanks) >= 255 {
			break
		}
		// control-code replacement applies even inside quotes
		c, err = f.ReadOne()
		if err != nil {
			return word, c, err
		}
		if parsingTrail {
			if !strings.Contains(whitespaceInput, c) || c == "" {
				if c != "," && c != "\r" && c != "" {
					f.inputLast = c
				}
				break
			}
		}
		parsingTrail = parsingTrail || (typechar != '$' && c == " ")
	}
	return word, c, nil
}
