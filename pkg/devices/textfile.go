package devices

import (
	"io"
	"strings"

	"github.com/fatman2021/pcbasic/pkg/basicerror"
)

// Terminator tags how a ReadLine ended.
type Terminator int

const (
	// TermCR: the line ended with a carriage return.
	TermCR Terminator = iota
	// TermEOF: the line ended at end of stream.
	TermEOF
	// TermNone: the 255-character line cap was hit with no terminator
	// in sight. Callers must be able to tell truncation from a natural
	// line end.
	TermNone
)

// Whitespace for INPUT#. TAB is not whitespace here; NUL and LF are.
const whitespaceInput = " \x00\n"

// lookahead is a peekable character source over a stream: one
// uncommitted character of visibility plus the last two committed
// characters. There is no unbounded pushback.
type lookahead struct {
	stream Stream
	next   string // uncommitted; "" at end of stream
	cur    string
	prev   string
}

// readChar reads a single byte from the stream; end of stream is "".
func (la *lookahead) readChar() (string, error) {
	var buf [1]byte
	n, err := la.stream.Read(buf[:])
	if n == 1 {
		return string(buf[:1]), nil
	}
	if err != nil && err != io.EOF {
		return "", wrapIOError(err)
	}
	return "", nil
}

// advance commits the lookahead character and refills it, returning
// the committed character.
func (la *lookahead) advance() (string, error) {
	nxt, err := la.readChar()
	if err != nil {
		return "", err
	}
	c := la.next
	la.next, la.cur, la.prev = nxt, la.next, la.cur
	return c, nil
}

// TextFile is the text-I/O engine: column and width tracking, line
// reads and writes, and the INPUT field tokenizer, layered over raw
// stream access.
type TextFile struct {
	*RawFile
	width int
	col   int
	la    lookahead
	// softSep is the soft separator for numeric fields; a space for
	// buffered sources, empty on console INPUT.
	softSep string
	// readOne produces one logical character for line-oriented reads.
	// The keyboard file replaces it with its translating reader.
	readOne func() (string, error)
	reclen  int
}

// NewTextFile wraps a stream as a text file. firstChar may supply an
// already-read first character; otherwise Input/Random files prime the
// lookahead with one prefetch read, treating any fault as soft EOF.
func NewTextFile(stream Stream, filetype, mode byte, firstChar string) *TextFile {
	f := &TextFile{
		RawFile: NewRawFile(stream, filetype, mode),
		width:   255,
		col:     1,
		softSep: " ",
	}
	f.la.stream = stream
	f.la.next = firstChar
	if (f.mode == 'I' || f.mode == 'R') && firstChar == "" {
		c, err := f.la.readChar()
		if err != nil {
			c = ""
		}
		f.la.next = c
	}
	f.readOne = func() (string, error) { return f.InputChars(1) }
	return f
}

// Col returns the current column, 1-based.
func (f *TextFile) Col() int { return f.col }

// Width returns the configured width; 255 means no auto-wrap.
func (f *TextFile) Width() int { return f.width }

// SetWidth sets the file width. Range validation is the caller's.
func (f *TextFile) SetWidth(width int) { f.width = width }

// InputChars consumes up to num characters, stopping early at end of
// stream or at the soft-EOF marker.
func (f *TextFile) InputChars(num int) (string, error) {
	var s strings.Builder
	for {
		if num > -1 && s.Len() >= num {
			break
		}
		if f.la.next == "" || f.la.next == softEOF {
			break
		}
		c, err := f.la.advance()
		if err != nil {
			return s.String(), err
		}
		s.WriteString(c)
	}
	return s.String(), nil
}

// Read is not meaningful on a text file; the raw path would bypass the
// lookahead.
func (f *TextFile) Read(num int) (string, error) {
	return "", basicerror.New(basicerror.BadFileMode)
}

// ReadLine reads a single line until CR, end of stream, or 255
// characters. The terminator tag distinguishes a CR-terminated line,
// an EOF-terminated line, and a line cut off by the length cap.
func (f *TextFile) ReadLine() (string, Terminator, error) {
	var out strings.Builder
	chars := 0
	for {
		c, err := f.readOne()
		if err != nil {
			return out.String(), TermNone, err
		}
		if c == "" {
			return out.String(), TermEOF, nil
		}
		if c == "\r" {
			return out.String(), TermCR, nil
		}
		out.WriteString(c)
		chars++
		if chars == 255 {
			// the pending CR, if any, is reported but not consumed
			if f.la.next == "\r" {
				return out.String(), TermCR, nil
			}
			return out.String(), TermNone, nil
		}
	}
}

// Write writes s, inserting a line break first when the string would
// overflow the configured width. Only the start of a new string may
// break; width 255 never breaks. CR resets the column; every printable
// character advances it, wrapping 257 back to 1 regardless of width.
func (f *TextFile) Write(s string, canBreak bool) error {
	sWidth := 0
	newline := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\r' || c == '\n' {
			newline = true
			break
		}
		// nonprinting characters including tabs are not counted
		if c >= 32 {
			sWidth++
		}
	}
	if canBreak && f.width != 255 && f.col != 1 && f.col-1+sWidth > f.width && !newline {
		if err := f.WriteLine(""); err != nil {
			return err
		}
		f.col = 1
	}
	for i := 0; i < len(s); i++ {
		c := s[i : i+1]
		if err := f.RawFile.Write(c); err != nil {
			return err
		}
		if c == "\r" {
			f.col = 1
		} else if c[0] >= 32 {
			f.col++
			// col-1 is a byte that wraps
			if f.col == 257 {
				f.col = 1
			}
		}
	}
	return nil
}

// WriteLine writes s followed by CR.
func (f *TextFile) WriteLine(s string) error {
	return f.Write(s+"\r", true)
}

// EOF reports end of file: never in Output/Append mode, otherwise when
// the lookahead holds end-of-stream or the soft-EOF marker.
func (f *TextFile) EOF() (bool, error) {
	if f.mode == 'A' || f.mode == 'O' {
		return false, nil
	}
	return f.la.next == "" || f.la.next == softEOF, nil
}

// LOF is not available on a plain text stream.
func (f *TextFile) LOF() (int, error) {
	return 0, basicerror.New(basicerror.BadFileMode)
}

// LOC is not available on a plain text stream.
func (f *TextFile) LOC() (int, error) {
	return 0, basicerror.New(basicerror.BadFileMode)
}

// skipWhitespace drops a run of characters from the given whitespace
// set and returns the last one skipped. An LF followed by CR drops the
// CR as well, reporting the pair as LF.
func (f *TextFile) skipWhitespace(whitespace string) (string, error) {
	c := ""
	for f.la.next != "" && strings.Contains(whitespace, f.la.next) {
		var err error
		c, err = f.readOne()
		if err != nil {
			return c, err
		}
		if c == "\n" && f.la.next == "\r" {
			// LFCR: drop the CR, report as LF
			if _, err := f.readOne(); err != nil {
				return c, err
			}
		}
	}
	return c, nil
}

// InputEntry reads one number or string field for INPUT#. typechar is
// the target type sigil ('$' for strings); the returned separator
// tells the caller whether more fields follow (comma) or the record
// ended (CR or empty).
func (f *TextFile) InputEntry(typechar byte, allowPastEnd bool) (string, string, error) {
	word, blanks := "", ""
	last, err := f.skipWhitespace(whitespaceInput)
	if err != nil {
		return "", "", err
	}
	c, err := f.readOne()
	if err != nil {
		return "", "", err
	}
	// LF escapes quotes; quoting is disallowed when the last skipped
	// whitespace character was LF or NUL
	quoted := c == "\"" && typechar == '$' && last != "\n" && last != "\x00"
	if quoted {
		c, err = f.readOne()
		if err != nil {
			return "", "", err
		}
	}
	// LF escapes end of file, return empty string
	if c == "" && !allowPastEnd && last != "\n" && last != "\x00" {
		return "", "", basicerror.New(basicerror.InputPastEnd)
	}
	for c != "" && !((typechar != '$' && strings.Contains(f.softSep, c)) ||
		((c == "," || c == "\r") && !quoted)) {
		if c == "\"" && quoted {
			// whitespace after the closing quote is skipped below
			break
		} else if c == "\n" && !quoted {
			// LF, LFCR are dropped entirely
			c, err = f.readOne()
			if err != nil {
				return word, c, err
			}
			if c == "\r" {
				c, err = f.readOne()
				if err != nil {
					return word, c, err
				}
			}
			continue
		} else if c == "\x00" {
			// NUL is dropped even within quotes
		} else if strings.Contains(whitespaceInput, c) && !quoted {
			// whitespace is excluded from numbers; in strings it is
			// buffered and only flushed when more content follows
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
		if !quoted {
			c, err = f.readOne()
		} else {
			// no CRLF replacement inside quotes
			c, err = f.InputChars(1)
		}
		if err != nil {
			return word, c, err
		}
	}
	// if the separator was whitespace or the closing quote, skip
	// trailing spaces before any comma or hard separator
	if (c != "" && strings.Contains(whitespaceInput, c)) || (quoted && c == "\"") {
		if _, err := f.skipWhitespace(" "); err != nil {
			return word, c, err
		}
		if f.la.next == "," || f.la.next == "\r" {
			c, err = f.readOne()
			if err != nil {
				return word, c, err
			}
		}
	}
	// stream position is one past the separator
	return word, c, nil
}
