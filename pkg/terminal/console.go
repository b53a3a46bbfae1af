package terminal

import (
	"sync"

	"github.com/fatman2021/pcbasic/pkg/basicerror"
	"github.com/fatman2021/pcbasic/pkg/logger"
)

// keyCodes maps named client keys to the keyboard scan sequences the
// device layer expects: a NUL prefix followed by the scan code.
var keyCodes = map[string]string{
	"Home":       "\x00\x47",
	"ArrowUp":    "\x00\x48",
	"PageUp":     "\x00\x49",
	"ArrowLeft":  "\x00\x4b",
	"ArrowRight": "\x00\x4d",
	"End":        "\x00\x4f",
	"ArrowDown":  "\x00\x50",
	"PageDown":   "\x00\x51",
	"Insert":     "\x00\x52",
	"Delete":     "\x00\x53",
	"F1":         "\x00\x3b",
	"F2":         "\x00\x3c",
	"F3":         "\x00\x3d",
	"F4":         "\x00\x3e",
	"F5":         "\x00\x3f",
	"F6":         "\x00\x40",
	"F7":         "\x00\x41",
	"F8":         "\x00\x42",
	"F9":         "\x00\x43",
	"F10":        "\x00\x44",
	"Enter":      "\r",
	"Backspace":  "\x08",
	"Tab":        "\t",
	"Escape":     "\x1b",
}

// Console models the remote screen and keyboard of one websocket
// session. The cursor tracking mirrors the classic text mode console:
// a character written in the last column sets the overflow flag and
// leaves the cursor in place; the next character wraps.
type Console struct {
	mu       sync.Mutex
	col      int
	row      int
	width    int
	height   int
	overflow bool

	keys    chan string
	pending string // one decoded code held back by a peek

	send func(Message)

	closed    chan struct{}
	closeOnce sync.Once
}

// NewConsole creates a console with the given geometry. send delivers
// output frames to the client; it may be nil for a detached console.
func NewConsole(width, height, keyBuffer int, send func(Message)) *Console {
	return &Console{
		col:    1,
		row:    1,
		width:  width,
		height: height,
		keys:   make(chan string, keyBuffer),
		send:   send,
		closed: make(chan struct{}),
	}
}

// Close releases readers blocked on keyboard input.
func (c *Console) Close() {
	c.closeOnce.Do(func() { close(c.closed) })
}

// Col returns the 1-based cursor column.
func (c *Console) Col() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.col
}

// Row returns the 1-based cursor row.
func (c *Console) Row() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.row
}

// Width returns the screen width in columns.
func (c *Console) Width() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width
}

// Height returns the screen height in rows.
func (c *Console) Height() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

// Overflow reports whether the last write landed in the last column.
func (c *Console) Overflow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overflow
}

// lineFeedLocked advances the cursor one row; on the bottom row the
// screen scrolls and the cursor stays.
func (c *Console) lineFeedLocked() {
	if c.row < c.height {
		c.row++
	}
}

// Write tracks ch on the cursor model and, when echo is set, forwards
// it to the client.
func (c *Console) Write(ch string, echo bool) {
	c.mu.Lock()
	for i := 0; i < len(ch); i++ {
		switch b := ch[i]; {
		case b == '\r':
			c.col = 1
			c.overflow = false
		case b == '\n':
			c.col = 1
			c.overflow = false
			c.lineFeedLocked()
		case b == '\b':
			if c.col > 1 {
				c.col--
			}
			c.overflow = false
		case b >= 32:
			if c.overflow {
				c.col = 1
				c.overflow = false
				c.lineFeedLocked()
			}
			if c.col == c.width {
				c.overflow = true
			} else {
				c.col++
			}
		}
	}
	c.mu.Unlock()
	if echo && c.send != nil {
		c.send(Message{Type: MessageTypeText, Content: ch, NoNewline: true})
	}
}

// WriteLine moves the cursor to the start of the next row.
func (c *Console) WriteLine(echo bool) {
	c.mu.Lock()
	c.col = 1
	c.overflow = false
	c.lineFeedLocked()
	c.mu.Unlock()
	if echo && c.send != nil {
		c.send(Message{Type: MessageTypeText, Content: "\r\n", NoNewline: true})
	}
}

// SetWidth switches the screen width. Like the classic WIDTH statement
// this clears the screen and homes the cursor.
func (c *Console) SetWidth(width int) {
	c.mu.Lock()
	c.width = width
	c.col = 1
	c.row = 1
	c.overflow = false
	c.mu.Unlock()
	if c.send != nil {
		c.send(Message{Type: MessageTypeWidth, Width: width})
		c.send(Message{Type: MessageTypeClear})
	}
}

// PushKey feeds one key event from the client into the input queue.
// Named keys translate to their scan sequences; unknown names are
// dropped. A full queue drops the key rather than stalling the reader.
func (c *Console) PushKey(msg Message) {
	code := msg.Content
	if msg.Key != "" {
		var ok bool
		code, ok = keyCodes[msg.Key]
		if !ok {
			logger.Debug(logger.AreaKeyboard, "unmapped key %q", msg.Key)
			return
		}
	}
	if code == "" {
		return
	}
	select {
	case c.keys <- code:
	default:
		logger.Warn(logger.AreaKeyboard, "key buffer full, dropping %q", code)
	}
}

// takeCode returns the next decoded code, honoring a held-back peek.
// It blocks until input arrives or the console closes.
func (c *Console) takeCode() (string, error) {
	if c.pending != "" {
		code := c.pending
		c.pending = ""
		return code, nil
	}
	select {
	case code := <-c.keys:
		return code, nil
	case <-c.closed:
		return "", basicerror.NewWithInfo(basicerror.DeviceIOError, "console closed")
	}
}

// ReadCodes returns up to n input codes, blocking for the first one and
// draining whatever else is already queued.
func (c *Console) ReadCodes(n int) ([]string, error) {
	if n < 1 {
		return nil, nil
	}
	first, err := c.takeCode()
	if err != nil {
		return nil, err
	}
	codes := []string{first}
	for len(codes) < n {
		select {
		case code := <-c.keys:
			codes = append(codes, code)
		default:
			return codes, nil
		}
	}
	return codes, nil
}

// PeekByte blocks until input is available and reports its first byte
// without consuming the code.
func (c *Console) PeekByte() (byte, error) {
	if c.pending == "" {
		code, err := c.takeCode()
		if err != nil {
			return 0, err
		}
		c.pending = code
	}
	return c.pending[0], nil
}
