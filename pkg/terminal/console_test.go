package terminal

import (
	"testing"
)

func collector() (*[]Message, func(Message)) {
	var msgs []Message
	return &msgs, func(m Message) { msgs = append(msgs, m) }
}

func TestConsoleCursorModel(t *testing.T) {
	c := NewConsole(5, 25, 16, nil)

	c.Write("ABCD", false)
	if c.Col() != 5 || c.Overflow() {
		t.Fatalf("col = %d overflow = %v, want 5 false", c.Col(), c.Overflow())
	}
	// writing in the last column sets overflow, the cursor stays
	c.Write("E", false)
	if c.Col() != 5 || !c.Overflow() {
		t.Fatalf("col = %d overflow = %v, want 5 true", c.Col(), c.Overflow())
	}
	// the next character wraps to the following row
	c.Write("F", false)
	if c.Col() != 2 || c.Row() != 2 || c.Overflow() {
		t.Fatalf("col = %d row = %d overflow = %v, want 2 2 false", c.Col(), c.Row(), c.Overflow())
	}
}

func TestConsoleControlChars(t *testing.T) {
	c := NewConsole(40, 25, 16, nil)
	c.Write("ABC", false)
	c.Write("\b", false)
	if c.Col() != 3 {
		t.Errorf("col after backspace = %d, want 3", c.Col())
	}
	c.Write("\r", false)
	if c.Col() != 1 {
		t.Errorf("col after CR = %d, want 1", c.Col())
	}
	c.Write("\n", false)
	if c.Row() != 2 {
		t.Errorf("row after LF = %d, want 2", c.Row())
	}
}

func TestConsoleScrollOnBottomRow(t *testing.T) {
	c := NewConsole(40, 3, 16, nil)
	c.WriteLine(false)
	c.WriteLine(false)
	c.WriteLine(false)
	c.WriteLine(false)
	if c.Row() != 3 {
		t.Errorf("row = %d, the cursor must stay on the bottom row", c.Row())
	}
}

func TestConsoleEcho(t *testing.T) {
	msgs, send := collector()
	c := NewConsole(40, 25, 16, send)

	c.Write("HI", true)
	c.Write("silent", false)
	c.WriteLine(true)

	if len(*msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(*msgs))
	}
	if (*msgs)[0].Type != MessageTypeText || (*msgs)[0].Content != "HI" {
		t.Errorf("first message = %+v", (*msgs)[0])
	}
	if (*msgs)[1].Content != "\r\n" {
		t.Errorf("second message = %+v", (*msgs)[1])
	}
}

func TestConsoleSetWidth(t *testing.T) {
	msgs, send := collector()
	c := NewConsole(80, 25, 16, send)
	c.Write("move", false)

	c.SetWidth(40)
	if c.Width() != 40 || c.Col() != 1 || c.Row() != 1 {
		t.Errorf("state = (%d, %d, %d), want (40, 1, 1)", c.Width(), c.Col(), c.Row())
	}
	if len(*msgs) != 2 || (*msgs)[0].Type != MessageTypeWidth || (*msgs)[1].Type != MessageTypeClear {
		t.Errorf("messages = %+v, want width then clear", *msgs)
	}
}

func TestConsoleKeys(t *testing.T) {
	c := NewConsole(80, 25, 16, nil)

	c.PushKey(Message{Type: MessageTypeKey, Content: "A"})
	c.PushKey(Message{Type: MessageTypeKey, Key: "ArrowUp"})
	c.PushKey(Message{Type: MessageTypeKey, Key: "NoSuchKey"})

	codes, err := c.ReadCodes(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(codes) != 2 || codes[0] != "A" || codes[1] != "\x00\x48" {
		t.Errorf("codes = %q", codes)
	}
}

func TestConsolePeekDoesNotConsume(t *testing.T) {
	c := NewConsole(80, 25, 16, nil)
	c.PushKey(Message{Type: MessageTypeKey, Content: "Z"})

	b, err := c.PeekByte()
	if err != nil {
		t.Fatal(err)
	}
	if b != 'Z' {
		t.Errorf("peek = %c, want Z", b)
	}
	codes, err := c.ReadCodes(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(codes) != 1 || codes[0] != "Z" {
		t.Errorf("codes = %q, the peeked key must still be readable", codes)
	}
}

func TestConsoleCloseUnblocksReaders(t *testing.T) {
	c := NewConsole(80, 25, 16, nil)
	done := make(chan error, 1)
	go func() {
		_, err := c.ReadCodes(1)
		done <- err
	}()
	c.Close()
	if err := <-done; err == nil {
		t.Error("ReadCodes must fail once the console is closed")
	}
}
