package basicerror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorText(t *testing.T) {
	cases := []struct {
		code int
		text string
	}{
		{BadFileNumber, "Bad file number"},
		{FileNotFound, "File not found"},
		{BadFileMode, "Bad file mode"},
		{DeviceIOError, "Device I/O error"},
		{InputPastEnd, "Input past end"},
		{DeviceUnavailable, "Device unavailable"},
	}
	for _, c := range cases {
		if got := New(c.code).Error(); got != c.text {
			t.Errorf("code %d: %q, want %q", c.code, got, c.text)
		}
	}
}

func TestUnknownCode(t *testing.T) {
	if got := New(9999).Error(); got != "Unprintable error" {
		t.Errorf("got %q, want Unprintable error", got)
	}
}

func TestErrorsIsMatchesOnCode(t *testing.T) {
	err := NewWithInfo(BadFileMode, "mode %c not allowed", 'I')
	if !errors.Is(err, New(BadFileMode)) {
		t.Error("errors.Is must match on the code")
	}
	if errors.Is(err, New(FileNotFound)) {
		t.Error("errors.Is must not match a different code")
	}
	// matching survives wrapping
	wrapped := fmt.Errorf("open failed: %w", err)
	if !errors.Is(wrapped, New(BadFileMode)) {
		t.Error("errors.Is must match through wrapping")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(DiskFull)); got != DiskFull {
		t.Errorf("CodeOf = %d, want %d", got, DiskFull)
	}
	if got := CodeOf(errors.New("plain")); got != 0 {
		t.Errorf("CodeOf(plain) = %d, want 0", got)
	}
	if !IsCode(New(InputPastEnd), InputPastEnd) {
		t.Error("IsCode must match")
	}
	if IsCode(nil, InputPastEnd) {
		t.Error("IsCode(nil) must be false")
	}
}
