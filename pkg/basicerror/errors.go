// Package basicerror defines the structured runtime errors the device
// and file layer reports to the interpreter. Every error carries the
// legacy numeric code the BASIC error-handling path expects.
package basicerror

import (
	"errors"
	"fmt"
)

// Legacy error codes. The values are fixed by the historical runtime
// and must not be renumbered.
const (
	BadFileNumber     = 52
	FileNotFound      = 53
	BadFileMode       = 54
	FileAlreadyOpen   = 55
	DeviceIOError     = 57
	DiskFull          = 61
	InputPastEnd      = 62
	BadFileName       = 64
	DeviceUnavailable = 68
	PermissionDenied  = 70
)

// ErrorTexts maps error codes to the classic report strings.
var ErrorTexts = map[int]string{
	BadFileNumber:     "Bad file number",
	FileNotFound:      "File not found",
	BadFileMode:       "Bad file mode",
	FileAlreadyOpen:   "File already open",
	DeviceIOError:     "Device I/O error",
	DiskFull:          "Disk full",
	InputPastEnd:      "Input past end",
	BadFileName:       "Bad file name",
	DeviceUnavailable: "Device unavailable",
	PermissionDenied:  "Permission denied",
}

// BASICError is a runtime error with a legacy numeric code.
type BASICError struct {
	Code int
	// Info holds optional context (device name, stream detail). It is
	// never part of the user-visible message.
	Info string
}

// New creates a BASICError for the given code.
func New(code int) *BASICError {
	return &BASICError{Code: code}
}

// NewWithInfo creates a BASICError carrying extra context for logs.
func NewWithInfo(code int, format string, args ...interface{}) *BASICError {
	return &BASICError{Code: code, Info: fmt.Sprintf(format, args...)}
}

// Error implements the error interface with the classic message text.
func (be *BASICError) Error() string {
	text, ok := ErrorTexts[be.Code]
	if !ok {
		text = "Unprintable error"
	}
	return text
}

// Is makes errors.Is match on the numeric code.
func (be *BASICError) Is(target error) bool {
	other, ok := target.(*BASICError)
	return ok && other.Code == be.Code
}

// CodeOf returns the legacy code of err, or 0 if err is not a
// BASICError.
func CodeOf(err error) int {
	var be *BASICError
	if errors.As(err, &be) {
		return be.Code
	}
	return 0
}

// IsCode reports whether err is a BASICError with the given code.
func IsCode(err error, code int) bool {
	return CodeOf(err) == code
}
