package devices

import (
	"strings"

	"github.com/fatman2021/pcbasic/pkg/basicerror"
	"github.com/fatman2021/pcbasic/pkg/logger"
)

// Magic bytes some devices use to tag the file type on save.
var (
	TypeToMagic = map[byte]byte{'B': 0xFF, 'P': 0xFE, 'M': 0xFD}
	MagicToType = map[byte]byte{0xFF: 'B', 0xFE: 'P', 0xFD: 'M'}
)

// File is the uniform text-file contract a device open returns.
// Operations a concrete device forbids fail with Bad file mode.
type File interface {
	Close() error
	FileType() byte
	Mode() byte
	InputChars(num int) (string, error)
	Read(num int) (string, error)
	ReadLine() (string, Terminator, error)
	Write(s string, canBreak bool) error
	WriteLine(s string) error
	InputEntry(typechar byte, allowPastEnd bool) (string, string, error)
	EOF() (bool, error)
	LOF() (int, error)
	LOC() (int, error)
	Col() int
	Width() int
	SetWidth(width int)
}

// Device is the interface the interpreter's OPEN dispatch consumes.
// Most parameters only apply to some device kinds; a device ignores
// the rest.
type Device interface {
	Open(number int, param string, filetype, mode, access byte, lock string,
		reclen, seg, offset, length int, field []byte) (File, error)
	Close() error
	Available() bool
}

// cloneable is the master-file capability: producing a new file handle
// that shares hardware access but holds independent settings.
type cloneable interface {
	File
	openClone(filetype, mode byte, reclen int) File
}

// masterDevice implements the open protocol for devices that own a
// master file.
type masterDevice struct {
	name         string
	deviceFile   cloneable
	allowedModes string
}

func (d *masterDevice) Open(number int, param string, filetype, mode, access byte,
	lock string, reclen, seg, offset, length int, field []byte) (File, error) {
	if d.deviceFile == nil {
		return nil, basicerror.NewWithInfo(basicerror.DeviceUnavailable, "%s has no master file", d.name)
	}
	if mode >= 'a' && mode <= 'z' {
		mode -= 'a' - 'A'
	}
	if !strings.ContainsRune(d.allowedModes, rune(mode)) {
		return nil, basicerror.NewWithInfo(basicerror.BadFileMode, "mode %c not allowed on %s", mode, d.name)
	}
	logger.DevicesDebug("open %s: filetype=%c mode=%c reclen=%d", d.name, filetype, mode, reclen)
	return d.deviceFile.openClone(filetype, mode, reclen), nil
}

// DeviceFile returns the master file. PRINT-style output and console
// INPUT run on the master, not on a clone.
func (d *masterDevice) DeviceFile() File {
	if d.deviceFile == nil {
		return nil
	}
	return d.deviceFile
}

// Close closes the master file on session teardown.
func (d *masterDevice) Close() error {
	if d.deviceFile != nil {
		return d.deviceFile.Close()
	}
	return nil
}

// Available reports whether the device can be opened at all.
func (d *masterDevice) Available() bool { return true }

// NullDevice is the NUL: sink. Any mode is allowed; every open gets a
// fresh text file on an always-empty stream.
type NullDevice struct{}

// NewNullDevice sets up the null device.
func NewNullDevice() *NullDevice { return &NullDevice{} }

func (d *NullDevice) Open(number int, param string, filetype, mode, access byte,
	lock string, reclen, seg, offset, length int, field []byte) (File, error) {
	return NewTextFile(NullStream(), filetype, mode, ""), nil
}

func (d *NullDevice) Close() error    { return nil }
func (d *NullDevice) Available() bool { return true }

// DeviceSettings holds width and column for devices that carry
// ambient settings without a live file.
type DeviceSettings struct {
	width int
	col   int
}

// NewDeviceSettings returns default device settings.
func NewDeviceSettings() *DeviceSettings {
	return &DeviceSettings{width: 255, col: 1}
}

func (s *DeviceSettings) Col() int           { return s.col }
func (s *DeviceSettings) Width() int         { return s.width }
func (s *DeviceSettings) SetWidth(width int) { s.width = width }
func (s *DeviceSettings) Close() error       { return nil }

// ParseProtocolString splits a device parameter string into protocol
// and options: "ADDR:rest" yields ("ADDR", "rest"), a bare value
// yields ("", value).
func ParseProtocolString(arg string) (string, string) {
	if arg == "" {
		return "", ""
	}
	addr, val, found := strings.Cut(arg, ":")
	if !found {
		return "", arg
	}
	return strings.ToUpper(addr), val
}
