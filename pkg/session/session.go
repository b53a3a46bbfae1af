// Package session owns the per-connection runtime state: the device
// table, the open-file table and the session's slice of the virtual
// filesystem.
package session

import (
	"sync"

	"github.com/fatman2021/pcbasic/pkg/basicerror"
	"github.com/fatman2021/pcbasic/pkg/configuration"
	"github.com/fatman2021/pcbasic/pkg/devices"
	"github.com/fatman2021/pcbasic/pkg/logger"
	"github.com/fatman2021/pcbasic/pkg/virtualfs"
)

// Session is one connected console with its devices and open files.
type Session struct {
	ID string

	vfs      *virtualfs.VFS
	devices  map[string]devices.Device
	files    map[int]devices.File
	maxFiles int
	mu       sync.Mutex
}

// New builds a session around a display and keyboard. The standard
// device set is SCRN:, KYBD: and NUL:; everything else resolves on the
// virtual filesystem.
func New(id string, vfs *virtualfs.VFS, display devices.Display, keyboard devices.Keyboard) *Session {
	s := &Session{
		ID:       id,
		vfs:      vfs,
		files:    make(map[int]devices.File),
		maxFiles: configuration.GetInt("Devices", "max_open_files", 16),
	}
	s.devices = map[string]devices.Device{
		"SCRN:": devices.NewSCRNDevice(display),
		"KYBD:": devices.NewKYBDDevice(keyboard, display),
		"NUL:":  devices.NewNullDevice(),
	}
	return s
}

// Device returns a registered device by its name, SCRN: style.
func (s *Session) Device(name string) (devices.Device, bool) {
	d, ok := s.devices[name]
	return d, ok
}

// ScreenFile returns the master SCRN: file. Writes on it echo to the
// live console.
func (s *Session) ScreenFile() devices.File {
	return s.devices["SCRN:"].(*devices.SCRNDevice).DeviceFile()
}

// KeyboardFile returns the master KYBD: file.
func (s *Session) KeyboardFile() devices.File {
	return s.devices["KYBD:"].(*devices.KYBDDevice).DeviceFile()
}

// OpenFile opens a device or disk file under a file number.
func (s *Session) OpenFile(number int, spec string, filetype, mode, access byte,
	lock string, reclen int) (devices.File, error) {
	if number < 1 || number > s.maxFiles {
		return nil, basicerror.New(basicerror.BadFileNumber)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, open := s.files[number]; open {
		return nil, basicerror.New(basicerror.FileAlreadyOpen)
	}
	f, err := s.openLocked(number, spec, filetype, mode, access, lock, reclen)
	if err != nil {
		return nil, err
	}
	s.files[number] = f
	logger.SessionDebug("session %s opened #%d as %q mode %c", s.ID, number, spec, mode)
	return f, nil
}

func (s *Session) openLocked(number int, spec string, filetype, mode, access byte,
	lock string, reclen int) (devices.File, error) {
	if addr, rest := devices.ParseProtocolString(spec); addr != "" {
		if dev, ok := s.devices[addr+":"]; ok {
			return dev.Open(number, rest, filetype, mode, access, lock, reclen, 0, 0, 0, nil)
		}
	}
	stream, err := s.vfs.Open(s.ID, spec, mode)
	if err != nil {
		return nil, err
	}
	return &diskFile{
		TextFile: devices.NewTextFile(stream, filetype, mode, ""),
		stream:   stream,
	}, nil
}

// File returns the file open under a number.
func (s *Session) File(number int) (devices.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[number]
	if !ok {
		return nil, basicerror.New(basicerror.BadFileNumber)
	}
	return f, nil
}

// CloseFile closes one file number. Closing a number that is not open
// is not an error, matching the legacy CLOSE statement.
func (s *Session) CloseFile(number int) error {
	s.mu.Lock()
	f, ok := s.files[number]
	delete(s.files, number)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return f.Close()
}

// CloseAll tears the session down: all open files, then all devices.
// Session files are discarded unless guest persistence is enabled.
func (s *Session) CloseAll() {
	s.mu.Lock()
	files := s.files
	s.files = make(map[int]devices.File)
	s.mu.Unlock()
	for number, f := range files {
		if err := f.Close(); err != nil {
			logger.SessionWarn("session %s close #%d: %v", s.ID, number, err)
		}
	}
	for name, dev := range s.devices {
		if err := dev.Close(); err != nil {
			logger.SessionWarn("session %s close %s: %v", s.ID, name, err)
		}
	}
	if !configuration.GetBool("FileSystem", "enable_guest_persistence", false) {
		if err := s.vfs.DeleteOwner(s.ID); err != nil {
			logger.SessionWarn("session %s cleanup: %v", s.ID, err)
		}
	}
}

// diskFile is a text file on the virtual filesystem. Unlike the pure
// device files it can answer LOF.
type diskFile struct {
	*devices.TextFile
	stream *virtualfs.FileStream
}

func (f *diskFile) LOF() (int, error) {
	return f.stream.Size(), nil
}
