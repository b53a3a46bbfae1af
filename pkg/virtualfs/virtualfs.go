package virtualfs

import (
	"bytes"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/fatman2021/pcbasic/pkg/basicerror"
	"github.com/fatman2021/pcbasic/pkg/configuration"
	"github.com/fatman2021/pcbasic/pkg/logger"

	_ "modernc.org/sqlite"
)

func vfsDebugLog(format string, args ...interface{}) {
	logger.Debug(logger.AreaFileSystem, format, args...)
}

// VFS is the sqlite-backed virtual filesystem that disk devices open
// their files on. Files are scoped per session owner.
type VFS struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenDatabase opens the backing database and creates the schema.
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS virtual_files (
		owner TEXT NOT NULL,
		name TEXT NOT NULL,
		content BLOB NOT NULL DEFAULT x'',
		mod_time TIMESTAMP NOT NULL,
		PRIMARY KEY (owner, name)
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// New wraps an open database as a virtual filesystem.
func New(db *sql.DB) *VFS {
	return &VFS{db: db}
}

// FileInfo describes one stored file.
type FileInfo struct {
	Name    string
	Size    int
	ModTime time.Time
}

// validName enforces the legacy naming rules: nonempty, no path
// separators, no control characters.
func validName(name string) bool {
	if name == "" || len(name) > 255 {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < 32 || c == '/' || c == '\\' {
			return false
		}
	}
	return true
}

func normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// ReadFile returns the stored content of a file.
func (vfs *VFS) ReadFile(owner, name string) ([]byte, error) {
	name = normalize(name)
	if !validName(name) {
		return nil, basicerror.New(basicerror.BadFileName)
	}
	vfs.mu.Lock()
	defer vfs.mu.Unlock()
	var content []byte
	err := vfs.db.QueryRow(
		"SELECT content FROM virtual_files WHERE owner = ? AND name = ?",
		owner, name).Scan(&content)
	if err == sql.ErrNoRows {
		return nil, basicerror.New(basicerror.FileNotFound)
	}
	if err != nil {
		logger.FileSystemError("read %s: %v", name, err)
		return nil, basicerror.NewWithInfo(basicerror.DeviceIOError, "%v", err)
	}
	return content, nil
}

// WriteFile stores content under name, replacing any previous version.
// Size and quota limits come from the [FileSystem] configuration.
func (vfs *VFS) WriteFile(owner, name string, content []byte) error {
	name = normalize(name)
	if !validName(name) {
		return basicerror.New(basicerror.BadFileName)
	}
	maxSize := configuration.GetInt("FileSystem", "max_file_size_kb", 1024) * 1024
	if len(content) > maxSize {
		return basicerror.New(basicerror.DiskFull)
	}
	if content == nil {
		// a nil slice binds as NULL, violating the NOT NULL column
		content = []byte{}
	}
	vfs.mu.Lock()
	defer vfs.mu.Unlock()
	if err := vfs.checkQuotaLocked(owner, name, len(content)); err != nil {
		return err
	}
	_, err := vfs.db.Exec(
		`INSERT INTO virtual_files (owner, name, content, mod_time) VALUES (?, ?, ?, ?)
		 ON CONFLICT(owner, name) DO UPDATE SET content = excluded.content, mod_time = excluded.mod_time`,
		owner, name, content, time.Now())
	if err != nil {
		logger.FileSystemError("write %s: %v", name, err)
		return basicerror.NewWithInfo(basicerror.DeviceIOError, "%v", err)
	}
	vfsDebugLog("wrote %s for %s (%d bytes)", name, owner, len(content))
	return nil
}

// checkQuotaLocked verifies the owner's total usage after replacing
// name with a file of newSize bytes.
func (vfs *VFS) checkQuotaLocked(owner, name string, newSize int) error {
	quota := configuration.GetInt("FileSystem", "session_quota_kb", 10240) * 1024
	maxFiles := configuration.GetInt("FileSystem", "max_files_per_session", 100)
	var count, used int
	err := vfs.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(LENGTH(content)), 0) FROM virtual_files
		 WHERE owner = ? AND name != ?`, owner, name).Scan(&count, &used)
	if err != nil {
		return basicerror.NewWithInfo(basicerror.DeviceIOError, "%v", err)
	}
	if count >= maxFiles || used+newSize > quota {
		return basicerror.New(basicerror.DiskFull)
	}
	return nil
}

// DeleteFile removes a file.
func (vfs *VFS) DeleteFile(owner, name string) error {
	name = normalize(name)
	if !validName(name) {
		return basicerror.New(basicerror.BadFileName)
	}
	vfs.mu.Lock()
	defer vfs.mu.Unlock()
	res, err := vfs.db.Exec(
		"DELETE FROM virtual_files WHERE owner = ? AND name = ?", owner, name)
	if err != nil {
		return basicerror.NewWithInfo(basicerror.DeviceIOError, "%v", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return basicerror.New(basicerror.FileNotFound)
	}
	return nil
}

// ListFiles returns the owner's files sorted by name.
func (vfs *VFS) ListFiles(owner string) ([]FileInfo, error) {
	vfs.mu.Lock()
	defer vfs.mu.Unlock()
	rows, err := vfs.db.Query(
		`SELECT name, LENGTH(content), mod_time FROM virtual_files
		 WHERE owner = ? ORDER BY name`, owner)
	if err != nil {
		return nil, basicerror.NewWithInfo(basicerror.DeviceIOError, "%v", err)
	}
	defer rows.Close()
	var files []FileInfo
	for rows.Next() {
		var fi FileInfo
		if err := rows.Scan(&fi.Name, &fi.Size, &fi.ModTime); err != nil {
			return nil, basicerror.NewWithInfo(basicerror.DeviceIOError, "%v", err)
		}
		files = append(files, fi)
	}
	return files, rows.Err()
}

// DeleteOwner drops all files of one owner, on session teardown of
// non-persistent sessions.
func (vfs *VFS) DeleteOwner(owner string) error {
	vfs.mu.Lock()
	defer vfs.mu.Unlock()
	_, err := vfs.db.Exec("DELETE FROM virtual_files WHERE owner = ?", owner)
	return err
}

// StorageInfo reports an owner's usage against the configured quota.
func (vfs *VFS) StorageInfo(owner string) (usedKB, totalKB int, err error) {
	vfs.mu.Lock()
	defer vfs.mu.Unlock()
	var used int
	err = vfs.db.QueryRow(
		`SELECT COALESCE(SUM(LENGTH(content)), 0) FROM virtual_files WHERE owner = ?`,
		owner).Scan(&used)
	if err != nil {
		return 0, 0, err
	}
	return (used + 1023) / 1024, configuration.GetInt("FileSystem", "session_quota_kb", 10240), nil
}

// FileStream is the open-file handle disk devices wrap as text files.
// Reads serve from a snapshot; writes buffer in memory and flush to the
// database on Close.
type FileStream struct {
	vfs    *VFS
	owner  string
	name   string
	mode   byte
	reader *bytes.Reader
	buf    bytes.Buffer
	dirty  bool
	closed bool
}

// Open opens a stored file as a byte stream. Mode is the legacy access
// mode: I for input, O for output, A for append.
func (vfs *VFS) Open(owner, name string, mode byte) (*FileStream, error) {
	if mode >= 'a' && mode <= 'z' {
		mode -= 'a' - 'A'
	}
	name = normalize(name)
	if !validName(name) {
		return nil, basicerror.New(basicerror.BadFileName)
	}
	s := &FileStream{vfs: vfs, owner: owner, name: name, mode: mode}
	switch mode {
	case 'I':
		content, err := vfs.ReadFile(owner, name)
		if err != nil {
			return nil, err
		}
		s.reader = bytes.NewReader(content)
	case 'O':
		s.reader = bytes.NewReader(nil)
		s.dirty = true
	case 'A':
		content, err := vfs.ReadFile(owner, name)
		if err != nil && !basicerror.IsCode(err, basicerror.FileNotFound) {
			return nil, err
		}
		s.buf.Write(content)
		s.reader = bytes.NewReader(nil)
		s.dirty = true
	default:
		return nil, basicerror.New(basicerror.BadFileMode)
	}
	vfsDebugLog("open %s for %s mode %c", name, owner, mode)
	return s, nil
}

func (s *FileStream) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

func (s *FileStream) Write(p []byte) (int, error) {
	if s.mode == 'I' {
		return 0, basicerror.New(basicerror.BadFileMode)
	}
	s.dirty = true
	return s.buf.Write(p)
}

// Close flushes buffered writes back to the store.
func (s *FileStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.dirty {
		return nil
	}
	return s.vfs.WriteFile(s.owner, s.name, s.buf.Bytes())
}

// Size returns the stored length of an open input file, for LOF.
func (s *FileStream) Size() int {
	if s.mode == 'I' {
		return int(s.reader.Size())
	}
	return s.buf.Len()
}
