package driver

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileIO is a log file opened for appending, reads are positional
type FileIO struct {
	fd *os.File
}

func NewFileIOManager(path string) (*FileIO, error) {
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, DataFilePerm)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return &FileIO{fd: fd}, nil
}

func (f *FileIO) Read(buf []byte, offset int64) (int, error) {
	return f.fd.ReadAt(buf, offset)
}

func (f *FileIO) Write(buf []byte) (int, error) {
	return f.fd.Write(buf)
}

func (f *FileIO) Sync() error {
	return f.fd.Sync()
}

func (f *FileIO) Close() error {
	return f.fd.Close()
}

func (f *FileIO) Size() (int64, error) {
	stat, err := f.fd.Stat()
	if err != nil {
		return 0, err
	}
	return stat.Size(), nil
}

// Truncate works with O_APPEND: the next write lands at the new end of file
func (f *FileIO) Truncate(size int64) error {
	if err := f.fd.Truncate(size); err != nil {
		return err
	}
	return f.fd.Sync()
}

// ReplaceFile makes content the new content of path. It is written to
// tmpPath and synced first, so a crash leaves either the old or the new
// file behind and at worst a stale tmpPath.
func ReplaceFile(path, tmpPath string, content []byte) error {
	_ = os.Remove(tmpPath)
	tmp, err := NewFileIOManager(tmpPath)
	if err != nil {
		return err
	}
	_, err = tmp.Write(content)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmpPath, path)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "replace %s", path)
	}

	// directory fsync is best effort, not every platform supports it
	if dir, err := os.Open(filepath.Dir(path)); err == nil {
		_ = dir.Sync()
		_ = dir.Close()
	}
	return nil
}
