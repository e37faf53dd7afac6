package driver

import (
	"io"
	"os"

	"golang.org/x/exp/mmap"
)

// MMap is a read only view of a file, recovery scans the log through it
type MMap struct {
	readAt *mmap.ReaderAt
}

func NewMMap(fileName string) (*MMap, error) {
	fd, err := os.OpenFile(fileName, os.O_CREATE|os.O_RDWR, DataFilePerm)
	if err != nil {
		return nil, err
	}
	if err := fd.Close(); err != nil {
		return nil, err
	}
	readAt, err := mmap.Open(fileName)
	if err != nil {
		return nil, err
	}
	return &MMap{readAt: readAt}, nil
}

func (m *MMap) Read(bytes []byte, offset int64) (int, error) {
	if offset >= int64(m.readAt.Len()) {
		return 0, io.EOF
	}
	return m.readAt.ReadAt(bytes, offset)
}

func (m *MMap) Write(bytes []byte) (int, error) {
	return 0, ErrReadOnly
}

func (m *MMap) Sync() error {
	return ErrReadOnly
}

func (m *MMap) Close() error {
	return m.readAt.Close()
}

func (m *MMap) Size() (int64, error) {
	return int64(m.readAt.Len()), nil
}

func (m *MMap) Truncate(int64) error {
	return ErrReadOnly
}
