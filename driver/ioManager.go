package driver

import "errors"

const (
	DataFilePerm = 0644

	// MemoryTarget selects an in-memory byte stream instead of a file
	MemoryTarget = ":memory:"
)

var ErrReadOnly = errors.New("the io manager is read only")

type IOManager interface {
	// Read By specifying the location data in a read the file
	Read([]byte, int64) (int, error)

	// Write Appending bytes of data to the end of the stream
	Write([]byte) (int, error)

	// Sync Make data persistent
	Sync() error

	// Close Close the driver
	Close() error

	Size() (int64, error)

	// Truncate Cut the stream back to size bytes, later writes continue from there
	Truncate(size int64) error
}

// NewIOManager Init IOManager instance for the given storage target
func NewIOManager(fileName string) (IOManager, error) {
	if fileName == MemoryTarget {
		return NewMemIO(), nil
	}
	return NewFileIOManager(fileName)
}
