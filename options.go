package CouloyLite

import (
	"log"
	"os"
	"path/filepath"

	"github.com/Kirov7/CouloyLite/driver"
	"github.com/Kirov7/CouloyLite/meta"
)

type Options struct {
	// Path is the log file, or ":memory:" for a handle that never touches disk
	Path string

	// SyncWrites fsyncs the log before a commit returns
	SyncWrites bool

	IndexType IndexType

	// MergeThreshold compacts the log once it grows past this many bytes, 0 disables
	MergeThreshold int64

	// ExpireSweepLimit caps how many expired keys one write command evicts
	ExpireSweepLimit int

	Logger *log.Logger
}

type IteratorOptions struct {
	Prefix  []byte
	Reverse bool
}

type IndexType = meta.MemTableType

const (
	Btree   IndexType = meta.Btree
	ART     IndexType = meta.ART
	HashMap IndexType = meta.HashMap
)

const MemoryTarget = driver.MemoryTarget

func DefaultOptions() Options {
	return Options{
		Path:             filepath.Join(os.TempDir(), "couloy-lite.klite"),
		SyncWrites:       true,
		IndexType:        Btree,
		MergeThreshold:   0,
		ExpireSweepLimit: 64,
		Logger:           log.New(os.Stderr, "[couloy-lite] ", log.LstdFlags),
	}
}

// MemoryOptions returns DefaultOptions pointed at the in-memory target
func MemoryOptions() Options {
	opt := DefaultOptions()
	opt.Path = MemoryTarget
	return opt
}

func DefaultIteratorOptions() IteratorOptions {
	return IteratorOptions{}
}

// ParseIndexType maps the config spelling of an index to its type
func ParseIndexType(name string) (IndexType, bool) {
	switch name {
	case "btree", "":
		return Btree, true
	case "art":
		return ART, true
	case "hashmap":
		return HashMap, true
	}
	return Btree, false
}
