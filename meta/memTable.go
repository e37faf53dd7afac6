package meta

import (
	"bytes"

	"github.com/Kirov7/CouloyLite/data"
	"github.com/google/btree"
)

type MemTableType = int8

const (
	Btree MemTableType = iota
	ART
	HashMap
)

// MemTable is the key space: key -> entry of exactly one typed value
type MemTable interface {
	// Put Stores the entry of key, reports whether an old entry was replaced
	Put(key []byte, entry *data.Entry) bool

	// Get Retrieve the entry based on the key
	Get(key []byte) *data.Entry

	// Del Delete the entry based on the key, reports whether it existed
	Del(key []byte) bool

	// Iterator Index iterator over a point in time view of the keys starting
	// with prefix, ascending unless reverse. An empty prefix selects every key.
	Iterator(reverse bool, prefix []byte) Iterator

	// Count get the num of all the data
	Count() int
}

func NewMemTable(typ MemTableType) MemTable {
	switch typ {
	case Btree:
		return NewBTree()
	case ART:
		return NewAdaptiveRadixTree()
	case HashMap:
		return NewHashMap()
	default:
		return NewBTree()
	}
}

type Item struct {
	Key   []byte
	Entry *data.Entry
}

func (i *Item) Less(bi btree.Item) bool {
	return bytes.Compare(i.Key, bi.(*Item).Key) == -1
}

// Iterator Generic index iterator interface
type Iterator interface {
	Rewind()
	Seek(key []byte)
	Next()
	Valid() bool
	Key() []byte
	Value() *data.Entry
	Close()
}

// sliceIterator walks a sorted snapshot of the items
type sliceIterator struct {
	currentIndex int
	reverse      bool
	values       []*Item
}

func (si *sliceIterator) Rewind() {
	si.currentIndex = 0
}

// Seek moves to the first key >= key, or <= key when reverse
func (si *sliceIterator) Seek(key []byte) {
	si.currentIndex = 0
	for si.currentIndex < len(si.values) {
		cmp := bytes.Compare(si.values[si.currentIndex].Key, key)
		if (!si.reverse && cmp >= 0) || (si.reverse && cmp <= 0) {
			return
		}
		si.currentIndex++
	}
}

func (si *sliceIterator) Next() {
	si.currentIndex += 1
}

func (si *sliceIterator) Valid() bool {
	return si.currentIndex < len(si.values)
}

func (si *sliceIterator) Key() []byte {
	return si.values[si.currentIndex].Key
}

func (si *sliceIterator) Value() *data.Entry {
	return si.values[si.currentIndex].Entry
}

func (si *sliceIterator) Close() {
	si.values = nil
}

func reverseItems(values []*Item) {
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
}
