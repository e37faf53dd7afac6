package CouloyLite

import (
	"github.com/Kirov7/CouloyLite/data"
	"github.com/Kirov7/CouloyLite/meta"
)

// Iterator walks the committed key space as of its creation, expired keys are skipped
type Iterator struct {
	IndexIterator meta.Iterator
	now           int64
}

func (db *DB) NewIterator(options IteratorOptions) *Iterator {
	db.lock.RLock()
	defer db.lock.RUnlock()
	return db.newIterator(options)
}

func (db *DB) newIterator(options IteratorOptions) *Iterator {
	return &Iterator{
		IndexIterator: db.memTable.Iterator(options.Reverse, options.Prefix),
		now:           db.clock(),
	}
}

func (it *Iterator) Rewind() {
	it.IndexIterator.Rewind()
	it.skipToNext()
}

func (it *Iterator) Seek(key []byte) {
	it.IndexIterator.Seek(key)
	it.skipToNext()
}

func (it *Iterator) Next() {
	it.IndexIterator.Next()
	it.skipToNext()
}

func (it *Iterator) Valid() bool {
	return it.IndexIterator.Valid()
}

func (it *Iterator) Key() []byte {
	return it.IndexIterator.Key()
}

// Value returns a copy of the value, changing it does not affect the key space
func (it *Iterator) Value() *data.Value {
	return it.IndexIterator.Value().Value.Clone()
}

// ExpireAt returns the deadline of the current key in unix milliseconds, 0 if none
func (it *Iterator) ExpireAt() int64 {
	return it.IndexIterator.Value().ExpireAt
}

func (it *Iterator) Close() {
	it.IndexIterator.Close()
}

func (it *Iterator) skipToNext() {
	for it.IndexIterator.Valid() && it.IndexIterator.Value().Expired(it.now) {
		it.IndexIterator.Next()
	}
}
