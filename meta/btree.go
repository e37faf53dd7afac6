package meta

import (
	"bytes"
	"sync"

	"github.com/Kirov7/CouloyLite/data"
	"github.com/google/btree"
)

type BTree struct {
	tree *btree.BTree
	lock *sync.RWMutex
}

// NewBTree Init BTree struct
func NewBTree() *BTree {
	return &BTree{
		tree: btree.New(32),
		lock: new(sync.RWMutex),
	}
}

func (bt *BTree) Put(key []byte, entry *data.Entry) bool {
	item := &Item{
		Key:   key,
		Entry: entry,
	}
	bt.lock.Lock()
	defer bt.lock.Unlock()

	return bt.tree.ReplaceOrInsert(item) != nil
}

func (bt *BTree) Get(key []byte) *data.Entry {
	item := &Item{
		Key: key,
	}
	bt.lock.RLock()
	defer bt.lock.RUnlock()

	value := bt.tree.Get(item)
	if value == nil {
		return nil
	}
	return value.(*Item).Entry
}

func (bt *BTree) Del(key []byte) bool {
	item := &Item{
		Key: key,
	}
	bt.lock.Lock()
	defer bt.lock.Unlock()

	return bt.tree.Delete(item) != nil
}

func (bt *BTree) Count() int {
	bt.lock.RLock()
	defer bt.lock.RUnlock()
	return bt.tree.Len()
}

func (bt *BTree) Iterator(reverse bool, prefix []byte) Iterator {
	bt.lock.RLock()
	defer bt.lock.RUnlock()

	var values []*Item
	if len(prefix) == 0 {
		values = make([]*Item, 0, bt.tree.Len())
		saveValues := func(it btree.Item) bool {
			values = append(values, it.(*Item))
			return true
		}
		if reverse {
			bt.tree.Descend(saveValues)
		} else {
			bt.tree.Ascend(saveValues)
		}
		return &sliceIterator{reverse: reverse, values: values}
	}

	// keys sharing a prefix are contiguous, stop at the first one that does not
	bt.tree.AscendGreaterOrEqual(&Item{Key: prefix}, func(it btree.Item) bool {
		item := it.(*Item)
		if !bytes.HasPrefix(item.Key, prefix) {
			return false
		}
		values = append(values, item)
		return true
	})
	if reverse {
		reverseItems(values)
	}
	return &sliceIterator{reverse: reverse, values: values}
}
