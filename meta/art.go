package meta

import (
	"bytes"
	"sort"
	"sync"

	"github.com/Kirov7/CouloyLite/data"
	art "github.com/plar/go-adaptive-radix-tree"
)

type AdaptiveRadixTree struct {
	tree art.Tree
	lock *sync.RWMutex
}

func NewAdaptiveRadixTree() *AdaptiveRadixTree {
	return &AdaptiveRadixTree{
		tree: art.New(),
		lock: new(sync.RWMutex),
	}
}

func (a *AdaptiveRadixTree) Put(key []byte, entry *data.Entry) bool {
	a.lock.Lock()
	defer a.lock.Unlock()
	_, updated := a.tree.Insert(key, entry)
	return updated
}

func (a *AdaptiveRadixTree) Get(key []byte) *data.Entry {
	a.lock.RLock()
	defer a.lock.RUnlock()
	value, ok := a.tree.Search(key)
	if !ok {
		return nil
	}
	return value.(*data.Entry)
}

func (a *AdaptiveRadixTree) Del(key []byte) bool {
	a.lock.Lock()
	defer a.lock.Unlock()
	_, deleted := a.tree.Delete(key)
	return deleted
}

func (a *AdaptiveRadixTree) Count() int {
	a.lock.RLock()
	defer a.lock.RUnlock()
	return a.tree.Size()
}

func (a *AdaptiveRadixTree) Iterator(reverse bool, prefix []byte) Iterator {
	a.lock.RLock()
	defer a.lock.RUnlock()
	if len(prefix) == 0 {
		return newArtIterator(a.tree, reverse)
	}

	values := make([]*Item, 0)
	a.tree.ForEachPrefix(prefix, func(node art.Node) bool {
		if node.Kind() == art.Leaf {
			values = append(values, &Item{Key: node.Key(), Entry: node.Value().(*data.Entry)})
		}
		return true
	})
	sort.Slice(values, func(i, j int) bool {
		return bytes.Compare(values[i].Key, values[j].Key) < 0
	})
	if reverse {
		reverseItems(values)
	}
	return &sliceIterator{reverse: reverse, values: values}
}

func newArtIterator(tree art.Tree, reverse bool) *sliceIterator {
	var idx int

	// store all data to this slice
	if reverse {
		idx = tree.Size() - 1
	}

	values := make([]*Item, tree.Size())
	saveValues := func(node art.Node) bool {
		values[idx] = &Item{
			Key:   node.Key(),
			Entry: node.Value().(*data.Entry),
		}
		if reverse {
			idx--
		} else {
			idx++
		}
		return true
	}

	tree.ForEach(saveValues)

	return &sliceIterator{reverse: reverse, values: values}
}
