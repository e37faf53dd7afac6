package meta

import (
	"bytes"
	"sort"
	"strings"
	"sync"

	"github.com/Kirov7/CouloyLite/data"
)

type HashMapIndex struct {
	sm *sync.Map
}

func NewHashMap() *HashMapIndex {
	return &HashMapIndex{sm: &sync.Map{}}
}

func (h *HashMapIndex) Put(key []byte, entry *data.Entry) bool {
	_, loaded := h.sm.Swap(string(key), entry)
	return loaded
}

func (h *HashMapIndex) Get(key []byte) *data.Entry {
	value, ok := h.sm.Load(string(key))
	if !ok {
		return nil
	}
	return value.(*data.Entry)
}

func (h *HashMapIndex) Del(key []byte) bool {
	_, loaded := h.sm.LoadAndDelete(string(key))
	return loaded
}

func (h *HashMapIndex) Count() int {
	size := 0
	h.sm.Range(func(_, _ interface{}) bool {
		size++
		return true
	})
	return size
}

func (h *HashMapIndex) Iterator(reverse bool, prefix []byte) Iterator {
	values := make([]*Item, 0)
	h.sm.Range(func(key, value interface{}) bool {
		if !strings.HasPrefix(key.(string), string(prefix)) {
			return true
		}
		values = append(values, &Item{
			Key:   []byte(key.(string)),
			Entry: value.(*data.Entry),
		})
		return true
	})

	sort.Slice(values, func(i, j int) bool {
		if reverse {
			return bytes.Compare(values[i].Key, values[j].Key) > 0
		}
		return bytes.Compare(values[i].Key, values[j].Key) < 0
	})

	return &sliceIterator{reverse: reverse, values: values}
}
