package data

import (
	"github.com/Kirov7/CouloyLite/public/ds"
)

type DataType uint8

const (
	String DataType = iota
	List
	Hash
	Set
	ZSet
)

func (t DataType) String() string {
	switch t {
	case String:
		return "string"
	case List:
		return "list"
	case Hash:
		return "hash"
	case Set:
		return "set"
	case ZSet:
		return "zset"
	default:
		return "none"
	}
}

// Value is the typed payload of a key, only the field matching Type is set.
// Byte slices held by a Value are never modified in place.
type Value struct {
	Type DataType
	Str  []byte
	List [][]byte
	Hash map[string][]byte
	Set  map[string]struct{}
	ZSet *ds.ZSet
}

func NewString(v []byte) *Value {
	return &Value{Type: String, Str: v}
}

func NewList() *Value {
	return &Value{Type: List, List: make([][]byte, 0)}
}

func NewHash() *Value {
	return &Value{Type: Hash, Hash: make(map[string][]byte)}
}

func NewSet() *Value {
	return &Value{Type: Set, Set: make(map[string]struct{})}
}

func NewZSet() *Value {
	return &Value{Type: ZSet, ZSet: ds.NewZSet()}
}

// Len is the number of elements of a collection, a string counts as one
func (v *Value) Len() int {
	switch v.Type {
	case List:
		return len(v.List)
	case Hash:
		return len(v.Hash)
	case Set:
		return len(v.Set)
	case ZSet:
		return v.ZSet.Len()
	default:
		return 1
	}
}

// IsEmpty reports an emptied collection, such a key must not stay in the key space
func (v *Value) IsEmpty() bool {
	return v.Type != String && v.Len() == 0
}

func (v *Value) Clone() *Value {
	c := &Value{Type: v.Type}
	switch v.Type {
	case String:
		c.Str = v.Str
	case List:
		c.List = make([][]byte, len(v.List))
		copy(c.List, v.List)
	case Hash:
		c.Hash = make(map[string][]byte, len(v.Hash))
		for field, val := range v.Hash {
			c.Hash[field] = val
		}
	case Set:
		c.Set = make(map[string]struct{}, len(v.Set))
		for member := range v.Set {
			c.Set[member] = struct{}{}
		}
	case ZSet:
		c.ZSet = v.ZSet.Clone()
	}
	return c
}

// Entry is what the key space stores per key
type Entry struct {
	Value *Value
	// ExpireAt unix milliseconds, 0 means the key never expires
	ExpireAt int64
}

func (e *Entry) Expired(now int64) bool {
	return e.ExpireAt > 0 && e.ExpireAt <= now
}

func (e *Entry) Clone() *Entry {
	return &Entry{Value: e.Value.Clone(), ExpireAt: e.ExpireAt}
}
