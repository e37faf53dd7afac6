package meta

import (
	"testing"

	"github.com/Kirov7/CouloyLite/data"
	"github.com/stretchr/testify/assert"
)

func entryOf(s string) *data.Entry {
	return &data.Entry{Value: data.NewString([]byte(s))}
}

func TestMemTable_CRUD(t *testing.T) {
	for _, typ := range []MemTableType{Btree, ART, HashMap} {
		mt := NewMemTable(typ)

		assert.False(t, mt.Put([]byte("b"), entryOf("1")))
		assert.True(t, mt.Put([]byte("b"), entryOf("2")))
		mt.Put([]byte("a"), entryOf("3"))
		mt.Put([]byte("c"), entryOf("4"))
		assert.Equal(t, 3, mt.Count())

		assert.Equal(t, "2", string(mt.Get([]byte("b")).Value.Str))
		assert.Nil(t, mt.Get([]byte("zz")))

		assert.True(t, mt.Del([]byte("a")))
		assert.False(t, mt.Del([]byte("a")))
		assert.Equal(t, 2, mt.Count())
	}
}

func TestMemTable_Iterator(t *testing.T) {
	for _, typ := range []MemTableType{Btree, ART, HashMap} {
		mt := NewMemTable(typ)
		for _, k := range []string{"k3", "k1", "k2", "x"} {
			mt.Put([]byte(k), entryOf(k))
		}

		var keys []string
		it := mt.Iterator(false, nil)
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Key()))
			assert.Equal(t, string(it.Key()), string(it.Value().Value.Str))
		}
		it.Close()
		assert.Equal(t, []string{"k1", "k2", "k3", "x"}, keys)

		keys = keys[:0]
		it = mt.Iterator(true, nil)
		for it.Seek([]byte("k2")); it.Valid(); it.Next() {
			keys = append(keys, string(it.Key()))
		}
		assert.Equal(t, []string{"k2", "k1"}, keys)

		it = mt.Iterator(false, nil)
		it.Seek([]byte("k25"))
		assert.True(t, it.Valid())
		assert.Equal(t, "k3", string(it.Key()))
	}
}

func TestMemTable_PrefixIterator(t *testing.T) {
	for _, typ := range []MemTableType{Btree, ART, HashMap} {
		mt := NewMemTable(typ)
		for _, k := range []string{"user:2", "user", "users", "user:1", "queue", "v"} {
			mt.Put([]byte(k), entryOf(k))
		}

		var keys []string
		it := mt.Iterator(false, []byte("user:"))
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Key()))
		}
		assert.Equal(t, []string{"user:1", "user:2"}, keys, "index %d", typ)

		keys = keys[:0]
		it = mt.Iterator(true, []byte("user"))
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Key()))
		}
		assert.Equal(t, []string{"users", "user:2", "user:1", "user"}, keys, "index %d", typ)

		it = mt.Iterator(false, []byte("nope"))
		it.Rewind()
		assert.False(t, it.Valid())
	}
}
