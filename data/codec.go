package data

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/Kirov7/CouloyLite/data/fbs"
	flatbuffers "github.com/google/flatbuffers/go"
)

type item struct {
	key   []byte
	val   []byte
	score float64
}

// EncodeValue serializes the whole value as a fbs.Value table. Hash and set
// members are written in sorted order so equal values encode identically.
func EncodeValue(v *Value) []byte {
	builder := flatbuffers.NewBuilder(64)

	var str flatbuffers.UOffsetT
	var items []item
	switch v.Type {
	case String:
		str = builder.CreateByteVector(v.Str)
	case List:
		items = make([]item, 0, len(v.List))
		for _, elem := range v.List {
			items = append(items, item{key: elem})
		}
	case Hash:
		items = make([]item, 0, len(v.Hash))
		for field, val := range v.Hash {
			items = append(items, item{key: []byte(field), val: val})
		}
		sort.Slice(items, func(i, j int) bool { return bytes.Compare(items[i].key, items[j].key) < 0 })
	case Set:
		items = make([]item, 0, len(v.Set))
		for member := range v.Set {
			items = append(items, item{key: []byte(member)})
		}
		sort.Slice(items, func(i, j int) bool { return bytes.Compare(items[i].key, items[j].key) < 0 })
	case ZSet:
		for _, zi := range v.ZSet.Items() {
			items = append(items, item{key: []byte(zi.Member), score: zi.Score})
		}
	}

	var vec flatbuffers.UOffsetT
	if v.Type != String {
		offsets := make([]flatbuffers.UOffsetT, len(items))
		for i, it := range items {
			key := builder.CreateByteVector(it.key)
			var val flatbuffers.UOffsetT
			if it.val != nil {
				val = builder.CreateByteVector(it.val)
			}
			fbs.ItemStart(builder)
			fbs.ItemAddKey(builder, key)
			if it.val != nil {
				fbs.ItemAddVal(builder, val)
			}
			fbs.ItemAddScore(builder, it.score)
			offsets[i] = fbs.ItemEnd(builder)
		}
		fbs.ValueStartItemsVector(builder, len(offsets))
		for i := len(offsets) - 1; i >= 0; i-- {
			builder.PrependUOffsetT(offsets[i])
		}
		vec = builder.EndVector(len(offsets))
	}

	fbs.ValueStart(builder)
	fbs.ValueAddType(builder, byte(v.Type))
	if v.Type == String {
		fbs.ValueAddStr(builder, str)
	} else {
		fbs.ValueAddItems(builder, vec)
	}
	builder.Finish(fbs.ValueEnd(builder))
	return builder.FinishedBytes()
}

// DecodeValue is the inverse of EncodeValue, the result never aliases buf
func DecodeValue(buf []byte) (v *Value, err error) {
	if len(buf) < flatbuffers.SizeUOffsetT {
		return nil, fmt.Errorf("value buffer too short: %d bytes", len(buf))
	}
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("malformed value buffer: %v", r)
		}
	}()

	root := fbs.GetRootAsValue(buf, 0)
	typ := DataType(root.Type())
	it := new(fbs.Item)
	n := root.ItemsLength()

	switch typ {
	case String:
		str := root.StrBytes()
		if str == nil {
			str = []byte{}
		}
		return NewString(bytes.Clone(str)), nil
	case List:
		v = NewList()
		for i := 0; i < n; i++ {
			root.Items(it, i)
			v.List = append(v.List, cloneNonNil(it.KeyBytes()))
		}
	case Hash:
		v = NewHash()
		for i := 0; i < n; i++ {
			root.Items(it, i)
			v.Hash[string(it.KeyBytes())] = cloneNonNil(it.ValBytes())
		}
	case Set:
		v = NewSet()
		for i := 0; i < n; i++ {
			root.Items(it, i)
			v.Set[string(it.KeyBytes())] = struct{}{}
		}
	case ZSet:
		v = NewZSet()
		for i := 0; i < n; i++ {
			root.Items(it, i)
			v.ZSet.Add(string(it.KeyBytes()), it.Score())
		}
	default:
		return nil, fmt.Errorf("unknown value type %d", typ)
	}
	return v, nil
}

func cloneNonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return bytes.Clone(b)
}
