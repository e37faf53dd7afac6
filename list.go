package CouloyLite

import (
	"bytes"

	"github.com/Kirov7/CouloyLite/data"
	"github.com/Kirov7/CouloyLite/public"
	"github.com/Kirov7/CouloyLite/resp/reply"
)

func (tx *Txn) getAsList(key []byte) ([][]byte, reply.ErrorReply) {
	v, errReply := tx.getValue(key, data.List)
	if errReply != nil || v == nil {
		return nil, errReply
	}
	return v.List, nil
}

// push inserts values one by one at the head or the tail, when onlyExisting
// is set an absent key is left alone
func (tx *Txn) push(key []byte, values [][]byte, left, onlyExisting bool) reply.Reply {
	entry, errReply := tx.forWrite(key, data.List)
	if errReply != nil {
		return errReply
	}
	if entry == nil {
		if onlyExisting {
			return reply.MakeIntReply(0)
		}
		entry = &data.Entry{Value: data.NewList()}
	}
	list := entry.Value.List
	if left {
		head := make([][]byte, 0, len(list)+len(values))
		for i := len(values) - 1; i >= 0; i-- {
			head = append(head, values[i])
		}
		list = append(head, list...)
	} else {
		list = append(list, values...)
	}
	entry.Value.List = list
	tx.store(key, entry)
	return reply.MakeIntReply(int64(len(list)))
}

func execLPush(tx *Txn, args [][]byte) reply.Reply {
	return tx.push(args[0], args[1:], true, false)
}

func execRPush(tx *Txn, args [][]byte) reply.Reply {
	return tx.push(args[0], args[1:], false, false)
}

func execLPushX(tx *Txn, args [][]byte) reply.Reply {
	return tx.push(args[0], args[1:], true, true)
}

func execRPushX(tx *Txn, args [][]byte) reply.Reply {
	return tx.push(args[0], args[1:], false, true)
}

// pop removes count elements from one end. Without count the reply is a
// single bulk, with count it is an array.
func (tx *Txn) pop(args [][]byte, left bool) reply.Reply {
	count, withCount := int64(1), len(args) > 1
	if withCount {
		var errReply reply.ErrorReply
		if count, errReply = parseInt(args[1]); errReply != nil {
			return errReply
		}
		if count < 0 {
			return reply.MakeErrReply(public.MsgIndexOutRange)
		}
	}
	entry, errReply := tx.forWrite(args[0], data.List)
	if errReply != nil {
		return errReply
	}
	if entry == nil {
		return reply.MakeNullBulkReply()
	}

	if count == 0 {
		return reply.MakeEmptyMultiBulkReply()
	}
	list := entry.Value.List
	if count > int64(len(list)) {
		count = int64(len(list))
	}
	popped := make([][]byte, 0, count)
	if left {
		popped = append(popped, list[:count]...)
		entry.Value.List = list[count:]
	} else {
		for i := len(list) - 1; i >= len(list)-int(count); i-- {
			popped = append(popped, list[i])
		}
		entry.Value.List = list[:len(list)-int(count)]
	}
	tx.store(args[0], entry)

	if !withCount {
		return reply.MakeBulkReply(popped[0])
	}
	return reply.MakeMultiBulkReply(popped)
}

func execLPop(tx *Txn, args [][]byte) reply.Reply {
	return tx.pop(args, true)
}

func execRPop(tx *Txn, args [][]byte) reply.Reply {
	return tx.pop(args, false)
}

func execLLen(tx *Txn, args [][]byte) reply.Reply {
	list, errReply := tx.getAsList(args[0])
	if errReply != nil {
		return errReply
	}
	return reply.MakeIntReply(int64(len(list)))
}

// listIndex resolves a possibly negative index, ok is false when it is out of range
func listIndex(index int64, size int) (int, bool) {
	if index < 0 {
		index += int64(size)
	}
	if index < 0 || index >= int64(size) {
		return 0, false
	}
	return int(index), true
}

// execLIndex answers nil for an index out of range
func execLIndex(tx *Txn, args [][]byte) reply.Reply {
	index, errReply := parseInt(args[1])
	if errReply != nil {
		return errReply
	}
	list, errReply := tx.getAsList(args[0])
	if errReply != nil {
		return errReply
	}
	i, ok := listIndex(index, len(list))
	if !ok {
		return reply.MakeNullBulkReply()
	}
	return reply.MakeBulkReply(list[i])
}

func execLRange(tx *Txn, args [][]byte) reply.Reply {
	start, errReply := parseInt(args[1])
	if errReply != nil {
		return errReply
	}
	stop, errReply := parseInt(args[2])
	if errReply != nil {
		return errReply
	}
	list, errReply := tx.getAsList(args[0])
	if errReply != nil {
		return errReply
	}
	from, to, ok := normalizeRange(start, stop, len(list))
	if !ok {
		return reply.MakeEmptyMultiBulkReply()
	}
	return reply.MakeMultiBulkReply(list[from : to+1])
}

func execLSet(tx *Txn, args [][]byte) reply.Reply {
	index, errReply := parseInt(args[1])
	if errReply != nil {
		return errReply
	}
	entry, errReply := tx.forWrite(args[0], data.List)
	if errReply != nil {
		return errReply
	}
	if entry == nil {
		return reply.MakeErrReply(public.MsgNoSuchKey)
	}
	i, ok := listIndex(index, len(entry.Value.List))
	if !ok {
		return reply.MakeErrReply(public.MsgIndexOutRange)
	}
	entry.Value.List[i] = args[2]
	tx.store(args[0], entry)
	return reply.MakeOkReply()
}

// execLRem removes count occurrences of value, from the tail when count < 0
// and all of them when count is 0
func execLRem(tx *Txn, args [][]byte) reply.Reply {
	count, errReply := parseInt(args[1])
	if errReply != nil {
		return errReply
	}
	entry, errReply := tx.forWrite(args[0], data.List)
	if errReply != nil {
		return errReply
	}
	if entry == nil {
		return reply.MakeIntReply(0)
	}

	list := entry.Value.List
	remove := make([]bool, len(list))
	var removed int64
	if count >= 0 {
		for i := 0; i < len(list) && (count == 0 || removed < count); i++ {
			if bytes.Equal(list[i], args[2]) {
				remove[i] = true
				removed++
			}
		}
	} else {
		for i := len(list) - 1; i >= 0 && removed < -count; i-- {
			if bytes.Equal(list[i], args[2]) {
				remove[i] = true
				removed++
			}
		}
	}
	if removed == 0 {
		return reply.MakeIntReply(0)
	}
	kept := make([][]byte, 0, len(list)-int(removed))
	for i, elem := range list {
		if !remove[i] {
			kept = append(kept, elem)
		}
	}
	entry.Value.List = kept
	tx.store(args[0], entry)
	return reply.MakeIntReply(removed)
}

func execLTrim(tx *Txn, args [][]byte) reply.Reply {
	start, errReply := parseInt(args[1])
	if errReply != nil {
		return errReply
	}
	stop, errReply := parseInt(args[2])
	if errReply != nil {
		return errReply
	}
	entry, errReply := tx.forWrite(args[0], data.List)
	if errReply != nil {
		return errReply
	}
	if entry == nil {
		return reply.MakeOkReply()
	}
	from, to, ok := normalizeRange(start, stop, len(entry.Value.List))
	if !ok {
		entry.Value.List = nil
	} else {
		entry.Value.List = entry.Value.List[from : to+1]
	}
	tx.store(args[0], entry)
	return reply.MakeOkReply()
}

// execLInsert inserts value before or after the first occurrence of pivot
func execLInsert(tx *Txn, args [][]byte) reply.Reply {
	var before bool
	switch {
	case isOption(args[1], "BEFORE"):
		before = true
	case isOption(args[1], "AFTER"):
	default:
		return reply.MakeErrReply(public.MsgSyntax)
	}
	entry, errReply := tx.forWrite(args[0], data.List)
	if errReply != nil {
		return errReply
	}
	if entry == nil {
		return reply.MakeIntReply(0)
	}
	list := entry.Value.List
	for i, elem := range list {
		if !bytes.Equal(elem, args[2]) {
			continue
		}
		if !before {
			i++
		}
		inserted := make([][]byte, 0, len(list)+1)
		inserted = append(inserted, list[:i]...)
		inserted = append(inserted, args[3])
		inserted = append(inserted, list[i:]...)
		entry.Value.List = inserted
		tx.store(args[0], entry)
		return reply.MakeIntReply(int64(len(inserted)))
	}
	return reply.MakeIntReply(-1)
}

// execRPopLPush moves the tail of source to the head of destination
func execRPopLPush(tx *Txn, args [][]byte) reply.Reply {
	source, destination := args[0], args[1]
	src, errReply := tx.forWrite(source, data.List)
	if errReply != nil {
		return errReply
	}
	if src == nil {
		return reply.MakeNullBulkReply()
	}
	list := src.Value.List
	elem := list[len(list)-1]
	src.Value.List = list[:len(list)-1]
	tx.store(source, src)

	if r := tx.push(destination, [][]byte{elem}, true, false); reply.IsErrorReply(r) {
		return r
	}
	return reply.MakeBulkReply(elem)
}

func init() {
	registerCommand("LPush", execLPush, -3, flagWrite).keys(data.List, 0, 0, 1)
	registerCommand("RPush", execRPush, -3, flagWrite).keys(data.List, 0, 0, 1)
	registerCommand("LPushX", execLPushX, -3, flagWrite).keys(data.List, 0, 0, 1)
	registerCommand("RPushX", execRPushX, -3, flagWrite).keys(data.List, 0, 0, 1)
	registerCommand("LPop", execLPop, -2, flagWrite).keys(data.List, 0, 0, 1).limit(3)
	registerCommand("RPop", execRPop, -2, flagWrite).keys(data.List, 0, 0, 1).limit(3)
	registerCommand("LLen", execLLen, 2, flagReadOnly).keys(data.List, 0, 0, 1)
	registerCommand("LIndex", execLIndex, 3, flagReadOnly).keys(data.List, 0, 0, 1)
	registerCommand("LRange", execLRange, 4, flagReadOnly).keys(data.List, 0, 0, 1)
	registerCommand("LSet", execLSet, 4, flagWrite).keys(data.List, 0, 0, 1)
	registerCommand("LRem", execLRem, 4, flagWrite).keys(data.List, 0, 0, 1)
	registerCommand("LTrim", execLTrim, 4, flagWrite).keys(data.List, 0, 0, 1)
	registerCommand("LInsert", execLInsert, 5, flagWrite).keys(data.List, 0, 0, 1)
	registerCommand("RPopLPush", execRPopLPush, 3, flagWrite).keys(data.List, 0, 1, 1)
}
