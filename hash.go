package CouloyLite

import (
	"math"
	"sort"
	"strconv"

	"github.com/Kirov7/CouloyLite/data"
	"github.com/Kirov7/CouloyLite/public"
	"github.com/Kirov7/CouloyLite/resp/reply"
)

func (tx *Txn) getAsHash(key []byte) (map[string][]byte, reply.ErrorReply) {
	v, errReply := tx.getValue(key, data.Hash)
	if errReply != nil || v == nil {
		return nil, errReply
	}
	return v.Hash, nil
}

// sortedFields keeps hash replies deterministic
func sortedFields(hash map[string][]byte) []string {
	fields := make([]string, 0, len(hash))
	for field := range hash {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// execHSet sets field value pairs and answers how many fields were new
func execHSet(tx *Txn, args [][]byte) reply.Reply {
	if len(args)%2 != 1 {
		return reply.MakeArgNumErrReply("hset")
	}
	entry, errReply := tx.getOrCreate(args[0], data.Hash)
	if errReply != nil {
		return errReply
	}
	var added int64
	for i := 1; i < len(args); i += 2 {
		field := string(args[i])
		if _, ok := entry.Value.Hash[field]; !ok {
			added++
		}
		entry.Value.Hash[field] = args[i+1]
	}
	tx.store(args[0], entry)
	return reply.MakeIntReply(added)
}

func execHMSet(tx *Txn, args [][]byte) reply.Reply {
	if len(args)%2 != 1 {
		return reply.MakeArgNumErrReply("hmset")
	}
	if r := execHSet(tx, args); reply.IsErrorReply(r) {
		return r
	}
	return reply.MakeOkReply()
}

func execHSetNX(tx *Txn, args [][]byte) reply.Reply {
	entry, errReply := tx.getOrCreate(args[0], data.Hash)
	if errReply != nil {
		return errReply
	}
	if _, ok := entry.Value.Hash[string(args[1])]; ok {
		return reply.MakeIntReply(0)
	}
	entry.Value.Hash[string(args[1])] = args[2]
	tx.store(args[0], entry)
	return reply.MakeIntReply(1)
}

func execHGet(tx *Txn, args [][]byte) reply.Reply {
	hash, errReply := tx.getAsHash(args[0])
	if errReply != nil {
		return errReply
	}
	value, ok := hash[string(args[1])]
	if !ok {
		return reply.MakeNullBulkReply()
	}
	return reply.MakeBulkReply(value)
}

func execHMGet(tx *Txn, args [][]byte) reply.Reply {
	hash, errReply := tx.getAsHash(args[0])
	if errReply != nil {
		return errReply
	}
	values := make([][]byte, len(args)-1)
	for i, field := range args[1:] {
		values[i] = hash[string(field)]
	}
	return reply.MakeMultiBulkReply(values)
}

// execHDel removes fields, deleting the last one deletes the key
func execHDel(tx *Txn, args [][]byte) reply.Reply {
	entry, errReply := tx.forWrite(args[0], data.Hash)
	if errReply != nil {
		return errReply
	}
	if entry == nil {
		return reply.MakeIntReply(0)
	}
	var deleted int64
	for _, field := range args[1:] {
		if _, ok := entry.Value.Hash[string(field)]; ok {
			delete(entry.Value.Hash, string(field))
			deleted++
		}
	}
	if deleted > 0 {
		tx.store(args[0], entry)
	}
	return reply.MakeIntReply(deleted)
}

func execHExists(tx *Txn, args [][]byte) reply.Reply {
	hash, errReply := tx.getAsHash(args[0])
	if errReply != nil {
		return errReply
	}
	if _, ok := hash[string(args[1])]; ok {
		return reply.MakeIntReply(1)
	}
	return reply.MakeIntReply(0)
}

func execHLen(tx *Txn, args [][]byte) reply.Reply {
	hash, errReply := tx.getAsHash(args[0])
	if errReply != nil {
		return errReply
	}
	return reply.MakeIntReply(int64(len(hash)))
}

func execHStrLen(tx *Txn, args [][]byte) reply.Reply {
	hash, errReply := tx.getAsHash(args[0])
	if errReply != nil {
		return errReply
	}
	return reply.MakeIntReply(int64(len(hash[string(args[1])])))
}

// execHGetAll answers field value pairs ordered by field
func execHGetAll(tx *Txn, args [][]byte) reply.Reply {
	hash, errReply := tx.getAsHash(args[0])
	if errReply != nil {
		return errReply
	}
	result := make([][]byte, 0, 2*len(hash))
	for _, field := range sortedFields(hash) {
		result = append(result, []byte(field), hash[field])
	}
	return reply.MakeMultiBulkReply(result)
}

func execHKeys(tx *Txn, args [][]byte) reply.Reply {
	hash, errReply := tx.getAsHash(args[0])
	if errReply != nil {
		return errReply
	}
	result := make([][]byte, 0, len(hash))
	for _, field := range sortedFields(hash) {
		result = append(result, []byte(field))
	}
	return reply.MakeMultiBulkReply(result)
}

func execHVals(tx *Txn, args [][]byte) reply.Reply {
	hash, errReply := tx.getAsHash(args[0])
	if errReply != nil {
		return errReply
	}
	result := make([][]byte, 0, len(hash))
	for _, field := range sortedFields(hash) {
		result = append(result, hash[field])
	}
	return reply.MakeMultiBulkReply(result)
}

func execHIncrBy(tx *Txn, args [][]byte) reply.Reply {
	delta, errReply := parseInt(args[2])
	if errReply != nil {
		return errReply
	}
	entry, errReply := tx.getOrCreate(args[0], data.Hash)
	if errReply != nil {
		return errReply
	}
	field := string(args[1])
	var n int64
	if old, ok := entry.Value.Hash[field]; ok {
		var ok bool
		if n, ok = parseInt64(old); !ok {
			return reply.MakeErrReply(public.MsgHashNotInteger)
		}
	}
	if (delta > 0 && n > math.MaxInt64-delta) || (delta < 0 && n < math.MinInt64-delta) {
		return reply.MakeErrReply(public.MsgOverflow)
	}
	n += delta
	entry.Value.Hash[field] = []byte(strconv.FormatInt(n, 10))
	tx.store(args[0], entry)
	return reply.MakeIntReply(n)
}

func execHIncrByFloat(tx *Txn, args [][]byte) reply.Reply {
	delta, errReply := parseFloat(args[2])
	if errReply != nil {
		return errReply
	}
	entry, errReply := tx.getOrCreate(args[0], data.Hash)
	if errReply != nil {
		return errReply
	}
	field := string(args[1])
	var f float64
	if old, ok := entry.Value.Hash[field]; ok {
		var err error
		f, err = strconv.ParseFloat(string(old), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return reply.MakeErrReply(public.MsgHashNotFloat)
		}
	}
	f += delta
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return reply.MakeErrReply(public.MsgNaN)
	}
	value := []byte(formatFloat(f))
	entry.Value.Hash[field] = value
	tx.store(args[0], entry)
	return reply.MakeBulkReply(value)
}

func init() {
	registerCommand("HSet", execHSet, -4, flagWrite).keys(data.Hash, 0, 0, 1)
	registerCommand("HMSet", execHMSet, -4, flagWrite).keys(data.Hash, 0, 0, 1)
	registerCommand("HSetNX", execHSetNX, 4, flagWrite).keys(data.Hash, 0, 0, 1)
	registerCommand("HGet", execHGet, 3, flagReadOnly).keys(data.Hash, 0, 0, 1)
	registerCommand("HMGet", execHMGet, -3, flagReadOnly).keys(data.Hash, 0, 0, 1)
	registerCommand("HDel", execHDel, -3, flagWrite).keys(data.Hash, 0, 0, 1)
	registerCommand("HExists", execHExists, 3, flagReadOnly).keys(data.Hash, 0, 0, 1)
	registerCommand("HLen", execHLen, 2, flagReadOnly).keys(data.Hash, 0, 0, 1)
	registerCommand("HStrLen", execHStrLen, 3, flagReadOnly).keys(data.Hash, 0, 0, 1)
	registerCommand("HGetAll", execHGetAll, 2, flagReadOnly).keys(data.Hash, 0, 0, 1)
	registerCommand("HKeys", execHKeys, 2, flagReadOnly).keys(data.Hash, 0, 0, 1)
	registerCommand("HVals", execHVals, 2, flagReadOnly).keys(data.Hash, 0, 0, 1)
	registerCommand("HIncrBy", execHIncrBy, 4, flagWrite).keys(data.Hash, 0, 0, 1)
	registerCommand("HIncrByFloat", execHIncrByFloat, 4, flagWrite).keys(data.Hash, 0, 0, 1)
}
