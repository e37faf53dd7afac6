package CouloyLite

import (
	"math"
	"sort"
	"strings"

	"github.com/Kirov7/CouloyLite/data"
	"github.com/Kirov7/CouloyLite/public"
	"github.com/Kirov7/CouloyLite/public/utils/wildcard"
	"github.com/Kirov7/CouloyLite/resp/reply"
)

// scanKeys returns the visible keys starting with prefix and accepted by
// match in byte order, the overlay shadows the committed key space
func (tx *Txn) scanKeys(prefix string, match func(key string) bool) []string {
	keys := make([]string, 0)
	it := tx.db.memTable.Iterator(false, []byte(prefix))
	for it.Rewind(); it.Valid(); it.Next() {
		key := string(it.Key())
		if _, ok := tx.pendingWrites[key]; ok || it.Value().Expired(tx.now) {
			continue
		}
		if match(key) {
			keys = append(keys, key)
		}
	}
	it.Close()

	for key, pw := range tx.pendingWrites {
		if pw.typ == data.LogRecordNormal && !pw.entry.Expired(tx.now) && strings.HasPrefix(key, prefix) && match(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

func (tx *Txn) dbSize() int {
	return len(tx.scanKeys("", func(string) bool { return true }))
}

func execPing(tx *Txn, args [][]byte) reply.Reply {
	if len(args) == 1 {
		return reply.MakeBulkReply(args[0])
	}
	return reply.MakePongReply()
}

func execEcho(tx *Txn, args [][]byte) reply.Reply {
	return reply.MakeBulkReply(args[0])
}

// execDel removes keys, answers how many existed
func execDel(tx *Txn, args [][]byte) reply.Reply {
	var deleted int64
	for _, key := range args {
		if tx.remove(key) {
			deleted++
		}
	}
	return reply.MakeIntReply(deleted)
}

// execExists counts the given keys that exist, repeats count again
func execExists(tx *Txn, args [][]byte) reply.Reply {
	var result int64
	for _, key := range args {
		if tx.lookup(key) != nil {
			result++
		}
	}
	return reply.MakeIntReply(result)
}

func execType(tx *Txn, args [][]byte) reply.Reply {
	entry := tx.lookup(args[0])
	if entry == nil {
		return reply.MakeStatusReply("none")
	}
	return reply.MakeStatusReply(entry.Value.Type.String())
}

// execKeys returns all keys matching the given pattern
func execKeys(tx *Txn, args [][]byte) reply.Reply {
	pattern := wildcard.CompilePattern(string(args[0]))
	keys := tx.scanKeys(pattern.LiteralPrefix(), pattern.IsMatch)
	result := make([][]byte, len(keys))
	for i, key := range keys {
		result[i] = []byte(key)
	}
	return reply.MakeMultiBulkReply(result)
}

func execDBSize(tx *Txn, args [][]byte) reply.Reply {
	return reply.MakeIntReply(int64(tx.dbSize()))
}

// execFlushDB deletes every key, one delete record per key
func execFlushDB(tx *Txn, args [][]byte) reply.Reply {
	if len(args) == 1 && !isOption(args[0], "SYNC") && !isOption(args[0], "ASYNC") {
		return reply.MakeErrReply(public.MsgSyntax)
	}
	for _, key := range tx.scanKeys("", func(string) bool { return true }) {
		tx.remove([]byte(key))
	}
	return reply.MakeOkReply()
}

// execRename moves the value and ttl of src to dest, overwriting dest
func execRename(tx *Txn, args [][]byte) reply.Reply {
	src, dest := args[0], args[1]
	entry := tx.lookup(src)
	if entry == nil {
		return reply.MakeErrReply(public.MsgNoSuchKey)
	}
	if string(src) == string(dest) {
		return reply.MakeOkReply()
	}
	moved := entry.Clone()
	tx.remove(src)
	tx.store(dest, moved)
	return reply.MakeOkReply()
}

func execRenameNx(tx *Txn, args [][]byte) reply.Reply {
	src, dest := args[0], args[1]
	if tx.lookup(src) == nil {
		return reply.MakeErrReply(public.MsgNoSuchKey)
	}
	if tx.lookup(dest) != nil {
		return reply.MakeIntReply(0)
	}
	if r := execRename(tx, args); reply.IsErrorReply(r) {
		return r
	}
	return reply.MakeIntReply(1)
}

// expireKey sets the absolute deadline of key in unix milliseconds, a
// deadline in the past deletes the key right away
func (tx *Txn) expireKey(key []byte, deadline int64) reply.Reply {
	entry := tx.lookup(key)
	if entry == nil {
		return reply.MakeIntReply(0)
	}
	if deadline <= tx.now {
		tx.remove(key)
		return reply.MakeIntReply(1)
	}
	updated := entry.Clone()
	updated.ExpireAt = deadline
	tx.store(key, updated)
	return reply.MakeIntReply(1)
}

// relativeExpire handles EXPIRE and PEXPIRE, unit is the milliseconds per unit of args[1]
func relativeExpire(tx *Txn, args [][]byte, unit int64) reply.Reply {
	ttl, errReply := parseInt(args[1])
	if errReply != nil {
		return errReply
	}
	if ttl > (math.MaxInt64-tx.now)/unit || ttl < (math.MinInt64+tx.now)/unit {
		return reply.MakeErrReply(public.MsgInvalidExpire)
	}
	return tx.expireKey(args[0], tx.now+ttl*unit)
}

// absoluteExpire handles EXPIREAT and PEXPIREAT
func absoluteExpire(tx *Txn, args [][]byte, unit int64) reply.Reply {
	at, errReply := parseInt(args[1])
	if errReply != nil {
		return errReply
	}
	if at > math.MaxInt64/unit || at < math.MinInt64/unit {
		return reply.MakeErrReply(public.MsgInvalidExpire)
	}
	return tx.expireKey(args[0], at*unit)
}

func execExpire(tx *Txn, args [][]byte) reply.Reply {
	return relativeExpire(tx, args, 1000)
}

func execPExpire(tx *Txn, args [][]byte) reply.Reply {
	return relativeExpire(tx, args, 1)
}

func execExpireAt(tx *Txn, args [][]byte) reply.Reply {
	return absoluteExpire(tx, args, 1000)
}

func execPExpireAt(tx *Txn, args [][]byte) reply.Reply {
	return absoluteExpire(tx, args, 1)
}

// remainingTTL answers -2 for an absent key and -1 for a key without deadline
func remainingTTL(tx *Txn, key []byte, unit int64) reply.Reply {
	entry := tx.lookup(key)
	if entry == nil {
		return reply.MakeIntReply(-2)
	}
	if entry.ExpireAt == 0 {
		return reply.MakeIntReply(-1)
	}
	left := entry.ExpireAt - tx.now
	return reply.MakeIntReply((left + unit - 1) / unit)
}

func execTTL(tx *Txn, args [][]byte) reply.Reply {
	return remainingTTL(tx, args[0], 1000)
}

func execPTTL(tx *Txn, args [][]byte) reply.Reply {
	return remainingTTL(tx, args[0], 1)
}

func execPersist(tx *Txn, args [][]byte) reply.Reply {
	entry := tx.lookup(args[0])
	if entry == nil || entry.ExpireAt == 0 {
		return reply.MakeIntReply(0)
	}
	updated := entry.Clone()
	updated.ExpireAt = 0
	tx.store(args[0], updated)
	return reply.MakeIntReply(1)
}

func init() {
	registerCommand("Ping", execPing, -1, flagReadOnly).limit(2)
	registerCommand("Echo", execEcho, 2, flagReadOnly)
	registerCommand("Del", execDel, -2, flagWrite)
	registerCommand("Exists", execExists, -2, flagReadOnly)
	registerCommand("Type", execType, 2, flagReadOnly)
	registerCommand("Keys", execKeys, 2, flagReadOnly)
	registerCommand("DBSize", execDBSize, 1, flagReadOnly)
	registerCommand("FlushDB", execFlushDB, -1, flagWrite).limit(2)
	registerCommand("FlushAll", execFlushDB, -1, flagWrite).limit(2)
	registerCommand("Rename", execRename, 3, flagWrite)
	registerCommand("RenameNx", execRenameNx, 3, flagWrite)
	registerCommand("Expire", execExpire, 3, flagWrite)
	registerCommand("PExpire", execPExpire, 3, flagWrite)
	registerCommand("ExpireAt", execExpireAt, 3, flagWrite)
	registerCommand("PExpireAt", execPExpireAt, 3, flagWrite)
	registerCommand("TTL", execTTL, 2, flagReadOnly)
	registerCommand("PTTL", execPTTL, 2, flagReadOnly)
	registerCommand("Persist", execPersist, 2, flagWrite)
}
