package CouloyLite

import (
	"math"
	"strconv"
	"strings"

	"github.com/Kirov7/CouloyLite/data"
	"github.com/Kirov7/CouloyLite/public"
	"github.com/Kirov7/CouloyLite/resp/reply"
)

// getAsString returns the string at key, nil when absent
func (tx *Txn) getAsString(key []byte) ([]byte, reply.ErrorReply) {
	v, errReply := tx.getValue(key, data.String)
	if errReply != nil || v == nil {
		return nil, errReply
	}
	if v.Str == nil {
		return []byte{}, nil
	}
	return v.Str, nil
}

func (tx *Txn) putString(key, value []byte, expireAt int64) {
	tx.store(key, &data.Entry{Value: data.NewString(value), ExpireAt: expireAt})
}

// expireAt returns the deadline of key so rewrites can keep it, 0 if none
func (tx *Txn) expireAt(key []byte) int64 {
	if entry := tx.lookup(key); entry != nil {
		return entry.ExpireAt
	}
	return 0
}

// deadline turns a relative ttl in unit milliseconds into an absolute deadline
func (tx *Txn) deadline(arg []byte, unit int64) (int64, reply.ErrorReply) {
	ttl, errReply := parseInt(arg)
	if errReply != nil {
		return 0, errReply
	}
	if ttl <= 0 || ttl > (math.MaxInt64-tx.now)/unit {
		return 0, reply.MakeErrReply(public.MsgInvalidExpire)
	}
	return tx.now + ttl*unit, nil
}

const (
	upsertPolicy = iota // default
	insertPolicy        // set nx
	updatePolicy        // set xx
)

// execSet sets string value and time to live to the given key
func execSet(tx *Txn, args [][]byte) reply.Reply {
	key, value := args[0], args[1]
	policy := upsertPolicy
	var expireAt int64
	keepTTL, ttlSet := false, false

	for i := 2; i < len(args); i++ {
		arg := strings.ToUpper(string(args[i]))
		switch arg {
		case "NX":
			if policy == updatePolicy {
				return reply.MakeErrReply(public.MsgSyntax)
			}
			policy = insertPolicy
		case "XX":
			if policy == insertPolicy {
				return reply.MakeErrReply(public.MsgSyntax)
			}
			policy = updatePolicy
		case "KEEPTTL":
			if ttlSet {
				return reply.MakeErrReply(public.MsgSyntax)
			}
			keepTTL = true
		case "EX", "PX":
			if ttlSet || keepTTL || i+1 >= len(args) {
				return reply.MakeErrReply(public.MsgSyntax)
			}
			unit := int64(1000)
			if arg == "PX" {
				unit = 1
			}
			deadline, errReply := tx.deadline(args[i+1], unit)
			if errReply != nil {
				return errReply
			}
			expireAt, ttlSet = deadline, true
			i++
		default:
			return reply.MakeErrReply(public.MsgSyntax)
		}
	}

	exists := tx.lookup(key) != nil
	if (policy == insertPolicy && exists) || (policy == updatePolicy && !exists) {
		return reply.MakeNullBulkReply()
	}
	if keepTTL {
		expireAt = tx.expireAt(key)
	}
	tx.putString(key, value, expireAt)
	return reply.MakeOkReply()
}

// execSetNX sets string if not exists
func execSetNX(tx *Txn, args [][]byte) reply.Reply {
	if tx.lookup(args[0]) != nil {
		return reply.MakeIntReply(0)
	}
	tx.putString(args[0], args[1], 0)
	return reply.MakeIntReply(1)
}

func execSetEX(tx *Txn, args [][]byte) reply.Reply {
	return setWithTTL(tx, args, 1000)
}

func execPSetEX(tx *Txn, args [][]byte) reply.Reply {
	return setWithTTL(tx, args, 1)
}

func setWithTTL(tx *Txn, args [][]byte, unit int64) reply.Reply {
	expireAt, errReply := tx.deadline(args[1], unit)
	if errReply != nil {
		return errReply
	}
	tx.putString(args[0], args[2], expireAt)
	return reply.MakeOkReply()
}

// execGet returns string value bound to the given key
func execGet(tx *Txn, args [][]byte) reply.Reply {
	bytes, errReply := tx.getAsString(args[0])
	if errReply != nil {
		return errReply
	}
	if bytes == nil {
		return reply.MakeNullBulkReply()
	}
	return reply.MakeBulkReply(bytes)
}

// execGetSet sets value of a string-type key and returns its old value
func execGetSet(tx *Txn, args [][]byte) reply.Reply {
	old, errReply := tx.getAsString(args[0])
	if errReply != nil {
		return errReply
	}
	tx.putString(args[0], args[1], 0)
	if old == nil {
		return reply.MakeNullBulkReply()
	}
	return reply.MakeBulkReply(old)
}

func execMSet(tx *Txn, args [][]byte) reply.Reply {
	if len(args)%2 != 0 {
		return reply.MakeArgNumErrReply("mset")
	}
	for i := 0; i < len(args); i += 2 {
		tx.putString(args[i], args[i+1], 0)
	}
	return reply.MakeOkReply()
}

// execMSetNX sets all pairs only if none of the keys exist
func execMSetNX(tx *Txn, args [][]byte) reply.Reply {
	if len(args)%2 != 0 {
		return reply.MakeArgNumErrReply("msetnx")
	}
	for i := 0; i < len(args); i += 2 {
		if tx.lookup(args[i]) != nil {
			return reply.MakeIntReply(0)
		}
	}
	for i := 0; i < len(args); i += 2 {
		tx.putString(args[i], args[i+1], 0)
	}
	return reply.MakeIntReply(1)
}

// execMGet answers nil for absent keys and keys of another type
func execMGet(tx *Txn, args [][]byte) reply.Reply {
	result := make([][]byte, len(args))
	for i, key := range args {
		bytes, errReply := tx.getAsString(key)
		if errReply == nil {
			result[i] = bytes
		}
	}
	return reply.MakeMultiBulkReply(result)
}

func execAppend(tx *Txn, args [][]byte) reply.Reply {
	old, errReply := tx.getAsString(args[0])
	if errReply != nil {
		return errReply
	}
	value := make([]byte, 0, len(old)+len(args[1]))
	value = append(append(value, old...), args[1]...)
	tx.putString(args[0], value, tx.expireAt(args[0]))
	return reply.MakeIntReply(int64(len(value)))
}

// execStrLen returns len of string value bound to the given key
func execStrLen(tx *Txn, args [][]byte) reply.Reply {
	bytes, errReply := tx.getAsString(args[0])
	if errReply != nil {
		return errReply
	}
	return reply.MakeIntReply(int64(len(bytes)))
}

func execGetRange(tx *Txn, args [][]byte) reply.Reply {
	start, errReply := parseInt(args[1])
	if errReply != nil {
		return errReply
	}
	end, errReply := parseInt(args[2])
	if errReply != nil {
		return errReply
	}
	bytes, errReply := tx.getAsString(args[0])
	if errReply != nil {
		return errReply
	}
	from, to, ok := normalizeRange(start, end, len(bytes))
	if !ok {
		return reply.MakeBulkReply([]byte{})
	}
	return reply.MakeBulkReply(bytes[from : to+1])
}

// execSetRange overwrites from offset on, padding with zero bytes
func execSetRange(tx *Txn, args [][]byte) reply.Reply {
	offset, errReply := parseInt(args[1])
	if errReply != nil {
		return errReply
	}
	if offset < 0 || offset > 512<<20 {
		return reply.MakeErrReply(public.MsgOffsetRange)
	}
	old, errReply := tx.getAsString(args[0])
	if errReply != nil {
		return errReply
	}
	patch := args[2]
	if len(patch) == 0 {
		return reply.MakeIntReply(int64(len(old)))
	}
	size := len(old)
	if end := int(offset) + len(patch); end > size {
		size = end
	}
	value := make([]byte, size)
	copy(value, old)
	copy(value[offset:], patch)
	tx.putString(args[0], value, tx.expireAt(args[0]))
	return reply.MakeIntReply(int64(len(value)))
}

func (tx *Txn) incrBy(key []byte, delta int64) reply.Reply {
	old, errReply := tx.getAsString(key)
	if errReply != nil {
		return errReply
	}
	var n int64
	if old != nil {
		var ok bool
		if n, ok = parseInt64(old); !ok {
			return reply.MakeErrReply(public.MsgStoredNotInteger)
		}
	}
	if (delta > 0 && n > math.MaxInt64-delta) || (delta < 0 && n < math.MinInt64-delta) {
		return reply.MakeErrReply(public.MsgOverflow)
	}
	n += delta
	tx.putString(key, []byte(strconv.FormatInt(n, 10)), tx.expireAt(key))
	return reply.MakeIntReply(n)
}

func execIncr(tx *Txn, args [][]byte) reply.Reply {
	return tx.incrBy(args[0], 1)
}

func execDecr(tx *Txn, args [][]byte) reply.Reply {
	return tx.incrBy(args[0], -1)
}

func execIncrBy(tx *Txn, args [][]byte) reply.Reply {
	delta, errReply := parseInt(args[1])
	if errReply != nil {
		return errReply
	}
	return tx.incrBy(args[0], delta)
}

func execDecrBy(tx *Txn, args [][]byte) reply.Reply {
	delta, errReply := parseInt(args[1])
	if errReply != nil {
		return errReply
	}
	if delta == math.MinInt64 {
		return reply.MakeErrReply(public.MsgOverflow)
	}
	return tx.incrBy(args[0], -delta)
}

func execIncrByFloat(tx *Txn, args [][]byte) reply.Reply {
	delta, errReply := parseFloat(args[1])
	if errReply != nil {
		return errReply
	}
	old, errReply := tx.getAsString(args[0])
	if errReply != nil {
		return errReply
	}
	var f float64
	if old != nil {
		var err error
		f, err = strconv.ParseFloat(string(old), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return reply.MakeErrReply(public.MsgStoredNotFloat)
		}
	}
	f += delta
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return reply.MakeErrReply(public.MsgNaN)
	}
	value := []byte(formatFloat(f))
	tx.putString(args[0], value, tx.expireAt(args[0]))
	return reply.MakeBulkReply(value)
}

func init() {
	registerCommand("Set", execSet, -3, flagWrite)
	registerCommand("SetNx", execSetNX, 3, flagWrite)
	registerCommand("SetEx", execSetEX, 4, flagWrite)
	registerCommand("PSetEx", execPSetEX, 4, flagWrite)
	registerCommand("MSet", execMSet, -3, flagWrite)
	registerCommand("MSetNx", execMSetNX, -3, flagWrite)
	registerCommand("Get", execGet, 2, flagReadOnly).keys(data.String, 0, 0, 1)
	registerCommand("GetSet", execGetSet, 3, flagWrite).keys(data.String, 0, 0, 1)
	registerCommand("MGet", execMGet, -2, flagReadOnly)
	registerCommand("Append", execAppend, 3, flagWrite).keys(data.String, 0, 0, 1)
	registerCommand("StrLen", execStrLen, 2, flagReadOnly).keys(data.String, 0, 0, 1)
	registerCommand("GetRange", execGetRange, 4, flagReadOnly).keys(data.String, 0, 0, 1)
	registerCommand("SetRange", execSetRange, 4, flagWrite).keys(data.String, 0, 0, 1)
	registerCommand("Incr", execIncr, 2, flagWrite).keys(data.String, 0, 0, 1)
	registerCommand("Decr", execDecr, 2, flagWrite).keys(data.String, 0, 0, 1)
	registerCommand("IncrBy", execIncrBy, 3, flagWrite).keys(data.String, 0, 0, 1)
	registerCommand("DecrBy", execDecrBy, 3, flagWrite).keys(data.String, 0, 0, 1)
	registerCommand("IncrByFloat", execIncrByFloat, 3, flagWrite).keys(data.String, 0, 0, 1)
}
