package CouloyLite

import (
	"math"
	"strings"

	"github.com/Kirov7/CouloyLite/data"
	"github.com/Kirov7/CouloyLite/public"
	"github.com/Kirov7/CouloyLite/public/ds"
	"github.com/Kirov7/CouloyLite/resp/reply"
)

func (tx *Txn) getAsZSet(key []byte) (*ds.ZSet, reply.ErrorReply) {
	v, errReply := tx.getValue(key, data.ZSet)
	if errReply != nil || v == nil {
		return nil, errReply
	}
	return v.ZSet, nil
}

func zItemsReply(items []ds.ZItem, withScores bool) reply.Reply {
	size := len(items)
	if withScores {
		size *= 2
	}
	result := make([][]byte, 0, size)
	for _, item := range items {
		result = append(result, []byte(item.Member))
		if withScores {
			result = append(result, []byte(formatFloat(item.Score)))
		}
	}
	return reply.MakeMultiBulkReply(result)
}

// execZAdd ZADD key [NX|XX] [CH] [INCR] score member [score member ...]
func execZAdd(tx *Txn, args [][]byte) reply.Reply {
	key := args[0]
	policy := upsertPolicy
	var changed, incr bool

	i := 1
options:
	for ; i < len(args); i++ {
		switch strings.ToUpper(string(args[i])) {
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
		case "CH":
			changed = true
		case "INCR":
			incr = true
		default:
			break options
		}
	}

	pairs := args[i:]
	if len(pairs) == 0 || len(pairs)%2 != 0 || (incr && len(pairs) != 2) {
		return reply.MakeErrReply(public.MsgSyntax)
	}
	scores := make([]float64, len(pairs)/2)
	for j := range scores {
		score, errReply := parseFloat(pairs[2*j])
		if errReply != nil {
			return errReply
		}
		scores[j] = score
	}

	entry, errReply := tx.getOrCreate(key, data.ZSet)
	if errReply != nil {
		return errReply
	}
	zset := entry.Value.ZSet

	if incr {
		member := string(pairs[1])
		old, exists := zset.Score(member)
		if (policy == insertPolicy && exists) || (policy == updatePolicy && !exists) {
			return reply.MakeNullBulkReply()
		}
		score := old + scores[0]
		if math.IsNaN(score) {
			return reply.MakeErrReply(public.MsgNaN)
		}
		zset.Add(member, score)
		tx.store(key, entry)
		return reply.MakeBulkReply([]byte(formatFloat(score)))
	}

	var added, updated int64
	for j, score := range scores {
		member := string(pairs[2*j+1])
		old, exists := zset.Score(member)
		if (policy == insertPolicy && exists) || (policy == updatePolicy && !exists) {
			continue
		}
		if zset.Add(member, score) {
			added++
		} else if old != score {
			updated++
		}
	}
	if added+updated > 0 {
		tx.store(key, entry)
	}
	if changed {
		return reply.MakeIntReply(added + updated)
	}
	return reply.MakeIntReply(added)
}

func execZScore(tx *Txn, args [][]byte) reply.Reply {
	zset, errReply := tx.getAsZSet(args[0])
	if errReply != nil {
		return errReply
	}
	if zset == nil {
		return reply.MakeNullBulkReply()
	}
	score, ok := zset.Score(string(args[1]))
	if !ok {
		return reply.MakeNullBulkReply()
	}
	return reply.MakeBulkReply([]byte(formatFloat(score)))
}

func execZIncrBy(tx *Txn, args [][]byte) reply.Reply {
	delta, errReply := parseFloat(args[1])
	if errReply != nil {
		return errReply
	}
	entry, errReply := tx.getOrCreate(args[0], data.ZSet)
	if errReply != nil {
		return errReply
	}
	member := string(args[2])
	old, _ := entry.Value.ZSet.Score(member)
	score := old + delta
	if math.IsNaN(score) {
		return reply.MakeErrReply(public.MsgNaN)
	}
	entry.Value.ZSet.Add(member, score)
	tx.store(args[0], entry)
	return reply.MakeBulkReply([]byte(formatFloat(score)))
}

func execZRem(tx *Txn, args [][]byte) reply.Reply {
	entry, errReply := tx.forWrite(args[0], data.ZSet)
	if errReply != nil {
		return errReply
	}
	if entry == nil {
		return reply.MakeIntReply(0)
	}
	var removed int64
	for _, member := range args[1:] {
		if entry.Value.ZSet.Remove(string(member)) {
			removed++
		}
	}
	if removed > 0 {
		tx.store(args[0], entry)
	}
	return reply.MakeIntReply(removed)
}

func execZCard(tx *Txn, args [][]byte) reply.Reply {
	zset, errReply := tx.getAsZSet(args[0])
	if errReply != nil {
		return errReply
	}
	if zset == nil {
		return reply.MakeIntReply(0)
	}
	return reply.MakeIntReply(int64(zset.Len()))
}

func parseBorders(min, max []byte) (ds.ScoreBorder, ds.ScoreBorder, reply.ErrorReply) {
	lo, err := ds.ParseScoreBorder(string(min))
	if err != nil {
		return lo, lo, reply.MakeErrReply(public.MsgMinMaxNotFloat)
	}
	hi, err := ds.ParseScoreBorder(string(max))
	if err != nil {
		return lo, hi, reply.MakeErrReply(public.MsgMinMaxNotFloat)
	}
	return lo, hi, nil
}

func execZCount(tx *Txn, args [][]byte) reply.Reply {
	min, max, errReply := parseBorders(args[1], args[2])
	if errReply != nil {
		return errReply
	}
	zset, errReply := tx.getAsZSet(args[0])
	if errReply != nil {
		return errReply
	}
	if zset == nil {
		return reply.MakeIntReply(0)
	}
	return reply.MakeIntReply(int64(zset.Count(min, max)))
}

func (tx *Txn) zRank(args [][]byte, reverse bool) reply.Reply {
	zset, errReply := tx.getAsZSet(args[0])
	if errReply != nil {
		return errReply
	}
	if zset == nil {
		return reply.MakeNullBulkReply()
	}
	rank, ok := zset.Rank(string(args[1]), reverse)
	if !ok {
		return reply.MakeNullBulkReply()
	}
	return reply.MakeIntReply(int64(rank))
}

func execZRank(tx *Txn, args [][]byte) reply.Reply {
	return tx.zRank(args, false)
}

func execZRevRank(tx *Txn, args [][]byte) reply.Reply {
	return tx.zRank(args, true)
}

// zRange ZRANGE key start stop [WITHSCORES]
func (tx *Txn) zRange(args [][]byte, reverse bool) reply.Reply {
	withScores := false
	if len(args) == 4 {
		if !isOption(args[3], "WITHSCORES") {
			return reply.MakeErrReply(public.MsgSyntax)
		}
		withScores = true
	}
	start, errReply := parseInt(args[1])
	if errReply != nil {
		return errReply
	}
	stop, errReply := parseInt(args[2])
	if errReply != nil {
		return errReply
	}
	zset, errReply := tx.getAsZSet(args[0])
	if errReply != nil {
		return errReply
	}
	if zset == nil {
		return reply.MakeEmptyMultiBulkReply()
	}
	from, to, ok := normalizeRange(start, stop, zset.Len())
	if !ok {
		return reply.MakeEmptyMultiBulkReply()
	}
	return zItemsReply(zset.RangeByRank(from, to, reverse), withScores)
}

func execZRange(tx *Txn, args [][]byte) reply.Reply {
	return tx.zRange(args, false)
}

func execZRevRange(tx *Txn, args [][]byte) reply.Reply {
	return tx.zRange(args, true)
}

// zRangeByScore ZRANGEBYSCORE key min max [WITHSCORES] [LIMIT offset count],
// the reverse form takes max before min
func (tx *Txn) zRangeByScore(args [][]byte, reverse bool) reply.Reply {
	minArg, maxArg := args[1], args[2]
	if reverse {
		minArg, maxArg = args[2], args[1]
	}
	min, max, errReply := parseBorders(minArg, maxArg)
	if errReply != nil {
		return errReply
	}

	withScores := false
	offset, limit := int64(0), int64(-1)
	for i := 3; i < len(args); i++ {
		switch {
		case isOption(args[i], "WITHSCORES"):
			withScores = true
		case isOption(args[i], "LIMIT"):
			if i+2 >= len(args) {
				return reply.MakeErrReply(public.MsgSyntax)
			}
			if offset, errReply = parseInt(args[i+1]); errReply != nil {
				return errReply
			}
			if limit, errReply = parseInt(args[i+2]); errReply != nil {
				return errReply
			}
			i += 2
		default:
			return reply.MakeErrReply(public.MsgSyntax)
		}
	}

	zset, errReply := tx.getAsZSet(args[0])
	if errReply != nil {
		return errReply
	}
	if zset == nil || offset < 0 {
		return reply.MakeEmptyMultiBulkReply()
	}
	if limit < 0 {
		limit = -1
	}
	return zItemsReply(zset.RangeByScore(min, max, reverse, int(offset), int(limit)), withScores)
}

func execZRangeByScore(tx *Txn, args [][]byte) reply.Reply {
	return tx.zRangeByScore(args, false)
}

func execZRevRangeByScore(tx *Txn, args [][]byte) reply.Reply {
	return tx.zRangeByScore(args, true)
}

func (tx *Txn) zRemItems(key []byte, pick func(zset *ds.ZSet) []ds.ZItem) reply.Reply {
	entry, errReply := tx.forWrite(key, data.ZSet)
	if errReply != nil {
		return errReply
	}
	if entry == nil {
		return reply.MakeIntReply(0)
	}
	items := pick(entry.Value.ZSet)
	for _, item := range items {
		entry.Value.ZSet.Remove(item.Member)
	}
	if len(items) > 0 {
		tx.store(key, entry)
	}
	return reply.MakeIntReply(int64(len(items)))
}

func execZRemRangeByRank(tx *Txn, args [][]byte) reply.Reply {
	start, errReply := parseInt(args[1])
	if errReply != nil {
		return errReply
	}
	stop, errReply := parseInt(args[2])
	if errReply != nil {
		return errReply
	}
	return tx.zRemItems(args[0], func(zset *ds.ZSet) []ds.ZItem {
		from, to, ok := normalizeRange(start, stop, zset.Len())
		if !ok {
			return nil
		}
		return zset.RangeByRank(from, to, false)
	})
}

func execZRemRangeByScore(tx *Txn, args [][]byte) reply.Reply {
	min, max, errReply := parseBorders(args[1], args[2])
	if errReply != nil {
		return errReply
	}
	return tx.zRemItems(args[0], func(zset *ds.ZSet) []ds.ZItem {
		return zset.RangeByScore(min, max, false, 0, -1)
	})
}

func init() {
	registerCommand("ZAdd", execZAdd, -4, flagWrite).keys(data.ZSet, 0, 0, 1)
	registerCommand("ZScore", execZScore, 3, flagReadOnly).keys(data.ZSet, 0, 0, 1)
	registerCommand("ZIncrBy", execZIncrBy, 4, flagWrite).keys(data.ZSet, 0, 0, 1)
	registerCommand("ZRem", execZRem, -3, flagWrite).keys(data.ZSet, 0, 0, 1)
	registerCommand("ZCard", execZCard, 2, flagReadOnly).keys(data.ZSet, 0, 0, 1)
	registerCommand("ZCount", execZCount, 4, flagReadOnly).keys(data.ZSet, 0, 0, 1)
	registerCommand("ZRank", execZRank, 3, flagReadOnly).keys(data.ZSet, 0, 0, 1)
	registerCommand("ZRevRank", execZRevRank, 3, flagReadOnly).keys(data.ZSet, 0, 0, 1)
	registerCommand("ZRange", execZRange, -4, flagReadOnly).keys(data.ZSet, 0, 0, 1).limit(5)
	registerCommand("ZRevRange", execZRevRange, -4, flagReadOnly).keys(data.ZSet, 0, 0, 1).limit(5)
	registerCommand("ZRangeByScore", execZRangeByScore, -4, flagReadOnly).keys(data.ZSet, 0, 0, 1)
	registerCommand("ZRevRangeByScore", execZRevRangeByScore, -4, flagReadOnly).keys(data.ZSet, 0, 0, 1)
	registerCommand("ZRemRangeByRank", execZRemRangeByRank, 4, flagWrite).keys(data.ZSet, 0, 0, 1)
	registerCommand("ZRemRangeByScore", execZRemRangeByScore, 4, flagWrite).keys(data.ZSet, 0, 0, 1)
}
