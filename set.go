package CouloyLite

import (
	"sort"

	"github.com/Kirov7/CouloyLite/data"
	"github.com/Kirov7/CouloyLite/public"
	"github.com/Kirov7/CouloyLite/resp/reply"
	"golang.org/x/exp/rand"
)

func (tx *Txn) getAsSet(key []byte) (map[string]struct{}, reply.ErrorReply) {
	v, errReply := tx.getValue(key, data.Set)
	if errReply != nil || v == nil {
		return nil, errReply
	}
	return v.Set, nil
}

// sortedMembers renders a set in byte order
func sortedMembers(set map[string]struct{}) [][]byte {
	members := make([]string, 0, len(set))
	for member := range set {
		members = append(members, member)
	}
	sort.Strings(members)
	result := make([][]byte, len(members))
	for i, member := range members {
		result[i] = []byte(member)
	}
	return result
}

func execSAdd(tx *Txn, args [][]byte) reply.Reply {
	entry, errReply := tx.getOrCreate(args[0], data.Set)
	if errReply != nil {
		return errReply
	}
	var added int64
	for _, member := range args[1:] {
		if _, ok := entry.Value.Set[string(member)]; !ok {
			entry.Value.Set[string(member)] = struct{}{}
			added++
		}
	}
	if added > 0 {
		tx.store(args[0], entry)
	}
	return reply.MakeIntReply(added)
}

func execSRem(tx *Txn, args [][]byte) reply.Reply {
	entry, errReply := tx.forWrite(args[0], data.Set)
	if errReply != nil {
		return errReply
	}
	if entry == nil {
		return reply.MakeIntReply(0)
	}
	var removed int64
	for _, member := range args[1:] {
		if _, ok := entry.Value.Set[string(member)]; ok {
			delete(entry.Value.Set, string(member))
			removed++
		}
	}
	if removed > 0 {
		tx.store(args[0], entry)
	}
	return reply.MakeIntReply(removed)
}

func execSIsMember(tx *Txn, args [][]byte) reply.Reply {
	set, errReply := tx.getAsSet(args[0])
	if errReply != nil {
		return errReply
	}
	if _, ok := set[string(args[1])]; ok {
		return reply.MakeIntReply(1)
	}
	return reply.MakeIntReply(0)
}

func execSCard(tx *Txn, args [][]byte) reply.Reply {
	set, errReply := tx.getAsSet(args[0])
	if errReply != nil {
		return errReply
	}
	return reply.MakeIntReply(int64(len(set)))
}

func execSMembers(tx *Txn, args [][]byte) reply.Reply {
	set, errReply := tx.getAsSet(args[0])
	if errReply != nil {
		return errReply
	}
	return reply.MakeMultiBulkReply(sortedMembers(set))
}

func execSMove(tx *Txn, args [][]byte) reply.Reply {
	source, destination, member := args[0], args[1], string(args[2])
	src, errReply := tx.forWrite(source, data.Set)
	if errReply != nil {
		return errReply
	}
	if src == nil {
		return reply.MakeIntReply(0)
	}
	if _, ok := src.Value.Set[member]; !ok {
		return reply.MakeIntReply(0)
	}
	delete(src.Value.Set, member)
	tx.store(source, src)

	dst, errReply := tx.getOrCreate(destination, data.Set)
	if errReply != nil {
		return errReply
	}
	dst.Value.Set[member] = struct{}{}
	tx.store(destination, dst)
	return reply.MakeIntReply(1)
}

// maxRandomMembers caps how many members a negative SRANDMEMBER count may repeat
const maxRandomMembers = 1 << 20

// pickMembers returns count distinct random members, with repeats allowed
// when count is negative
func pickMembers(set map[string]struct{}, count int64) [][]byte {
	members := sortedMembers(set)
	if count < 0 {
		picked := make([][]byte, -count)
		for i := range picked {
			picked[i] = members[rand.Intn(len(members))]
		}
		return picked
	}
	if count > int64(len(members)) {
		count = int64(len(members))
	}
	picked := make([][]byte, 0, count)
	for _, i := range rand.Perm(len(members))[:count] {
		picked = append(picked, members[i])
	}
	return picked
}

func execSPop(tx *Txn, args [][]byte) reply.Reply {
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
	entry, errReply := tx.forWrite(args[0], data.Set)
	if errReply != nil {
		return errReply
	}
	if entry == nil {
		if withCount {
			return reply.MakeEmptyMultiBulkReply()
		}
		return reply.MakeNullBulkReply()
	}
	popped := pickMembers(entry.Value.Set, count)
	for _, member := range popped {
		delete(entry.Value.Set, string(member))
	}
	tx.store(args[0], entry)
	if !withCount {
		return reply.MakeBulkReply(popped[0])
	}
	return reply.MakeMultiBulkReply(popped)
}

func execSRandMember(tx *Txn, args [][]byte) reply.Reply {
	count, withCount := int64(1), len(args) > 1
	if withCount {
		var errReply reply.ErrorReply
		if count, errReply = parseInt(args[1]); errReply != nil {
			return errReply
		}
		if count < -maxRandomMembers {
			return reply.MakeErrReply(public.MsgValueRange)
		}
	}
	set, errReply := tx.getAsSet(args[0])
	if errReply != nil {
		return errReply
	}
	if len(set) == 0 {
		if withCount {
			return reply.MakeEmptyMultiBulkReply()
		}
		return reply.MakeNullBulkReply()
	}
	picked := pickMembers(set, count)
	if !withCount {
		return reply.MakeBulkReply(picked[0])
	}
	return reply.MakeMultiBulkReply(picked)
}

const (
	setUnion = iota
	setInter
	setDiff
)

// algebra combines the sets at keys, absent keys count as empty sets
func (tx *Txn) algebra(keys [][]byte, op int) (map[string]struct{}, reply.ErrorReply) {
	result := make(map[string]struct{})
	for i, key := range keys {
		set, errReply := tx.getAsSet(key)
		if errReply != nil {
			return nil, errReply
		}
		switch {
		case i == 0 || op == setUnion:
			for member := range set {
				result[member] = struct{}{}
			}
		case op == setInter:
			for member := range result {
				if _, ok := set[member]; !ok {
					delete(result, member)
				}
			}
		case op == setDiff:
			for member := range set {
				delete(result, member)
			}
		}
	}
	return result, nil
}

func (tx *Txn) setAlgebra(args [][]byte, op int) reply.Reply {
	result, errReply := tx.algebra(args, op)
	if errReply != nil {
		return errReply
	}
	return reply.MakeMultiBulkReply(sortedMembers(result))
}

// setAlgebraStore writes the result over destination whatever it held
func (tx *Txn) setAlgebraStore(args [][]byte, op int) reply.Reply {
	result, errReply := tx.algebra(args[1:], op)
	if errReply != nil {
		return errReply
	}
	v := data.NewSet()
	v.Set = result
	tx.store(args[0], &data.Entry{Value: v})
	return reply.MakeIntReply(int64(len(result)))
}

func execSUnion(tx *Txn, args [][]byte) reply.Reply {
	return tx.setAlgebra(args, setUnion)
}

func execSInter(tx *Txn, args [][]byte) reply.Reply {
	return tx.setAlgebra(args, setInter)
}

func execSDiff(tx *Txn, args [][]byte) reply.Reply {
	return tx.setAlgebra(args, setDiff)
}

func execSUnionStore(tx *Txn, args [][]byte) reply.Reply {
	return tx.setAlgebraStore(args, setUnion)
}

func execSInterStore(tx *Txn, args [][]byte) reply.Reply {
	return tx.setAlgebraStore(args, setInter)
}

func execSDiffStore(tx *Txn, args [][]byte) reply.Reply {
	return tx.setAlgebraStore(args, setDiff)
}

func init() {
	registerCommand("SAdd", execSAdd, -3, flagWrite).keys(data.Set, 0, 0, 1)
	registerCommand("SRem", execSRem, -3, flagWrite).keys(data.Set, 0, 0, 1)
	registerCommand("SIsMember", execSIsMember, 3, flagReadOnly).keys(data.Set, 0, 0, 1)
	registerCommand("SCard", execSCard, 2, flagReadOnly).keys(data.Set, 0, 0, 1)
	registerCommand("SMembers", execSMembers, 2, flagReadOnly).keys(data.Set, 0, 0, 1)
	registerCommand("SMove", execSMove, 4, flagWrite).keys(data.Set, 0, 1, 1)
	registerCommand("SPop", execSPop, -2, flagWrite).keys(data.Set, 0, 0, 1).limit(3)
	registerCommand("SRandMember", execSRandMember, -2, flagReadOnly).keys(data.Set, 0, 0, 1).limit(3)
	registerCommand("SUnion", execSUnion, -2, flagReadOnly).keys(data.Set, 0, -1, 1)
	registerCommand("SInter", execSInter, -2, flagReadOnly).keys(data.Set, 0, -1, 1)
	registerCommand("SDiff", execSDiff, -2, flagReadOnly).keys(data.Set, 0, -1, 1)
	registerCommand("SUnionStore", execSUnionStore, -3, flagWrite).keys(data.Set, 1, -1, 1)
	registerCommand("SInterStore", execSInterStore, -3, flagWrite).keys(data.Set, 1, -1, 1)
	registerCommand("SDiffStore", execSDiffStore, -3, flagWrite).keys(data.Set, 1, -1, 1)
}
