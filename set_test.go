package CouloyLite

import (
	"testing"

	"github.com/Kirov7/CouloyLite/public"
	"github.com/Kirov7/CouloyLite/resp/reply"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_SetMembership(t *testing.T) {
	db, err := Open(MemoryOptions())
	require.Nil(t, err)
	defer destroyDB(db)

	assert.Equal(t, integer(3), do(t, db, "SADD", "s", "c", "a", "b", "a"))
	assert.Equal(t, integer(0), do(t, db, "SADD", "s", "a"))
	assert.Equal(t, integer(3), do(t, db, "SCARD", "s"))
	assert.Equal(t, integer(1), do(t, db, "SISMEMBER", "s", "a"))
	assert.Equal(t, integer(0), do(t, db, "SISMEMBER", "s", "z"))
	assert.Equal(t, bulks("a", "b", "c"), do(t, db, "SMEMBERS", "s"))
	assert.Equal(t, reply.MakeEmptyMultiBulkReply(), do(t, db, "SMEMBERS", "missing"))

	assert.Equal(t, integer(2), do(t, db, "SREM", "s", "a", "b", "z"))
	assert.Equal(t, integer(1), do(t, db, "SMOVE", "s", "t", "c"))
	assert.Equal(t, integer(0), do(t, db, "SMOVE", "s", "t", "c"))
	assert.Equal(t, integer(0), do(t, db, "EXISTS", "s"))
	assert.Equal(t, bulks("c"), do(t, db, "SMEMBERS", "t"))

	do(t, db, "SET", "str", "v")
	assert.Equal(t, public.ErrWrongType, kindOf(do(t, db, "SADD", "str", "a")))
	assert.Equal(t, public.ErrWrongType, kindOf(do(t, db, "SMOVE", "t", "str", "c")))
}

func TestDB_SetRandom(t *testing.T) {
	db, err := Open(MemoryOptions())
	require.Nil(t, err)
	defer destroyDB(db)

	do(t, db, "SADD", "s", "a", "b", "c", "d")

	r := do(t, db, "SRANDMEMBER", "s")
	assert.Equal(t, integer(1), do(t, db, "SISMEMBER", "s", string(r.(*reply.BulkReply).Arg)))
	assert.Len(t, do(t, db, "SRANDMEMBER", "s", "3").(*reply.MultiRawReply).Replies, 3)
	assert.Len(t, do(t, db, "SRANDMEMBER", "s", "10").(*reply.MultiRawReply).Replies, 4)
	assert.Len(t, do(t, db, "SRANDMEMBER", "s", "-10").(*reply.MultiRawReply).Replies, 10)
	assert.Equal(t, reply.MakeNullBulkReply(), do(t, db, "SRANDMEMBER", "missing"))

	// repeated picks are bounded, the extreme count must not wrap around
	assert.Equal(t, reply.MakeErrReply(public.MsgValueRange), do(t, db, "SRANDMEMBER", "s", "-9223372036854775808"))
	assert.Equal(t, public.ErrOutOfRange, kindOf(do(t, db, "SRANDMEMBER", "s", "-1000000000000")))
	assert.Len(t, do(t, db, "SRANDMEMBER", "s", "-1048576").(*reply.MultiRawReply).Replies, 1048576)
	assert.Equal(t, public.ErrOutOfRange, kindOf(do(t, db, "SRANDMEMBER", "s", "-1048577")))

	r = do(t, db, "SPOP", "s")
	popped := string(r.(*reply.BulkReply).Arg)
	assert.Equal(t, integer(0), do(t, db, "SISMEMBER", "s", popped))
	assert.Equal(t, integer(3), do(t, db, "SCARD", "s"))
	assert.Len(t, do(t, db, "SPOP", "s", "5").(*reply.MultiRawReply).Replies, 3)
	assert.Equal(t, integer(0), do(t, db, "EXISTS", "s"))
	assert.Equal(t, reply.MakeNullBulkReply(), do(t, db, "SPOP", "s"))
}

func TestDB_SetAlgebra(t *testing.T) {
	db, err := Open(MemoryOptions())
	require.Nil(t, err)
	defer destroyDB(db)

	do(t, db, "SADD", "s1", "a", "b", "c")
	do(t, db, "SADD", "s2", "b", "c", "d")

	assert.Equal(t, bulks("a", "b", "c", "d"), do(t, db, "SUNION", "s1", "s2", "missing"))
	assert.Equal(t, bulks("b", "c"), do(t, db, "SINTER", "s1", "s2"))
	assert.Equal(t, reply.MakeEmptyMultiBulkReply(), do(t, db, "SINTER", "s1", "missing"))
	assert.Equal(t, bulks("a"), do(t, db, "SDIFF", "s1", "s2"))

	// operands are untouched
	assert.Equal(t, bulks("a", "b", "c"), do(t, db, "SMEMBERS", "s1"))

	do(t, db, "SET", "dest", "overwritten")
	assert.Equal(t, integer(4), do(t, db, "SUNIONSTORE", "dest", "s1", "s2"))
	assert.Equal(t, bulks("a", "b", "c", "d"), do(t, db, "SMEMBERS", "dest"))
	assert.Equal(t, integer(2), do(t, db, "SINTERSTORE", "dest", "s1", "s2"))
	assert.Equal(t, integer(1), do(t, db, "SDIFFSTORE", "dest", "s1", "s2"))
	assert.Equal(t, bulks("a"), do(t, db, "SMEMBERS", "dest"))
	assert.Equal(t, integer(0), do(t, db, "SINTERSTORE", "dest", "s1", "missing"))
	assert.Equal(t, integer(0), do(t, db, "EXISTS", "dest"))

	do(t, db, "SET", "str", "v")
	assert.Equal(t, public.ErrWrongType, kindOf(do(t, db, "SUNION", "s1", "str")))
}
