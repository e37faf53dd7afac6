package CouloyLite

import (
	"testing"

	"github.com/Kirov7/CouloyLite/public"
	"github.com/Kirov7/CouloyLite/resp/reply"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_HashSetGet(t *testing.T) {
	db, err := Open(MemoryOptions())
	require.Nil(t, err)
	defer destroyDB(db)

	assert.Equal(t, integer(2), do(t, db, "HSET", "h", "f1", "v1", "f2", "v2"))
	assert.Equal(t, integer(0), do(t, db, "HSET", "h", "f1", "v1b"))
	assert.Equal(t, public.ErrMalformedCommand, kindOf(do(t, db, "HSET", "h", "f1", "v1", "f2")))
	assert.Equal(t, reply.MakeOkReply(), do(t, db, "HMSET", "h", "f3", "v3"))

	assert.Equal(t, bulk("v1b"), do(t, db, "HGET", "h", "f1"))
	assert.Equal(t, reply.MakeNullBulkReply(), do(t, db, "HGET", "h", "nope"))
	assert.Equal(t, reply.MakeNullBulkReply(), do(t, db, "HGET", "missing", "f1"))
	assert.Equal(t, reply.MakeMultiBulkReply([][]byte{[]byte("v2"), nil}), do(t, db, "HMGET", "h", "f2", "nope"))

	assert.Equal(t, integer(3), do(t, db, "HLEN", "h"))
	assert.Equal(t, integer(1), do(t, db, "HEXISTS", "h", "f2"))
	assert.Equal(t, integer(0), do(t, db, "HEXISTS", "h", "nope"))
	assert.Equal(t, integer(3), do(t, db, "HSTRLEN", "h", "f1"))
	assert.Equal(t, bulks("f1", "v1b", "f2", "v2", "f3", "v3"), do(t, db, "HGETALL", "h"))
	assert.Equal(t, bulks("f1", "f2", "f3"), do(t, db, "HKEYS", "h"))
	assert.Equal(t, bulks("v1b", "v2", "v3"), do(t, db, "HVALS", "h"))
	assert.Equal(t, reply.MakeEmptyMultiBulkReply(), do(t, db, "HGETALL", "missing"))

	assert.Equal(t, integer(0), do(t, db, "HSETNX", "h", "f1", "x"))
	assert.Equal(t, integer(1), do(t, db, "HSETNX", "h", "f4", "x"))

	do(t, db, "SET", "s", "v")
	assert.Equal(t, public.ErrWrongType, kindOf(do(t, db, "HSET", "s", "f", "v")))
	assert.Equal(t, public.ErrWrongType, kindOf(do(t, db, "HGETALL", "s")))
}

func TestDB_HashDel(t *testing.T) {
	db, err := Open(MemoryOptions())
	require.Nil(t, err)
	defer destroyDB(db)

	do(t, db, "HSET", "h", "a", "1", "b", "2")
	assert.Equal(t, integer(1), do(t, db, "HDEL", "h", "a", "nope"))
	assert.Equal(t, integer(0), do(t, db, "HDEL", "missing", "a"))
	assert.Equal(t, integer(1), do(t, db, "HDEL", "h", "b"))
	assert.Equal(t, integer(0), do(t, db, "EXISTS", "h"))
	assert.Equal(t, reply.MakeStatusReply("none"), do(t, db, "TYPE", "h"))
}

func TestDB_HashIncr(t *testing.T) {
	db, err := Open(MemoryOptions())
	require.Nil(t, err)
	defer destroyDB(db)

	assert.Equal(t, integer(5), do(t, db, "HINCRBY", "h", "n", "5"))
	assert.Equal(t, integer(2), do(t, db, "HINCRBY", "h", "n", "-3"))
	assert.Equal(t, bulk("2.5"), do(t, db, "HINCRBYFLOAT", "h", "n", "0.5"))
	assert.Equal(t, public.ErrNotANumber, kindOf(do(t, db, "HINCRBY", "h", "n", "1")))

	do(t, db, "HSET", "h", "text", "abc")
	assert.Equal(t, public.ErrNotANumber, kindOf(do(t, db, "HINCRBYFLOAT", "h", "text", "1")))
	do(t, db, "HSET", "h", "max", "9223372036854775807")
	assert.Equal(t, public.ErrOutOfRange, kindOf(do(t, db, "HINCRBY", "h", "max", "1")))
	assert.Equal(t, public.ErrMalformedCommand, kindOf(do(t, db, "HINCRBY", "h", "n", "x")))
	assert.Equal(t, public.ErrMalformedCommand, kindOf(do(t, db, "HINCRBY", "h", "n", "+1")))
	do(t, db, "HSET", "h", "plus", "+7")
	assert.Equal(t, public.ErrNotANumber, kindOf(do(t, db, "HINCRBY", "h", "plus", "1")))
}
