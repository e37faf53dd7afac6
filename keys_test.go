package CouloyLite

import (
	"testing"

	"github.com/Kirov7/CouloyLite/public"
	"github.com/Kirov7/CouloyLite/resp/reply"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_PingEcho(t *testing.T) {
	db, err := Open(MemoryOptions())
	require.Nil(t, err)
	defer destroyDB(db)

	assert.Equal(t, reply.MakePongReply(), do(t, db, "PING"))
	assert.Equal(t, bulk("hi"), do(t, db, "ping", "hi"))
	assert.Equal(t, bulk("hello"), do(t, db, "ECHO", "hello"))
}

func TestDB_DelExistsType(t *testing.T) {
	db, err := Open(MemoryOptions())
	require.Nil(t, err)
	defer destroyDB(db)

	do(t, db, "SET", "s", "v")
	do(t, db, "RPUSH", "l", "v")
	do(t, db, "HSET", "h", "f", "v")
	do(t, db, "SADD", "set", "v")
	do(t, db, "ZADD", "z", "1", "v")

	for key, typ := range map[string]string{
		"s": "string", "l": "list", "h": "hash", "set": "set", "z": "zset", "nope": "none",
	} {
		assert.Equal(t, reply.MakeStatusReply(typ), do(t, db, "TYPE", key))
	}
	assert.Equal(t, integer(3), do(t, db, "EXISTS", "s", "s", "l", "nope"))
	assert.Equal(t, integer(5), do(t, db, "DBSIZE"))
	assert.Equal(t, integer(2), do(t, db, "DEL", "s", "l", "nope"))
	assert.Equal(t, integer(3), do(t, db, "DBSIZE"))
}

func TestDB_Keys(t *testing.T) {
	db, err := Open(MemoryOptions())
	require.Nil(t, err)
	defer destroyDB(db)

	do(t, db, "MSET", "user:1:name", "a", "user:2:name", "b", "user:1:age", "3", "other", "x")
	assert.Equal(t, bulks("user:1:name", "user:2:name"), do(t, db, "KEYS", "user:*:name"))
	assert.Equal(t, bulks("other", "user:1:age", "user:1:name", "user:2:name"), do(t, db, "KEYS", "*"))
	assert.Equal(t, bulks("user:1:age", "user:1:name"), do(t, db, "KEYS", "user:[1]:*"))
	assert.Equal(t, reply.MakeEmptyMultiBulkReply(), do(t, db, "KEYS", "nothing*"))

	// an open transaction sees its own writes and deletes
	require.Nil(t, db.Begin())
	do(t, db, "DEL", "other")
	do(t, db, "SET", "new", "1")
	require.Nil(t, db.WriteCommand([]byte("KEYS"), []byte("*")))
	r, err := db.Commit()
	require.Nil(t, err)
	replies := r.(*reply.MultiRawReply).Replies
	assert.Equal(t, bulks("new", "user:1:age", "user:1:name", "user:2:name"), replies[len(replies)-1])
}

func TestDB_Rename(t *testing.T) {
	db, err := Open(MemoryOptions())
	require.Nil(t, err)
	defer destroyDB(db)
	now := int64(1_000_000)
	db.clock = func() int64 { return now }

	do(t, db, "RPUSH", "src", "a", "b")
	do(t, db, "PEXPIRE", "src", "5000")
	do(t, db, "SET", "dest", "old")
	assert.Equal(t, reply.MakeOkReply(), do(t, db, "RENAME", "src", "dest"))
	assert.Equal(t, integer(0), do(t, db, "EXISTS", "src"))
	assert.Equal(t, bulks("a", "b"), do(t, db, "LRANGE", "dest", "0", "-1"))
	assert.Equal(t, integer(5000), do(t, db, "PTTL", "dest"))
	assert.Equal(t, reply.MakeOkReply(), do(t, db, "RENAME", "dest", "dest"))
	assert.Equal(t, reply.MakeErrReply(public.MsgNoSuchKey), do(t, db, "RENAME", "nope", "dest"))

	do(t, db, "SET", "other", "v")
	assert.Equal(t, integer(0), do(t, db, "RENAMENX", "dest", "other"))
	assert.Equal(t, integer(1), do(t, db, "RENAMENX", "dest", "fresh"))
	assert.Equal(t, integer(2), do(t, db, "LLEN", "fresh"))
	assert.Equal(t, reply.MakeErrReply(public.MsgNoSuchKey), do(t, db, "RENAMENX", "dest", "x"))
}

func TestDB_Expire(t *testing.T) {
	db, err := Open(MemoryOptions())
	require.Nil(t, err)
	defer destroyDB(db)
	now := int64(1_000_000)
	db.clock = func() int64 { return now }

	do(t, db, "SET", "k", "v")
	assert.Equal(t, integer(-1), do(t, db, "TTL", "k"))
	assert.Equal(t, integer(-2), do(t, db, "TTL", "nope"))
	assert.Equal(t, integer(0), do(t, db, "EXPIRE", "nope", "10"))

	assert.Equal(t, integer(1), do(t, db, "EXPIRE", "k", "10"))
	assert.Equal(t, integer(10), do(t, db, "TTL", "k"))
	assert.Equal(t, integer(10000), do(t, db, "PTTL", "k"))
	assert.Equal(t, integer(1), do(t, db, "PERSIST", "k"))
	assert.Equal(t, integer(0), do(t, db, "PERSIST", "k"))
	assert.Equal(t, integer(-1), do(t, db, "TTL", "k"))

	assert.Equal(t, integer(1), do(t, db, "EXPIREAT", "k", "1010"))
	assert.Equal(t, integer(10), do(t, db, "TTL", "k"))
	assert.Equal(t, integer(1), do(t, db, "PEXPIREAT", "k", "1000500"))
	assert.Equal(t, integer(500), do(t, db, "PTTL", "k"))

	now += 500
	assert.Equal(t, integer(-2), do(t, db, "TTL", "k"))
	assert.Equal(t, integer(0), do(t, db, "EXISTS", "k"))
	assert.Equal(t, integer(0), do(t, db, "DBSIZE"))

	// a deadline in the past deletes right away
	do(t, db, "SET", "k", "v")
	assert.Equal(t, integer(1), do(t, db, "EXPIRE", "k", "-1"))
	assert.Equal(t, integer(0), do(t, db, "EXISTS", "k"))
	assert.Equal(t, public.ErrMalformedCommand, kindOf(do(t, db, "EXPIRE", "k", "soon")))
}

func TestDB_FlushDB(t *testing.T) {
	options := testOptions(t)
	db, err := Open(options)
	require.Nil(t, err)

	do(t, db, "MSET", "a", "1", "b", "2")
	do(t, db, "SADD", "s", "m")
	assert.Equal(t, reply.MakeOkReply(), do(t, db, "FLUSHDB"))
	assert.Equal(t, integer(0), do(t, db, "DBSIZE"))
	do(t, db, "SET", "c", "3")
	assert.Equal(t, reply.MakeOkReply(), do(t, db, "FLUSHALL", "ASYNC"))
	assert.Equal(t, public.ErrMalformedCommand, kindOf(do(t, db, "FLUSHALL", "LATER")))
	require.Nil(t, db.Close())

	db, err = Open(options)
	require.Nil(t, err)
	defer destroyDB(db)
	assert.Equal(t, 0, db.Size())
}
