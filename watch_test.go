package CouloyLite

import (
	"testing"

	"github.com/Kirov7/CouloyLite/public"
	"github.com/Kirov7/CouloyLite/resp/reply"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherManager(t *testing.T) {
	wm := newWatcherManager()
	wm.touch([]string{"a"})
	assert.False(t, wm.dirty())

	wm.watch("a")
	wm.touch([]string{"b"})
	assert.False(t, wm.dirty())
	wm.touch([]string{"b", "a"})
	assert.True(t, wm.dirty())

	wm.reset()
	assert.False(t, wm.dirty())
	wm.touch([]string{"a"})
	assert.False(t, wm.dirty())
}

func TestDB_Watch(t *testing.T) {
	db, err := Open(MemoryOptions())
	require.Nil(t, err)
	defer destroyDB(db)

	do(t, db, "SET", "k", "v")
	assert.Equal(t, reply.MakeOkReply(), do(t, db, "WATCH", "k"))
	do(t, db, "SET", "k", "other")
	do(t, db, "MULTI")
	do(t, db, "SET", "k", "mine")
	assert.Equal(t, reply.MakeNullBulkReply(), do(t, db, "EXEC"))
	assert.Equal(t, bulk("other"), do(t, db, "GET", "k"))

	// EXEC clears the watches
	do(t, db, "WATCH", "k")
	do(t, db, "MULTI")
	do(t, db, "SET", "k", "mine")
	assert.Equal(t, reply.MakeMultiRawReply([]reply.Reply{reply.MakeOkReply()}), do(t, db, "EXEC"))
	assert.Equal(t, bulk("mine"), do(t, db, "GET", "k"))

	do(t, db, "MULTI")
	assert.Equal(t, reply.MakeErrReply(public.MsgWatchInMulti), do(t, db, "WATCH", "k"))
	assert.Equal(t, reply.MakeOkReply(), do(t, db, "DISCARD"))

	do(t, db, "WATCH", "k")
	do(t, db, "SET", "k", "x")
	assert.Equal(t, reply.MakeOkReply(), do(t, db, "UNWATCH"))
	do(t, db, "MULTI")
	do(t, db, "SET", "k", "y")
	assert.Equal(t, reply.MakeMultiRawReply([]reply.Reply{reply.MakeOkReply()}), do(t, db, "EXEC"))
}

func TestDB_WatchExpiredKey(t *testing.T) {
	db, err := Open(MemoryOptions())
	require.Nil(t, err)
	defer destroyDB(db)
	now := int64(1_000_000)
	db.clock = func() int64 { return now }

	do(t, db, "SET", "e", "v", "PX", "10")
	do(t, db, "WATCH", "e")
	now += 20
	do(t, db, "SET", "other", "1")

	require.Nil(t, db.Begin())
	do(t, db, "SET", "e", "1")
	r, err := db.Commit()
	require.Nil(t, err)
	assert.Equal(t, reply.MakeNullBulkReply(), r)
	assert.Equal(t, integer(0), do(t, db, "EXISTS", "e"))
}
