package CouloyLite

import (
	"os"
	"strings"
	"testing"

	"github.com/Kirov7/CouloyLite/public"
	"github.com/Kirov7/CouloyLite/public/utils/bytex"
	"github.com/Kirov7/CouloyLite/resp/reply"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_Merge(t *testing.T) {
	options := testOptions(t)
	db, err := Open(options)
	require.Nil(t, err)

	for i := 0; i < 100; i++ {
		do(t, db, "SET", string(bytex.GetTestKey(i)), strings.Repeat("v", 64))
	}
	for i := 0; i < 100; i += 2 {
		do(t, db, "DEL", string(bytex.GetTestKey(i)))
	}
	do(t, db, "RPUSH", "list", "a", "b", "c")
	do(t, db, "HSET", "hash", "f", "1")
	before := db.logFile.WriteOff

	require.Nil(t, db.Merge())
	assert.Less(t, db.logFile.WriteOff, before)
	assert.Equal(t, 52, db.Size())
	_, err = os.Stat(options.Path + public.MergeFileSuffix)
	assert.True(t, os.IsNotExist(err))

	// writes after a merge land in the new log
	do(t, db, "SET", "after", "merge")
	require.Nil(t, db.Close())

	db, err = Open(options)
	require.Nil(t, err)
	defer destroyDB(db)
	assert.Nil(t, db.RecoveryStats().Err)
	assert.Equal(t, 53, db.Size())
	assert.Equal(t, bulk("merge"), do(t, db, "GET", "after"))
	assert.Equal(t, bulks("a", "b", "c"), do(t, db, "LRANGE", "list", "0", "-1"))
	assert.Equal(t, bulk("1"), do(t, db, "HGET", "hash", "f"))
	assert.Equal(t, integer(0), do(t, db, "EXISTS", string(bytex.GetTestKey(0))))
	assert.Equal(t, bulk(strings.Repeat("v", 64)), do(t, db, "GET", string(bytex.GetTestKey(1))))
}

func TestDB_MergeMemory(t *testing.T) {
	options := MemoryOptions()
	options.Logger = nil
	db, err := Open(options)
	require.Nil(t, err)
	defer destroyDB(db)

	for i := 0; i < 50; i++ {
		do(t, db, "INCR", "counter")
	}
	before := db.logFile.WriteOff
	require.Nil(t, db.Merge())
	assert.Less(t, db.logFile.WriteOff, before)
	assert.Equal(t, bulk("50"), do(t, db, "GET", "counter"))
	assert.Equal(t, integer(51), do(t, db, "INCR", "counter"))
}

func TestDB_MergeDropsExpiredKeys(t *testing.T) {
	options := testOptions(t)
	db, err := Open(options)
	require.Nil(t, err)

	now := int64(1_000_000)
	db.clock = func() int64 { return now }
	do(t, db, "SET", "short", "v", "PX", "100")
	do(t, db, "SET", "long", "v")
	now += 200
	require.Nil(t, db.Merge())
	require.Nil(t, db.Close())

	db, err = Open(options)
	require.Nil(t, err)
	defer destroyDB(db)
	assert.Equal(t, 1, db.RecoveryStats().Records)
	assert.Equal(t, integer(1), do(t, db, "EXISTS", "long"))
}

func TestDB_AutoMerge(t *testing.T) {
	options := testOptions(t)
	options.MergeThreshold = 4096
	db, err := Open(options)
	require.Nil(t, err)

	value := strings.Repeat("x", 100)
	for i := 0; i < 500; i++ {
		do(t, db, "SET", "k", value+string(bytex.IntToBytes(i)))
		assert.LessOrEqual(t, db.logFile.WriteOff, options.MergeThreshold+512)
	}
	require.Nil(t, db.Close())

	db, err = Open(options)
	require.Nil(t, err)
	defer destroyDB(db)
	assert.Equal(t, bulk(value+string(bytex.IntToBytes(499))), do(t, db, "GET", "k"))
}

func TestDB_StaleMergeFileRemoved(t *testing.T) {
	options := testOptions(t)
	require.Nil(t, os.WriteFile(options.Path+public.MergeFileSuffix, []byte("garbage"), 0644))

	db, err := Open(options)
	require.Nil(t, err)
	defer destroyDB(db)
	_, err = os.Stat(options.Path + public.MergeFileSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestDB_SaveCommand(t *testing.T) {
	db, err := Open(testOptions(t))
	require.Nil(t, err)
	defer destroyDB(db)

	for i := 0; i < 20; i++ {
		do(t, db, "SET", "k", string(bytex.IntToBytes(i)))
	}
	before := db.logFile.WriteOff
	assert.Equal(t, reply.MakeOkReply(), do(t, db, "SAVE"))
	assert.Less(t, db.logFile.WriteOff, before)

	assert.Equal(t, reply.MakeOkReply(), do(t, db, "MULTI"))
	r := do(t, db, "SAVE")
	assert.True(t, reply.IsErrorReply(r))
	assert.Equal(t, reply.MakeOkReply(), do(t, db, "DISCARD"))
	assert.Equal(t, bulk("19"), do(t, db, "GET", "k"))
}
