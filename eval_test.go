package CouloyLite

import (
	"strconv"
	"testing"

	"github.com/Kirov7/CouloyLite/public"
	"github.com/Kirov7/CouloyLite/resp/reply"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_Eval(t *testing.T) {
	db, err := Open(MemoryOptions())
	require.Nil(t, err)
	defer destroyDB(db)

	assert.Equal(t, reply.MakeOkReply(),
		do(t, db, "EVAL", "return redis.call('SET', KEYS[1], ARGV[1])", "1", "k", "v"))
	assert.Equal(t, bulk("v"), do(t, db, "EVAL", "return redis.call('GET', KEYS[1])", "1", "k"))
	assert.Equal(t, bulk("v"), do(t, db, "GET", "k"))

	assert.Equal(t, reply.MakeMultiRawReply([]reply.Reply{integer(1), integer(2), bulk("x")}),
		do(t, db, "EVAL", "return {1, 2.7, 'x', nil, 'hidden'}", "0"))
	assert.Equal(t, integer(1), do(t, db, "EVAL", "return true", "0"))
	assert.Equal(t, reply.MakeNullBulkReply(), do(t, db, "EVAL", "return false", "0"))
	assert.Equal(t, reply.MakeNullBulkReply(), do(t, db, "EVAL", "local x = 1", "0"))
	assert.Equal(t, reply.MakeStatusReply("FINE"), do(t, db, "EVAL", "return redis.status_reply('FINE')", "0"))
	assert.Equal(t, reply.MakeErrReply("ERR custom"), do(t, db, "EVAL", "return redis.error_reply('ERR custom')", "0"))

	// numbers are passed to commands as their decimal form
	assert.Equal(t, integer(15), do(t, db, "EVAL", "redis.call('SET', 'n', 10) return redis.call('INCRBY', 'n', 5)", "0"))
}

func TestDB_EvalErrors(t *testing.T) {
	db, err := Open(MemoryOptions())
	require.Nil(t, err)
	defer destroyDB(db)

	do(t, db, "SET", "s", "x")
	assert.Equal(t, public.ErrWrongType, kindOf(do(t, db, "EVAL", "return redis.call('LPUSH', 's', 'y')", "0")))
	assert.Equal(t, reply.MakeErrReply(public.MsgWrongType),
		do(t, db, "EVAL", "local r = redis.pcall('LPUSH', 's', 'y') return r", "0"))
	assert.Equal(t, bulk("caught"),
		do(t, db, "EVAL", "local r = redis.pcall('INCR', 's') if r.err then return 'caught' end return 'missed'", "0"))

	assert.Equal(t, reply.MakeErrReply(public.MsgNotFromScript), do(t, db, "EVAL", "return redis.call('MULTI')", "0"))
	assert.Equal(t, reply.MakeErrReply(public.MsgNotFromScript), do(t, db, "EVAL", "return redis.call('EVAL', 'return 1', '0')", "0"))
	assert.Equal(t, public.ErrMalformedCommand, kindOf(do(t, db, "EVAL", "return redis.call('NOSUCHVERB')", "0")))
	assert.Equal(t, public.ErrMalformedCommand, kindOf(do(t, db, "EVAL", "return 1", "2", "only-one")))
	assert.Equal(t, public.ErrMalformedCommand, kindOf(do(t, db, "EVAL", "return 1", "many")))

	r := do(t, db, "EVAL", "this is not lua", "0")
	assert.True(t, reply.IsErrorReply(r))

	// writes made before the error stay, like any other command
	assert.True(t, reply.IsErrorReply(do(t, db, "EVAL", "redis.call('SET', 'before', '1') redis.call('LPUSH', 's', 'y')", "0")))
	assert.Equal(t, bulk("1"), do(t, db, "GET", "before"))
	assert.Equal(t, bulk("x"), do(t, db, "GET", "s"))

	// interpreters are reused after failures
	for i := 0; i < 10; i++ {
		assert.Equal(t, integer(int64(i)), do(t, db, "EVAL", "return tonumber(ARGV[1])", "0", strconv.Itoa(i)))
	}
}

func TestDB_EvalInTransaction(t *testing.T) {
	db, err := Open(MemoryOptions())
	require.Nil(t, err)
	defer destroyDB(db)

	require.Nil(t, db.Begin())
	do(t, db, "SET", "k", "1")
	assert.Equal(t, reply.MakeQueuedReply(), do(t, db, "EVAL", "return redis.call('INCR', KEYS[1])", "1", "k"))
	r, err := db.Query([]byte("EXISTS"), []byte("k"))
	require.Nil(t, err)
	assert.Equal(t, integer(0), r)

	r, err = db.Commit()
	require.Nil(t, err)
	assert.Equal(t, reply.MakeMultiRawReply([]reply.Reply{reply.MakeOkReply(), integer(2)}), r)
}

func TestDB_EvalGlobalsStayInScript(t *testing.T) {
	db, err := Open(MemoryOptions())
	require.Nil(t, err)
	defer destroyDB(db)

	assert.Equal(t, bulk("from-first-script"),
		do(t, db, "EVAL", "leaked = 'from-first-script' local function get() return leaked end return get()", "0"))
	for i := 0; i < 5; i++ {
		assert.Equal(t, reply.MakeNullBulkReply(), do(t, db, "EVAL", "return leaked", "0"))
	}

	// shared globals stay readable and a script can shadow them for itself only
	assert.Equal(t, integer(3), do(t, db, "EVAL", "string = nil return 3", "0"))
	assert.Equal(t, bulk("ABC"), do(t, db, "EVAL", "return string.upper(ARGV[1])", "0", "abc"))

	r := do(t, db, "EVAL", "return redis.call(", "0")
	assert.Contains(t, r.(reply.ErrorReply).Error(), "ERR Error compiling script")
}
