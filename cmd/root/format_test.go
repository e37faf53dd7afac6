package root

import (
	"testing"

	"github.com/Kirov7/CouloyLite"
	"github.com/Kirov7/CouloyLite/resp/reply"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatReply(t *testing.T) {
	assert.Equal(t, "OK", FormatReply(reply.MakeOkReply()))
	assert.Equal(t, "(error) ERR syntax error", FormatReply(reply.MakeErrReply("ERR syntax error")))
	assert.Equal(t, "(integer) -3", FormatReply(reply.MakeIntReply(-3)))
	assert.Equal(t, `"a\nb"`, FormatReply(reply.MakeBulkReply([]byte("a\nb"))))
	assert.Equal(t, "(nil)", FormatReply(reply.MakeNullBulkReply()))
	assert.Equal(t, "(empty array)", FormatReply(reply.MakeEmptyMultiBulkReply()))

	nested := reply.MakeMultiRawReply([]reply.Reply{
		reply.MakeOkReply(),
		reply.MakeMultiBulkReply([][]byte{[]byte("x"), []byte("y")}),
		reply.MakeIntReply(1),
	})
	assert.Equal(t, "1) OK\n2) 1) \"x\"\n   2) \"y\"\n3) (integer) 1", FormatReply(nested))
}

func TestSplitLine(t *testing.T) {
	words, err := SplitLine(`  SET key "hello world"  `)
	require.NoError(t, err)
	assert.Equal(t, []string{"SET", "key", "hello world"}, words)

	words, err = SplitLine(`SET k "a\tb\x41\"" 'raw \n'`)
	require.NoError(t, err)
	assert.Equal(t, []string{"SET", "k", "a\tbA\"", `raw \n`}, words)

	words, err = SplitLine(`SET k ""`)
	require.NoError(t, err)
	assert.Equal(t, []string{"SET", "k", ""}, words)

	words, err = SplitLine("   ")
	require.NoError(t, err)
	assert.Empty(t, words)

	_, err = SplitLine(`GET "open`)
	assert.Error(t, err)
	_, err = SplitLine(`GET "\x4"`)
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	defer viper.Reset()

	viper.Set("engine.path", CouloyLite.MemoryTarget)
	viper.Set("engine.indexType", "ART")
	viper.Set("engine.syncWrites", false)
	viper.Set("engine.mergeThreshold", 1024)
	opt, err := Options()
	require.NoError(t, err)
	assert.Equal(t, CouloyLite.MemoryTarget, opt.Path)
	assert.Equal(t, CouloyLite.ART, opt.IndexType)
	assert.False(t, opt.SyncWrites)
	assert.Equal(t, int64(1024), opt.MergeThreshold)
	assert.Nil(t, opt.Logger)

	viper.Set("engine.indexType", "skiplist")
	_, err = Options()
	assert.Error(t, err)
}
