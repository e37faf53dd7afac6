package parser

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/Kirov7/CouloyLite/resp/reply"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_RoundTrip(t *testing.T) {
	replies := []reply.Reply{
		reply.MakeOkReply(),
		reply.MakeStatusReply("PONG"),
		reply.MakeIntReply(-42),
		reply.MakeBulkReply([]byte("binary\r\nsafe")),
		reply.MakeBulkReply([]byte{}),
		reply.MakeNullBulkReply(),
		reply.MakeErrReply("WRONGTYPE Operation against a key holding the wrong kind of value"),
		reply.MakeEmptyMultiBulkReply(),
		reply.MakeMultiRawReply([]reply.Reply{
			reply.MakeIntReply(1),
			reply.MakeMultiBulkReply([][]byte{[]byte("a"), nil, []byte("b")}),
			reply.MakeMultiRawReply(nil),
			reply.MakeErrReply("ERR nested"),
		}),
	}

	for _, r := range replies {
		dec, err := Decode(r.ToBytes())
		require.Nil(t, err)
		assert.Equal(t, r, dec)
	}
}

func TestDecode_Malformed(t *testing.T) {
	for _, input := range []string{
		"",
		"+OK",
		"+OK\n",
		"!x\r\n",
		":abc\r\n",
		"$5\r\nab\r\n",
		"$2\r\nabcd\r\n",
		"$-3\r\n",
		"*2\r\n:1\r\n",
		"+OK\r\n+OK\r\n",
		"$9223372036854775807\r\n",
		"$9223372036854775806\r\nab\r\n",
		"$536870913\r\n",
		"*9223372036854775807\r\n:1\r\n",
		"*-9223372036854775808\r\n",
	} {
		_, err := Decode([]byte(input))
		assert.NotNil(t, err, "input %q", input)
	}
}

func TestReadReply_Stream(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(reply.MakeIntReply(1).ToBytes())
	buf.Write(reply.MakeBulkReply([]byte("x")).ToBytes())

	reader := bufio.NewReader(&buf)
	r, err := ReadReply(reader)
	assert.Nil(t, err)
	assert.Equal(t, reply.MakeIntReply(1), r)
	r, err = ReadReply(reader)
	assert.Nil(t, err)
	assert.Equal(t, reply.MakeBulkReply([]byte("x")), r)
	_, err = ReadReply(reader)
	assert.Equal(t, io.EOF, err)
}

func TestDecode_StatusTextIsOneLine(t *testing.T) {
	for _, r := range []reply.Reply{
		reply.MakeStatusReply("a\r\n:1"),
		reply.MakeErrReply("ERR x\r\n+OK"),
		reply.MakeUnknownCommandErrReply("foo\r\n+OK"),
		reply.MakeArgNumErrReply("bar\n"),
	} {
		wire := r.ToBytes()
		assert.Equal(t, 1, bytes.Count(wire, []byte("\r\n")), "%q", wire)
		dec, err := Decode(wire)
		require.Nil(t, err)
		assert.Equal(t, r, dec)
	}
	assert.Equal(t, "a   :1", reply.MakeStatusReply("a\r\n:1").Status)
}
