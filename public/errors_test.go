package public

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrWrongType, KindOf(MsgWrongType))
	assert.Equal(t, ErrMalformedCommand, KindOf("ERR wrong number of arguments for 'get' command"))
	assert.Equal(t, ErrMalformedCommand, KindOf("ERR unknown command 'nope'"))
	assert.Equal(t, ErrMalformedCommand, KindOf(MsgNotInteger))
	assert.Equal(t, ErrNotANumber, KindOf(MsgStoredNotInteger))
	assert.Equal(t, ErrNotANumber, KindOf(MsgHashNotFloat))
	assert.Equal(t, ErrOutOfRange, KindOf(MsgOverflow))
	assert.Equal(t, ErrOutOfRange, KindOf(MsgIndexOutRange))
	assert.Nil(t, KindOf(MsgNoSuchKey))
	assert.Nil(t, KindOf(MsgExecAbort))
}
