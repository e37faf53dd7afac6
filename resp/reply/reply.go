package reply

import (
	"bytes"
	"strconv"
	"strings"
)

var (
	CRLF = "\r\n"

	nullBulkBytes = []byte("$-1\r\n")
)

// Reply is the result of a command, ToBytes renders its RESP2 wire form
type Reply interface {
	ToBytes() []byte
}

// ErrorReply is an error produced while executing a command
type ErrorReply interface {
	Error() string
	ToBytes() []byte
}

/* ---- Status ---- */

type StatusReply struct {
	Status string
}

func MakeStatusReply(status string) *StatusReply {
	return &StatusReply{Status: singleLine(status)}
}

func (r *StatusReply) ToBytes() []byte {
	return []byte("+" + r.Status + CRLF)
}

func MakeOkReply() *StatusReply {
	return &StatusReply{Status: "OK"}
}

func MakePongReply() *StatusReply {
	return &StatusReply{Status: "PONG"}
}

func MakeQueuedReply() *StatusReply {
	return &StatusReply{Status: "QUEUED"}
}

/* ---- Integer ---- */

type IntReply struct {
	Code int64
}

func MakeIntReply(code int64) *IntReply {
	return &IntReply{Code: code}
}

func (r *IntReply) ToBytes() []byte {
	return []byte(":" + strconv.FormatInt(r.Code, 10) + CRLF)
}

/* ---- Bulk ---- */

// BulkReply is a binary safe string, a nil Arg renders as an empty string
type BulkReply struct {
	Arg []byte
}

func MakeBulkReply(arg []byte) *BulkReply {
	return &BulkReply{Arg: arg}
}

func (r *BulkReply) ToBytes() []byte {
	var buf bytes.Buffer
	buf.Grow(len(r.Arg) + 16)
	buf.WriteString("$" + strconv.Itoa(len(r.Arg)) + CRLF)
	buf.Write(r.Arg)
	buf.WriteString(CRLF)
	return buf.Bytes()
}

// NullBulkReply is the absent value
type NullBulkReply struct{}

func MakeNullBulkReply() *NullBulkReply {
	return &NullBulkReply{}
}

func (r *NullBulkReply) ToBytes() []byte {
	return nullBulkBytes
}

/* ---- Array ---- */

// MultiRawReply is an array whose elements may be any reply, arrays included
type MultiRawReply struct {
	Replies []Reply
}

func MakeMultiRawReply(replies []Reply) *MultiRawReply {
	if replies == nil {
		replies = []Reply{}
	}
	return &MultiRawReply{Replies: replies}
}

// MakeMultiBulkReply wraps each argument into a BulkReply
func MakeMultiBulkReply(args [][]byte) *MultiRawReply {
	replies := make([]Reply, len(args))
	for i, arg := range args {
		if arg == nil {
			replies[i] = MakeNullBulkReply()
		} else {
			replies[i] = MakeBulkReply(arg)
		}
	}
	return &MultiRawReply{Replies: replies}
}

func MakeEmptyMultiBulkReply() *MultiRawReply {
	return &MultiRawReply{Replies: []Reply{}}
}

func (r *MultiRawReply) ToBytes() []byte {
	var buf bytes.Buffer
	buf.WriteString("*" + strconv.Itoa(len(r.Replies)) + CRLF)
	for _, rep := range r.Replies {
		buf.Write(rep.ToBytes())
	}
	return buf.Bytes()
}

/* ---- Error ---- */

type StandardErrReply struct {
	Status string
}

func MakeErrReply(status string) *StandardErrReply {
	return &StandardErrReply{Status: singleLine(status)}
}

// MakeArgNumErrReply arity mismatch for cmd
func MakeArgNumErrReply(cmd string) *StandardErrReply {
	return MakeErrReply("ERR wrong number of arguments for '" + cmd + "' command")
}

func MakeUnknownCommandErrReply(cmd string) *StandardErrReply {
	return MakeErrReply("ERR unknown command '" + cmd + "'")
}

func (r *StandardErrReply) ToBytes() []byte {
	return []byte("-" + r.Status + CRLF)
}

func (r *StandardErrReply) Error() string {
	return r.Status
}

// singleLine replaces CR and LF with spaces, status and error text is one line on the wire
func singleLine(s string) string {
	if strings.IndexAny(s, "\r\n") < 0 {
		return s
	}
	b := []byte(s)
	for i, c := range b {
		if c == '\r' || c == '\n' {
			b[i] = ' '
		}
	}
	return string(b)
}

// IsErrorReply returns true if the given reply is error
func IsErrorReply(reply Reply) bool {
	_, ok := reply.(ErrorReply)
	return ok
}
