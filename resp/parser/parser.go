package parser

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strconv"

	"github.com/Kirov7/CouloyLite/resp/reply"
)

// ErrProtocol wraps every malformed input
var ErrProtocol = errors.New("protocol error")

// MaxBulkLen bounds the length header of one bulk string
const MaxBulkLen = 512 * 1024 * 1024

func protocolError(msg []byte) error {
	return errors.Join(ErrProtocol, errors.New(strconv.Quote(string(msg))))
}

// Decode reads exactly one reply from buf, trailing bytes are an error
func Decode(buf []byte) (reply.Reply, error) {
	src := bytes.NewReader(buf)
	reader := bufio.NewReader(src)
	r, err := ReadReply(reader)
	if err != nil {
		return nil, err
	}
	if reader.Buffered() > 0 || src.Len() > 0 {
		return nil, protocolError([]byte("trailing bytes after reply"))
	}
	return r, nil
}

// ReadReply reads one reply, nested arrays included, from reader
func ReadReply(reader *bufio.Reader) (reply.Reply, error) {
	msg, err := readLine(reader)
	if err != nil {
		return nil, err
	}
	if len(msg) == 0 {
		return nil, protocolError(msg)
	}

	body := string(msg[1:])
	switch msg[0] {
	case '+':
		return reply.MakeStatusReply(body), nil
	case '-':
		return reply.MakeErrReply(body), nil
	case ':':
		val, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return nil, protocolError(msg)
		}
		return reply.MakeIntReply(val), nil
	case '$':
		bulkLen, err := strconv.ParseInt(body, 10, 64)
		if err != nil || bulkLen < -1 || bulkLen > MaxBulkLen {
			return nil, protocolError(msg)
		}
		if bulkLen == -1 {
			return reply.MakeNullBulkReply(), nil
		}
		arg := make([]byte, bulkLen+2)
		if _, err := io.ReadFull(reader, arg); err != nil {
			return nil, err
		}
		if arg[bulkLen] != '\r' || arg[bulkLen+1] != '\n' {
			return nil, protocolError(arg)
		}
		return reply.MakeBulkReply(arg[:bulkLen]), nil
	case '*':
		count, err := strconv.ParseInt(body, 10, 64)
		if err != nil || count < 0 {
			return nil, protocolError(msg)
		}
		// grown by append, the count header is not trusted for allocation
		var replies []reply.Reply
		for i := int64(0); i < count; i++ {
			r, err := ReadReply(reader)
			if err != nil {
				return nil, err
			}
			replies = append(replies, r)
		}
		return reply.MakeMultiRawReply(replies), nil
	default:
		return nil, protocolError(msg)
	}
}

// readLine returns the line without its trailing CRLF
func readLine(reader *bufio.Reader) ([]byte, error) {
	msg, err := reader.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(msg) > 0 {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if len(msg) < 2 || msg[len(msg)-2] != '\r' {
		return nil, protocolError(msg)
	}
	return msg[:len(msg)-2], nil
}
