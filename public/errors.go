package public

import (
	"errors"
	"strings"
)

// error kinds surfaced by command replies
var (
	ErrMalformedCommand = errors.New("malformed command")
	ErrWrongType        = errors.New("operation against a key holding the wrong kind of value")
	ErrNotANumber       = errors.New("stored value is not a number")
	ErrOutOfRange       = errors.New("value out of range")
)

// errors returned by the handle itself
var (
	ErrTransactionAlreadyOpen = errors.New("a transaction is already open")
	ErrNoTransactionOpen      = errors.New("no transaction is open")
	ErrPersistenceFailure     = errors.New("failed to persist the log")
	ErrCorruptLog             = errors.New("the log is corrupted")
	ErrInvalidCRC             = errors.New("invalid crc value, logRecord maybe corrupted")
	ErrDBClosed               = errors.New("the db is closed")
	ErrDirOccupied            = errors.New("the storage target is used by another handle")
	ErrNoPendingReply         = errors.New("no pending reply, write a command first")
	ErrInvalidStorageTarget   = errors.New("the storage target is not a couloy-lite log")
	ErrInMerging              = errors.New("process is in merging")
)

const (
	MsgEmptyCommand   = "ERR empty command"
	MsgSyntax         = "ERR syntax error"
	MsgNotInteger     = "ERR value is not an integer or out of range"
	MsgNotFloat       = "ERR value is not a valid float"
	MsgMinMaxNotFloat = "ERR min or max is not a float"
	MsgInvalidExpire  = "ERR invalid expire time"
	MsgNumKeys        = "ERR Number of keys can't be greater than number of args"

	MsgWrongType = "WRONGTYPE Operation against a key holding the wrong kind of value"

	MsgStoredNotInteger = "ERR stored value is not an integer"
	MsgStoredNotFloat   = "ERR stored value is not a valid float"
	MsgHashNotInteger   = "ERR hash value is not an integer"
	MsgHashNotFloat     = "ERR hash value is not a float"

	MsgOverflow      = "ERR increment or decrement would overflow"
	MsgNaN           = "ERR increment would produce NaN or Infinity"
	MsgIndexOutRange = "ERR index out of range"
	MsgOffsetRange   = "ERR offset is out of range"
	MsgValueRange    = "ERR value is out of range"

	MsgNoSuchKey      = "ERR no such key"
	MsgExecAbort      = "EXECABORT Transaction discarded because of previous errors."
	MsgNestedMulti    = "ERR MULTI calls can not be nested"
	MsgExecNoMulti    = "ERR EXEC without MULTI"
	MsgDiscardNoMulti = "ERR DISCARD without MULTI"
	MsgWatchInMulti   = "ERR WATCH inside MULTI is not allowed"
	MsgNotFromScript  = "ERR This command is not allowed from scripts"
	MsgReadOnlyQuery  = "ERR write commands are not allowed in a read only query"
)

var (
	malformedPrefixes = []string{
		"ERR wrong number of arguments",
		"ERR unknown command",
		MsgEmptyCommand,
		MsgSyntax,
		MsgNotInteger,
		MsgNotFloat,
		MsgMinMaxNotFloat,
		MsgInvalidExpire,
		MsgNumKeys,
	}
	notANumber = []string{MsgStoredNotInteger, MsgStoredNotFloat, MsgHashNotInteger, MsgHashNotFloat}
	outOfRange = []string{MsgOverflow, MsgNaN, MsgIndexOutRange, MsgOffsetRange, MsgValueRange}
)

// KindOf maps an error reply text back to its error kind, nil when the text
// does not belong to the classified set
func KindOf(msg string) error {
	if strings.HasPrefix(msg, "WRONGTYPE") {
		return ErrWrongType
	}
	for _, m := range notANumber {
		if msg == m {
			return ErrNotANumber
		}
	}
	for _, m := range outOfRange {
		if msg == m {
			return ErrOutOfRange
		}
	}
	for _, p := range malformedPrefixes {
		if strings.HasPrefix(msg, p) {
			return ErrMalformedCommand
		}
	}
	return nil
}
