package CouloyLite

import (
	"strings"

	"github.com/Kirov7/CouloyLite/data"
	"github.com/Kirov7/CouloyLite/public"
	"github.com/Kirov7/CouloyLite/resp/reply"
)

// ExecFunc runs one command against the transaction view, args exclude the verb
type ExecFunc func(tx *Txn, args [][]byte) reply.Reply

const (
	flagWrite = 1 << iota
	flagReadOnly
	// flagControl verbs drive the handle (transactions, compaction) instead of the key space
	flagControl
	flagNoScript
)

var cmdTable = make(map[string]*command)

type command struct {
	name     string
	executor ExecFunc
	arity    int // allow number of args, arity < 0 means len(args) >= -arity
	maxArgs  int // upper bound for variadic verbs, 0 means unbounded
	flags    int

	// keys at args[firstKey..lastKey] by keyStep must hold keyType, lastKey < 0 counts from the end
	typed    bool
	keyType  data.DataType
	firstKey int
	lastKey  int
	keyStep  int
}

// registerCommand registers a new command
// arity means allowed number of cmdArgs, arity < 0 means len(args) >= -arity.
// for example: the arity of `get` is 2, `mget` is -2
func registerCommand(name string, executor ExecFunc, arity int, flags int) *command {
	name = strings.ToLower(name)
	cmd := &command{
		name:     name,
		executor: executor,
		arity:    arity,
		flags:    flags,
	}
	cmdTable[name] = cmd
	return cmd
}

// keys declares which arguments are keys of keyType
func (c *command) keys(keyType data.DataType, first, last, step int) *command {
	c.typed = true
	c.keyType = keyType
	c.firstKey, c.lastKey, c.keyStep = first, last, step
	return c
}

func (c *command) limit(maxArgs int) *command {
	c.maxArgs = maxArgs
	return c
}

func (c *command) isWrite() bool {
	return c.flags&flagWrite != 0
}

func (c *command) is(flag int) bool {
	return c.flags&flag != 0
}

// Command is a parsed, arity checked invocation
type Command struct {
	name string
	args [][]byte
	spec *command
}

func (c *Command) typedKeys() [][]byte {
	if !c.spec.typed {
		return nil
	}
	last := c.spec.lastKey
	if last < 0 {
		last = len(c.args) + last
	}
	keys := make([][]byte, 0, 1)
	for i := c.spec.firstKey; i <= last && i < len(c.args); i += c.spec.keyStep {
		keys = append(keys, c.args[i])
	}
	return keys
}

// dispatch type checks the command keys and runs its handler. rejected is
// true when the command never reached its handler.
func (tx *Txn) dispatch(cmd *Command) (r reply.Reply, rejected bool) {
	for _, key := range cmd.typedKeys() {
		if entry := tx.lookup(key); entry != nil && entry.Value.Type != cmd.spec.keyType {
			return reply.MakeErrReply(public.MsgWrongType), true
		}
	}
	return cmd.spec.executor(tx, cmd.args), false
}
