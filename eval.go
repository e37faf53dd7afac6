package CouloyLite

import (
	"context"
	"strconv"

	"github.com/Kirov7/CouloyLite/public"
	"github.com/Kirov7/CouloyLite/resp/reply"
	pool "github.com/jolestar/go-commons-pool/v2"
	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"
)

// luaVM is one pooled interpreter, tx is the transaction redis.call runs
// against while a script executes
type luaVM struct {
	L  *lua.LState
	tx *Txn
	// raised is the last error reply redis.call turned into a Lua error
	raised string
}

type luaVMFactory struct{}

func (f *luaVMFactory) MakeObject(ctx context.Context) (*pool.PooledObject, error) {
	vm := &luaVM{L: lua.NewState()}
	redis := vm.L.NewTable()
	vm.L.SetField(redis, "call", vm.L.NewFunction(func(L *lua.LState) int {
		return vm.call(L, true)
	}))
	vm.L.SetField(redis, "pcall", vm.L.NewFunction(func(L *lua.LState) int {
		return vm.call(L, false)
	}))
	vm.L.SetField(redis, "status_reply", vm.L.NewFunction(func(L *lua.LState) int {
		t := L.NewTable()
		t.RawSetString("ok", lua.LString(L.CheckString(1)))
		L.Push(t)
		return 1
	}))
	vm.L.SetField(redis, "error_reply", vm.L.NewFunction(func(L *lua.LState) int {
		t := L.NewTable()
		t.RawSetString("err", lua.LString(L.CheckString(1)))
		L.Push(t)
		return 1
	}))
	vm.L.SetGlobal("redis", redis)
	return pool.NewPooledObject(vm), nil
}

func (f *luaVMFactory) DestroyObject(ctx context.Context, object *pool.PooledObject) error {
	vm, ok := object.Object.(*luaVM)
	if !ok {
		return errors.New("type mismatch")
	}
	vm.L.Close()
	return nil
}

func (f *luaVMFactory) ValidateObject(ctx context.Context, object *pool.PooledObject) bool {
	_, ok := object.Object.(*luaVM)
	return ok
}

func (f *luaVMFactory) ActivateObject(ctx context.Context, object *pool.PooledObject) error {
	return nil
}

// PassivateObject clears what a script left behind before the next one runs
func (f *luaVMFactory) PassivateObject(ctx context.Context, object *pool.PooledObject) error {
	vm, ok := object.Object.(*luaVM)
	if !ok {
		return errors.New("type mismatch")
	}
	vm.tx = nil
	vm.raised = ""
	vm.L.SetTop(0)
	return nil
}

// call runs redis.call and redis.pcall. call raises error replies as Lua
// errors, pcall hands them back as {err = msg}.
func (vm *luaVM) call(L *lua.LState, raise bool) int {
	args := make([][]byte, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		switch v := L.Get(i).(type) {
		case lua.LString:
			args = append(args, []byte(v))
		case lua.LNumber:
			args = append(args, []byte(v.String()))
		default:
			L.Error(lua.LString("ERR Lua redis() command arguments must be strings or integers"), 0)
			return 0
		}
	}

	var r reply.Reply
	cmd, errReply := parseCommand(args)
	switch {
	case errReply != nil:
		r = errReply
	case cmd.spec.is(flagNoScript):
		r = reply.MakeErrReply(public.MsgNotFromScript)
	default:
		r, _ = vm.tx.dispatch(cmd)
	}

	if errReply, ok := r.(reply.ErrorReply); ok && raise {
		vm.raised = errReply.Error()
		L.Error(lua.LString(vm.raised), 0)
		return 0
	}
	L.Push(replyToLua(L, r))
	return 1
}

func replyToLua(L *lua.LState, r reply.Reply) lua.LValue {
	switch r := r.(type) {
	case *reply.IntReply:
		return lua.LNumber(r.Code)
	case *reply.BulkReply:
		return lua.LString(r.Arg)
	case *reply.NullBulkReply:
		return lua.LFalse
	case *reply.StatusReply:
		t := L.NewTable()
		t.RawSetString("ok", lua.LString(r.Status))
		return t
	case reply.ErrorReply:
		t := L.NewTable()
		t.RawSetString("err", lua.LString(r.Error()))
		return t
	case *reply.MultiRawReply:
		t := L.NewTable()
		for _, elem := range r.Replies {
			t.Append(replyToLua(L, elem))
		}
		return t
	}
	return lua.LNil
}

// luaToReply converts a script result, numbers are truncated to integers
// and arrays stop at the first nil
func luaToReply(v lua.LValue) reply.Reply {
	switch v := v.(type) {
	case lua.LNumber:
		return reply.MakeIntReply(int64(v))
	case lua.LString:
		return reply.MakeBulkReply([]byte(v))
	case lua.LBool:
		if v {
			return reply.MakeIntReply(1)
		}
		return reply.MakeNullBulkReply()
	case *lua.LTable:
		if msg, ok := v.RawGetString("err").(lua.LString); ok {
			return reply.MakeErrReply(string(msg))
		}
		if status, ok := v.RawGetString("ok").(lua.LString); ok {
			return reply.MakeStatusReply(string(status))
		}
		replies := make([]reply.Reply, 0)
		for i := 1; ; i++ {
			elem := v.RawGetInt(i)
			if elem == lua.LNil {
				break
			}
			replies = append(replies, luaToReply(elem))
		}
		return reply.MakeMultiRawReply(replies)
	}
	return reply.MakeNullBulkReply()
}

// scriptRunner executes EVAL scripts on pooled interpreters
type scriptRunner struct {
	ctx  context.Context
	pool *pool.ObjectPool
}

func newScriptRunner() *scriptRunner {
	ctx := context.Background()
	return &scriptRunner{
		ctx:  ctx,
		pool: pool.NewObjectPoolWithDefaultConfig(ctx, &luaVMFactory{}),
	}
}

func (sr *scriptRunner) run(tx *Txn, script string, keys, argv [][]byte) reply.Reply {
	raw, err := sr.pool.BorrowObject(sr.ctx)
	if err != nil {
		return reply.MakeErrReply("ERR " + err.Error())
	}
	vm := raw.(*luaVM)
	defer func() {
		_ = sr.pool.ReturnObject(sr.ctx, vm)
	}()

	fn, err := vm.L.LoadString(script)
	if err != nil {
		return reply.MakeErrReply("ERR Error compiling script: " + err.Error())
	}
	vm.tx = tx
	fn.Env = scriptEnv(vm.L, keys, argv)

	base := vm.L.GetTop()
	vm.L.Push(fn)
	if err := vm.L.PCall(0, lua.MultRet, nil); err != nil {
		var apiErr *lua.ApiError
		if errors.As(err, &apiErr) {
			if msg, ok := apiErr.Object.(lua.LString); ok && vm.raised != "" && string(msg) == vm.raised {
				return reply.MakeErrReply(vm.raised)
			}
		}
		return reply.MakeErrReply("ERR Error running script: " + err.Error())
	}
	if vm.L.GetTop() == base {
		return reply.MakeNullBulkReply()
	}
	return luaToReply(vm.L.Get(base + 1))
}

func (sr *scriptRunner) close() {
	sr.pool.Close(sr.ctx)
}

// scriptEnv is the global table of one script run. Globals the script
// defines stay in it, reads of anything else fall through to the shared
// globals where redis and the standard library live.
func scriptEnv(L *lua.LState, keys, argv [][]byte) *lua.LTable {
	env := L.NewTable()
	meta := L.NewTable()
	meta.RawSetString("__index", L.G.Global)
	L.SetMetatable(env, meta)
	env.RawSetString("KEYS", bytesTable(L, keys))
	env.RawSetString("ARGV", bytesTable(L, argv))
	return env
}

func bytesTable(L *lua.LState, values [][]byte) *lua.LTable {
	t := L.NewTable()
	for _, v := range values {
		t.Append(lua.LString(v))
	}
	return t
}

// execEval EVAL script numkeys [key ...] [arg ...]
func execEval(tx *Txn, args [][]byte) reply.Reply {
	numKeys, err := strconv.Atoi(string(args[1]))
	if err != nil {
		return reply.MakeErrReply(public.MsgNotInteger)
	}
	if numKeys < 0 || numKeys > len(args)-2 {
		return reply.MakeErrReply(public.MsgNumKeys)
	}
	return tx.db.scripts.run(tx, string(args[0]), args[2:2+numKeys], args[2+numKeys:])
}

func init() {
	registerCommand("Eval", execEval, -3, flagWrite|flagNoScript)
}
