package CouloyLite

import (
	"bytes"

	"github.com/Kirov7/CouloyLite/public"
	"github.com/Kirov7/CouloyLite/resp/reply"
)

// execute runs one command line, the caller holds the write lock. Outside an
// explicit transaction every command is its own transaction.
func (db *DB) execute(args [][]byte) (reply.Reply, error) {
	cmd, errReply := parseCommand(cloneArgs(args))
	if db.txn != nil {
		return db.executeInTxn(cmd, errReply)
	}
	if errReply != nil {
		return errReply, nil
	}
	if cmd.spec.is(flagControl) {
		return db.control(cmd)
	}
	if cmd.spec.isWrite() {
		db.sweepExpired()
	}

	tx := db.newTxn()
	r, _ := tx.dispatch(cmd)
	if err := tx.commit(); err != nil {
		return nil, err
	}
	return r, nil
}

// executeInTxn applies the command to the overlay and answers QUEUED, the
// real reply is returned by commit. A command rejected before reaching its
// handler aborts the transaction.
func (db *DB) executeInTxn(cmd *Command, errReply reply.ErrorReply) (reply.Reply, error) {
	tx := db.txn
	if errReply != nil {
		tx.aborted = true
		return errReply, nil
	}
	if cmd.spec.is(flagControl) {
		return db.control(cmd)
	}
	if cmd.spec.isWrite() {
		db.sweepExpired()
	}

	tx.now = db.clock()
	r, rejected := tx.dispatch(cmd)
	if rejected {
		tx.aborted = true
		return r, nil
	}
	tx.replies = append(tx.replies, r)
	return reply.MakeQueuedReply(), nil
}

func (db *DB) control(cmd *Command) (reply.Reply, error) {
	inTxn := db.txn != nil
	switch cmd.name {
	case "multi":
		if inTxn {
			return reply.MakeErrReply(public.MsgNestedMulti), nil
		}
		return reply.MakeOkReply(), db.begin()
	case "exec":
		if !inTxn {
			return reply.MakeErrReply(public.MsgExecNoMulti), nil
		}
		return db.commit()
	case "discard":
		if !inTxn {
			return reply.MakeErrReply(public.MsgDiscardNoMulti), nil
		}
		return reply.MakeOkReply(), db.rollback()
	case "watch":
		if inTxn {
			return reply.MakeErrReply(public.MsgWatchInMulti), nil
		}
		for _, key := range cmd.args {
			db.watcher.watch(string(key))
		}
		return reply.MakeOkReply(), nil
	case "unwatch":
		if inTxn {
			db.txn.replies = append(db.txn.replies, reply.MakeOkReply())
			return reply.MakeQueuedReply(), nil
		}
		db.watcher.reset()
		return reply.MakeOkReply(), nil
	case "save":
		if inTxn {
			return reply.MakeErrReply("ERR SAVE inside MULTI is not allowed"), nil
		}
		if err := db.merge(); err != nil {
			return reply.MakeErrReply("ERR " + err.Error()), nil
		}
		return reply.MakeOkReply(), nil
	}
	return reply.MakeUnknownCommandErrReply(cmd.name), nil
}

func (db *DB) begin() error {
	if db.txn != nil {
		return public.ErrTransactionAlreadyOpen
	}
	db.txn = db.newTxn()
	return nil
}

// commit closes the open transaction. An aborted transaction answers
// EXECABORT and a transaction whose watched keys changed answers nil,
// neither writes anything.
func (db *DB) commit() (reply.Reply, error) {
	tx := db.txn
	if tx == nil {
		return nil, public.ErrNoTransactionOpen
	}
	db.txn = nil
	dirty := db.watcher.dirty()
	db.watcher.reset()

	if tx.aborted {
		tx.discard()
		return reply.MakeErrReply(public.MsgExecAbort), nil
	}
	if dirty {
		tx.discard()
		return reply.MakeNullBulkReply(), nil
	}
	if err := tx.commit(); err != nil {
		return nil, err
	}
	return reply.MakeMultiRawReply(tx.replies), nil
}

func (db *DB) rollback() error {
	if db.txn == nil {
		return public.ErrNoTransactionOpen
	}
	db.txn.discard()
	db.txn = nil
	db.watcher.reset()
	return nil
}

func init() {
	registerCommand("Multi", nil, 1, flagControl|flagNoScript)
	registerCommand("Exec", nil, 1, flagControl|flagNoScript)
	registerCommand("Discard", nil, 1, flagControl|flagNoScript)
	registerCommand("Watch", nil, -2, flagControl|flagNoScript)
	registerCommand("Unwatch", nil, 1, flagControl|flagNoScript)
	registerCommand("Save", nil, 1, flagControl|flagNoScript)
}

// cloneArgs detaches the arguments from buffers the caller may reuse
func cloneArgs(args [][]byte) [][]byte {
	cloned := make([][]byte, len(args))
	for i, arg := range args {
		cloned[i] = bytes.Clone(arg)
		if cloned[i] == nil {
			cloned[i] = []byte{}
		}
	}
	return cloned
}
