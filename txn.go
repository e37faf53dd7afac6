package CouloyLite

import (
	"github.com/Kirov7/CouloyLite/data"
	"github.com/Kirov7/CouloyLite/public"
	"github.com/Kirov7/CouloyLite/resp/reply"
)

// oracle hands out the ids that group the records of one commit in the log
type oracle struct {
	txId uint64
}

func (o *oracle) next() uint64 {
	o.txId++
	return o.txId
}

// observe keeps ids unique across restarts
func (o *oracle) observe(txId uint64) {
	if txId > o.txId {
		o.txId = txId
	}
}

// Txn is a copy on write overlay over the key space. Nothing written
// through it is visible outside until commit.
type Txn struct {
	db  *DB
	now int64

	pendingWrites map[string]*pendingWrite
	order         []string // first touch order, which is the commit order

	replies []reply.Reply
	aborted bool
}

type pendingWrite struct {
	typ   data.LogRecordType
	entry *data.Entry
}

func (db *DB) newTxn() *Txn {
	return &Txn{
		db:            db,
		now:           db.clock(),
		pendingWrites: make(map[string]*pendingWrite),
	}
}

// lookup returns the visible entry of key, nil if absent or expired.
// The entry must not be modified.
func (tx *Txn) lookup(key []byte) *data.Entry {
	if pw, ok := tx.pendingWrites[string(key)]; ok {
		if pw.typ == data.LogRecordDeleted || pw.entry.Expired(tx.now) {
			return nil
		}
		return pw.entry
	}
	entry := tx.db.memTable.Get(key)
	if entry == nil || entry.Expired(tx.now) {
		return nil
	}
	return entry
}

// getValue returns the value of key checked against typ, nil when absent
func (tx *Txn) getValue(key []byte, typ data.DataType) (*data.Value, reply.ErrorReply) {
	entry := tx.lookup(key)
	if entry == nil {
		return nil, nil
	}
	if entry.Value.Type != typ {
		return nil, reply.MakeErrReply(public.MsgWrongType)
	}
	return entry.Value, nil
}

// forWrite returns a private copy of the entry of key, nil when absent.
// Changes become part of the txn only through store.
func (tx *Txn) forWrite(key []byte, typ data.DataType) (*data.Entry, reply.ErrorReply) {
	entry := tx.lookup(key)
	if entry == nil {
		return nil, nil
	}
	if entry.Value.Type != typ {
		return nil, reply.MakeErrReply(public.MsgWrongType)
	}
	// overlay entries are already private to this txn
	if pw, ok := tx.pendingWrites[string(key)]; ok && pw.entry == entry {
		return entry, nil
	}
	return entry.Clone(), nil
}

// getOrCreate is forWrite that starts an empty value of typ for an absent key
func (tx *Txn) getOrCreate(key []byte, typ data.DataType) (*data.Entry, reply.ErrorReply) {
	entry, errReply := tx.forWrite(key, typ)
	if errReply != nil || entry != nil {
		return entry, errReply
	}
	var v *data.Value
	switch typ {
	case data.List:
		v = data.NewList()
	case data.Hash:
		v = data.NewHash()
	case data.Set:
		v = data.NewSet()
	case data.ZSet:
		v = data.NewZSet()
	default:
		v = data.NewString(nil)
	}
	return &data.Entry{Value: v}, nil
}

// store makes entry the new value of key, an emptied collection deletes the key
func (tx *Txn) store(key []byte, entry *data.Entry) {
	if entry.Value.IsEmpty() {
		tx.remove(key)
		return
	}
	tx.touch(key, &pendingWrite{typ: data.LogRecordNormal, entry: entry})
}

// remove deletes key, reports whether it existed
func (tx *Txn) remove(key []byte) bool {
	existed := tx.lookup(key) != nil
	_, pending := tx.pendingWrites[string(key)]
	if !existed && !pending && tx.db.memTable.Get(key) == nil {
		return false
	}
	tx.touch(key, &pendingWrite{typ: data.LogRecordDeleted})
	return existed
}

func (tx *Txn) touch(key []byte, pw *pendingWrite) {
	k := string(key)
	if _, ok := tx.pendingWrites[k]; !ok {
		tx.order = append(tx.order, k)
	}
	tx.pendingWrites[k] = pw
}

// commit persists the overlay as one batch and then publishes it to the key space
func (tx *Txn) commit() error {
	if len(tx.pendingWrites) == 0 {
		return nil
	}

	wb := tx.db.newWriteBatch()
	for _, key := range tx.order {
		pw := tx.pendingWrites[key]
		switch pw.typ {
		case data.LogRecordNormal:
			wb.Put([]byte(key), pw.entry)
		case data.LogRecordDeleted:
			if tx.db.memTable.Get([]byte(key)) != nil {
				wb.Del([]byte(key))
			}
		}
	}
	if err := wb.Commit(); err != nil {
		return err
	}

	for _, key := range tx.order {
		pw := tx.pendingWrites[key]
		switch pw.typ {
		case data.LogRecordNormal:
			tx.db.memTable.Put([]byte(key), pw.entry)
			if pw.entry.ExpireAt > 0 {
				tx.db.ttl.add(key, pw.entry.ExpireAt)
			} else {
				tx.db.ttl.del(key)
			}
		case data.LogRecordDeleted:
			tx.db.memTable.Del([]byte(key))
			tx.db.ttl.del(key)
		}
	}
	tx.db.watcher.touch(tx.order)
	tx.db.maybeMerge()
	return nil
}

func (tx *Txn) discard() {
	tx.pendingWrites = make(map[string]*pendingWrite)
	tx.order = nil
	tx.replies = nil
}
