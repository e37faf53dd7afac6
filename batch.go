package CouloyLite

import (
	"bytes"

	"github.com/Kirov7/CouloyLite/data"
	"github.com/Kirov7/CouloyLite/public"
	"github.com/pkg/errors"
)

// WriteBatch collects the log records of one commit and appends them atomically
type WriteBatch struct {
	db           *DB
	pendingWrite []*data.LogRecord
}

func (db *DB) newWriteBatch() *WriteBatch {
	return &WriteBatch{db: db}
}

func (wb *WriteBatch) Put(key []byte, entry *data.Entry) {
	wb.pendingWrite = append(wb.pendingWrite, &data.LogRecord{
		Key:        key,
		Value:      data.EncodeValue(entry.Value),
		Type:       data.LogRecordNormal,
		DataType:   entry.Value.Type,
		Expiration: entry.ExpireAt,
	})
}

func (wb *WriteBatch) Del(key []byte) {
	wb.pendingWrite = append(wb.pendingWrite, &data.LogRecord{Key: key, Type: data.LogRecordDeleted})
}

// Commit writes the batch with a single write call. A lone record carries
// NO_TX_ID and is applied on replay by itself, a larger batch is tagged with
// a fresh txId and closed by a commit marker. On failure the log is cut back
// to where it was.
func (wb *WriteBatch) Commit() error {
	if len(wb.pendingWrite) == 0 {
		return nil
	}

	txId := public.NO_TX_ID
	if len(wb.pendingWrite) > 1 {
		txId = wb.db.oracle.next()
	}

	var buf bytes.Buffer
	for _, record := range wb.pendingWrite {
		record.Key = data.EncodeKeyWithTxId(record.Key, txId)
		enc, _ := data.EncodeLogRecord(record)
		buf.Write(enc)
	}
	if txId != public.NO_TX_ID {
		enc, _ := data.EncodeLogRecord(&data.LogRecord{
			Key:  data.EncodeKeyWithTxId(public.TX_COMMIT_KEY, txId),
			Type: data.LogRecordTxnCommit,
		})
		buf.Write(enc)
	}

	if err := wb.db.appendLog(buf.Bytes()); err != nil {
		return errors.Wrapf(err, "commit %d records", len(wb.pendingWrite))
	}
	wb.pendingWrite = nil
	return nil
}

// appendLog writes buf to the end of the log and makes it durable
func (db *DB) appendLog(buf []byte) error {
	start := db.logFile.WriteOff
	err := db.logFile.Write(buf)
	if err == nil && db.options.SyncWrites {
		err = db.logFile.Sync()
	}
	if err != nil {
		if terr := db.logFile.Truncate(start); terr != nil {
			db.logger.Printf("truncate log back to %d after failed append: %v", start, terr)
		}
		return errors.Wrap(public.ErrPersistenceFailure, err.Error())
	}
	return nil
}
