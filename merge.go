package CouloyLite

import (
	"bytes"

	"github.com/Kirov7/CouloyLite/data"
	"github.com/Kirov7/CouloyLite/driver"
	"github.com/Kirov7/CouloyLite/public"
	"github.com/pkg/errors"
)

// Merge rewrites the log as a snapshot of the live committed keys
func (db *DB) Merge() error {
	db.lock.Lock()
	defer db.lock.Unlock()
	if db.closed {
		return public.ErrDBClosed
	}
	return db.merge()
}

// merge writes the magic header, one put record per live key and a snapshot
// marker into a new log, then swaps it in. The old log stays valid until
// the rename succeeds.
func (db *DB) merge() error {
	if db.isMerging {
		return public.ErrInMerging
	}
	db.isMerging = true
	defer func() {
		db.isMerging = false
	}()

	txId := db.oracle.next()
	var buf bytes.Buffer
	buf.Write(public.LOG_MAGIC)

	var keys int
	it := db.newIterator(DefaultIteratorOptions())
	for it.Rewind(); it.Valid(); it.Next() {
		entry := it.IndexIterator.Value()
		enc, _ := data.EncodeLogRecord(&data.LogRecord{
			Key:        data.EncodeKeyWithTxId(it.Key(), txId),
			Value:      data.EncodeValue(entry.Value),
			Type:       data.LogRecordNormal,
			DataType:   entry.Value.Type,
			Expiration: entry.ExpireAt,
		})
		buf.Write(enc)
		keys++
	}
	it.Close()

	enc, _ := data.EncodeLogRecord(&data.LogRecord{
		Key:  data.EncodeKeyWithTxId(public.SNAPSHOT_FIN_KEY, txId),
		Type: data.LogRecordSnapshot,
	})
	buf.Write(enc)

	before := db.logFile.WriteOff
	if mem, ok := db.logFile.Writer.(*driver.MemIO); ok {
		mem.Swap(buf.Bytes())
		db.logFile.WriteOff = int64(buf.Len())
	} else if err := db.swapLogFile(buf.Bytes()); err != nil {
		return err
	}
	db.lastMergeSize = db.logFile.WriteOff
	db.logger.Printf("merge: %d keys, log %d -> %d bytes", keys, before, db.lastMergeSize)
	return nil
}

func (db *DB) swapLogFile(content []byte) error {
	path := db.options.Path
	if err := driver.ReplaceFile(path, path+public.MergeFileSuffix, content); err != nil {
		return errors.Wrap(err, "write merge file")
	}

	logFile, err := data.OpenLogFile(path)
	if err != nil {
		return errors.Wrap(err, "reopen log after merge")
	}
	if err := db.logFile.Close(); err != nil {
		db.logger.Printf("close replaced log: %v", err)
	}
	db.logFile = logFile
	return nil
}

// maybeMerge compacts once the log passed MergeThreshold and doubled since the last merge
func (db *DB) maybeMerge() {
	threshold := db.options.MergeThreshold
	size := db.logFile.WriteOff
	if threshold <= 0 || size <= threshold || size <= 2*db.lastMergeSize {
		return
	}
	if err := db.merge(); err != nil {
		db.logger.Printf("auto merge: %v", err)
	}
}
