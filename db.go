package CouloyLite

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Kirov7/CouloyLite/data"
	"github.com/Kirov7/CouloyLite/driver"
	"github.com/Kirov7/CouloyLite/meta"
	"github.com/Kirov7/CouloyLite/public"
	"github.com/Kirov7/CouloyLite/public/ds"
	"github.com/Kirov7/CouloyLite/resp/reply"
	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

// DB is one open storage target. A single caller drives it through
// WriteCommand/ReadReply, methods are safe to call from several goroutines.
type DB struct {
	options  Options
	logger   *log.Logger
	lock     *sync.RWMutex
	fileLock *flock.Flock
	logFile  *data.LogFile
	memTable meta.MemTable
	oracle   *oracle
	ttl      *ttl
	watcher  *watcherManager
	scripts  *scriptRunner

	// txn is the explicitly opened transaction, nil while idle
	txn     *Txn
	replies *ds.Queue[reply.Reply]

	recovery      RecoveryStats
	lastMergeSize int64
	isMerging     bool
	closed        bool

	clock func() int64
}

// RecoveryStats describes what the last open replayed from the log
type RecoveryStats struct {
	Records        int
	Transactions   int
	TruncatedBytes int64
	// Err wraps public.ErrCorruptLog when a damaged tail was discarded
	Err error
}

// Open opens the storage target in opt.Path, creating it when missing, and
// rebuilds the key space from its log
func Open(opt Options) (*DB, error) {
	if err := checkOptions(&opt); err != nil {
		return nil, err
	}

	db := &DB{
		options:  opt,
		logger:   opt.Logger,
		lock:     new(sync.RWMutex),
		memTable: meta.NewMemTable(opt.IndexType),
		oracle:   &oracle{},
		ttl:      newTTL(),
		watcher:  newWatcherManager(),
		replies:  ds.NewQueue[reply.Reply](),
		clock:    func() int64 { return time.Now().UnixMilli() },
	}

	if opt.Path != driver.MemoryTarget {
		if dir := filepath.Dir(opt.Path); dir != "" {
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return nil, err
			}
		}
		fileLock := flock.New(opt.Path + public.FileLockSuffix)
		hold, err := fileLock.TryLock()
		if err != nil {
			return nil, err
		}
		if !hold {
			return nil, public.ErrDirOccupied
		}
		db.fileLock = fileLock
		// a merge that never reached its rename left only garbage behind
		_ = os.Remove(opt.Path + public.MergeFileSuffix)
	}

	logFile, err := data.OpenLogFile(opt.Path)
	if err != nil {
		db.releaseFileLock()
		return nil, errors.Wrapf(err, "open log %s", opt.Path)
	}
	db.logFile = logFile

	if err := db.loadLogFile(); err != nil {
		_ = db.logFile.Close()
		db.releaseFileLock()
		return nil, err
	}
	db.lastMergeSize = db.logFile.WriteOff
	db.scripts = newScriptRunner()
	return db, nil
}

func checkOptions(opt *Options) error {
	if opt.Path == "" {
		return errors.New("Path can not be empty")
	}
	if opt.MergeThreshold < 0 {
		return errors.New("MergeThreshold can not be negative")
	}
	if opt.Logger == nil {
		opt.Logger = log.New(io.Discard, "", 0)
	}
	return nil
}

// loadLogFile replays the log into the key space. A record that cannot be
// read ends the replay, everything from the last complete commit on is cut off.
func (db *DB) loadLogFile() error {
	reader, err := db.logFile.NewReader()
	if err != nil {
		return errors.Wrap(err, "open log reader")
	}
	defer reader.Close()

	now := db.clock()
	pending := make(map[uint64][]*replayRecord)
	offset := db.logFile.HeaderSize()
	lastGood := offset
	var readErr error

	for {
		logRecord, size, err := reader.ReadLogRecord(offset)
		if err != nil {
			if err != io.EOF {
				readErr = err
			}
			break
		}

		key, txId, ok := data.ParseLogRecordKey(logRecord.Key)
		if !ok {
			readErr = errors.New("logRecord key without txId")
			break
		}
		db.oracle.observe(txId)

		switch logRecord.Type {
		case data.LogRecordTxnCommit, data.LogRecordSnapshot:
			for _, rec := range pending[txId] {
				db.replay(rec, now)
			}
			delete(pending, txId)
			db.recovery.Transactions++
		case data.LogRecordNormal, data.LogRecordDeleted:
			rec := &replayRecord{key: key, typ: logRecord.Type, expireAt: logRecord.Expiration}
			if logRecord.Type == data.LogRecordNormal {
				if rec.value, err = data.DecodeValue(logRecord.Value); err != nil {
					readErr = err
				}
			}
			if readErr != nil {
				break
			}
			if txId == public.NO_TX_ID {
				db.replay(rec, now)
			} else {
				pending[txId] = append(pending[txId], rec)
			}
		default:
			readErr = errors.Errorf("unknown logRecord type %d", logRecord.Type)
		}
		if readErr != nil {
			break
		}

		offset += size
		if len(pending) == 0 {
			lastGood = offset
		}
	}

	if lastGood < reader.Size() {
		db.recovery.TruncatedBytes = reader.Size() - lastGood
		cause := readErr
		if cause == nil {
			cause = errors.New("unfinished transaction at the end of the log")
		}
		db.recovery.Err = errors.Wrapf(public.ErrCorruptLog, "discard %d bytes after offset %d: %v",
			db.recovery.TruncatedBytes, lastGood, cause)
		db.logger.Printf("recovery: %v", db.recovery.Err)
		if err := db.logFile.Truncate(lastGood); err != nil {
			return errors.Wrap(err, "truncate damaged log tail")
		}
	}
	return nil
}

type replayRecord struct {
	key      []byte
	typ      data.LogRecordType
	value    *data.Value
	expireAt int64
}

func (db *DB) replay(rec *replayRecord, now int64) {
	db.recovery.Records++
	if rec.typ == data.LogRecordDeleted || (rec.expireAt > 0 && rec.expireAt <= now) {
		db.memTable.Del(rec.key)
		db.ttl.del(string(rec.key))
		return
	}
	db.memTable.Put(rec.key, &data.Entry{Value: rec.value, ExpireAt: rec.expireAt})
	if rec.expireAt > 0 {
		db.ttl.add(string(rec.key), rec.expireAt)
	} else {
		db.ttl.del(string(rec.key))
	}
}

// WriteCommand parses and runs one command, the reply is queued for ReadReply.
// Errors are returned only for handle level failures.
func (db *DB) WriteCommand(args ...[]byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()
	if db.closed {
		return public.ErrDBClosed
	}
	r, err := db.execute(args)
	if err != nil {
		return err
	}
	db.replies.Write(r)
	return nil
}

// ReadReply returns the reply of the oldest command whose reply was not read yet.
// With no reply pending it returns public.ErrNoPendingReply instead of a nil reply.
func (db *DB) ReadReply() (reply.Reply, error) {
	db.lock.Lock()
	defer db.lock.Unlock()
	if db.closed {
		return nil, public.ErrDBClosed
	}
	r, ok := db.replies.Read()
	if !ok {
		return nil, public.ErrNoPendingReply
	}
	return r, nil
}

// Exec runs one command and returns its reply directly, bypassing the reply queue
func (db *DB) Exec(args ...[]byte) (reply.Reply, error) {
	db.lock.Lock()
	defer db.lock.Unlock()
	if db.closed {
		return nil, public.ErrDBClosed
	}
	return db.execute(args)
}

// Query runs a read only command against the committed key space, an open
// transaction is not visible to it
func (db *DB) Query(args ...[]byte) (reply.Reply, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()
	if db.closed {
		return nil, public.ErrDBClosed
	}
	cmd, errReply := parseCommand(args)
	if errReply != nil {
		return errReply, nil
	}
	if !cmd.spec.is(flagReadOnly) {
		return reply.MakeErrReply(public.MsgReadOnlyQuery), nil
	}
	r, _ := db.newTxn().dispatch(cmd)
	return r, nil
}

// Begin opens an explicit transaction
func (db *DB) Begin() error {
	db.lock.Lock()
	defer db.lock.Unlock()
	if db.closed {
		return public.ErrDBClosed
	}
	return db.begin()
}

// Commit applies the open transaction and returns the replies of its commands
func (db *DB) Commit() (reply.Reply, error) {
	db.lock.Lock()
	defer db.lock.Unlock()
	if db.closed {
		return nil, public.ErrDBClosed
	}
	return db.commit()
}

// Rollback discards the open transaction
func (db *DB) Rollback() error {
	db.lock.Lock()
	defer db.lock.Unlock()
	if db.closed {
		return public.ErrDBClosed
	}
	return db.rollback()
}

// Size returns the number of live committed keys
func (db *DB) Size() int {
	db.lock.RLock()
	defer db.lock.RUnlock()
	return db.newTxn().dbSize()
}

func (db *DB) RecoveryStats() RecoveryStats {
	db.lock.RLock()
	defer db.lock.RUnlock()
	return db.recovery
}

func (db *DB) Sync() error {
	db.lock.Lock()
	defer db.lock.Unlock()
	if db.closed {
		return public.ErrDBClosed
	}
	return db.logFile.Sync()
}

// Close discards an open transaction and releases the storage target
func (db *DB) Close() error {
	db.lock.Lock()
	defer db.lock.Unlock()
	if db.closed {
		return nil
	}
	db.closed = true
	db.txn = nil
	db.replies.Reset()
	db.scripts.close()

	var err error
	if serr := db.logFile.Sync(); serr != nil {
		err = errors.Wrap(serr, "sync log")
	}
	if cerr := db.logFile.Close(); cerr != nil && err == nil {
		err = errors.Wrap(cerr, "close log")
	}
	db.releaseFileLock()
	return err
}

func (db *DB) releaseFileLock() {
	if db.fileLock == nil {
		return
	}
	if err := db.fileLock.Unlock(); err != nil {
		db.logger.Printf("release file lock: %v", err)
	}
}
