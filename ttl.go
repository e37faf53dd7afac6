package CouloyLite

import (
	"github.com/Kirov7/CouloyLite/public/ds"
)

// ttl indexes the deadlines of committed keys. Expired keys are invisible
// to lookups right away and are evicted from the key space by write
// commands, nothing runs in the background.
type ttl struct {
	timeHeap *ds.TimeHeap
}

func newTTL() *ttl {
	return &ttl{timeHeap: ds.NewTimeHeap()}
}

func (ttl *ttl) add(key string, deadline int64) {
	ttl.timeHeap.Set(key, deadline)
}

func (ttl *ttl) del(key string) {
	ttl.timeHeap.Remove(key)
}

func (ttl *ttl) expired(now int64, limit int) []string {
	return ttl.timeHeap.PopExpired(now, limit)
}

// sweepExpired evicts up to ExpireSweepLimit expired keys, no log record is
// written since replay skips expired records anyway
func (db *DB) sweepExpired() {
	now := db.clock()
	keys := db.ttl.expired(now, db.options.ExpireSweepLimit)
	if len(keys) == 0 {
		return
	}
	for _, key := range keys {
		if entry := db.memTable.Get([]byte(key)); entry != nil && entry.Expired(now) {
			db.memTable.Del([]byte(key))
		}
	}
	db.watcher.touch(keys)
}
