package CouloyLite

// watcherManager implements optimistic WATCH: a watched key that is changed
// by a commit or expires before EXEC makes that EXEC fail
type watcherManager struct {
	watchers map[string]struct{}
	changed  bool
}

func newWatcherManager() *watcherManager {
	return &watcherManager{watchers: make(map[string]struct{})}
}

func (wm *watcherManager) watch(key string) {
	wm.watchers[key] = struct{}{}
}

func (wm *watcherManager) touch(keys []string) {
	if len(wm.watchers) == 0 || wm.changed {
		return
	}
	for _, key := range keys {
		if _, ok := wm.watchers[key]; ok {
			wm.changed = true
			return
		}
	}
}

func (wm *watcherManager) dirty() bool {
	return wm.changed
}

func (wm *watcherManager) reset() {
	wm.watchers = make(map[string]struct{})
	wm.changed = false
}
