package ds

import (
	"container/heap"
)

// TimeHeap is a min heap of key deadlines in unix milliseconds. Every key
// has at most one deadline, setting it again moves the key.
type TimeHeap struct {
	deadlines deadlines
}

func NewTimeHeap() *TimeHeap {
	return &TimeHeap{deadlines: deadlines{pos: make(map[string]int)}}
}

// Set gives key a new deadline
func (th *TimeHeap) Set(key string, deadline int64) {
	if i, ok := th.deadlines.pos[key]; ok {
		th.deadlines.items[i].at = deadline
		heap.Fix(&th.deadlines, i)
		return
	}
	heap.Push(&th.deadlines, &keyDeadline{key: key, at: deadline})
}

func (th *TimeHeap) Remove(key string) {
	if i, ok := th.deadlines.pos[key]; ok {
		heap.Remove(&th.deadlines, i)
	}
}

// PopExpired removes at most limit keys whose deadline is not after now,
// earliest first. limit <= 0 means no limit.
func (th *TimeHeap) PopExpired(now int64, limit int) []string {
	var keys []string
	for len(th.deadlines.items) > 0 && th.deadlines.items[0].at <= now {
		if limit > 0 && len(keys) >= limit {
			break
		}
		keys = append(keys, heap.Pop(&th.deadlines).(*keyDeadline).key)
	}
	return keys
}

func (th *TimeHeap) Len() int {
	return len(th.deadlines.items)
}

type keyDeadline struct {
	key string
	at  int64
}

// deadlines implements heap.Interface and tracks where each key sits
type deadlines struct {
	items []*keyDeadline
	pos   map[string]int
}

func (d *deadlines) Len() int {
	return len(d.items)
}

func (d *deadlines) Less(i, j int) bool {
	return d.items[i].at < d.items[j].at
}

func (d *deadlines) Swap(i, j int) {
	d.items[i], d.items[j] = d.items[j], d.items[i]
	d.pos[d.items[i].key] = i
	d.pos[d.items[j].key] = j
}

func (d *deadlines) Push(x interface{}) {
	item := x.(*keyDeadline)
	d.pos[item.key] = len(d.items)
	d.items = append(d.items, item)
}

func (d *deadlines) Pop() interface{} {
	n := len(d.items)
	item := d.items[n-1]
	d.items[n-1] = nil
	d.items = d.items[:n-1]
	delete(d.pos, item.key)
	return item
}
