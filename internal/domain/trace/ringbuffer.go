package trace

import "sync"

const defaultHistorySize = 100

// Query filters history entries. Zero fields match everything.
type Query struct {
	ConfigID   int64
	FailedOnly bool
	Limit      int
}

func (q Query) matches(e Entry) bool {
	if q.ConfigID != 0 && e.ConfigID != q.ConfigID {
		return false
	}
	return !q.FailedOnly || e.Failed()
}

// RingBuffer keeps the most recent run history entries. Older entries are
// overwritten once the capacity is reached. Safe for concurrent use.
type RingBuffer struct {
	mu   sync.RWMutex
	buf  []Entry
	next int // slot written by the next Add
	full bool
}

// NewRingBuffer creates a buffer holding up to size entries (100 when size <= 0).
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = defaultHistorySize
	}
	return &RingBuffer{buf: make([]Entry, size)}
}

// Add records e, evicting the oldest entry when full.
func (rb *RingBuffer) Add(e Entry) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.buf[rb.next] = e
	rb.next++
	if rb.next == len(rb.buf) {
		rb.next = 0
		rb.full = true
	}
}

// Count returns the number of stored entries.
func (rb *RingBuffer) Count() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.lenLocked()
}

func (rb *RingBuffer) lenLocked() int {
	if rb.full {
		return len(rb.buf)
	}
	return rb.next
}

// newestFirst calls fn from the newest entry backwards until fn returns false.
func (rb *RingBuffer) newestFirst(fn func(Entry) bool) {
	size := len(rb.buf)
	for i := 1; i <= rb.lenLocked(); i++ {
		if !fn(rb.buf[(rb.next-i+size)%size]) {
			return
		}
	}
}

// Last returns up to n of the newest entries, oldest first.
func (rb *RingBuffer) Last(n int) []Entry {
	return rb.Select(Query{Limit: n})
}

// Select returns up to q.Limit of the newest entries matching q, oldest
// first. It returns nil when nothing matches or the limit is not positive.
func (rb *RingBuffer) Select(q Query) []Entry {
	if q.Limit <= 0 {
		return nil
	}
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	var picked []Entry
	rb.newestFirst(func(e Entry) bool {
		if q.matches(e) {
			picked = append(picked, e)
		}
		return len(picked) < q.Limit
	})

	for i, j := 0, len(picked)-1; i < j; i, j = i+1, j-1 {
		picked[i], picked[j] = picked[j], picked[i]
	}
	return picked
}

// Find returns the newest entry with the given id.
func (rb *RingBuffer) Find(id string) (Entry, bool) {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	var found Entry
	var ok bool
	rb.newestFirst(func(e Entry) bool {
		if e.ID == id {
			found, ok = e, true
		}
		return !ok
	})
	return found, ok
}
