package digest

import (
	"sync"
	"time"

	"originstamp/types"
)

// Headline is one pending digest item.
type Headline struct {
	EventID     int64
	ReportID    string
	Source      string
	Text        string
	DisplayTime string
	ReportTime  time.Time
	Importance  int
	Entities    []types.Entity
}

// Queue is a fixed-capacity pending-headline buffer. On overflow the oldest
// entry is evicted. Headlines are deduplicated by event id: the first
// reporter of an event keeps its slot and later headlines for the same event
// are silently dropped. All operations take the one queue lock and touch
// memory only.
type Queue struct {
	mu       sync.Mutex
	items    []Headline
	byEvent  map[int64]bool
	capacity int
}

func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 50
	}
	return &Queue{
		items:    make([]Headline, 0, capacity),
		byEvent:  make(map[int64]bool, capacity),
		capacity: capacity,
	}
}

// Add enqueues a headline. Returns false when the headline was dropped
// because its event is already pending.
func (q *Queue) Add(h Headline) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if h.EventID != 0 && q.byEvent[h.EventID] {
		return false
	}

	if len(q.items) >= q.capacity {
		evicted := q.items[0]
		q.items = q.items[1:]
		delete(q.byEvent, evicted.EventID)
	}

	q.items = append(q.items, h)
	if h.EventID != 0 {
		q.byEvent[h.EventID] = true
	}
	return true
}

// Snapshot returns a copy of the pending headlines in arrival order.
func (q *Queue) Snapshot() []Headline {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Headline, len(q.items))
	copy(out, q.items)
	return out
}

// Len returns the number of pending headlines.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// MaxImportance returns the highest importance among pending headlines, or 0
// when the queue is empty.
func (q *Queue) MaxImportance() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	best := 0
	for i := range q.items {
		if q.items[i].Importance > best {
			best = q.items[i].Importance
		}
	}
	return best
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = q.items[:0]
	q.byEvent = make(map[int64]bool, q.capacity)
}
