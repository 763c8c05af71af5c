package monitor

import (
	"sync"
	"time"
)

const DefaultCapacity = 100

type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Request is one tracked API call.
type Request struct {
	ID         string            `json:"id"`
	Method     string            `json:"method"`
	Endpoint   string            `json:"endpoint"`
	Params     map[string]string `json:"params"`
	StartedAt  time.Time         `json:"start_time"`
	Status     Status            `json:"status"`
	StatusCode int               `json:"status_code,omitempty"`
	DurationMs float64           `json:"duration_ms"`
	Error      string            `json:"error,omitempty"`
}

// Ring keeps the most recent requests and fans every change out to
// subscribers. Slow subscribers miss events instead of blocking writers.
type Ring struct {
	mu       sync.RWMutex
	items    []Request
	capacity int
	subs     map[chan Request]struct{}
}

func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{
		items:    make([]Request, 0, capacity),
		capacity: capacity,
		subs:     make(map[chan Request]struct{}),
	}
}

// Add stores r, evicting the oldest entry when the ring is full.
func (r *Ring) Add(req Request) {
	r.mu.Lock()
	if len(r.items) == r.capacity {
		copy(r.items, r.items[1:])
		r.items = r.items[:len(r.items)-1]
	}
	r.items = append(r.items, req)
	r.publish(req)
	r.mu.Unlock()
}

// Update applies fn to the request with id. Evicted requests are ignored.
func (r *Ring) Update(id string, fn func(*Request)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].ID == id {
			fn(&r.items[i])
			r.publish(r.items[i])
			return true
		}
	}
	return false
}

// Recent returns a copy of the stored requests, oldest first.
func (r *Ring) Recent() []Request {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Request, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Subscribe returns a channel of request events and a func that releases it.
func (r *Ring) Subscribe(buffer int) (<-chan Request, func()) {
	ch := make(chan Request, buffer)

	r.mu.Lock()
	r.subs[ch] = struct{}{}
	r.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, ch)
			r.mu.Unlock()
			close(ch)
		})
	}
}

// publish must be called with mu held.
func (r *Ring) publish(req Request) {
	for ch := range r.subs {
		select {
		case ch <- req:
		default:
		}
	}
}
