package monitor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRing_EvictsOldest(t *testing.T) {
	r := NewRing(3)
	for i := 0; i < 5; i++ {
		r.Add(Request{ID: fmt.Sprint(i)})
	}

	recent := r.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, "2", recent[0].ID)
	assert.Equal(t, "4", recent[2].ID)
	assert.Equal(t, 3, r.Len())
}

func TestRing_DefaultCapacity(t *testing.T) {
	r := NewRing(0)
	for i := 0; i < DefaultCapacity+20; i++ {
		r.Add(Request{ID: fmt.Sprint(i)})
	}
	assert.Equal(t, DefaultCapacity, r.Len())
}

func TestRing_Update(t *testing.T) {
	r := NewRing(2)
	r.Add(Request{ID: "a", Status: StatusPending})

	ok := r.Update("a", func(req *Request) { req.Status = StatusSuccess })
	assert.True(t, ok)
	assert.Equal(t, StatusSuccess, r.Recent()[0].Status)

	r.Add(Request{ID: "b"})
	r.Add(Request{ID: "c"})
	assert.False(t, r.Update("a", func(req *Request) { req.Status = StatusError }))
}

func TestRing_RecentIsACopy(t *testing.T) {
	r := NewRing(2)
	r.Add(Request{ID: "a"})

	recent := r.Recent()
	recent[0].ID = "changed"
	assert.Equal(t, "a", r.Recent()[0].ID)
}

func TestRing_Subscribe(t *testing.T) {
	r := NewRing(10)
	events, release := r.Subscribe(1)

	r.Add(Request{ID: "a"})
	r.Add(Request{ID: "b"})

	got := <-events
	assert.Equal(t, "a", got.ID)

	release()
	release()
	_, open := <-events
	assert.False(t, open)

	r.Add(Request{ID: "c"})
}
