package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystem(t *testing.T) {
	t.Parallel()

	before := time.Now()
	got := System().Now()
	after := time.Now()
	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}

func TestFixed(t *testing.T) {
	t.Parallel()

	ts := time.Date(2004, 12, 31, 12, 0, 0, 0, time.UTC)
	c := Fixed(ts)
	assert.Equal(t, ts, c.Now())
	assert.Equal(t, ts, c.Now())
}

func TestMock(t *testing.T) {
	t.Parallel()

	start := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMock(start)
	assert.Equal(t, start, m.Now())

	assert.Equal(t, start.Add(time.Hour), m.Advance(time.Hour))
	assert.Equal(t, start.Add(time.Hour), m.Now())

	later := time.Date(2031, 6, 1, 0, 0, 0, 0, time.UTC)
	m.Set(later)
	assert.Equal(t, later, m.Now())
}

func TestMockConcurrent(t *testing.T) {
	t.Parallel()

	start := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMock(start)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Advance(time.Second)
		}()
		go func() {
			defer wg.Done()
			_ = m.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, start.Add(50*time.Second), m.Now())
}
