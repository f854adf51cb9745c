package scheduler

import (
	"container/heap"
	"sync"
	"time"
)

type manualTimer struct {
	clock  *ManualClock
	at     time.Time
	seq    uint64
	period time.Duration
	fn     func()
	index  int
}

func (t *manualTimer) Stop() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.index < 0 {
		return false
	}
	heap.Remove(&c.queue, t.index)
	return true
}

// timerQueue is a min-heap ordered by deadline then creation order.
type timerQueue []*manualTimer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*manualTimer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

// ManualClock is a virtual clock for tests. Callbacks run synchronously on
// the goroutine calling Advance, in deadline order, without the clock lock
// held so they may schedule or stop other timers.
type ManualClock struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	queue timerQueue
}

// NewManualClock starts virtual time at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the virtual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f to run once virtual time reaches now+d.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	return c.schedule(d, 0, f)
}

// NewTicker returns a ticker driven by Advance. Ticks are dropped when the
// receiver is not keeping up, like time.Ticker.
func (c *ManualClock) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("scheduler: non-positive ticker interval")
	}
	ch := make(chan time.Time, 1)
	mt := &manualTicker{ch: ch}
	mt.timer = c.schedule(d, d, func() {
		select {
		case ch <- c.Now():
		default:
		}
	})
	return mt
}

func (c *ManualClock) schedule(d, period time.Duration, f func()) *manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &manualTimer{clock: c, at: c.now.Add(d), seq: c.seq, period: period, fn: f}
	heap.Push(&c.queue, t)
	return t
}

// Advance moves virtual time forward by d, firing every callback due on the
// way, including ones scheduled by earlier callbacks.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for len(c.queue) > 0 && !c.queue[0].at.After(target) {
		t := heap.Pop(&c.queue).(*manualTimer)
		c.now = t.at
		if t.period > 0 {
			c.seq++
			t.at = t.at.Add(t.period)
			t.seq = c.seq
			heap.Push(&c.queue, t)
		}
		c.mu.Unlock()
		t.fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// Pending reports how many callbacks are waiting, tickers included.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

type manualTicker struct {
	ch    chan time.Time
	timer *manualTimer
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               { m.timer.Stop() }
