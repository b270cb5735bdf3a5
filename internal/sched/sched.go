// Package sched is the minimal task scheduler behind the capture loop and the
// delayed burst emissions.
package sched

import (
	"container/heap"
	"sync"
	"time"
)

// Timer is a pending scheduled call.
type Timer interface {
	// Stop cancels the call. It reports whether the call was still pending.
	Stop() bool
}

// Scheduler runs functions after a delay.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Real schedules on the wall clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Virtual is a manually advanced clock. Scheduled calls run only inside
// Advance, on the caller's goroutine, in due-time order and FIFO for equal
// due times.
type Virtual struct {
	mu    sync.Mutex
	now   time.Time
	seq   uint64
	tasks taskHeap
}

// NewVirtual returns a virtual scheduler starting at start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

func (v *Virtual) AfterFunc(d time.Duration, f func()) Timer {
	if d < 0 {
		d = 0
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.seq++
	t := &task{v: v, due: v.now.Add(d), seq: v.seq, fn: f}
	heap.Push(&v.tasks, t)
	return t
}

// Advance moves the clock forward by d, running every call that falls due,
// including calls scheduled by those calls. It returns the number run.
func (v *Virtual) Advance(d time.Duration) int {
	v.mu.Lock()
	target := v.now.Add(d)
	v.mu.Unlock()

	ran := 0
	for {
		v.mu.Lock()
		if len(v.tasks) == 0 || v.tasks[0].due.After(target) {
			v.now = target
			v.mu.Unlock()
			return ran
		}
		t := heap.Pop(&v.tasks).(*task)
		v.now = t.due
		stopped := t.stopped
		t.done = true
		v.mu.Unlock()

		if !stopped {
			t.fn()
			ran++
		}
	}
}

// Pending returns the number of calls not yet run or stopped.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	n := 0
	for _, t := range v.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}

type task struct {
	v       *Virtual
	due     time.Time
	seq     uint64
	fn      func()
	stopped bool
	done    bool
	index   int
}

func (t *task) Stop() bool {
	t.v.mu.Lock()
	defer t.v.mu.Unlock()

	if t.stopped || t.done {
		return false
	}
	t.stopped = true
	return true
}

type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}
