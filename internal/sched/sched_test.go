package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestVirtualRunsInDueOrder(t *testing.T) {
	v := NewVirtual(epoch)
	var got []string

	v.AfterFunc(300*time.Millisecond, func() { got = append(got, "c") })
	v.AfterFunc(100*time.Millisecond, func() { got = append(got, "a") })
	v.AfterFunc(200*time.Millisecond, func() { got = append(got, "b") })
	v.AfterFunc(100*time.Millisecond, func() { got = append(got, "a2") })

	assert.Equal(t, 0, v.Advance(50*time.Millisecond))
	assert.Equal(t, 3, v.Advance(200*time.Millisecond))
	assert.Equal(t, []string{"a", "a2", "b"}, got)
	assert.Equal(t, epoch.Add(250*time.Millisecond), v.Now())
	assert.Equal(t, 1, v.Pending())
}

func TestVirtualClockDuringCallback(t *testing.T) {
	v := NewVirtual(epoch)
	var at time.Time
	v.AfterFunc(time.Second, func() { at = v.Now() })

	v.Advance(5 * time.Second)
	assert.Equal(t, epoch.Add(time.Second), at)
	assert.Equal(t, epoch.Add(5*time.Second), v.Now())
}

func TestVirtualReschedulingFromCallback(t *testing.T) {
	v := NewVirtual(epoch)
	ticks := 0
	var tick func()
	tick = func() {
		ticks++
		v.AfterFunc(time.Second, tick)
	}
	v.AfterFunc(time.Second, tick)

	v.Advance(3500 * time.Millisecond)
	assert.Equal(t, 3, ticks)
}

func TestVirtualStop(t *testing.T) {
	v := NewVirtual(epoch)
	ran := false
	timer := v.AfterFunc(time.Second, func() { ran = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	assert.Equal(t, 0, v.Pending())

	v.Advance(2 * time.Second)
	assert.False(t, ran)
}

func TestVirtualStopAfterRun(t *testing.T) {
	v := NewVirtual(epoch)
	timer := v.AfterFunc(0, func() {})
	assert.Equal(t, 1, v.Advance(0))
	assert.False(t, timer.Stop())
}

func TestRealAfterFunc(t *testing.T) {
	done := make(chan struct{})
	Real{}.AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("real scheduler never fired")
	}
}
