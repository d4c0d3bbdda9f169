package lrc

import (
	"sort"
	"time"

	"github.com/samber/mo"
)

// Cursor tracks the active and the upcoming timing mark.
// It holds indices into the marks it was built over, so replacing the lyrics
// means building a new cursor with Resync.
type Cursor struct {
	marks   []TimingMark
	current int
	next    int
	tick    time.Duration
}

// Resync builds a cursor for position from scratch.
//
// A mark is considered reached half a tick before its time, the same tolerance
// Advance applies, so a Resync immediately followed by an Advance at the same
// position never reports a mark.
func Resync(marks []TimingMark, position, tick time.Duration) *Cursor {
	c := &Cursor{marks: marks, tick: tick}

	reached := sort.Search(len(marks), func(i int) bool {
		return position < c.activation(marks[i])
	})

	c.current = reached - 1
	c.next = reached
	if c.next >= len(marks) {
		c.next = -1
	}

	return c
}

// Advance moves to the next mark once position reaches it and returns it.
// It assumes playback moved forward steadily since the last call.
func (c *Cursor) Advance(position time.Duration) mo.Option[TimingMark] {
	if c.next < 0 {
		return mo.None[TimingMark]()
	}

	mark := c.marks[c.next]
	if position < c.activation(mark) {
		return mo.None[TimingMark]()
	}

	c.current = c.next
	c.next++
	if c.next >= len(c.marks) {
		c.next = -1
	}

	return mo.Some(mark)
}

// Current returns the active mark.
func (c *Cursor) Current() mo.Option[TimingMark] {
	return c.at(c.current)
}

// Next returns the mark that becomes active after the current one.
func (c *Cursor) Next() mo.Option[TimingMark] {
	return c.at(c.next)
}

func (c *Cursor) at(i int) mo.Option[TimingMark] {
	if i < 0 {
		return mo.None[TimingMark]()
	}
	return mo.Some(c.marks[i])
}

// activation is the earliest position at which mark counts as reached.
// The next tick may come up to a tick late, half a tick early splits the error.
func (c *Cursor) activation(mark TimingMark) time.Duration {
	return mark.Time - min(c.tick/2, mark.Time)
}
