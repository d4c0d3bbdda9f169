package server

import (
	"sync"

	"github.com/lrcshow-cli/lrcshow/lrc"
	"github.com/samber/mo"
)

// Cache holds the last lyrics and segment the loop reported, for queries
// coming from other goroutines.
type Cache struct {
	mu      sync.Mutex
	lines   mo.Option[[]string]
	segment mo.Option[lrc.TimingMark]
}

// SetLyrics replaces the lines and forgets the segment, which pointed into the old ones.
func (c *Cache) SetLyrics(lines mo.Option[[]string]) {
	if l, ok := lines.Get(); ok {
		lines = mo.Some(append([]string(nil), l...))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = lines
	c.segment = mo.None[lrc.TimingMark]()
}

// SetSegment stores mark and reports whether it differs from the stored one.
func (c *Cache) SetSegment(mark mo.Option[lrc.TimingMark]) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.segment == mark {
		return false
	}

	c.segment = mark
	return true
}

// Lines returns a copy of the current lines, empty when there are none.
func (c *Cache) Lines() []string {
	c.mu.Lock()
	lines := c.lines.OrEmpty()
	c.mu.Unlock()

	return append([]string{}, lines...)
}

// HasLyrics reports whether lyrics are loaded.
func (c *Cache) HasLyrics() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lines.IsPresent()
}

// Segment returns the current segment.
func (c *Cache) Segment() Segment {
	c.mu.Lock()
	mark := c.segment
	c.mu.Unlock()

	return SegmentOf(mark)
}
