// Package server exposes the lyrics and the active segment to other programs,
// over D-Bus and optionally over HTTP.
package server

import (
	"fmt"
	"time"

	"github.com/lrcshow-cli/lrcshow/lrc"
	"github.com/samber/mo"
)

// Segment is the wire form of the active timing mark: the line, the byte range
// within it and the mark time in milliseconds. Every field is -1 when no
// segment is active.
type Segment struct {
	Line   int32 `json:"line" jsonschema:"description=Index of the active line, -1 if none"`
	From   int32 `json:"from" jsonschema:"description=Start of the active byte range"`
	To     int32 `json:"to" jsonschema:"description=End of the active byte range, exclusive"`
	TimeMs int32 `json:"time_ms" jsonschema:"description=Time of the active mark in milliseconds"`
}

// NoSegment stands for the absence of an active segment.
var NoSegment = Segment{Line: -1, From: -1, To: -1, TimeMs: -1}

// SegmentOf converts a timing mark.
func SegmentOf(mark mo.Option[lrc.TimingMark]) Segment {
	m, ok := mark.Get()
	if !ok {
		return NoSegment
	}

	return Segment{
		Line:   int32(m.Line),
		From:   int32(m.From),
		To:     int32(m.To),
		TimeMs: int32(m.Time.Milliseconds()),
	}
}

// Present reports whether s denotes an active segment.
func (s Segment) Present() bool {
	return s.Line >= 0
}

// Time returns the mark time.
func (s Segment) Time() time.Duration {
	return time.Duration(max(s.TimeMs, 0)) * time.Millisecond
}

func (s Segment) String() string {
	if !s.Present() {
		return "none"
	}
	return fmt.Sprintf("line %d [%d, %d) at %dms", s.Line, s.From, s.To, s.TimeMs)
}
