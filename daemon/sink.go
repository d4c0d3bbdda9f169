package daemon

import (
	"github.com/lrcshow-cli/lrcshow/lrc"
	"github.com/samber/mo"
)

// Sink receives the changes the loop observes.
// OnActiveSegmentChanged is never called twice in a row with the same mark,
// unless the lyrics changed in between. Every OnLyricsChanged resets that
// suppression: the active mark is announced again after it, even when the
// reloaded lyrics put the same mark in place, since receivers drop their
// segment on a lyrics change.
type Sink interface {
	OnLyricsChanged(lines mo.Option[[]string])
	OnActiveSegmentChanged(mark mo.Option[lrc.TimingMark])
}

// MultiSink forwards every change to each of its sinks in order.
type MultiSink []Sink

func (m MultiSink) OnLyricsChanged(lines mo.Option[[]string]) {
	for _, sink := range m {
		sink.OnLyricsChanged(lines)
	}
}

func (m MultiSink) OnActiveSegmentChanged(mark mo.Option[lrc.TimingMark]) {
	for _, sink := range m {
		sink.OnActiveSegmentChanged(mark)
	}
}
