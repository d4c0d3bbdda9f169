// Package player models the state of an external media player and reduces
// the timestamped notifications it emits into that state.
package player

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/mo"
)

// PlaybackStatus mirrors the MPRIS PlaybackStatus property.
type PlaybackStatus string

const (
	Playing PlaybackStatus = "Playing"
	Paused  PlaybackStatus = "Paused"
	Stopped PlaybackStatus = "Stopped"
)

// ErrUnknownStatus is returned when a status string is none of Playing, Paused or Stopped.
var ErrUnknownStatus = errors.New("unknown playback status")

// ParsePlaybackStatus converts an MPRIS status string.
func ParsePlaybackStatus(s string) (PlaybackStatus, error) {
	switch status := PlaybackStatus(s); status {
	case Playing, Paused, Stopped:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// PositionSnapshot is a position observed at a given instant.
type PositionSnapshot struct {
	Position   time.Duration
	CapturedAt time.Time
}

// Metadata describes the track being played. Only Path takes part in synchronization.
type Metadata struct {
	Path    string
	Title   string
	Album   string
	Artists []string
	Length  time.Duration
}

// State is an immutable view of the player. Reduce never mutates a State it was given.
type State struct {
	Status   PlaybackStatus
	Snapshot PositionSnapshot
	Metadata mo.Option[Metadata]
}

// CurrentPosition extrapolates the playback position at now.
// While playing, time elapsed since the snapshot was captured is added to it.
func (s State) CurrentPosition(now time.Time) time.Duration {
	if s.Status != Playing {
		return s.Snapshot.Position
	}

	elapsed := now.Sub(s.Snapshot.CapturedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	return s.Snapshot.Position + elapsed
}

// Path returns the path of the current track, if known.
func (s State) Path() mo.Option[string] {
	meta, ok := s.Metadata.Get()
	if !ok || meta.Path == "" {
		return mo.None[string]()
	}
	return mo.Some(meta.Path)
}
