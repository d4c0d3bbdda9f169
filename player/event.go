package player

import (
	"fmt"
	"time"

	"github.com/samber/mo"
)

// Event is a notification originating from the player.
// The set of implementations is closed: Seeked, StatusChanged, MetadataChanged,
// Started, ShutDown and UnknownProperty.
type Event interface {
	fmt.Stringer
	playerEvent()
}

// TimedEvent is an Event stamped with the instant the producer received it.
type TimedEvent struct {
	Instant time.Time
	Event   Event
}

// Seeked reports a position discontinuity.
type Seeked struct {
	Position time.Duration
}

// StatusChanged reports a new playback status.
// Position must be resolved by the producer when Status is Paused, since the
// position at the pause instant is not delivered with the notification.
type StatusChanged struct {
	Status   PlaybackStatus
	Position mo.Option[time.Duration]
}

// MetadataChanged reports a track change. None means the player has no track,
// which happens when a playlist reaches its end.
type MetadataChanged struct {
	Metadata mo.Option[Metadata]
}

// Started reports that the player appeared on the bus along with its full state,
// queried right after the appearance.
type Started struct {
	Owner string
	State State
}

// ShutDown reports that the player left the bus.
type ShutDown struct{}

// UnknownProperty carries a property change nothing reacts to.
type UnknownProperty struct {
	Key   string
	Value string
}

func (Seeked) playerEvent()          {}
func (StatusChanged) playerEvent()   {}
func (MetadataChanged) playerEvent() {}
func (Started) playerEvent()         {}
func (ShutDown) playerEvent()        {}
func (UnknownProperty) playerEvent() {}

func (e Seeked) String() string {
	return fmt.Sprintf("Seeked(%s)", e.Position)
}

func (e StatusChanged) String() string {
	if pos, ok := e.Position.Get(); ok {
		return fmt.Sprintf("StatusChanged(%s @ %s)", e.Status, pos)
	}
	return fmt.Sprintf("StatusChanged(%s)", e.Status)
}

func (e MetadataChanged) String() string {
	if meta, ok := e.Metadata.Get(); ok {
		return fmt.Sprintf("MetadataChanged(%q)", meta.Path)
	}
	return "MetadataChanged(none)"
}

func (e Started) String() string {
	return fmt.Sprintf("Started(%s, %s)", e.Owner, e.State.Status)
}

func (ShutDown) String() string {
	return "ShutDown"
}

func (e UnknownProperty) String() string {
	return fmt.Sprintf("UnknownProperty(%s = %s)", e.Key, e.Value)
}
