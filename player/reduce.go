package player

import (
	"errors"

	"github.com/samber/mo"
)

// ErrMissingPosition is reported when a Paused status reaches the reducer without
// the position the producer was supposed to query. It indicates a defect in the
// producer, so callers should not substitute a default.
var ErrMissingPosition = errors.New("paused without a resolved position")

// Reduce applies ev to prior and returns the resulting state.
// An absent state means no player is known.
func Reduce(prior mo.Option[State], ev TimedEvent) (mo.Option[State], error) {
	switch e := ev.Event.(type) {
	case Seeked:
		return mo.TupleToOption(mapState(prior, func(s State) State {
			s.Snapshot = PositionSnapshot{Position: e.Position, CapturedAt: ev.Instant}
			return s
		})), nil

	case StatusChanged:
		return reduceStatus(prior, e, ev)

	case MetadataChanged:
		return mo.TupleToOption(mapState(prior, func(s State) State {
			s.Metadata = e.Metadata
			return s
		})), nil

	case Started:
		return mo.Some(e.State), nil

	case ShutDown:
		return mo.None[State](), nil

	default:
		return prior, nil
	}
}

func reduceStatus(prior mo.Option[State], e StatusChanged, ev TimedEvent) (mo.Option[State], error) {
	switch e.Status {
	case Stopped:
		return mo.Some(State{
			Status:   Stopped,
			Snapshot: PositionSnapshot{CapturedAt: ev.Instant},
			Metadata: mo.None[Metadata](),
		}), nil

	case Paused:
		position, ok := e.Position.Get()
		if !ok {
			return prior, ErrMissingPosition
		}

		return mo.TupleToOption(mapState(prior, func(s State) State {
			s.Status = Paused
			s.Snapshot = PositionSnapshot{Position: position, CapturedAt: ev.Instant}
			return s
		})), nil

	default:
		// The position was captured by the last pause or seek, only the instant moves.
		return mo.TupleToOption(mapState(prior, func(s State) State {
			s.Status = Playing
			s.Snapshot.CapturedAt = ev.Instant
			return s
		})), nil
	}
}

func mapState(prior mo.Option[State], f func(State) State) (State, bool) {
	s, ok := prior.Get()
	if !ok {
		return State{}, false
	}
	return f(s), true
}
