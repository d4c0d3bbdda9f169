package player

import (
	"errors"
	"testing"
	"time"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func at(offset time.Duration, e Event) TimedEvent {
	return TimedEvent{Instant: epoch.Add(offset), Event: e}
}

func song() Metadata {
	return Metadata{Path: "/music/queen/the-invisible-man.mp3", Title: "The Invisible Man"}
}

func playing(position time.Duration) mo.Option[State] {
	return mo.Some(State{
		Status:   Playing,
		Snapshot: PositionSnapshot{Position: position, CapturedAt: epoch},
		Metadata: mo.Some(song()),
	})
}

func TestReduce(t *testing.T) {
	Convey("Given a playing state", t, func() {
		prior := playing(10 * time.Second)

		Convey("Seeked replaces the snapshot and keeps the status", func() {
			next, err := Reduce(prior, at(3*time.Second, Seeked{Position: 42 * time.Second}))
			So(err, ShouldBeNil)

			state := next.MustGet()
			So(state.Status, ShouldEqual, Playing)
			So(state.Snapshot.Position, ShouldEqual, 42*time.Second)
			So(state.CurrentPosition(epoch.Add(3*time.Second)), ShouldEqual, 42*time.Second)
		})

		Convey("Stopped resets position and clears metadata", func() {
			next, err := Reduce(prior, at(time.Second, StatusChanged{Status: Stopped}))
			So(err, ShouldBeNil)

			state := next.MustGet()
			So(state.Status, ShouldEqual, Stopped)
			So(state.Snapshot.Position, ShouldEqual, time.Duration(0))
			So(state.Snapshot.CapturedAt, ShouldResemble, epoch.Add(time.Second))
			So(state.Metadata.IsAbsent(), ShouldBeTrue)
		})

		Convey("Paused takes the resolved position", func() {
			next, err := Reduce(prior, at(5*time.Second, StatusChanged{Status: Paused, Position: mo.Some(14 * time.Second)}))
			So(err, ShouldBeNil)

			state := next.MustGet()
			So(state.Status, ShouldEqual, Paused)
			So(state.CurrentPosition(epoch.Add(time.Hour)), ShouldEqual, 14*time.Second)
			So(state.Metadata.MustGet().Path, ShouldEqual, song().Path)
		})

		Convey("Paused without a position is rejected", func() {
			next, err := Reduce(prior, at(5*time.Second, StatusChanged{Status: Paused}))
			So(err, ShouldEqual, ErrMissingPosition)
			So(next, ShouldResemble, prior)
		})

		Convey("MetadataChanged replaces only the metadata", func() {
			other := Metadata{Path: "/music/other.flac"}
			next, err := Reduce(prior, at(time.Second, MetadataChanged{Metadata: mo.Some(other)}))
			So(err, ShouldBeNil)

			state := next.MustGet()
			So(state.Status, ShouldEqual, Playing)
			So(state.Snapshot, ShouldResemble, prior.MustGet().Snapshot)
			So(state.Metadata.MustGet().Path, ShouldEqual, "/music/other.flac")
		})

		Convey("ShutDown forgets the player", func() {
			next, err := Reduce(prior, at(time.Second, ShutDown{}))
			So(err, ShouldBeNil)
			So(next.IsAbsent(), ShouldBeTrue)
		})

		Convey("UnknownProperty changes nothing", func() {
			next, err := Reduce(prior, at(time.Second, UnknownProperty{Key: "Shuffle", Value: "true"}))
			So(err, ShouldBeNil)
			So(next, ShouldResemble, prior)
		})

		Convey("The prior state is never modified", func() {
			before := prior.MustGet()
			_, _ = Reduce(prior, at(time.Second, Seeked{Position: time.Minute}))
			So(prior.MustGet(), ShouldResemble, before)
		})
	})

	Convey("Given a paused state", t, func() {
		prior := mo.Some(State{
			Status:   Paused,
			Snapshot: PositionSnapshot{Position: 30 * time.Second, CapturedAt: epoch},
			Metadata: mo.Some(song()),
		})

		Convey("Playing keeps the position and rebases the instant", func() {
			next, err := Reduce(prior, at(time.Minute, StatusChanged{Status: Playing}))
			So(err, ShouldBeNil)

			state := next.MustGet()
			So(state.Status, ShouldEqual, Playing)
			So(state.Snapshot.Position, ShouldEqual, 30*time.Second)
			So(state.CurrentPosition(epoch.Add(time.Minute)), ShouldEqual, 30*time.Second)
			So(state.CurrentPosition(epoch.Add(time.Minute+500*time.Millisecond)), ShouldEqual, 30500*time.Millisecond)
		})
	})

	Convey("Given no known player", t, func() {
		prior := mo.None[State]()

		Convey("Position and status updates other than Stopped keep it unknown", func() {
			for _, e := range []Event{
				Seeked{Position: time.Second},
				StatusChanged{Status: Playing},
				StatusChanged{Status: Paused, Position: mo.Some(time.Second)},
				MetadataChanged{Metadata: mo.Some(song())},
				ShutDown{},
			} {
				next, err := Reduce(prior, at(0, e))
				So(err, ShouldBeNil)
				So(next.IsAbsent(), ShouldBeTrue)
			}
		})

		Convey("Stopped creates a stopped state", func() {
			next, err := Reduce(prior, at(0, StatusChanged{Status: Stopped}))
			So(err, ShouldBeNil)
			So(next.MustGet().Status, ShouldEqual, Stopped)
		})

		Convey("Started installs the queried state", func() {
			queried := playing(7 * time.Second).MustGet()
			next, err := Reduce(prior, at(0, Started{Owner: ":1.42", State: queried}))
			So(err, ShouldBeNil)
			So(next.MustGet(), ShouldResemble, queried)
		})
	})

	Convey("Consecutive seeks always land exactly on the sought position", t, func() {
		state := playing(0)
		for i, pos := range []time.Duration{5 * time.Second, time.Second, 3 * time.Minute, 0} {
			instant := time.Duration(i) * time.Second
			var err error
			state, err = Reduce(state, at(instant, Seeked{Position: pos}))
			So(err, ShouldBeNil)
			So(state.MustGet().CurrentPosition(epoch.Add(instant)), ShouldEqual, pos)
		}
	})
}

func TestCurrentPosition(t *testing.T) {
	Convey("CurrentPosition", t, func() {
		Convey("is non-decreasing while playing", func() {
			state := playing(time.Second).MustGet()
			last := state.CurrentPosition(epoch)
			for i := 1; i <= 10; i++ {
				now := state.CurrentPosition(epoch.Add(time.Duration(i) * 16 * time.Millisecond))
				So(now, ShouldBeGreaterThanOrEqualTo, last)
				last = now
			}
		})

		Convey("never goes below the snapshot when the clock is behind it", func() {
			state := playing(time.Second).MustGet()
			So(state.CurrentPosition(epoch.Add(-time.Minute)), ShouldEqual, time.Second)
		})
	})
}

func TestParsePlaybackStatus(t *testing.T) {
	Convey("ParsePlaybackStatus", t, func() {
		for _, s := range []string{"Playing", "Paused", "Stopped"} {
			status, err := ParsePlaybackStatus(s)
			So(err, ShouldBeNil)
			So(string(status), ShouldEqual, s)
		}

		_, err := ParsePlaybackStatus("Buffering")
		So(errors.Is(err, ErrUnknownStatus), ShouldBeTrue)
	})
}
