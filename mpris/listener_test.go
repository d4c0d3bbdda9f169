package mpris

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/lrcshow-cli/lrcshow/player"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeBus struct {
	mu sync.Mutex

	players  []string
	owner    string
	state    player.State
	position time.Duration

	stateErr     error
	positionErr  error
	subscribeErr error

	stateQueries int
	subscribed   []string
	unsubscribed []string
}

func (f *fakeBus) ListPlayers(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.players...), nil
}

func (f *fakeBus) OwnerName(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.owner, nil
}

func (f *fakeBus) QueryState(context.Context, string) (player.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stateQueries++
	return f.state, f.stateErr
}

func (f *fakeBus) QueryPosition(context.Context, string) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position, f.positionErr
}

func (f *fakeBus) WatchOwner(string) error { return nil }

func (f *fakeBus) Subscribe(owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return f.subscribeErr
	}
	f.subscribed = append(f.subscribed, owner)
	return nil
}

func (f *fakeBus) Unsubscribe(owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubscribed = append(f.unsubscribed, owner)
	return nil
}

func (f *fakeBus) Signals(chan<- *dbus.Signal)     {}
func (f *fakeBus) StopSignals(chan<- *dbus.Signal) {}

func (f *fakeBus) set(fn func(f *fakeBus)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func nextEvent(l *Listener) player.Event {
	select {
	case ev, ok := <-l.Events():
		if !ok {
			return nil
		}
		return ev.Event
	case <-time.After(2 * time.Second):
		return nil
	}
}

func noEvent(l *Listener) bool {
	select {
	case <-l.Events():
		return false
	case <-time.After(50 * time.Millisecond):
		return true
	}
}

func ownerChanged(name, oldOwner, newOwner string) *dbus.Signal {
	return &dbus.Signal{
		Sender: "org.freedesktop.DBus",
		Name:   signalNameOwnerChanged,
		Body:   []any{BusName(name), oldOwner, newOwner},
	}
}

func propertiesChanged(sender string, changed map[string]dbus.Variant) *dbus.Signal {
	return &dbus.Signal{
		Sender: sender,
		Path:   ObjectPath,
		Name:   signalPropertiesChanged,
		Body:   []any{PlayerIface, changed, []string{}},
	}
}

func TestListener(t *testing.T) {
	Convey("Given a running player", t, func() {
		playing := player.State{
			Status:   player.Playing,
			Snapshot: player.PositionSnapshot{Position: time.Second, CapturedAt: time.Now()},
			Metadata: mo.Some(player.Metadata{Path: "/music/a.mp3"}),
		}
		fake := &fakeBus{players: []string{"mpv"}, owner: ":1.42", state: playing}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		l := newListener(fake, "mpv", 3)
		So(l.Start(ctx), ShouldBeNil)
		defer l.Stop()

		Convey("It reports the player as started", func() {
			So(nextEvent(l), ShouldResemble, player.Started{Owner: ":1.42", State: playing})
			So(fake.subscribed, ShouldResemble, []string{":1.42"})

			Convey("It attaches the queried position to a pause", func() {
				fake.set(func(f *fakeBus) { f.position = 3 * time.Second })
				l.signals <- propertiesChanged(":1.42", map[string]dbus.Variant{
					PropPlaybackStatus: dbus.MakeVariant("Paused"),
				})

				So(nextEvent(l), ShouldResemble, player.StatusChanged{
					Status:   player.Paused,
					Position: mo.Some(3 * time.Second),
				})
			})

			Convey("It drops a pause whose position cannot be queried", func() {
				fake.set(func(f *fakeBus) { f.positionErr = errors.New("timeout") })
				l.signals <- propertiesChanged(":1.42", map[string]dbus.Variant{
					PropPlaybackStatus: dbus.MakeVariant("Paused"),
				})

				So(noEvent(l), ShouldBeTrue)
			})

			Convey("It ignores signals of other senders", func() {
				l.signals <- propertiesChanged(":1.7", map[string]dbus.Variant{
					PropPlaybackStatus: dbus.MakeVariant("Stopped"),
				})

				So(noEvent(l), ShouldBeTrue)
			})

			Convey("It forwards seeks", func() {
				l.signals <- &dbus.Signal{Sender: ":1.42", Name: signalSeeked, Body: []any{int64(5000000)}}
				So(nextEvent(l), ShouldResemble, player.Seeked{Position: 5 * time.Second})
			})

			Convey("It reports the shutdown and a later restart", func() {
				l.signals <- ownerChanged("mpv", ":1.42", "")
				So(nextEvent(l), ShouldResemble, player.ShutDown{})
				So(fake.unsubscribed, ShouldResemble, []string{":1.42"})

				fake.set(func(f *fakeBus) { f.owner = ":1.50" })
				l.signals <- ownerChanged("mpv", "", ":1.50")

				started, ok := nextEvent(l).(player.Started)
				So(ok, ShouldBeTrue)
				So(started.Owner, ShouldEqual, ":1.50")
			})

			Convey("It ignores other names", func() {
				l.signals <- ownerChanged("vlc", ":1.9", "")
				So(noEvent(l), ShouldBeTrue)
			})
		})
	})

	Convey("Given an absent player", t, func() {
		fake := &fakeBus{players: []string{"vlc"}}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		l := newListener(fake, "mpv", 3)
		So(l.Start(ctx), ShouldBeNil)
		defer l.Stop()

		Convey("Nothing is reported until it starts", func() {
			So(noEvent(l), ShouldBeTrue)
			So(fake.stateQueries, ShouldEqual, 0)

			fake.set(func(f *fakeBus) {
				f.players = []string{"mpv", "vlc"}
				f.owner = ":1.3"
			})
			l.signals <- ownerChanged("mpv", "", ":1.3")

			_, ok := nextEvent(l).(player.Started)
			So(ok, ShouldBeTrue)
		})
	})

	Convey("Given a player that never answers", t, func() {
		fake := &fakeBus{players: []string{"mpv"}, owner: ":1.4", stateErr: errors.New("no reply")}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		l := newListener(fake, "mpv", 1)
		So(l.Start(ctx), ShouldBeNil)
		defer l.Stop()

		Convey("The query is retried and then given up", func() {
			So(noEvent(l), ShouldBeTrue)
			time.Sleep(200 * time.Millisecond)

			fake.mu.Lock()
			defer fake.mu.Unlock()
			So(fake.stateQueries, ShouldEqual, 2)
			So(l.Err(), ShouldBeNil)
		})
	})

	Convey("Given a subscription failure", t, func() {
		fake := &fakeBus{
			players:      []string{"mpv"},
			owner:        ":1.4",
			state:        player.State{Status: player.Stopped},
			subscribeErr: errors.New("access denied"),
		}

		l := newListener(fake, "mpv", 0)
		So(l.Start(context.Background()), ShouldBeNil)

		Convey("The listener stops with an error", func() {
			So(nextEvent(l), ShouldBeNil)
			So(l.Err(), ShouldNotBeNil)
		})
	})
}
