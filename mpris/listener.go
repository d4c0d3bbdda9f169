package mpris

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/godbus/dbus/v5"
	"github.com/lrcshow-cli/lrcshow/log"
	"github.com/lrcshow-cli/lrcshow/player"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// errNotRunning stops the started-state retries: the player is simply absent.
var errNotRunning = errors.New("player is not running")

// bus is the part of Client the listener depends on.
type bus interface {
	ListPlayers(ctx context.Context) ([]string, error)
	OwnerName(ctx context.Context, name string) (string, error)
	QueryState(ctx context.Context, owner string) (player.State, error)
	QueryPosition(ctx context.Context, owner string) (time.Duration, error)
	WatchOwner(name string) error
	Subscribe(owner string) error
	Unsubscribe(owner string) error
	Signals(ch chan<- *dbus.Signal)
	StopSignals(ch chan<- *dbus.Signal)
}

// Listener produces player events for one named player.
// Events are sent on the channel returned by Events, which is closed once the
// listener stops.
type Listener struct {
	bus     bus
	name    string
	retries uint64

	events  chan player.TimedEvent
	signals chan *dbus.Signal
	stopCh  chan struct{}
	now     func() time.Time

	mu        sync.Mutex
	owner     string
	listening bool
	err       error
}

// NewListener creates a listener for the player registered as org.mpris.MediaPlayer2.<name>.
// retries bounds the attempts at querying a player that just appeared.
func NewListener(client *Client, name string, retries int) *Listener {
	return newListener(client, name, retries)
}

func newListener(b bus, name string, retries int) *Listener {
	return &Listener{
		bus:     b,
		name:    name,
		retries: uint64(max(retries, 0)),
		events:  make(chan player.TimedEvent, 64),
		signals: make(chan *dbus.Signal, 64),
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}
}

// Events returns the channel player events are delivered on.
func (l *Listener) Events() <-chan player.TimedEvent {
	return l.events
}

// Err returns the error that made the listener stop, if any.
func (l *Listener) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Start subscribes to the player's bus name and starts the signal loop.
// If the player is already running, a Started event is produced right away.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.listening {
		return nil
	}

	if err := l.bus.WatchOwner(l.name); err != nil {
		return err
	}

	l.bus.Signals(l.signals)
	l.listening = true

	go l.signalLoop(ctx)

	log.Infof("mpris listener started for %s", BusName(l.name))
	return nil
}

// Stop terminates the listener.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.listening {
		return
	}

	close(l.stopCh)
	l.listening = false
}

func (l *Listener) signalLoop(ctx context.Context) {
	defer close(l.events)
	defer l.bus.StopSignals(l.signals)

	if err := l.onStarted(ctx, l.now()); err != nil {
		l.fail(err)
		return
	}

	for {
		select {
		case <-l.stopCh:
			return
		case <-ctx.Done():
			return
		case sig, ok := <-l.signals:
			if !ok {
				return
			}

			if err := l.dispatch(ctx, sig); err != nil {
				l.fail(err)
				return
			}
		}
	}
}

func (l *Listener) fail(err error) {
	log.Error(err)

	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

func (l *Listener) currentOwner() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.owner
}

func (l *Listener) setOwner(owner string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.owner = owner
}

// dispatch handles one signal. Only subscription failures are returned, since
// they leave the listener deaf; malformed payloads are logged and dropped.
func (l *Listener) dispatch(ctx context.Context, sig *dbus.Signal) error {
	instant := l.now()

	switch sig.Name {
	case signalNameOwnerChanged:
		return l.onOwnerChanged(ctx, sig, instant)

	case signalPropertiesChanged:
		if sig.Sender != l.currentOwner() || len(sig.Body) < 2 {
			return nil
		}

		if iface, _ := sig.Body[0].(string); iface != PlayerIface {
			return nil
		}

		changed, ok := sig.Body[1].(map[string]dbus.Variant)
		if !ok {
			log.Warnf("mpris: unexpected PropertiesChanged payload %v", sig.Body[1])
			return nil
		}

		events, err := ChangedEvents(changed)
		if err != nil {
			log.Warnf("mpris: dropping property change: %s", err)
			return nil
		}

		for _, e := range events {
			e, ok := l.resolve(ctx, e)
			if ok {
				l.emit(ctx, instant, e)
			}
		}

	case signalSeeked:
		if sig.Sender != l.currentOwner() || len(sig.Body) < 1 {
			return nil
		}

		position, err := ParsePosition(sig.Body[0])
		if err != nil {
			log.Warnf("mpris: dropping seek: %s", err)
			return nil
		}

		l.emit(ctx, instant, player.Seeked{Position: position})
	}

	return nil
}

// resolve attaches the position a Paused status needs.
func (l *Listener) resolve(ctx context.Context, e player.Event) (player.Event, bool) {
	changed, ok := e.(player.StatusChanged)
	if !ok || changed.Status != player.Paused {
		return e, true
	}

	position, err := l.bus.QueryPosition(ctx, l.currentOwner())
	if err != nil {
		log.Warnf("mpris: position unknown after pause: %s", err)
		return nil, false
	}

	changed.Position = mo.Some(position)
	return changed, true
}

func (l *Listener) onOwnerChanged(ctx context.Context, sig *dbus.Signal, instant time.Time) error {
	var name, oldOwner, newOwner string
	if err := dbus.Store(sig.Body, &name, &oldOwner, &newOwner); err != nil {
		log.Warnf("mpris: malformed NameOwnerChanged: %s", err)
		return nil
	}

	if name != BusName(l.name) {
		return nil
	}

	if oldOwner != "" {
		l.forget(oldOwner)
		l.emit(ctx, instant, player.ShutDown{})
	}

	if newOwner != "" {
		return l.onStarted(ctx, instant)
	}

	return nil
}

func (l *Listener) forget(owner string) {
	if owner != l.currentOwner() {
		return
	}

	if err := l.bus.Unsubscribe(owner); err != nil {
		log.Warn(err)
	}
	l.setOwner("")
	log.Infof("mpris: %s left the bus", BusName(l.name))
}

// onStarted queries the state of a player that appeared on the bus. The query
// may race the player's own startup, so it is retried with exponential backoff.
// Failing to query is not fatal, failing to subscribe is.
func (l *Listener) onStarted(ctx context.Context, instant time.Time) error {
	var (
		owner string
		state player.State
	)

	query := func() error {
		players, err := l.bus.ListPlayers(ctx)
		if err != nil {
			return err
		}

		if !lo.Contains(players, l.name) {
			if len(players) > 0 {
				log.Infof("mpris: %s is not running, found: %s", l.name, strings.Join(players, ", "))
			}
			return backoff.Permanent(errNotRunning)
		}

		owner, err = l.bus.OwnerName(ctx, l.name)
		if err != nil {
			return err
		}

		state, err = l.bus.QueryState(ctx, owner)
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxElapsedTime = 5 * time.Second

	err := backoff.Retry(query, backoff.WithContext(backoff.WithMaxRetries(policy, l.retries), ctx))
	if errors.Is(err, errNotRunning) {
		return nil
	}
	if err != nil {
		log.Warnf("mpris: could not query %s after it started: %s", l.name, err)
		return nil
	}

	if previous := l.currentOwner(); previous != "" && previous != owner {
		l.forget(previous)
	}

	if owner != l.currentOwner() {
		if err := l.bus.Subscribe(owner); err != nil {
			return fmt.Errorf("mpris: %w", err)
		}
		l.setOwner(owner)
	}

	log.Infof("mpris: following %s (%s)", BusName(l.name), owner)
	l.emit(ctx, instant, player.Started{Owner: owner, State: state})
	return nil
}

func (l *Listener) emit(ctx context.Context, instant time.Time, e player.Event) {
	log.Debugf("mpris: %s", e)

	select {
	case l.events <- player.TimedEvent{Instant: instant, Event: e}:
	case <-l.stopCh:
	case <-ctx.Done():
	}
}
