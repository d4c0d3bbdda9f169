// Package daemon runs the loop keeping the active lyrics segment in sync with
// the player.
package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/lrcshow-cli/lrcshow/log"
	"github.com/lrcshow-cli/lrcshow/lrc"
	"github.com/lrcshow-cli/lrcshow/lyrics"
	"github.com/lrcshow-cli/lrcshow/player"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// DefaultTick is short enough for a late line to go unnoticed when singing along.
const DefaultTick = 16 * time.Millisecond

// PathChanger is told which lyrics file to watch. lyrics.Manager implements it.
type PathChanger interface {
	ChangePath(path mo.Option[string])
}

type Options struct {
	// Tick is the polling period; it also sizes the cursor's tolerance.
	Tick time.Duration

	Players <-chan player.TimedEvent
	Lyrics  <-chan lyrics.Changed

	Paths    PathChanger
	Resolver lyrics.Resolver
	Sink     Sink

	// FixedLyrics is used for every track instead of resolving one per track.
	FixedLyrics mo.Option[string]

	Now func() time.Time
}

// Loop is the only owner of the player state, the lyrics and the cursor.
type Loop struct {
	opts Options

	state  mo.Option[player.State]
	lyrics mo.Option[*lrc.Lyrics]
	cursor *lrc.Cursor

	requested mo.Option[string]
	notified  mo.Option[lrc.TimingMark]
}

func New(opts Options) *Loop {
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.Sink == nil {
		opts.Sink = MultiSink{}
	}

	if opts.Resolver == nil {
		opts.Resolver = lyrics.Sibling{}
	}

	return &Loop{opts: opts}
}

type batch struct {
	players []player.TimedEvent
	lyrics  []lyrics.Changed
	closed  bool
}

func (b *batch) empty() bool {
	return len(b.players) == 0 && len(b.lyrics) == 0
}

// Run processes events until ctx is done or one of the input channels is closed,
// in which case it returns nil.
func (l *Loop) Run(ctx context.Context) error {
	if path, ok := l.opts.FixedLyrics.Get(); ok {
		l.request(mo.Some(path))
	}

	timer := time.NewTimer(l.opts.Tick)
	defer timer.Stop()

	for {
		b, err := l.collect(ctx, timer)
		if err != nil {
			return err
		}

		if b.closed {
			log.Info("daemon: event source closed")
			return nil
		}

		if err := l.step(b); err != nil {
			return err
		}
	}
}

// collect waits up to one tick for an event, then takes whatever else is pending.
func (l *Loop) collect(ctx context.Context, timer *time.Timer) (batch, error) {
	var b batch

	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(l.opts.Tick)

	select {
	case <-ctx.Done():
		return b, ctx.Err()
	case <-timer.C:
		return b, nil
	case ev, ok := <-l.opts.Players:
		if !ok {
			b.closed = true
			return b, nil
		}
		b.players = append(b.players, ev)
	case changed, ok := <-l.opts.Lyrics:
		if !ok {
			b.closed = true
			return b, nil
		}
		b.lyrics = append(b.lyrics, changed)
	}

	for {
		select {
		case ev, ok := <-l.opts.Players:
			if !ok {
				b.closed = true
				return b, nil
			}
			b.players = append(b.players, ev)
		case changed, ok := <-l.opts.Lyrics:
			if !ok {
				b.closed = true
				return b, nil
			}
			b.lyrics = append(b.lyrics, changed)
		default:
			return b, nil
		}
	}
}

func (l *Loop) step(b batch) error {
	for _, ev := range b.players {
		if err := l.applyPlayer(ev); err != nil {
			return err
		}
	}

	for _, changed := range b.lyrics {
		l.applyLyrics(changed)
	}

	now := l.opts.Now()

	if !b.empty() {
		l.resync(now)
		return nil
	}

	if state, ok := l.state.Get(); ok && state.Status == player.Playing && l.cursor != nil {
		if mark, ok := l.cursor.Advance(state.CurrentPosition(now)).Get(); ok {
			l.notify(mo.Some(mark))
		}
	}

	return nil
}

func (l *Loop) applyPlayer(ev player.TimedEvent) error {
	log.Debugf("daemon: %s", ev.Event)

	state, err := player.Reduce(l.state, ev)
	if err != nil {
		return fmt.Errorf("daemon: %s: %w", ev.Event, err)
	}
	l.state = state

	switch e := ev.Event.(type) {
	case player.Started:
		l.track(e.State.Metadata)
	case player.MetadataChanged:
		l.track(e.Metadata)
	case player.ShutDown:
		if l.opts.FixedLyrics.IsAbsent() {
			l.request(mo.None[string]())
		}
	case player.UnknownProperty:
		log.Warnf("daemon: unhandled property %s = %s", e.Key, e.Value)
	}

	return nil
}

// track requests the lyrics of a new track.
func (l *Loop) track(meta mo.Option[player.Metadata]) {
	if l.opts.FixedLyrics.IsPresent() {
		return
	}

	path := mo.None[string]()
	if m, ok := meta.Get(); ok {
		resolved, err := l.opts.Resolver.Resolve(m)
		if err != nil {
			log.Warnf("daemon: resolve lyrics of %s: %s", m.Path, err)
		}
		path = lo.Ternary(resolved == "", mo.None[string](), mo.Some(resolved))
	}

	if path != l.requested {
		l.request(path)
	}
}

func (l *Loop) request(path mo.Option[string]) {
	l.requested = path
	if l.opts.Paths != nil {
		l.opts.Paths.ChangePath(path)
	}
}

func (l *Loop) applyLyrics(changed lyrics.Changed) {
	if changed.Path != l.requested {
		log.Debugf("daemon: stale lyrics for %s", changed.Path.OrElse("<none>"))
	}

	l.lyrics = changed.Lyrics
	l.cursor = nil

	lines := mo.None[[]string]()
	if model, ok := changed.Lyrics.Get(); ok {
		lines = mo.Some(model.Lines)
	}

	// the sink forgets the segment along with the old lyrics
	l.notified = mo.None[lrc.TimingMark]()
	l.opts.Sink.OnLyricsChanged(lines)
}

func (l *Loop) resync(now time.Time) {
	state, hasState := l.state.Get()
	model, hasLyrics := l.lyrics.Get()

	l.cursor = nil
	if hasState && hasLyrics {
		l.cursor = lrc.Resync(model.Marks, state.CurrentPosition(now), l.opts.Tick)
	}

	current := mo.None[lrc.TimingMark]()
	if l.cursor != nil {
		current = l.cursor.Current()
	}

	l.notify(current)
}

func (l *Loop) notify(mark mo.Option[lrc.TimingMark]) {
	if mark == l.notified {
		return
	}

	l.notified = mark
	if m, ok := mark.Get(); ok {
		log.Tracef("daemon: active %s", m)
	} else {
		log.Trace("daemon: no active segment")
	}

	l.opts.Sink.OnActiveSegmentChanged(mark)
}
