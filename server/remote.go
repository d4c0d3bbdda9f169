package server

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/lrcshow-cli/lrcshow/constant"
)

// Notification is a signal emitted by a running daemon.
// Segment is set only when LyricsChanged is false.
type Notification struct {
	LyricsChanged bool
	Segment       Segment
}

// Remote queries a running daemon over the session bus.
type Remote struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

func Dial() (*Remote, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect to session bus: %w", err)
	}

	return &Remote{
		conn: conn,
		obj:  conn.Object(constant.DBusName, constant.DBusLyricsPath),
	}, nil
}

func (r *Remote) Close() error {
	return r.conn.Close()
}

// Running reports whether a daemon owns the bus name.
func (r *Remote) Running(ctx context.Context) (bool, error) {
	var hasOwner bool
	err := r.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.NameHasOwner", 0, constant.DBusName).Store(&hasOwner)
	return hasOwner, err
}

func (r *Remote) Lyrics(ctx context.Context) ([]string, error) {
	var lines []string
	err := r.obj.CallWithContext(ctx, constant.DBusLyricsIface+"."+constant.GetCurrentLyrics, 0).Store(&lines)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", constant.GetCurrentLyrics, err)
	}
	return lines, nil
}

func (r *Remote) Segment(ctx context.Context) (Segment, error) {
	var segment Segment
	err := r.obj.CallWithContext(ctx, constant.DBusLyricsIface+"."+constant.GetCurrentLyricsPosition, 0).Store(&segment)
	if err != nil {
		return NoSegment, fmt.Errorf("%s: %w", constant.GetCurrentLyricsPosition, err)
	}
	return segment, nil
}

// Subscribe delivers the daemon signals until ctx is done.
func (r *Remote) Subscribe(ctx context.Context) (<-chan Notification, error) {
	err := r.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(constant.DBusDaemonPath),
		dbus.WithMatchInterface(constant.DBusDaemonIface),
	)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", constant.DBusDaemonIface, err)
	}

	signals := make(chan *dbus.Signal, 16)
	r.conn.Signal(signals)

	notifications := make(chan Notification, 16)

	go func() {
		defer close(notifications)
		defer r.conn.RemoveSignal(signals)

		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}

				n, ok := notificationOf(sig)
				if !ok {
					continue
				}

				select {
				case notifications <- n:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return notifications, nil
}

func notificationOf(sig *dbus.Signal) (Notification, bool) {
	switch sig.Name {
	case constant.DBusDaemonIface + "." + constant.ActiveLyricsChanged:
		return Notification{LyricsChanged: true, Segment: NoSegment}, true
	case constant.DBusDaemonIface + "." + constant.ActiveLyricsSegmentChanged:
		var s Segment
		if err := dbus.Store(sig.Body, &s.Line, &s.From, &s.To, &s.TimeMs); err != nil {
			return Notification{}, false
		}
		return Notification{Segment: s}, true
	default:
		return Notification{}, false
	}
}
