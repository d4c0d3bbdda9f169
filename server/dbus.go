package server

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/lrcshow-cli/lrcshow/constant"
	"github.com/lrcshow-cli/lrcshow/log"
)

var ErrNameTaken = errors.New("another instance owns " + constant.DBusName)

// DBus serves the cache on the session bus and emits the daemon signals.
type DBus struct {
	conn  *dbus.Conn
	cache *Cache
}

var lyricsNode = &introspect.Node{
	Name: constant.DBusLyricsPath,
	Interfaces: []introspect.Interface{
		introspect.IntrospectData,
		{
			Name: constant.DBusLyricsIface,
			Methods: []introspect.Method{
				{
					Name: constant.GetCurrentLyrics,
					Args: []introspect.Arg{{Name: "reply", Type: "as", Direction: "out"}},
				},
				{
					Name: constant.GetCurrentLyricsPosition,
					Args: []introspect.Arg{{Name: "reply", Type: "(iiii)", Direction: "out"}},
				},
			},
		},
	},
}

var daemonNode = &introspect.Node{
	Name: constant.DBusDaemonPath,
	Interfaces: []introspect.Interface{
		introspect.IntrospectData,
		{
			Name: constant.DBusDaemonIface,
			Signals: []introspect.Signal{
				{
					Name: constant.ActiveLyricsSegmentChanged,
					Args: []introspect.Arg{
						{Name: "line", Type: "i"},
						{Name: "from", Type: "i"},
						{Name: "to", Type: "i"},
						{Name: "time_ms", Type: "i"},
					},
				},
				{Name: constant.ActiveLyricsChanged},
			},
		},
	},
}

// ExportDBus claims the daemon's bus name on its own session bus connection
// and exports the lyrics object.
func ExportDBus(cache *Cache) (*DBus, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect to session bus: %w", err)
	}

	d := &DBus{conn: conn, cache: cache}
	if err := d.export(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Infof("server: exported %s", constant.DBusName)
	return d, nil
}

func (d *DBus) export() error {
	reply, err := d.conn.RequestName(constant.DBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("request name %s: %w", constant.DBusName, err)
	}

	if reply != dbus.RequestNameReplyPrimaryOwner {
		return ErrNameTaken
	}

	methods := map[string]any{
		constant.GetCurrentLyrics:         d.getCurrentLyrics,
		constant.GetCurrentLyricsPosition: d.getCurrentLyricsPosition,
	}

	if err := d.conn.ExportMethodTable(methods, constant.DBusLyricsPath, constant.DBusLyricsIface); err != nil {
		return err
	}

	for _, node := range []*introspect.Node{lyricsNode, daemonNode} {
		err := d.conn.Export(introspect.NewIntrospectable(node), dbus.ObjectPath(node.Name), "org.freedesktop.DBus.Introspectable")
		if err != nil {
			return err
		}
	}

	return nil
}

func (d *DBus) getCurrentLyrics() ([]string, *dbus.Error) {
	log.Debug("server: GetCurrentLyrics called")
	return d.cache.Lines(), nil
}

func (d *DBus) getCurrentLyricsPosition() (Segment, *dbus.Error) {
	log.Debug("server: GetCurrentLyricsPosition called")
	return d.cache.Segment(), nil
}

func (d *DBus) PublishLyrics([]string) {
	if err := d.conn.Emit(constant.DBusDaemonPath, constant.DBusDaemonIface+"."+constant.ActiveLyricsChanged); err != nil {
		log.Warnf("server: emit %s: %s", constant.ActiveLyricsChanged, err)
	}
}

func (d *DBus) PublishSegment(s Segment) {
	err := d.conn.Emit(
		constant.DBusDaemonPath,
		constant.DBusDaemonIface+"."+constant.ActiveLyricsSegmentChanged,
		s.Line, s.From, s.To, s.TimeMs,
	)
	if err != nil {
		log.Warnf("server: emit %s: %s", constant.ActiveLyricsSegmentChanged, err)
	}
}

// Close releases the bus name along with the connection.
func (d *DBus) Close() error {
	return d.conn.Close()
}
