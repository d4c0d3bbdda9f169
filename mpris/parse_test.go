package mpris

import (
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/lrcshow-cli/lrcshow/player"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

const invisibleMan = "file:///home/user/music/Queen/--%20Compilations%20--/%281991%29%20Greatest%20Hits%20II/13%20Queen%20-%20The%20Invisible%20Man.mp3"

func queenMetadata() map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"mpris:artUrl":  dbus.MakeVariant("file:///tmp/audacious-temp-75WRR2"),
		"mpris:trackid": dbus.MakeVariant(dbus.ObjectPath("/org/mpris/MediaPlayer2/CurrentTrack")),
		MetaArtist:      dbus.MakeVariant([]string{"Queen"}),
		MetaAlbum:       dbus.MakeVariant("Greatest Hits II"),
		MetaURL:         dbus.MakeVariant(invisibleMan),
		MetaLength:      dbus.MakeVariant(int64(238655000)),
		MetaTitle:       dbus.MakeVariant("The Invisible Man"),
	}
}

const queenPath = "/home/user/music/Queen/-- Compilations --/(1991) Greatest Hits II/13 Queen - The Invisible Man.mp3"

func TestParsePosition(t *testing.T) {
	Convey("ParsePosition", t, func() {
		Convey("reads microseconds", func() {
			position, err := ParsePosition(dbus.MakeVariant(int64(41337000)))
			So(err, ShouldBeNil)
			So(position, ShouldEqual, 41337*time.Millisecond)
		})

		Convey("rejects negative positions", func() {
			_, err := ParsePosition(int64(-1))
			So(errors.Is(err, ErrNegativePosition), ShouldBeTrue)
		})

		Convey("rejects other types", func() {
			_, err := ParsePosition(dbus.MakeVariant("41"))
			So(errors.Is(err, ErrUnexpectedType), ShouldBeTrue)
		})
	})
}

func TestParseMetadata(t *testing.T) {
	Convey("ParseMetadata", t, func() {
		Convey("decodes the file URL and informational fields", func() {
			meta, err := ParseMetadata(dbus.MakeVariant(queenMetadata()))
			So(err, ShouldBeNil)
			So(meta.MustGet(), ShouldResemble, player.Metadata{
				Path:    queenPath,
				Title:   "The Invisible Man",
				Album:   "Greatest Hits II",
				Artists: []string{"Queen"},
				Length:  238655 * time.Millisecond,
			})
		})

		Convey("takes a bare path as is", func() {
			fields := map[string]dbus.Variant{MetaURL: dbus.MakeVariant("/music/song.ogg")}
			meta, err := ParseMetadata(fields)
			So(err, ShouldBeNil)
			So(meta.MustGet().Path, ShouldEqual, "/music/song.ogg")
		})

		Convey("gives remote tracks no path", func() {
			fields := map[string]dbus.Variant{MetaURL: dbus.MakeVariant("https://radio.example.com/stream")}
			meta, err := ParseMetadata(fields)
			So(err, ShouldBeNil)
			So(meta.MustGet().Path, ShouldBeEmpty)
		})

		Convey("yields nothing at the end of a playlist", func() {
			meta, err := ParseMetadata(map[string]dbus.Variant{MetaTitle: dbus.MakeVariant("")})
			So(err, ShouldBeNil)
			So(meta.IsAbsent(), ShouldBeTrue)
		})

		Convey("rejects a non-string URL", func() {
			_, err := ParseMetadata(map[string]dbus.Variant{MetaURL: dbus.MakeVariant(int32(4))})
			So(errors.Is(err, ErrUnexpectedType), ShouldBeTrue)
		})
	})
}

func TestParseState(t *testing.T) {
	now := time.Now()

	Convey("ParseState", t, func() {
		props := map[string]dbus.Variant{
			"CanPlay":          dbus.MakeVariant(true),
			"CanSeek":          dbus.MakeVariant(true),
			PropPlaybackStatus: dbus.MakeVariant("Paused"),
			PropPosition:       dbus.MakeVariant(int64(41337000)),
			PropVolume:         dbus.MakeVariant(0.5),
			PropMetadata:       dbus.MakeVariant(queenMetadata()),
		}

		Convey("reads status, position and metadata", func() {
			state, err := ParseState(props, now)
			So(err, ShouldBeNil)
			So(state.Status, ShouldEqual, player.Paused)
			So(state.Snapshot, ShouldResemble, player.PositionSnapshot{Position: 41337 * time.Millisecond, CapturedAt: now})
			So(state.Metadata.MustGet().Path, ShouldEqual, queenPath)
		})

		Convey("ignores metadata when stopped", func() {
			props[PropPlaybackStatus] = dbus.MakeVariant("Stopped")
			delete(props, PropMetadata)

			state, err := ParseState(props, now)
			So(err, ShouldBeNil)
			So(state.Metadata.IsAbsent(), ShouldBeTrue)
		})

		Convey("requires the position", func() {
			delete(props, PropPosition)
			_, err := ParseState(props, now)
			So(errors.Is(err, ErrMissingProperty), ShouldBeTrue)
		})

		Convey("rejects unknown statuses", func() {
			props[PropPlaybackStatus] = dbus.MakeVariant("Buffering")
			_, err := ParseState(props, now)
			So(errors.Is(err, player.ErrUnknownStatus), ShouldBeTrue)
		})
	})
}

func TestChangedEvents(t *testing.T) {
	Convey("ChangedEvents", t, func() {
		Convey("converts a metadata change", func() {
			events, err := ChangedEvents(map[string]dbus.Variant{PropMetadata: dbus.MakeVariant(queenMetadata())})
			So(err, ShouldBeNil)
			So(events, ShouldHaveLength, 1)

			changed := events[0].(player.MetadataChanged)
			So(changed.Metadata.MustGet().Path, ShouldEqual, queenPath)
		})

		Convey("emits events in a stable order and skips the volume", func() {
			events, err := ChangedEvents(map[string]dbus.Variant{
				PropVolume:         dbus.MakeVariant(1.0),
				PropPosition:       dbus.MakeVariant(int64(2000000)),
				PropPlaybackStatus: dbus.MakeVariant("Playing"),
				"Shuffle":          dbus.MakeVariant(true),
			})
			So(err, ShouldBeNil)
			So(events, ShouldResemble, []player.Event{
				player.StatusChanged{Status: player.Playing},
				player.Seeked{Position: 2 * time.Second},
				player.UnknownProperty{Key: "Shuffle", Value: "true"},
			})
		})

		Convey("leaves the paused position to the caller", func() {
			events, err := ChangedEvents(map[string]dbus.Variant{PropPlaybackStatus: dbus.MakeVariant("Paused")})
			So(err, ShouldBeNil)
			So(events[0], ShouldResemble, player.StatusChanged{Status: player.Paused, Position: mo.None[time.Duration]()})
		})

		Convey("fails on a negative position", func() {
			_, err := ChangedEvents(map[string]dbus.Variant{PropPosition: dbus.MakeVariant(int64(-5))})
			So(errors.Is(err, ErrNegativePosition), ShouldBeTrue)
		})
	})
}

func TestNames(t *testing.T) {
	Convey("Bus names", t, func() {
		So(BusName("mpv"), ShouldEqual, "org.mpris.MediaPlayer2.mpv")

		name, ok := PlayerName("org.mpris.MediaPlayer2.vlc.instance42")
		So(ok, ShouldBeTrue)
		So(name, ShouldEqual, "vlc.instance42")

		_, ok = PlayerName("org.freedesktop.Notifications")
		So(ok, ShouldBeFalse)
	})
}
