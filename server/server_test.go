package server

import (
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/lrcshow-cli/lrcshow/constant"
	"github.com/lrcshow-cli/lrcshow/lrc"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

type publisherFunc struct {
	lyrics   [][]string
	segments []Segment
}

func (p *publisherFunc) PublishLyrics(lines []string) {
	p.lyrics = append(p.lyrics, lines)
}

func (p *publisherFunc) PublishSegment(s Segment) {
	p.segments = append(p.segments, s)
}

var chorus = lrc.TimingMark{Time: 1500 * time.Millisecond, Line: 2, From: 4, To: 9}

func TestSegment(t *testing.T) {
	Convey("SegmentOf", t, func() {
		So(SegmentOf(mo.Some(chorus)), ShouldResemble, Segment{Line: 2, From: 4, To: 9, TimeMs: 1500})
		So(SegmentOf(mo.None[lrc.TimingMark]()), ShouldResemble, Segment{Line: -1, From: -1, To: -1, TimeMs: -1})
		So(NoSegment.Present(), ShouldBeFalse)
		So(NoSegment.String(), ShouldEqual, "none")
	})
}

func TestCache(t *testing.T) {
	Convey("Given an empty cache", t, func() {
		cache := &Cache{}

		So(cache.Lines(), ShouldBeEmpty)
		So(cache.Lines(), ShouldNotBeNil)
		So(cache.HasLyrics(), ShouldBeFalse)
		So(cache.Segment(), ShouldResemble, NoSegment)

		Convey("Segments are stored once", func() {
			So(cache.SetSegment(mo.Some(chorus)), ShouldBeTrue)
			So(cache.SetSegment(mo.Some(chorus)), ShouldBeFalse)
			So(cache.Segment().Line, ShouldEqual, 2)
		})

		Convey("New lyrics forget the segment", func() {
			lines := []string{"a", "b", "c"}
			cache.SetSegment(mo.Some(chorus))
			cache.SetLyrics(mo.Some(lines))

			So(cache.HasLyrics(), ShouldBeTrue)
			So(cache.Lines(), ShouldResemble, []string{"a", "b", "c"})
			So(cache.Segment(), ShouldResemble, NoSegment)

			Convey("and own their lines", func() {
				lines[0] = "changed"
				cache.Lines()[1] = "changed"
				So(cache.Lines(), ShouldResemble, []string{"a", "b", "c"})
			})
		})
	})
}

func TestServer(t *testing.T) {
	Convey("Given a server with a publisher", t, func() {
		publisher := &publisherFunc{}
		srv := New(&Cache{}, publisher)

		Convey("Lyrics changes are always published", func() {
			srv.OnLyricsChanged(mo.Some([]string{"one"}))
			srv.OnLyricsChanged(mo.None[[]string]())

			So(publisher.lyrics, ShouldResemble, [][]string{{"one"}, {}})
			So(srv.Cache().HasLyrics(), ShouldBeFalse)
		})

		Convey("Repeated segments are published once", func() {
			srv.OnActiveSegmentChanged(mo.Some(chorus))
			srv.OnActiveSegmentChanged(mo.Some(chorus))
			srv.OnActiveSegmentChanged(mo.None[lrc.TimingMark]())

			So(publisher.segments, ShouldResemble, []Segment{SegmentOf(mo.Some(chorus)), NoSegment})
		})
	})
}

func TestNotificationOf(t *testing.T) {
	Convey("Daemon signals", t, func() {
		Convey("carry the segment", func() {
			n, ok := notificationOf(&dbus.Signal{
				Name: constant.DBusDaemonIface + "." + constant.ActiveLyricsSegmentChanged,
				Body: []any{int32(2), int32(4), int32(9), int32(1500)},
			})
			So(ok, ShouldBeTrue)
			So(n, ShouldResemble, Notification{Segment: Segment{Line: 2, From: 4, To: 9, TimeMs: 1500}})
		})

		Convey("announce new lyrics", func() {
			n, ok := notificationOf(&dbus.Signal{Name: constant.DBusDaemonIface + "." + constant.ActiveLyricsChanged})
			So(ok, ShouldBeTrue)
			So(n.LyricsChanged, ShouldBeTrue)
		})

		Convey("other signals are ignored", func() {
			_, ok := notificationOf(&dbus.Signal{Name: "org.freedesktop.DBus.NameAcquired"})
			So(ok, ShouldBeFalse)
		})
	})
}
