package log

import (
	"bytes"
	"testing"

	"github.com/lrcshow-cli/lrcshow/filesystem"
	"github.com/lrcshow-cli/lrcshow/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestLog(t *testing.T) {
	Convey("Given logging is disabled", t, func() {
		viper.Set(key.LogsWrite, false)
		So(Setup(), ShouldBeNil)

		Convey("entries are discarded", func() {
			So(WithField("player", "mpv").Logger, ShouldEqual, discard)
		})

		Convey("When output is attached", func() {
			var buf bytes.Buffer
			Attach(&buf, "debug")

			Debugf("tick %d", 16)
			WithField("player", "mpv").Info("started")

			Convey("entries are written to it", func() {
				So(buf.String(), ShouldContainSubstring, "tick 16")
				So(buf.String(), ShouldContainSubstring, "player=mpv")
			})

			Convey("levels above the attached one are filtered", func() {
				Tracef("noise")
				So(buf.String(), ShouldNotContainSubstring, "noise")
			})

			Reset(func() {
				enabled = false
			})
		})
	})
}
