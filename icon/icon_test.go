package icon

import (
	"testing"

	"github.com/lrcshow-cli/lrcshow/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestGet(t *testing.T) {
	Convey("Every registered icon has a glyph in every variant", t, func() {
		for _, variant := range AvailableVariants() {
			viper.Set(key.IconsVariant, variant)

			for i := range icons {
				So(Get(i), ShouldNotBeEmpty)
			}
		}
	})

	Convey("Plain icons are ASCII", t, func() {
		viper.Set(key.IconsVariant, "plain")
		So(Get(Lyrics), ShouldEqual, "#")
		So(Get(Player), ShouldEqual, ">")
	})

	Convey("An unknown variant renders nothing", t, func() {
		viper.Set(key.IconsVariant, "")
		So(Get(Lua), ShouldBeEmpty)
	})
}
