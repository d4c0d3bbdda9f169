package lyrics

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lrcshow-cli/lrcshow/filesystem"
	"github.com/lrcshow-cli/lrcshow/player"
	. "github.com/smartystreets/goconvey/convey"
)

var invisibleMan = player.Metadata{
	Path:    "/music/Queen/Greatest Hits II/13 Queen - The Invisible Man.mp3",
	Title:   "The Invisible Man",
	Album:   "Greatest Hits II",
	Artists: []string{"Queen"},
	Length:  238655 * time.Millisecond,
}

type resolverFunc func(player.Metadata) (string, error)

func (f resolverFunc) Resolve(meta player.Metadata) (string, error) {
	return f(meta)
}

func TestSibling(t *testing.T) {
	Convey("Sibling", t, func() {
		Convey("replaces the extension", func() {
			path, err := Sibling{}.Resolve(invisibleMan)
			So(err, ShouldBeNil)
			So(path, ShouldEqual, "/music/Queen/Greatest Hits II/13 Queen - The Invisible Man.lrc")
		})

		Convey("appends the extension to extensionless files", func() {
			path, _ := Sibling{}.Resolve(player.Metadata{Path: "/music/track"})
			So(path, ShouldEqual, "/music/track.lrc")
		})

		Convey("has nothing for remote tracks", func() {
			path, _ := Sibling{}.Resolve(player.Metadata{Title: "Radio"})
			So(path, ShouldBeEmpty)
		})
	})
}

func TestDirectories(t *testing.T) {
	Convey("Given lyrics directories", t, func() {
		filesystem.SetMemMapFs()
		fs := filesystem.API()

		So(fs.MkdirAll("/lyrics/a", 0o755), ShouldBeNil)
		So(fs.MkdirAll("/lyrics/b", 0o755), ShouldBeNil)

		resolver := Directories{"/lyrics/a", "/lyrics/b"}

		Convey("A file named after the audio file is found", func() {
			So(fs.WriteFile("/lyrics/b/13 Queen - The Invisible Man.lrc", []byte("[00:01.00]x"), 0o644), ShouldBeNil)

			path, err := resolver.Resolve(invisibleMan)
			So(err, ShouldBeNil)
			So(path, ShouldEqual, filepath.Join("/lyrics/b", "13 Queen - The Invisible Man.lrc"))
		})

		Convey("Artist and title are tried next", func() {
			So(fs.WriteFile("/lyrics/a/Queen - The Invisible Man.lrc", []byte("[00:01.00]x"), 0o644), ShouldBeNil)

			path, err := resolver.Resolve(invisibleMan)
			So(err, ShouldBeNil)
			So(path, ShouldEqual, filepath.Join("/lyrics/a", "Queen - The Invisible Man.lrc"))
		})

		Convey("Nothing is returned when no file exists", func() {
			path, err := resolver.Resolve(invisibleMan)
			So(err, ShouldBeNil)
			So(path, ShouldBeEmpty)
		})
	})
}

func TestChain(t *testing.T) {
	Convey("Chain", t, func() {
		failing := resolverFunc(func(player.Metadata) (string, error) {
			return "", errors.New("boom")
		})
		empty := resolverFunc(func(player.Metadata) (string, error) {
			return "", nil
		})

		Convey("skips failing and empty resolvers", func() {
			path, err := Chain{failing, empty, Sibling{}}.Resolve(invisibleMan)
			So(err, ShouldBeNil)
			So(path, ShouldEqual, "/music/Queen/Greatest Hits II/13 Queen - The Invisible Man.lrc")
		})

		Convey("may resolve to nothing", func() {
			path, err := Chain{empty}.Resolve(invisibleMan)
			So(err, ShouldBeNil)
			So(path, ShouldBeEmpty)
		})
	})
}

func TestScript(t *testing.T) {
	Convey("Given a resolver script", t, func() {
		filesystem.SetMemMapFs()
		fs := filesystem.API()

		Convey("It receives the track as a table", func() {
			So(fs.WriteFile("/resolvers/by-artist.lua", []byte(`
function ResolveLyrics(track)
	if #track.artists == 0 then
		return nil
	end
	return "/lyrics/" .. track.artists[1] .. "/" .. track.title .. ".lrc"
end
`), 0o644), ShouldBeNil)

			script, err := LoadScript("/resolvers/by-artist.lua")
			So(err, ShouldBeNil)
			defer script.Close()

			So(script.Name, ShouldEqual, "by-artist")

			path, err := script.Resolve(invisibleMan)
			So(err, ShouldBeNil)
			So(path, ShouldEqual, "/lyrics/Queen/The Invisible Man.lrc")

			path, err = script.Resolve(player.Metadata{Path: "/music/a.mp3"})
			So(err, ShouldBeNil)
			So(path, ShouldBeEmpty)
		})

		Convey("It must define the resolver function", func() {
			So(fs.WriteFile("/resolvers/empty.lua", []byte(`local x = 1`), 0o644), ShouldBeNil)

			_, err := LoadScript("/resolvers/empty.lua")
			So(errors.Is(err, ErrNoResolveFunction), ShouldBeTrue)
		})

		Convey("It must return a string or nil", func() {
			So(fs.WriteFile("/resolvers/number.lua", []byte(`function ResolveLyrics(track) return track.length end`), 0o644), ShouldBeNil)

			script, err := LoadScript("/resolvers/number.lua")
			So(err, ShouldBeNil)
			defer script.Close()

			_, err = script.Resolve(invisibleMan)
			So(err, ShouldNotBeNil)
		})

		Convey("A script running past its timeout is interrupted", func() {
			So(fs.WriteFile("/resolvers/spin.lua", []byte(`function ResolveLyrics(track) while true do end end`), 0o644), ShouldBeNil)

			script, err := LoadScript("/resolvers/spin.lua")
			So(err, ShouldBeNil)
			defer script.Close()

			script.Timeout = 50 * time.Millisecond

			start := time.Now()
			_, err = script.Resolve(invisibleMan)
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			So(time.Since(start), ShouldBeLessThan, 2*time.Second)
		})

		Convey("The chain closes the scripts it holds", func() {
			So(fs.WriteFile("/resolvers/by-title.lua", []byte(`function ResolveLyrics(track) return "/lyrics/" .. track.title .. ".lrc" end`), 0o644), ShouldBeNil)

			script, err := LoadScript("/resolvers/by-title.lua")
			So(err, ShouldBeNil)

			chain := Chain{script, Sibling{}}
			path, err := chain.Resolve(invisibleMan)
			So(err, ShouldBeNil)
			So(path, ShouldEqual, "/lyrics/The Invisible Man.lrc")

			chain.Close()
			So(script.state.IsClosed(), ShouldBeTrue)
		})

		Convey("Runtime errors are reported", func() {
			So(fs.WriteFile("/resolvers/broken.lua", []byte(`function ResolveLyrics(track) error("no lyrics service") end`), 0o644), ShouldBeNil)

			script, err := LoadScript("/resolvers/broken.lua")
			So(err, ShouldBeNil)
			defer script.Close()

			_, err = script.Resolve(invisibleMan)
			So(err, ShouldNotBeNil)
		})
	})
}
