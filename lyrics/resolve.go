// Package lyrics finds the lyrics file of the playing track and keeps its
// timing model up to date as the file changes on disk.
package lyrics

import (
	"path/filepath"
	"strings"

	"github.com/lrcshow-cli/lrcshow/filesystem"
	"github.com/lrcshow-cli/lrcshow/log"
	"github.com/lrcshow-cli/lrcshow/player"
	"github.com/lrcshow-cli/lrcshow/util"
	"github.com/samber/lo"
)

// Extension of lyrics files.
const Extension = ".lrc"

// Resolver maps a track to the path of its lyrics file.
// An empty path means the resolver has no opinion.
type Resolver interface {
	Resolve(meta player.Metadata) (string, error)
}

// Sibling resolves to the file next to the audio file with its extension
// replaced by .lrc, whether that file exists or not.
type Sibling struct{}

func (Sibling) Resolve(meta player.Metadata) (string, error) {
	if meta.Path == "" {
		return "", nil
	}

	return strings.TrimSuffix(meta.Path, filepath.Ext(meta.Path)) + Extension, nil
}

// Directories looks up lyrics files in a set of directories, by the audio file
// name first and by "Artist - Title" then. Only existing files are returned.
type Directories []string

func (d Directories) Resolve(meta player.Metadata) (string, error) {
	names := candidates(meta)

	for _, dir := range d {
		for _, name := range names {
			path := filepath.Join(dir, name)

			exists, err := filesystem.API().Exists(path)
			if err != nil {
				return "", err
			}

			if exists {
				return path, nil
			}
		}
	}

	return "", nil
}

func candidates(meta player.Metadata) []string {
	var names []string

	if meta.Path != "" {
		names = append(names, util.FileStem(meta.Path)+Extension)
	}

	if meta.Title != "" && len(meta.Artists) > 0 {
		name := strings.ReplaceAll(meta.Artists[0]+" - "+meta.Title, string(filepath.Separator), "_")
		names = append(names, name+Extension)
	}

	return lo.Uniq(names)
}

// Chain asks each resolver in turn; the first non-empty path wins.
// Failing resolvers are skipped.
type Chain []Resolver

func (c Chain) Resolve(meta player.Metadata) (string, error) {
	for _, resolver := range c {
		path, err := resolver.Resolve(meta)
		if err != nil {
			log.Warnf("lyrics resolver %T: %s", resolver, err)
			continue
		}

		if path != "" {
			return path, nil
		}
	}

	return "", nil
}

// Close releases the resolvers in the chain that hold resources.
func (c Chain) Close() {
	for _, resolver := range c {
		if closer, ok := resolver.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}
