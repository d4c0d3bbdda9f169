// Package filesystem routes file access through afero so tests can run on
// an in-memory tree. Lyrics files, resolver scripts, logs and caches all go
// through API.
package filesystem

import "github.com/spf13/afero"

var backend = newBackend(afero.NewOsFs())

func newBackend(fs afero.Fs) afero.Afero {
	return afero.Afero{Fs: fs}
}

// API returns the filesystem in use.
func API() afero.Afero {
	return backend
}

// SetOsFs switches to the real filesystem.
func SetOsFs() {
	backend = newBackend(afero.NewOsFs())
}

// SetMemMapFs switches to an empty in-memory filesystem.
func SetMemMapFs() {
	backend = newBackend(afero.NewMemMapFs())
}
