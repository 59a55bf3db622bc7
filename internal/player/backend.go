// Package player delegates stream playback to an external media engine
// (mpv or ffplay). Decoding never happens in-process; this package only
// manages the child process and remembers what is playing so the caller
// can report click telemetry.
package player

import "airwave/internal/radio"

// Backend is the playback interface the rest of the application sees.
type Backend interface {
	// PlayStation starts the station's stream, stopping anything playing.
	PlayStation(station radio.Station) error
	Stop() error
	IsPlaying() bool
	// Current returns the UUID and URL of the last station played.
	Current() (uuid, url string)
}

// New returns a backend driving the first external player found.
func New() (Backend, error) {
	return newExternal()
}
