// Package track provides the Track domain entity.
package track

import (
	"time"

	"github.com/cockroachdb/errors"
)

// ErrNotFound is returned by catalog implementations when a track ID
// cannot be resolved.
var ErrNotFound = errors.New("track not found")

// Track represents a playable track in the catalog.
// Created once at catalog load and never mutated afterwards.
type Track struct {
	ID         string        // Catalog track ID
	Title      string        // Track title
	Artist     string        // Artist name
	Album      string        // Album name
	Genre      string        // Genre label
	Duration   time.Duration // Track duration
	SourceRef  string        // Opaque source reference (URI) handed to the renderer
	ArtworkRef string        // Artwork reference (URI)
}

// Media is the loadable descriptor a renderer consumes.
type Media struct {
	SourceRef string
	Duration  time.Duration
}

// Media returns the renderer descriptor for the track.
func (t Track) Media() Media {
	return Media{SourceRef: t.SourceRef, Duration: t.Duration}
}

// DurationMs returns the track duration in milliseconds.
func (t Track) DurationMs() int64 {
	return t.Duration.Milliseconds()
}
