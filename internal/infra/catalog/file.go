// Package catalog provides catalog source implementations.
package catalog

import (
	"context"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/osa030/playbox/internal/domain/track"
)

// fileTrack is the YAML representation of a catalog track.
type fileTrack struct {
	ID         string `yaml:"id"`
	Title      string `yaml:"title"`
	Artist     string `yaml:"artist"`
	Album      string `yaml:"album"`
	Genre      string `yaml:"genre"`
	DurationMs int64  `yaml:"duration_ms"`
	Source     string `yaml:"source"`
	Artwork    string `yaml:"artwork"`
}

type fileDocument struct {
	Tracks []fileTrack `yaml:"tracks"`
}

// FileCatalog serves tracks from a YAML catalog file loaded once at
// construction.
type FileCatalog struct {
	order  []string
	tracks map[string]track.Track
}

// NewFileCatalog loads a YAML catalog from disk.
func NewFileCatalog(path string) (*FileCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read catalog file")
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse catalog file")
	}

	c := &FileCatalog{
		order:  make([]string, 0, len(doc.Tracks)),
		tracks: make(map[string]track.Track, len(doc.Tracks)),
	}
	for i, ft := range doc.Tracks {
		if ft.ID == "" || ft.Source == "" {
			return nil, errors.Newf("catalog entry %d: id and source are required", i)
		}
		if ft.DurationMs <= 0 {
			return nil, errors.Newf("catalog entry %s: duration_ms must be positive", ft.ID)
		}
		if _, exists := c.tracks[ft.ID]; exists {
			return nil, errors.Newf("duplicate catalog entry: %s", ft.ID)
		}
		c.order = append(c.order, ft.ID)
		c.tracks[ft.ID] = track.Track{
			ID:         ft.ID,
			Title:      ft.Title,
			Artist:     ft.Artist,
			Album:      ft.Album,
			Genre:      ft.Genre,
			Duration:   time.Duration(ft.DurationMs) * time.Millisecond,
			SourceRef:  ft.Source,
			ArtworkRef: ft.Artwork,
		}
	}

	zlog.Info().Int("tracks", len(c.order)).Str("path", path).Msg("catalog: loaded file catalog")
	return c, nil
}

// ResolveTrack returns the track for an ID.
func (c *FileCatalog) ResolveTrack(_ context.Context, id string) (track.Track, error) {
	t, ok := c.tracks[id]
	if !ok {
		return track.Track{}, errors.Wrapf(track.ErrNotFound, "track %s", id)
	}
	return t, nil
}

// ListAllTracks returns all tracks in file order.
func (c *FileCatalog) ListAllTracks(_ context.Context) ([]track.Track, error) {
	result := make([]track.Track, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.tracks[id])
	}
	return result, nil
}
