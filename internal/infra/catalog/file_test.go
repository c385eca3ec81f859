package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/playbox/internal/domain/track"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const sampleCatalog = `
tracks:
  - id: jazz-1
    title: Jazz in Paris
    artist: Media Right Productions
    album: Jazz & Blues
    genre: Jazz
    duration_ms: 103000
    source: file:///music/jazz_in_paris.mp3
    artwork: file:///art/album_jazz_blues.jpg
  - id: blues-1
    title: The Messenger
    artist: Silent Partner
    album: The Messenger
    genre: Blues
    duration_ms: 132000
    source: file:///music/the_messenger.mp3
`

func TestFileCatalog_ResolveTrack(t *testing.T) {
	c, err := NewFileCatalog(writeCatalog(t, sampleCatalog))
	require.NoError(t, err)

	got, err := c.ResolveTrack(context.Background(), "jazz-1")
	require.NoError(t, err)
	assert.Equal(t, "Jazz in Paris", got.Title)
	assert.Equal(t, "Media Right Productions", got.Artist)
	assert.Equal(t, 103*time.Second, got.Duration)
	assert.Equal(t, "file:///music/jazz_in_paris.mp3", got.SourceRef)
}

func TestFileCatalog_ResolveTrack_NotFound(t *testing.T) {
	c, err := NewFileCatalog(writeCatalog(t, sampleCatalog))
	require.NoError(t, err)

	_, err = c.ResolveTrack(context.Background(), "no-such-track")
	assert.ErrorIs(t, err, track.ErrNotFound)
}

func TestFileCatalog_ListAllTracks_KeepsFileOrder(t *testing.T) {
	c, err := NewFileCatalog(writeCatalog(t, sampleCatalog))
	require.NoError(t, err)

	tracks, err := c.ListAllTracks(context.Background())
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, "jazz-1", tracks[0].ID)
	assert.Equal(t, "blues-1", tracks[1].ID)
}

func TestNewFileCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing id",
			content: `
tracks:
  - title: No ID
    duration_ms: 1000
    source: file:///x.mp3
`,
		},
		{
			name: "missing source",
			content: `
tracks:
  - id: t1
    duration_ms: 1000
`,
		},
		{
			name: "non-positive duration",
			content: `
tracks:
  - id: t1
    duration_ms: 0
    source: file:///x.mp3
`,
		},
		{
			name: "duplicate id",
			content: `
tracks:
  - id: t1
    duration_ms: 1000
    source: file:///x.mp3
  - id: t1
    duration_ms: 2000
    source: file:///y.mp3
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFileCatalog(writeCatalog(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestNewFileCatalog_MissingFile(t *testing.T) {
	_, err := NewFileCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestExtractTrackID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "bare id", input: "4uLU6hMCjMI75M1A2tKUQC", expected: "4uLU6hMCjMI75M1A2tKUQC"},
		{name: "uri", input: "spotify:track:4uLU6hMCjMI75M1A2tKUQC", expected: "4uLU6hMCjMI75M1A2tKUQC"},
		{name: "url", input: "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC?si=xyz", expected: "4uLU6hMCjMI75M1A2tKUQC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractTrackID(tt.input))
		})
	}
}

func TestExtractPlaylistID(t *testing.T) {
	assert.Equal(t, "abc123", extractPlaylistID("spotify:playlist:abc123"))
	assert.Equal(t, "abc123", extractPlaylistID("https://open.spotify.com/playlist/abc123?si=x"))
	assert.Equal(t, "abc123", extractPlaylistID("abc123"))
}
