package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/osa030/playbox/internal/domain/track"
)

// SpotifyCatalog resolves tracks through the Spotify API. ListAllTracks
// reads the configured playlist.
type SpotifyCatalog struct {
	client     *spotify.Client
	playlistID string
	market     string
	maxRetries int
	retryDelay time.Duration
}

// SpotifyConfig represents Spotify catalog configuration.
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	PlaylistID   string
	Market       string
}

// NewSpotifyCatalog creates a catalog backed by the Spotify API.
func NewSpotifyCatalog(ctx context.Context, cfg SpotifyConfig) (*SpotifyCatalog, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, errors.New("spotify credentials are required")
	}
	if cfg.PlaylistID == "" {
		return nil, errors.New("spotify playlist id is required")
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithScopes(spotifyauth.ScopePlaylistReadPrivate),
	)

	token := &oauth2.Token{RefreshToken: cfg.RefreshToken}
	httpClient := auth.Client(ctx, token)

	market := cfg.Market
	if market == "" {
		market = "JP"
	}

	return &SpotifyCatalog{
		client:     spotify.New(httpClient),
		playlistID: extractPlaylistID(cfg.PlaylistID),
		market:     market,
		maxRetries: 3,
		retryDelay: time.Second,
	}, nil
}

// ResolveTrack retrieves track information by ID, URL, or URI.
func (c *SpotifyCatalog) ResolveTrack(ctx context.Context, trackID string) (track.Track, error) {
	id := extractTrackID(trackID)

	var result *spotify.FullTrack
	err := c.retry(func() error {
		t, err := c.client.GetTrack(ctx, spotify.ID(id), spotify.Market(c.market))
		if err != nil {
			return err
		}
		result = t
		return nil
	})
	if err != nil {
		var se spotify.Error
		if errors.As(err, &se) && se.Status == http.StatusNotFound {
			return track.Track{}, errors.Wrapf(track.ErrNotFound, "track %s", trackID)
		}
		return track.Track{}, errors.Wrap(err, "failed to get track")
	}

	return c.convertTrack(result), nil
}

// ListAllTracks retrieves all tracks from the configured playlist.
func (c *SpotifyCatalog) ListAllTracks(ctx context.Context) ([]track.Track, error) {
	var tracks []track.Track
	offset := 0
	limit := 100

	for {
		var page *spotify.PlaylistItemPage
		err := c.retry(func() error {
			p, err := c.client.GetPlaylistItems(ctx, spotify.ID(c.playlistID),
				spotify.Limit(limit),
				spotify.Offset(offset),
				spotify.Market(c.market),
			)
			if err != nil {
				return err
			}
			page = p
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to get playlist items")
		}

		for _, item := range page.Items {
			// Only process tracks (exclude episodes)
			if item.Track.Track != nil && item.Track.Track.ID != "" {
				tracks = append(tracks, c.convertTrack(item.Track.Track))
			}
		}

		if len(page.Items) < limit {
			break
		}
		offset += limit
	}

	return tracks, nil
}

// convertTrack converts a Spotify FullTrack to a domain Track.
func (c *SpotifyCatalog) convertTrack(t *spotify.FullTrack) track.Track {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	var artwork string
	if len(t.Album.Images) > 0 {
		artwork = t.Album.Images[0].URL
	}

	return track.Track{
		ID:         string(t.ID),
		Title:      t.Name,
		Artist:     strings.Join(artists, ", "),
		Album:      t.Album.Name,
		Duration:   time.Duration(t.Duration) * time.Millisecond,
		SourceRef:  fmt.Sprintf("spotify:track:%s", t.ID),
		ArtworkRef: artwork,
	}
}

// retry retries an operation with linear backoff.
func (c *SpotifyCatalog) retry(fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			time.Sleep(c.retryDelay * time.Duration(i+1))
		}
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	// Rate limit and server errors are retryable
	errStr := err.Error()
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}

// extractTrackID extracts the track ID from a Spotify track URL or URI.
func extractTrackID(input string) string {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "spotify:track:") {
		return strings.TrimPrefix(input, "spotify:track:")
	}

	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/track/") {
		parts := strings.Split(input, "/track/")
		if len(parts) >= 2 {
			id := strings.Split(parts[len(parts)-1], "?")[0]
			return strings.TrimRight(id, "/")
		}
	}

	return input
}

// extractPlaylistID extracts the playlist ID from a Spotify playlist URL or URI.
func extractPlaylistID(input string) string {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "spotify:playlist:") {
		return strings.TrimPrefix(input, "spotify:playlist:")
	}

	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/playlist/") {
		parts := strings.Split(input, "/playlist/")
		if len(parts) >= 2 {
			id := strings.Split(parts[len(parts)-1], "?")[0]
			return strings.TrimRight(id, "/")
		}
	}

	return input
}
