package session

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/playbox/internal/infra/catalog"
	"github.com/osa030/playbox/internal/infra/config"
)

// FileCatalogSettings are the settings for a file catalog source.
type FileCatalogSettings struct {
	Path string `yaml:"path" mapstructure:"path" validate:"required"`
}

// SpotifyCatalogSettings are the settings for a Spotify catalog source.
// Credentials may come from the environment instead of the config file.
type SpotifyCatalogSettings struct {
	ClientID     string `yaml:"client_id" mapstructure:"client_id" validate:"required"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret" validate:"required"`
	RefreshToken string `yaml:"refresh_token" mapstructure:"refresh_token" validate:"required"`
	PlaylistID   string `yaml:"playlist_id" mapstructure:"playlist_id" validate:"required"`
	Market       string `yaml:"market" mapstructure:"market" default:"JP" validate:"len=2"`
}

// NewCatalogFromConfig creates a catalog from configuration.
func NewCatalogFromConfig(ctx context.Context, cfg *config.Config) (Catalog, error) {
	zlog.Debug().Str("type", cfg.Catalog.Type).Msg("catalog: creating source")

	switch cfg.Catalog.Type {
	case "file":
		var settings FileCatalogSettings
		if err := decodeSettings(cfg.Catalog.Settings, &settings); err != nil {
			return nil, err
		}
		return catalog.NewFileCatalog(settings.Path)

	case "spotify":
		var settings SpotifyCatalogSettings
		if cfg.Catalog.Settings == nil {
			cfg.Catalog.Settings = make(map[string]any)
		}
		overrideSpotifyFromEnv(cfg.Catalog.Settings)
		if err := decodeSettings(cfg.Catalog.Settings, &settings); err != nil {
			return nil, err
		}
		return catalog.NewSpotifyCatalog(ctx, catalog.SpotifyConfig{
			ClientID:     settings.ClientID,
			ClientSecret: settings.ClientSecret,
			RefreshToken: settings.RefreshToken,
			PlaylistID:   settings.PlaylistID,
			Market:       settings.Market,
		})

	default:
		return nil, errors.Newf("unsupported catalog type: %s", cfg.Catalog.Type)
	}
}

// decodeSettings decodes a settings map into a typed settings struct,
// applying defaults and validating the result.
func decodeSettings(settings map[string]any, out any) error {
	if err := mapstructure.Decode(settings, out); err != nil {
		return errors.Wrap(err, "failed to decode catalog settings")
	}
	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(out); err != nil {
		return errors.Wrap(err, "catalog settings validation failed")
	}
	return nil
}

// overrideSpotifyFromEnv overrides credential settings with environment
// variables so secrets can stay out of the config file.
func overrideSpotifyFromEnv(settings map[string]any) {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		settings["client_id"] = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		settings["client_secret"] = v
	}
	if v := os.Getenv("SPOTIFY_REFRESH_TOKEN"); v != "" {
		settings["refresh_token"] = v
	}
}
