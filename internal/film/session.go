package film

import (
	"context"
	"math/rand/v2"

	"github.com/zsiec/nalforge/internal/config"
)

// Open creates the Source described by cfg. When a replay path or key is
// set the film is loaded from store and replayed, with the configured seed
// (or a fresh random one) as the fallback generator. Otherwise the source
// generates from the configured seed, or a random one when none is set.
func Open(ctx context.Context, cfg *config.FilmConfig, store Store, opts ...Option) (*Source, error) {
	key := ReplayKey(cfg)
	if key == "" {
		if cfg.Seed == nil {
			return NewRandom(opts...), nil
		}
		return NewFromSeed(*cfg.Seed, opts...), nil
	}

	seed := rand.Uint64()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}

	data, err := store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	return NewReplay(data, seed, opts...), nil
}

// ReplayKey returns the film to replay, preferring a path over a Redis key.
func ReplayKey(cfg *config.FilmConfig) string {
	if cfg.ReplayPath != "" {
		return cfg.ReplayPath
	}
	return cfg.ReplayKey
}

// SaveKey returns the key a session's film is saved under.
func SaveKey(cfg *config.FilmConfig, src *Source) string {
	return FileName(cfg.SavePrefix, src.Seed())
}

// Save persists the film of src when saving is enabled and returns the key
// it was written under.
func Save(ctx context.Context, cfg *config.FilmConfig, store Store, src *Source) (string, error) {
	if !cfg.Save {
		return "", nil
	}
	key := SaveKey(cfg, src)
	if err := store.Save(ctx, key, src.Film()); err != nil {
		return "", err
	}
	return key, nil
}
