package config

import "time"

// CacheConfig configures the Redis response cache in front of the public
// catalog and movie routes.  The catalog is fixed per release and can be
// kept long; movie listings follow TMDB and expire sooner.  Wizard routes
// are never cached.
type CacheConfig struct {
	Enabled      bool
	Prefix       string
	CatalogTTL   time.Duration
	MovieTTL     time.Duration
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Prefix:       envStr("CACHE_PREFIX", "wizard-cache"),
		CatalogTTL:   envDur("CACHE_CATALOG_TTL", time.Hour),
		MovieTTL:     envDur("CACHE_MOVIE_TTL", 5*time.Minute),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 256<<10),
	}
	if cfg.CatalogTTL <= 0 {
		cfg.CatalogTTL = time.Hour
	}
	if cfg.MovieTTL <= 0 {
		cfg.MovieTTL = 5 * time.Minute
	}
	return cfg
}
