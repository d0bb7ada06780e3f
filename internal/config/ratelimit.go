package config

import "time"

// Bucket is one token bucket: Capacity requests, refilled evenly over
// Period.
type Bucket struct {
	Capacity int
	Period   time.Duration
}

// RateLimitConfig configures the per-customer limits on the wizard routes.
// Confirm costs one booking plus one request per seat against the backend,
// so it draws from its own, smaller bucket.
type RateLimitConfig struct {
	Enabled bool
	Prefix  string
	Select  Bucket
	Confirm Bucket
}

// TTL is how long an idle bucket is kept: long enough to refill completely.
func (c RateLimitConfig) TTL() time.Duration {
	ttl := c.Select.Period
	if c.Confirm.Period > ttl {
		ttl = c.Confirm.Period
	}
	return 2 * ttl
}

func LoadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled: envBool("RATE_LIMIT_ENABLED", true),
		Prefix:  envStr("RATE_LIMIT_PREFIX", "wizard-rl"),
		Select:  loadBucket("RATE_LIMIT_CAPACITY", 60, "RATE_LIMIT_PERIOD", time.Minute),
		Confirm: loadBucket("RATE_LIMIT_CONFIRM_CAPACITY", 3, "RATE_LIMIT_CONFIRM_PERIOD", time.Minute),
	}
}

func loadBucket(capKey string, capDef int, periodKey string, periodDef time.Duration) Bucket {
	b := Bucket{Capacity: envInt(capKey, capDef), Period: envDur(periodKey, periodDef)}
	if b.Capacity < 1 {
		b.Capacity = 1
	}
	if b.Period <= 0 {
		b.Period = periodDef
	}
	return b
}
