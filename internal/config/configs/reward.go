package configs

import (
	"fmt"
	"time"
)

// Reward holds the rules of the watch-and-earn flow.
type Reward struct {
	// MinWatchRatio is the fraction of an ad's duration that must pass
	// between click and completion.
	MinWatchRatio float64 `env:"MIN_WATCH_RATIO" envDefault:"0.8"`
	// Timezone names the location used for day buckets and the midnight
	// reset. "Local" is the process zone.
	Timezone string `env:"TIMEZONE" envDefault:"Local"`
	// AutoCountdown makes the server tick clicked sessions itself instead
	// of waiting for client ticks.
	AutoCountdown bool `env:"AUTO_COUNTDOWN" envDefault:"true"`
	BcryptCost    int  `env:"BCRYPT_COST" envDefault:"10"`
}

// Location loads Timezone. Validate has already checked it.
func (c Reward) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Validate reports settings the application cannot run with.
func (c Reward) Validate() error {
	if c.MinWatchRatio <= 0 || c.MinWatchRatio > 1 {
		return fmt.Errorf("REWARD_MIN_WATCH_RATIO must be in (0, 1], got %v", c.MinWatchRatio)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("REWARD_TIMEZONE: %w", err)
	}
	return nil
}
