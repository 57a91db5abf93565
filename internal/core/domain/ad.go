package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Ad represents a rewarded advertisement.
// Duration is the nominal watch time in seconds.
type Ad struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Reward       decimal.Decimal `json:"reward"`
	Duration     int             `json:"duration"`
	IsActive     bool            `json:"isActive"`
	MaxViews     int64           `json:"maxViews"`
	CurrentViews int64           `json:"currentViews"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// HasCapacity reports whether the ad can still be served.
func (a Ad) HasCapacity() bool {
	return a.CurrentViews < a.MaxViews
}

// RemainingViews returns how many completed views the ad can still pay for.
func (a Ad) RemainingViews() int64 {
	if a.CurrentViews >= a.MaxViews {
		return 0
	}
	return a.MaxViews - a.CurrentViews
}

// MinWatch returns the dwell time a viewer needs before the view can be
// credited, ratio being the required fraction of Duration. The result is
// rounded to the millisecond.
func (a Ad) MinWatch(ratio float64) time.Duration {
	ms := math.Round(float64(a.Duration) * ratio * 1000)
	return time.Duration(ms) * time.Millisecond
}

// Validate checks the invariants an ad must satisfy to be stored.
func (a Ad) Validate() error {
	switch {
	case a.Title == "",
		a.Reward.IsNegative(),
		a.Duration <= 0,
		a.MaxViews <= 0:
		return ErrInvalidAd
	case a.CurrentViews > a.MaxViews:
		return ErrInvalidViewCap
	}
	return nil
}
