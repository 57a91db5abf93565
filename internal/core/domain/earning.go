package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EarningType string

const EarningAdView EarningType = "ad_view"

// Earning is an append-only ledger entry.
type Earning struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Type        EarningType     `json:"type"`
	AdID        int64           `json:"adId"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// DailyStat is the platform rollup of one calendar day. ResetAt is set
// once the daily maintenance has run for Date.
type DailyStat struct {
	ID             int64           `json:"id"`
	Date           string          `json:"date"`
	TotalViews     int64           `json:"totalViews"`
	TotalEarnings  decimal.Decimal `json:"totalEarnings"`
	UniqueUsers    int64           `json:"uniqueUsers"`
	CompletionRate decimal.Decimal `json:"completionRate"`
	ResetAt        *time.Time      `json:"resetAt,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// NewDailyStat returns an empty rollup row for day.
func NewDailyStat(day string, now time.Time) DailyStat {
	return DailyStat{
		Date:           day,
		TotalEarnings:  decimal.Zero,
		CompletionRate: decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CompletionRate returns completed/total as a percentage rounded to one
// decimal place. Zero total yields zero.
func CompletionRate(completed, total int64) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(completed).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(total), 1)
}
