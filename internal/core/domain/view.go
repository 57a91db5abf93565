package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ViewRecord is the immutable outcome of one view attempt. Failed attempts
// are stored too, with Completed false and a zero reward.
type ViewRecord struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	AdID      int64           `json:"adId"`
	ViewedAt  time.Time       `json:"viewedAt"`
	Completed bool            `json:"completed"`
	Duration  int             `json:"duration"`
	Reward    decimal.Decimal `json:"reward"`
	AdTitle   string          `json:"adTitle"`
}

// ViewState is the position of a view session in its lifecycle.
type ViewState string

const (
	ViewIdle      ViewState = "idle"
	ViewDisplayed ViewState = "displayed"
	ViewClicked   ViewState = "clicked"
	ViewCompleted ViewState = "completed"
	ViewCancelled ViewState = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s ViewState) Terminal() bool {
	return s == ViewCompleted || s == ViewCancelled
}
