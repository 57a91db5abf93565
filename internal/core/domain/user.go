package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserStatus is the lifecycle state of a user account.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserDisabled UserStatus = "disabled"
)

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	return s == UserActive || s == UserDisabled
}

// User is a registered viewer. Balance, TotalEarnings and the view
// counters only change through ledger credits; the Today* counters belong
// to the day bucket stored in TodayDate.
type User struct {
	ID            int64           `json:"id"`
	Phone         string          `json:"phone"`
	Username      string          `json:"username"`
	PasswordHash  string          `json:"-"`
	Balance       decimal.Decimal `json:"balance"`
	TotalEarnings decimal.Decimal `json:"totalEarnings"`
	TodayEarnings decimal.Decimal `json:"todayEarnings"`
	TotalViews    int64           `json:"totalViews"`
	TodayViews    int64           `json:"todayViews"`
	TodayDate     string          `json:"todayDate"`
	Level         int             `json:"level"`
	InviteCode    string          `json:"inviteCode"`
	Status        UserStatus      `json:"status"`
	LastActive    time.Time       `json:"lastActive"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// RollToday zeroes the today counters when they belong to a day other than
// day. It reports whether anything changed.
func (u *User) RollToday(day string) bool {
	if u.TodayDate == day {
		return false
	}
	u.TodayDate = day
	u.TodayEarnings = decimal.Zero
	u.TodayViews = 0
	return true
}

// Admin is a back-office account allowed to manage ads and users.
type Admin struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}
