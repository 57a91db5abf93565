package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"adreward/internal/core/domain"
)

// ViewUseCase drives ad view sessions. It is the primary port used by the
// UI collaborator while a user watches an ad.
type ViewUseCase interface {
	// StartView opens a session for userID on adID after checking, in
	// order, that the ad exists, is active, is under its view cap and has
	// not been viewed by the user before.
	StartView(ctx context.Context, adID, userID int64) (*ViewStart, error)
	// Click records the first click of the current session and arms the
	// countdown. Repeated clicks have no effect.
	Click(ctx context.Context, userID int64) (*ViewProgress, error)
	// Tick advances the countdown by one second and completes the view
	// when it reaches zero. It fails with ErrCountdownRunning while
	// RunCountdown drives the session.
	Tick(ctx context.Context, userID int64) (*ViewProgress, error)
	// CompleteView credits the view when the dwell time since the click is
	// long enough.
	CompleteView(ctx context.Context, userID int64) (*ViewResult, error)
	// CancelView abandons the current session.
	CancelView(ctx context.Context, userID int64) error
	// Session returns the state of the current session.
	Session(userID int64) (*ViewProgress, error)
	// RunCountdown delivers one tick per second to the current session
	// until it ends or ctx is done. Only the first call per session ticks;
	// later calls return nil at once.
	RunCountdown(ctx context.Context, userID int64) error
}

// LedgerUseCase exposes the reward ledger.
type LedgerUseCase interface {
	CreditUser(ctx context.Context, userID int64, amount decimal.Decimal, adID int64) (*Credit, error)
	UserEarnings(ctx context.Context, userID int64, limit int) ([]domain.Earning, error)
	UserViewRecords(ctx context.Context, userID int64, limit int) ([]domain.ViewRecord, error)
}

// StatsUseCase derives read-only rollups from stored records.
type StatsUseCase interface {
	UserStats(ctx context.Context, userID int64) (*UserStats, error)
	PlatformStats(ctx context.Context) (*PlatformStats, error)
	AdStats(ctx context.Context, adID int64) (*AdStats, error)
	AdPerformance(ctx context.Context) ([]AdStats, error)
	RealTime(ctx context.Context) (*RealTimeStats, error)
	IncomeReport(ctx context.Context, from, to string) (*IncomeReport, error)
}

// AccountUseCase manages user and admin accounts.
type AccountUseCase interface {
	Register(ctx context.Context, req Registration) (*domain.User, error)
	Login(ctx context.Context, phone, password string) (*domain.User, error)
	Profile(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, nickname string) (*domain.User, error)
	SetStatus(ctx context.Context, userID int64, status domain.UserStatus) (*domain.User, error)
	AdminLogin(ctx context.Context, username, password string) (*domain.Admin, error)
}

// AdUseCase manages the ad catalogue.
type AdUseCase interface {
	CreateAd(ctx context.Context, in AdInput) (*domain.Ad, error)
	UpdateAd(ctx context.Context, adID int64, patch AdPatch) (*domain.Ad, error)
	GetAd(ctx context.Context, adID int64) (*domain.Ad, error)
	ListAds(ctx context.Context, activeOnly bool) ([]domain.Ad, error)
}

// MaintenanceUseCase runs the daily reset on demand.
type MaintenanceUseCase interface {
	Reset(ctx context.Context) (*ResetReport, error)
}

// ViewStart is returned when a session opens. The UI renders Ad and keeps
// Token to correlate later events.
type ViewStart struct {
	Token    string    `json:"token"`
	Ad       domain.Ad `json:"ad"`
	Duration int       `json:"duration"`
}

// ViewProgress is a snapshot of a session for rendering. Result is set
// when the snapshot was taken by the tick that completed the view.
// Started is set only on the click that moved the session to clicked.
type ViewProgress struct {
	Token          string           `json:"token"`
	AdID           int64            `json:"adId"`
	State          domain.ViewState `json:"state"`
	Duration       int              `json:"duration"`
	Remaining      int              `json:"remaining"`
	ElapsedSeconds float64          `json:"elapsedSeconds"`
	Progress       float64          `json:"progress"`
	Started        bool             `json:"started,omitempty"`
	Result         *ViewResult      `json:"result,omitempty"`
}

// ViewResult describes a credited view.
type ViewResult struct {
	AdID     int64           `json:"adId"`
	RecordID int64           `json:"recordId"`
	Reward   decimal.Decimal `json:"reward"`
	Balance  decimal.Decimal `json:"balance"`
}

// Credit is the outcome of a ledger credit.
type Credit struct {
	UserID    int64           `json:"userId"`
	EarningID int64           `json:"earningId"`
	Amount    decimal.Decimal `json:"amount"`
	Balance   decimal.Decimal `json:"balance"`
}

// Registration carries the fields of a sign-up form.
type Registration struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// AdInput describes a new ad. IsActive defaults to true and MaxViews to
// 1000 when left empty.
type AdInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Reward      decimal.Decimal `json:"reward"`
	Duration    int             `json:"duration"`
	IsActive    *bool           `json:"isActive"`
	MaxViews    int64           `json:"maxViews"`
}

// AdPatch lists the ad fields to change; nil fields are left untouched.
type AdPatch struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Reward      *decimal.Decimal `json:"reward"`
	Duration    *int             `json:"duration"`
	IsActive    *bool            `json:"isActive"`
	MaxViews    *int64           `json:"maxViews"`
}

// DailyEarning is the earnings total of one day bucket.
type DailyEarning struct {
	Date     string          `json:"date"`
	Earnings decimal.Decimal `json:"earnings"`
}

// UserStats summarises one user's activity.
type UserStats struct {
	UserID         int64           `json:"userId"`
	Username       string          `json:"username"`
	Balance        decimal.Decimal `json:"balance"`
	TotalEarnings  decimal.Decimal `json:"totalEarnings"`
	TodayEarnings  decimal.Decimal `json:"todayEarnings"`
	TotalViews     int64           `json:"totalViews"`
	TodayViews     int64           `json:"todayViews"`
	CompletedViews int64           `json:"completedViews"`
	CompletionRate decimal.Decimal `json:"completionRate"`
	AveragePerView decimal.Decimal `json:"averagePerView"`
	DailyEarnings  []DailyEarning  `json:"dailyEarnings"`
	LastActive     time.Time       `json:"lastActive"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// PlatformStats summarises activity across all users and ads.
type PlatformStats struct {
	Users          int64           `json:"users"`
	ActiveAds      int64           `json:"activeAds"`
	TotalEarnings  decimal.Decimal `json:"totalEarnings"`
	TodayEarnings  decimal.Decimal `json:"todayEarnings"`
	TotalViews     int64           `json:"totalViews"`
	TodayViews     int64           `json:"todayViews"`
	CompletedViews int64           `json:"completedViews"`
	CompletionRate decimal.Decimal `json:"completionRate"`
	DailyEarnings  []DailyEarning  `json:"dailyEarnings"`
}

// AdStats summarises the views of one ad.
type AdStats struct {
	AdID           int64           `json:"adId"`
	Title          string          `json:"title"`
	TotalViews     int64           `json:"totalViews"`
	CompletedViews int64           `json:"completedViews"`
	CompletionRate decimal.Decimal `json:"completionRate"`
	TotalEarnings  decimal.Decimal `json:"totalEarnings"`
	TodayViews     int64           `json:"todayViews"`
	TodayEarnings  decimal.Decimal `json:"todayEarnings"`
	MaxViews       int64           `json:"maxViews"`
	CurrentViews   int64           `json:"currentViews"`
	RemainingViews int64           `json:"remainingViews"`
	IsActive       bool            `json:"isActive"`
}

// HourlyViews counts the view attempts started within one hour.
type HourlyViews struct {
	Hour  time.Time `json:"hour"`
	Views int64     `json:"views"`
}

// RealTimeStats is the live dashboard snapshot.
type RealTimeStats struct {
	TodayViews    int64           `json:"todayViews"`
	TodayEarnings decimal.Decimal `json:"todayEarnings"`
	OnlineUsers   int64           `json:"onlineUsers"`
	ActiveAds     int64           `json:"activeAds"`
	HourViews     int64           `json:"hourViews"`
	HourlyTrend   []HourlyViews   `json:"hourlyTrend"`
	Timestamp     time.Time       `json:"timestamp"`
}

// IncomeTotal aggregates a group of earnings.
type IncomeTotal struct {
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// IncomeByDate is the IncomeTotal of one day bucket.
type IncomeByDate struct {
	Date string `json:"date"`
	IncomeTotal
}

// IncomeReport groups the earnings of an inclusive date range.
type IncomeReport struct {
	From          string                             `json:"from"`
	To            string                             `json:"to"`
	TotalEarnings decimal.Decimal                    `json:"totalEarnings"`
	TotalViews    int64                              `json:"totalViews"`
	ByType        map[domain.EarningType]IncomeTotal `json:"byType"`
	ByDate        []IncomeByDate                     `json:"byDate"`
}

// ResetReport describes one run of the daily reset.
type ResetReport struct {
	Date       string `json:"date"`
	UsersReset int    `json:"usersReset"`
	Skipped    bool   `json:"skipped"`
}
