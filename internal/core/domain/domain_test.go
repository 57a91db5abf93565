package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		err  error
		kind error
	}{
		{ErrAdNotFound, ErrNotFound},
		{ErrViewCapReached, ErrIneligible},
		{ErrAlreadyViewed, ErrIneligible},
		{ErrInsufficientWatchTime, ErrPremature},
		{ErrInvalidPhone, ErrValidation},
		{ErrPhoneTaken, ErrConflict},
		{ErrStorage, ErrUnavailable},
	}
	for _, tc := range cases {
		assert.ErrorIs(t, tc.err, tc.kind, tc.err.Error())
		assert.Equal(t, tc.kind, Kind(tc.err))
	}

	wrapped := errors.Join(errors.New("context"), ErrAdInactive)
	assert.ErrorIs(t, wrapped, ErrIneligible)
	assert.Nil(t, Kind(errors.New("plain")))
	assert.Equal(t, "view cap reached", ErrViewCapReached.Error())
}

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, "0", CompletionRate(0, 0).String())
	assert.Equal(t, "50", CompletionRate(1, 2).String())
	assert.Equal(t, "33.3", CompletionRate(1, 3).String())
	assert.Equal(t, "66.7", CompletionRate(2, 3).String())
	assert.Equal(t, "100", CompletionRate(4, 4).String())
}

func TestAdMinWatch(t *testing.T) {
	ad := Ad{Duration: 30}
	assert.Equal(t, 24*time.Second, ad.MinWatch(0.8))

	ad.Duration = 25
	assert.Equal(t, 20*time.Second, ad.MinWatch(0.8))

	ad.Duration = 7
	assert.Equal(t, 5600*time.Millisecond, ad.MinWatch(0.8))
}

func TestAdValidate(t *testing.T) {
	ok := Ad{Title: "t", Reward: decimal.RequireFromString("0.15"), Duration: 30, MaxViews: 10}
	require.NoError(t, ok.Validate())

	bad := ok
	bad.Reward = decimal.RequireFromString("-1")
	assert.ErrorIs(t, bad.Validate(), ErrInvalidAd)

	bad = ok
	bad.Duration = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidAd)

	bad = ok
	bad.CurrentViews = 11
	assert.ErrorIs(t, bad.Validate(), ErrInvalidViewCap)

	assert.Equal(t, int64(10), ok.RemainingViews())
	assert.True(t, ok.HasCapacity())
	ok.CurrentViews = 10
	assert.False(t, ok.HasCapacity())
	assert.Zero(t, ok.RemainingViews())
}

func TestDayBuckets(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	at := time.Date(2026, 3, 1, 17, 30, 0, 0, time.UTC)

	assert.Equal(t, "2026-03-02", DayBucket(at, loc))
	assert.Equal(t, "2026-03-01", DayBucket(at, time.UTC))

	next := NextMidnight(at, loc)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, loc), next)

	exact := time.Date(2026, 3, 3, 0, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, loc), NextMidnight(exact, loc))

	day, err := ParseDay("2026-03-02", loc)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", DayBucket(day, loc))
}

func TestUserRollToday(t *testing.T) {
	u := User{TodayDate: "2026-03-01", TodayViews: 3, TodayEarnings: decimal.RequireFromString("0.45")}

	assert.False(t, u.RollToday("2026-03-01"))
	assert.Equal(t, int64(3), u.TodayViews)

	assert.True(t, u.RollToday("2026-03-02"))
	assert.Zero(t, u.TodayViews)
	assert.True(t, u.TodayEarnings.IsZero())
	assert.Equal(t, "2026-03-02", u.TodayDate)
}
