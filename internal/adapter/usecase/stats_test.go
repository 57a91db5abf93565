package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adreward/internal/core/domain"
)

// watch runs a full view of ad for user, clicking and waiting dwell before
// completing.
func watch(t *testing.T, env *testEnv, adID, userID int64, dwell time.Duration) error {
	t.Helper()

	ctx := context.Background()
	_, err := env.viewer.StartView(ctx, adID, userID)
	require.NoError(t, err)
	_, err = env.viewer.Click(ctx, userID)
	require.NoError(t, err)
	env.clock.Advance(dwell)
	_, err = env.viewer.CompleteView(ctx, userID)
	return err
}

func TestStatsUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.addUser(t, "13800000001")
	good := env.addAd(t, "0.15", 30, 10)
	bad := env.addAd(t, "0.20", 40, 10)

	require.NoError(t, watch(t, env, good.ID, user.ID, 30*time.Second))
	require.ErrorIs(t, watch(t, env, bad.ID, user.ID, 10*time.Second), domain.ErrInsufficientWatchTime)

	st, err := env.stats.UserStats(ctx, user.ID)
	require.NoError(t, err)
	requireDecimal(t, "0.15", st.Balance)
	requireDecimal(t, "0.15", st.TodayEarnings)
	assert.EqualValues(t, 2, st.TotalViews)
	assert.EqualValues(t, 2, st.TodayViews)
	assert.EqualValues(t, 1, st.CompletedViews)
	assert.Equal(t, "50", st.CompletionRate.String())
	requireDecimal(t, "0.15", st.AveragePerView)

	require.Len(t, st.DailyEarnings, 30)
	last := st.DailyEarnings[len(st.DailyEarnings)-1]
	assert.Equal(t, "2025-03-10", last.Date)
	requireDecimal(t, "0.15", last.Earnings)
	assert.Equal(t, "2025-02-09", st.DailyEarnings[0].Date)

	_, err = env.stats.UserStats(ctx, 999)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestStatsEmpty(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.addUser(t, "13800000001")

	st, err := env.stats.UserStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "0", st.CompletionRate.String())
	assert.True(t, st.AveragePerView.IsZero())

	ps, err := env.stats.PlatformStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, ps.Users)
	assert.Zero(t, ps.TotalViews)
	assert.Equal(t, "0", ps.CompletionRate.String())
}

func TestStatsPlatformAndAds(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := env.addUser(t, "13800000001")
	b := env.addUser(t, "13800000002")
	c := env.addUser(t, "13800000003")
	cheap := env.addAd(t, "0.15", 30, 10)
	rich := env.addAd(t, "0.20", 40, 10)

	require.NoError(t, watch(t, env, cheap.ID, a.ID, 30*time.Second))
	require.NoError(t, watch(t, env, rich.ID, a.ID, 40*time.Second))
	require.NoError(t, watch(t, env, rich.ID, b.ID, 40*time.Second))
	require.Error(t, watch(t, env, cheap.ID, c.ID, time.Second))

	ps, err := env.stats.PlatformStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, ps.Users)
	assert.EqualValues(t, 2, ps.ActiveAds)
	assert.EqualValues(t, 4, ps.TotalViews)
	assert.EqualValues(t, 3, ps.CompletedViews)
	assert.Equal(t, "75", ps.CompletionRate.String())
	requireDecimal(t, "0.55", ps.TotalEarnings)
	requireDecimal(t, "0.55", ps.TodayEarnings)

	st, err := env.stats.AdStats(ctx, cheap.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, st.TotalViews)
	assert.EqualValues(t, 1, st.CompletedViews)
	assert.EqualValues(t, 9, st.RemainingViews)
	assert.Equal(t, "50", st.CompletionRate.String())

	perf, err := env.stats.AdPerformance(ctx)
	require.NoError(t, err)
	require.Len(t, perf, 2)
	assert.Equal(t, rich.ID, perf[0].AdID)
	requireDecimal(t, "0.40", perf[0].TotalEarnings)
	assert.Equal(t, cheap.ID, perf[1].AdID)

	_, err = env.stats.AdStats(ctx, 999)
	require.ErrorIs(t, err, domain.ErrAdNotFound)
}

func TestStatsRealTime(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	active := env.addUser(t, "13800000001")
	env.addUser(t, "13800000002")
	ad := env.addAd(t, "0.15", 30, 10)

	require.NoError(t, watch(t, env, ad.ID, active.ID, 30*time.Second))

	rt, err := env.stats.RealTime(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rt.TodayViews)
	requireDecimal(t, "0.15", rt.TodayEarnings)
	assert.EqualValues(t, 1, rt.OnlineUsers)
	assert.EqualValues(t, 1, rt.ActiveAds)
	assert.EqualValues(t, 1, rt.HourViews)
	require.Len(t, rt.HourlyTrend, 24)
	assert.EqualValues(t, 1, rt.HourlyTrend[23].Views)

	env.clock.Advance(2 * time.Hour)
	rt, err = env.stats.RealTime(ctx)
	require.NoError(t, err)
	assert.Zero(t, rt.OnlineUsers)
	assert.Zero(t, rt.HourViews)
	assert.EqualValues(t, 1, rt.HourlyTrend[21].Views)
}

func TestStatsIncomeReport(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.addUser(t, "13800000001")

	for range 2 {
		_, err := env.ledger.CreditUser(ctx, user.ID, decimal.RequireFromString("0.15"), 1)
		require.NoError(t, err)
		env.clock.Advance(24 * time.Hour)
	}
	_, err := env.ledger.CreditUser(ctx, user.ID, decimal.RequireFromString("0.20"), 2)
	require.NoError(t, err)

	report, err := env.stats.IncomeReport(ctx, "2025-03-10", "2025-03-11")
	require.NoError(t, err)
	assert.EqualValues(t, 2, report.TotalViews)
	requireDecimal(t, "0.30", report.TotalEarnings)
	require.Len(t, report.ByDate, 2)
	assert.Equal(t, "2025-03-10", report.ByDate[0].Date)
	assert.Equal(t, "2025-03-11", report.ByDate[1].Date)
	byType := report.ByType[domain.EarningAdView]
	assert.EqualValues(t, 2, byType.Count)
	requireDecimal(t, "0.30", byType.Total)

	tests := []struct {
		name     string
		from, to string
	}{
		{name: "bad from", from: "10/03/2025", to: "2025-03-11"},
		{name: "bad to", from: "2025-03-10", to: "tomorrow"},
		{name: "reversed", from: "2025-03-11", to: "2025-03-10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.stats.IncomeReport(ctx, tt.from, tt.to)
			require.ErrorIs(t, err, domain.ErrInvalidDateRange)
		})
	}
}
