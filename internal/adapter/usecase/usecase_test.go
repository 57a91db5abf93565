package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"adreward/internal/adapter/memory"
	"adreward/internal/core/domain"
	"adreward/internal/core/port"
)

var testStart = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store  *memory.Store
	clock  *clockwork.FakeClock
	ledger *Ledger
	viewer *Viewer
	stats  *Stats
	logger *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	clock := clockwork.NewFakeClockAt(testStart)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ledger := NewLedger(store, clock, time.UTC, logger)

	return &testEnv{
		store:  store,
		clock:  clock,
		ledger: ledger,
		viewer: NewViewer(store, ledger, clock, logger, 0.8),
		stats:  NewStats(store, clock, time.UTC, logger),
		logger: logger,
	}
}

func (e *testEnv) addUser(t *testing.T, phone string) domain.User {
	t.Helper()

	u := domain.User{
		Phone:         phone,
		Username:      "user_" + phone[len(phone)-4:],
		Balance:       decimal.Zero,
		TotalEarnings: decimal.Zero,
		TodayEarnings: decimal.Zero,
		TodayDate:     domain.DayBucket(e.clock.Now(), time.UTC),
		Status:        domain.UserActive,
		CreatedAt:     e.clock.Now(),
	}
	_, err := e.store.Users().Add(context.Background(), &u)
	require.NoError(t, err)
	return u
}

func (e *testEnv) addAd(t *testing.T, reward string, duration int, maxViews int64) domain.Ad {
	t.Helper()

	a := domain.Ad{
		Title:     "ad",
		Reward:    decimal.RequireFromString(reward),
		Duration:  duration,
		IsActive:  true,
		MaxViews:  maxViews,
		CreatedAt: e.clock.Now(),
		UpdatedAt: e.clock.Now(),
	}
	_, err := e.store.Ads().Add(context.Background(), &a)
	require.NoError(t, err)
	return a
}

func (e *testEnv) user(t *testing.T, id int64) domain.User {
	t.Helper()

	u, err := e.store.Users().Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, u)
	return *u
}

func (e *testEnv) records(t *testing.T, userID int64) []domain.ViewRecord {
	t.Helper()

	recs, err := e.store.ViewRecords().GetAllByIndex(context.Background(), port.IndexUserID, userID)
	require.NoError(t, err)
	return recs
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

// mockAds is a port.Table[domain.Ad] whose behaviour is set per test.
type mockAds struct {
	mock.Mock
}

func (m *mockAds) Get(ctx context.Context, id int64) (*domain.Ad, error) {
	args := m.Called(ctx, id)
	ad, _ := args.Get(0).(*domain.Ad)
	return ad, args.Error(1)
}

func (m *mockAds) GetAll(ctx context.Context) ([]domain.Ad, error) {
	args := m.Called(ctx)
	ads, _ := args.Get(0).([]domain.Ad)
	return ads, args.Error(1)
}

func (m *mockAds) GetByIndex(ctx context.Context, index port.Index, value any) (*domain.Ad, error) {
	args := m.Called(ctx, index, value)
	ad, _ := args.Get(0).(*domain.Ad)
	return ad, args.Error(1)
}

func (m *mockAds) GetAllByIndex(ctx context.Context, index port.Index, value any) ([]domain.Ad, error) {
	args := m.Called(ctx, index, value)
	ads, _ := args.Get(0).([]domain.Ad)
	return ads, args.Error(1)
}

func (m *mockAds) Add(ctx context.Context, rec *domain.Ad) (int64, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAds) Update(ctx context.Context, id int64, fn func(*domain.Ad) error) (*domain.Ad, error) {
	args := m.Called(ctx, id, fn)
	ad, _ := args.Get(0).(*domain.Ad)
	return ad, args.Error(1)
}

func (m *mockAds) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// brokenAdsStore serves every table from memory except Ads.
type brokenAdsStore struct {
	*memory.Store
	ads *mockAds
}

func (s *brokenAdsStore) Ads() port.Table[domain.Ad] { return s.ads }

// pausingStore blocks the first DailyStats call until release is closed.
// reached is closed when that call arrives.
type pausingStore struct {
	*memory.Store
	paused  atomic.Bool
	reached chan struct{}
	release chan struct{}
}

func newPausingStore(store *memory.Store) *pausingStore {
	return &pausingStore{Store: store, reached: make(chan struct{}), release: make(chan struct{})}
}

func (s *pausingStore) DailyStats() port.Table[domain.DailyStat] {
	if s.paused.CompareAndSwap(false, true) {
		close(s.reached)
		<-s.release
	}
	return s.Store.DailyStats()
}
