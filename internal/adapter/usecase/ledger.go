package usecase

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"adreward/internal/core/domain"
	"adreward/internal/core/port"
)

// defaultHistoryLimit caps history listings when the caller passes no limit.
const defaultHistoryLimit = 50

var _ port.LedgerUseCase = (*Ledger)(nil)

// Ledger is the only writer of user balances and earnings.
type Ledger struct {
	store  port.Store
	clock  clockwork.Clock
	loc    *time.Location
	logger *slog.Logger
}

func NewLedger(store port.Store, clock clockwork.Clock, loc *time.Location, logger *slog.Logger) *Ledger {
	return &Ledger{store: store, clock: clock, loc: loc, logger: logger}
}

func (l *Ledger) day(t time.Time) string {
	return domain.DayBucket(t, l.loc)
}

// CreditUser pays amount to userID for a view of adID. The amount is not
// checked.
func (l *Ledger) CreditUser(ctx context.Context, userID int64, amount decimal.Decimal, adID int64) (*port.Credit, error) {
	now := l.clock.Now()
	if _, err := ensureDailyStat(ctx, l.store, l.day(now), now); err != nil {
		return nil, failure(l.logger, "ensure daily stat", err)
	}

	var c *port.Credit
	err := l.store.WithinTx(ctx, func(ctx context.Context, tx port.Store) error {
		var err error
		c, err = l.apply(ctx, tx, userID, amount, adID, now)
		return err
	})
	if err != nil {
		return nil, failure(l.logger, "credit user", err)
	}

	l.logger.Info("user credited",
		slog.Int64("user_id", userID),
		slog.Int64("ad_id", adID),
		slog.String("amount", amount.String()),
		slog.String("balance", c.Balance.String()))
	return c, nil
}

// apply performs the credit writes through tx. Today's DailyStat row must
// already exist.
func (l *Ledger) apply(ctx context.Context, tx port.Store, userID int64, amount decimal.Decimal, adID int64, now time.Time) (*port.Credit, error) {
	today := l.day(now)

	user, err := tx.Users().Update(ctx, userID, func(u *domain.User) error {
		u.RollToday(today)
		u.Balance = u.Balance.Add(amount)
		u.TodayEarnings = u.TodayEarnings.Add(amount)
		u.TotalEarnings = u.TotalEarnings.Add(amount)
		u.TotalViews++
		u.TodayViews++
		u.LastActive = now
		return nil
	})
	if errors.Is(err, port.ErrNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	earning := domain.Earning{
		UserID:      userID,
		Amount:      amount,
		Type:        domain.EarningAdView,
		AdID:        adID,
		Date:        today,
		Description: fmt.Sprintf("ad view reward (ad %d)", adID),
		CreatedAt:   now,
	}
	if _, err = tx.Earnings().Add(ctx, &earning); err != nil {
		return nil, fmt.Errorf("add earning: %w", err)
	}

	if err = bumpDailyStat(ctx, tx, today, amount, now); err != nil {
		return nil, err
	}

	return &port.Credit{
		UserID:    userID,
		EarningID: earning.ID,
		Amount:    amount,
		Balance:   user.Balance,
	}, nil
}

func bumpDailyStat(ctx context.Context, tx port.Store, today string, amount decimal.Decimal, now time.Time) error {
	earnings, err := tx.Earnings().GetAllByIndex(ctx, port.IndexDate, today)
	if err != nil {
		return fmt.Errorf("list today's earnings: %w", err)
	}
	users := make(map[int64]struct{}, len(earnings))
	for _, e := range earnings {
		users[e.UserID] = struct{}{}
	}

	stat, err := tx.DailyStats().GetByIndex(ctx, port.IndexDate, today)
	if err != nil {
		return fmt.Errorf("get daily stat: %w", err)
	}
	if stat == nil {
		return fmt.Errorf("daily stat %s: %w", today, port.ErrNotFound)
	}

	_, err = tx.DailyStats().Update(ctx, stat.ID, func(s *domain.DailyStat) error {
		s.TotalViews++
		s.TotalEarnings = s.TotalEarnings.Add(amount)
		s.UniqueUsers = int64(len(users))
		s.UpdatedAt = now
		return nil
	})
	if err != nil {
		return fmt.Errorf("update daily stat: %w", err)
	}
	return nil
}

// UserEarnings returns the user's earnings, newest first.
func (l *Ledger) UserEarnings(ctx context.Context, userID int64, limit int) ([]domain.Earning, error) {
	earnings, err := l.store.Earnings().GetAllByIndex(ctx, port.IndexUserID, userID)
	if err != nil {
		return nil, failure(l.logger, "list earnings", err)
	}
	slices.SortFunc(earnings, func(a, b domain.Earning) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(b.ID, a.ID))
	})
	return truncate(earnings, limit), nil
}

// UserViewRecords returns the user's view attempts, newest first.
func (l *Ledger) UserViewRecords(ctx context.Context, userID int64, limit int) ([]domain.ViewRecord, error) {
	records, err := l.store.ViewRecords().GetAllByIndex(ctx, port.IndexUserID, userID)
	if err != nil {
		return nil, failure(l.logger, "list view records", err)
	}
	slices.SortFunc(records, func(a, b domain.ViewRecord) int {
		return cmp.Or(b.ViewedAt.Compare(a.ViewedAt), cmp.Compare(b.ID, a.ID))
	})
	return truncate(records, limit), nil
}

func truncate[T any](items []T, limit int) []T {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
