package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"adreward/internal/core/domain"
	"adreward/internal/core/port"
)

// failure passes domain errors through untouched. Anything else is a
// storage or engine error: it is logged and replaced by the generic
// domain.ErrStorage so raw driver errors never reach the UI.
func failure(logger *slog.Logger, op string, err error) error {
	if domain.Kind(err) != nil {
		return err
	}
	logger.Error(op, slog.Any("error", err))
	return domain.ErrStorage
}

// ensureDailyStat returns the rollup row of day, creating it when absent.
// Concurrent creators race on the unique date index; the loser reads the
// winner's row.
func ensureDailyStat(ctx context.Context, store port.Store, day string, now time.Time) (*domain.DailyStat, error) {
	stat, err := store.DailyStats().GetByIndex(ctx, port.IndexDate, day)
	if err != nil || stat != nil {
		return stat, err
	}

	fresh := domain.NewDailyStat(day, now)
	if _, err = store.DailyStats().Add(ctx, &fresh); err == nil {
		return &fresh, nil
	}
	if !errors.Is(err, port.ErrDuplicate) {
		return nil, err
	}
	return store.DailyStats().GetByIndex(ctx, port.IndexDate, day)
}
