package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"adreward/internal/config/configs"
	"adreward/internal/core/domain"
	"adreward/internal/core/port"
)

// Hasher turns a plain password into its stored form.
type Hasher interface {
	Hash(password string) (string, error)
}

type starterAd struct {
	title       string
	description string
	reward      string
	duration    int
	maxViews    int64
}

var starterAds = []starterAd{
	{"Mobile game showcase", "Try the newest mobile games and win big rewards", "0.15", 30, 1000},
	{"Online store promotion", "Discover quality products and enjoy shopping", "0.15", 25, 800},
	{"Personal finance tips", "Learn the basics of saving and investing", "0.20", 40, 500},
	{"Learning platform", "Build new skills and start your next career chapter", "0.18", 35, 600},
}

// Seed fills an empty store with the default admin account, the starter
// ads and today's statistics row. Tables that already hold data are left
// alone, so it is safe to call on every start.
func Seed(ctx context.Context, store port.Store, cfg configs.Store, hasher Hasher, now time.Time, loc *time.Location) error {
	admins, err := store.Admins().Count(ctx)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins == 0 {
		hash, err := hasher.Hash(cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		admin := domain.Admin{
			Username:     cfg.AdminUsername,
			PasswordHash: hash,
			Role:         "super_admin",
			CreatedAt:    now,
		}
		if _, err = store.Admins().Add(ctx, &admin); err != nil {
			return fmt.Errorf("add admin: %w", err)
		}
	}

	ads, err := store.Ads().Count(ctx)
	if err != nil {
		return fmt.Errorf("count ads: %w", err)
	}
	if ads == 0 {
		for _, s := range starterAds {
			ad := domain.Ad{
				Title:       s.title,
				Description: s.description,
				Reward:      decimal.RequireFromString(s.reward),
				Duration:    s.duration,
				IsActive:    true,
				MaxViews:    s.maxViews,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if _, err = store.Ads().Add(ctx, &ad); err != nil {
				return fmt.Errorf("add ad %q: %w", s.title, err)
			}
		}
	}

	today := domain.DayBucket(now, loc)
	stat, err := store.DailyStats().GetByIndex(ctx, port.IndexDate, today)
	if err != nil {
		return fmt.Errorf("get daily stat: %w", err)
	}
	if stat == nil {
		fresh := domain.NewDailyStat(today, now)
		if _, err = store.DailyStats().Add(ctx, &fresh); err != nil && !errors.Is(err, port.ErrDuplicate) {
			return fmt.Errorf("add daily stat: %w", err)
		}
	}
	return nil
}
