package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"

	"adreward/internal/core/domain"
	"adreward/internal/core/port"
)

const defaultMaxViews = 1000

var _ port.AdUseCase = (*Ads)(nil)

// Ads manages the ad catalogue.
type Ads struct {
	store  port.Store
	clock  clockwork.Clock
	logger *slog.Logger
}

func NewAds(store port.Store, clock clockwork.Clock, logger *slog.Logger) *Ads {
	return &Ads{store: store, clock: clock, logger: logger}
}

func (a *Ads) CreateAd(ctx context.Context, in port.AdInput) (*domain.Ad, error) {
	now := a.clock.Now()
	ad := domain.Ad{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Reward:      in.Reward,
		Duration:    in.Duration,
		IsActive:    true,
		MaxViews:    in.MaxViews,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.IsActive != nil {
		ad.IsActive = *in.IsActive
	}
	if ad.MaxViews == 0 {
		ad.MaxViews = defaultMaxViews
	}
	if err := ad.Validate(); err != nil {
		return nil, err
	}

	if _, err := a.store.Ads().Add(ctx, &ad); err != nil {
		return nil, failure(a.logger, "add ad", err)
	}
	a.logger.Info("ad created", slog.Int64("ad_id", ad.ID), slog.String("title", ad.Title))
	return &ad, nil
}

// UpdateAd applies patch. CurrentViews is never touched, so lowering
// MaxViews below the views already served is rejected.
func (a *Ads) UpdateAd(ctx context.Context, adID int64, patch port.AdPatch) (*domain.Ad, error) {
	ad, err := a.store.Ads().Update(ctx, adID, func(ad *domain.Ad) error {
		if patch.Title != nil {
			ad.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			ad.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Reward != nil {
			ad.Reward = *patch.Reward
		}
		if patch.Duration != nil {
			ad.Duration = *patch.Duration
		}
		if patch.IsActive != nil {
			ad.IsActive = *patch.IsActive
		}
		if patch.MaxViews != nil {
			ad.MaxViews = *patch.MaxViews
		}
		ad.UpdatedAt = a.clock.Now()
		return ad.Validate()
	})
	if errors.Is(err, port.ErrNotFound) {
		return nil, domain.ErrAdNotFound
	}
	if err != nil {
		return nil, failure(a.logger, "update ad", err)
	}
	a.logger.Info("ad updated", slog.Int64("ad_id", adID))
	return ad, nil
}

func (a *Ads) GetAd(ctx context.Context, adID int64) (*domain.Ad, error) {
	ad, err := a.store.Ads().Get(ctx, adID)
	if err != nil {
		return nil, failure(a.logger, "get ad", err)
	}
	if ad == nil {
		return nil, domain.ErrAdNotFound
	}
	return ad, nil
}

// ListAds returns the catalogue ordered by id, optionally only the ads that
// are active and still under their view cap.
func (a *Ads) ListAds(ctx context.Context, activeOnly bool) ([]domain.Ad, error) {
	if !activeOnly {
		ads, err := a.store.Ads().GetAll(ctx)
		if err != nil {
			return nil, failure(a.logger, "list ads", err)
		}
		if ads == nil {
			ads = []domain.Ad{}
		}
		return ads, nil
	}

	ads, err := a.store.Ads().GetAllByIndex(ctx, port.IndexActive, true)
	if err != nil {
		return nil, failure(a.logger, "list active ads", err)
	}
	out := make([]domain.Ad, 0, len(ads))
	for _, ad := range ads {
		if ad.HasCapacity() {
			out = append(out, ad)
		}
	}
	return out, nil
}
