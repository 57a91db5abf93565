package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adreward/internal/core/domain"
	"adreward/internal/core/port"
)

func TestAdsCreate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ads := NewAds(env.store, env.clock, env.logger)

	ad, err := ads.CreateAd(ctx, port.AdInput{
		Title:    " Fresh fruit ",
		Reward:   decimal.RequireFromString("0.15"),
		Duration: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, "Fresh fruit", ad.Title)
	assert.True(t, ad.IsActive)
	assert.EqualValues(t, 1000, ad.MaxViews)
	assert.Equal(t, testStart, ad.CreatedAt)

	inactive := false
	ad, err = ads.CreateAd(ctx, port.AdInput{
		Title:    "Later",
		Reward:   decimal.RequireFromString("0.10"),
		Duration: 20,
		IsActive: &inactive,
		MaxViews: 5,
	})
	require.NoError(t, err)
	assert.False(t, ad.IsActive)

	_, err = ads.CreateAd(ctx, port.AdInput{Title: "Broken", Reward: decimal.RequireFromString("-1"), Duration: 20})
	require.ErrorIs(t, err, domain.ErrInvalidAd)
	_, err = ads.CreateAd(ctx, port.AdInput{Title: "Broken", Reward: decimal.Zero})
	require.ErrorIs(t, err, domain.ErrValidation)

	all, err := ads.ListAds(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := ads.ListAds(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Fresh fruit", active[0].Title)
}

func TestAdsUpdate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ads := NewAds(env.store, env.clock, env.logger)
	ad := env.addAd(t, "0.15", 30, 10)
	_, err := env.store.Ads().Update(ctx, ad.ID, func(a *domain.Ad) error {
		a.CurrentViews = 4
		return nil
	})
	require.NoError(t, err)

	reward := decimal.RequireFromString("0.25")
	title := "Renamed"
	updated, err := ads.UpdateAd(ctx, ad.ID, port.AdPatch{Title: &title, Reward: &reward})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	requireDecimal(t, "0.25", updated.Reward)
	assert.Equal(t, 30, updated.Duration)
	assert.EqualValues(t, 4, updated.CurrentViews)

	low := int64(3)
	_, err = ads.UpdateAd(ctx, ad.ID, port.AdPatch{MaxViews: &low})
	require.ErrorIs(t, err, domain.ErrInvalidViewCap)

	zero := 0
	_, err = ads.UpdateAd(ctx, ad.ID, port.AdPatch{Duration: &zero})
	require.ErrorIs(t, err, domain.ErrInvalidAd)

	got, err := ads.GetAd(ctx, ad.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, got.MaxViews, "rejected patches leave the ad untouched")
	assert.Equal(t, 30, got.Duration)

	_, err = ads.UpdateAd(ctx, 999, port.AdPatch{Title: &title})
	require.ErrorIs(t, err, domain.ErrAdNotFound)
	_, err = ads.GetAd(ctx, 999)
	require.ErrorIs(t, err, domain.ErrAdNotFound)
}

func TestAdsListEmpty(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ads := NewAds(env.store, env.clock, env.logger)

	for _, activeOnly := range []bool{true, false} {
		list, err := ads.ListAds(ctx, activeOnly)
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	}
}

func TestAdsListHidesExhausted(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	ads := NewAds(env.store, env.clock, env.logger)
	open := env.addAd(t, "0.15", 30, 10)
	full := env.addAd(t, "0.15", 30, 1)
	_, err := env.store.Ads().Update(ctx, full.ID, func(a *domain.Ad) error {
		a.CurrentViews = 1
		return nil
	})
	require.NoError(t, err)

	active, err := ads.ListAds(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, open.ID, active[0].ID)
}
