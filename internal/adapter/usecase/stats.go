package usecase

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"adreward/internal/core/domain"
	"adreward/internal/core/port"
)

const (
	trendDays    = 30
	onlineWindow = 15 * time.Minute
	trendHours   = 24
)

var _ port.StatsUseCase = (*Stats)(nil)

// Stats derives read-only rollups by scanning the stored records. Nothing
// is cached; every call recomputes from scratch.
type Stats struct {
	store  port.Store
	clock  clockwork.Clock
	loc    *time.Location
	logger *slog.Logger
}

func NewStats(store port.Store, clock clockwork.Clock, loc *time.Location, logger *slog.Logger) *Stats {
	return &Stats{store: store, clock: clock, loc: loc, logger: logger}
}

func (s *Stats) UserStats(ctx context.Context, userID int64) (*port.UserStats, error) {
	user, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		return nil, failure(s.logger, "get user", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	earnings, err := s.store.Earnings().GetAllByIndex(ctx, port.IndexUserID, userID)
	if err != nil {
		return nil, failure(s.logger, "list earnings", err)
	}
	records, err := s.store.ViewRecords().GetAllByIndex(ctx, port.IndexUserID, userID)
	if err != nil {
		return nil, failure(s.logger, "list view records", err)
	}

	now := s.clock.Now()
	today := domain.DayBucket(now, s.loc)
	views := s.countViews(records, today)

	average := decimal.Zero
	if views.completed > 0 {
		average = user.TotalEarnings.DivRound(decimal.NewFromInt(views.completed), 2)
	}

	return &port.UserStats{
		UserID:         user.ID,
		Username:       user.Username,
		Balance:        user.Balance,
		TotalEarnings:  user.TotalEarnings,
		TodayEarnings:  sumEarnings(earnings, today),
		TotalViews:     views.total,
		TodayViews:     views.today,
		CompletedViews: views.completed,
		CompletionRate: domain.CompletionRate(views.completed, views.total),
		AveragePerView: average,
		DailyEarnings:  s.dailyEarnings(earnings, now),
		LastActive:     user.LastActive,
		CreatedAt:      user.CreatedAt,
	}, nil
}

func (s *Stats) PlatformStats(ctx context.Context) (*port.PlatformStats, error) {
	users, err := s.store.Users().Count(ctx)
	if err != nil {
		return nil, failure(s.logger, "count users", err)
	}
	activeAds, err := s.activeAds(ctx)
	if err != nil {
		return nil, failure(s.logger, "list active ads", err)
	}
	earnings, err := s.store.Earnings().GetAll(ctx)
	if err != nil {
		return nil, failure(s.logger, "list earnings", err)
	}
	records, err := s.store.ViewRecords().GetAll(ctx)
	if err != nil {
		return nil, failure(s.logger, "list view records", err)
	}

	now := s.clock.Now()
	today := domain.DayBucket(now, s.loc)
	views := s.countViews(records, today)

	total := decimal.Zero
	for _, e := range earnings {
		total = total.Add(e.Amount)
	}

	return &port.PlatformStats{
		Users:          users,
		ActiveAds:      activeAds,
		TotalEarnings:  total,
		TodayEarnings:  sumEarnings(earnings, today),
		TotalViews:     views.total,
		TodayViews:     views.today,
		CompletedViews: views.completed,
		CompletionRate: domain.CompletionRate(views.completed, views.total),
		DailyEarnings:  s.dailyEarnings(earnings, now),
	}, nil
}

func (s *Stats) AdStats(ctx context.Context, adID int64) (*port.AdStats, error) {
	ad, err := s.store.Ads().Get(ctx, adID)
	if err != nil {
		return nil, failure(s.logger, "get ad", err)
	}
	if ad == nil {
		return nil, domain.ErrAdNotFound
	}
	records, err := s.store.ViewRecords().GetAllByIndex(ctx, port.IndexAdID, adID)
	if err != nil {
		return nil, failure(s.logger, "list view records", err)
	}
	st := s.adStats(*ad, records, domain.DayBucket(s.clock.Now(), s.loc))
	return &st, nil
}

// AdPerformance returns the stats of every ad, best earning first.
func (s *Stats) AdPerformance(ctx context.Context) ([]port.AdStats, error) {
	ads, err := s.store.Ads().GetAll(ctx)
	if err != nil {
		return nil, failure(s.logger, "list ads", err)
	}
	records, err := s.store.ViewRecords().GetAll(ctx)
	if err != nil {
		return nil, failure(s.logger, "list view records", err)
	}

	byAd := make(map[int64][]domain.ViewRecord, len(ads))
	for _, r := range records {
		byAd[r.AdID] = append(byAd[r.AdID], r)
	}

	today := domain.DayBucket(s.clock.Now(), s.loc)
	out := make([]port.AdStats, 0, len(ads))
	for _, ad := range ads {
		out = append(out, s.adStats(ad, byAd[ad.ID], today))
	}
	slices.SortStableFunc(out, func(a, b port.AdStats) int {
		return b.TotalEarnings.Cmp(a.TotalEarnings)
	})
	return out, nil
}

func (s *Stats) adStats(ad domain.Ad, records []domain.ViewRecord, today string) port.AdStats {
	st := port.AdStats{
		AdID:           ad.ID,
		Title:          ad.Title,
		TotalEarnings:  decimal.Zero,
		TodayEarnings:  decimal.Zero,
		MaxViews:       ad.MaxViews,
		CurrentViews:   ad.CurrentViews,
		RemainingViews: ad.RemainingViews(),
		IsActive:       ad.IsActive,
	}
	for _, r := range records {
		st.TotalViews++
		isToday := domain.DayBucket(r.ViewedAt, s.loc) == today
		if isToday {
			st.TodayViews++
		}
		if !r.Completed {
			continue
		}
		st.CompletedViews++
		st.TotalEarnings = st.TotalEarnings.Add(r.Reward)
		if isToday {
			st.TodayEarnings = st.TodayEarnings.Add(r.Reward)
		}
	}
	st.CompletionRate = domain.CompletionRate(st.CompletedViews, st.TotalViews)
	return st
}

func (s *Stats) RealTime(ctx context.Context) (*port.RealTimeStats, error) {
	now := s.clock.Now()
	today := domain.DayBucket(now, s.loc)

	stat, err := s.store.DailyStats().GetByIndex(ctx, port.IndexDate, today)
	if err != nil {
		return nil, failure(s.logger, "get daily stat", err)
	}
	if stat == nil {
		fresh := domain.NewDailyStat(today, now)
		stat = &fresh
	}

	users, err := s.store.Users().GetAll(ctx)
	if err != nil {
		return nil, failure(s.logger, "list users", err)
	}
	var online int64
	for _, u := range users {
		if now.Sub(u.LastActive) <= onlineWindow {
			online++
		}
	}

	activeAds, err := s.activeAds(ctx)
	if err != nil {
		return nil, failure(s.logger, "list active ads", err)
	}

	records, err := s.store.ViewRecords().GetAll(ctx)
	if err != nil {
		return nil, failure(s.logger, "list view records", err)
	}
	current := now.Truncate(time.Hour)
	first := current.Add(-(trendHours - 1) * time.Hour)
	trend := make([]port.HourlyViews, trendHours)
	for i := range trend {
		trend[i].Hour = first.Add(time.Duration(i) * time.Hour)
	}
	var lastHour int64
	for _, r := range records {
		if age := now.Sub(r.ViewedAt); age >= 0 && age <= time.Hour {
			lastHour++
		}
		if r.ViewedAt.Before(first) || r.ViewedAt.After(now) {
			continue
		}
		trend[int(r.ViewedAt.Sub(first)/time.Hour)].Views++
	}

	return &port.RealTimeStats{
		TodayViews:    stat.TotalViews,
		TodayEarnings: stat.TotalEarnings,
		OnlineUsers:   online,
		ActiveAds:     activeAds,
		HourViews:     lastHour,
		HourlyTrend:   trend,
		Timestamp:     now,
	}, nil
}

// IncomeReport groups the earnings of the inclusive day range [from, to].
func (s *Stats) IncomeReport(ctx context.Context, from, to string) (*port.IncomeReport, error) {
	start, err := domain.ParseDay(from, s.loc)
	if err != nil {
		return nil, domain.ErrInvalidDateRange
	}
	end, err := domain.ParseDay(to, s.loc)
	if err != nil || end.Before(start) {
		return nil, domain.ErrInvalidDateRange
	}

	earnings, err := s.store.Earnings().GetAll(ctx)
	if err != nil {
		return nil, failure(s.logger, "list earnings", err)
	}

	report := &port.IncomeReport{
		From:          from,
		To:            to,
		TotalEarnings: decimal.Zero,
		ByType:        make(map[domain.EarningType]port.IncomeTotal),
	}
	byDate := make(map[string]*port.IncomeByDate)
	for _, e := range earnings {
		// Day buckets compare correctly as strings.
		if e.Date < from || e.Date > to {
			continue
		}
		report.TotalEarnings = report.TotalEarnings.Add(e.Amount)
		report.TotalViews++

		t := report.ByType[e.Type]
		t.Count++
		t.Total = t.Total.Add(e.Amount)
		report.ByType[e.Type] = t

		d, ok := byDate[e.Date]
		if !ok {
			d = &port.IncomeByDate{Date: e.Date}
			byDate[e.Date] = d
		}
		d.Count++
		d.Total = d.Total.Add(e.Amount)
	}

	report.ByDate = make([]port.IncomeByDate, 0, len(byDate))
	for _, d := range byDate {
		report.ByDate = append(report.ByDate, *d)
	}
	slices.SortFunc(report.ByDate, func(a, b port.IncomeByDate) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return report, nil
}

type viewCounts struct {
	total     int64
	today     int64
	completed int64
}

func (s *Stats) countViews(records []domain.ViewRecord, today string) viewCounts {
	var c viewCounts
	for _, r := range records {
		c.total++
		if domain.DayBucket(r.ViewedAt, s.loc) == today {
			c.today++
		}
		if r.Completed {
			c.completed++
		}
	}
	return c
}

func (s *Stats) activeAds(ctx context.Context) (int64, error) {
	ads, err := s.store.Ads().GetAllByIndex(ctx, port.IndexActive, true)
	if err != nil {
		return 0, err
	}
	return int64(len(ads)), nil
}

// dailyEarnings returns one entry per day of the trailing window ending
// today, oldest first, days without earnings included.
func (s *Stats) dailyEarnings(earnings []domain.Earning, now time.Time) []port.DailyEarning {
	y, m, d := now.In(s.loc).Date()
	out := make([]port.DailyEarning, trendDays)
	index := make(map[string]int, trendDays)
	for i := range out {
		day := time.Date(y, m, d-(trendDays-1-i), 0, 0, 0, 0, s.loc).Format(domain.DayLayout)
		out[i] = port.DailyEarning{Date: day, Earnings: decimal.Zero}
		index[day] = i
	}
	for _, e := range earnings {
		if i, ok := index[e.Date]; ok {
			out[i].Earnings = out[i].Earnings.Add(e.Amount)
		}
	}
	return out
}

func sumEarnings(earnings []domain.Earning, day string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range earnings {
		if e.Date == day {
			total = total.Add(e.Amount)
		}
	}
	return total
}
