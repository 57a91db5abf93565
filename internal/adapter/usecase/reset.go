package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"

	"adreward/internal/core/domain"
	"adreward/internal/core/port"
)

var errAlreadyReset = errors.New("daily reset already done")

// catchUpInterval is how often the scheduler retries a reset that the
// midnight job missed, e.g. because the host was asleep.
const catchUpInterval = time.Hour

var _ port.MaintenanceUseCase = (*DailyReset)(nil)

// DailyReset zeroes the per-day user counters once per calendar day.
type DailyReset struct {
	store  port.Store
	clock  clockwork.Clock
	loc    *time.Location
	logger *slog.Logger

	scheduler gocron.Scheduler
}

func NewDailyReset(store port.Store, clock clockwork.Clock, loc *time.Location, logger *slog.Logger) *DailyReset {
	return &DailyReset{store: store, clock: clock, loc: loc, logger: logger}
}

// Reset runs the maintenance for today's bucket. A second call on the same
// day reports Skipped and changes nothing.
func (d *DailyReset) Reset(ctx context.Context) (*port.ResetReport, error) {
	now := d.clock.Now()
	today := domain.DayBucket(now, d.loc)
	report := &port.ResetReport{Date: today}

	stat, err := ensureDailyStat(ctx, d.store, today, now)
	if err != nil {
		return nil, failure(d.logger, "ensure daily stat", err)
	}
	if stat.ResetAt != nil {
		report.Skipped = true
		return report, nil
	}

	var rolled int
	err = d.store.WithinTx(ctx, func(ctx context.Context, tx port.Store) error {
		rolled = 0
		_, err := tx.DailyStats().Update(ctx, stat.ID, func(s *domain.DailyStat) error {
			if s.ResetAt != nil {
				return errAlreadyReset
			}
			s.ResetAt = &now
			s.UpdatedAt = now
			return nil
		})
		if err != nil {
			return err
		}

		users, err := tx.Users().GetAll(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		for _, u := range users {
			if u.TodayDate == today {
				continue
			}
			_, err = tx.Users().Update(ctx, u.ID, func(u *domain.User) error {
				u.RollToday(today)
				return nil
			})
			if err != nil {
				return fmt.Errorf("reset user %d: %w", u.ID, err)
			}
			rolled++
		}
		return nil
	})
	if errors.Is(err, errAlreadyReset) {
		report.Skipped = true
		return report, nil
	}
	if err != nil {
		return nil, failure(d.logger, "daily reset", err)
	}
	report.UsersReset = rolled

	d.closeDay(ctx, domain.DayBucket(now.AddDate(0, 0, -1), d.loc))

	d.logger.Info("daily reset done", slog.String("date", today), slog.Int("users_reset", report.UsersReset))
	return report, nil
}

// closeDay stores the final completion rate of day. Failures are logged
// only; the rate can always be recomputed from the view records.
func (d *DailyReset) closeDay(ctx context.Context, day string) {
	stat, err := d.store.DailyStats().GetByIndex(ctx, port.IndexDate, day)
	if err != nil || stat == nil {
		if err != nil {
			d.logger.Error("get daily stat", slog.String("date", day), slog.Any("error", err))
		}
		return
	}

	records, err := d.store.ViewRecords().GetAll(ctx)
	if err != nil {
		d.logger.Error("list view records", slog.Any("error", err))
		return
	}
	var total, completed int64
	for _, r := range records {
		if domain.DayBucket(r.ViewedAt, d.loc) != day {
			continue
		}
		total++
		if r.Completed {
			completed++
		}
	}

	_, err = d.store.DailyStats().Update(ctx, stat.ID, func(s *domain.DailyStat) error {
		s.CompletionRate = domain.CompletionRate(completed, total)
		s.UpdatedAt = d.clock.Now()
		return nil
	})
	if err != nil {
		d.logger.Error("close daily stat", slog.String("date", day), slog.Any("error", err))
	}
}

// Start schedules the reset at every local midnight plus an hourly
// catch-up, and runs it once right away.
func (d *DailyReset) Start(ctx context.Context) error {
	s, err := gocron.NewScheduler(
		gocron.WithClock(d.clock),
		gocron.WithLocation(d.loc),
		gocron.WithLogger(d.logger),
	)
	if err != nil {
		return fmt.Errorf("new scheduler: %w", err)
	}

	task := gocron.NewTask(func() { d.run(ctx) })
	_, err = s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0))),
		task,
		gocron.WithName("daily-reset"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule daily reset: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(catchUpInterval),
		task,
		gocron.WithName("daily-reset-catch-up"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("schedule catch-up reset: %w", err)
	}

	d.scheduler = s
	s.Start()
	return nil
}

func (d *DailyReset) run(ctx context.Context) {
	if _, err := d.Reset(ctx); err != nil {
		d.logger.Error("scheduled daily reset", slog.Any("error", err))
	}
}

// Shutdown stops the scheduler and waits for a running reset to finish.
func (d *DailyReset) Shutdown() error {
	if d.scheduler == nil {
		return nil
	}
	return d.scheduler.Shutdown()
}
