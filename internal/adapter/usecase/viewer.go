package usecase

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"adreward/internal/core/domain"
	"adreward/internal/core/port"
)

var _ port.ViewUseCase = (*Viewer)(nil)

// Viewer implements port.ViewUseCase. It keeps a single session slot per
// user; starting a new view replaces whatever session the user had.
type Viewer struct {
	store  port.Store
	ledger *Ledger
	clock  clockwork.Clock
	logger *slog.Logger

	// minWatchRatio is the fraction of an ad's duration that must elapse
	// between click and completion for the view to be credited.
	minWatchRatio float64

	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewViewer creates a viewer crediting completed views through ledger.
func NewViewer(store port.Store, ledger *Ledger, clock clockwork.Clock, logger *slog.Logger, minWatchRatio float64) *Viewer {
	return &Viewer{
		store:         store,
		ledger:        ledger,
		clock:         clock,
		logger:        logger,
		minWatchRatio: minWatchRatio,
		sessions:      make(map[int64]*Session),
	}
}

// StartView opens a view session after checking the ad rules in order,
// then the viewer's account. Any unfinished session of the user is dropped
// without a record.
func (v *Viewer) StartView(ctx context.Context, adID, userID int64) (*port.ViewStart, error) {
	ad, err := v.store.Ads().Get(ctx, adID)
	if err != nil {
		return nil, failure(v.logger, "get ad", err)
	}
	switch {
	case ad == nil:
		return nil, domain.ErrAdNotFound
	case !ad.IsActive:
		return nil, domain.ErrAdInactive
	case !ad.HasCapacity():
		return nil, domain.ErrViewCapReached
	}

	viewed, err := hasViewed(ctx, v.store, userID, adID)
	if err != nil {
		return nil, failure(v.logger, "check view records", err)
	}
	if viewed {
		return nil, domain.ErrAlreadyViewed
	}

	user, err := v.store.Users().Get(ctx, userID)
	if err != nil {
		return nil, failure(v.logger, "get user", err)
	}
	switch {
	case user == nil:
		return nil, domain.ErrUserNotFound
	case user.Status != domain.UserActive:
		return nil, domain.ErrUserDisabled
	}

	s := newSession(uuid.NewString(), userID, *ad)

	v.mu.Lock()
	prev := v.sessions[userID]
	v.sessions[userID] = s
	v.mu.Unlock()

	if prev != nil {
		prev.mu.Lock()
		abandoned := prev.end(domain.ViewCancelled)
		prev.mu.Unlock()
		if abandoned {
			v.logger.Warn("discarding unfinished view session",
				slog.Int64("user_id", userID),
				slog.String("token", prev.token),
				slog.Int64("ad_id", prev.ad.ID))
		}
	}

	v.logger.Info("view started",
		slog.Int64("user_id", userID),
		slog.Int64("ad_id", adID),
		slog.String("token", s.token))
	return &port.ViewStart{Token: s.token, Ad: *ad, Duration: ad.Duration}, nil
}

// hasViewed scans the user's records for any attempt on adID, successful
// or not.
func hasViewed(ctx context.Context, store port.Store, userID, adID int64) (bool, error) {
	records, err := store.ViewRecords().GetAllByIndex(ctx, port.IndexUserID, userID)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(records, func(r domain.ViewRecord) bool {
		return r.AdID == adID
	}), nil
}

func (v *Viewer) Click(_ context.Context, userID int64) (*port.ViewProgress, error) {
	s, err := v.current(userID)
	if err != nil {
		return nil, err
	}

	now := v.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return nil, domain.ErrNoActiveSession
	}
	started := s.click(now)
	if started {
		v.logger.Info("ad clicked", slog.Int64("user_id", userID), slog.Int64("ad_id", s.ad.ID))
	}
	p := s.progress(now)
	p.Started = started
	return &p, nil
}

func (v *Viewer) Tick(ctx context.Context, userID int64) (*port.ViewProgress, error) {
	s, err := v.current(userID)
	if err != nil {
		return nil, err
	}
	return v.tick(ctx, s, false)
}

// tick counts the session down by one second. Ticks from outside the
// countdown loop are refused once the loop owns the session.
func (v *Viewer) tick(ctx context.Context, s *Session, countdown bool) (*port.ViewProgress, error) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return nil, domain.ErrNoActiveSession
	}
	if s.ticking && !countdown {
		s.mu.Unlock()
		return nil, domain.ErrCountdownRunning
	}
	expired := s.tick()
	p := s.progress(v.clock.Now())
	s.mu.Unlock()

	if !expired {
		return &p, nil
	}

	res, err := v.complete(ctx, s)
	if err != nil {
		return nil, err
	}
	p.State = domain.ViewCompleted
	p.Result = res
	return &p, nil
}

func (v *Viewer) CompleteView(ctx context.Context, userID int64) (*port.ViewResult, error) {
	s, err := v.current(userID)
	if err != nil {
		return nil, err
	}
	return v.complete(ctx, s)
}

// complete finalizes a clicked session. The session is ended before any
// write so a concurrent completion of the same session gets
// ErrNoActiveSession instead of a second credit.
func (v *Viewer) complete(ctx context.Context, s *Session) (*port.ViewResult, error) {
	now := v.clock.Now()

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return nil, domain.ErrNoActiveSession
	}
	if s.state != domain.ViewClicked {
		s.mu.Unlock()
		return nil, domain.ErrNotClicked
	}
	dwell := now.Sub(s.clickedAt)
	watched := dwell >= s.ad.MinWatch(v.minWatchRatio)
	if watched {
		s.end(domain.ViewCompleted)
	} else {
		s.end(domain.ViewCancelled)
	}
	userID, ad := s.userID, s.ad
	s.mu.Unlock()
	v.release(s)

	log := v.logger.With(
		slog.Int64("user_id", userID),
		slog.Int64("ad_id", ad.ID),
		slog.String("token", s.token),
		slog.Duration("dwell", dwell))

	if !watched {
		log.Info("view rejected: insufficient watch time")
		v.recordFailure(ctx, userID, ad, now)
		return nil, domain.ErrInsufficientWatchTime
	}

	res, err := v.credit(ctx, userID, ad, now)
	if err != nil {
		s.mu.Lock()
		s.state = domain.ViewCancelled
		s.mu.Unlock()
		v.recordFailure(ctx, userID, ad, now)
		return nil, failure(log, "complete view", err)
	}

	log.Info("view completed", slog.String("reward", res.Reward.String()))
	return res, nil
}

// credit reserves one view on the ad, stores the completed record and
// pays the reward, all in one transaction. A record of the pair committed
// since StartView makes it fail with ErrAlreadyViewed.
func (v *Viewer) credit(ctx context.Context, userID int64, ad domain.Ad, now time.Time) (*port.ViewResult, error) {
	if _, err := ensureDailyStat(ctx, v.store, v.ledger.day(now), now); err != nil {
		return nil, err
	}

	var res *port.ViewResult
	err := v.store.WithinTx(ctx, func(ctx context.Context, tx port.Store) error {
		viewed, err := hasViewed(ctx, tx, userID, ad.ID)
		if err != nil {
			return err
		}
		if viewed {
			return domain.ErrAlreadyViewed
		}

		_, err = tx.Ads().Update(ctx, ad.ID, func(a *domain.Ad) error {
			if !a.HasCapacity() {
				return domain.ErrViewCapReached
			}
			a.CurrentViews++
			a.UpdatedAt = now
			return nil
		})
		if errors.Is(err, port.ErrNotFound) {
			return domain.ErrAdNotFound
		}
		if err != nil {
			return err
		}

		rec := domain.ViewRecord{
			UserID:    userID,
			AdID:      ad.ID,
			ViewedAt:  now,
			Completed: true,
			Duration:  ad.Duration,
			Reward:    ad.Reward,
			AdTitle:   ad.Title,
		}
		if _, err = tx.ViewRecords().Add(ctx, &rec); err != nil {
			return err
		}

		c, err := v.ledger.apply(ctx, tx, userID, ad.Reward, ad.ID, now)
		if err != nil {
			return err
		}
		res = &port.ViewResult{AdID: ad.ID, RecordID: rec.ID, Reward: ad.Reward, Balance: c.Balance}
		return nil
	})
	return res, err
}

// recordFailure stores a failed attempt unless the pair already has a
// record. Errors are only logged: the caller is already reporting a
// failure of its own.
func (v *Viewer) recordFailure(ctx context.Context, userID int64, ad domain.Ad, now time.Time) {
	err := v.store.WithinTx(ctx, func(ctx context.Context, tx port.Store) error {
		viewed, err := hasViewed(ctx, tx, userID, ad.ID)
		if err != nil || viewed {
			return err
		}
		rec := domain.ViewRecord{
			UserID:   userID,
			AdID:     ad.ID,
			ViewedAt: now,
			Reward:   decimal.Zero,
			AdTitle:  ad.Title,
		}
		_, err = tx.ViewRecords().Add(ctx, &rec)
		return err
	})
	if err != nil {
		v.logger.Error("record failed view",
			slog.Int64("user_id", userID),
			slog.Int64("ad_id", ad.ID),
			slog.Any("error", err))
	}
}

// CancelView clears the user's slot. A failed record is written only when
// the ad had been clicked. A completion already in flight is left alone.
func (v *Viewer) CancelView(ctx context.Context, userID int64) error {
	v.mu.Lock()
	s := v.sessions[userID]
	delete(v.sessions, userID)
	v.mu.Unlock()

	if s == nil {
		return domain.ErrNoActiveSession
	}

	s.mu.Lock()
	clicked := s.state == domain.ViewClicked
	cancelled := s.end(domain.ViewCancelled)
	ad := s.ad
	s.mu.Unlock()

	if !cancelled {
		return nil
	}
	if clicked {
		v.recordFailure(ctx, userID, ad, v.clock.Now())
	}
	v.logger.Info("view cancelled",
		slog.Int64("user_id", userID),
		slog.Int64("ad_id", ad.ID),
		slog.Bool("clicked", clicked))
	return nil
}

func (v *Viewer) Session(userID int64) (*port.ViewProgress, error) {
	s, err := v.current(userID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.progress(v.clock.Now())
	return &p, nil
}

// RunCountdown ticks the user's current session once per second of the
// viewer's clock. It returns nil when the session ends and ctx.Err() when
// ctx is done first. A session already counted down by another call is
// left to it.
func (v *Viewer) RunCountdown(ctx context.Context, userID int64) error {
	s, err := v.current(userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	owned := s.ticking
	s.ticking = true
	s.mu.Unlock()
	if owned {
		return nil
	}

	ticker := v.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case <-ticker.Chan():
			p, err := v.tick(ctx, s, true)
			if errors.Is(err, domain.ErrNoActiveSession) {
				return nil
			}
			if err != nil {
				return err
			}
			if p.Result != nil {
				return nil
			}
		}
	}
}

func (v *Viewer) current(userID int64) (*Session, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	s, ok := v.sessions[userID]
	if !ok {
		return nil, domain.ErrNoActiveSession
	}
	return s, nil
}

// release frees the user's slot if it still holds s.
func (v *Viewer) release(s *Session) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.sessions[s.userID] == s {
		delete(v.sessions, s.userID)
	}
}
