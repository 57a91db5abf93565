package usecase

import (
	"sync"
	"time"

	"adreward/internal/core/domain"
	"adreward/internal/core/port"
)

// Session is the in-memory state of one user's attempt to watch one ad.
// It is owned by the Viewer and discarded once the attempt ends.
type Session struct {
	mu sync.Mutex

	token  string
	userID int64
	ad     domain.Ad

	state     domain.ViewState
	clickedAt time.Time
	remaining int

	// ticking is set once RunCountdown owns the countdown.
	ticking bool

	ended bool
	done  chan struct{}
}

func newSession(token string, userID int64, ad domain.Ad) *Session {
	return &Session{
		token:     token,
		userID:    userID,
		ad:        ad,
		state:     domain.ViewDisplayed,
		remaining: ad.Duration,
		done:      make(chan struct{}),
	}
}

// click moves a displayed session to clicked and reports whether it did.
func (s *Session) click(now time.Time) bool {
	if s.state != domain.ViewDisplayed {
		return false
	}
	s.state = domain.ViewClicked
	s.clickedAt = now
	s.remaining = s.ad.Duration
	return true
}

// tick counts one second down and reports whether the countdown expired.
func (s *Session) tick() bool {
	if s.state != domain.ViewClicked {
		return false
	}
	if s.remaining > 0 {
		s.remaining--
	}
	return s.remaining == 0
}

// end closes the session for good. Only the first call returns true.
func (s *Session) end(state domain.ViewState) bool {
	if s.ended {
		return false
	}
	s.ended = true
	s.state = state
	close(s.done)
	return true
}

func (s *Session) progress(now time.Time) port.ViewProgress {
	p := port.ViewProgress{
		Token:     s.token,
		AdID:      s.ad.ID,
		State:     s.state,
		Duration:  s.ad.Duration,
		Remaining: s.remaining,
	}
	if !s.clickedAt.IsZero() {
		p.ElapsedSeconds = now.Sub(s.clickedAt).Seconds()
	}
	if s.ad.Duration > 0 {
		p.Progress = float64(s.ad.Duration-s.remaining) / float64(s.ad.Duration) * 100
	}
	return p
}
