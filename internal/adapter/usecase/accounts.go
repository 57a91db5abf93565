package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"math/big"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"adreward/internal/core/domain"
	"adreward/internal/core/port"
)

var phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

const (
	minPasswordLen   = 6
	maxPasswordLen   = 20
	maxPasswordBytes = 72 // bcrypt input limit
	maxNicknameLen   = 32

	inviteCodeLen   = 6
	inviteCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var _ port.AccountUseCase = (*Accounts)(nil)

// Accounts manages user registration, login and profiles, plus admin
// logins.
type Accounts struct {
	store  port.Store
	hasher *PasswordHasher
	clock  clockwork.Clock
	loc    *time.Location
	logger *slog.Logger
}

func NewAccounts(store port.Store, hasher *PasswordHasher, clock clockwork.Clock, loc *time.Location, logger *slog.Logger) *Accounts {
	return &Accounts{store: store, hasher: hasher, clock: clock, loc: loc, logger: logger}
}

func (a *Accounts) Register(ctx context.Context, req port.Registration) (*domain.User, error) {
	phone := strings.TrimSpace(req.Phone)
	if !phonePattern.MatchString(phone) {
		return nil, domain.ErrInvalidPhone
	}
	if n := utf8.RuneCountInString(req.Password); n < minPasswordLen || n > maxPasswordLen || len(req.Password) > maxPasswordBytes {
		return nil, domain.ErrInvalidPassword
	}
	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		nickname = "user_" + phone[len(phone)-4:]
	}
	if utf8.RuneCountInString(nickname) > maxNicknameLen {
		return nil, domain.ErrInvalidNickname
	}

	existing, err := a.store.Users().GetByIndex(ctx, port.IndexPhone, phone)
	if err != nil {
		return nil, failure(a.logger, "get user by phone", err)
	}
	if existing != nil {
		return nil, domain.ErrPhoneTaken
	}

	hash, err := a.hasher.Hash(req.Password)
	if err != nil {
		return nil, failure(a.logger, "hash password", err)
	}
	code, err := inviteCode()
	if err != nil {
		return nil, failure(a.logger, "generate invite code", err)
	}

	now := a.clock.Now()
	user := domain.User{
		Phone:         phone,
		Username:      nickname,
		PasswordHash:  hash,
		Balance:       decimal.Zero,
		TotalEarnings: decimal.Zero,
		TodayEarnings: decimal.Zero,
		TodayDate:     domain.DayBucket(now, a.loc),
		Level:         1,
		InviteCode:    code,
		Status:        domain.UserActive,
		LastActive:    now,
		CreatedAt:     now,
	}
	if _, err = a.store.Users().Add(ctx, &user); err != nil {
		if errors.Is(err, port.ErrDuplicate) {
			return nil, domain.ErrPhoneTaken
		}
		return nil, failure(a.logger, "add user", err)
	}

	a.logger.Info("user registered", slog.Int64("user_id", user.ID))
	return &user, nil
}

func (a *Accounts) Login(ctx context.Context, phone, password string) (*domain.User, error) {
	user, err := a.store.Users().GetByIndex(ctx, port.IndexPhone, strings.TrimSpace(phone))
	if err != nil {
		return nil, failure(a.logger, "get user by phone", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err = a.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, domain.ErrWrongPassword
		}
		return nil, failure(a.logger, "compare password", err)
	}
	if user.Status != domain.UserActive {
		return nil, domain.ErrUserDisabled
	}

	return a.update(ctx, user.ID, "touch user", func(u *domain.User) error {
		u.LastActive = a.clock.Now()
		return nil
	})
}

func (a *Accounts) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := a.store.Users().Get(ctx, userID)
	if err != nil {
		return nil, failure(a.logger, "get user", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (a *Accounts) UpdateProfile(ctx context.Context, userID int64, nickname string) (*domain.User, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" || utf8.RuneCountInString(nickname) > maxNicknameLen {
		return nil, domain.ErrInvalidNickname
	}
	return a.update(ctx, userID, "update profile", func(u *domain.User) error {
		u.Username = nickname
		return nil
	})
}

func (a *Accounts) SetStatus(ctx context.Context, userID int64, status domain.UserStatus) (*domain.User, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	user, err := a.update(ctx, userID, "set user status", func(u *domain.User) error {
		u.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.logger.Info("user status changed", slog.Int64("user_id", userID), slog.String("status", string(status)))
	return user, nil
}

func (a *Accounts) AdminLogin(ctx context.Context, username, password string) (*domain.Admin, error) {
	admin, err := a.store.Admins().GetByIndex(ctx, port.IndexUsername, username)
	if err != nil {
		return nil, failure(a.logger, "get admin", err)
	}
	if admin == nil || a.hasher.Compare(admin.PasswordHash, password) != nil {
		return nil, domain.ErrAdminUnauthorized
	}

	now := a.clock.Now()
	admin, err = a.store.Admins().Update(ctx, admin.ID, func(ad *domain.Admin) error {
		ad.LastLogin = &now
		return nil
	})
	if err != nil {
		return nil, failure(a.logger, "touch admin", err)
	}
	return admin, nil
}

func (a *Accounts) update(ctx context.Context, userID int64, op string, fn func(*domain.User) error) (*domain.User, error) {
	user, err := a.store.Users().Update(ctx, userID, fn)
	if errors.Is(err, port.ErrNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, failure(a.logger, op, err)
	}
	return user, nil
}

func inviteCode() (string, error) {
	b := make([]byte, inviteCodeLen)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(inviteCodeChars))))
		if err != nil {
			return "", err
		}
		b[i] = inviteCodeChars[n.Int64()]
	}
	return string(b), nil
}
