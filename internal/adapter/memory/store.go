package memory

import (
	"context"
	"sync"

	"adreward/internal/core/domain"
	"adreward/internal/core/port"
)

// state is the full content of the store.
type state struct {
	users      *rows[domain.User]
	ads        *rows[domain.Ad]
	records    *rows[domain.ViewRecord]
	earnings   *rows[domain.Earning]
	admins     *rows[domain.Admin]
	dailyStats *rows[domain.DailyStat]
}

func (s *state) clone() state {
	return state{
		users:      s.users.clone(),
		ads:        s.ads.clone(),
		records:    s.records.clone(),
		earnings:   s.earnings.clone(),
		admins:     s.admins.clone(),
		dailyStats: s.dailyStats.clone(),
	}
}

var _ port.Store = (*Store)(nil)

// Store implements port.Store in process memory. All tables share one
// mutex; a transactional view holds it for the whole transaction.
type Store struct {
	mu    *sync.Mutex
	state *state
	inTx  bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		mu: &sync.Mutex{},
		state: &state{
			users:      newRows[domain.User](),
			ads:        newRows[domain.Ad](),
			records:    newRows[domain.ViewRecord](),
			earnings:   newRows[domain.Earning](),
			admins:     newRows[domain.Admin](),
			dailyStats: newRows[domain.DailyStat](),
		},
	}
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithinTx runs fn with exclusive access to the store and restores the
// previous content when fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	tx := &Store{mu: s.mu, state: s.state, inTx: true}
	if err := fn(ctx, tx); err != nil {
		*s.state = snapshot
		return err
	}
	return nil
}

func (s *Store) Users() port.Table[domain.User] {
	return &table[domain.User]{store: s, schema: userSchema, rows: func(st *state) *rows[domain.User] { return st.users }}
}

func (s *Store) Ads() port.Table[domain.Ad] {
	return &table[domain.Ad]{store: s, schema: adSchema, rows: func(st *state) *rows[domain.Ad] { return st.ads }}
}

func (s *Store) ViewRecords() port.Table[domain.ViewRecord] {
	return &table[domain.ViewRecord]{store: s, schema: recordSchema, rows: func(st *state) *rows[domain.ViewRecord] { return st.records }}
}

func (s *Store) Earnings() port.Table[domain.Earning] {
	return &table[domain.Earning]{store: s, schema: earningSchema, rows: func(st *state) *rows[domain.Earning] { return st.earnings }}
}

func (s *Store) Admins() port.Table[domain.Admin] {
	return &table[domain.Admin]{store: s, schema: adminSchema, rows: func(st *state) *rows[domain.Admin] { return st.admins }}
}

func (s *Store) DailyStats() port.Table[domain.DailyStat] {
	return &table[domain.DailyStat]{store: s, schema: dailyStatSchema, rows: func(st *state) *rows[domain.DailyStat] { return st.dailyStats }}
}

var userSchema = &schema[domain.User]{
	name:  "users",
	setID: func(u *domain.User, id int64) { u.ID = id },
	indexes: map[port.Index]index[domain.User]{
		port.IndexPhone:    {unique: true, key: func(u *domain.User) any { return u.Phone }},
		port.IndexUsername: {key: func(u *domain.User) any { return u.Username }},
	},
}

var adSchema = &schema[domain.Ad]{
	name:  "ads",
	setID: func(a *domain.Ad, id int64) { a.ID = id },
	indexes: map[port.Index]index[domain.Ad]{
		port.IndexActive: {key: func(a *domain.Ad) any { return a.IsActive }},
	},
}

var recordSchema = &schema[domain.ViewRecord]{
	name:  "view_records",
	setID: func(r *domain.ViewRecord, id int64) { r.ID = id },
	indexes: map[port.Index]index[domain.ViewRecord]{
		port.IndexUserID: {key: func(r *domain.ViewRecord) any { return r.UserID }},
		port.IndexAdID:   {key: func(r *domain.ViewRecord) any { return r.AdID }},
	},
}

var earningSchema = &schema[domain.Earning]{
	name:  "earnings",
	setID: func(e *domain.Earning, id int64) { e.ID = id },
	indexes: map[port.Index]index[domain.Earning]{
		port.IndexUserID: {key: func(e *domain.Earning) any { return e.UserID }},
		port.IndexDate:   {key: func(e *domain.Earning) any { return e.Date }},
	},
}

var adminSchema = &schema[domain.Admin]{
	name:  "admins",
	setID: func(a *domain.Admin, id int64) { a.ID = id },
	indexes: map[port.Index]index[domain.Admin]{
		port.IndexUsername: {unique: true, key: func(a *domain.Admin) any { return a.Username }},
	},
}

var dailyStatSchema = &schema[domain.DailyStat]{
	name:  "daily_stats",
	setID: func(d *domain.DailyStat, id int64) { d.ID = id },
	indexes: map[port.Index]index[domain.DailyStat]{
		port.IndexDate: {unique: true, key: func(d *domain.DailyStat) any { return d.Date }},
	},
}
