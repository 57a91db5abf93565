package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"adreward/internal/core/domain"
	"adreward/internal/core/port"
)

const (
	serializationFailure = "40001"
	maxTxAttempts        = 3
)

var _ port.Store = (*Store)(nil)

// Store implements port.Store using pgxpool for PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
	db   querier
}

// NewStore returns a store backed by pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

func (s *Store) Users() port.Table[domain.User] {
	return &table[domain.User]{db: s.db, schema: userSchema}
}

func (s *Store) Ads() port.Table[domain.Ad] {
	return &table[domain.Ad]{db: s.db, schema: adSchema}
}

func (s *Store) ViewRecords() port.Table[domain.ViewRecord] {
	return &table[domain.ViewRecord]{db: s.db, schema: recordSchema}
}

func (s *Store) Earnings() port.Table[domain.Earning] {
	return &table[domain.Earning]{db: s.db, schema: earningSchema}
}

func (s *Store) Admins() port.Table[domain.Admin] {
	return &table[domain.Admin]{db: s.db, schema: adminSchema}
}

func (s *Store) DailyStats() port.Table[domain.DailyStat] {
	return &table[domain.DailyStat]{db: s.db, schema: dailyStatSchema}
}

// WithinTx runs fn in a serializable transaction, retrying it when
// PostgreSQL reports a serialization failure. Inside a transaction it
// simply calls fn.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.Store) error) error {
	if s.pool == nil {
		return fn(ctx, s)
	}

	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		if err = s.runTx(ctx, fn); !isSerializationFailure(err) {
			return err
		}
	}
	return err
}

func (s *Store) runTx(ctx context.Context, fn func(ctx context.Context, tx port.Store) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	return fn(ctx, &Store{db: tx})
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == serializationFailure
}
