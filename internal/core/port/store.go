package port

import (
	"context"
	"errors"

	"adreward/internal/core/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicate    = errors.New("duplicate key")
	ErrUnknownIndex = errors.New("unknown index")
)

// Index names a secondary index of a table.
type Index string

const (
	IndexPhone    Index = "phone"
	IndexUsername Index = "username"
	IndexActive   Index = "is_active"
	IndexUserID   Index = "user_id"
	IndexAdID     Index = "ad_id"
	IndexDate     Index = "date"
)

// Table is the record store of one logical table. It is an outbound port;
// implementations must be safe for concurrent use.
type Table[T any] interface {
	// Get returns the record with id, or nil when there is none.
	Get(ctx context.Context, id int64) (*T, error)
	// GetAll returns every record ordered by id.
	GetAll(ctx context.Context) ([]T, error)
	// GetByIndex looks a record up through a unique index. It returns nil
	// when nothing matches.
	GetByIndex(ctx context.Context, index Index, value any) (*T, error)
	// GetAllByIndex returns all records whose index matches value.
	GetAllByIndex(ctx context.Context, index Index, value any) ([]T, error)
	// Add stores rec, writes the generated id back into it and returns it.
	// A unique index collision yields ErrDuplicate.
	Add(ctx context.Context, rec *T) (int64, error)
	// Update applies fn to the stored record and persists the result. An
	// error from fn aborts the update and is returned as is. It returns
	// ErrNotFound when id does not exist.
	Update(ctx context.Context, id int64, fn func(*T) error) (*T, error)
	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)
}

// Store groups the tables of the application.
type Store interface {
	Users() Table[domain.User]
	Ads() Table[domain.Ad]
	ViewRecords() Table[domain.ViewRecord]
	Earnings() Table[domain.Earning]
	Admins() Table[domain.Admin]
	DailyStats() Table[domain.DailyStat]

	// WithinTx runs fn against a transactional view of the store. When fn
	// returns an error every write made through tx is discarded. Calling
	// WithinTx on a transactional view runs fn in the same transaction.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
