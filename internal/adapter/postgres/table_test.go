package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adreward/internal/core/port"
)

func TestSchemaSQL(t *testing.T) {
	assert.Equal(t,
		"SELECT id, user_id, ad_id, viewed_at, completed, duration, reward, ad_title FROM view_records",
		recordSchema.selectSQL())
	assert.Equal(t,
		"INSERT INTO admins (username, password_hash, role, created_at, last_login) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		adminSchema.insertSQL())
	assert.Equal(t,
		"UPDATE admins SET username = $1, password_hash = $2, role = $3, created_at = $4, last_login = $5 WHERE id = $6",
		adminSchema.updateSQL())
}

func TestSchemaColumnsMatchValues(t *testing.T) {
	assert.Len(t, userSchema.values(newRecord(userSchema)), len(userSchema.columns))
	assert.Len(t, adSchema.values(newRecord(adSchema)), len(adSchema.columns))
	assert.Len(t, recordSchema.values(newRecord(recordSchema)), len(recordSchema.columns))
	assert.Len(t, earningSchema.values(newRecord(earningSchema)), len(earningSchema.columns))
	assert.Len(t, adminSchema.values(newRecord(adminSchema)), len(adminSchema.columns))
	assert.Len(t, dailyStatSchema.values(newRecord(dailyStatSchema)), len(dailyStatSchema.columns))
}

func newRecord[T any](*schema[T]) *T {
	return new(T)
}

func TestIndexLookup(t *testing.T) {
	tbl := &table[struct{}]{schema: &schema[struct{}]{
		table:   "things",
		indexes: map[port.Index]index{port.IndexUserID: {column: "user_id"}},
	}}

	_, err := tbl.GetByIndex(context.Background(), port.IndexUserID, 1)
	assert.ErrorIs(t, err, port.ErrUnknownIndex)

	_, err = tbl.GetAllByIndex(context.Background(), port.IndexPhone, "x")
	assert.ErrorIs(t, err, port.ErrUnknownIndex)
}

func TestTranslate(t *testing.T) {
	err := translate(fmt.Errorf("insert: %w", &pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_phone_key"}))
	require.ErrorIs(t, err, port.ErrDuplicate)
	assert.Contains(t, err.Error(), "users_phone_key")

	other := &pgconn.PgError{Code: "23503"}
	assert.Same(t, other, translate(other))

	assert.True(t, isSerializationFailure(&pgconn.PgError{Code: serializationFailure}))
	assert.False(t, isSerializationFailure(nil))
}
