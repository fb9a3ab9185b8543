package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/lexidrill/lexidrill-api/internal/store"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		err     error
		wantErr error
	}{
		{
			name:    "nil stays nil",
			err:     nil,
			wantErr: nil,
		},
		{
			name:    "no rows maps to not found",
			err:     sql.ErrNoRows,
			wantErr: store.ErrNotFound,
		},
		{
			name:    "wrapped no rows maps to not found",
			err:     fmt.Errorf("query failed: %w", sql.ErrNoRows),
			wantErr: store.ErrNotFound,
		},
		{
			name:    "unique violation maps to duplicate",
			err:     &pgconn.PgError{Code: uniqueViolationCode},
			wantErr: store.ErrDuplicate,
		},
		{
			name:    "foreign key violation maps to invalid entity",
			err:     &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "attempts_term_id_fkey"},
			wantErr: store.ErrInvalidEntity,
		},
		{
			name:    "check violation maps to invalid entity",
			err:     &pgconn.PgError{Code: checkViolationCode},
			wantErr: store.ErrInvalidEntity,
		},
		{
			name:    "not null violation maps to invalid entity",
			err:     &pgconn.PgError{Code: notNullViolationCode, ColumnName: "user_id"},
			wantErr: store.ErrInvalidEntity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError(tc.err)
			if tc.wantErr == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.wantErr)
		})
	}
}

func TestMapErrorPassesThroughUnknownErrors(t *testing.T) {
	t.Parallel()

	original := errors.New("connection reset")
	assert.Equal(t, original, MapError(original))
}

func TestViolationPredicates(t *testing.T) {
	t.Parallel()

	unique := &pgconn.PgError{Code: uniqueViolationCode}
	fk := &pgconn.PgError{Code: foreignKeyViolationCode}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(fk))
	assert.False(t, IsUniqueViolation(errors.New("other")))

	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(unique))
}

func TestStoreConstructorsPanicOnNilDB(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewPostgresNodeStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresSessionStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresAttemptStore(nil, nil) })
}
