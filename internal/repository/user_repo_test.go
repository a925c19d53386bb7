package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-auth-api/internal/model"
)

var columns = []string{"id", "email", "username", "full_name", "password_hash", "is_active", "is_superuser", "created_at", "updated_at", "last_login"}

func newMockRepo(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return NewUserRepository(mock), mock
}

func aliceRow(created time.Time, fullName any, lastLogin any) *pgxmock.Rows {
	return pgxmock.NewRows(columns).
		AddRow(int64(1), "a@x.com", "alice", fullName, "$2a$hash", true, false, created, created, lastLogin)
}

func TestUserRepository_GetByID(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		check     func(t *testing.T, u model.User, err error)
	}{
		{
			name: "found with nullable columns set",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users WHERE id = \$1`).
					WithArgs(int64(1)).
					WillReturnRows(aliceRow(created, "Alice", created.Add(time.Hour)))
			},
			check: func(t *testing.T, u model.User, err error) {
				require.NoError(t, err)
				assert.Equal(t, int64(1), u.ID)
				assert.Equal(t, "alice", u.Username)
				assert.Equal(t, "$2a$hash", u.PasswordHash)
				require.NotNil(t, u.FullName)
				assert.Equal(t, "Alice", *u.FullName)
				require.NotNil(t, u.LastLogin)
				assert.True(t, created.Add(time.Hour).Equal(*u.LastLogin))
			},
		},
		{
			name: "found with nullable columns empty",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users WHERE id = \$1`).
					WithArgs(int64(1)).
					WillReturnRows(aliceRow(created, nil, nil))
			},
			check: func(t *testing.T, u model.User, err error) {
				require.NoError(t, err)
				assert.Nil(t, u.FullName)
				assert.Nil(t, u.LastLogin)
			},
		},
		{
			name: "not found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users WHERE id = \$1`).
					WithArgs(int64(1)).
					WillReturnError(pgx.ErrNoRows)
			},
			check: func(t *testing.T, _ model.User, err error) {
				assert.ErrorIs(t, err, model.ErrUserNotFound)
			},
		},
		{
			name: "database error is wrapped",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users WHERE id = \$1`).
					WithArgs(int64(1)).
					WillReturnError(errors.New("connection refused"))
			},
			check: func(t *testing.T, _ model.User, err error) {
				require.Error(t, err)
				assert.NotErrorIs(t, err, model.ErrUserNotFound)
				assert.Contains(t, err.Error(), "find user by id")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			tt.setupMock(mock)

			u, err := repo.GetByID(context.Background(), 1)
			tt.check(t, u, err)
			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestUserRepository_GetByEmailAndUsername(t *testing.T) {
	created := time.Now().UTC()
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnRows(aliceRow(created, nil, nil))
	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("bob").
		WillReturnError(pgx.ErrNoRows)

	u, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)

	_, err = repo.GetByUsername(context.Background(), "bob")
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create(t *testing.T) {
	created := time.Now().UTC()
	name := "Alice"
	input := model.User{Email: "a@x.com", Username: "alice", FullName: &name, PasswordHash: "$2a$hash", IsActive: true}

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "inserted",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("a@x.com", "alice", &name, "$2a$hash", true, false).
					WillReturnRows(aliceRow(created, "Alice", nil))
			},
		},
		{
			name: "duplicate email",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})
			},
			wantErr: model.ErrEmailTaken,
		},
		{
			name: "duplicate username",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_username_key"})
			},
			wantErr: model.ErrUsernameTaken,
		},
		{
			name: "other constraint",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_lower_email_idx"})
			},
			wantErr: model.ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepo(t)
			tt.setupMock(mock)

			u, err := repo.Create(context.Background(), input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, model.ErrUserAlreadyExists)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(1), u.ID)
				assert.False(t, u.CreatedAt.IsZero())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Update(t *testing.T) {
	created := time.Now().UTC()
	repo, mock := newMockRepo(t)
	active := false

	mock.ExpectQuery(`UPDATE users`).
		WithArgs(int64(1), (*string)(nil), &active).
		WillReturnRows(aliceRow(created, nil, nil))
	mock.ExpectQuery(`UPDATE users`).
		WithArgs(int64(2), (*string)(nil), (*bool)(nil)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Update(context.Background(), 1, model.UserPatch{IsActive: &active})
	require.NoError(t, err)

	_, err = repo.Update(context.Background(), 2, model.UserPatch{})
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	created := time.Now().UTC()
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`UPDATE users SET password_hash = \$2`).
		WithArgs(int64(1), "$2a$new").
		WillReturnRows(aliceRow(created, nil, nil))

	_, err := repo.UpdatePassword(context.Background(), 1, "$2a$new")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_TouchLastLogin(t *testing.T) {
	at := time.Now().UTC()
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE users SET last_login = \$2 WHERE id = \$1`).
		WithArgs(int64(1), at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE users SET last_login = \$2 WHERE id = \$1`).
		WithArgs(int64(9), at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.TouchLastLogin(context.Background(), 1, at))
	assert.ErrorIs(t, repo.TouchLastLogin(context.Background(), 9, at), model.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ListAndCount(t *testing.T) {
	created := time.Now().UTC()
	repo, mock := newMockRepo(t)

	rows := pgxmock.NewRows(columns).
		AddRow(int64(1), "a@x.com", "alice", nil, "h1", true, true, created, created, nil).
		AddRow(int64(2), "b@x.com", "bob", "Bob", "h2", false, false, created, created, nil)
	mock.ExpectQuery(`FROM users ORDER BY id LIMIT \$1 OFFSET \$2`).
		WithArgs(20, 0).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(2)))

	users, err := repo.List(context.Background(), 0, 20)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[1].Username)
	assert.False(t, users[1].IsActive)

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	assert.NoError(t, mock.ExpectationsWereMet())
}
