package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"inkwell/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name         string
		userID       uint
		mockBehavior func()
		wantUsername string
		wantCode     string
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "username", "nickname"}).AddRow(1, "alice", "Ali"))
			},
			wantUsername: "alice",
		},
		{
			name:   "Not Found",
			userID: 2,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
					WithArgs(2, 1).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			wantCode: models.CodeNotFound,
		},
		{
			name:   "Driver Failure",
			userID: 3,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
					WillReturnError(errors.New("connection reset"))
			},
			wantCode: models.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()

			user, err := repo.GetByID(ctx, tt.userID)
			if tt.wantCode != "" {
				assert.True(t, models.IsCode(err, tt.wantCode), "got %v", err)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantUsername, user.Username)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByUsername_NotFoundNamesUser(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1`)).
		WithArgs("ghost", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByUsername(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	assert.Contains(t, err.Error(), "ghost")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "users" WHERE email = $1`)).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_UniqueViolationIsConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.User{Username: "alice"})
	assert.True(t, models.IsCode(err, models.CodeConflict), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateRole(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("Promotes", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "role"=$1`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.UpdateRole(ctx, 1, models.RoleAdmin))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown User", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET "role"=$1`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.UpdateRole(ctx, 99, models.RoleAdmin)
		assert.True(t, models.IsCode(err, models.CodeNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.False(t, isUniqueConstraintError(nil))
	assert.True(t, isUniqueConstraintError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueConstraintError(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isUniqueConstraintError(errors.New("UNIQUE constraint failed: users.email")))
	assert.True(t, isUniqueConstraintError(gorm.ErrDuplicatedKey))
	assert.False(t, isUniqueConstraintError(errors.New("timeout")))
}

func TestLikePattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, `%go%`, likePattern("Go"))
	assert.Equal(t, `%100\%%`, likePattern("100%"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
	assert.Equal(t, `%c:\\dir%`, likePattern(`C:\dir`))
}
