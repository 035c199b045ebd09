package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microblogTTS/internal/models"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

var userColumns = []string{"id", "pseudo", "email", "password_hash", "post_amount", "created_at", "updated_at"}

func newUserRepo(t *testing.T) (*userRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewUserRepository(sqlxDB).(*userRepository)
	repo.now = func() time.Time { return fixedNow }
	return repo, mock
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := newUserRepo(t)
	ctx := context.Background()

	query := `INSERT INTO users (pseudo, email, password_hash, post_amount, created_at, updated_at) VALUES ($1, $2, $3, 0, $4, $5) RETURNING id`

	t.Run("Успешное создание пользователя", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs("alice", "a@x.com", "hash", fixedNow, fixedNow).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

		user, err := repo.Create(ctx, "alice", "a@x.com", "hash")

		require.NoError(t, err)
		assert.Equal(t, int64(1), user.ID)
		assert.Equal(t, "alice", user.Pseudo)
		assert.Equal(t, 0, user.PostAmount)
		assert.Equal(t, user.CreatedAt, user.UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Нарушение уникальности", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs("alice", "a@x.com", "hash", fixedNow, fixedNow).
			WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

		user, err := repo.Create(ctx, "alice", "a@x.com", "hash")

		assert.Nil(t, user)
		assert.ErrorIs(t, err, ErrDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Ошибка базы данных", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs("alice", "a@x.com", "hash", fixedNow, fixedNow).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.Create(ctx, "alice", "a@x.com", "hash")

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrDuplicate)
		assert.Contains(t, err.Error(), "ошибка при создании пользователя")
	})
}

func TestUserRepository_Lookups(t *testing.T) {
	repo, mock := newUserRepo(t)
	ctx := context.Background()

	row := func() *sqlmock.Rows {
		return sqlmock.NewRows(userColumns).
			AddRow(int64(7), "alice", "a@x.com", "hash", 2, fixedNow, fixedNow)
	}

	t.Run("По ID", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, pseudo, email, password_hash, post_amount, created_at, updated_at FROM users WHERE id = $1`).
			WithArgs(int64(7)).
			WillReturnRows(row())

		user, err := repo.GetByID(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, "alice", user.Pseudo)
		assert.Equal(t, 2, user.PostAmount)
	})

	t.Run("По email", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, pseudo, email, password_hash, post_amount, created_at, updated_at FROM users WHERE email = $1`).
			WithArgs("a@x.com").
			WillReturnRows(row())

		user, err := repo.GetByEmail(ctx, "a@x.com")

		require.NoError(t, err)
		assert.Equal(t, int64(7), user.ID)
	})

	t.Run("По псевдониму", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, pseudo, email, password_hash, post_amount, created_at, updated_at FROM users WHERE pseudo = $1`).
			WithArgs("alice").
			WillReturnRows(row())

		user, err := repo.GetByPseudo(ctx, "alice")

		require.NoError(t, err)
		assert.Equal(t, "a@x.com", user.Email)
	})

	t.Run("Пользователь не найден", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, pseudo, email, password_hash, post_amount, created_at, updated_at FROM users WHERE email = $1`).
			WithArgs("nobody@x.com").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetByEmail(ctx, "nobody@x.com")

		assert.Nil(t, user)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Ошибка базы данных", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, pseudo, email, password_hash, post_amount, created_at, updated_at FROM users WHERE id = $1`).
			WithArgs(int64(7)).
			WillReturnError(errors.New("connection failed"))

		user, err := repo.GetByID(ctx, 7)

		assert.Nil(t, user)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "ошибка при получении пользователя")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Exists(t *testing.T) {
	repo, mock := newUserRepo(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS(SELECT 1 FROM users WHERE pseudo = $1)`).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.ExistsEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsPseudo(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update(t *testing.T) {
	repo, mock := newUserRepo(t)
	ctx := context.Background()

	t.Run("Пустое обновление не трогает строку", func(t *testing.T) {
		ok, err := repo.Update(ctx, 7, models.UserUpdate{})

		assert.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Обновление разрешённых полей", func(t *testing.T) {
		pseudo := "alice2"
		amount := 5
		mock.ExpectExec(`UPDATE users SET pseudo = $1, post_amount = $2, updated_at = $3 WHERE id = $4`).
			WithArgs("alice2", 5, fixedNow, int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.Update(ctx, 7, models.UserUpdate{Pseudo: &pseudo, PostAmount: &amount})

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Пользователь не найден при обновлении", func(t *testing.T) {
		email := "new@x.com"
		mock.ExpectExec(`UPDATE users SET email = $1, updated_at = $2 WHERE id = $3`).
			WithArgs("new@x.com", fixedNow, int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.Update(ctx, 99, models.UserUpdate{Email: &email})

		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Дубликат email при обновлении", func(t *testing.T) {
		email := "taken@x.com"
		mock.ExpectExec(`UPDATE users SET email = $1, updated_at = $2 WHERE id = $3`).
			WithArgs("taken@x.com", fixedNow, int64(7)).
			WillReturnError(&pq.Error{Code: "23505"})

		ok, err := repo.Update(ctx, 7, models.UserUpdate{Email: &email})

		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrDuplicate)
	})
}

func TestUserRepository_IncrementPostCount(t *testing.T) {
	repo, mock := newUserRepo(t)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE users SET post_amount = post_amount + 1, updated_at = $1 WHERE id = $2`).
		WithArgs(fixedNow, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET post_amount = post_amount + 1, updated_at = $1 WHERE id = $2`).
		WithArgs(fixedNow, int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.IncrementPostCount(ctx, 7))
	assert.ErrorIs(t, repo.IncrementPostCount(ctx, 8), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete(t *testing.T) {
	repo, mock := newUserRepo(t)
	ctx := context.Background()

	t.Run("Успешное удаление пользователя", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM users WHERE id = $1`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, 7))
	})

	t.Run("Пользователь не найден при удалении", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM users WHERE id = $1`).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, 7), ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaRepository_MissingTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSchemaRepository(sqlx.NewDb(db, "sqlmock"))

	mock.ExpectQuery(`SELECT table_name FROM information_schema.tables`).
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("users"))

	missing, err := repo.MissingTables(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"posts"}, missing)
	assert.NoError(t, mock.ExpectationsWereMet())
}
