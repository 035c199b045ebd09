package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"microblogTTS/internal/models"
)

type userRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db, now: time.Now}
}

func (r *userRepository) Create(ctx context.Context, pseudo, email, passwordHash string) (*models.User, error) {
	now := r.now().UTC()
	user := &models.User{
		Pseudo:       pseudo,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	query := `
		INSERT INTO users (pseudo, email, password_hash, post_amount, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRowxContext(ctx, query, pseudo, email, passwordHash, now, now).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("ошибка при создании пользователя: %w: %v", ErrDuplicate, err)
		}
		return nil, fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	return user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT id, pseudo, email, password_hash, post_amount, created_at, updated_at FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT id, pseudo, email, password_hash, post_amount, created_at, updated_at FROM users WHERE email = $1`, email)
}

func (r *userRepository) GetByPseudo(ctx context.Context, pseudo string) (*models.User, error) {
	return r.getOne(ctx, `SELECT id, pseudo, email, password_hash, post_amount, created_at, updated_at FROM users WHERE pseudo = $1`, pseudo)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var user models.User

	err := r.db.GetContext(ctx, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}

	return &user, nil
}

func (r *userRepository) ExistsEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *userRepository) ExistsPseudo(ctx context.Context, pseudo string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE pseudo = $1)`, pseudo)
}

func (r *userRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, arg); err != nil {
		return false, fmt.Errorf("ошибка при проверке существования пользователя: %w", err)
	}
	return exists, nil
}

// Update writes only the allow-listed fields that are set. It returns false
// without touching the row when none are.
func (r *userRepository) Update(ctx context.Context, id int64, upd models.UserUpdate) (bool, error) {
	if upd.Empty() {
		return false, nil
	}

	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if upd.Pseudo != nil {
		add("pseudo", *upd.Pseudo)
	}
	if upd.Email != nil {
		add("email", *upd.Email)
	}
	if upd.PasswordHash != nil {
		add("password_hash", *upd.PasswordHash)
	}
	if upd.PostAmount != nil {
		add("post_amount", *upd.PostAmount)
	}
	add("updated_at", r.now().UTC())
	args = append(args, id)

	query := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = $" + strconv.Itoa(len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("ошибка при обновлении пользователя: %w: %v", ErrDuplicate, err)
		}
		return false, fmt.Errorf("ошибка при обновлении пользователя: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return false, ErrNotFound
	}

	return true, nil
}

func (r *userRepository) IncrementPostCount(ctx context.Context, id int64) error {
	query := `UPDATE users SET post_amount = post_amount + 1, updated_at = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, r.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("ошибка при увеличении счётчика постов: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes the user; posts go with it through ON DELETE CASCADE.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ошибка при удалении пользователя: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке удаленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
