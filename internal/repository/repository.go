package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"microblogTTS/internal/models"
)

var (
	ErrNotFound     = errors.New("запись не найдена")
	ErrDuplicate    = errors.New("нарушено ограничение уникальности")
	ErrEmptyContent = errors.New("пустое содержимое поста")
)

// Credential store.
type UserRepository interface {
	Create(ctx context.Context, pseudo, email, passwordHash string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPseudo(ctx context.Context, pseudo string) (*models.User, error)
	ExistsEmail(ctx context.Context, email string) (bool, error)
	ExistsPseudo(ctx context.Context, pseudo string) (bool, error)
	Update(ctx context.Context, id int64, upd models.UserUpdate) (bool, error)
	IncrementPostCount(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// Content store.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	ListPublic(ctx context.Context, limit, offset int) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID int64, includePrivate bool) ([]models.Post, error)
	Search(ctx context.Context, query string, limit int) ([]models.Post, error)
	Update(ctx context.Context, id int64, upd models.PostUpdate) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	UpdateTtsStatus(ctx context.Context, id int64, audioURL string) (bool, error)
}

type SchemaRepository interface {
	MissingTables(ctx context.Context) ([]string, error)
}

type Repository struct {
	User   UserRepository
	Post   PostRepository
	Schema SchemaRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		User:   NewUserRepository(db),
		Post:   NewPostRepository(db),
		Schema: NewSchemaRepository(db),
	}
}

// isUniqueViolation reports a Postgres unique_violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
