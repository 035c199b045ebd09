package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"microblogTTS/internal/models"
)

const selectPosts = `
	SELECT p.id, p.author_id, u.pseudo AS author_name, p.kind, p.title, p.content, p.hashtag,
	       p.visibility, p.tts_instructions, p.tts_audio_url, p.tts_generated, p.created_at, p.updated_at
	FROM posts p
	JOIN users u ON u.id = p.author_id
`

type PostRepositoryImpl struct {
	DB  *sqlx.DB
	now func() time.Time
}

func NewPostRepository(db *sqlx.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{DB: db, now: time.Now}
}

// Create inserts the post and bumps the author's post counter in one
// transaction. ID, AuthorName and both timestamps are filled in on success.
func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) (err error) {
	now := r.now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Visibility == "" {
		post.Visibility = models.VisibilityPublic
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка при создании поста: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	err = tx.QueryRowxContext(ctx,
		`UPDATE users SET post_amount = post_amount + 1, updated_at = $1 WHERE id = $2 RETURNING pseudo`,
		now, post.AuthorID,
	).Scan(&post.AuthorName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("автор %d: %w", post.AuthorID, ErrNotFound)
		}
		return fmt.Errorf("ошибка при обновлении счётчика постов: %w", err)
	}

	query := `
		INSERT INTO posts
		(author_id, kind, title, content, hashtag, visibility, tts_instructions, tts_generated, created_at, updated_at)
		VALUES
		(:author_id, :kind, :title, :content, :hashtag, :visibility, :tts_instructions, FALSE, :created_at, :updated_at)
		RETURNING id
	`

	rows, err := sqlx.NamedQueryContext(ctx, tx, query, post)
	if err != nil {
		return fmt.Errorf("ошибка при создании поста: %w", err)
	}
	if rows.Next() {
		err = rows.Scan(&post.ID)
	} else {
		err = rows.Err()
		if err == nil {
			err = sql.ErrNoRows
		}
	}
	rows.Close()
	if err != nil {
		return fmt.Errorf("ошибка при создании поста: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	return nil
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post

	err := r.DB.GetContext(ctx, &post, selectPosts+`WHERE p.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при получении поста: %w", err)
	}

	return &post, nil
}

func (r *PostRepositoryImpl) ListPublic(ctx context.Context, limit, offset int) ([]models.Post, error) {
	posts := []models.Post{}

	query := selectPosts + `WHERE p.visibility = 'public' ORDER BY p.created_at DESC, p.id DESC LIMIT $1 OFFSET $2`

	if err := r.DB.SelectContext(ctx, &posts, query, limit, offset); err != nil {
		return nil, fmt.Errorf("ошибка при получении ленты постов: %w", err)
	}

	return posts, nil
}

func (r *PostRepositoryImpl) ListByAuthor(ctx context.Context, authorID int64, includePrivate bool) ([]models.Post, error) {
	posts := []models.Post{}

	query := selectPosts + `WHERE p.author_id = $1 AND ($2 OR p.visibility = 'public') ORDER BY p.created_at DESC, p.id DESC`

	if err := r.DB.SelectContext(ctx, &posts, query, authorID, includePrivate); err != nil {
		return nil, fmt.Errorf("ошибка при получении постов автора: %w", err)
	}

	return posts, nil
}

// Search matches query as a case-insensitive substring of content, title or
// hashtag across public posts.
func (r *PostRepositoryImpl) Search(ctx context.Context, query string, limit int) ([]models.Post, error) {
	posts := []models.Post{}

	pattern := "%" + escapeLike(query) + "%"
	sqlQuery := selectPosts + `
		WHERE p.visibility = 'public'
		  AND (p.content ILIKE $1 OR p.title ILIKE $1 OR p.hashtag ILIKE $1)
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2`

	if err := r.DB.SelectContext(ctx, &posts, sqlQuery, pattern, limit); err != nil {
		return nil, fmt.Errorf("ошибка при поиске постов: %w", err)
	}

	return posts, nil
}

// Update applies the non-nil fields and always bumps updated_at. Content,
// when supplied, must not be blank.
func (r *PostRepositoryImpl) Update(ctx context.Context, id int64, upd models.PostUpdate) (bool, error) {
	if upd.Content != nil && strings.TrimSpace(*upd.Content) == "" {
		return false, ErrEmptyContent
	}

	query := `
		UPDATE posts SET
			title = COALESCE($1, title),
			content = COALESCE($2, content),
			hashtag = COALESCE($3, hashtag),
			visibility = COALESCE($4, visibility),
			tts_instructions = COALESCE($5, tts_instructions),
			kind = COALESCE($6, kind),
			updated_at = $7
		WHERE id = $8
	`

	result, err := r.DB.ExecContext(ctx, query,
		upd.Title, upd.Content, upd.Hashtag, upd.Visibility, upd.TTSInstructions, upd.Kind,
		r.now().UTC(), id,
	)
	if err != nil {
		return false, fmt.Errorf("ошибка при обновлении поста: %w", err)
	}

	return affected(result)
}

// Delete removes the post and decrements the author's post counter.
func (r *PostRepositoryImpl) Delete(ctx context.Context, id int64) (deleted bool, err error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("ошибка при удалении поста: %w", err)
	}
	defer func() {
		if err != nil || !deleted {
			tx.Rollback()
		}
	}()

	var authorID int64
	err = tx.QueryRowxContext(ctx, `DELETE FROM posts WHERE id = $1 RETURNING author_id`, id).Scan(&authorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("ошибка при удалении поста: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET post_amount = GREATEST(post_amount - 1, 0), updated_at = $1 WHERE id = $2`,
		r.now().UTC(), authorID,
	)
	if err != nil {
		return false, fmt.Errorf("ошибка при обновлении счётчика постов: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}

	return true, nil
}

// UpdateTtsStatus records the generated audio location. A post that already
// has audio is left as is.
func (r *PostRepositoryImpl) UpdateTtsStatus(ctx context.Context, id int64, audioURL string) (bool, error) {
	query := `UPDATE posts SET tts_audio_url = $1, tts_generated = TRUE, updated_at = $2 WHERE id = $3 AND NOT tts_generated`

	result, err := r.DB.ExecContext(ctx, query, audioURL, r.now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("ошибка при обновлении статуса озвучки: %w", err)
	}

	return affected(result)
}

func affected(result sql.Result) (bool, error) {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}
	return rowsAffected > 0, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
