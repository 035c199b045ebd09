package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"microblogTTS/internal/apperror"
	"microblogTTS/internal/models"
	"microblogTTS/internal/repository"
)

const (
	DefaultPage        = 1
	DefaultPageLimit   = 10
	MaxPageLimit       = 50
	DefaultSearchLimit = 20
)

type PostPage struct {
	Posts   []models.Post `json:"posts"`
	Page    int           `json:"page"`
	Limit   int           `json:"limit"`
	HasMore bool          `json:"hasMore"`
}

// AudioRequester schedules speech generation for a post.
type AudioRequester interface {
	Request(postID int64, text, instructions string) error
}

type PostService interface {
	ListPublic(ctx context.Context, page, limit int) (*PostPage, error)
	GetPost(ctx context.Context, viewer *models.Identity, id int64) (*models.Post, error)
	ListUserPosts(ctx context.Context, viewer *models.Identity, authorID int64) ([]models.Post, error)
	CreatePost(ctx context.Context, identity models.Identity, req models.CreatePostRequest) (*models.Post, error)
	UpdatePost(ctx context.Context, identity models.Identity, id int64, req models.UpdatePostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, identity models.Identity, id int64) error
	SearchPosts(ctx context.Context, query string, limit int) ([]models.Post, error)
	RequestAudio(ctx context.Context, identity models.Identity, id int64) (*models.Post, bool, error)
}

type postService struct {
	posts          repository.PostRepository
	audio          AudioRequester
	searchMaxLimit int
	log            *zap.SugaredLogger
}

// NewPostService builds the content service. audio may be nil, in which case
// audio requests fail with an upstream error.
func NewPostService(posts repository.PostRepository, audio AudioRequester, searchMaxLimit int, log *zap.SugaredLogger) PostService {
	if searchMaxLimit <= 0 {
		searchMaxLimit = MaxPageLimit
	}
	return &postService{posts: posts, audio: audio, searchMaxLimit: searchMaxLimit, log: log}
}

func (p *postService) ListPublic(ctx context.Context, page, limit int) (*PostPage, error) {
	if page < 1 || limit < 1 || limit > MaxPageLimit {
		return nil, apperror.Validation("invalid_parameters", "", "Invalid pagination parameters")
	}

	posts, err := p.posts.ListPublic(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, apperror.Storage(err)
	}

	return &PostPage{Posts: posts, Page: page, Limit: limit, HasMore: len(posts) == limit}, nil
}

// GetPost hides private posts from everyone but their author.
func (p *postService) GetPost(ctx context.Context, viewer *models.Identity, id int64) (*models.Post, error) {
	post, err := p.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsPublic() && (viewer == nil || viewer.UserID != post.AuthorID) {
		return nil, apperror.NotFound("Post not found")
	}
	return post, nil
}

func (p *postService) ListUserPosts(ctx context.Context, viewer *models.Identity, authorID int64) ([]models.Post, error) {
	if authorID <= 0 {
		return nil, apperror.Validation("invalid_parameters", "userId", "Invalid user id")
	}

	includePrivate := viewer != nil && viewer.UserID == authorID
	posts, err := p.posts.ListByAuthor(ctx, authorID, includePrivate)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return posts, nil
}

func (p *postService) CreatePost(ctx context.Context, identity models.Identity, req models.CreatePostRequest) (*models.Post, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperror.Validation("missing_content", "content", "Post content is required")
	}

	visibility := strings.TrimSpace(req.Visibility)
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if err := checkVisibility(visibility); err != nil {
		return nil, err
	}

	kind := strings.TrimSpace(req.Kind)
	if kind == "" {
		kind = models.ClassifyKind(content)
	}
	if err := checkKind(kind); err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID:        identity.UserID,
		Kind:            kind,
		Title:           optional(req.Title),
		Content:         content,
		Hashtag:         req.Hashtag.Normalize(),
		Visibility:      visibility,
		TTSInstructions: optional(req.TTSInstructions),
	}

	if err := p.posts.Create(ctx, post); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Storage(err)
	}

	p.log.Debugw("post created", "post_id", post.ID, "author_id", post.AuthorID, "kind", post.Kind)
	return post, nil
}

func (p *postService) UpdatePost(ctx context.Context, identity models.Identity, id int64, req models.UpdatePostRequest) (*models.Post, error) {
	post, err := p.loadOwned(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	upd := models.PostUpdate{
		Title:           optional(req.Title),
		Hashtag:         req.Hashtag.Normalize(),
		TTSInstructions: optional(req.TTSInstructions),
	}

	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			return nil, apperror.Validation("invalid_content", "content", "Post content cannot be empty")
		}
		upd.Content = &content
	}

	if req.Visibility != nil {
		visibility := strings.TrimSpace(*req.Visibility)
		if err := checkVisibility(visibility); err != nil {
			return nil, err
		}
		upd.Visibility = &visibility
	}

	if kind := optional(req.Kind); kind != nil {
		if err := checkKind(*kind); err != nil {
			return nil, err
		}
		upd.Kind = kind
	}

	ok, err := p.posts.Update(ctx, post.ID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrEmptyContent) {
			return nil, apperror.Validation("invalid_content", "content", "Post content cannot be empty")
		}
		return nil, apperror.Storage(err)
	}
	if !ok {
		return nil, apperror.NotFound("Post not found")
	}

	return p.load(ctx, post.ID)
}

func (p *postService) DeletePost(ctx context.Context, identity models.Identity, id int64) error {
	post, err := p.loadOwned(ctx, identity, id)
	if err != nil {
		return err
	}

	ok, err := p.posts.Delete(ctx, post.ID)
	if err != nil {
		return apperror.Storage(err)
	}
	if !ok {
		return apperror.NotFound("Post not found")
	}
	return nil
}

func (p *postService) SearchPosts(ctx context.Context, query string, limit int) ([]models.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.Validation("missing_query", "q", "Search query is required")
	}

	switch {
	case limit <= 0:
		limit = DefaultSearchLimit
	case limit > p.searchMaxLimit:
		limit = p.searchMaxLimit
	}

	posts, err := p.posts.Search(ctx, query, limit)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return posts, nil
}

// RequestAudio queues speech generation for the caller's post. The bool
// result is false when the post already has audio.
func (p *postService) RequestAudio(ctx context.Context, identity models.Identity, id int64) (*models.Post, bool, error) {
	post, err := p.loadOwned(ctx, identity, id)
	if err != nil {
		return nil, false, err
	}
	if post.TTSGenerated {
		return post, false, nil
	}
	if p.audio == nil {
		return nil, false, apperror.Upstream("Audio generation is not configured", nil)
	}

	var instructions string
	if post.TTSInstructions != nil {
		instructions = *post.TTSInstructions
	}
	if err := p.audio.Request(post.ID, post.Content, instructions); err != nil {
		return nil, false, apperror.Upstream("Audio generation is unavailable", err)
	}

	p.log.Infow("audio generation queued", "post_id", post.ID)
	return post, true, nil
}

func (p *postService) load(ctx context.Context, id int64) (*models.Post, error) {
	post, err := p.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Post not found")
		}
		return nil, apperror.Storage(err)
	}
	return post, nil
}

func (p *postService) loadOwned(ctx context.Context, identity models.Identity, id int64) (*models.Post, error) {
	post, err := p.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != identity.UserID {
		return nil, apperror.ErrNotOwner
	}
	return post, nil
}

func checkVisibility(v string) error {
	if v != models.VisibilityPublic && v != models.VisibilityPrivate {
		return apperror.Validation("validation_error", "visibility", "Visibility must be public or private")
	}
	return nil
}

func checkKind(kind string) error {
	if utf8.RuneCountInString(kind) > MaxKindLength {
		return apperror.Validation("validation_error", "kind", "Kind is too long")
	}
	return nil
}

// optional trims s and maps blank to nil.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
