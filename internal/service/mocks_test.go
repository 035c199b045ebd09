package service

import (
	"context"
	"strings"

	"github.com/stretchr/testify/mock"

	"microblogTTS/internal/models"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, pseudo, email, passwordHash string) (*models.User, error) {
	args := m.Called(ctx, pseudo, email, passwordHash)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByPseudo(ctx context.Context, pseudo string) (*models.User, error) {
	args := m.Called(ctx, pseudo)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ExistsEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsPseudo(ctx context.Context, pseudo string) (bool, error) {
	args := m.Called(ctx, pseudo)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, id int64, upd models.UserUpdate) (bool, error) {
	args := m.Called(ctx, id, upd)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) IncrementPostCount(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPostRepository) ListPublic(ctx context.Context, limit, offset int) ([]models.Post, error) {
	args := m.Called(ctx, limit, offset)
	if p := args.Get(0); p != nil {
		return p.([]models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPostRepository) ListByAuthor(ctx context.Context, authorID int64, includePrivate bool) ([]models.Post, error) {
	args := m.Called(ctx, authorID, includePrivate)
	if p := args.Get(0); p != nil {
		return p.([]models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPostRepository) Search(ctx context.Context, query string, limit int) ([]models.Post, error) {
	args := m.Called(ctx, query, limit)
	if p := args.Get(0); p != nil {
		return p.([]models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, id int64, upd models.PostUpdate) (bool, error) {
	args := m.Called(ctx, id, upd)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) UpdateTtsStatus(ctx context.Context, id int64, audioURL string) (bool, error) {
	args := m.Called(ctx, id, audioURL)
	return args.Bool(0), args.Error(1)
}

type MockAudioRequester struct {
	mock.Mock
}

func (m *MockAudioRequester) Request(postID int64, text, instructions string) error {
	return m.Called(postID, text, instructions).Error(0)
}

// plainHasher stores "hashed:" + password and counts comparisons.
type plainHasher struct {
	verifies int
}

func (h *plainHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (h *plainHasher) Verify(hash, password string) bool {
	h.verifies++
	return strings.TrimPrefix(hash, "hashed:") == password && strings.HasPrefix(hash, "hashed:")
}
