package test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"microblogTTS/internal/models"
	"microblogTTS/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error) {
	args := m.Called(ctx, in)
	if r := args.Get(0); r != nil {
		return r.(*service.AuthResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if r := args.Get(0); r != nil {
		return r.(*service.AuthResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) GetProfile(ctx context.Context, identity models.Identity) (*models.PublicUser, error) {
	args := m.Called(ctx, identity)
	if u := args.Get(0); u != nil {
		return u.(*models.PublicUser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthService) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthService) CheckPseudoExists(ctx context.Context, pseudo string) (bool, error) {
	args := m.Called(ctx, pseudo)
	return args.Bool(0), args.Error(1)
}

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) ListPublic(ctx context.Context, page, limit int) (*service.PostPage, error) {
	args := m.Called(ctx, page, limit)
	if p := args.Get(0); p != nil {
		return p.(*service.PostPage), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPostService) GetPost(ctx context.Context, viewer *models.Identity, id int64) (*models.Post, error) {
	args := m.Called(ctx, viewer, id)
	if p := args.Get(0); p != nil {
		return p.(*models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPostService) ListUserPosts(ctx context.Context, viewer *models.Identity, authorID int64) ([]models.Post, error) {
	args := m.Called(ctx, viewer, authorID)
	if p := args.Get(0); p != nil {
		return p.([]models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPostService) CreatePost(ctx context.Context, identity models.Identity, req models.CreatePostRequest) (*models.Post, error) {
	args := m.Called(ctx, identity, req)
	if p := args.Get(0); p != nil {
		return p.(*models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPostService) UpdatePost(ctx context.Context, identity models.Identity, id int64, req models.UpdatePostRequest) (*models.Post, error) {
	args := m.Called(ctx, identity, id, req)
	if p := args.Get(0); p != nil {
		return p.(*models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPostService) DeletePost(ctx context.Context, identity models.Identity, id int64) error {
	return m.Called(ctx, identity, id).Error(0)
}

func (m *MockPostService) SearchPosts(ctx context.Context, query string, limit int) ([]models.Post, error) {
	args := m.Called(ctx, query, limit)
	if p := args.Get(0); p != nil {
		return p.([]models.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPostService) RequestAudio(ctx context.Context, identity models.Identity, id int64) (*models.Post, bool, error) {
	args := m.Called(ctx, identity, id)
	if p := args.Get(0); p != nil {
		return p.(*models.Post), args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) Check(ctx context.Context) service.HealthReport {
	return m.Called(ctx).Get(0).(service.HealthReport)
}
