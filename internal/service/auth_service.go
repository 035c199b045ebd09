package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"microblogTTS/internal/apperror"
	"microblogTTS/internal/models"
	"microblogTTS/internal/repository"
)

type RegisterInput struct {
	Pseudo   string `json:"pseudo" validate:"pseudo"`
	Email    string `json:"email" validate:"simpleemail"`
	Password string `json:"password" validate:"password"`
}

type AuthResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// AuthService registers and authenticates users.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GetProfile(ctx context.Context, identity models.Identity) (*models.PublicUser, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	CheckPseudoExists(ctx context.Context, pseudo string) (bool, error)
}

var fieldMessages = map[string]string{
	"pseudo":   "Pseudo must be at least 3 characters long",
	"email":    "Please provide a valid email address",
	"password": "Password must be at least 8 characters long and contain at least one letter and one number",
}

type authService struct {
	users    repository.UserRepository
	tokens   TokenService
	hasher   PasswordHasher
	validate *validator.Validate
	log      *zap.SugaredLogger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users repository.UserRepository, tokens TokenService, hasher PasswordHasher, validate *validator.Validate, log *zap.SugaredLogger) AuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		validate: validate,
		log:      log,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if in.Pseudo == "" || in.Email == "" || in.Password == "" {
		return nil, apperror.Validation("missing_fields", "", "All fields are required")
	}

	in.Pseudo = strings.TrimSpace(in.Pseudo)
	in.Email = strings.TrimSpace(in.Email)

	if err := s.validateRegister(in); err != nil {
		return nil, err
	}

	// the unique constraints still decide concurrent registrations
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperror.Conflict("email_taken", "email", "This email is already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Storage(err)
	}

	if _, err := s.users.GetByPseudo(ctx, in.Pseudo); err == nil {
		return nil, apperror.Conflict("pseudo_taken", "pseudo", "This pseudo is already taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Storage(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperror.Storage(fmt.Errorf("ошибка при хешировании пароля: %w", err))
	}

	user, err := s.users.Create(ctx, in.Pseudo, in.Email, hash)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.log.Warnw("registration lost uniqueness race", "email", in.Email, "pseudo", in.Pseudo)
			return nil, apperror.Conflict("already_exists", "", "Email or pseudo is already taken")
		}
		return nil, apperror.Storage(err)
	}

	s.log.Infow("user registered", "user_id", user.ID)
	return s.authResult(user)
}

// validateRegister reports the first failing field in pseudo, email,
// password order.
func (s *authService) validateRegister(in RegisterInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.Validation("validation_error", "", "Invalid registration data")
	}

	field := strings.ToLower(verrs[0].Field())
	return apperror.Validation("validation_error", field, fieldMessages[field])
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.Validation("missing_fields", "", "Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// unknown emails still pay for one bcrypt comparison
			s.hasher.Verify(s.dummy(), password)
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, apperror.Storage(err)
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.authResult(user)
}

func (s *authService) GetProfile(ctx context.Context, identity models.Identity) (*models.PublicUser, error) {
	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Storage(err)
	}

	public := user.Public()
	return &public, nil
}

func (s *authService) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, apperror.Validation("missing_fields", "email", "Email is required")
	}
	if !ValidEmail(email) {
		return false, apperror.Validation("validation_error", "email", fieldMessages["email"])
	}

	exists, err := s.users.ExistsEmail(ctx, email)
	if err != nil {
		return false, apperror.Storage(err)
	}
	return exists, nil
}

func (s *authService) CheckPseudoExists(ctx context.Context, pseudo string) (bool, error) {
	pseudo = strings.TrimSpace(pseudo)
	if pseudo == "" {
		return false, apperror.Validation("missing_fields", "pseudo", "Pseudo is required")
	}
	if !ValidPseudo(pseudo) {
		return false, apperror.Validation("validation_error", "pseudo", fieldMessages["pseudo"])
	}

	exists, err := s.users.ExistsPseudo(ctx, pseudo)
	if err != nil {
		return false, apperror.Storage(err)
	}
	return exists, nil
}

func (s *authService) authResult(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return &AuthResult{Token: token, User: user.Public()}, nil
}

func (s *authService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("not-a-real-password-0")
	})
	return s.dummyHash
}
