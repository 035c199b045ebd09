package handlers

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"microblogTTS/internal/config"
	"microblogTTS/internal/service"
)

type Handlers struct {
	AuthService   service.AuthService
	PostService   service.PostService
	HealthService service.HealthService
	Cfg           *config.Config
	Validate      *validator.Validate
	Log           *zap.SugaredLogger
}

func NewHandlers(services *service.Service, cfg *config.Config, log *zap.SugaredLogger) *Handlers {
	return &Handlers{
		AuthService:   services.Auth,
		PostService:   services.Post,
		HealthService: services.Health,
		Cfg:           cfg,
		Validate:      service.NewValidator(),
		Log:           log,
	}
}
