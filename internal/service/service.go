package service

import (
	"go.uber.org/zap"

	"microblogTTS/internal/config"
	"microblogTTS/internal/repository"
)

type Service struct {
	Auth   AuthService
	Token  TokenService
	Post   PostService
	Health HealthService
}

func NewService(rep *repository.Repository, cfg *config.Config, audio AudioRequester, probes map[string]Probe, log *zap.SugaredLogger) *Service {
	tokens := NewTokenService(cfg.JWTSecretKey, cfg.TokenTTL)

	return &Service{
		Auth:   NewAuthService(rep.User, tokens, NewBcryptHasher(cfg.BcryptCost), NewValidator(), log.Named("auth")),
		Token:  tokens,
		Post:   NewPostService(rep.Post, audio, cfg.SearchMaxLimit, log.Named("posts")),
		Health: NewHealthService(rep.Schema, probes),
	}
}
