package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"microblogTTS/internal/audio"
	"microblogTTS/internal/config"
	"microblogTTS/internal/database"
	"microblogTTS/internal/ratelimit"
	"microblogTTS/internal/repository"
	"microblogTTS/internal/service"
	"microblogTTS/internal/storage"
)

type App struct {
	DB            *database.DB
	Redis         *redis.Client
	Repo          *repository.Repository
	Services      *service.Service
	AuthLimiter   ratelimit.Limiter
	GlobalLimiter ratelimit.Limiter
	AudioWorker   *audio.Worker
}

// New connects the backing services and wires repositories and services.
func New(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*App, error) {
	a := &App{
		AuthLimiter:   ratelimit.Noop{},
		GlobalLimiter: ratelimit.Noop{},
	}

	// connection DB
	db, err := database.ConnectDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.DB = db

	probes := map[string]service.Probe{"database": db.HealthCheck}

	// connection Redis
	if cfg.Redis.Addr != "" {
		rdb, err := ratelimit.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Redis = rdb
		a.AuthLimiter = ratelimit.NewRedisLimiter(rdb, "auth", cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow)
		a.GlobalLimiter = ratelimit.NewRedisLimiter(rdb, "global", cfg.RateLimit.GlobalRequests, cfg.RateLimit.GlobalWindow)
		probes["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Warnw("REDIS_ADDR not set, rate limiting disabled")
	}

	// enabling dependencies
	a.Repo = repository.NewRepository(db.DB)

	var requester service.AudioRequester
	if cfg.Audio.Enabled() {
		store, err := storage.NewMinIOClient(ctx, cfg.MinIO)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("не удалось инициализировать MinIO: %w", err)
		}
		probes["storage"] = store.HealthCheck

		httpClient := &http.Client{Timeout: cfg.Audio.Timeout}
		pipeline := audio.NewPipeline(
			audio.NewChatEnhancer(cfg.Audio.OpenAIBaseURL, cfg.Audio.OpenAIAPIKey, cfg.Audio.OpenAIModel, httpClient),
			audio.NewElevenLabsSynthesizer(cfg.Audio.ElevenLabsURL, cfg.Audio.ElevenLabsAPIKey, cfg.Audio.VoiceID, cfg.Audio.VoiceModel, httpClient),
			store,
			log.Named("audio"),
		)
		a.AudioWorker = audio.NewWorker(pipeline, a.Repo.Post, audio.WorkerConfig{
			Timeout:  cfg.Audio.Timeout,
			Attempts: cfg.Audio.Attempts,
		}, log.Named("audio"))
		requester = a.AudioWorker
	} else {
		log.Warnw("OPENAI_API_KEY or ELEVENLABS_API_KEY not set, audio generation disabled")
	}

	a.Services = service.NewService(a.Repo, cfg, requester, probes, log)
	return a, nil
}

func (a *App) Close() {
	if a.AudioWorker != nil {
		a.AudioWorker.Stop()
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		a.DB.CloseDB()
	}
}
