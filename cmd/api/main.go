package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"microblogTTS/cmd/app"
	"microblogTTS/internal/config"
	handlers "microblogTTS/internal/handler"
	"microblogTTS/internal/logger"
	"microblogTTS/internal/middleware"
)

func main() {
	// setting up config
	cfg := config.LoadConfig()

	zl, err := logger.Init(logger.ConfigFromEnv())
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer zl.Sync()
	sugar := zl.Sugar()

	if cfg.JWTSecretKey == "" {
		sugar.Fatal("JWT_SECRET_KEY is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, sugar)
	if err != nil {
		sugar.Fatalw("startup failed", "error", err)
	}
	defer a.Close()

	if a.AudioWorker != nil {
		a.AudioWorker.Start(ctx)
	}

	h := handlers.NewHandlers(a.Services, cfg, sugar.Named("http"))
	router := newRouter(h, a, sugar)

	handlerChain := middleware.Chain(
		router,
		middleware.RequestID,
		middleware.Logging(sugar.Named("access")),
		middleware.Recover(sugar, cfg.IsDevelopment()),
		middleware.SecurityHeaders,
		middleware.CORS(cfg.AllowedOrigins),
		middleware.RateLimit(a.GlobalLimiter, false, sugar),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           handlerChain,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		sugar.Infow("server listening", "addr", srv.Addr, "env", cfg.Env, "database", cfg.DB.DbNAME)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Errorw("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	sugar.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("graceful shutdown failed", "error", err)
	}
}

func newRouter(h *handlers.Handlers, a *app.App, log *zap.SugaredLogger) *mux.Router {
	tokens := a.Services.Token
	requireAuth := middleware.Authenticate(tokens, true)
	optionalAuth := middleware.Authenticate(tokens, false)
	authLimit := middleware.RateLimit(a.AuthLimiter, true, log)

	wrap := func(f http.HandlerFunc, ms ...middleware.Middleware) http.Handler {
		return middleware.Chain(f, ms...)
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handlers.NotFoundHandler)
	r.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowedHandler)

	r.Handle("/health", wrap(h.Health)).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/status", wrap(h.Status)).Methods(http.MethodGet)

	// auth
	api.Handle("/auth/register", wrap(h.Register, authLimit)).Methods(http.MethodPost)
	api.Handle("/auth/login", wrap(h.Login, authLimit)).Methods(http.MethodPost)
	api.Handle("/auth/check-email", wrap(h.CheckEmail, authLimit)).Methods(http.MethodPost)
	api.Handle("/auth/check-pseudo", wrap(h.CheckPseudo, authLimit)).Methods(http.MethodPost)
	api.Handle("/auth/profile", wrap(h.GetProfile, requireAuth)).Methods(http.MethodGet)

	// posts; literal segments are registered before /posts/{id}
	api.Handle("/posts", wrap(h.GetPosts)).Methods(http.MethodGet)
	api.Handle("/posts", wrap(h.CreatePost, requireAuth)).Methods(http.MethodPost)
	api.Handle("/posts/search", wrap(h.SearchPosts)).Methods(http.MethodGet)
	api.Handle("/posts/user/me", wrap(h.GetMyPosts, requireAuth)).Methods(http.MethodGet)
	api.Handle("/posts/user/{userId:[0-9]+}", wrap(h.GetUserPosts, optionalAuth)).Methods(http.MethodGet)
	api.Handle("/posts/{id:[0-9]+}", wrap(h.GetPost, optionalAuth)).Methods(http.MethodGet)
	api.Handle("/posts/{id:[0-9]+}", wrap(h.UpdatePost, requireAuth)).Methods(http.MethodPut)
	api.Handle("/posts/{id:[0-9]+}", wrap(h.DeletePost, requireAuth)).Methods(http.MethodDelete)
	api.Handle("/posts/{id:[0-9]+}/audio", wrap(h.GenerateAudio, requireAuth)).Methods(http.MethodPost)

	return r
}
