package test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"microblogTTS/internal/apperror"
	"microblogTTS/internal/config"
	handlers "microblogTTS/internal/handler"
	"microblogTTS/internal/models"
	"microblogTTS/internal/service"
)

func createTestHandler(authService *MockAuthService, postService *MockPostService) *handlers.Handlers {
	cfg := &config.Config{
		JWTSecretKey: "test-secret-key",
		ServerPort:   8080,
		Env:          "production",
	}

	return &handlers.Handlers{
		AuthService: authService,
		PostService: postService,
		Cfg:         cfg,
		Validate:    service.NewValidator(),
		Log:         zap.NewNop().Sugar(),
	}
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withIdentity(req *http.Request, userID int64) *http.Request {
	return req.WithContext(handlers.WithIdentity(req.Context(), models.Identity{UserID: userID}))
}

// assertJSONError checks the failure envelope
func assertJSONError(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus int, expectedError string) map[string]any {
	assert.Equal(t, expectedStatus, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, false, response["success"])
	assert.Equal(t, expectedError, response["error"])
	assert.NotEmpty(t, response["message"])
	return response
}

// assertJSONSuccess checks the success envelope
func assertJSONSuccess(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus int) map[string]any {
	assert.Equal(t, expectedStatus, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var response map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, true, response["success"])
	return response
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		withDetail bool
		status     int
		code       string
		detail     bool
	}{
		{name: "Ошибка валидации", err: apperror.Validation("validation_error", "email", "bad"), status: http.StatusBadRequest, code: "validation_error"},
		{name: "Конфликт", err: apperror.Conflict("email_taken", "email", "taken"), status: http.StatusConflict, code: "email_taken"},
		{name: "Запрещено", err: apperror.ErrNotOwner, status: http.StatusForbidden, code: "unauthorized"},
		{name: "Не авторизован", err: apperror.ErrExpiredToken, status: http.StatusUnauthorized, code: "expired_token"},
		{name: "Не найдено", err: apperror.NotFound("Post not found"), status: http.StatusNotFound, code: "not_found"},
		{name: "Слишком много запросов", err: apperror.ErrTooManyRequests, status: http.StatusTooManyRequests, code: "too_many_requests"},
		{name: "Внешний сервис", err: apperror.Upstream("down", nil), status: http.StatusServiceUnavailable, code: "upstream_error"},
		{name: "Неизвестная ошибка без деталей", err: errors.New("pq: boom"), status: http.StatusInternalServerError, code: "server_error"},
		{name: "Детали в режиме разработки", err: apperror.Storage(errors.New("pq: boom")), withDetail: true, status: http.StatusInternalServerError, code: "server_error", detail: true},
		{name: "Без деталей для 4xx", err: apperror.Validation("x", "", "y"), withDetail: true, status: http.StatusBadRequest, code: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()

			status := handlers.WriteError(rr, tt.err, tt.withDetail)

			assert.Equal(t, tt.status, status)
			resp := assertJSONError(t, rr, tt.status, tt.code)
			_, hasDetail := resp["detail"]
			assert.Equal(t, tt.detail, hasDetail)
			assert.NotContains(t, resp["message"], "pq:")
		})
	}
}

func TestNotFoundAndMethodHandlers(t *testing.T) {
	rr := httptest.NewRecorder()
	handlers.NotFoundHandler(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assertJSONError(t, rr, http.StatusNotFound, "not_found")

	rr = httptest.NewRecorder()
	handlers.MethodNotAllowedHandler(rr, httptest.NewRequest(http.MethodPatch, "/api/posts", nil))
	assertJSONError(t, rr, http.StatusMethodNotAllowed, "method_not_allowed")
}

func TestHealthHandler(t *testing.T) {
	t.Run("Все зависимости доступны", func(t *testing.T) {
		health := new(MockHealthService)
		h := createTestHandler(nil, nil)
		h.HealthService = health
		health.On("Check", mock.Anything).Return(service.HealthReport{Status: "ok", Checks: map[string]string{"database": "ok"}})

		rr := httptest.NewRecorder()
		h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assertJSONSuccess(t, rr, http.StatusOK)
	})

	t.Run("Деградация", func(t *testing.T) {
		health := new(MockHealthService)
		h := createTestHandler(nil, nil)
		h.HealthService = health
		health.On("Check", mock.Anything).Return(service.HealthReport{Status: "degraded", Checks: map[string]string{"database": "down"}})

		rr := httptest.NewRecorder()
		h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})

	t.Run("Статус", func(t *testing.T) {
		h := createTestHandler(nil, nil)
		rr := httptest.NewRecorder()
		h.Status(rr, httptest.NewRequest(http.MethodGet, "/api/status", nil))

		resp := assertJSONSuccess(t, rr, http.StatusOK)
		assert.Equal(t, "ok", resp["status"])
	})
}
