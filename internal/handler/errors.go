package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"microblogTTS/internal/apperror"
	"microblogTTS/internal/models"
)

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

type DataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

var errBadBody = apperror.Validation("invalid_body", "", "Invalid request body")

func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindAuth:
		return http.StatusUnauthorized
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindRateLimited:
		return http.StatusTooManyRequests
	case apperror.KindUpstream:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err as a failure envelope and returns the status used.
// Unclassified errors become 500 server_error; internal detail is only
// attached when withDetail is set.
func WriteError(w http.ResponseWriter, err error, withDetail bool) int {
	appErr := apperror.From(err)
	if appErr == nil {
		appErr = &apperror.Error{Kind: apperror.KindInternal, Code: "server_error", Message: "Server error", Err: err}
	}

	status := StatusFor(appErr.Kind)
	resp := ErrorResponse{
		Error:   appErr.Code,
		Message: appErr.Message,
		Field:   appErr.Field,
	}
	if withDetail && status >= http.StatusInternalServerError && appErr.Err != nil {
		resp.Detail = appErr.Err.Error()
	}

	writeJSON(w, status, resp)
	return status
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, DataResponse{Success: true, Data: data})
}

// fail logs and writes err.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := WriteError(w, err, h.Cfg != nil && h.Cfg.IsDevelopment())
	if status >= http.StatusInternalServerError {
		h.Log.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
		return
	}
	h.Log.Debugw("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
}

const maxBodyBytes = 1 << 20

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, models.ErrHashtagType) {
			return apperror.Validation("validation_error", "hashtag", models.ErrHashtagType.Error())
		}
		return errBadBody
	}
	return nil
}

// check runs struct validation and reports the first failing field.
func (h *Handlers) check(v any) error {
	err := h.Validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0].Field()
		return apperror.Validation("validation_error", field, strings.TrimSpace(field+" is invalid"))
	}
	return errBadBody
}

func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, apperror.NotFound("Route not found"), false)
}

func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method_not_allowed", Message: "Method not allowed"})
}
