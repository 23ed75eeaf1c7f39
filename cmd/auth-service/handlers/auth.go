// Package handlers содержит HTTP-обработчики сервиса входа.
//
// Эндпоинты:
//
//	GET  /health                         : проверка доступности БД
//	GET  /metrics                        : метрики Prometheus
//	GET  /api/v1/external/ping           : публичный ping
//	POST /api/v1/external/security/login : вход по email/паролю
//	GET  /api/v1/internal/ping           : ping под RequireSession
//
// Все ответы в формате JSON:
//
//	{ "success": true,  "data": {...}, "metadata": { "timestamp": ... } }
//	{ "success": false, "error": { "message", "code", "details" }, "timestamp": ... }
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/r2r72/login-service/internal/service/auth"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// API bundles the handler dependencies.
type API struct {
	svc          *auth.AuthService
	verifier     TokenVerifier
	db           Pinger
	metrics      http.Handler
	logger       *zap.Logger
	validate     *validator.Validate
	proxies      []netip.Prefix
	exposeErrors bool // include internal causes in 5xx bodies (non-production only)
}

// Deps are the collaborators passed to NewAPI. DB and Metrics are optional.
// Forwarding headers are honoured only from peers in TrustedProxies.
type Deps struct {
	Service        *auth.AuthService
	Verifier       TokenVerifier
	DB             Pinger
	Metrics        http.Handler
	Logger         *zap.Logger
	TrustedProxies []netip.Prefix
	Production     bool
}

func NewAPI(d Deps) *API {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		svc:          d.Service,
		verifier:     d.Verifier,
		db:           d.DB,
		metrics:      d.Metrics,
		logger:       logger,
		validate:     newValidator(),
		proxies:      d.TrustedProxies,
		exposeErrors: !d.Production,
	}
}

// withError оборачивает обработчик: возвращённая ошибка превращается в 500,
// если ответ ещё не начат; иначе ошибка только логируется.
func (a *API) withError(h func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		if err := h(ww, r); err != nil {
			a.logger.Error("http handler failed",
				zap.Error(err),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("path", r.URL.Path),
				zap.Int("status_sent", ww.Status()),
			)
			if ww.Status() != 0 {
				// status line already sent; a second envelope would corrupt the body
				return
			}
			writeError(ww, http.StatusInternalServerError, CodeInternal,
				"An unexpected internal server error occurred.", a.causeDetails(err))
		}
	}
}

func (a *API) causeDetails(err error) any {
	if !a.exposeErrors {
		return nil
	}
	return map[string]string{"cause": err.Error()}
}

// === Типы запросов ===

// LoginRequest: тело POST /security/login.
type LoginRequest struct {
	Email         string `json:"email" validate:"required,max=255,email"`
	Password      string `json:"password" validate:"required"`
	RememberLogin bool   `json:"rememberLogin"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "email":
		if fe.Tag() == "max" {
			return fmt.Sprintf("Email must be at most %s characters.", fe.Param())
		}
		return "Please enter a valid email address."
	case "password":
		return "Password is required."
	default:
		return fmt.Sprintf("Field failed the %q check.", fe.Tag())
	}
}

// === Обработчики ===

// handleLogin проверяет учётные данные и выдаёт сессионный токен.
// 200: { token, user: { id, name, email } }
// Ошибки: 400 VALIDATION_ERROR, 401 INVALID_CREDENTIALS, 403 ACCOUNT_LOCKED,
// 503 SERVICE_UNAVAILABLE, 500.
func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "Request body must be valid JSON.", nil)
		return nil
	}

	if err := a.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate login request: %w", err)
		}
		details := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		writeError(w, http.StatusBadRequest, CodeValidation, "Input validation failed.", details)
		return nil
	}

	userAgent := r.UserAgent()
	if userAgent == "" {
		userAgent = "unknown"
	}

	result, err := a.svc.Authenticate(r.Context(), auth.LoginInput{
		Email:         req.Email,
		Password:      req.Password,
		RememberLogin: req.RememberLogin,
		IPAddress:     clientIP(r, a.proxies),
		UserAgent:     userAgent,
	})
	if err != nil {
		var locked *auth.AccountLockedError
		var storeErr *auth.StoreError
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			// one message for unknown email and wrong password
			writeError(w, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid credentials.", nil)
			return nil
		case errors.As(err, &locked):
			writeError(w, http.StatusForbidden, CodeAccountLocked,
				fmt.Sprintf("Account is locked. Please try again in %d minutes.", locked.RemainingMinutes), nil)
			return nil
		case errors.As(err, &storeErr):
			writeError(w, http.StatusServiceUnavailable, CodeServiceUnavailable,
				"Service temporarily unavailable. Please try again.", a.causeDetails(err))
			return nil
		default:
			return err // 500
		}
	}

	return writeSuccess(w, http.StatusOK, result)
}
