package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/statekeeper/internal/models"
	"github.com/iudanet/statekeeper/internal/storage"
	"github.com/iudanet/statekeeper/internal/syncsvc"
	"github.com/iudanet/statekeeper/pkg/api"
)

// contextKey тип для ключей контекста
type contextKey string

const (
	// UserIDKey ключ для хранения user_id в контексте
	UserIDKey contextKey = "user_id"
	// IsAdminKey ключ для хранения признака администратора
	IsAdminKey contextKey = "is_admin"
)

// GetUserID извлекает user_id из контекста запроса
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// IsAdmin сообщает, аутентифицирован ли запрос администратором
func IsAdmin(ctx context.Context) bool {
	isAdmin, ok := ctx.Value(IsAdminKey).(bool)
	return ok && isAdmin
}

// StateService определяет интерфейс сервиса синхронизации состояния
type StateService interface {
	Save(ctx context.Context, userID string, state *models.GameState, opts syncsvc.SaveOptions) (syncsvc.SaveResult, error)
	Load(ctx context.Context, userID string) (syncsvc.LoadResult, error)
	AdminVerify(ctx context.Context, userID string, autoRepair bool) (syncsvc.VerifyResult, error)
}

// StateHandler обрабатывает запросы сохранения и загрузки состояния
type StateHandler struct {
	logger *slog.Logger
	svc    StateService
}

// NewStateHandler создает handler состояния
func NewStateHandler(logger *slog.Logger, svc StateService) *StateHandler {
	return &StateHandler{
		logger: logger,
		svc:    svc,
	}
}

// HandleSave обрабатывает POST /api/v1/state/save
func (h *StateHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.logger.Error("User ID not found in context")
		writeError(w, h.logger, syncsvc.CodeUnauthorized, "unauthorized")
		return
	}

	var req api.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode save request", "error", err, "user_id", userID)
		writeError(w, h.logger, syncsvc.CodeInvalidJSON, "invalid request body")
		return
	}

	state, err := models.UnmarshalGameState(req.State)
	if err != nil {
		h.logger.Warn("Failed to decode game state", "error", err, "user_id", userID)
		writeError(w, h.logger, syncsvc.CodeInvalidJSON, "invalid state payload")
		return
	}
	state.SaveVersion = req.Version

	res, err := h.svc.Save(ctx, userID, state, syncsvc.SaveOptions{
		Reason:   models.SaveReason(req.Reason),
		ClientID: req.ClientID,
		Critical: req.Critical,
	})
	if err != nil {
		h.writeServiceError(w, err, userID)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, api.SaveResponse{
		Accepted:      res.Accepted,
		Skipped:       res.Skipped,
		Version:       res.Version,
		ConflictCount: res.ConflictCount,
	})

	h.logger.Info("save completed",
		"user_id", userID,
		"version", res.Version,
		"skipped", res.Skipped,
		"conflicts", res.ConflictCount,
	)
}

// HandleLoad обрабатывает GET /api/v1/state
func (h *StateHandler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.logger.Error("User ID not found in context")
		writeError(w, h.logger, syncsvc.CodeUnauthorized, "unauthorized")
		return
	}

	res, err := h.svc.Load(ctx, userID)
	if err != nil {
		h.writeServiceError(w, err, userID)
		return
	}

	resp := api.LoadResponse{Source: string(res.Source)}
	if res.State != nil {
		raw, marshalErr := res.State.Marshal()
		if marshalErr != nil {
			h.logger.Error("Failed to marshal state", "error", marshalErr, "user_id", userID)
			writeError(w, h.logger, syncsvc.CodeUnknown, "internal error")
			return
		}
		resp.State = raw
		resp.Version = res.State.SaveVersion
	}

	writeJSON(w, h.logger, http.StatusOK, resp)

	h.logger.Info("load completed", "user_id", userID, "source", resp.Source, "version", resp.Version)
}

// HandleVerify обрабатывает POST /api/v1/admin/verify
// Требует администраторский токен.
func (h *StateHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	adminID, ok := GetUserID(ctx)
	if !ok {
		writeError(w, h.logger, syncsvc.CodeUnauthorized, "unauthorized")
		return
	}
	if !IsAdmin(ctx) {
		h.logger.Warn("Non-admin attempted verify", "user_id", adminID)
		writeErrorStatus(w, h.logger, http.StatusForbidden, syncsvc.CodeUnauthorized, "admin privileges required")
		return
	}

	var req api.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, syncsvc.CodeInvalidJSON, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, h.logger, syncsvc.CodeInvalidJSON, "user_id is required")
		return
	}

	res, err := h.svc.AdminVerify(ctx, req.UserID, req.AutoRepair)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeErrorStatus(w, h.logger, http.StatusNotFound, syncsvc.CodeUnknown, "user has no saved progress")
			return
		}
		h.writeServiceError(w, err, req.UserID)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, api.VerifyResponse{
		Valid:        res.Valid,
		Repaired:     res.Repaired,
		Errors:       res.Errors,
		Warnings:     res.Warnings,
		AppliedFixes: res.AppliedFixes,
	})

	h.logger.Info("admin verify completed",
		"admin_id", adminID,
		"user_id", req.UserID,
		"valid", res.Valid,
		"repaired", res.Repaired,
	)
}

// writeServiceError переводит ошибку сервиса в HTTP ответ.
func (h *StateHandler) writeServiceError(w http.ResponseWriter, err error, userID string) {
	code := syncsvc.CodeOf(err)
	status := statusForCode(code)

	logLevel := slog.LevelWarn
	if status >= 500 {
		logLevel = slog.LevelError
	}
	h.logger.Log(context.Background(), logLevel, "request failed",
		"user_id", userID,
		"code", code,
		"error", err,
	)

	writeErrorStatus(w, h.logger, status, code, err.Error())
}

// statusForCode отображает таксономию ошибок на HTTP статусы.
func statusForCode(code syncsvc.Code) int {
	switch code {
	case syncsvc.CodeUnauthorized:
		return http.StatusUnauthorized
	case syncsvc.CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case syncsvc.CodeInvalidJSON:
		return http.StatusBadRequest
	case syncsvc.CodeIntegrityViolation:
		return http.StatusUnprocessableEntity
	case syncsvc.CodeVersionMismatch, syncsvc.CodeSaveInProgress:
		return http.StatusConflict
	case syncsvc.CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case syncsvc.CodeStoreUnavailable, syncsvc.CodeCacheUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, code syncsvc.Code, msg string) {
	writeErrorStatus(w, logger, statusForCode(code), code, msg)
}

func writeErrorStatus(w http.ResponseWriter, logger *slog.Logger, status int, code syncsvc.Code, msg string) {
	writeJSON(w, logger, status, api.ErrorResponse{
		Error:     msg,
		Code:      string(code),
		Retryable: code.Retryable(),
	})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}
