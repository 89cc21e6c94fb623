package acceptance

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/feedbackhub/backend/internal/model/feedback"
	acceptanceService "github.com/zhouzirui/feedbackhub/backend/internal/service/acceptance"
	"github.com/zhouzirui/feedbackhub/backend/pkg/utils"
)

// Handler 消息接收开关的HTTP处理器
type Handler struct {
	gate   *acceptanceService.Gate
	logger *zap.Logger
}

// New 创建处理器
func New(gate *acceptanceService.Gate, logger *zap.Logger) *Handler {
	return &Handler{gate: gate, logger: logger}
}

// RegisterRoutes 注册路由，调用方负责挂载所有者认证中间件
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/accounts/{handle}/acceptance", h.handleGetStatus)
	r.Post("/accounts/{handle}/acceptance", h.handleSetStatus)
}

type statusResponse struct {
	utils.Response
	IsAcceptingMessages bool `json:"isAcceptingMessages"`
}

func (h *Handler) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	accepting, err := h.gate.Status(r.Context(), handle)
	if err != nil {
		h.respondFailure(w, handle, err, "Failed to fetch message acceptance status")
		return
	}

	utils.RespondJSON(w, http.StatusOK, statusResponse{
		Response:            utils.Response{Success: true},
		IsAcceptingMessages: accepting,
	})
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	var payload struct {
		AcceptMessages *bool `json:"acceptMessages"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.AcceptMessages == nil {
		utils.RespondError(w, http.StatusBadRequest, "acceptMessages is required")
		return
	}

	accepting, err := h.gate.SetStatus(r.Context(), handle, *payload.AcceptMessages)
	if err != nil {
		h.respondFailure(w, handle, err, "Failed to update message acceptance status")
		return
	}

	utils.RespondJSON(w, http.StatusOK, statusResponse{
		Response: utils.Response{
			Success: true,
			Message: "Message acceptance status updated successfully",
		},
		IsAcceptingMessages: accepting,
	})
}

func (h *Handler) respondFailure(w http.ResponseWriter, handle string, err error, fallback string) {
	switch {
	case errors.Is(err, feedback.ErrUnauthorized):
		utils.RespondError(w, http.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, feedback.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, "User not found")
	default:
		h.logger.Error("acceptance request failed", zap.String("handle", handle), zap.Error(err))
		utils.RespondError(w, http.StatusServiceUnavailable, fallback)
	}
}
