package submission

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zhouzirui/feedbackhub/backend/internal/model/feedback"
	submissionService "github.com/zhouzirui/feedbackhub/backend/internal/service/submission"
	"github.com/zhouzirui/feedbackhub/backend/pkg/utils"
)

// Handler 匿名消息投递的HTTP处理器
type Handler struct {
	svc    *submissionService.Service
	logger *zap.Logger
}

// New 创建投递处理器
func New(svc *submissionService.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes 注册公开路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/u/{handle}/messages", h.handleSubmit)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	var payload struct {
		Content string `json:"content"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.svc.Submit(r.Context(), handle, payload.Content); err != nil {
		status, message := describe(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("submission failed", zap.String("handle", handle), zap.Error(err))
		}
		utils.RespondError(w, status, message)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, utils.Response{Success: true, Message: "Message sent successfully"})
}

// describe maps a submission error to the category shown to the anonymous sender.
func describe(err error) (int, string) {
	switch {
	case errors.Is(err, feedback.ErrUnknownRecipient):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, feedback.ErrNotAccepting):
		return http.StatusForbidden, "User is not accepting messages"
	case errors.Is(err, feedback.ErrEmptyContent):
		return http.StatusBadRequest, "Message content must not be empty"
	case errors.Is(err, feedback.ErrTooLong):
		return http.StatusBadRequest, "Message must be no longer than 300 characters"
	case errors.Is(err, feedback.ErrInvalidContent):
		return http.StatusBadRequest, "Invalid message content"
	default:
		return http.StatusServiceUnavailable, "Failed to send message, please try again"
	}
}
