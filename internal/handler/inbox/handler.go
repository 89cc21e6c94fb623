package inbox

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/zhouzirui/feedbackhub/backend/internal/model/feedback"
	inboxService "github.com/zhouzirui/feedbackhub/backend/internal/service/inbox"
	"github.com/zhouzirui/feedbackhub/backend/pkg/utils"
)

// Handler 收件箱的HTTP处理器
type Handler struct {
	inbox  *inboxService.Service
	logger *zap.Logger
}

// New 创建收件箱处理器
func New(inbox *inboxService.Service, logger *zap.Logger) *Handler {
	return &Handler{inbox: inbox, logger: logger}
}

// RegisterRoutes 注册路由，调用方负责挂载所有者认证中间件
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/accounts/{handle}/messages", h.handleList)
	r.Delete("/accounts/{handle}/messages/{messageID}", h.handleDelete)
}

// messageView is a message as the dashboard renders it.
type messageView struct {
	ID        string    `json:"id"`
	ShortID   string    `json:"shortId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type listResponse struct {
	utils.Response
	Messages []messageView `json:"messages"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	messages, err := h.inbox.List(r.Context(), handle)
	if err != nil {
		h.respondFailure(w, handle, err, "User not found", "Failed to fetch messages")
		return
	}

	utils.RespondJSON(w, http.StatusOK, listResponse{
		Response: utils.Response{Success: true},
		Messages: lo.Map(messages, func(m feedback.Message, _ int) messageView {
			return messageView{ID: m.ID, ShortID: m.ShortID(), Content: m.Content, CreatedAt: m.CreatedAt}
		}),
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	messageID := chi.URLParam(r, "messageID")

	if err := h.inbox.Delete(r.Context(), handle, messageID); err != nil {
		h.respondFailure(w, handle, err, "Message not found or already deleted", "Failed to delete message")
		return
	}

	utils.RespondJSON(w, http.StatusOK, utils.Response{Success: true, Message: "Message deleted"})
}

func (h *Handler) respondFailure(w http.ResponseWriter, handle string, err error, notFound, fallback string) {
	switch {
	case errors.Is(err, feedback.ErrUnauthorized):
		utils.RespondError(w, http.StatusUnauthorized, "Not authenticated")
	case errors.Is(err, feedback.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, notFound)
	default:
		h.logger.Error("inbox request failed", zap.String("handle", handle), zap.Error(err))
		utils.RespondError(w, http.StatusServiceUnavailable, fallback)
	}
}
