package suggestion

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zhouzirui/feedbackhub/backend/internal/model/feedback"
	suggestionService "github.com/zhouzirui/feedbackhub/backend/internal/service/suggestion"
	"github.com/zhouzirui/feedbackhub/backend/pkg/utils"
)

// Handler streams suggested prompts to the sender form.
type Handler struct {
	generator suggestionService.Generator
	timeout   time.Duration
	logger    *zap.Logger
	upgrader  websocket.Upgrader
}

// New creates the suggestion handler. timeout <= 0 leaves the request unbounded.
func New(generator suggestionService.Generator, timeout time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		generator: generator,
		timeout:   timeout,
		logger:    logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册建议流路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/suggest-messages", h.handleSSE)
	r.Get("/suggest-messages/ws", h.handleWebSocket)
}

// StreamEvent is one frame sent to the client on either transport.
type StreamEvent struct {
	Event    string   `json:"event"`
	Content  string   `json:"content,omitempty"`
	Segments []string `json:"segments,omitempty"`
	Options  []string `json:"options,omitempty"`
	Error    string   `json:"error,omitempty"`
	Finished bool     `json:"finished,omitempty"`
}

type emitFunc func(StreamEvent) error

func (h *Handler) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	if h.timeout > 0 {
		return context.WithTimeout(parent, h.timeout)
	}
	return context.WithCancel(parent)
}

func (h *Handler) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	stream, err := h.generator.Stream(ctx)
	if err != nil {
		h.logger.Warn("suggestion stream unavailable", zap.Error(err))
		utils.RespondError(w, http.StatusBadGateway, "Failed to generate suggestions")
		return
	}

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	h.relay(ctx, stream, func(ev StreamEvent) error {
		return utils.SendSSEEvent(w, flusher, ev.Event, ev)
	})
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	// the client never sends anything; a failed read means it went away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	emit := func(ev StreamEvent) error {
		return conn.WriteJSON(ev)
	}

	stream, err := h.generator.Stream(ctx)
	if err != nil {
		h.logger.Warn("suggestion stream unavailable", zap.Error(err))
		h.finish(emit, StreamEvent{Event: "error", Error: "Failed to generate suggestions", Finished: true})
	} else {
		h.relay(ctx, stream, emit)
	}

	err = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	if err != nil {
		h.logger.Debug("websocket close failed", zap.Error(err))
	}
}

// relay feeds the stream into a fresh batch and mirrors progress to emit.
func (h *Handler) relay(ctx context.Context, stream *schema.StreamReader[*schema.Message], emit emitFunc) {
	batch := suggestionService.NewBatch()

	if err := emit(StreamEvent{Event: "start"}); err != nil {
		stream.Close()
		return
	}

	err := suggestionService.Consume(ctx, stream, batch, func(chunk string) error {
		if err := emit(StreamEvent{Event: "delta", Content: chunk}); err != nil {
			return err
		}
		return emit(StreamEvent{Event: "segments", Segments: slices.Collect(batch.Segments())})
	})

	switch {
	case err == nil, errors.Is(err, context.DeadlineExceeded):
		// a stream cut by the deadline still ends with whatever arrived
		h.finish(emit, StreamEvent{
			Event:    "end",
			Segments: slices.Collect(batch.Segments()),
			Options:  suggestionService.Options(batch),
			Finished: true,
		})
	case errors.Is(err, feedback.ErrUpstreamFailed):
		h.logger.Warn("suggestion stream failed", zap.Error(err))
		h.finish(emit, StreamEvent{
			Event:    "error",
			Error:    "Suggestion stream interrupted",
			Segments: slices.Collect(batch.Segments()),
			Finished: true,
		})
	default:
		// requester left; the batch is simply dropped
		h.logger.Debug("suggestion stream abandoned", zap.Error(err))
	}
}

// finish writes the terminal event. The client may already be gone.
func (h *Handler) finish(emit emitFunc, ev StreamEvent) {
	if err := emit(ev); err != nil {
		h.logger.Debug("final stream event not delivered", zap.String("event", ev.Event), zap.Error(err))
	}
}
