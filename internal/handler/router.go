package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zhouzirui/feedbackhub/backend/internal/handler/acceptance"
	"github.com/zhouzirui/feedbackhub/backend/internal/handler/inbox"
	"github.com/zhouzirui/feedbackhub/backend/internal/handler/submission"
	"github.com/zhouzirui/feedbackhub/backend/internal/handler/suggestion"
	middlewarePkg "github.com/zhouzirui/feedbackhub/backend/internal/middleware"
	acceptanceService "github.com/zhouzirui/feedbackhub/backend/internal/service/acceptance"
	inboxService "github.com/zhouzirui/feedbackhub/backend/internal/service/inbox"
	submissionService "github.com/zhouzirui/feedbackhub/backend/internal/service/submission"
	suggestionService "github.com/zhouzirui/feedbackhub/backend/internal/service/suggestion"
	"github.com/zhouzirui/feedbackhub/backend/pkg/utils"
)

// Services groups what the router exposes.
type Services struct {
	Gate              *acceptanceService.Gate
	Inbox             *inboxService.Service
	Submission        *submissionService.Service
	Suggestions       suggestionService.Generator
	SuggestionTimeout time.Duration
	// Verifier authenticates owners; nil makes owner routes answer 503.
	Verifier middlewarePkg.TokenVerifier
}

// NewRouter wires HTTP routes to core services.
func NewRouter(svc Services, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, utils.Response{Success: true, Message: "ok"})
	})

	acceptanceHandler := acceptance.New(svc.Gate, logger)
	inboxHandler := inbox.New(svc.Inbox, logger)
	submissionHandler := submission.New(svc.Submission, logger)
	suggestionHandler := suggestion.New(svc.Suggestions, svc.SuggestionTimeout, logger)

	r.Route("/api", func(api chi.Router) {
		// Anonymous sender routes
		submissionHandler.RegisterRoutes(api)
		suggestionHandler.RegisterRoutes(api)

		// Owner routes
		api.Group(func(owner chi.Router) {
			owner.Use(middlewarePkg.RequireOwner(svc.Verifier, logger))
			acceptanceHandler.RegisterRoutes(owner)
			inboxHandler.RegisterRoutes(owner)
		})
	})

	return r
}
