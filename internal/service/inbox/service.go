package inbox

import (
	"context"

	"go.uber.org/zap"

	"github.com/zhouzirui/feedbackhub/backend/internal/auth"
	"github.com/zhouzirui/feedbackhub/backend/internal/model/feedback"
)

// Service exposes an owner's received messages.
type Service struct {
	messages feedback.MessageStore
	logger   *zap.Logger
}

// NewService creates the owner-facing inbox.
func NewService(messages feedback.MessageStore, logger *zap.Logger) *Service {
	return &Service{messages: messages, logger: logger}
}

// List returns the owner's messages newest first.
func (s *Service) List(ctx context.Context, handle string) ([]feedback.Message, error) {
	if !auth.IsOwner(ctx, handle) {
		return nil, feedback.ErrUnauthorized
	}
	return s.messages.List(ctx, handle)
}

// Delete removes one message. A missing or already deleted id reports ErrNotFound.
func (s *Service) Delete(ctx context.Context, handle, messageID string) error {
	if !auth.IsOwner(ctx, handle) {
		return feedback.ErrUnauthorized
	}
	removed, err := s.messages.DeleteByID(ctx, handle, messageID)
	if err != nil {
		return err
	}
	if !removed {
		return feedback.ErrNotFound
	}
	s.logger.Info("message deleted", zap.String("handle", handle), zap.String("message_id", messageID))
	return nil
}
