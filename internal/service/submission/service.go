package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhouzirui/feedbackhub/backend/internal/model/feedback"
	"github.com/zhouzirui/feedbackhub/backend/internal/service/intake"
)

// AcceptanceReader reports whether a handle takes new messages.
// *acceptance.Gate satisfies it.
type AcceptanceReader interface {
	Accepting(ctx context.Context, handle string) (bool, error)
}

// Service accepts anonymous messages for an account.
type Service struct {
	gate     AcceptanceReader
	messages feedback.MessageStore
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewService wires the orchestrator to the acceptance gate and the message store.
func NewService(gate AcceptanceReader, messages feedback.MessageStore, logger *zap.Logger) *Service {
	return &Service{
		gate:     gate,
		messages: messages,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// Submit runs one delivery attempt: resolve, gate, validate, append.
// Any failure leaves storage untouched. A retried call stores a second copy.
func (s *Service) Submit(ctx context.Context, handle, content string) (feedback.DeliveryReceipt, error) {
	accepting, err := s.gate.Accepting(ctx, handle)
	switch {
	case errors.Is(err, feedback.ErrNotFound):
		return feedback.DeliveryReceipt{}, feedback.ErrUnknownRecipient
	case err != nil:
		return feedback.DeliveryReceipt{}, storageError(err)
	}

	if !accepting {
		s.logger.Debug("submission discarded", zap.String("handle", handle), zap.String("reason", "not accepting"))
		return feedback.DeliveryReceipt{}, feedback.ErrNotAccepting
	}

	validated, err := intake.Validate(content)
	if err != nil {
		return feedback.DeliveryReceipt{}, err
	}

	message := feedback.Message{
		ID:        s.newID(),
		Content:   validated,
		CreatedAt: s.now(),
	}
	if err := s.messages.Append(ctx, handle, message); err != nil {
		if errors.Is(err, feedback.ErrNotFound) {
			return feedback.DeliveryReceipt{}, feedback.ErrUnknownRecipient
		}
		s.logger.Error("append message failed", zap.String("handle", handle), zap.Error(err))
		return feedback.DeliveryReceipt{}, storageError(err)
	}

	s.logger.Info("message delivered", zap.String("handle", handle), zap.String("message_id", message.ID))
	return feedback.DeliveryReceipt{Delivered: true}, nil
}

func storageError(err error) error {
	if errors.Is(err, feedback.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", feedback.ErrStorageUnavailable, err)
}
