package acceptance

import (
	"context"

	"go.uber.org/zap"

	"github.com/zhouzirui/feedbackhub/backend/internal/auth"
	"github.com/zhouzirui/feedbackhub/backend/internal/model/feedback"
)

// Gate controls whether an account takes new messages.
// Reads and writes through Gate require the caller to be the account owner.
type Gate struct {
	accounts feedback.AccountStore
	logger   *zap.Logger
}

// NewGate wires the gate to the account store.
func NewGate(accounts feedback.AccountStore, logger *zap.Logger) *Gate {
	return &Gate{accounts: accounts, logger: logger}
}

// Status returns the current acceptance flag for the owner in ctx.
func (g *Gate) Status(ctx context.Context, handle string) (bool, error) {
	if !auth.IsOwner(ctx, handle) {
		return false, feedback.ErrUnauthorized
	}
	account, err := g.accounts.Get(ctx, handle)
	if err != nil {
		return false, err
	}
	return account.AcceptingMessages, nil
}

// SetStatus stores desired and returns the stored value. Setting the current value is a no-op success.
func (g *Gate) SetStatus(ctx context.Context, handle string, desired bool) (bool, error) {
	if !auth.IsOwner(ctx, handle) {
		return false, feedback.ErrUnauthorized
	}
	accepting, err := g.accounts.SetAccepting(ctx, handle, desired)
	if err != nil {
		return false, err
	}
	g.logger.Info("acceptance updated", zap.String("handle", handle), zap.Bool("accepting", accepting))
	return accepting, nil
}

// Accepting is the anonymous read path submission.Service goes through.
// It exposes only the flag, never the write capability.
func (g *Gate) Accepting(ctx context.Context, handle string) (bool, error) {
	account, err := g.accounts.Get(ctx, handle)
	if err != nil {
		return false, err
	}
	return account.AcceptingMessages, nil
}
