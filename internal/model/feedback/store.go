//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../../mocks/mock_store.go -package=mocks
package feedback

import "context"

// MessageStore persists messages per owning account.
// Authorization is the caller's job; the store trusts its caller.
type MessageStore interface {
	// Append stores message under handle. Each call is one atomic write.
	Append(ctx context.Context, handle string, message Message) error
	// List returns the account's messages newest first, ties broken by reverse insertion order.
	List(ctx context.Context, handle string) ([]Message, error)
	// DeleteByID reports whether a message of handle with messageID was removed.
	DeleteByID(ctx context.Context, handle, messageID string) (bool, error)
}

// AccountStore resolves handles and holds the acceptance flag.
type AccountStore interface {
	// Get returns ErrNotFound when handle does not resolve.
	Get(ctx context.Context, handle string) (Account, error)
	// Create stores a new account. It is a no-op returning the stored account when handle already exists.
	Create(ctx context.Context, account Account) (Account, error)
	// SetAccepting overwrites the flag and returns the stored value.
	SetAccepting(ctx context.Context, handle string, accepting bool) (bool, error)
}
