package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/zhouzirui/feedbackhub/backend/internal/model/feedback"
)

// Store keeps accounts and their messages in process memory.
// It implements both feedback.AccountStore and feedback.MessageStore.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]feedback.Account
	messages map[string][]feedback.Message
}

var (
	_ feedback.AccountStore = (*Store)(nil)
	_ feedback.MessageStore = (*Store)(nil)
)

// NewStore bootstraps an empty in-memory store suitable for development and tests.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]feedback.Account),
		messages: make(map[string][]feedback.Message),
	}
}

// Create registers an account unless the handle is already taken.
func (s *Store) Create(_ context.Context, account feedback.Account) (feedback.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.accounts[account.Handle]; ok {
		return existing, nil
	}
	s.accounts[account.Handle] = account
	s.messages[account.Handle] = make([]feedback.Message, 0, 16)
	return account, nil
}

// Get resolves a handle.
func (s *Store) Get(_ context.Context, handle string) (feedback.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[handle]
	if !ok {
		return feedback.Account{}, feedback.ErrNotFound
	}
	return account, nil
}

// SetAccepting overwrites the acceptance flag. Last write wins.
func (s *Store) SetAccepting(_ context.Context, handle string, accepting bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[handle]
	if !ok {
		return false, feedback.ErrNotFound
	}
	account.AcceptingMessages = accepting
	s.accounts[handle] = account
	return account.AcceptingMessages, nil
}

// Append adds a message to the account's history.
func (s *Store) Append(_ context.Context, handle string, message feedback.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[handle]; !ok {
		return feedback.ErrNotFound
	}
	s.messages[handle] = append(s.messages[handle], message)
	return nil
}

// List returns a copy of the account's messages, newest first.
func (s *Store) List(_ context.Context, handle string) ([]feedback.Message, error) {
	s.mu.RLock()
	stored, ok := s.messages[handle]
	if !ok {
		s.mu.RUnlock()
		return nil, feedback.ErrNotFound
	}
	copied := make([]feedback.Message, len(stored))
	copy(copied, stored)
	s.mu.RUnlock()

	// reversed first so the stable sort keeps later inserts ahead on equal timestamps
	lo.Reverse(copied)
	slices.SortStableFunc(copied, func(a, b feedback.Message) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return copied, nil
}

// DeleteByID removes one message owned by handle.
func (s *Store) DeleteByID(_ context.Context, handle, messageID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.messages[handle]
	if !ok {
		return false, nil
	}
	idx := slices.IndexFunc(stored, func(m feedback.Message) bool { return m.ID == messageID })
	if idx < 0 {
		return false, nil
	}
	s.messages[handle] = slices.Delete(stored, idx, idx+1)
	return true, nil
}
