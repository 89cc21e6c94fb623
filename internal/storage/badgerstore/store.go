package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/zhouzirui/feedbackhub/backend/internal/model/feedback"
)

const (
	sequenceBandwidth = 128
	maxTxnAttempts    = 32
)

// Store persists accounts and messages in BadgerDB.
//
// Key layout:
//
//	account:{handle}                         -> Account
//	msg:{handle}:{unix nanos %019d}:{seq %020d} -> Message
//	msgid:{handle}:{id}                      -> message key
//
// The zero-padded timestamp and insertion sequence make a reverse prefix scan
// yield newest-first order with later inserts ahead on equal timestamps.
type Store struct {
	db  *badger.DB
	seq *badger.Sequence
	// accountMu serialises account read-modify-write; badger holds the
	// directory lock, so this process is the only writer.
	accountMu sync.Mutex
	logger    *zap.Logger
}

var (
	_ feedback.AccountStore = (*Store)(nil)
	_ feedback.MessageStore = (*Store)(nil)
)

// Open opens (or creates) the database at path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(newBadgerLogger(logger))
	return open(opts, logger)
}

// OpenInMemory opens a non-persistent database, mainly for tests.
func OpenInMemory(logger *zap.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(newBadgerLogger(logger))
	return open(opts, logger)
}

func open(opts badger.Options, logger *zap.Logger) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	seq, err := db.GetSequence([]byte("seq:msg"), sequenceBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("message sequence: %w", err)
	}
	return &Store{db: db, seq: seq, logger: logger}, nil
}

// Close releases the sequence lease and closes the database.
func (s *Store) Close() error {
	if err := s.seq.Release(); err != nil {
		s.logger.Warn("release message sequence", zap.Error(err))
	}
	return s.db.Close()
}

func accountKey(handle string) []byte {
	return []byte("account:" + handle)
}

func messagePrefix(handle string) []byte {
	return []byte("msg:" + handle + ":")
}

func messageIndexKey(handle, id string) []byte {
	return []byte("msgid:" + handle + ":" + id)
}

// update runs fn in a read-write transaction and reruns it while the commit
// loses to a concurrent writer of a key fn read. fn must reset its own outputs.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for range maxTxnAttempts {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", feedback.ErrStorageUnavailable, err)
}

// Create stores a new account, or returns the existing one unchanged.
func (s *Store) Create(ctx context.Context, account feedback.Account) (feedback.Account, error) {
	s.accountMu.Lock()
	defer s.accountMu.Unlock()

	var stored feedback.Account
	err := s.update(ctx, func(txn *badger.Txn) error {
		stored = account
		existing, err := readAccount(txn, account.Handle)
		if err == nil {
			stored = existing
			return nil
		}
		if !errors.Is(err, feedback.ErrNotFound) {
			return err
		}
		return writeAccount(txn, account)
	})
	if err != nil {
		return feedback.Account{}, unavailable(err)
	}
	return stored, nil
}

// Get resolves a handle.
func (s *Store) Get(_ context.Context, handle string) (feedback.Account, error) {
	var account feedback.Account
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		account, err = readAccount(txn, handle)
		return err
	})
	switch {
	case errors.Is(err, feedback.ErrNotFound):
		return feedback.Account{}, err
	case err != nil:
		return feedback.Account{}, unavailable(err)
	}
	return account, nil
}

// SetAccepting overwrites the flag inside one transaction.
// Concurrent writers resolve last-write-wins.
func (s *Store) SetAccepting(ctx context.Context, handle string, accepting bool) (bool, error) {
	s.accountMu.Lock()
	defer s.accountMu.Unlock()

	err := s.update(ctx, func(txn *badger.Txn) error {
		account, err := readAccount(txn, handle)
		if err != nil {
			return err
		}
		account.AcceptingMessages = accepting
		return writeAccount(txn, account)
	})
	switch {
	case errors.Is(err, feedback.ErrNotFound):
		return false, err
	case err != nil:
		return false, unavailable(err)
	}
	return accepting, nil
}

// Append writes the message and its id index in one transaction.
// The account is resolved in a separate read so the write never conflicts
// with a concurrent acceptance toggle; accounts are never removed.
func (s *Store) Append(_ context.Context, handle string, message feedback.Message) error {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(accountKey(handle))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return feedback.ErrNotFound
		}
		return err
	})
	switch {
	case errors.Is(err, feedback.ErrNotFound):
		return err
	case err != nil:
		return unavailable(err)
	}

	n, err := s.seq.Next()
	if err != nil {
		return unavailable(err)
	}
	key := fmt.Appendf(messagePrefix(handle), "%019d:%020d", message.CreatedAt.UnixNano(), n)
	value, err := sonic.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, value); err != nil {
			return err
		}
		return txn.Set(messageIndexKey(handle, message.ID), key)
	})
	if err != nil {
		return unavailable(err)
	}
	return nil
}

// List scans the handle's messages in reverse key order.
func (s *Store) List(_ context.Context, handle string) ([]feedback.Message, error) {
	messages := make([]feedback.Message, 0, 16)
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(accountKey(handle)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return feedback.ErrNotFound
			}
			return err
		}

		prefix := messagePrefix(handle)
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(append(prefix, 0xFF)); it.ValidForPrefix(prefix); it.Next() {
			var message feedback.Message
			err := it.Item().Value(func(val []byte) error {
				return sonic.Unmarshal(val, &message)
			})
			if err != nil {
				return err
			}
			messages = append(messages, message)
		}
		return nil
	})
	switch {
	case errors.Is(err, feedback.ErrNotFound):
		return nil, err
	case err != nil:
		return nil, unavailable(err)
	}
	return messages, nil
}

// DeleteByID removes the message and its index entry. Unknown ids report false.
func (s *Store) DeleteByID(ctx context.Context, handle, messageID string) (bool, error) {
	var removed bool
	err := s.update(ctx, func(txn *badger.Txn) error {
		removed = false
		idx := messageIndexKey(handle, messageID)
		item, err := txn.Get(idx)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		if err := txn.Delete(idx); err != nil {
			return err
		}
		removed = true
		return nil
	})
	if err != nil {
		return false, unavailable(err)
	}
	if removed {
		s.logger.Debug("message deleted", zap.String("handle", handle), zap.String("message_id", messageID))
	}
	return removed, nil
}

func readAccount(txn *badger.Txn, handle string) (feedback.Account, error) {
	item, err := txn.Get(accountKey(handle))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return feedback.Account{}, feedback.ErrNotFound
	}
	if err != nil {
		return feedback.Account{}, err
	}
	var account feedback.Account
	err = item.Value(func(val []byte) error {
		return sonic.Unmarshal(val, &account)
	})
	return account, err
}

func writeAccount(txn *badger.Txn, account feedback.Account) error {
	value, err := sonic.Marshal(account)
	if err != nil {
		return err
	}
	return txn.Set(accountKey(account.Handle), value)
}
