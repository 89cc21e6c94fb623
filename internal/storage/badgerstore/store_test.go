package badgerstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/feedbackhub/backend/internal/model/feedback"
)

func openTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	store, err := Open(dir, zap.NewNop())
	require.NoError(t, err)
	return store
}

func TestAppendAndListNewestFirst(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := openTestStore(t, t.TempDir())
	defer store.Close()

	_, err := store.Create(ctx, feedback.NewAccount("alice"))
	req.NoError(err)

	at := time.Now().UTC()
	messages := []feedback.Message{
		{ID: "m1", Content: "first", CreatedAt: at},
		{ID: "m2", Content: "second", CreatedAt: at.Add(time.Minute)},
		{ID: "m3", Content: "third", CreatedAt: at.Add(2 * time.Minute)},
	}
	for _, m := range messages {
		req.NoError(store.Append(ctx, "alice", m))
	}

	got, err := store.List(ctx, "alice")
	req.NoError(err)
	req.Len(got, len(messages))
	req.Equal("m3", got[0].ID)
	req.Equal("m1", got[2].ID)
	req.True(got[0].CreatedAt.Equal(messages[2].CreatedAt))
}

func TestListTiesUseReverseInsertion(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := openTestStore(t, t.TempDir())
	defer store.Close()

	_, err := store.Create(ctx, feedback.NewAccount("alice"))
	req.NoError(err)

	at := time.Now().UTC()
	for _, id := range []string{"a", "b", "c"} {
		req.NoError(store.Append(ctx, "alice", feedback.Message{ID: id, Content: id, CreatedAt: at}))
	}

	got, err := store.List(ctx, "alice")
	req.NoError(err)
	req.Equal("c", got[0].ID)
	req.Equal("b", got[1].ID)
	req.Equal("a", got[2].ID)
}

func TestListDoesNotLeakAcrossPrefixes(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := openTestStore(t, t.TempDir())
	defer store.Close()

	for _, h := range []string{"al", "alice"} {
		_, err := store.Create(ctx, feedback.NewAccount(h))
		req.NoError(err)
	}
	req.NoError(store.Append(ctx, "alice", feedback.Message{ID: "x", Content: "for alice", CreatedAt: time.Now().UTC()}))

	got, err := store.List(ctx, "al")
	req.NoError(err)
	req.Empty(got)
}

func TestDeleteTwice(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := openTestStore(t, t.TempDir())
	defer store.Close()

	for _, h := range []string{"alice", "bob"} {
		_, err := store.Create(ctx, feedback.NewAccount(h))
		req.NoError(err)
	}
	at := time.Now().UTC()
	req.NoError(store.Append(ctx, "alice", feedback.Message{ID: "keep", Content: "k", CreatedAt: at}))
	req.NoError(store.Append(ctx, "alice", feedback.Message{ID: "drop", Content: "d", CreatedAt: at}))
	req.NoError(store.Append(ctx, "bob", feedback.Message{ID: "bobs", Content: "b", CreatedAt: at}))

	removed, err := store.DeleteByID(ctx, "bob", "drop")
	req.NoError(err)
	req.False(removed)

	removed, err = store.DeleteByID(ctx, "alice", "drop")
	req.NoError(err)
	req.True(removed)

	removed, err = store.DeleteByID(ctx, "alice", "drop")
	req.NoError(err)
	req.False(removed)

	alice, err := store.List(ctx, "alice")
	req.NoError(err)
	req.Len(alice, 1)
	req.Equal("keep", alice[0].ID)

	bob, err := store.List(ctx, "bob")
	req.NoError(err)
	req.Len(bob, 1)
}

func TestAcceptanceFlagSurvivesReopen(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	dir := t.TempDir()

	store := openTestStore(t, dir)
	_, err := store.Create(ctx, feedback.NewAccount("alice"))
	req.NoError(err)
	_, err = store.SetAccepting(ctx, "alice", true)
	req.NoError(err)
	accepting, err := store.SetAccepting(ctx, "alice", false)
	req.NoError(err)
	req.False(accepting)
	req.NoError(store.Close())

	store = openTestStore(t, dir)
	defer store.Close()
	account, err := store.Get(ctx, "alice")
	req.NoError(err)
	req.False(account.AcceptingMessages)

	again, err := store.Create(ctx, feedback.NewAccount("alice"))
	req.NoError(err)
	req.False(again.AcceptingMessages)
}

func TestAppendSurvivesConcurrentToggles(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := openTestStore(t, t.TempDir())
	defer store.Close()

	_, err := store.Create(ctx, feedback.NewAccount("alice"))
	req.NoError(err)

	const n = 200
	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			_, err := store.SetAccepting(ctx, "alice", i%2 == 0)
			return err
		})
		g.Go(func() error {
			return store.Append(ctx, "alice", feedback.Message{
				ID:        fmt.Sprintf("m%d", i),
				Content:   "hello",
				CreatedAt: time.Now().UTC(),
			})
		})
	}
	req.NoError(g.Wait())

	got, err := store.List(ctx, "alice")
	req.NoError(err)
	req.Len(got, n)

	_, err = store.Get(ctx, "alice")
	req.NoError(err)
}

func TestUnknownHandle(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store, err := OpenInMemory(zap.NewNop())
	req.NoError(err)
	defer store.Close()

	_, err = store.Get(ctx, "ghost")
	req.ErrorIs(err, feedback.ErrNotFound)

	_, err = store.SetAccepting(ctx, "ghost", false)
	req.ErrorIs(err, feedback.ErrNotFound)

	err = store.Append(ctx, "ghost", feedback.Message{ID: "x", Content: "x", CreatedAt: time.Now()})
	req.ErrorIs(err, feedback.ErrNotFound)

	_, err = store.List(ctx, "ghost")
	req.ErrorIs(err, feedback.ErrNotFound)
}
