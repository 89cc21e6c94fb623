package feedback

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestShortID(t *testing.T) {
	req := require.New(t)
	req.Equal("3f2a9c", Message{ID: "3f2a9c41-8d1e-4b7a-9f0e-2c5d6e7f8a9b"}.ShortID())
	req.Equal("abc", Message{ID: "abc"}.ShortID())
	req.Equal("", Message{}.ShortID())
}

func TestContentErrorsWrapInvalidContent(t *testing.T) {
	req := require.New(t)
	req.ErrorIs(ErrEmptyContent, ErrInvalidContent)
	req.ErrorIs(ErrTooLong, ErrInvalidContent)
	req.False(errors.Is(ErrEmptyContent, ErrTooLong))
	req.Contains(ErrTooLong.Error(), "300")
}

func TestNewAccountAcceptsByDefault(t *testing.T) {
	acc := NewAccount("alice")
	require.Equal(t, "alice", acc.Handle)
	require.True(t, acc.AcceptingMessages)
	require.False(t, acc.CreatedAt.IsZero())
}

func TestMessageJSONHasNoSender(t *testing.T) {
	raw, err := json.Marshal(Message{ID: "m1", Content: "hi"})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	require.ElementsMatch(t, []string{"id", "content", "createdAt"}, lo.Keys(fields))
}
