package suggestion

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/zhouzirui/feedbackhub/backend/internal/model/feedback"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestConsumeStaticGenerator(t *testing.T) {
	req := require.New(t)
	stream, err := StaticGenerator{Text: "A||B||C"}.Stream(context.Background())
	req.NoError(err)

	batch := NewBatch()
	var chunks []string
	err = Consume(context.Background(), stream, batch, func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	req.NoError(err)
	req.Equal([]string{"A||", "B||", "C"}, chunks)
	req.Equal([]string{"A", "B", "C"}, slices.Collect(batch.Segments()))
	req.NoError(batch.Err())
}

func TestConsumeKeepsPartialSegmentsOnUpstreamError(t *testing.T) {
	req := require.New(t)
	reader, writer := schema.Pipe[*schema.Message](4)

	go func() {
		defer writer.Close()
		writer.Send(schema.AssistantMessage("Any pets?||", nil), nil)
		writer.Send(schema.AssistantMessage("Favorite", nil), nil)
		writer.Send(nil, errors.New("connection reset"))
	}()

	batch := NewBatch()
	err := Consume(context.Background(), reader, batch, nil)
	req.ErrorIs(err, feedback.ErrUpstreamFailed)
	req.ErrorIs(batch.Err(), feedback.ErrUpstreamFailed)
	req.Equal([]string{"Any pets?", "Favorite"}, slices.Collect(batch.Segments()))
}

func TestConsumeStopsWhenRequesterLeaves(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	stream, err := StaticGenerator{Text: "A||B||C"}.Stream(ctx)
	req.NoError(err)

	batch := NewBatch()
	err = Consume(ctx, stream, batch, func(string) error {
		cancel()
		return nil
	})
	req.ErrorIs(err, context.Canceled)
	req.Equal("A||", batch.Raw())
	req.NoError(batch.Err(), "abandoning a request is not an upstream failure")
}

func TestConsumeReportsDeadlineNotUpstreamFailure(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	reader, writer := schema.Pipe[*schema.Message](2)
	go func() {
		defer writer.Close()
		writer.Send(schema.AssistantMessage("Any pets?||Fav", nil), nil)
		<-ctx.Done()
		writer.Send(nil, ctx.Err())
	}()

	batch := NewBatch()
	err := Consume(ctx, reader, batch, nil)
	req.ErrorIs(err, context.DeadlineExceeded)
	req.NotErrorIs(err, feedback.ErrUpstreamFailed)
	req.NoError(batch.Err())
	req.Equal([]string{"Any pets?", "Fav"}, slices.Collect(batch.Segments()))
}

func TestConsumePropagatesSinkError(t *testing.T) {
	stream, err := StaticGenerator{Text: "A||B"}.Stream(context.Background())
	require.NoError(t, err)

	sinkErr := errors.New("client went away")
	err = Consume(context.Background(), stream, NewBatch(), func(string) error { return sinkErr })
	require.ErrorIs(t, err, sinkErr)
}
