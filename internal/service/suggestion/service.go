package suggestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/zhouzirui/feedbackhub/backend/internal/model/feedback"
)

const systemPrompt = "You write conversation starters for an anonymous feedback board that is open to a diverse audience. " +
	"Avoid personal or sensitive topics and prefer universal themes that encourage friendly interaction."

const userPrompt = "Create a list of three open-ended and engaging questions formatted as a single string. " +
	"Each question should be separated by '||'. {query}"

// Generator opens a stream of generated text.
type Generator interface {
	Stream(ctx context.Context) (*schema.StreamReader[*schema.Message], error)
}

// Service generates suggestions with a chat model.
type Service struct {
	chain  compose.Runnable[map[string]any, *schema.Message]
	logger *zap.Logger
}

// NewService compiles the suggestion chain on top of chatModel.
func NewService(ctx context.Context, chatModel model.BaseChatModel, logger *zap.Logger) (*Service, error) {
	template := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(template)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile suggestion chain: %w", err)
	}

	return &Service{chain: runnable, logger: logger}, nil
}

// Stream starts a generation request.
func (s *Service) Stream(ctx context.Context) (*schema.StreamReader[*schema.Message], error) {
	stream, err := s.chain.Stream(ctx, map[string]any{
		"query": "Keep each question short, and do not number them.",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", feedback.ErrUpstreamFailed, err)
	}
	return stream, nil
}

// StaticGenerator replays fixed text as a stream, one segment per chunk.
type StaticGenerator struct {
	Text string
}

// Stream implements Generator.
func (g StaticGenerator) Stream(context.Context) (*schema.StreamReader[*schema.Message], error) {
	parts := strings.SplitAfter(g.Text, Delimiter)
	chunks := make([]*schema.Message, 0, len(parts))
	for _, part := range parts {
		chunks = append(chunks, schema.AssistantMessage(part, nil))
	}
	return schema.StreamReaderFromArray(chunks), nil
}

// Consume reads stream into batch until it ends, calling onChunk after every
// non-empty chunk. The stream is closed on return. Upstream errors are
// recorded on the batch and returned as ErrUpstreamFailed; what was already
// fed stays in the batch. When ctx ends first, ctx.Err() is returned instead
// and the batch is left unfailed.
func Consume(ctx context.Context, stream *schema.StreamReader[*schema.Message], batch *Batch, onChunk func(chunk string) error) error {
	defer stream.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			// a stream torn down by our own deadline or a departed requester
			// is not an upstream failure
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			wrapped := fmt.Errorf("%w: %v", feedback.ErrUpstreamFailed, err)
			batch.Fail(wrapped)
			return wrapped
		}
		if chunk == nil || chunk.Content == "" {
			continue
		}

		batch.Feed(chunk.Content)
		if onChunk != nil {
			if err := onChunk(chunk.Content); err != nil {
				return err
			}
		}
	}
}
