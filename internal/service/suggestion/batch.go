package suggestion

import (
	"iter"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Delimiter separates suggested prompts inside generated text.
const Delimiter = "||"

// DefaultSuggestions is served when no generation model is configured.
const DefaultSuggestions = "What's your favorite movie?||Do you have any pets?||What's your dream job?"

// Batch accumulates one generation stream. It is owned by a single request
// and discarded with it; a new request starts a new Batch.
type Batch struct {
	raw strings.Builder
	err error
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Feed appends a chunk of generated text.
func (b *Batch) Feed(chunk string) {
	b.raw.WriteString(chunk)
}

// Raw returns everything fed so far.
func (b *Batch) Raw() string {
	return b.raw.String()
}

// Segments splits the current buffer on Delimiter. Each call reflects the
// buffer at call time and nothing is drained. Empty segments are kept, and
// a trailing segment without a closing delimiter is still yielded.
func (b *Batch) Segments() iter.Seq[string] {
	raw := b.raw.String()
	return func(yield func(string) bool) {
		if raw == "" {
			return
		}
		for segment := range strings.SplitSeq(raw, Delimiter) {
			if !yield(segment) {
				return
			}
		}
	}
}

// Fail records an upstream error. Segments derived so far stay available.
func (b *Batch) Fail(err error) {
	b.err = err
}

// Err returns the upstream failure, if any.
func (b *Batch) Err() error {
	return b.err
}

// Options is the display view of a batch: trimmed, with empty segments dropped.
func Options(b *Batch) []string {
	return lo.FilterMap(slices.Collect(b.Segments()), func(segment string, _ int) (string, bool) {
		trimmed := strings.TrimSpace(segment)
		return trimmed, trimmed != ""
	})
}
