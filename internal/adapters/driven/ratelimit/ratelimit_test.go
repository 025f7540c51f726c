package ratelimit

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

type stubEmbedding struct {
	err   error
	calls int
}

func (s *stubEmbedding) Embed(_ context.Context, _ string) ([]float32, error) {
	s.calls++
	return []float32{1}, s.err
}

func (s *stubEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, s.err
}

func (s *stubEmbedding) Dimensions() int              { return 1 }
func (s *stubEmbedding) ModelName() string            { return "stub" }
func (s *stubEmbedding) Ping(_ context.Context) error { return nil }
func (s *stubEmbedding) Close() error                 { return nil }

type stubLLM struct {
	err error
}

func (s *stubLLM) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	return "ok", s.err
}
func (s *stubLLM) ModelName() string            { return "stub" }
func (s *stubLLM) Ping(_ context.Context) error { return nil }
func (s *stubLLM) Close() error                 { return nil }

func TestLimiter_UnlimitedAllowsAll(t *testing.T) {
	l := NewLimiter(Config{})

	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow())
	}
}

func TestLimiter_BurstThenBlocked(t *testing.T) {
	l := NewLimiter(Config{RequestsPerSecond: 0.001, BurstSize: 2})

	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestLimiter_WaitHonoursContext(t *testing.T) {
	l := NewLimiter(Config{RequestsPerSecond: 0.001})
	require.True(t, l.Allow())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)

	assert.Error(t, err)
}

func TestLimiter_Backoff(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(Config{Backoff: time.Minute})
	l.now = func() time.Time { return now }

	l.RecordRateLimitError(0)
	assert.False(t, l.Allow())

	now = now.Add(61 * time.Second)
	assert.True(t, l.Allow())
}

func TestLimiter_BackoffBlocksWait(t *testing.T) {
	l := NewLimiter(Config{})
	l.RecordRateLimitError(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWrapEmbedding_RecordsRateLimit(t *testing.T) {
	inner := &stubEmbedding{err: domain.NewProviderError("vertex", "embed", http.StatusTooManyRequests, nil)}
	l := NewLimiter(Config{})
	svc := WrapEmbedding(inner, l)

	_, err := svc.EmbedBatch(context.Background(), []string{"a"})

	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.False(t, l.Allow())
	assert.Equal(t, "stub", svc.ModelName())
}

func TestWrapEmbedding_PassesThrough(t *testing.T) {
	inner := &stubEmbedding{}
	l := NewLimiter(Config{})
	svc := WrapEmbedding(inner, l)

	vec, err := svc.Embed(context.Background(), "a")

	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vec)
	assert.Equal(t, 1, inner.calls)
	assert.True(t, l.Allow())
}

func TestWrapEmbedding_CancelledBeforeCall(t *testing.T) {
	inner := &stubEmbedding{}
	l := NewLimiter(Config{})
	l.RecordRateLimitError(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WrapEmbedding(inner, l).Embed(ctx, "a")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, inner.calls)
}

func TestWrapLLM(t *testing.T) {
	l := NewLimiter(Config{})
	svc := WrapLLM(&stubLLM{}, l)

	out, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	svc = WrapLLM(&stubLLM{err: domain.NewProviderError("vertex", "generate", http.StatusTooManyRequests, nil)}, l)
	_, err = svc.Generate(context.Background(), "p", driven.GenerateOptions{})
	assert.Error(t, err)
	assert.False(t, l.Allow())
}
