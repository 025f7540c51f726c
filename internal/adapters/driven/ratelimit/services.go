package ratelimit

import (
	"context"

	"github.com/custodia-labs/pdfchat/internal/core/ports/driven"
)

// Ensure the decorators implement the interfaces.
var (
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
	_ driven.LLMService       = (*LLMService)(nil)
)

// EmbeddingService paces calls to an underlying embedding service.
type EmbeddingService struct {
	driven.EmbeddingService
	limiter *Limiter
}

// WrapEmbedding returns svc paced by limiter.
func WrapEmbedding(svc driven.EmbeddingService, limiter *Limiter) *EmbeddingService {
	return &EmbeddingService{EmbeddingService: svc, limiter: limiter}
}

// Embed waits for the limiter, then embeds text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	vec, err := s.EmbeddingService.Embed(ctx, text)
	s.limiter.observe(err)
	return vec, err
}

// EmbedBatch waits for the limiter, then embeds texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	vectors, err := s.EmbeddingService.EmbedBatch(ctx, texts)
	s.limiter.observe(err)
	return vectors, err
}

// LLMService paces calls to an underlying LLM service.
type LLMService struct {
	driven.LLMService
	limiter *Limiter
}

// WrapLLM returns svc paced by limiter.
func WrapLLM(svc driven.LLMService, limiter *Limiter) *LLMService {
	return &LLMService{LLMService: svc, limiter: limiter}
}

// Generate waits for the limiter, then generates.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	out, err := s.LLMService.Generate(ctx, prompt, opts)
	s.limiter.observe(err)
	return out, err
}
