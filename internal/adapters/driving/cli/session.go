package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/pdfchat/internal/adapters/driven/ai"
	"github.com/custodia-labs/pdfchat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pdfchat/internal/adapters/driven/extractor/pdf"
	"github.com/custodia-labs/pdfchat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pdfchat/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/pdfchat/internal/core/domain"
	"github.com/custodia-labs/pdfchat/internal/core/ports/driving"
	"github.com/custodia-labs/pdfchat/internal/core/services"
	"github.com/custodia-labs/pdfchat/internal/logger"
	"github.com/custodia-labs/pdfchat/internal/postprocessors/chunker"
)

const promptsDirName = "prompts"

// openChatSession builds the full pipeline from the current settings.
// The returned cleanup releases the index and provider clients.
func openChatSession(ctx context.Context) (driving.ChatSession, func(), error) {
	if settingsService == nil {
		return nil, nil, errSettingsNotConfigured
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("loading settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, nil, err
	}
	if err := pdf.CheckAvailable(); err != nil {
		logger.Warn("pdf: %v", err)
	}

	logger.Section("Providers")
	providers, err := ai.NewFactory(settings.Google).CreateServices(ctx, *settings)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("embedding: %s (%s), llm: %s (%s)",
		settings.Embedding.Provider, providers.Embedding.ModelName(),
		settings.LLM.Provider, providers.LLM.ModelName())

	embedder := services.NewEmbedder(providers.Embedding,
		services.WithBatchSize(settings.Embedding.BatchSize),
		services.WithDimension(settings.Embedding.ResolveEmbeddingDimensions()),
	)
	chunks := chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)
	newIndex := flat.Factory(settings.Index.Name, sqlite.Open)

	composer := services.NewComposer(providers.LLM, settings.LLM, settings.Retrieval.MaxHistory)
	if baseDir != "" {
		prompts, err := file.NewPromptStore(filepath.Join(baseDir, promptsDirName))
		if err != nil {
			logger.Warn("prompts: %v, using built-in prompt", err)
		} else {
			composer.SetPromptStore(prompts)
		}
	}

	session := services.NewSession(services.SessionConfig{
		Extractor: pdf.New(),
		Indexer:   services.NewIndexer(chunks, embedder, newIndex),
		Embedder:  embedder,
		Composer:  composer,
		NewIndex:  newIndex,
		IndexDir:  settings.Index.Dir,
		TopK:      settings.Retrieval.TopK,
		OnStateChange: func(s domain.TurnState) {
			logger.Debug("turn: %s", s)
		},
	})

	cleanup := func() {
		if err := session.Close(); err != nil {
			logger.Warn("closing index: %v", err)
		}
		providers.Close()
	}
	return session, cleanup, nil
}

// loadSession opens a session and restores the persisted index.
// A missing index is reported as ErrIndexNotReady.
func loadSession(ctx context.Context) (driving.ChatSession, func(), error) {
	session, cleanup, err := newChatSession(ctx)
	if err != nil {
		return nil, nil, err
	}
	found, err := session.Load(ctx)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("loading index: %w", err)
	}
	if !found {
		cleanup()
		return nil, nil, fmt.Errorf("%w: run 'pdfchat index <file.pdf>' first", domain.ErrIndexNotReady)
	}
	return session, cleanup, nil
}

// prepareSession opens a session on pdfPath when given, else on the saved index.
func prepareSession(ctx context.Context, pdfPath string, report func(*driving.IndexSummary)) (driving.ChatSession, func(), error) {
	if pdfPath == "" {
		return loadSession(ctx)
	}
	session, cleanup, err := newChatSession(ctx)
	if err != nil {
		return nil, nil, err
	}
	summary, err := session.Process(ctx, pdfPath)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if report != nil {
		report(summary)
	}
	return session, cleanup, nil
}
