package produce

import (
	"context"
	"errors"
	"fmt"
	"time"

	"relayforge/internal/domain"
	"relayforge/internal/infra"
	"relayforge/internal/providers"
	"relayforge/internal/storage"
)

// Chain runs the ordered fallback sequence of generators for one asset
// category. The order is resolved once at startup from configuration; at run
// time every failure simply advances to the next link. The terminal local
// fallback guarantees the chain settles with either an uploaded asset or an
// upload-layer failure.
type Chain struct {
	category   domain.AssetCategory
	generators []providers.Generator
	store      storage.ObjectStore
	logger     infra.Logger
}

func NewChain(category domain.AssetCategory, store storage.ObjectStore, logger infra.Logger, generators ...providers.Generator) *Chain {
	return &Chain{
		category:   category,
		generators: generators,
		store:      store,
		logger:     logger.With().Str("category", string(category)).Logger(),
	}
}

func (c *Chain) Category() domain.AssetCategory {
	return c.category
}

// Result is a settled chain run. The uploaded bytes are retained so the
// video result can feed format expansion without a round trip to storage.
type Result struct {
	Asset domain.MediaAsset
	Data  []byte
	Ext   string
}

// Produce drives the chain to completion for one job. The produced bytes are
// uploaded under a key derived from job id, category, and provider name, so
// reprocessing the same job overwrites instead of duplicating.
func (c *Chain) Produce(ctx context.Context, in providers.Input) (*Result, error) {
	for _, g := range c.generators {
		payload, err := g.Generate(ctx, in)
		if err != nil {
			if errors.Is(err, domain.ErrNotConfigured) {
				c.logger.Debug().Str("provider", g.Name()).Msg("produce: provider unconfigured, skipping")
				continue
			}
			c.logger.Warn().Err(err).Str("provider", g.Name()).Str("job_id", in.JobID).
				Msg("produce: provider failed, trying next")
			continue
		}

		key := storage.AssetKey(in.JobID, c.category, g.Name(), payload.Ext)
		url, err := c.store.Upload(ctx, key, payload.ContentType, payload.Data)
		if err != nil {
			c.logger.Warn().Err(err).Str("provider", g.Name()).Str("key", key).
				Msg("produce: upload failed, trying next")
			continue
		}

		return &Result{
			Asset: domain.MediaAsset{
				Category:    c.category,
				URL:         url,
				Provider:    g.Name(),
				GeneratedAt: time.Now().UTC(),
			},
			Data: payload.Data,
			Ext:  payload.Ext,
		}, nil
	}

	return nil, fmt.Errorf("%w: every %s provider failed", domain.ErrProviderFailure, c.category)
}
