// Package expand derives additional presentation variants (aspect ratio and
// resolution) from a successfully generated primary video asset.
package expand

import (
	"context"
	"sync"

	"relayforge/internal/domain"
	"relayforge/internal/infra"
	"relayforge/internal/storage"
)

// Target is one presentation to derive from the primary asset.
type Target struct {
	Name   string
	Width  int
	Height int
	Aspect string
}

// DefaultTargets covers the platform formats the distribution stage expects,
// keyed by the presentation names its publishers look up.
func DefaultTargets() []Target {
	return []Target{
		{Name: "portrait", Width: 1080, Height: 1920, Aspect: "9:16"},
		{Name: "square", Width: 1080, Height: 1080, Aspect: "1:1"},
		{Name: "landscape", Width: 1280, Height: 720, Aspect: "16:9"},
	}
}

// Transcoder re-encodes source bytes into one target presentation.
type Transcoder interface {
	Resize(ctx context.Context, src []byte, srcExt string, target Target) ([]byte, error)
}

// Expander fans out re-encodes across all targets and settles them all:
// one target's failure never affects the others.
type Expander struct {
	targets    []Target
	transcoder Transcoder
	store      storage.ObjectStore
	logger     infra.Logger
}

func NewExpander(targets []Target, transcoder Transcoder, store storage.ObjectStore, logger infra.Logger) *Expander {
	if len(targets) == 0 {
		targets = DefaultTargets()
	}
	return &Expander{
		targets:    targets,
		transcoder: transcoder,
		store:      store,
		logger:     logger.With().Str("component", "expander").Logger(),
	}
}

// Expand derives every configured presentation from the primary video bytes
// and returns the variants that succeeded. Failures are logged and dropped;
// the caller's job status is unaffected either way.
func (e *Expander) Expand(ctx context.Context, jobID string, src []byte, srcExt string) map[string]domain.FormatVariant {
	type slot struct {
		name    string
		variant domain.FormatVariant
		ok      bool
	}

	slots := make([]slot, len(e.targets))
	var wg sync.WaitGroup
	for i, target := range e.targets {
		wg.Add(1)
		go func(i int, target Target) {
			defer wg.Done()
			out, err := e.transcoder.Resize(ctx, src, srcExt, target)
			if err != nil {
				e.logger.Warn().Err(err).Str("job_id", jobID).Str("target", target.Name).
					Msg("expand: transcode failed")
				return
			}
			key := storage.VariantKey(jobID, target.Name, ".mp4")
			url, err := e.store.Upload(ctx, key, "video/mp4", out)
			if err != nil {
				e.logger.Warn().Err(err).Str("job_id", jobID).Str("key", key).
					Msg("expand: upload failed")
				return
			}
			slots[i] = slot{
				name:    target.Name,
				variant: domain.FormatVariant{URL: url, Width: target.Width, Height: target.Height},
				ok:      true,
			}
		}(i, target)
	}
	wg.Wait()

	variants := make(map[string]domain.FormatVariant)
	for _, s := range slots {
		if s.ok {
			variants[s.name] = s.variant
		}
	}
	if len(variants) < len(e.targets) {
		e.logger.Warn().Str("job_id", jobID).Int("requested", len(e.targets)).
			Int("produced", len(variants)).Msg("expand: some presentations failed")
	}
	return variants
}
