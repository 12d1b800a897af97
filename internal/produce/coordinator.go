package produce

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"relayforge/internal/domain"
	"relayforge/internal/expand"
	"relayforge/internal/infra"
	"relayforge/internal/providers"
)

// JobStore is the coordinator's gateway to job persistence.
type JobStore interface {
	Load(ctx context.Context, jobID string) (*domain.ContentJob, error)
	MarkProcessing(ctx context.Context, jobID string) error
	CommitMediaResult(ctx context.Context, jobID string, assets domain.AssetMap, status domain.JobStatus) error
}

// Options assembles a Coordinator.
type Options struct {
	Store           JobStore
	Chains          []*Chain
	Expander        *expand.Expander
	VoiceID         string
	ScriptThreshold int
	Logger          infra.Logger
}

// Coordinator orchestrates one complete production pass per job: it decides
// which categories apply, runs their chains concurrently, joins the results
// tolerating partial failure, expands the video formats, and persists the
// aggregate exactly once per pass.
type Coordinator struct {
	store           JobStore
	chains          []*Chain
	expander        *expand.Expander
	voiceID         string
	scriptThreshold int
	logger          infra.Logger
}

func NewCoordinator(opts Options) *Coordinator {
	threshold := opts.ScriptThreshold
	if threshold <= 0 {
		threshold = 100
	}
	return &Coordinator{
		store:           opts.Store,
		chains:          opts.Chains,
		expander:        opts.Expander,
		voiceID:         opts.VoiceID,
		scriptThreshold: threshold,
		logger:          opts.Logger.With().Str("component", "coordinator").Logger(),
	}
}

type chainOutcome struct {
	category domain.AssetCategory
	result   *Result
	err      error
}

// Process runs one production pass. Provider-level failures never escape the
// chains; only whole-job problems (missing job, persistence failure) return
// an error and reach the queue layer.
func (c *Coordinator) Process(ctx context.Context, jobID string) error {
	job, err := c.store.Load(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}

	if err := c.store.MarkProcessing(ctx, jobID); err != nil {
		c.logger.Warn().Err(err).Str("job_id", jobID).Msg("mark processing failed")
	}

	applicable := c.applicableChains(job)
	if !job.HasInputs() || len(applicable) == 0 {
		// A job with nothing to produce is vacuously complete. The empty
		// asset document makes that visible downstream.
		c.logger.Info().Str("job_id", jobID).Msg("no applicable categories")
		return c.store.CommitMediaResult(ctx, jobID, domain.AssetMap{}, domain.JobStatusMediaComplete)
	}

	in := providers.Input{
		JobID:  job.ID,
		Title:  job.Title,
		Script: job.ScriptText,
		Voice:  c.voiceID,
	}

	// Fan out one task per category and settle them all: a failed category
	// never cancels or blocks its siblings.
	outcomes := make([]chainOutcome, len(applicable))
	var wg sync.WaitGroup
	for i, chain := range applicable {
		wg.Add(1)
		go func(i int, chain *Chain) {
			defer wg.Done()
			result, err := chain.Produce(ctx, in)
			outcomes[i] = chainOutcome{category: chain.Category(), result: result, err: err}
		}(i, chain)
	}
	wg.Wait()

	assets := domain.AssetMap{}
	var videoResult *Result
	for _, outcome := range outcomes {
		if outcome.err != nil {
			c.logger.Warn().Err(outcome.err).Str("job_id", jobID).
				Str("category", string(outcome.category)).Msg("category failed")
			continue
		}
		assets[outcome.category] = outcome.result.Asset
		if outcome.category == domain.CategoryVideo {
			videoResult = outcome.result
		}
	}

	status := domain.JobStatusMediaComplete
	if len(assets) == 0 {
		status = domain.JobStatusFailed
	}

	// Expansion failures are logged inside the expander and never downgrade
	// the job's status.
	if videoResult != nil && c.expander != nil {
		formats := c.expander.Expand(ctx, jobID, videoResult.Data, videoResult.Ext)
		if len(formats) > 0 {
			video := assets[domain.CategoryVideo]
			video.Formats = formats
			assets[domain.CategoryVideo] = video
		}
	}

	if err := c.store.CommitMediaResult(ctx, jobID, assets, status); err != nil {
		return fmt.Errorf("commit media result: %w", err)
	}

	c.logger.Info().Str("job_id", jobID).Str("status", string(status)).
		Int("assets", len(assets)).Msg("production pass complete")
	return nil
}

// applicableChains evaluates the per-category applicability policy once per
// job: audio needs a script, a thumbnail needs a title, and video needs a
// script long enough to carry a clip.
func (c *Coordinator) applicableChains(job *domain.ContentJob) []*Chain {
	script := strings.TrimSpace(job.ScriptText)
	title := strings.TrimSpace(job.Title)

	var applicable []*Chain
	for _, chain := range c.chains {
		switch chain.Category() {
		case domain.CategoryAudio:
			if script != "" {
				applicable = append(applicable, chain)
			}
		case domain.CategoryThumbnail:
			if title != "" {
				applicable = append(applicable, chain)
			}
		case domain.CategoryVideo:
			if len(script) > c.scriptThreshold {
				applicable = append(applicable, chain)
			}
		}
	}
	return applicable
}
