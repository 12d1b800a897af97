package store

import (
	"context"
	"encoding/json"
	"fmt"

	"relayforge/internal/domain"
	"relayforge/internal/infra"
	"relayforge/internal/sqlinline"
)

// ContentJobStore is the producer's gateway to the content_jobs table. It is
// the single writer of the media_complete and failed transitions.
type ContentJobStore struct {
	runner infra.SQLExecutor
}

func NewContentJobStore(runner infra.SQLExecutor) *ContentJobStore {
	return &ContentJobStore{runner: runner}
}

// Load fetches the job's text inputs and current state for one production pass.
func (s *ContentJobStore) Load(ctx context.Context, jobID string) (*domain.ContentJob, error) {
	row := s.runner.QueryRow(ctx, sqlinline.QLoadContentJob, jobID)

	var job domain.ContentJob
	var mediaJSON []byte
	if err := row.Scan(
		&job.ID,
		&job.Title,
		&job.ScriptText,
		&job.Analysis,
		&job.Status,
		&mediaJSON,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("load job %s: %w", jobID, err)
	}

	if len(mediaJSON) > 0 {
		if err := json.Unmarshal(mediaJSON, &job.Media); err != nil {
			return nil, fmt.Errorf("decode media document for job %s: %w", jobID, err)
		}
	}
	return &job, nil
}

// MarkProcessing moves a pending job forward before generation starts. The
// transition is best-effort: a redelivered job is already past pending.
func (s *ContentJobStore) MarkProcessing(ctx context.Context, jobID string) error {
	_, err := s.runner.Exec(ctx, sqlinline.QMarkProcessing, jobID, domain.JobStatusProcessing)
	return err
}

// CommitMediaResult replaces the job's media document wholesale, points
// media_url at the primary asset, and writes the terminal status for this
// stage. The statement only touches rows still in a producer-owned status, so
// a late redelivery cannot drag a job back from a downstream state. Repeating
// the commit for the same job is safe: the document and status are
// overwritten, never appended.
func (s *ContentJobStore) CommitMediaResult(ctx context.Context, jobID string, assets domain.AssetMap, status domain.JobStatus) error {
	if assets == nil {
		assets = domain.AssetMap{}
	}
	mediaJSON, err := json.Marshal(assets)
	if err != nil {
		return fmt.Errorf("encode media document for job %s: %w", jobID, err)
	}

	tag, err := s.runner.Exec(ctx, sqlinline.QCommitMediaResult, jobID, primaryURL(assets), mediaJSON, status)
	if err != nil {
		return fmt.Errorf("%w: commit job %s: %v", domain.ErrPersistence, jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: commit job %s: %v", domain.ErrPersistence, jobID, domain.ErrJobNotFound)
	}
	return nil
}

// primaryURL picks the single representative URL written to media_url,
// preferring the richest asset present.
func primaryURL(assets domain.AssetMap) string {
	for _, category := range []domain.AssetCategory{domain.CategoryVideo, domain.CategoryAudio, domain.CategoryThumbnail} {
		if asset, ok := assets[category]; ok && asset.URL != "" {
			return asset.URL
		}
	}
	return ""
}
