package storage

import (
	"fmt"

	"relayforge/internal/domain"
)

// Storage keys are deterministic and derived from the job id, so a repeated
// production pass overwrites the previous objects under identical keys.

// AssetKey names a primary asset produced by one provider for one category.
// ext includes the leading dot.
func AssetKey(jobID string, category domain.AssetCategory, provider, ext string) string {
	return fmt.Sprintf("jobs/%s/%s_%s%s", jobID, category, provider, ext)
}

// VariantKey names an expanded video presentation.
func VariantKey(jobID, presentation, ext string) string {
	return fmt.Sprintf("jobs/%s/%s%s", jobID, presentation, ext)
}
