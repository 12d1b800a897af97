package domain

import "time"

// AssetCategory enumerates the kinds of media the producer turns a job into.
type AssetCategory string

const (
	CategoryAudio     AssetCategory = "audio"
	CategoryThumbnail AssetCategory = "thumbnail"
	CategoryVideo     AssetCategory = "video"
)

// MediaAsset is one generated artifact. Assets are immutable once created;
// reprocessing a job replaces them wholesale rather than merging.
type MediaAsset struct {
	Category    AssetCategory            `json:"category"`
	URL         string                   `json:"url"`
	Provider    string                   `json:"provider"`
	GeneratedAt time.Time                `json:"generated_at"`
	Formats     map[string]FormatVariant `json:"formats,omitempty"`
}

// FormatVariant is one derived presentation of a primary video asset.
type FormatVariant struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// AssetMap is the aggregated production result persisted onto the job record.
type AssetMap map[AssetCategory]MediaAsset
