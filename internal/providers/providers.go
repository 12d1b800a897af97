// Package providers defines the contract shared by all asset generators. Each
// category (audio, thumbnail, video) implements it in its own subpackage; the
// production chain treats them uniformly.
package providers

import "context"

// Input carries the job fields a generator may use. Per-request parameters
// such as the narration voice travel here explicitly instead of through
// shared provider configuration.
type Input struct {
	JobID  string
	Title  string
	Script string
	Voice  string
}

// Payload is the raw product of one generation attempt, prior to upload.
type Payload struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
	Seconds     int
}

// Generator produces media bytes for one job input. Implementations report
// failure through the error return; the chain decides what happens next.
type Generator interface {
	Name() string
	Generate(ctx context.Context, in Input) (*Payload, error)
}
