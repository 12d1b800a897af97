package storage

import "context"

// ObjectStore is the gateway to durable byte storage. Implementations must
// overwrite on identical keys so that reprocessing a job replaces its assets
// instead of duplicating them.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}
