package ports

import "context"

// NegativeSource acquires images that do not show a concept.
// Availability is best-effort: fetched may be lower than count.
type NegativeSource interface {
	// FetchNegatives stores up to count images in destDir and returns how many it stored
	FetchNegatives(ctx context.Context, concept string, count int, destDir string) (fetched int, err error)

	// Name identifies the source in logs
	Name() string
}
