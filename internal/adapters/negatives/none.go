package negatives

import (
	"context"

	"datasplit/internal/ports"
)

// None is a source that never supplies images. Every requested negative
// becomes a reported shortfall.
type None struct{}

var _ ports.NegativeSource = None{}

func (None) Name() string { return "none" }

func (None) FetchNegatives(context.Context, string, int, string) (int, error) {
	return 0, nil
}
