package ai

import (
	"context"
	"fmt"

	"github.com/amishk599/uxradar/internal/model"
)

// NopCompleter stands in when ai.enabled is false. Every call fails, so
// deduplication stays URL-only and listings keep heuristic eligibility.
type NopCompleter struct{}

// NewNopCompleter returns a NopCompleter.
func NewNopCompleter() *NopCompleter {
	return &NopCompleter{}
}

// Complete always returns model.ErrAssistedStepFailed.
func (n *NopCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	return "", fmt.Errorf("%w: ai disabled", model.ErrAssistedStepFailed)
}
