package service

import (
	"context"

	"github.com/noah-isme/edu-assign-api/internal/engine"
)

// RationaleProvider produces human-readable explanations for pairings. An
// implementation may call an external service; the optimization flow treats
// any failure as non-fatal and keeps the engine's formulaic rationale.
type RationaleProvider interface {
	Explain(ctx context.Context, result engine.AssignmentResult) (string, error)
}
