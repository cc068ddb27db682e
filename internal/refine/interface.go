package refine

import (
	"context"

	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
)

// LLM generates text from a single prompt.
type LLM interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Service refines one raw transcript into a styled document. Every call
// produces exactly one result; failures are reported, never panicked.
type Service interface {
	Refine(ctx context.Context, task domain.RefineTask) domain.RefineResult
}
