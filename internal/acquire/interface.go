package acquire

import (
	"context"

	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
)

// Service acquires raw text from one source. Every call produces exactly
// one result; failures are reported in the result, never panicked.
type Service interface {
	Acquire(ctx context.Context, src domain.Source) domain.AcquireResult
}
