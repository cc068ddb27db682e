package pipeline

import (
	"context"
	"os"

	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
	"github.com/nguyentantai21042004/wisdomflow/internal/flow"
)

// cleanupStation removes the run's temp directory. Failures are reported
// but never abort the run.
type cleanupStation struct {
	deps Deps
}

func (s *cleanupStation) Name() string { return "cleanup" }

func (s *cleanupStation) Prepare(st *State) (any, error) {
	return st.TempDir, nil
}

func (s *cleanupStation) Execute(ctx context.Context, in any) (any, error) {
	tempDir := in.(string)
	if tempDir == "" {
		return nil, nil
	}
	if err := os.RemoveAll(tempDir); err != nil {
		s.deps.Logger.Warn(ctx, "cleanup %s: %v", tempDir, err)
		return err, nil
	}
	return nil, nil
}

func (s *cleanupStation) Finalize(st *State, in, out any) flow.Signal {
	if out != nil {
		st.notify("Temp cleanup failed; leftover files may remain", domain.SeverityWarning)
	}
	return flow.Next
}
