package pipeline

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
	"github.com/nguyentantai21042004/wisdomflow/internal/flow"
)

// Summary is the per-run outcome tally.
type Summary struct {
	SourcesTotal    int
	SourcesAcquired int
	SourcesSkipped  int
	SourcesFailed   int
	TasksTotal      int
	TasksRefined    int
	TasksSkipped    int
	TasksFailed     int
	Cancelled       bool
}

// completionStation tallies the run outcome and reports it. Partial
// success is normal completion, not an error.
type completionStation struct {
	deps Deps
}

func (s *completionStation) Name() string { return "completion" }

func (s *completionStation) Prepare(st *State) (any, error) {
	sum := Summary{
		SourcesTotal: len(st.AcquireResults),
		TasksTotal:   len(st.RefineResults),
	}
	for _, r := range st.AcquireResults {
		switch r.Status {
		case domain.StatusSuccess:
			sum.SourcesAcquired++
		case domain.StatusSkipped:
			sum.SourcesSkipped++
		case domain.StatusFailure:
			sum.SourcesFailed++
		case domain.StatusCancelled:
			sum.Cancelled = true
		}
	}
	for _, r := range st.RefineResults {
		switch r.Status {
		case domain.StatusSuccess:
			sum.TasksRefined++
		case domain.StatusSkipped:
			sum.TasksSkipped++
		case domain.StatusFailure:
			sum.TasksFailed++
		case domain.StatusCancelled:
			sum.Cancelled = true
		}
	}
	return sum, nil
}

func (s *completionStation) Execute(ctx context.Context, in any) (any, error) {
	return in, nil
}

func (s *completionStation) Finalize(st *State, in, out any) flow.Signal {
	sum := out.(Summary)
	st.Summary = sum

	severity := domain.SeveritySuccess
	switch {
	case sum.Cancelled:
		severity = domain.SeverityWarning
	case sum.SourcesFailed > 0 || sum.TasksFailed > 0:
		severity = domain.SeverityWarning
	case sum.SourcesTotal == 0 && sum.TasksTotal == 0:
		severity = domain.SeverityWarning
	}

	st.notify(fmt.Sprintf(
		"Run complete: %d/%d sources acquired (%d skipped), %d/%d documents refined (%d skipped)",
		sum.SourcesAcquired, sum.SourcesTotal, sum.SourcesSkipped,
		sum.TasksRefined, sum.TasksTotal, sum.TasksSkipped,
	), severity)
	st.progress(100)

	// No outgoing edge is wired for this signal; the flow ends here.
	return flow.Next
}
