package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
	"github.com/nguyentantai21042004/wisdomflow/internal/flow"
)

// Routing signals of the pipeline graphs.
const (
	sigAcquire         flow.Signal = "acquire"
	sigSkipAcquisition flow.Signal = "skipAcquisition"
	sigRefine          flow.Signal = "refine"
	sigSkipRefinement  flow.Signal = "skipRefinement"
)

// acquireStation is the acquisition coordinator: one goroutine per
// source, pool bounds enforced inside the acquire service, exactly one
// result per source in input order.
type acquireStation struct {
	deps Deps
}

func (s *acquireStation) Name() string { return "acquisition" }

type acquireInput struct {
	sources   []domain.Source
	cancelled func() bool
	progress  func(int)
}

func (s *acquireStation) Prepare(st *State) (any, error) {
	return acquireInput{
		sources:   st.Sources,
		cancelled: st.cancelledFn(),
		progress:  st.progressFn(),
	}, nil
}

func (s *acquireStation) Execute(ctx context.Context, in any) (any, error) {
	ai := in.(acquireInput)
	results := make([]domain.AcquireResult, len(ai.sources))

	var done atomic.Int64
	var wg sync.WaitGroup
	for i, src := range ai.sources {
		if ai.cancelled() {
			results[i] = domain.AcquireResult{
				Status: domain.StatusCancelled,
				Title:  src.Title,
				JobID:  src.JobID,
				Err:    "run cancelled before dispatch",
			}
			done.Add(1)
			continue
		}
		wg.Add(1)
		go func(i int, src domain.Source) {
			defer wg.Done()
			results[i] = s.deps.Acquirer.Acquire(ctx, src)
			n := done.Add(1)
			ai.progress(int(n * 50 / int64(len(ai.sources))))
		}(i, src)
	}
	wg.Wait()

	return results, nil
}

func (s *acquireStation) Finalize(st *State, in, out any) flow.Signal {
	results := out.([]domain.AcquireResult)

	succeeded := 0
	for _, r := range results {
		st.AcquireResults = append(st.AcquireResults, r)
		switch r.Status {
		case domain.StatusSuccess:
			succeeded++
			st.TranscriptFiles = append(st.TranscriptFiles, r.TranscriptFile)
			st.TranscriptJobs[r.TranscriptFile] = r.JobID
		case domain.StatusFailure:
			st.notify(fmt.Sprintf("Acquisition failed: %s (%s)", r.Title, r.Err), domain.SeverityWarning)
		}
	}

	st.notify(fmt.Sprintf("Acquisition complete: %d/%d sources", succeeded, len(results)), domain.SeverityInfo)
	st.progress(50)
	return flow.Next
}
