package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/nguyentantai21042004/wisdomflow/internal/config"
	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
	"github.com/nguyentantai21042004/wisdomflow/internal/flow"
)

// refineStation is the refinement coordinator: fan-out over the tasks
// under the provider's concurrency ceiling, one result per task in input
// order.
type refineStation struct {
	deps Deps
}

func (s *refineStation) Name() string { return "refinement" }

type refineInput struct {
	cfg       *config.Config
	tasks     []domain.RefineTask
	cancelled func() bool
	progress  func(int)
}

func (s *refineStation) Prepare(st *State) (any, error) {
	return refineInput{
		cfg:       st.Cfg,
		tasks:     st.RefineTasks,
		cancelled: st.cancelledFn(),
		progress:  st.progressFn(),
	}, nil
}

func (s *refineStation) Execute(ctx context.Context, in any) (any, error) {
	ri := in.(refineInput)
	results := make([]domain.RefineResult, len(ri.tasks))

	capacity := config.CapFor(ri.cfg.RefineModelEntry(), ri.cfg.Performance.AsyncWorkers)
	sem := make(chan struct{}, capacity)

	var done atomic.Int64
	var wg sync.WaitGroup
	for i, task := range ri.tasks {
		if ri.cancelled() || ctx.Err() != nil {
			results[i] = domain.RefineResult{
				Status:    domain.StatusCancelled,
				TaskID:    task.ID(),
				Title:     task.Title,
				StyleName: task.StyleName,
				Err:       "run cancelled before dispatch",
			}
			done.Add(1)
			continue
		}

		if ri.cfg.Run.SkipExisting {
			if _, err := os.Stat(task.OutputFile); err == nil {
				results[i] = domain.RefineResult{
					Status:     domain.StatusSkipped,
					TaskID:     task.ID(),
					Title:      task.Title,
					StyleName:  task.StyleName,
					OutputFile: task.OutputFile,
				}
				done.Add(1)
				continue
			}
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(i int, task domain.RefineTask) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.deps.Refiner.Refine(ctx, task)
			n := done.Add(1)
			ri.progress(50 + int(n*50/int64(len(ri.tasks))))
		}(i, task)
	}
	wg.Wait()

	return results, nil
}

func (s *refineStation) Finalize(st *State, in, out any) flow.Signal {
	results := out.([]domain.RefineResult)

	succeeded, skipped := 0, 0
	for _, r := range results {
		st.RefineResults = append(st.RefineResults, r)
		switch r.Status {
		case domain.StatusSuccess:
			succeeded++
		case domain.StatusSkipped:
			skipped++
		case domain.StatusFailure:
			st.notify(fmt.Sprintf("Refinement failed: %s (%s)", r.TaskID, r.Err), domain.SeverityWarning)
		}
	}

	msg := fmt.Sprintf("Refinement complete: %d/%d tasks", succeeded, len(results))
	if skipped > 0 {
		msg += fmt.Sprintf(", %d skipped", skipped)
	}
	st.notify(msg, domain.SeverityInfo)
	return flow.Next
}
