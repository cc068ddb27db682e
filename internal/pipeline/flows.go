package pipeline

import (
	"github.com/nguyentantai21042004/wisdomflow/internal/acquire"
	"github.com/nguyentantai21042004/wisdomflow/internal/captions"
	"github.com/nguyentantai21042004/wisdomflow/internal/config"
	"github.com/nguyentantai21042004/wisdomflow/internal/extract"
	"github.com/nguyentantai21042004/wisdomflow/internal/feed"
	"github.com/nguyentantai21042004/wisdomflow/internal/flow"
	"github.com/nguyentantai21042004/wisdomflow/internal/logger"
	"github.com/nguyentantai21042004/wisdomflow/internal/refine"
	"github.com/nguyentantai21042004/wisdomflow/internal/store"
	"github.com/nguyentantai21042004/wisdomflow/internal/transcribe"
	"github.com/nguyentantai21042004/wisdomflow/pkg/executor"
)

// Deps bundles everything the stations need. Tests swap in fakes.
type Deps struct {
	Logger   logger.Logger
	Captions captions.Fetcher
	Feeds    feed.Parser
	Store    store.Store
	Acquirer acquire.Service
	Refiner  refine.Service
}

// NewDeps wires the production dependency graph for one run's config.
func NewDeps(cfg *config.Config, l logger.Logger) Deps {
	exec := executor.New()
	st := store.New(cfg.Paths.Intermediate)
	fetcher := captions.New(cfg, exec, l)
	feeds := feed.New(l)

	pools := acquire.Pools{
		Process:    acquire.NewSemaphore(cfg.Performance.ProcessWorkers),
		Network:    acquire.NewSemaphore(cfg.Performance.AsyncWorkers),
		Transcribe: acquire.NewSemaphore(config.CapFor(cfg.ASRModelEntry(), cfg.Performance.AsyncWorkers)),
	}
	acquirer := acquire.New(l, cfg, pools, acquire.Deps{
		Executor:    exec,
		Captions:    fetcher,
		Feeds:       feeds,
		Extractor:   extract.New(l),
		Transcriber: transcribe.New(cfg, exec, l),
		Store:       st,
	})

	llm := refine.NewGemini(cfg.Providers.GeminiAPIKeys, l)
	refiner := refine.New(l, cfg, llm, st)

	return Deps{
		Logger:   l,
		Captions: fetcher,
		Feeds:    feeds,
		Store:    st,
		Acquirer: acquirer,
		Refiner:  refiner,
	}
}

// FullFlow runs both phases: expansion, acquisition, task creation,
// refinement, cleanup and the completion summary.
func FullFlow(deps Deps) *flow.Flow[*State] {
	expand := &expandStation{deps}
	acquireSt := &acquireStation{deps}
	tasks := &taskCreatorStation{deps}
	refineSt := &refineStation{deps}
	cleanup := &cleanupStation{deps}
	completion := &completionStation{deps}

	f := flow.New[*State](expand)
	f.Wire(expand, sigAcquire, acquireSt)
	f.Wire(expand, sigSkipAcquisition, tasks)
	f.Wire(acquireSt, flow.Next, tasks)
	f.Wire(tasks, sigRefine, refineSt)
	f.Wire(tasks, sigSkipRefinement, cleanup)
	f.Wire(refineSt, flow.Next, cleanup)
	f.Wire(cleanup, flow.Next, completion)
	return f
}

// AcquisitionFlow runs phase one only: raw transcripts are produced but
// never refined.
func AcquisitionFlow(deps Deps) *flow.Flow[*State] {
	expand := &expandStation{deps}
	acquireSt := &acquireStation{deps}
	cleanup := &cleanupStation{deps}
	completion := &completionStation{deps}

	f := flow.New[*State](expand)
	f.Wire(expand, sigAcquire, acquireSt)
	f.Wire(expand, sigSkipAcquisition, cleanup)
	f.Wire(acquireSt, flow.Next, cleanup)
	f.Wire(cleanup, flow.Next, completion)
	return f
}

// RefinementFlow runs phase two only: transcripts are discovered from the
// intermediate directory.
func RefinementFlow(deps Deps) *flow.Flow[*State] {
	tasks := &taskCreatorStation{deps}
	refineSt := &refineStation{deps}
	cleanup := &cleanupStation{deps}
	completion := &completionStation{deps}

	f := flow.New[*State](tasks)
	f.Wire(tasks, sigRefine, refineSt)
	f.Wire(tasks, sigSkipRefinement, cleanup)
	f.Wire(refineSt, flow.Next, cleanup)
	f.Wire(cleanup, flow.Next, completion)
	return f
}
