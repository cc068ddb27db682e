package pipeline

import (
	"path/filepath"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/wisdomflow/internal/config"
	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
)

// State is the shared context of one pipeline run. Stations mutate it in
// Finalize only; it is created per run and never shared across runs.
type State struct {
	Cfg     *config.Config
	RunID   string
	TempDir string
	Input   string

	// Notify and Progress report run status to the caller; Cancelled is
	// the cooperative stop check. All three may be nil.
	Notify    func(message string, severity domain.Severity)
	Progress  func(percent int)
	Cancelled func() bool

	Sources         []domain.Source
	AcquireResults  []domain.AcquireResult
	TranscriptFiles []string
	TranscriptJobs  map[string]int
	RefineTasks     []domain.RefineTask
	RefineResults   []domain.RefineResult
	Summary         Summary
}

// NewState creates the run state. The config is copied with a run-scoped
// temp directory so concurrent runs never collide and cleanup can remove
// the whole directory.
func NewState(cfg *config.Config, input string) *State {
	runID := uuid.NewString()
	runCfg := *cfg
	runCfg.Paths.Temp = filepath.Join(cfg.Paths.Temp, "run_"+runID[:8])

	return &State{
		Cfg:            &runCfg,
		RunID:          runID,
		TempDir:        runCfg.Paths.Temp,
		Input:          input,
		TranscriptJobs: make(map[string]int),
	}
}

func (s *State) notify(msg string, sev domain.Severity) {
	if s.Notify != nil {
		s.Notify(msg, sev)
	}
}

func (s *State) progress(percent int) {
	if s.Progress != nil {
		s.Progress(percent)
	}
}

// cancelled returns the cooperative stop check as a callable func, nil
// guarded, for handing into station Execute inputs.
func (s *State) cancelledFn() func() bool {
	if s.Cancelled != nil {
		return s.Cancelled
	}
	return func() bool { return false }
}

func (s *State) progressFn() func(int) {
	if s.Progress != nil {
		return s.Progress
	}
	return func(int) {}
}
