package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/wisdomflow/internal/captions"
	"github.com/nguyentantai21042004/wisdomflow/internal/config"
	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
	"github.com/nguyentantai21042004/wisdomflow/internal/logger"
	"github.com/nguyentantai21042004/wisdomflow/internal/store"
)

type fakeAcquirer struct {
	st    store.Store
	fail  map[string]bool
	delay bool
}

func (f *fakeAcquirer) Acquire(ctx context.Context, src domain.Source) domain.AcquireResult {
	if f.delay {
		time.Sleep(time.Duration(rand.Intn(10)) * time.Millisecond)
	}
	if f.fail[src.Title] {
		return domain.AcquireResult{
			Status: domain.StatusFailure,
			Title:  src.Title,
			JobID:  src.JobID,
			Err:    "simulated acquisition failure",
		}
	}
	path, err := f.st.SaveTranscript(src.Title, "raw text for "+src.Title)
	if err != nil {
		return domain.AcquireResult{Status: domain.StatusFailure, Title: src.Title, Err: err.Error()}
	}
	return domain.AcquireResult{
		Status:         domain.StatusSuccess,
		Title:          src.Title,
		TranscriptFile: path,
		TranscriptText: "raw text for " + src.Title,
		JobID:          src.JobID,
	}
}

type fakeRefiner struct {
	mu     sync.Mutex
	active int
	peak   int
	calls  []string
	fail   map[string]bool
}

func (f *fakeRefiner) Refine(ctx context.Context, task domain.RefineTask) domain.RefineResult {
	f.mu.Lock()
	f.active++
	if f.active > f.peak {
		f.peak = f.active
	}
	f.calls = append(f.calls, task.ID())
	f.mu.Unlock()

	time.Sleep(time.Duration(rand.Intn(5)+1) * time.Millisecond)

	f.mu.Lock()
	f.active--
	f.mu.Unlock()

	if f.fail[task.ID()] {
		return domain.RefineResult{
			Status:    domain.StatusFailure,
			TaskID:    task.ID(),
			Title:     task.Title,
			StyleName: task.StyleName,
			Err:       "simulated refinement failure",
		}
	}
	if err := os.MkdirAll(filepath.Dir(task.OutputFile), 0755); err != nil {
		return domain.RefineResult{Status: domain.StatusFailure, TaskID: task.ID(), Err: err.Error()}
	}
	if err := os.WriteFile(task.OutputFile, []byte("refined "+task.ID()), 0644); err != nil {
		return domain.RefineResult{Status: domain.StatusFailure, TaskID: task.ID(), Err: err.Error()}
	}
	return domain.RefineResult{
		Status:     domain.StatusSuccess,
		TaskID:     task.ID(),
		Title:      task.Title,
		StyleName:  task.StyleName,
		OutputFile: task.OutputFile,
	}
}

type fakeFetcher struct {
	playlist []string
}

func (f *fakeFetcher) ProbeURL(ctx context.Context, url string) (captions.Probe, error) {
	return captions.Probe{Title: "Video " + titleFromURL(url), Author: "Channel"}, nil
}

func (f *fakeFetcher) ExpandPlaylist(ctx context.Context, url string) ([]string, error) {
	return f.playlist, nil
}

func (f *fakeFetcher) FetchCaptions(ctx context.Context, url string) (string, error) {
	return "", domain.ErrUnavailable
}

func (f *fakeFetcher) DownloadAudio(ctx context.Context, url, destPath string) (string, error) {
	return destPath, nil
}

func testPipelineConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Paths: config.PathsConfig{
			Output:       filepath.Join(dir, "out"),
			Intermediate: filepath.Join(dir, "intermediate"),
			Temp:         filepath.Join(dir, "temp"),
		},
		Performance: config.PerformanceConfig{ProcessWorkers: 4, AsyncWorkers: 10},
		Refine: config.RefineConfig{
			Styles: []config.Style{
				{Name: "Summary", Prompt: "Summarize in [Language]:\n\n"},
				{Name: "Article", Prompt: "Rewrite as an article in [Language]:\n\n"},
			},
			Language:       "English",
			ChunkSizeWords: 70000,
		},
	}
	cfg.Providers.RefineModels = []config.ModelEntry{
		{ID: "gemini/gemini-2.5-flash", Provider: "gemini", ModelName: "gemini-2.5-flash", Default: true},
	}
	cfg.Providers.RefineModel = "gemini/gemini-2.5-flash"
	return cfg
}

// stateRecorder captures notifications and progress; Progress fires from
// worker goroutines, so access is locked.
type stateRecorder struct {
	mu       sync.Mutex
	notes    []string
	progress []int
}

func record(st *State) *stateRecorder {
	rec := &stateRecorder{}
	st.Notify = func(msg string, sev domain.Severity) {
		rec.mu.Lock()
		rec.notes = append(rec.notes, msg)
		rec.mu.Unlock()
	}
	st.Progress = func(p int) {
		rec.mu.Lock()
		rec.progress = append(rec.progress, p)
		rec.mu.Unlock()
	}
	return rec
}

func (r *stateRecorder) hasNote(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notes {
		if strings.Contains(n, substr) {
			return true
		}
	}
	return false
}

func (r *stateRecorder) lastProgress() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.progress) == 0 {
		return 0, false
	}
	return r.progress[len(r.progress)-1], true
}

func TestAcquireStationOneResultPerSource(t *testing.T) {
	cfg := testPipelineConfig(t)
	st := store.New(cfg.Paths.Intermediate)
	deps := Deps{
		Logger:   logger.Discard(),
		Store:    st,
		Acquirer: &fakeAcquirer{st: st, delay: true, fail: map[string]bool{"source_07": true}},
	}

	state := NewState(cfg, "")
	record(state)
	for i := 0; i < 20; i++ {
		state.Sources = append(state.Sources, domain.Source{
			Path:  fmt.Sprintf("/media/source_%02d.mp3", i),
			Kind:  domain.SourceLocalMedia,
			Title: fmt.Sprintf("source_%02d", i),
		})
	}

	station := &acquireStation{deps}
	in, err := station.Prepare(state)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	out, err := station.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	station.Finalize(state, in, out)

	if len(state.AcquireResults) != 20 {
		t.Fatalf("got %d results, want exactly 20", len(state.AcquireResults))
	}
	for i, r := range state.AcquireResults {
		want := fmt.Sprintf("source_%02d", i)
		if r.Title != want {
			t.Errorf("result %d title = %q, want %q (order lost)", i, r.Title, want)
		}
	}
	if len(state.TranscriptFiles) != 19 {
		t.Errorf("got %d transcripts, want 19 (one failure)", len(state.TranscriptFiles))
	}
}

func TestRefineStationCapNeverExceeded(t *testing.T) {
	cfg := testPipelineConfig(t)
	cfg.Providers.RefineModels[0].MaxConcurrency = 2

	refiner := &fakeRefiner{}
	deps := Deps{Logger: logger.Discard(), Refiner: refiner}

	state := NewState(cfg, "")
	record(state)
	for i := 0; i < 20; i++ {
		state.RefineTasks = append(state.RefineTasks, domain.RefineTask{
			TranscriptFile: fmt.Sprintf("/t/%02d_raw_transcript.txt", i),
			StyleName:      "Summary",
			OutputFile:     filepath.Join(cfg.Paths.Output, fmt.Sprintf("%02d_Summary.md", i)),
			Title:          fmt.Sprintf("%02d", i),
		})
	}

	station := &refineStation{deps}
	in, _ := station.Prepare(state)
	out, err := station.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	station.Finalize(state, in, out)

	if refiner.peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", refiner.peak)
	}
	if len(state.RefineResults) != 20 {
		t.Errorf("got %d results, want 20", len(state.RefineResults))
	}
}

func TestRefineStationSkipExisting(t *testing.T) {
	cfg := testPipelineConfig(t)
	cfg.Run.SkipExisting = true

	existing := filepath.Join(cfg.Paths.Output, "done_Summary.md")
	if err := os.MkdirAll(cfg.Paths.Output, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(existing, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	refiner := &fakeRefiner{}
	state := NewState(cfg, "")
	record(state)
	state.RefineTasks = []domain.RefineTask{
		{Title: "done", StyleName: "Summary", OutputFile: existing},
		{Title: "fresh", StyleName: "Summary", OutputFile: filepath.Join(cfg.Paths.Output, "fresh_Summary.md")},
	}

	station := &refineStation{Deps{Logger: logger.Discard(), Refiner: refiner}}
	in, _ := station.Prepare(state)
	out, err := station.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	station.Finalize(state, in, out)

	if state.RefineResults[0].Status != domain.StatusSkipped {
		t.Errorf("existing output status = %s, want skipped", state.RefineResults[0].Status)
	}
	if state.RefineResults[1].Status != domain.StatusSuccess {
		t.Errorf("fresh output status = %s", state.RefineResults[1].Status)
	}
	if len(refiner.calls) != 1 || refiner.calls[0] != "fresh_Summary" {
		t.Errorf("refiner calls = %v, want only fresh_Summary", refiner.calls)
	}
	if data, _ := os.ReadFile(existing); string(data) != "old" {
		t.Error("existing output was overwritten")
	}
}

func TestRefineStationFailureIsolation(t *testing.T) {
	cfg := testPipelineConfig(t)
	refiner := &fakeRefiner{fail: map[string]bool{"b_Summary": true}}

	state := NewState(cfg, "")
	rec := record(state)
	for _, title := range []string{"a", "b", "c"} {
		state.RefineTasks = append(state.RefineTasks, domain.RefineTask{
			Title:      title,
			StyleName:  "Summary",
			OutputFile: filepath.Join(cfg.Paths.Output, title+"_Summary.md"),
		})
	}

	station := &refineStation{Deps{Logger: logger.Discard(), Refiner: refiner}}
	in, _ := station.Prepare(state)
	out, err := station.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	station.Finalize(state, in, out)

	statuses := []string{
		state.RefineResults[0].Status,
		state.RefineResults[1].Status,
		state.RefineResults[2].Status,
	}
	want := []string{domain.StatusSuccess, domain.StatusFailure, domain.StatusSuccess}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("result %d status = %s, want %s", i, statuses[i], want[i])
		}
	}
	if !rec.hasNote("Refinement failed: b_Summary") {
		t.Errorf("no failure notification, notes = %v", rec.notes)
	}
}

func TestExpandStationResume(t *testing.T) {
	cfg := testPipelineConfig(t)
	cfg.Run.Resume = true

	inbox := t.TempDir()
	for _, name := range []string{"old_talk.mp3", "new_talk.mp3"} {
		if err := os.WriteFile(filepath.Join(inbox, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	st := store.New(cfg.Paths.Intermediate)
	if _, err := st.SaveTranscript("old_talk", "already here"); err != nil {
		t.Fatal(err)
	}

	state := NewState(cfg, inbox)
	record(state)
	station := &expandStation{Deps{Logger: logger.Discard(), Store: st}}

	in, err := station.Prepare(state)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	out, err := station.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	sig := station.Finalize(state, in, out)

	if sig != sigAcquire {
		t.Errorf("signal = %s, want acquire", sig)
	}
	if len(state.Sources) != 1 || state.Sources[0].Title != "new_talk" {
		t.Errorf("sources = %+v, want only new_talk", state.Sources)
	}
	if len(state.AcquireResults) != 1 || state.AcquireResults[0].Status != domain.StatusSkipped {
		t.Errorf("resume hit not recorded as skipped: %+v", state.AcquireResults)
	}
	if len(state.TranscriptFiles) != 1 {
		t.Errorf("resume hit transcript not carried into refinement")
	}
}

func TestExpandStationPlaylistRange(t *testing.T) {
	cfg := testPipelineConfig(t)
	cfg.Run.StartIndex = 2
	cfg.Run.EndIndex = 4

	fetcher := &fakeFetcher{playlist: []string{
		"https://www.youtube.com/watch?v=a",
		"https://www.youtube.com/watch?v=b",
		"https://www.youtube.com/watch?v=c",
		"https://www.youtube.com/watch?v=d",
		"https://www.youtube.com/watch?v=e",
	}}

	state := NewState(cfg, "https://www.youtube.com/playlist?list=PL1")
	record(state)
	station := &expandStation{Deps{Logger: logger.Discard(), Captions: fetcher, Store: store.New(cfg.Paths.Intermediate)}}

	in, _ := station.Prepare(state)
	out, err := station.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	station.Finalize(state, in, out)

	if len(state.Sources) != 3 {
		t.Fatalf("got %d sources, want 3 (range 2..4)", len(state.Sources))
	}
	if state.Sources[0].Title != "Video b" || state.Sources[2].Title != "Video d" {
		t.Errorf("range picked wrong items: %q .. %q", state.Sources[0].Title, state.Sources[2].Title)
	}
	if state.Sources[0].Kind != domain.SourceStreamURL {
		t.Errorf("kind = %s", state.Sources[0].Kind)
	}
}

func TestExpandStationBatchJobs(t *testing.T) {
	cfg := testPipelineConfig(t)

	docs := t.TempDir()
	if err := os.WriteFile(filepath.Join(docs, "one.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg.Jobs = []config.Job{
		{ID: 1, Input: filepath.Join(docs, "one.txt"), Styles: []string{"Summary"}},
		{ID: 2, Input: filepath.Join(docs, "missing.txt")},
	}

	state := NewState(cfg, "")
	record(state)
	station := &expandStation{Deps{Logger: logger.Discard(), Store: store.New(cfg.Paths.Intermediate)}}

	in, err := station.Prepare(state)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	out, err := station.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	station.Finalize(state, in, out)

	if len(state.Sources) != 1 {
		t.Fatalf("got %d sources, want 1 (bad job skipped)", len(state.Sources))
	}
	if state.Sources[0].JobID != 1 {
		t.Errorf("job id = %d, want 1", state.Sources[0].JobID)
	}
}

func TestTaskCreatorCrossProductAndOverrides(t *testing.T) {
	cfg := testPipelineConfig(t)
	cfg.Jobs = []config.Job{
		{ID: 7, Input: "ignored", Styles: []string{"Article"}, Language: "Vietnamese", OutputSubdir: "vn"},
	}

	state := NewState(cfg, "")
	record(state)
	state.TranscriptFiles = []string{
		"/t/plain_raw_transcript.txt",
		"/t/jobbed_raw_transcript.txt",
	}
	state.TranscriptJobs["/t/jobbed_raw_transcript.txt"] = 7

	station := &taskCreatorStation{Deps{Logger: logger.Discard()}}
	in, _ := station.Prepare(state)
	out, err := station.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	sig := station.Finalize(state, in, out)

	if sig != sigRefine {
		t.Errorf("signal = %s, want refine", sig)
	}
	// plain gets both styles, jobbed only Article.
	if len(state.RefineTasks) != 3 {
		t.Fatalf("got %d tasks, want 3", len(state.RefineTasks))
	}

	var jobbed *domain.RefineTask
	for i := range state.RefineTasks {
		if state.RefineTasks[i].Title == "jobbed" {
			jobbed = &state.RefineTasks[i]
		}
	}
	if jobbed == nil {
		t.Fatal("no task for jobbed transcript")
	}
	if jobbed.StyleName != "Article" {
		t.Errorf("jobbed style = %s, want Article", jobbed.StyleName)
	}
	if jobbed.Language != "Vietnamese" {
		t.Errorf("jobbed language = %s", jobbed.Language)
	}
	if !strings.Contains(jobbed.OutputFile, filepath.Join("out", "vn")) {
		t.Errorf("jobbed output = %s, want vn subdir", jobbed.OutputFile)
	}
}

func TestFullFlowEndToEnd(t *testing.T) {
	cfg := testPipelineConfig(t)

	inbox := t.TempDir()
	for _, name := range []string{"alpha.mp3", "beta.mp3", "gamma.mp3"} {
		if err := os.WriteFile(filepath.Join(inbox, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	st := store.New(cfg.Paths.Intermediate)
	refiner := &fakeRefiner{}
	deps := Deps{
		Logger:   logger.Discard(),
		Store:    st,
		Acquirer: &fakeAcquirer{st: st},
		Refiner:  refiner,
	}

	state := NewState(cfg, inbox)
	rec := record(state)

	if err := os.MkdirAll(state.TempDir, 0755); err != nil {
		t.Fatal(err)
	}

	if err := FullFlow(deps).Run(context.Background(), state); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if state.Summary.SourcesAcquired != 3 {
		t.Errorf("sources acquired = %d, want 3", state.Summary.SourcesAcquired)
	}
	if state.Summary.TasksRefined != 6 {
		t.Errorf("tasks refined = %d, want 6 (3 transcripts x 2 styles)", state.Summary.TasksRefined)
	}

	entries, err := os.ReadDir(cfg.Paths.Output)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	if len(entries) != 6 {
		t.Errorf("output dir has %d files, want 6", len(entries))
	}

	if _, err := os.Stat(state.TempDir); !os.IsNotExist(err) {
		t.Error("run temp dir not cleaned up")
	}
	if !rec.hasNote("Run complete") {
		t.Errorf("no completion notification, notes = %v", rec.notes)
	}
	if last, ok := rec.lastProgress(); !ok || last != 100 {
		t.Errorf("progress did not reach 100 (last = %d)", last)
	}
}

func TestRefinementFlowDiscoversTranscripts(t *testing.T) {
	cfg := testPipelineConfig(t)
	st := store.New(cfg.Paths.Intermediate)
	for _, title := range []string{"first", "second"} {
		if _, err := st.SaveTranscript(title, "raw "+title); err != nil {
			t.Fatal(err)
		}
	}

	refiner := &fakeRefiner{}
	deps := Deps{Logger: logger.Discard(), Store: st, Refiner: refiner}

	state := NewState(cfg, "")
	record(state)

	if err := RefinementFlow(deps).Run(context.Background(), state); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if state.Summary.TasksRefined != 4 {
		t.Errorf("tasks refined = %d, want 4 (2 transcripts x 2 styles)", state.Summary.TasksRefined)
	}
	if state.Summary.SourcesTotal != 0 {
		t.Errorf("refinement-only run acquired %d sources", state.Summary.SourcesTotal)
	}
}

func TestAcquisitionFlowSkipsRefinement(t *testing.T) {
	cfg := testPipelineConfig(t)

	inbox := t.TempDir()
	if err := os.WriteFile(filepath.Join(inbox, "only.mp3"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	st := store.New(cfg.Paths.Intermediate)
	refiner := &fakeRefiner{}
	deps := Deps{
		Logger:   logger.Discard(),
		Store:    st,
		Acquirer: &fakeAcquirer{st: st},
		Refiner:  refiner,
	}

	state := NewState(cfg, inbox)
	record(state)

	if err := AcquisitionFlow(deps).Run(context.Background(), state); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if state.Summary.SourcesAcquired != 1 {
		t.Errorf("sources acquired = %d, want 1", state.Summary.SourcesAcquired)
	}
	if len(refiner.calls) != 0 {
		t.Errorf("refiner called in acquisition-only flow: %v", refiner.calls)
	}
}

func TestCancelledRunYieldsCancelledResults(t *testing.T) {
	cfg := testPipelineConfig(t)
	st := store.New(cfg.Paths.Intermediate)

	state := NewState(cfg, "")
	record(state)
	state.Cancelled = func() bool { return true }
	for i := 0; i < 3; i++ {
		state.Sources = append(state.Sources, domain.Source{
			Title: fmt.Sprintf("s%d", i),
			Kind:  domain.SourceLocalMedia,
		})
	}

	station := &acquireStation{Deps{Logger: logger.Discard(), Store: st, Acquirer: &fakeAcquirer{st: st}}}
	in, _ := station.Prepare(state)
	out, err := station.Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	station.Finalize(state, in, out)

	for i, r := range state.AcquireResults {
		if r.Status != domain.StatusCancelled {
			t.Errorf("result %d status = %s, want cancelled", i, r.Status)
		}
	}
}
