package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/nguyentantai21042004/wisdomflow/internal/config"
	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
	"github.com/nguyentantai21042004/wisdomflow/internal/flow"
	"github.com/nguyentantai21042004/wisdomflow/internal/store"
)

// taskCreatorStation builds the transcript × style cross product. When
// the run acquired nothing (refinement-only flows), transcripts are
// discovered from the intermediate directory instead.
type taskCreatorStation struct {
	deps Deps
}

func (s *taskCreatorStation) Name() string { return "taskCreator" }

type taskInput struct {
	cfg            *config.Config
	transcripts    []string
	transcriptJobs map[string]int
}

func (s *taskCreatorStation) Prepare(st *State) (any, error) {
	return taskInput{
		cfg:            st.Cfg,
		transcripts:    st.TranscriptFiles,
		transcriptJobs: st.TranscriptJobs,
	}, nil
}

func (s *taskCreatorStation) Execute(ctx context.Context, in any) (any, error) {
	ti := in.(taskInput)

	transcripts := ti.transcripts
	if len(transcripts) == 0 {
		discovered, err := s.deps.Store.DiscoverTranscripts()
		if err != nil {
			return nil, fmt.Errorf("discover transcripts: %w", err)
		}
		transcripts = discovered
		s.deps.Logger.Info(ctx, "discovered %d transcripts", len(discovered))
	}

	styleByName := make(map[string]config.Style, len(ti.cfg.Refine.Styles))
	for _, style := range ti.cfg.Refine.Styles {
		styleByName[style.Name] = style
	}
	jobByID := make(map[int]config.Job, len(ti.cfg.Jobs))
	for _, job := range ti.cfg.Jobs {
		jobByID[job.ID] = job
	}

	var tasks []domain.RefineTask
	for _, transcript := range transcripts {
		title := store.TitleFromTranscript(transcript)
		jobID := ti.transcriptJobs[transcript]

		styles := ti.cfg.Refine.Styles
		language := ""
		outDir := ti.cfg.Paths.Output

		if job, ok := jobByID[jobID]; ok && jobID != 0 {
			if len(job.Styles) > 0 {
				styles = styles[:0:0]
				for _, name := range job.Styles {
					style, ok := styleByName[name]
					if !ok {
						s.deps.Logger.Warn(ctx, "job %d: unknown style %q", jobID, name)
						continue
					}
					styles = append(styles, style)
				}
			}
			language = job.Language
			if job.OutputSubdir != "" {
				outDir = filepath.Join(outDir, job.OutputSubdir)
			}
		}

		for _, style := range styles {
			tasks = append(tasks, domain.RefineTask{
				TranscriptFile: transcript,
				StyleName:      style.Name,
				StylePrompt:    style.Prompt,
				OutputFile:     filepath.Join(outDir, title+"_"+store.SafeTitle(style.Name)+".md"),
				Title:          title,
				JobID:          jobID,
				Language:       language,
			})
		}
	}
	return tasks, nil
}

func (s *taskCreatorStation) Finalize(st *State, in, out any) flow.Signal {
	tasks := out.([]domain.RefineTask)
	st.RefineTasks = tasks

	st.notify(fmt.Sprintf("Created %d refinement tasks", len(tasks)), domain.SeverityInfo)
	if len(tasks) == 0 {
		return sigSkipRefinement
	}
	return sigRefine
}
