package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nguyentantai21042004/wisdomflow/internal/config"
	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
	"github.com/nguyentantai21042004/wisdomflow/internal/flow"
)

// expandStation turns the run input (or the configured batch jobs) into
// the list of acquisition sources: playlist and feed enumeration, folder
// walks, index range slicing and resume filtering all happen here.
type expandStation struct {
	deps Deps
}

func (s *expandStation) Name() string { return "expand" }

type expandInput struct {
	cfg       *config.Config
	input     string
	jobs      []config.Job
	cancelled func() bool
}

type expandOutput struct {
	sources []domain.Source
	// skipped holds resume hits whose transcript already exists; they
	// bypass acquisition but still feed refinement.
	skipped []domain.AcquireResult
}

func (s *expandStation) Prepare(st *State) (any, error) {
	if st.Input == "" && len(st.Cfg.Jobs) == 0 {
		return nil, fmt.Errorf("no input and no jobs configured")
	}
	return expandInput{
		cfg:       st.Cfg,
		input:     st.Input,
		jobs:      st.Cfg.Jobs,
		cancelled: st.cancelledFn(),
	}, nil
}

func (s *expandStation) Execute(ctx context.Context, in any) (any, error) {
	ei := in.(expandInput)

	var sources []domain.Source
	if ei.input != "" {
		srcs, err := s.enumerate(ctx, ei.cfg, ei.input, 0, ei.cancelled)
		if err != nil {
			return nil, fmt.Errorf("expand input %q: %w", ei.input, err)
		}
		sources = srcs
	} else {
		for _, job := range ei.jobs {
			if ei.cancelled() {
				break
			}
			srcs, err := s.enumerate(ctx, ei.cfg, job.Input, job.ID, ei.cancelled)
			if err != nil {
				s.deps.Logger.Warn(ctx, "job %d: expand %q: %v", job.ID, job.Input, err)
				continue
			}
			sources = append(sources, srcs...)
		}
	}

	out := expandOutput{}
	if ei.cfg.Run.Resume {
		for _, src := range sources {
			if src.Title != "" && s.deps.Store.TranscriptExists(src.Title) {
				out.skipped = append(out.skipped, domain.AcquireResult{
					Status:         domain.StatusSkipped,
					Title:          src.Title,
					TranscriptFile: s.deps.Store.TranscriptPath(src.Title),
					JobID:          src.JobID,
				})
				continue
			}
			out.sources = append(out.sources, src)
		}
	} else {
		out.sources = sources
	}
	return out, nil
}

func (s *expandStation) Finalize(st *State, in, out any) flow.Signal {
	eo := out.(expandOutput)

	st.Sources = eo.sources
	for _, r := range eo.skipped {
		st.AcquireResults = append(st.AcquireResults, r)
		st.TranscriptFiles = append(st.TranscriptFiles, r.TranscriptFile)
		st.TranscriptJobs[r.TranscriptFile] = r.JobID
	}

	msg := fmt.Sprintf("Expanded input into %d sources", len(eo.sources))
	if len(eo.skipped) > 0 {
		msg += fmt.Sprintf(" (%d already acquired)", len(eo.skipped))
	}
	st.notify(msg, domain.SeverityInfo)

	if len(eo.sources) == 0 {
		return sigSkipAcquisition
	}
	return sigAcquire
}

func (s *expandStation) enumerate(ctx context.Context, cfg *config.Config, input string, jobID int, cancelled func() bool) ([]domain.Source, error) {
	isDir := func(p string) bool {
		info, err := os.Stat(p)
		return err == nil && info.IsDir()
	}

	class := classifyInput(input, isDir)
	switch class {
	case classStream:
		return []domain.Source{s.streamSource(ctx, input, jobID)}, nil

	case classPlaylist:
		urls, err := s.deps.Captions.ExpandPlaylist(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("expand playlist: %w", err)
		}
		lo, hi := applyRange(len(urls), cfg.Run.StartIndex, cfg.Run.EndIndex)
		var sources []domain.Source
		for _, u := range urls[lo:hi] {
			if cancelled() {
				break
			}
			sources = append(sources, s.streamSource(ctx, u, jobID))
		}
		return sources, nil

	case classFeed:
		info, episodes, err := s.deps.Feeds.Parse(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("parse feed: %w", err)
		}
		lo, hi := applyRange(len(episodes), cfg.Run.StartIndex, cfg.Run.EndIndex)
		var sources []domain.Source
		for _, ep := range episodes[lo:hi] {
			author := ep.Author
			if author == "" {
				author = info.Author
			}
			sources = append(sources, domain.Source{
				Path:     input,
				Kind:     domain.SourceFeedEpisode,
				Title:    ep.Title,
				AudioURL: ep.AudioURL,
				JobID:    jobID,
				Meta: domain.Metadata{
					SourceURL:   input,
					Author:      author,
					PublishedAt: ep.PubDate,
					Duration:    ep.Duration,
					Description: ep.Description,
				},
			})
		}
		return sources, nil

	case classWebPage:
		return []domain.Source{{
			Path:  input,
			Kind:  domain.SourceDocument,
			Title: titleFromURL(input),
			JobID: jobID,
			Meta:  domain.Metadata{SourceURL: input},
		}}, nil

	case classMediaFile, classDocumentFile:
		if _, err := os.Stat(input); err != nil {
			return nil, fmt.Errorf("input file %s: %w", input, err)
		}
		kind := domain.SourceLocalMedia
		if class == classDocumentFile {
			kind = domain.SourceDocument
		}
		return []domain.Source{fileSource(input, kind, jobID)}, nil

	case classFolder:
		return enumerateFolder(input, jobID, cfg.Run.RecursiveDocuments)
	}

	return nil, fmt.Errorf("unrecognized input %q", input)
}

// streamSource probes one stream URL for its metadata. A failed probe
// still yields a source; acquisition will surface the real error.
func (s *expandStation) streamSource(ctx context.Context, url string, jobID int) domain.Source {
	src := domain.Source{
		Path:  url,
		Kind:  domain.SourceStreamURL,
		JobID: jobID,
		Meta:  domain.Metadata{SourceURL: url},
	}

	probe, err := s.deps.Captions.ProbeURL(ctx, url)
	if err != nil {
		s.deps.Logger.Warn(ctx, "probe %s: %v", url, err)
		src.Title = titleFromURL(url)
		return src
	}

	src.Title = probe.Title
	if src.Title == "" {
		src.Title = titleFromURL(url)
	}
	src.Meta.Author = probe.Author
	src.Meta.PublishedAt = probe.Uploaded
	src.Meta.Duration = probe.Duration
	src.Meta.Tags = probe.Tags
	return src
}

func fileSource(path string, kind domain.SourceKind, jobID int) domain.Source {
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return domain.Source{Path: path, Kind: kind, Title: title, JobID: jobID}
}

// enumerateFolder collects media and document files from a directory,
// descending into subdirectories only when recursive is set.
func enumerateFolder(dir string, jobID int, recursive bool) ([]domain.Source, error) {
	var paths []string

	if recursive {
		err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				paths = append(paths, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk folder: %w", err)
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read folder: %w", err)
		}
		for _, e := range entries {
			if !e.IsDir() {
				paths = append(paths, filepath.Join(dir, e.Name()))
			}
		}
	}
	sort.Strings(paths)

	var sources []domain.Source
	for _, p := range paths {
		ext := strings.ToLower(filepath.Ext(p))
		switch {
		case mediaExtensions[ext]:
			sources = append(sources, fileSource(p, domain.SourceLocalMedia, jobID))
		case documentExtensions[ext]:
			sources = append(sources, fileSource(p, domain.SourceDocument, jobID))
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no media or document files in %s", dir)
	}
	return sources, nil
}
