package acquire

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nguyentantai21042004/wisdomflow/internal/config"
	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
	"github.com/nguyentantai21042004/wisdomflow/internal/logger"
	"github.com/nguyentantai21042004/wisdomflow/internal/store"
)

type implService struct {
	l     logger.Logger
	cfg   *config.Config
	pools Pools
	deps  Deps
}

// Acquire runs the per-kind fallback chain for one source and returns its
// result. A panic inside any step is converted into a failure result so
// one bad source never takes the run down.
func (s *implService) Acquire(ctx context.Context, src domain.Source) (res domain.AcquireResult) {
	title := src.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(src.Path), filepath.Ext(src.Path))
	}
	res = domain.AcquireResult{Title: title, JobID: src.JobID}

	defer func() {
		if r := recover(); r != nil {
			s.l.Error(ctx, "acquire %s: panic: %v", title, r)
			res.Status = domain.StatusFailure
			res.Err = fmt.Sprintf("panic: %v", r)
		}
	}()

	if ctx.Err() != nil {
		res.Status = domain.StatusCancelled
		res.Err = ctx.Err().Error()
		return res
	}

	var text string
	var err error
	switch src.Kind {
	case domain.SourceStreamURL:
		text, err = s.acquireStream(ctx, src)
	case domain.SourceLocalMedia:
		text, err = s.acquireLocalMedia(ctx, src)
	case domain.SourceFeedEpisode:
		text, err = s.acquireFeedEpisode(ctx, src, title)
	case domain.SourceDocument:
		text, err = s.acquireDocument(ctx, src)
	default:
		err = fmt.Errorf("unknown source kind %q", src.Kind)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			res.Status = domain.StatusCancelled
		} else {
			res.Status = domain.StatusFailure
		}
		res.Err = err.Error()
		s.l.Warn(ctx, "acquire %s: %v", title, err)
		return res
	}

	text = strings.TrimSpace(text)
	if text == "" {
		res.Status = domain.StatusFailure
		res.Err = "acquired text is empty"
		return res
	}

	meta := src.Meta
	meta.Title = title
	meta.SourceKind = string(src.Kind)
	if meta.SourceURL == "" && src.Kind != domain.SourceLocalMedia {
		meta.SourceURL = src.Path
	}
	meta.FetchedAt = time.Now().UTC().Format(time.RFC3339)

	path, err := s.deps.Store.SaveTranscript(title, text)
	if err != nil {
		res.Status = domain.StatusFailure
		res.Err = err.Error()
		return res
	}
	if _, err := s.deps.Store.SaveMetadata(title, meta); err != nil {
		s.l.Warn(ctx, "acquire %s: save metadata: %v", title, err)
	}

	res.Status = domain.StatusSuccess
	res.TranscriptFile = path
	res.TranscriptText = text
	res.Meta = meta
	s.l.Info(ctx, "acquired %s (%d chars)", title, len(text))
	return res
}

// acquireStream tries captions first, then falls back to downloading the
// audio and transcribing it.
func (s *implService) acquireStream(ctx context.Context, src domain.Source) (string, error) {
	if err := s.pools.Network.Acquire(ctx); err != nil {
		return "", err
	}
	text, capErr := s.deps.Captions.FetchCaptions(ctx, src.Path)
	s.pools.Network.Release()
	if capErr == nil {
		return text, nil
	}
	s.l.Debug(ctx, "captions for %s: %v, falling back to transcription", src.Path, capErr)

	if s.cfg.Run.DisableTranscription {
		return "", fmt.Errorf("no captions and transcription is disabled: %w", capErr)
	}

	dest := filepath.Join(s.cfg.Paths.Temp, store.SafeTitle(src.Title)+".m4a")
	if err := s.pools.Network.Acquire(ctx); err != nil {
		return "", err
	}
	audioPath, err := s.deps.Captions.DownloadAudio(ctx, src.Path, dest)
	s.pools.Network.Release()
	if err != nil {
		return "", fmt.Errorf("download audio: %w", err)
	}

	return s.transcribeMedia(ctx, src, audioPath, true)
}

// acquireLocalMedia extracts the audio track when needed, then
// transcribes. The input file is never removed.
func (s *implService) acquireLocalMedia(ctx context.Context, src domain.Source) (string, error) {
	if s.cfg.Run.DisableTranscription {
		return "", fmt.Errorf("local media needs transcription, which is disabled")
	}

	audioPath := src.Path
	extracted := false
	if !isAudioFile(src.Path) {
		audioPath = filepath.Join(s.cfg.Paths.Temp, store.SafeTitle(src.Title)+".m4a")
		if err := os.MkdirAll(s.cfg.Paths.Temp, 0755); err != nil {
			return "", fmt.Errorf("create temp dir: %w", err)
		}
		if err := s.pools.Process.Acquire(ctx); err != nil {
			return "", err
		}
		err := extractAudio(ctx, s.deps.Executor, s.cfg.FFmpeg.Binary, src.Path, audioPath)
		s.pools.Process.Release()
		if err != nil {
			return "", err
		}
		extracted = true
	}

	return s.transcribeMedia(ctx, src, audioPath, extracted)
}

// acquireFeedEpisode downloads the enclosure audio and transcribes it.
func (s *implService) acquireFeedEpisode(ctx context.Context, src domain.Source, title string) (string, error) {
	if s.cfg.Run.DisableTranscription {
		return "", fmt.Errorf("podcast episodes need transcription, which is disabled")
	}

	dest := filepath.Join(s.cfg.Paths.Temp, store.SafeTitle(title)+".mp3")
	if err := s.pools.Network.Acquire(ctx); err != nil {
		return "", err
	}
	audioPath, err := s.deps.Feeds.DownloadAudio(ctx, src.AudioURL, dest)
	s.pools.Network.Release()
	if err != nil {
		return "", fmt.Errorf("download episode: %w", err)
	}

	return s.transcribeMedia(ctx, src, audioPath, true)
}

// acquireDocument extracts plain text from a file or web page.
func (s *implService) acquireDocument(ctx context.Context, src domain.Source) (string, error) {
	isURL := strings.HasPrefix(src.Path, "http://") || strings.HasPrefix(src.Path, "https://")
	if isURL {
		if err := s.pools.Network.Acquire(ctx); err != nil {
			return "", err
		}
		defer s.pools.Network.Release()
	}
	return s.deps.Extractor.Extract(ctx, src.Path)
}

// transcribeMedia chunks one audio file, transcribes the chunks
// concurrently and reassembles the transcript in order. Chunk files are
// always removed; the source audio is removed or moved next to the
// transcript depending on the save_source_media setting. removable
// reports whether the audio file is ours to delete.
func (s *implService) transcribeMedia(ctx context.Context, src domain.Source, audioPath string, removable bool) (string, error) {
	maxChunk := config.MaxChunkSecondsFor(s.cfg.ASRModelEntry(), 600)

	chunkDir := filepath.Join(s.cfg.Paths.Temp, "chunks_"+store.SafeTitle(src.Title))
	defer os.RemoveAll(chunkDir)

	if err := s.pools.Process.Acquire(ctx); err != nil {
		return "", err
	}
	chunks, err := chunkAudio(ctx, s.deps.Executor, s.cfg.FFmpeg.Binary, audioPath, chunkDir, maxChunk)
	s.pools.Process.Release()
	if err != nil {
		return "", err
	}
	s.l.Debug(ctx, "split %s into %d chunks", audioPath, len(chunks))

	// Local transcription is subprocess work and shares the process pool;
	// remote transcription is bounded by the provider's own ceiling.
	gate := s.pools.Transcribe
	if s.deps.Transcriber.Local() {
		gate = s.pools.Process
	}

	texts := make([]string, len(chunks))
	errs := make([]error, len(chunks))
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk string) {
			defer wg.Done()
			// Recover must live in the worker goroutine itself; the
			// coordinator's recover cannot see a panic raised here.
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("panic: %v", r)
				}
			}()
			if err := gate.Acquire(ctx); err != nil {
				errs[i] = err
				return
			}
			defer gate.Release()
			texts[i], errs[i] = s.deps.Transcriber.TranscribeChunk(ctx, chunk)
		}(i, chunk)
	}
	wg.Wait()

	var parts []string
	failed := 0
	for i := range chunks {
		if errs[i] != nil {
			failed++
			s.l.Warn(ctx, "transcribe chunk %d of %s: %v", i, src.Title, errs[i])
			continue
		}
		if t := strings.TrimSpace(texts[i]); t != "" {
			parts = append(parts, t)
		}
	}
	if failed == len(chunks) {
		for i := range errs {
			if errs[i] != nil {
				return "", fmt.Errorf("all %d chunks failed to transcribe: %w", len(chunks), errs[i])
			}
		}
	}

	if removable {
		s.finishSourceMedia(ctx, src, audioPath)
	}

	return strings.Join(parts, " "), nil
}

// finishSourceMedia disposes of a downloaded or extracted audio file,
// keeping it next to the transcript when save_source_media is on.
func (s *implService) finishSourceMedia(ctx context.Context, src domain.Source, audioPath string) {
	if !s.cfg.Run.SaveSourceMedia {
		if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
			s.l.Warn(ctx, "remove %s: %v", audioPath, err)
		}
		return
	}
	dest := s.deps.Store.UniquePath(src.Title, "", filepath.Ext(audioPath))
	if err := os.Rename(audioPath, dest); err != nil {
		s.l.Warn(ctx, "save source media %s: %v", audioPath, err)
		return
	}
	s.l.Info(ctx, "saved source media to %s", dest)
}
