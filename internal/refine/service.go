package refine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
)

// Refine loads one raw transcript, rewrites it in the task's style and
// writes the final document. A panic inside any step is converted into a
// failure result so one bad task never takes the run down.
func (s *implService) Refine(ctx context.Context, task domain.RefineTask) (res domain.RefineResult) {
	res = domain.RefineResult{
		TaskID:     task.ID(),
		Title:      task.Title,
		StyleName:  task.StyleName,
		OutputFile: task.OutputFile,
	}

	defer func() {
		if r := recover(); r != nil {
			s.l.Error(ctx, "refine %s: panic: %v", res.TaskID, r)
			res.Status = domain.StatusFailure
			res.Err = fmt.Sprintf("panic: %v", r)
		}
	}()

	if ctx.Err() != nil {
		res.Status = domain.StatusCancelled
		res.Err = ctx.Err().Error()
		return res
	}

	text, err := s.store.LoadTranscript(task.TranscriptFile)
	if err != nil {
		res.Status = domain.StatusFailure
		res.Err = err.Error()
		return res
	}

	language := task.Language
	if language == "" {
		language = s.cfg.Refine.Language
	}

	refined, err := s.refineText(ctx, text, task.StylePrompt, language)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			res.Status = domain.StatusCancelled
		} else {
			res.Status = domain.StatusFailure
		}
		res.Err = err.Error()
		s.l.Warn(ctx, "refine %s: %v", res.TaskID, err)
		return res
	}
	refined = strings.TrimSpace(refined)
	if refined == "" {
		res.Status = domain.StatusFailure
		res.Err = "model returned empty document"
		return res
	}

	meta, err := s.store.LoadMetadata(task.Title)
	if err != nil {
		s.l.Warn(ctx, "refine %s: load metadata: %v", res.TaskID, err)
		meta = domain.Metadata{Title: task.Title, SourceKind: "unknown"}
	}
	meta.Language = language

	if s.cfg.Refine.MetadataEnhancement {
		if err := s.enhanceMetadata(ctx, &meta, text, language); err != nil {
			s.l.Warn(ctx, "refine %s: metadata enhancement: %v", res.TaskID, err)
		} else if _, err := s.store.SaveMetadata(task.Title, meta); err != nil {
			s.l.Warn(ctx, "refine %s: save metadata: %v", res.TaskID, err)
		}
	}

	front := buildFrontMatter(meta, task.StyleName, s.cfg.RefineModelEntry().ModelName, len(text))
	if err := s.store.SaveDocument(task.OutputFile, front+refined+"\n"); err != nil {
		res.Status = domain.StatusFailure
		res.Err = err.Error()
		return res
	}

	if s.cfg.Refine.ExportDocx {
		docxPath := strings.TrimSuffix(task.OutputFile, ".md") + ".docx"
		if err := markdownToDocx(meta.Title, refined, docxPath); err != nil {
			s.l.Warn(ctx, "refine %s: docx export: %v", res.TaskID, err)
		}
	}

	res.Status = domain.StatusSuccess
	s.l.Info(ctx, "refined %s -> %s", res.TaskID, task.OutputFile)
	return res
}

// refineText runs the style prompt over the transcript, splitting long
// transcripts into paragraph-aligned chunks that are refined sequentially
// and rejoined. Styles that embed the transcript via the
// [full_transcript_text] placeholder bypass chunking.
func (s *implService) refineText(ctx context.Context, text, stylePrompt, language string) (string, error) {
	model := s.cfg.RefineModelEntry().ModelName

	if strings.Contains(stylePrompt, "[full_transcript_text]") {
		return s.llm.Generate(ctx, model, strings.ReplaceAll(stylePrompt, "[full_transcript_text]", text))
	}

	prompt := strings.ReplaceAll(stylePrompt, "[Language]", language)

	chunkSize := s.cfg.Refine.ChunkSizeWords
	if chunkSize > 0 && wordCount(text) > chunkSize {
		chunks := splitIntoChunks(text, chunkSize)
		parts := make([]string, 0, len(chunks))
		for i, chunk := range chunks {
			s.l.Info(ctx, "refining chunk %d/%d", i+1, len(chunks))
			p := prompt + chunk
			if i > 0 {
				p = prompt + continuationNote + chunk
			}
			out, err := s.llm.Generate(ctx, model, p)
			if err != nil {
				return "", fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
			}
			parts = append(parts, strings.TrimSpace(out))
		}
		return strings.Join(parts, "\n\n"), nil
	}

	return s.llm.Generate(ctx, model, prompt+text)
}
