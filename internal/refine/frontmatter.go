package refine

import (
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
)

const pipelineVersion = "wisdomflow-0.2"

// buildFrontMatter renders the YAML front matter block for a refined
// document. Empty fields are omitted.
func buildFrontMatter(meta domain.Metadata, style, modelUsed string, transcriptChars int) string {
	var b strings.Builder
	b.WriteString("---\n")

	put := func(k, v string) {
		if v == "" {
			return
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(yamlEscape(v))
		b.WriteString("\n")
	}

	put("title", meta.Title)
	put("source_type", meta.SourceKind)
	put("source_url", meta.SourceURL)
	put("author", meta.Author)
	put("published_at", meta.PublishedAt)
	put("fetched_at", meta.FetchedAt)
	put("language", meta.Language)
	put("style", style)
	put("description", meta.Description)
	if len(meta.Tags) > 0 {
		b.WriteString("tags:\n")
		for _, t := range meta.Tags {
			b.WriteString("  - ")
			b.WriteString(yamlEscape(t))
			b.WriteString("\n")
		}
	}
	put("duration", meta.Duration)
	if transcriptChars > 0 {
		b.WriteString(fmt.Sprintf("transcript_chars: %d\n", transcriptChars))
	}
	put("model_used", modelUsed)
	put("pipeline_version", pipelineVersion)

	b.WriteString("---\n\n")
	return b.String()
}

// yamlEscape quotes a scalar only when it contains characters that would
// change its YAML meaning.
func yamlEscape(s string) string {
	if strings.ContainsAny(s, ":\n#-\"'") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}
