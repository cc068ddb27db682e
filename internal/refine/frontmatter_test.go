package refine

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
)

func TestBuildFrontMatter(t *testing.T) {
	meta := domain.Metadata{
		Title:      "Deep Work: A Field Guide",
		SourceKind: "stream_url",
		SourceURL:  "https://example.com/watch?v=1",
		Author:     "Jane Doe",
		Language:   "English",
		Tags:       []string{"focus", "productivity"},
		Duration:   "01:02:03",
	}

	got := buildFrontMatter(meta, "Summary", "gemini-2.5-flash", 12345)

	if !strings.HasPrefix(got, "---\n") || !strings.HasSuffix(got, "---\n\n") {
		t.Fatalf("front matter not delimited:\n%s", got)
	}
	for _, want := range []string{
		`title: "Deep Work: A Field Guide"`,
		"source_type: stream_url",
		`source_url: "https://example.com/watch?v=1"`,
		"author: Jane Doe",
		"style: Summary",
		"tags:\n  - focus\n  - productivity",
		`duration: "01:02:03"`,
		"transcript_chars: 12345",
		`model_used: "gemini-2.5-flash"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("front matter missing %q:\n%s", want, got)
		}
	}
}

func TestBuildFrontMatterOmitsEmptyFields(t *testing.T) {
	got := buildFrontMatter(domain.Metadata{Title: "Bare"}, "Summary", "", 0)

	for _, absent := range []string{"source_url", "author", "tags", "duration", "transcript_chars", "model_used", "description"} {
		if strings.Contains(got, absent) {
			t.Errorf("front matter should omit %q:\n%s", absent, got)
		}
	}
}

func TestParseEnhancement(t *testing.T) {
	raw := "```json\n{\"description\": \"  A talk about focus.  \", \"tags\": [\"Deep Work\", \"focus\", \"focus\", \"\"]}\n```"
	enh, err := parseEnhancement(raw)
	if err != nil {
		t.Fatalf("parseEnhancement: %v", err)
	}
	if enh.Description != "A talk about focus." {
		t.Errorf("description = %q", enh.Description)
	}
	if len(enh.Tags) != 2 || enh.Tags[0] != "deep-work" || enh.Tags[1] != "focus" {
		t.Errorf("tags = %v", enh.Tags)
	}

	if _, err := parseEnhancement("not json"); err == nil {
		t.Error("expected error for malformed reply")
	}
}

func TestParseEnhancementTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("ế", 200)
	enh, err := parseEnhancement(`{"description": "` + long + `", "tags": []}`)
	if err != nil {
		t.Fatalf("parseEnhancement: %v", err)
	}
	if got := len([]rune(enh.Description)); got != 140 {
		t.Errorf("description length = %d runes, want 140", got)
	}
	if !utf8.ValidString(enh.Description) {
		t.Error("truncation split a rune")
	}
}
