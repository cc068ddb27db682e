package refine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
)

const enhancePrompt = `Based on the text below, produce a JSON object with exactly two fields:
"description": a factual one-sentence summary in %s, at most 140 characters.
"tags": an array of 3 to 5 lowercase topic tags using only letters, digits and hyphens.
Respond with the JSON object only, no markdown fences.

Text:
---
%s
---`

// enhanceSample caps how much transcript text is sent for metadata
// inference.
const enhanceSample = 8000

type enhancement struct {
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// enhanceMetadata fills the description and tags fields of meta when they
// are absent, inferring them from the transcript text. Factual fields are
// never touched. Errors leave meta unchanged.
func (s *implService) enhanceMetadata(ctx context.Context, meta *domain.Metadata, text, language string) error {
	if meta.Description != "" && len(meta.Tags) > 0 {
		return nil
	}

	sample := text
	if len(sample) > enhanceSample {
		sample = sample[:enhanceSample]
	}
	prompt := fmt.Sprintf(enhancePrompt, language, sample)

	raw, err := s.llm.Generate(ctx, s.cfg.Refine.MetadataModel, prompt)
	if err != nil {
		return err
	}

	enh, err := parseEnhancement(raw)
	if err != nil {
		return err
	}

	if meta.Description == "" {
		meta.Description = enh.Description
	}
	if len(meta.Tags) == 0 {
		meta.Tags = enh.Tags
	}
	return nil
}

// parseEnhancement decodes the model's JSON reply, tolerating markdown
// code fences, and normalizes the fields.
func parseEnhancement(raw string) (enhancement, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var enh enhancement
	if err := json.Unmarshal([]byte(raw), &enh); err != nil {
		return enhancement{}, fmt.Errorf("parse enhancement reply: %w", err)
	}

	enh.Description = strings.TrimSpace(enh.Description)
	if runes := []rune(enh.Description); len(runes) > 140 {
		enh.Description = string(runes[:140])
	}

	var tags []string
	seen := make(map[string]bool)
	for _, t := range enh.Tags {
		k := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(t)), " ", "-")
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		tags = append(tags, k)
		if len(tags) == 5 {
			break
		}
	}
	enh.Tags = tags
	return enh, nil
}
