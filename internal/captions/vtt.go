package captions

import (
	"regexp"
	"strings"
)

var (
	reTimestampLine = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?[.,]\d{3}\s+-->`)
	reCueTag        = regexp.MustCompile(`<[^>]+>`)
)

// StripVTT converts WebVTT subtitle content into plain transcript text:
// header, cue timings and inline tags are dropped, consecutive duplicate
// lines (common in auto-generated rolling captions) collapse to one.
func StripVTT(vtt string) string {
	var out []string
	var last string

	for _, line := range strings.Split(vtt, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "WEBVTT" {
			continue
		}
		if strings.HasPrefix(line, "Kind:") || strings.HasPrefix(line, "Language:") ||
			strings.HasPrefix(line, "NOTE") || strings.HasPrefix(line, "STYLE") {
			continue
		}
		if reTimestampLine.MatchString(line) {
			continue
		}

		line = reCueTag.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line == "" || line == last {
			continue
		}
		out = append(out, line)
		last = line
	}

	return strings.Join(out, " ")
}
