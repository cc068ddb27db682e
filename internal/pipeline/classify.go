package pipeline

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

type inputClass int

const (
	classUnknown inputClass = iota
	classStream
	classPlaylist
	classFeed
	classWebPage
	classMediaFile
	classDocumentFile
	classFolder
)

var mediaExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".mov": true, ".avi": true, ".webm": true,
	".mp3": true, ".m4a": true, ".wav": true, ".flac": true, ".ogg": true,
	".opus": true, ".aac": true,
}

var documentExtensions = map[string]bool{
	".txt": true, ".md": true, ".docx": true, ".html": true, ".htm": true,
}

var streamHosts = []string{
	"youtube.com", "youtu.be", "vimeo.com", "twitch.tv",
}

// classifyInput decides how an input string should be expanded into
// sources. isDir reports whether a local path is a directory.
func classifyInput(input string, isDir func(string) bool) inputClass {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		u, err := url.Parse(input)
		if err != nil {
			return classUnknown
		}
		lowerPath := strings.ToLower(u.Path)
		ext := path.Ext(lowerPath)
		if ext == ".xml" || ext == ".rss" || strings.Contains(lowerPath, "feed") {
			return classFeed
		}

		host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		for _, h := range streamHosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				if u.Query().Get("list") != "" || strings.Contains(lowerPath, "/playlist") {
					return classPlaylist
				}
				return classStream
			}
		}
		return classWebPage
	}

	if isDir(input) {
		return classFolder
	}
	ext := strings.ToLower(filepath.Ext(input))
	switch {
	case mediaExtensions[ext]:
		return classMediaFile
	case documentExtensions[ext]:
		return classDocumentFile
	}
	return classUnknown
}

// applyRange slices a 1-based [start, end] window out of n items and
// returns the index bounds. end <= 0 means "to the last item".
func applyRange(n, start, end int) (int, int) {
	if start < 1 {
		start = 1
	}
	if end <= 0 || end > n {
		end = n
	}
	if start > n || start > end {
		return 0, 0
	}
	return start - 1, end
}

// titleFromURL derives a readable fallback title when probing fails.
func titleFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if v := u.Query().Get("v"); v != "" {
		return v
	}
	seg := strings.Trim(u.Path, "/")
	if i := strings.LastIndex(seg, "/"); i >= 0 {
		seg = seg[i+1:]
	}
	if seg == "" {
		return u.Hostname()
	}
	return strings.TrimSuffix(seg, path.Ext(seg))
}
