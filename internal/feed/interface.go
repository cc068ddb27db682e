package feed

import "context"

// Episode is one entry from a podcast RSS feed.
type Episode struct {
	Title       string
	AudioURL    string
	Description string
	PubDate     string
	Duration    string
	Author      string
}

// Info describes the feed itself.
type Info struct {
	Title  string
	Author string
}

// Parser fetches and parses podcast RSS feeds and downloads episode audio.
type Parser interface {
	Parse(ctx context.Context, feedURL string) (Info, []Episode, error)
	DownloadAudio(ctx context.Context, audioURL, destPath string) (string, error)
}
