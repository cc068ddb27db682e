package captions

import "context"

// Probe holds the metadata yt-dlp reports for one stream URL.
type Probe struct {
	Title    string
	Author   string
	Uploaded string
	Duration string
	Tags     []string
}

// Fetcher wraps yt-dlp for streaming media URLs: metadata probing,
// playlist expansion, caption retrieval and audio download.
type Fetcher interface {
	ProbeURL(ctx context.Context, url string) (Probe, error)
	ExpandPlaylist(ctx context.Context, url string) ([]string, error)
	FetchCaptions(ctx context.Context, url string) (string, error)
	DownloadAudio(ctx context.Context, url, destPath string) (string, error)
}
