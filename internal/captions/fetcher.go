package captions

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/wisdomflow/internal/config"
	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
	"github.com/nguyentantai21042004/wisdomflow/internal/logger"
	"github.com/nguyentantai21042004/wisdomflow/pkg/executor"
)

type implFetcher struct {
	cfg      *config.Config
	executor executor.Executor
	logger   logger.Logger
}

// New creates a Fetcher using the configured yt-dlp binary.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) Fetcher {
	return &implFetcher{cfg: cfg, executor: exec, logger: log}
}

func (f *implFetcher) baseArgs() []string {
	args := []string{"--no-warnings"}
	if f.cfg.YtDlp.CookieFile != "" {
		args = append(args, "--cookies", f.cfg.YtDlp.CookieFile)
	}
	return args
}

// probeJSON mirrors the yt-dlp -J fields the pipeline uses.
type probeJSON struct {
	Title    string   `json:"title"`
	Channel  string   `json:"channel"`
	Uploader string   `json:"uploader"`
	Upload   string   `json:"upload_date"`
	Duration float64  `json:"duration"`
	Tags     []string `json:"tags"`
}

func (f *implFetcher) ProbeURL(ctx context.Context, url string) (Probe, error) {
	args := append(f.baseArgs(), "-J", "--skip-download", url)
	out, err := f.executor.Execute(ctx, f.cfg.YtDlp.Binary, args...)
	if err != nil {
		return Probe{}, classify(err, "probe stream metadata")
	}

	var meta probeJSON
	if err := json.Unmarshal([]byte(out), &meta); err != nil {
		return Probe{}, fmt.Errorf("parse stream metadata: %w", err)
	}

	author := meta.Channel
	if author == "" {
		author = meta.Uploader
	}
	return Probe{
		Title:    meta.Title,
		Author:   author,
		Uploaded: meta.Upload,
		Duration: formatDuration(meta.Duration),
		Tags:     meta.Tags,
	}, nil
}

func (f *implFetcher) ExpandPlaylist(ctx context.Context, url string) ([]string, error) {
	args := append(f.baseArgs(), "--flat-playlist", "--print", "url", url)
	out, err := f.executor.Execute(ctx, f.cfg.YtDlp.Binary, args...)
	if err != nil {
		return nil, classify(err, "expand playlist")
	}

	var urls []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			urls = append(urls, line)
		}
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("playlist %s has no entries: %w", url, domain.ErrUnavailable)
	}
	return urls, nil
}

// FetchCaptions downloads subtitles (manual first, then automatic) into a
// per-call temp dir and returns the plain caption text. Returns
// domain.ErrUnavailable when the stream carries no captions at all.
func (f *implFetcher) FetchCaptions(ctx context.Context, url string) (string, error) {
	dir, err := os.MkdirTemp("", "captions-*")
	if err != nil {
		return "", fmt.Errorf("create captions temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	args := append(f.baseArgs(),
		"--skip-download",
		"--write-subs", "--write-auto-subs",
		"--sub-format", "vtt",
		"--sub-langs", "en.*,en",
		"-o", filepath.Join(dir, "subs"),
		url,
	)
	if _, err := f.executor.Execute(ctx, f.cfg.YtDlp.Binary, args...); err != nil {
		return "", classify(err, "fetch captions")
	}

	matches, err := filepath.Glob(filepath.Join(dir, "subs*.vtt"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("no captions for %s: %w", url, domain.ErrUnavailable)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return "", fmt.Errorf("read caption file: %w", err)
	}

	text := StripVTT(string(data))
	if text == "" {
		return "", fmt.Errorf("captions for %s are empty: %w", url, domain.ErrUnavailable)
	}
	return text, nil
}

func (f *implFetcher) DownloadAudio(ctx context.Context, url, destPath string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	args := append(f.baseArgs(),
		"-f", "bestaudio/best",
		"-x", "--audio-format", "m4a",
		"-o", destPath,
		url,
	)
	if _, err := f.executor.Execute(ctx, f.cfg.YtDlp.Binary, args...); err != nil {
		return "", classify(err, "download stream audio")
	}

	if _, err := os.Stat(destPath); err != nil {
		return "", fmt.Errorf("downloaded audio missing at %s: %w", destPath, domain.ErrTransient)
	}
	return destPath, nil
}

// classify maps yt-dlp failures onto the error taxonomy. Unavailable or
// private content must not be retried; everything else is network-class.
func classify(err error, op string) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "video unavailable"),
		strings.Contains(msg, "private video"),
		strings.Contains(msg, "members-only"),
		strings.Contains(msg, "404"):
		return fmt.Errorf("%s: %w: %v", op, domain.ErrUnavailable, err)
	default:
		return fmt.Errorf("%s: %w: %v", op, domain.ErrTransient, err)
	}
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
