package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
	"github.com/nguyentantai21042004/wisdomflow/internal/logger"
)

type implParser struct {
	client *http.Client
	logger logger.Logger
}

// New creates a Parser backed by a bounded-timeout HTTP client.
func New(log logger.Logger) Parser {
	return &implParser{
		client: &http.Client{Timeout: 60 * time.Second},
		logger: log,
	}
}

// rss mirrors the subset of the RSS 2.0 schema podcasts use.
type rss struct {
	Channel struct {
		Title  string `xml:"title"`
		Author string `xml:"author"`
		Items  []struct {
			Title       string `xml:"title"`
			Description string `xml:"description"`
			PubDate     string `xml:"pubDate"`
			Duration    string `xml:"duration"`
			Author      string `xml:"author"`
			Enclosure   struct {
				URL  string `xml:"url,attr"`
				Type string `xml:"type,attr"`
			} `xml:"enclosure"`
		} `xml:"item"`
	} `xml:"channel"`
}

func (p *implParser) Parse(ctx context.Context, feedURL string) (Info, []Episode, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return Info{}, nil, fmt.Errorf("build feed request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Info{}, nil, fmt.Errorf("fetch feed: %w: %v", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return Info{}, nil, fmt.Errorf("feed %s: %w", feedURL, domain.ErrUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return Info{}, nil, fmt.Errorf("fetch feed: status %d: %w", resp.StatusCode, domain.ErrTransient)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return Info{}, nil, fmt.Errorf("read feed body: %w: %v", domain.ErrTransient, err)
	}

	var doc rss
	if err := xml.Unmarshal(body, &doc); err != nil {
		return Info{}, nil, fmt.Errorf("parse feed xml: %w", err)
	}

	info := Info{Title: doc.Channel.Title, Author: doc.Channel.Author}
	episodes := make([]Episode, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		if item.Enclosure.URL == "" {
			p.logger.Debug(ctx, "Skipping feed item without enclosure: %s", item.Title)
			continue
		}
		author := item.Author
		if author == "" {
			author = doc.Channel.Author
		}
		episodes = append(episodes, Episode{
			Title:       item.Title,
			AudioURL:    item.Enclosure.URL,
			Description: item.Description,
			PubDate:     item.PubDate,
			Duration:    item.Duration,
			Author:      author,
		})
	}

	if len(episodes) == 0 {
		return info, nil, fmt.Errorf("feed %s has no playable episodes: %w", feedURL, domain.ErrUnavailable)
	}
	return info, episodes, nil
}

func (p *implParser) DownloadAudio(ctx context.Context, audioURL, destPath string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", fmt.Errorf("build audio request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download audio: %w: %v", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return "", fmt.Errorf("audio %s: %w", audioURL, domain.ErrUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download audio: status %d: %w", resp.StatusCode, domain.ErrTransient)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create audio file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("write audio file: %w: %v", domain.ErrTransient, err)
	}

	return destPath, nil
}
