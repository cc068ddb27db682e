package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
	"github.com/nguyentantai21042004/wisdomflow/internal/logger"
)

type implExtractor struct {
	client *http.Client
	logger logger.Logger
}

// New creates an Extractor for local documents and web pages.
func New(log logger.Logger) Extractor {
	return &implExtractor{
		client: &http.Client{Timeout: 60 * time.Second},
		logger: log,
	}
}

// IsSupported reports whether the file extension is an extractable document.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

func (e *implExtractor) Extract(ctx context.Context, pathOrURL string) (string, error) {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return e.extractURL(ctx, pathOrURL)
	}

	if _, err := os.Stat(pathOrURL); err != nil {
		return "", fmt.Errorf("document %s: %w", pathOrURL, domain.ErrUnavailable)
	}

	switch strings.ToLower(filepath.Ext(pathOrURL)) {
	case ".txt", ".md":
		data, err := os.ReadFile(pathOrURL)
		if err != nil {
			return "", fmt.Errorf("read document: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	case ".docx":
		return extractDocx(pathOrURL)
	case ".html", ".htm":
		data, err := os.ReadFile(pathOrURL)
		if err != nil {
			return "", fmt.Errorf("read document: %w", err)
		}
		return stripHTML(string(data)), nil
	default:
		return "", fmt.Errorf("unsupported document type: %s", filepath.Ext(pathOrURL))
	}
}

func (e *implExtractor) extractURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build page request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w: %v", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return "", fmt.Errorf("page %s: %w", url, domain.ErrUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch page: status %d: %w", resp.StatusCode, domain.ErrTransient)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return "", fmt.Errorf("read page body: %w: %v", domain.ErrTransient, err)
	}

	text := stripHTML(string(body))
	if text == "" {
		return "", fmt.Errorf("page %s yielded no text: %w", url, domain.ErrUnavailable)
	}
	return text, nil
}

// extractDocx reads word/document.xml out of the docx archive and collects
// paragraph text. Each w:p element becomes one line.
func extractDocx(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer archive.Close()

	var docFile *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("docx %s has no word/document.xml", path)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var lines []string
	var current strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			current.Write(t)
		case xml.EndElement:
			if t.Name.Local == "p" {
				if line := strings.TrimSpace(current.String()); line != "" {
					lines = append(lines, line)
				}
				current.Reset()
			}
		}
	}
	if line := strings.TrimSpace(current.String()); line != "" {
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n\n"), nil
}

var (
	reScript = regexp.MustCompile(`(?is)<(?:script|style|noscript)[^>]*>.*?</(?:script|style|noscript)>`)
	reTag    = regexp.MustCompile(`(?s)<[^>]+>`)
	reBlank  = regexp.MustCompile(`\n{3,}`)
)

// stripHTML removes scripts, styles and tags, keeping readable text.
func stripHTML(html string) string {
	s := reScript.ReplaceAllString(html, " ")
	s = reTag.ReplaceAllString(s, "\n")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#39;", "'")

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return reBlank.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
}
