package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
)

const transcriptSuffix = "_raw_transcript.txt"

var unsafeChars = regexp.MustCompile(`[^\w\- ]+`)

type implStore struct {
	intermediateDir string
}

// New creates a Store rooted at the intermediate transcript directory.
func New(intermediateDir string) Store {
	return &implStore{intermediateDir: intermediateDir}
}

// SafeTitle sanitizes a source title into a filesystem-safe identity.
func SafeTitle(title string) string {
	s := unsafeChars.ReplaceAllString(title, "_")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = regexp.MustCompile(`_+`).ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		s = "untitled"
	}
	if len(s) > 150 {
		s = s[:150]
	}
	return s
}

// TitleFromTranscript recovers the safe title from a transcript file path.
func TitleFromTranscript(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, transcriptSuffix)
}

func (s *implStore) transcriptPath(title string) string {
	return filepath.Join(s.intermediateDir, SafeTitle(title)+transcriptSuffix)
}

func (s *implStore) metadataPath(title string) string {
	return filepath.Join(s.intermediateDir, SafeTitle(title)+".meta.json")
}

func (s *implStore) SaveTranscript(title, content string) (string, error) {
	if err := os.MkdirAll(s.intermediateDir, 0755); err != nil {
		return "", fmt.Errorf("create intermediate dir: %w", err)
	}
	path := s.transcriptPath(title)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}

func (s *implStore) LoadTranscript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return string(data), nil
}

func (s *implStore) DiscoverTranscripts() ([]string, error) {
	entries, err := os.ReadDir(s.intermediateDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read intermediate dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), transcriptSuffix) {
			continue
		}
		files = append(files, filepath.Join(s.intermediateDir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// TranscriptPath returns where the transcript for a title lives, whether
// or not it exists yet.
func (s *implStore) TranscriptPath(title string) string {
	return s.transcriptPath(title)
}

func (s *implStore) TranscriptExists(title string) bool {
	_, err := os.Stat(s.transcriptPath(title))
	return err == nil
}

func (s *implStore) SaveMetadata(title string, meta domain.Metadata) (string, error) {
	if err := os.MkdirAll(s.intermediateDir, 0755); err != nil {
		return "", fmt.Errorf("create intermediate dir: %w", err)
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	path := s.metadataPath(title)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}
	return path, nil
}

func (s *implStore) LoadMetadata(title string) (domain.Metadata, error) {
	data, err := os.ReadFile(s.metadataPath(title))
	if os.IsNotExist(err) {
		// Minimal metadata when no sidecar was written.
		return domain.Metadata{Title: title, SourceKind: "unknown"}, nil
	}
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("read metadata: %w", err)
	}
	var meta domain.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return domain.Metadata{}, fmt.Errorf("parse metadata: %w", err)
	}
	return meta, nil
}

func (s *implStore) SaveDocument(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// UniquePath returns {base}{suffix}{ext} inside the intermediate directory,
// appending _2, _3, ... until the name is free.
func (s *implStore) UniquePath(base, suffix, ext string) string {
	name := SafeTitle(base) + suffix
	dest := filepath.Join(s.intermediateDir, name+ext)
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return dest
	}
	for n := 2; ; n++ {
		dest = filepath.Join(s.intermediateDir, fmt.Sprintf("%s_%d%s", name, n, ext))
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			return dest
		}
	}
}
