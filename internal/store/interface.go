package store

import "github.com/nguyentantai21042004/wisdomflow/internal/domain"

// Store persists raw-text artifacts, metadata sidecars and final documents.
// Transcript identity is the sanitized source title; concurrent units write
// collision-free paths instead of locking.
type Store interface {
	SaveTranscript(title, content string) (string, error)
	LoadTranscript(path string) (string, error)
	DiscoverTranscripts() ([]string, error)
	TranscriptExists(title string) bool
	TranscriptPath(title string) string
	SaveMetadata(title string, meta domain.Metadata) (string, error)
	LoadMetadata(title string) (domain.Metadata, error)
	SaveDocument(path, content string) error
	UniquePath(base, suffix, ext string) string
}
