package extract

import "context"

// Extractor turns a document file or web page into plain text.
type Extractor interface {
	Extract(ctx context.Context, pathOrURL string) (string, error)
}

// SupportedExtensions lists the document file types the extractor accepts.
var SupportedExtensions = []string{".txt", ".md", ".docx", ".html", ".htm"}
