package watcher

import "context"

// Watcher monitors the inbox directory and hands new files to the
// pipeline.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// Handler processes one newly arrived file.
type Handler func(ctx context.Context, filePath string) error
