package acquire

import (
	"github.com/nguyentantai21042004/wisdomflow/internal/captions"
	"github.com/nguyentantai21042004/wisdomflow/internal/config"
	"github.com/nguyentantai21042004/wisdomflow/internal/extract"
	"github.com/nguyentantai21042004/wisdomflow/internal/feed"
	"github.com/nguyentantai21042004/wisdomflow/internal/logger"
	"github.com/nguyentantai21042004/wisdomflow/internal/store"
	"github.com/nguyentantai21042004/wisdomflow/internal/transcribe"
	"github.com/nguyentantai21042004/wisdomflow/pkg/executor"
)

// Deps bundles the collaborators an acquisition service needs.
type Deps struct {
	Executor    executor.Executor
	Captions    captions.Fetcher
	Feeds       feed.Parser
	Extractor   extract.Extractor
	Transcriber transcribe.Transcriber
	Store       store.Store
}

// New creates an acquisition Service sharing the given pools.
func New(l logger.Logger, cfg *config.Config, pools Pools, deps Deps) Service {
	return &implService{
		l:     l,
		cfg:   cfg,
		pools: pools,
		deps:  deps,
	}
}
