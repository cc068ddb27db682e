package refine

import (
	"github.com/nguyentantai21042004/wisdomflow/internal/config"
	"github.com/nguyentantai21042004/wisdomflow/internal/logger"
	"github.com/nguyentantai21042004/wisdomflow/internal/store"
)

type implService struct {
	l     logger.Logger
	cfg   *config.Config
	llm   LLM
	store store.Store
}

// New creates a refinement Service using the given LLM.
func New(l logger.Logger, cfg *config.Config, llm LLM, st store.Store) Service {
	return &implService{
		l:     l,
		cfg:   cfg,
		llm:   llm,
		store: st,
	}
}
