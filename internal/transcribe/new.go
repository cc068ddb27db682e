package transcribe

import (
	"net/http"
	"time"

	"github.com/nguyentantai21042004/wisdomflow/internal/config"
	"github.com/nguyentantai21042004/wisdomflow/internal/logger"
	"github.com/nguyentantai21042004/wisdomflow/pkg/executor"
)

// New creates the Transcriber for the configured ASR model: the local
// whisper.cpp binary, or an OpenAI-style transcription endpoint.
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) Transcriber {
	entry := cfg.ASRModelEntry()
	if entry.Provider == "whisper" {
		return &whisperTranscriber{cfg: cfg, executor: exec, logger: log}
	}
	return &remoteTranscriber{
		endpoint: cfg.Providers.ASREndpoint,
		apiKey:   cfg.Providers.OpenAIAPIKey,
		model:    entry.ModelName,
		client:   &http.Client{Timeout: 5 * time.Minute},
		logger:   log,
	}
}
