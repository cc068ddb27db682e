package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/wisdomflow/internal/config"
	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
	"github.com/nguyentantai21042004/wisdomflow/internal/logger"
	"github.com/nguyentantai21042004/wisdomflow/pkg/executor"
)

// whisperTranscriber runs whisper.cpp against one chunk at a time. The
// caller gates invocations with the process pool.
type whisperTranscriber struct {
	cfg      *config.Config
	executor executor.Executor
	logger   logger.Logger
}

func (w *whisperTranscriber) Local() bool { return true }

func (w *whisperTranscriber) TranscribeChunk(ctx context.Context, chunkPath string) (string, error) {
	if _, err := os.Stat(chunkPath); err != nil {
		return "", fmt.Errorf("audio chunk %s: %w", chunkPath, domain.ErrUnavailable)
	}

	outputPrefix := strings.TrimSuffix(chunkPath, filepath.Ext(chunkPath))

	args := []string{
		"-m", w.cfg.Whisper.ModelPath,
		"-f", chunkPath,
		"-otxt",
		"-l", w.cfg.Whisper.Language,
		"-t", strconv.Itoa(w.cfg.Whisper.Threads),
		"--output-file", outputPrefix,
	}

	if _, err := w.executor.Execute(ctx, w.cfg.Whisper.BinaryPath, args...); err != nil {
		// Tool failures are local-processing errors, never retried.
		return "", fmt.Errorf("whisper transcribe: %w", err)
	}

	txtPath := outputPrefix + ".txt"
	data, err := os.ReadFile(txtPath)
	if err != nil {
		return "", fmt.Errorf("read whisper output: %w", err)
	}
	defer os.Remove(txtPath)

	return strings.TrimSpace(string(data)), nil
}
