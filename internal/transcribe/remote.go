package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/nguyentantai21042004/wisdomflow/internal/domain"
	"github.com/nguyentantai21042004/wisdomflow/internal/logger"
)

const (
	maxAttempts    = 3
	initialBackoff = 2 * time.Second
)

// remoteTranscriber posts chunks to an OpenAI-style /audio/transcriptions
// endpoint. The caller gates invocations with the provider's concurrency cap.
type remoteTranscriber struct {
	endpoint  string
	apiKey    string
	model     string
	client    *http.Client
	logger    logger.Logger
	retryWait time.Duration // overrides initialBackoff in tests
}

func (r *remoteTranscriber) Local() bool { return false }

func (r *remoteTranscriber) TranscribeChunk(ctx context.Context, chunkPath string) (string, error) {
	audio, err := os.ReadFile(chunkPath)
	if err != nil {
		return "", fmt.Errorf("read audio chunk: %w", err)
	}

	backoff := r.retryWait
	if backoff <= 0 {
		backoff = initialBackoff
	}
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := r.post(ctx, filepath.Base(chunkPath), audio)
		if err == nil {
			return text, nil
		}
		lastErr = err

		// Only network-class failures are retried.
		if !domain.IsTransient(err) {
			return "", err
		}
		if attempt == maxAttempts {
			break
		}

		r.logger.Warn(ctx, "Transcription attempt %d/%d failed, retrying in %s: %v", attempt, maxAttempts, backoff, err)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		backoff *= 2
	}

	return "", fmt.Errorf("transcription failed after %d attempts: %w", maxAttempts, lastErr)
}

func (r *remoteTranscriber) post(ctx context.Context, filename string, audio []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build multipart file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("write multipart file: %w", err)
	}
	if err := writer.WriteField("model", r.model); err != nil {
		return "", fmt.Errorf("write model field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("build transcription request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription call: %w: %v", domain.ErrTransient, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", fmt.Errorf("read transcription response: %w: %v", domain.ErrTransient, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("transcription call: status %d: %w", resp.StatusCode, domain.ErrTransient)
	default:
		// 4xx, including quota and malformed input. Not retried.
		return "", fmt.Errorf("transcription call: status %d: %s: %w", resp.StatusCode, truncate(string(payload), 200), domain.ErrRejected)
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("parse transcription response: %w", err)
	}
	return parsed.Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
