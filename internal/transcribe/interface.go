package transcribe

import "context"

// Transcriber converts one audio chunk into text.
type Transcriber interface {
	// TranscribeChunk returns the transcript of a single audio chunk.
	TranscribeChunk(ctx context.Context, chunkPath string) (string, error)
	// Local reports whether transcription runs as a local subprocess
	// (process pool) rather than a network call (async slots).
	Local() bool
}
