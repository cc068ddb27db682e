package executor

import "context"

// Executor defines the interface for executing external commands
// (ffmpeg, whisper.cpp, yt-dlp).
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error)
	// ExecuteCombined returns stdout and stderr interleaved, even on failure.
	// ffmpeg reports filter output (silencedetect etc.) on stderr with exit
	// code 0, so callers that parse it need the combined stream.
	ExecuteCombined(ctx context.Context, name string, args ...string) (string, error)
}
