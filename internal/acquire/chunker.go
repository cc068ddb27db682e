package acquire

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/nguyentantai21042004/wisdomflow/pkg/executor"
)

var silenceStartRe = regexp.MustCompile(`silence_start:\s*([\d.]+)`)

// parseSilencePoints extracts silence_start timestamps from ffmpeg
// silencedetect filter output.
func parseSilencePoints(out string) []float64 {
	var points []float64
	for _, m := range silenceStartRe.FindAllStringSubmatch(out, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		points = append(points, v)
	}
	return points
}

// boundary is one [start, end) cut of the source audio.
type boundary struct {
	start, end float64
}

// planBoundaries cuts [0, duration) into chunks no longer than maxChunk
// seconds, preferring to cut at the latest silence point inside each
// window so speech is not split mid-sentence. With no usable silence the
// cut falls on the hard limit.
func planBoundaries(duration float64, silences []float64, maxChunk float64) []boundary {
	if duration <= 0 {
		return nil
	}
	if maxChunk <= 0 || duration <= maxChunk {
		return []boundary{{0, duration}}
	}

	var out []boundary
	start := 0.0
	for duration-start > maxChunk {
		cut := start + maxChunk
		// Latest silence point that still leaves a non-trivial chunk.
		for i := len(silences) - 1; i >= 0; i-- {
			if silences[i] <= start+maxChunk && silences[i] > start+1 {
				cut = silences[i]
				break
			}
		}
		out = append(out, boundary{start, cut})
		start = cut
	}
	out = append(out, boundary{start, duration})
	return out
}

// chunkAudio splits an audio file into transcription-sized pieces inside
// workDir and returns their paths in playback order. Short inputs become a
// single copied chunk so cleanup can always remove workDir wholesale.
func chunkAudio(ctx context.Context, exec executor.Executor, ffmpeg, audioPath, workDir string, maxChunkSeconds int) ([]string, error) {
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("create chunk dir: %w", err)
	}

	duration, err := probeDuration(ctx, exec, ffmpeg, audioPath)
	if err != nil {
		return nil, err
	}

	// Chunks keep the source container so stream copy stays valid.
	ext := filepath.Ext(audioPath)
	if ext == "" {
		ext = ".m4a"
	}

	maxChunk := float64(maxChunkSeconds)
	if duration <= maxChunk {
		dest := filepath.Join(workDir, "chunk_000"+ext)
		if _, err := exec.Execute(ctx, ffmpeg, "-i", audioPath, "-c", "copy", "-y", dest); err != nil {
			return nil, fmt.Errorf("copy chunk: %w", err)
		}
		return []string{dest}, nil
	}

	detectOut, _ := exec.ExecuteCombined(ctx, ffmpeg,
		"-i", audioPath,
		"-af", "silencedetect=noise=-35dB:d=1.0",
		"-f", "null", "-")
	silences := parseSilencePoints(detectOut)

	if len(silences) == 0 {
		return segmentAudio(ctx, exec, ffmpeg, audioPath, workDir, ext, maxChunkSeconds)
	}

	var chunks []string
	for i, b := range planBoundaries(duration, silences, maxChunk) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		dest := filepath.Join(workDir, fmt.Sprintf("chunk_%03d"+ext, i))
		args := []string{
			"-ss", fmt.Sprintf("%.3f", b.start),
			"-i", audioPath,
			"-t", fmt.Sprintf("%.3f", b.end-b.start),
			"-c", "copy",
			"-y",
			dest,
		}
		if _, err := exec.Execute(ctx, ffmpeg, args...); err != nil {
			return nil, fmt.Errorf("cut chunk %d: %w", i, err)
		}
		chunks = append(chunks, dest)
	}
	return chunks, nil
}

// segmentAudio is the fallback splitter for audio without detectable
// silence: fixed-length segments via ffmpeg's segment muxer.
func segmentAudio(ctx context.Context, exec executor.Executor, ffmpeg, audioPath, workDir, ext string, maxChunkSeconds int) ([]string, error) {
	pattern := filepath.Join(workDir, "chunk_%03d"+ext)
	args := []string{
		"-i", audioPath,
		"-f", "segment",
		"-segment_time", strconv.Itoa(maxChunkSeconds),
		"-reset_timestamps", "1",
		"-c", "copy",
		"-y",
		pattern,
	}
	if _, err := exec.Execute(ctx, ffmpeg, args...); err != nil {
		return nil, fmt.Errorf("segment audio: %w", err)
	}
	chunks, err := filepath.Glob(filepath.Join(workDir, "chunk_*"+ext))
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("segment audio: no chunks produced")
	}
	sort.Strings(chunks)
	return chunks, nil
}
