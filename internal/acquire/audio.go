package acquire

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/wisdomflow/pkg/executor"
)

var audioExtensions = map[string]bool{
	".mp3": true, ".m4a": true, ".wav": true,
	".aac": true, ".flac": true, ".ogg": true, ".opus": true,
}

// extractAudio pulls a mono AAC track out of a media file. Video inputs
// lose the video stream, audio inputs get normalized to the same format
// whisper.cpp and the remote ASR endpoints both accept.
func extractAudio(ctx context.Context, exec executor.Executor, ffmpeg, mediaPath, outPath string) error {
	args := []string{
		"-i", mediaPath,
		"-vn",
		"-acodec", "aac",
		"-b:a", "128k",
		"-ac", "1",
		"-ar", "22050",
		"-y",
		outPath,
	}
	if _, err := exec.Execute(ctx, ffmpeg, args...); err != nil {
		return fmt.Errorf("extract audio from %s: %w", mediaPath, err)
	}
	return nil
}

var durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d{2}):(\d{2})(?:\.(\d+))?`)

// probeDuration reads the media duration in seconds. ffmpeg prints it on
// stderr and exits non-zero without an output file, so the error is only
// fatal when no duration could be parsed either.
func probeDuration(ctx context.Context, exec executor.Executor, ffmpeg, path string) (float64, error) {
	out, err := exec.ExecuteCombined(ctx, ffmpeg, "-i", path)
	m := durationRe.FindStringSubmatch(out)
	if m == nil {
		if err != nil {
			return 0, fmt.Errorf("probe duration of %s: %w", path, err)
		}
		return 0, fmt.Errorf("probe duration of %s: no duration in ffmpeg output", path)
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	total := float64(h*3600 + min*60 + sec)
	if m[4] != "" {
		frac, _ := strconv.ParseFloat("0."+m[4], 64)
		total += frac
	}
	return total, nil
}

// isAudioFile reports whether the path already carries a bare audio track.
func isAudioFile(path string) bool {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return false
	}
	return audioExtensions[strings.ToLower(path[idx:])]
}
