package media

import (
	"context"
	"strconv"
)

// PreviewExtractor produces a single still frame from a video file.
type PreviewExtractor struct {
	runner Runner
	ffmpeg string
}

func NewPreviewExtractor(runner Runner, ffmpegPath string) *PreviewExtractor {
	return &PreviewExtractor{runner: runner, ffmpeg: ffmpegPath}
}

// Extract seeks to atSeconds and writes one frame to outImage. The
// timestamp may exceed the clip duration; ffmpeg's own clamping applies
// and is not pre-validated here.
func (e *PreviewExtractor) Extract(ctx context.Context, localPath, outImage string, atSeconds float64) error {
	_, err := e.runner.Run(ctx, e.ffmpeg,
		"-y",
		"-ss", strconv.FormatFloat(atSeconds, 'f', -1, 64),
		"-i", localPath,
		"-frames:v", "1",
		"-q:v", "2",
		outImage,
	)
	if err != nil {
		return &PreviewError{Path: localPath, Err: err}
	}
	return nil
}
