package media

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewExtractArgs(t *testing.T) {
	runner := &fakeRunner{run: func(string, []string) (Output, error) {
		return Output{}, nil
	}}

	ex := NewPreviewExtractor(runner, "ffmpeg")
	err := ex.Extract(context.Background(), "/tmp/in.mp4", "/tmp/preview.jpg", 3)
	require.NoError(t, err)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{
		"ffmpeg", "-y", "-ss", "3", "-i", "/tmp/in.mp4",
		"-frames:v", "1", "-q:v", "2", "/tmp/preview.jpg",
	}, runner.calls[0])
}

func TestPreviewExtractToolFailure(t *testing.T) {
	runner := &fakeRunner{run: func(string, []string) (Output, error) {
		return Output{}, &ExternalToolError{Command: "ffmpeg", ExitCode: 1, Stderr: "seek failed"}
	}}

	err := NewPreviewExtractor(runner, "ffmpeg").Extract(context.Background(), "/tmp/in.mp4", "/tmp/preview.jpg", 9999)
	require.Error(t, err)

	var prevErr *PreviewError
	require.True(t, errors.As(err, &prevErr))
}
