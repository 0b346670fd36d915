package media

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner stubs external tool invocations for probe/transcode tests.
type fakeRunner struct {
	calls [][]string
	run   func(command string, args []string) (Output, error)
}

func (f *fakeRunner) Run(_ context.Context, command string, args ...string) (Output, error) {
	f.calls = append(f.calls, append([]string{command}, args...))
	return f.run(command, args)
}

func TestProbeParsesFirstStreams(t *testing.T) {
	runner := &fakeRunner{run: func(string, []string) (Output, error) {
		return Output{Stdout: []byte(`{
			"format": {"duration": "12.500000"},
			"streams": [
				{"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080},
				{"codec_type": "video", "codec_name": "mjpeg", "width": 320, "height": 240},
				{"codec_type": "audio", "codec_name": "aac"},
				{"codec_type": "audio", "codec_name": "mp3"}
			]
		}`)}, nil
	}}

	result, err := NewProber(runner, "ffprobe").Probe(context.Background(), "/tmp/in.mp4")
	require.NoError(t, err)

	assert.Equal(t, 12.5, result.DurationSeconds)
	require.NotNil(t, result.Video)
	assert.Equal(t, 1920, result.Video.Width)
	assert.Equal(t, 1080, result.Video.Height)
	assert.Equal(t, "h264", result.Video.Codec)
	require.NotNil(t, result.Audio)
	assert.Equal(t, "aac", result.Audio.Codec, "later streams of the same type are ignored")

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{
		"ffprobe", "-v", "error", "-print_format", "json",
		"-show_format", "-show_streams", "/tmp/in.mp4",
	}, runner.calls[0])
}

func TestProbeStreamlessFile(t *testing.T) {
	runner := &fakeRunner{run: func(string, []string) (Output, error) {
		return Output{Stdout: []byte(`{"format": {}, "streams": []}`)}, nil
	}}

	result, err := NewProber(runner, "ffprobe").Probe(context.Background(), "/tmp/empty.mp4")
	require.NoError(t, err)
	assert.Zero(t, result.DurationSeconds)
	assert.Nil(t, result.Video)
	assert.Nil(t, result.Audio)
}

func TestProbeToolFailure(t *testing.T) {
	runner := &fakeRunner{run: func(string, []string) (Output, error) {
		return Output{}, &ExternalToolError{Command: "ffprobe", ExitCode: 1, Stderr: "invalid data"}
	}}

	_, err := NewProber(runner, "ffprobe").Probe(context.Background(), "/tmp/bad.mp4")
	require.Error(t, err)

	var probeErr *ProbeError
	require.True(t, errors.As(err, &probeErr))
	var toolErr *ExternalToolError
	assert.True(t, errors.As(err, &toolErr), "tool error stays reachable through the chain")
}

func TestProbeUnparseableOutput(t *testing.T) {
	runner := &fakeRunner{run: func(string, []string) (Output, error) {
		return Output{Stdout: []byte("not json")}, nil
	}}

	_, err := NewProber(runner, "ffprobe").Probe(context.Background(), "/tmp/in.mp4")
	var probeErr *ProbeError
	require.True(t, errors.As(err, &probeErr))
}

func TestProbeNeverCaches(t *testing.T) {
	n := 0
	runner := &fakeRunner{run: func(string, []string) (Output, error) {
		n++
		return Output{Stdout: []byte(fmt.Sprintf(`{"format": {"duration": "%d"}}`, n))}, nil
	}}

	prober := NewProber(runner, "ffprobe")
	first, err := prober.Probe(context.Background(), "/tmp/in.mp4")
	require.NoError(t, err)
	second, err := prober.Probe(context.Background(), "/tmp/in.mp4")
	require.NoError(t, err)
	assert.NotEqual(t, first.DurationSeconds, second.DurationSeconds)
}
