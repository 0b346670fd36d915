package media

import (
	"context"
	"encoding/json"
	"strconv"
)

// VideoStream describes the first video stream of a probed file.
type VideoStream struct {
	Width  int
	Height int
	Codec  string
}

// AudioStream describes the first audio stream of a probed file.
type AudioStream struct {
	Codec string
}

// ProbeResult is recomputed on every run and never cached across runs.
// A file with no streams yields a result with both stream fields nil.
type ProbeResult struct {
	DurationSeconds float64
	Video           *VideoStream
	Audio           *AudioStream
}

// Prober extracts container and stream metadata with ffprobe.
type Prober struct {
	runner  Runner
	ffprobe string
}

func NewProber(runner Runner, ffprobePath string) *Prober {
	return &Prober{runner: runner, ffprobe: ffprobePath}
}

// ffprobe's machine-readable output, reduced to the fields we read.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

// Probe runs ffprobe against a local file. Only the first video stream
// and the first audio stream are considered; later streams of the same
// type are deliberately ignored.
func (p *Prober) Probe(ctx context.Context, localPath string) (*ProbeResult, error) {
	out, err := p.runner.Run(ctx, p.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		localPath,
	)
	if err != nil {
		return nil, &ProbeError{Path: localPath, Err: err}
	}

	var parsed probeOutput
	if err := json.Unmarshal(out.Stdout, &parsed); err != nil {
		return nil, &ProbeError{Path: localPath, Err: err}
	}

	result := &ProbeResult{}
	if dur, err := strconv.ParseFloat(parsed.Format.Duration, 64); err == nil && dur >= 0 {
		result.DurationSeconds = dur
	}

	for _, s := range parsed.Streams {
		switch s.CodecType {
		case "video":
			if result.Video == nil {
				result.Video = &VideoStream{Width: s.Width, Height: s.Height, Codec: s.CodecName}
			}
		case "audio":
			if result.Audio == nil {
				result.Audio = &AudioStream{Codec: s.CodecName}
			}
		}
	}
	return result, nil
}
