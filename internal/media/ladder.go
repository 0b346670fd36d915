package media

import (
	"fmt"
	"strconv"
	"strings"
)

// Rung is one quality level of an adaptive-bitrate ladder.
type Rung struct {
	Height           int `json:"height"`
	VideoBitrateKbps int `json:"video_bitrate_kbps"`
	AudioBitrateKbps int `json:"audio_bitrate_kbps"`
}

// Bandwidth is the rung's bandwidth estimate in bits per second. It is
// the declared bitrate sum, not a measured value, and is kept that way
// for compatibility with existing manifests.
func (r Rung) Bandwidth() int {
	return (r.VideoBitrateKbps + r.AudioBitrateKbps) * 1000
}

// NominalResolution estimates the encoded resolution assuming a 16:9
// source, floored to an even width. The true encoded width may differ
// for other aspect ratios; that inaccuracy is preserved deliberately.
func (r Rung) NominalResolution() string {
	w := r.Height * 16 / 9 / 2 * 2
	return fmt.Sprintf("%dx%d", w, r.Height)
}

// Ladder is the set of rungs configured for an asset. Declaration order
// is irrelevant; manifests always list rungs ascending by height.
type Ladder []Rung

// ParseLadder parses the height:video_kbps:audio_kbps CSV form used in
// configuration, e.g. "360:800:96,720:2500:128". An empty string yields
// an empty ladder, which disables transcoding.
func ParseLadder(s string) (Ladder, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var ladder Ladder
	for _, part := range strings.Split(s, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("invalid ladder rung %q: want height:video_kbps:audio_kbps", part)
		}
		vals := make([]int, 3)
		for i, f := range fields {
			n, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return nil, fmt.Errorf("invalid ladder rung %q: %w", part, err)
			}
			if n <= 0 {
				return nil, fmt.Errorf("invalid ladder rung %q: values must be positive", part)
			}
			vals[i] = n
		}
		ladder = append(ladder, Rung{Height: vals[0], VideoBitrateKbps: vals[1], AudioBitrateKbps: vals[2]})
	}
	return ladder, nil
}
