package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLadder(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Ladder
		wantErr bool
	}{
		{
			name:  "two rungs",
			input: "360:800:96,720:2500:128",
			want: Ladder{
				{Height: 360, VideoBitrateKbps: 800, AudioBitrateKbps: 96},
				{Height: 720, VideoBitrateKbps: 2500, AudioBitrateKbps: 128},
			},
		},
		{
			name:  "whitespace tolerated",
			input: " 360 : 800 : 96 , 1080:5000:160 ",
			want: Ladder{
				{Height: 360, VideoBitrateKbps: 800, AudioBitrateKbps: 96},
				{Height: 1080, VideoBitrateKbps: 5000, AudioBitrateKbps: 160},
			},
		},
		{name: "empty disables transcoding", input: "", want: nil},
		{name: "missing field", input: "360:800", wantErr: true},
		{name: "non-numeric", input: "360:abc:96", wantErr: true},
		{name: "zero height", input: "0:800:96", wantErr: true},
		{name: "negative bitrate", input: "360:-800:96", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseLadder(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRungBandwidthIsDeclaredSum(t *testing.T) {
	// Exact integer arithmetic on the declared bitrates, never measured.
	assert.Equal(t, 896000, Rung{Height: 360, VideoBitrateKbps: 800, AudioBitrateKbps: 96}.Bandwidth())
	assert.Equal(t, 2628000, Rung{Height: 720, VideoBitrateKbps: 2500, AudioBitrateKbps: 128}.Bandwidth())
}

func TestRungNominalResolution(t *testing.T) {
	tests := []struct {
		height int
		want   string
	}{
		{360, "640x360"},
		{720, "1280x720"},
		{1080, "1920x1080"},
		{480, "852x480"}, // 16:9 estimate floored to even
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Rung{Height: tc.height}.NominalResolution())
	}
}
