package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivedKeys(t *testing.T) {
	tests := []struct {
		source  string
		hls     string
		preview string
	}{
		{"lecture.mp4", "lecture/hls/", "lecture_preview.jpg"},
		{"videos/2026/01/02/abc/talk.mov", "videos/2026/01/02/abc/talk/hls/", "videos/2026/01/02/abc/talk_preview.jpg"},
		{"raw-capture", "raw-capture/hls/", "raw-capture_preview.jpg"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.hls, HLSBaseKey(tc.source, "hls"), tc.source)
		assert.Equal(t, tc.preview, PreviewKey(tc.source), tc.source)
	}

	// Key derivation is deterministic: same input, same keys, every run.
	assert.Equal(t, HLSBaseKey("lecture.mp4", "hls"), HLSBaseKey("lecture.mp4", "hls"))
	// Subdir slashes are normalized.
	assert.Equal(t, "lecture/streams/", HLSBaseKey("lecture.mp4", "/streams/"))
}
