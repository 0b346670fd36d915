package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const (
	// MasterPlaylistName is the filename of the top-level manifest.
	MasterPlaylistName = "master.m3u8"
	// variantPlaylistName is the per-rung sub-manifest filename.
	variantPlaylistName = "index.m3u8"
	// segmentPattern names the media segments within a rung directory.
	segmentPattern = "seg_%04d.ts"
)

// Variant describes one produced rung for manifest assembly.
type Variant struct {
	Height     int
	Bandwidth  int
	Dir        string
	Playlist   string
	Resolution string
}

// Transcoder produces a ladder of HLS variants plus a master manifest.
type Transcoder struct {
	runner Runner
	ffmpeg string
	prober *Prober
}

func NewTranscoder(runner Runner, ffmpegPath string, prober *Prober) *Transcoder {
	return &Transcoder{runner: runner, ffmpeg: ffmpegPath, prober: prober}
}

// Transcode encodes inputPath once per rung into outDir and writes the
// master manifest referencing every rung. Rungs are independent; no
// state is shared between invocations. Any rung failure aborts the
// whole ladder so an incomplete manifest is never produced.
func (t *Transcoder) Transcode(ctx context.Context, inputPath, outDir string, ladder Ladder, segmentDuration int) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create transcode output dir: %w", err)
	}

	// Audio presence decides the encode arguments for every rung.
	info, err := t.prober.Probe(ctx, inputPath)
	if err != nil {
		return "", fmt.Errorf("probe transcode input: %w", err)
	}
	hasAudio := info.Audio != nil

	variants := make([]Variant, 0, len(ladder))
	for _, rung := range ladder {
		if err := t.transcodeRung(ctx, inputPath, outDir, rung, segmentDuration, hasAudio); err != nil {
			return "", &TranscodeError{Rung: rung, Err: err}
		}
		variants = append(variants, Variant{
			Height:     rung.Height,
			Bandwidth:  rung.Bandwidth(),
			Dir:        variantDir(rung.Height),
			Playlist:   variantPlaylistName,
			Resolution: rung.NominalResolution(),
		})
	}

	master := filepath.Join(outDir, MasterPlaylistName)
	if err := os.WriteFile(master, []byte(MasterManifest(variants)), 0o644); err != nil {
		return "", fmt.Errorf("write master manifest: %w", err)
	}
	return master, nil
}

func (t *Transcoder) transcodeRung(ctx context.Context, inputPath, outDir string, rung Rung, segmentDuration int, hasAudio bool) error {
	varDir := filepath.Join(outDir, variantDir(rung.Height))
	if err := os.MkdirAll(varDir, 0o755); err != nil {
		return err
	}

	// Scale by height preserving aspect ratio, then pad to even
	// dimensions; libx264 rejects odd frame sizes.
	vf := fmt.Sprintf("scale=w=-2:h=%d:force_original_aspect_ratio=decrease,pad=ceil(iw/2)*2:ceil(ih/2)*2", rung.Height)

	vk := rung.VideoBitrateKbps
	args := []string{
		"-y",
		"-i", inputPath,
		"-map", "0:v:0",
		"-vf", vf,
		"-c:v", "h264", "-profile:v", "main", "-preset", "veryfast",
		"-b:v", fmt.Sprintf("%dk", vk),
		"-maxrate", fmt.Sprintf("%dk", vk*107/100),
		"-bufsize", fmt.Sprintf("%dk", vk*2),
		"-pix_fmt", "yuv420p",
		"-f", "hls",
		"-hls_time", strconv.Itoa(segmentDuration),
		"-hls_playlist_type", "vod",
		"-hls_segment_filename", filepath.Join(varDir, segmentPattern),
	}

	if hasAudio {
		args = append(args,
			"-map", "0:a:0",
			"-c:a", "aac",
			"-b:a", fmt.Sprintf("%dk", rung.AudioBitrateKbps),
			"-ac", "2",
			"-ar", "48000",
		)
	} else {
		args = append(args, "-an")
	}

	args = append(args, filepath.Join(varDir, variantPlaylistName))
	_, err := t.runner.Run(ctx, t.ffmpeg, args...)
	return err
}

// MasterManifest renders the top-level playlist, rungs ascending by
// height regardless of ladder declaration order.
func MasterManifest(variants []Variant) string {
	sorted := make([]Variant, len(variants))
	copy(sorted, variants)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Height < sorted[j].Height })

	lines := []string{"#EXTM3U", "#EXT-X-VERSION:3"}
	for _, v := range sorted {
		lines = append(lines, fmt.Sprintf("#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%s", v.Bandwidth, v.Resolution))
		lines = append(lines, v.Dir+"/"+v.Playlist)
	}
	return strings.Join(lines, "\n")
}

func variantDir(height int) string {
	return "v" + strconv.Itoa(height)
}
