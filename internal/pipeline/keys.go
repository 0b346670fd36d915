package pipeline

import (
	"path"
	"strings"
)

// Derived artifact keys are pure functions of the source key, so a
// re-run for the same asset overwrites the previous run's artifacts in
// place. Stale rungs left behind by a shrunk ladder are not deleted.

func baseKey(sourceKey string) string {
	return strings.TrimSuffix(sourceKey, path.Ext(sourceKey))
}

// HLSBaseKey is the prefix under which one asset's ladder artifacts
// live, e.g. "videos/lecture" + "hls" -> "videos/lecture/hls/".
func HLSBaseKey(sourceKey, subdir string) string {
	return baseKey(sourceKey) + "/" + strings.Trim(subdir, "/") + "/"
}

// PreviewKey is the storage key of the asset's still-frame preview.
func PreviewKey(sourceKey string) string {
	return baseKey(sourceKey) + "_preview.jpg"
}
