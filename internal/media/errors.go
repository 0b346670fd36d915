package media

import "fmt"

// ExternalToolError reports a non-zero exit from an external media tool.
// The runner does not retry; callers decide whether the failure is
// retryable.
type ExternalToolError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExternalToolError) Error() string {
	return fmt.Sprintf("%s exited with code %d: %s", e.Command, e.ExitCode, e.Stderr)
}

// ProbeError reports that stream metadata could not be extracted, either
// because the tool failed or because its output was not parseable.
type ProbeError struct {
	Path string
	Err  error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// PreviewError reports a failed still-frame extraction. Preview failures
// degrade a processing run but never abort it.
type PreviewError struct {
	Path string
	Err  error
}

func (e *PreviewError) Error() string {
	return fmt.Sprintf("extract preview from %s: %v", e.Path, e.Err)
}

func (e *PreviewError) Unwrap() error { return e.Err }

// TranscodeError reports a failed rung encode. One failed rung aborts the
// whole ladder; a partial manifest is never published.
type TranscodeError struct {
	Rung Rung
	Err  error
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("transcode rung %dp: %v", e.Rung.Height, e.Err)
}

func (e *TranscodeError) Unwrap() error { return e.Err }
