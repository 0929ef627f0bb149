package prompt

import "storycanvas/internal/domain"

// Mode identifies which prompt form a request compiles to.
type Mode int

const (
	// ModeLongForm is the full markdown brief with numbered image
	// references, sent to the image-conditioned model.
	ModeLongForm Mode = iota
	// ModeCompact is the comma-joined keyword prompt used for
	// text-to-image batches.
	ModeCompact
	// ModeRaw sends the scene description untouched. Selected when the
	// cinematic brief is disabled or the description was already
	// improved by the rewriter.
	ModeRaw
)

func (m Mode) String() string {
	switch m {
	case ModeLongForm:
		return "long_form"
	case ModeCompact:
		return "compact"
	default:
		return "raw"
	}
}

// SelectMode decides the prompt form for a request. Any attached reference
// image forces the long form regardless of the toggles. Without images, an
// improved scene suppresses the cinematic brief and goes out raw;
// otherwise the cinematic toggle picks between compact and raw.
func SelectMode(spec domain.SceneSpec, cinematicPrompt, improvedScene bool) Mode {
	if spec.HasReferenceImages() {
		return ModeLongForm
	}
	if improvedScene {
		return ModeRaw
	}
	if cinematicPrompt {
		return ModeCompact
	}
	return ModeRaw
}

// Build compiles the prompt for the selected mode. The returned images are
// non-empty only in long form, where their order matches the numbered
// references in the text.
func Build(spec domain.SceneSpec, mode Mode) (string, []domain.ReferenceImage) {
	switch mode {
	case ModeLongForm:
		return Compile(spec)
	case ModeCompact:
		return CompileCompact(spec), nil
	default:
		return spec.SceneDescription, nil
	}
}
