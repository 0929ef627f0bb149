package prompt

import (
	"strings"

	"storycanvas/internal/domain"
)

// CompileCompact renders the concise keyword prompt used on the
// text-to-image batch path. Parts are comma-joined and empty parts are
// omitted, so the output never carries double separators.
func CompileCompact(spec domain.SceneSpec) string {
	parts := []string{spec.SceneDescription}

	var styleParts []string
	if kw := PhotoStyleKeywords(spec.Controls.PhotoStyle); kw != "" {
		styleParts = append(styleParts, kw)
	}
	if spec.Style.Text != "" {
		styleParts = append(styleParts, "in the style of "+spec.Style.Text)
	}
	if len(styleParts) > 0 {
		parts = append(parts, strings.Join(styleParts, ", "))
	}

	if spec.Location.Text != "" {
		parts = append(parts, spec.Location.Text)
	}

	var objects []string
	for _, ko := range spec.KeyObjects {
		if ko.Text != "" {
			objects = append(objects, ko.Text)
		}
	}
	if len(objects) > 0 {
		parts = append(parts, "featuring: "+strings.Join(objects, ", "))
	}

	ctl := spec.Controls
	if ctl.ShotType != domain.ShotTypeNone {
		parts = append(parts, string(ctl.ShotType))
	}
	if ctl.CameraAngle != domain.CameraAngleNone {
		parts = append(parts, string(ctl.CameraAngle))
	}
	if ctl.CameraZoom != domain.CameraZoomNone {
		parts = append(parts, string(ctl.CameraZoom))
	}
	if ctl.Lighting != domain.LightingNone {
		parts = append(parts, string(ctl.Lighting)+" lighting")
	}
	if kw := ColorToneKeywords(ctl.ColorTone); kw != "" {
		parts = append(parts, kw)
	}

	return strings.Join(parts, ", ")
}
