package prompt

import (
	"fmt"
	"strings"

	"storycanvas/internal/domain"
)

// ensembleThreshold is the number of image-referenced characters at which
// compilation switches from the standard brief to the ensemble brief.
const ensembleThreshold = 3

// Compile renders the long-form prompt for a scene and returns it together
// with the reference images in the exact order the prompt numbers them:
// referenced characters first, then the style image, the location image,
// and finally any key-object images. Position i in the slice corresponds
// to the token "[Reference Image i+1]" in the text.
func Compile(spec domain.SceneSpec) (string, []domain.ReferenceImage) {
	c := &compilation{}
	cast := spec.ReferencedCharacters()
	if len(cast) >= ensembleThreshold {
		return c.ensemble(spec, cast), c.images
	}
	return c.standard(spec, cast), c.images
}

// compilation threads the single reference counter through a Compile call.
// Every claim appends the image and hands back its 1-based number.
type compilation struct {
	images []domain.ReferenceImage
}

func (c *compilation) claim(img *domain.ReferenceImage) int {
	c.images = append(c.images, *img)
	return len(c.images)
}

// referenceLine renders a text-or-image slot. Empty text falls back to
// "Not specified."; an attached image appends the inspiration sentence
// carrying the slot's freshly claimed reference number.
func (c *compilation) referenceLine(text string, img *domain.ReferenceImage, fileType string) string {
	out := text
	if out == "" {
		out = "Not specified."
	}
	if img.Present() {
		n := c.claim(img)
		if text != "" {
			out += " "
		}
		out += fmt.Sprintf("The %s should be heavily inspired by [Reference Image %d].", fileType, n)
	}
	return out
}

// keyObjectLines renders the props list. Objects with neither text nor an
// image are skipped entirely and claim no reference number.
func (c *compilation) keyObjectLines(objects []domain.KeyObject) string {
	var lines []string
	for _, ko := range objects {
		if strings.TrimSpace(ko.Text) == "" && !ko.Image.Present() {
			continue
		}
		line := "- " + ko.Text
		if ko.Text == "" {
			line = "- An object"
		}
		if ko.Image.Present() {
			line += fmt.Sprintf(" based on the appearance in [Reference Image %d].", c.claim(ko.Image))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// controlLines renders the six cinematographic bullet lines shared by both
// templates. The sentinel value of each control yields a fixed sentence
// delegating the choice to the model.
func controlLines(ctl domain.CinematicControls) string {
	var b strings.Builder

	if ctl.ShotType == domain.ShotTypeNone {
		b.WriteString("- **Shot Type:** The AI can choose the most appropriate framing for the scene.")
	} else {
		fmt.Fprintf(&b, "- **Shot Type:** %s. %s", ctl.ShotType, DescribeShotType(ctl.ShotType))
	}
	b.WriteByte('\n')

	if ctl.CameraAngle == domain.CameraAngleNone {
		b.WriteString("- **Camera Perspective:** The AI can choose the most fitting camera angle.")
	} else {
		fmt.Fprintf(&b, "- **Camera Perspective:** %s. %s", ctl.CameraAngle, DescribeCameraAngle(ctl.CameraAngle))
	}
	b.WriteByte('\n')

	if ctl.CameraZoom == domain.CameraZoomNone {
		b.WriteString("- **Camera Zoom:** The AI can determine the optimal lens for composition.")
	} else {
		fmt.Fprintf(&b, "- **Camera Zoom:** Use a %s lens effect. %s", ctl.CameraZoom, DescribeCameraZoom(ctl.CameraZoom))
	}
	b.WriteByte('\n')

	if ctl.Lighting == domain.LightingNone {
		b.WriteString("- **Lighting Style:** The AI can select the most suitable lighting to match the scene's mood.")
	} else {
		fmt.Fprintf(&b, "- **Lighting Style:** The scene should be illuminated with a %s style. %s", ctl.Lighting, DescribeLighting(ctl.Lighting))
	}
	b.WriteByte('\n')

	if ctl.PhotoStyle == domain.PhotoStyleNone {
		b.WriteString("- **Photo Aesthetics:** The AI will determine the best artistic style for the image.")
	} else {
		fmt.Fprintf(&b, "- **Photo Aesthetics:** Render the image with a %s look. %s", ctl.PhotoStyle, DescribePhotoStyle(ctl.PhotoStyle))
	}
	b.WriteByte('\n')

	if ctl.ColorTone == domain.ColorToneNone {
		b.WriteString("- **Color & Tone:** The AI should choose the most appropriate color grading for the mood.")
	} else {
		fmt.Fprintf(&b, "- **Color & Tone:** %s. %s", ctl.ColorTone, DescribeColorTone(ctl.ColorTone))
	}
	return b.String()
}

const styleFileType = "visual style, mood, and color palette"

// ensemble renders the director's-brief template used for large casts.
func (c *compilation) ensemble(spec domain.SceneSpec, cast []domain.Character) string {
	manifest := make([]string, len(cast))
	for i, ch := range cast {
		manifest[i] = fmt.Sprintf(
			"- **Character #%d (%q):** Portrayed in [Reference Image %d]. Please capture their likeness with high fidelity.",
			i+1, ch.Name, c.claim(ch.Image))
	}

	styleLine := c.referenceLine(spec.Style.Text, spec.Style.Image, styleFileType)
	locationLine := c.referenceLine(spec.Location.Text, spec.Location.Image, "location")

	props := c.keyObjectLines(spec.KeyObjects)
	if props == "" {
		props = "- The scene is focused on the characters and their interaction."
	}

	ctl := spec.Controls
	return fmt.Sprintf(`**Director's Brief: A Cinematic Ensemble Scene**

**Vision:** The goal is to craft a single, compelling image that brings together %d distinct individuals into one cohesive and atmospheric scene. The final piece should feel like a keyframe from a film, rich with narrative potential.

**The Cast:**
We have a cast of %d characters. It's crucial that each character's unique identity, as shown in their reference image, is preserved with high fidelity. Let's introduce them:
%s

**Scene & Setting:**
- **The Moment:** %s (This is the central action or mood. All characters should be part of this moment.)
- **The World:** %s
- **Props & Details:**
%s
- **Art Direction:** %s

**Cinematography & Composition:**
- We're aiming for a composition that feels natural and balanced, giving each character their space while connecting them to the overall scene. Consider using depth (foreground, mid-ground, background) to create a dynamic arrangement.
- The lighting and shadows should be unified, enveloping all characters consistently within the environment's mood.

**Technical Blueprint:**
- **Frame:** The final image should have a precise %s aspect ratio (%s).
%s

**Final Check:** The finished image should be a masterful composition that successfully integrates all %d characters, honoring their individual appearances while creating a unified and evocative narrative moment.`,
		len(cast), len(cast), strings.Join(manifest, "\n"),
		spec.SceneDescription, locationLine, props, styleLine,
		ctl.AspectRatio, AspectRatioExample(ctl.AspectRatio), controlLines(ctl),
		len(cast))
}

// standard renders the creative-brief template used for casts of up to two
// referenced characters, including none.
func (c *compilation) standard(spec domain.SceneSpec, cast []domain.Character) string {
	var lines []string
	for _, ch := range cast {
		lines = append(lines, fmt.Sprintf(
			"- [Reference Image %d] shows %q. Please faithfully recreate their facial features and likeness to ensure they are clearly recognizable.",
			c.claim(ch.Image), ch.Name))
	}
	characters := strings.Join(lines, "\n")
	if characters == "" {
		characters = "- No specific characters provided."
	}

	styleLine := c.referenceLine(spec.Style.Text, spec.Style.Image, styleFileType)
	locationLine := c.referenceLine(spec.Location.Text, spec.Location.Image, "location")

	props := c.keyObjectLines(spec.KeyObjects)
	if props == "" {
		props = "- No specific objects needed."
	}

	ctl := spec.Controls
	return fmt.Sprintf(`**Creative Brief: Generate a Safe-for-Work Cinematic Scene**

**Main Goal:** Create a single, high-quality, photorealistic image that places the provided characters into a new, detailed scene.

**Top Priority: Character Likeness**
It is essential to accurately represent the characters from their reference images. Please pay close attention to their facial features, hair, and overall appearance to ensure they are clearly recognizable. This is the most important part of the request.
%s

**Scene Construction Details:**
- **Core Scene Idea:** %s
- **Location:** %s
- **Key Objects/Props:**
%s
- **Artistic Style Reference:** %s

**Cinematic & Technical Specifications:**
- **Image Aspect Ratio:** The final image should have a precise %s aspect ratio (%s).
%s

**Final Instructions:**
- Focus on creating a cohesive and believable image where the characters are naturally integrated into the environment.
- Ensure the final output is realistic, high-quality, and adheres to all safety guidelines.
- The output must be a single image, not a collage.`,
		characters, spec.SceneDescription, locationLine, props, styleLine,
		ctl.AspectRatio, AspectRatioExample(ctl.AspectRatio), controlLines(ctl))
}
