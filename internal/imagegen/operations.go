package imagegen

import (
	"encoding/base64"
	"fmt"
	"strings"

	"storycanvas/internal/domain"
)

const (
	upscaleSuffix = "\n\n**UPSCALE INSTRUCTION:** Re-generate this image at the highest possible resolution and with maximum detail, clarity, and texture. Enhance all elements to create a superior, high-fidelity version."

	removeBackgroundPrompt = "**Critical Task: Background Removal.** Your only job is to perfectly cut out the main subject(s) from the provided image. The background must be completely removed and made transparent. The final output MUST be a PNG image with a transparent alpha channel. Do not add any new elements or change the subject."
)

// RegenerateRequest resubmits the stored payload of a gallery image
// unchanged; only the image count is pinned to one.
func RegenerateRequest(img domain.GeneratedImage) (domain.GenerationRequest, domain.CinematicControls) {
	return img.Payload, singleImageControls(img.Controls)
}

// UpscaleRequest reuses the stored payload with the upscale instruction
// appended to the original prompt.
func UpscaleRequest(img domain.GeneratedImage) (domain.GenerationRequest, domain.CinematicControls) {
	req := img.Payload
	req.Prompt = img.Prompt + upscaleSuffix
	return req, singleImageControls(img.Controls)
}

// RemoveBackgroundRequest discards the original prompt entirely: the model
// receives only the rendered image and the fixed cut-out instruction.
func RemoveBackgroundRequest(img domain.GeneratedImage) (domain.GenerationRequest, domain.CinematicControls, error) {
	source, err := ParseDataURL(img.URL)
	if err != nil {
		return domain.GenerationRequest{}, domain.CinematicControls{}, fmt.Errorf("decode source image: %w", err)
	}
	req := domain.GenerationRequest{
		Prompt: removeBackgroundPrompt,
		Images: []domain.ReferenceImage{source},
	}
	return req, singleImageControls(img.Controls), nil
}

// EditOptions carries the optional inputs of an edit operation.
type EditOptions struct {
	// Instruction is the final edit text, either the user's words or the
	// rewriter's improved version.
	Instruction string
	// Improved reports whether Instruction came from the rewriter; such
	// instructions are sent as-is instead of being wrapped.
	Improved bool
	// Reference optionally guides the edit with a second image.
	Reference *domain.ReferenceImage
	// Mask optionally confines the edit. White marks the editable region.
	Mask *domain.ReferenceImage
}

// EditRequest assembles the image list and instruction for an edit. The
// source image always goes first, then the mask, then the reference, and
// the instruction text is wrapped to point the model at each of them
// unless it already mentions them.
func EditRequest(img domain.GeneratedImage, opts EditOptions) (domain.GenerationRequest, domain.CinematicControls, error) {
	instruction := strings.TrimSpace(opts.Instruction)
	if instruction == "" {
		return domain.GenerationRequest{}, domain.CinematicControls{}, domain.ErrEmptyInstruction
	}

	source, err := ParseDataURL(img.URL)
	if err != nil {
		return domain.GenerationRequest{}, domain.CinematicControls{}, fmt.Errorf("decode source image: %w", err)
	}
	images := []domain.ReferenceImage{source}
	lower := strings.ToLower(instruction)
	prompt := instruction

	if opts.Mask.Present() {
		mask := *opts.Mask
		if mask.MIMEType == "" {
			mask.MIMEType = "image/png"
		}
		images = append(images, mask)
		if !strings.Contains(lower, "mask") {
			prompt = fmt.Sprintf("**Task: Masked Image Editing**\nPlease use the second image (the black and white mask) to perform a targeted edit on the first image (the original). The white area of the mask indicates the precise region to modify. Apply the following instruction ONLY within this masked area, leaving the black areas of the mask completely untouched: %q.", instruction)
		}
	}

	if opts.Reference.Present() {
		images = append(images, *opts.Reference)
		if !strings.Contains(lower, "reference image") {
			ordinal := "second"
			if len(images) == 3 {
				ordinal = "third"
			}
			prompt += fmt.Sprintf("\nUse the %s image as a style/content reference for the edit.", ordinal)
		}
	}

	if !opts.Improved && !opts.Mask.Present() {
		if !strings.Contains(lower, "edit") {
			prompt = fmt.Sprintf("**Task: Image Editing**\nPlease apply the following instruction to the provided image: %q", instruction)
		}
	}

	req := domain.GenerationRequest{Prompt: prompt, Images: images}
	return req, singleImageControls(img.Controls), nil
}

func singleImageControls(c domain.CinematicControls) domain.CinematicControls {
	c.NumberOfImages = 1
	return c
}

// ParseDataURL splits a data URL into its binary payload and MIME type.
func ParseDataURL(dataURL string) (domain.ReferenceImage, error) {
	const scheme = "data:"
	if !strings.HasPrefix(dataURL, scheme) {
		return domain.ReferenceImage{}, fmt.Errorf("not a data URL")
	}
	meta, encoded, ok := strings.Cut(dataURL[len(scheme):], ",")
	if !ok {
		return domain.ReferenceImage{}, fmt.Errorf("malformed data URL")
	}
	mime := strings.TrimSuffix(meta, ";base64")
	if mime == "" {
		mime = "image/png"
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return domain.ReferenceImage{}, fmt.Errorf("decode data URL payload: %w", err)
	}
	return domain.ReferenceImage{Data: data, MIMEType: mime}, nil
}

func dataURLFromBase64(mime, encoded string) string {
	return fmt.Sprintf("data:%s;base64,%s", mime, encoded)
}
