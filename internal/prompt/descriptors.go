// Package prompt compiles a structured scene brief into the natural-language
// prompts sent to the image models. Compilation is deterministic and free of
// side effects: identical specs produce byte-identical prompts.
package prompt

import "storycanvas/internal/domain"

// Descriptor tables map each enumerated control value to the descriptive
// clause interpolated into the long-form prompt. Lookups are total over the
// enumerated domains: the "None" sentinel (and any out-of-domain value)
// yields the empty string.

var shotTypeDescriptions = map[domain.ShotType]string{
	domain.ShotTypeExtremeClose: "An extreme close-up, focusing on a specific detail like the eyes or an object to create a strong focal point.",
	domain.ShotTypeCloseUp:      "A tight close-up shot, capturing the character's face to emphasize their expressions and feelings.",
	domain.ShotTypeMedium:       "A classic medium shot from the waist up, balancing the character with their surrounding environment.",
	domain.ShotTypeFull:         "A full shot, showing the character from head to toe, giving a clear view of their posture and action within the scene.",
	domain.ShotTypeLong:         "A long shot, where the character is visible but the focus is on the environment, establishing scale and location.",
	domain.ShotTypeEstablishing: "A wide establishing shot that shows the overall location and sets the mood for the scene before focusing on any characters.",
}

var cameraAngleDescriptions = map[domain.CameraAngle]string{
	domain.CameraAngleEyeLevel: "A neutral eye-level angle, creating a direct and relatable connection with the character.",
	domain.CameraAngleHigh:     "A high-angle shot, looking down on the subject, providing a broader view of the scene or creating a sense of scale.",
	domain.CameraAngleLow:      "A low-angle shot, looking up at the subject to make them appear prominent or significant in the scene.",
	domain.CameraAngleDutch:    "A dynamic Dutch angle, tilting the camera to create a stylized and energetic feel.",
	domain.CameraAngleBirdsEye: "An omniscient bird's eye view from directly overhead, offering a unique, map-like perspective of the scene.",
}

var cameraZoomDescriptions = map[domain.CameraZoom]string{
	domain.CameraZoomCloseUp:   "A telephoto lens effect, compressing the background and creating a tight focus on the subject.",
	domain.CameraZoomMedium:    "A standard lens effect, mimicking the natural perspective of the human eye.",
	domain.CameraZoomWide:      "A wide-angle lens effect, capturing a broad field of view with some perspective distortion.",
	domain.CameraZoomSuperWide: "An ultra-wide or fisheye lens effect, creating a vast, distorted perspective for a dramatic, immersive feel.",
}

var lightingDescriptions = map[domain.Lighting]string{
	domain.LightingCinematic:  "Classic three-point cinematic lighting with a key light, fill light, and backlight to create depth and dimension.",
	domain.LightingFilmNoir:   "High-contrast Film Noir lighting with distinct shadows (chiaroscuro) for a dramatic and stylized mood.",
	domain.LightingNatural:    "Soft, diffused natural light, as if from a window or an overcast day, creating a realistic and gentle feel.",
	domain.LightingMorning:    "Crisp, cool morning light with long shadows, evoking a sense of new beginnings or quiet solitude.",
	domain.LightingDaylight:   "Bright midday sun creating clear highlights and shadows, perfect for vibrant or energetic scenes.",
	domain.LightingGoldenHour: "Warm, magical Golden Hour lighting during sunset, casting a soft, flattering glow and creating a romantic or nostalgic atmosphere.",
	domain.LightingBlueHour:   "Ethereal Blue Hour lighting, occurring just before sunrise or after sunset, with a cool, serene, and moody blue tone.",
	domain.LightingNight:      "A cinematic night scene, lit by practical lights like street lamps or moonlight, with deep blacks and pockets of illumination.",
	domain.LightingHighKey:    "Bright, optimistic high-key lighting with minimal shadows, often used in comedies or lighthearted settings.",
	domain.LightingLowKey:     "Dramatic low-key lighting with pronounced shadows, creating atmosphere, mystery, or intimacy.",
	domain.LightingHorrorDim:  "Atmospheric, dim lighting, using selective light sources (like a flashlight) to build suspense and focus attention.",
	domain.LightingNeon:       "Vibrant neon and holographic lights of a futuristic city, creating a high-tech and imaginative atmosphere.",
	domain.LightingCandle:     "Warm, flickering candlelight or firelight, creating an intimate, historic, or classic atmosphere with soft shadows.",
	domain.LightingFlashlight: "A dramatic, focused beam from a flashlight, cutting through darkness to highlight a subject or create focus.",
}

var photoStyleDescriptions = map[domain.PhotoStyle]string{
	domain.PhotoStylePhotoreal:   "Achieve absolute photorealism. The final image should look like a photograph taken with a high-end DSLR camera. Focus on realistic skin textures, lighting, and materials.",
	domain.PhotoStyleHyperreal:   "Push beyond standard photography into hyper-realism. Every detail, from skin pores to fabric threads, must be rendered with extreme, microscopic clarity and precision.",
	domain.PhotoStylePortrait:    "A cinematic portrait style with shallow depth of field (bokeh), dramatic lighting, and a focus on the character's emotion, while maintaining photographic realism.",
	domain.PhotoStylePainting:    "A beautiful digital painting style, with visible brushstrokes and an artistic, illustrative quality.",
	domain.PhotoStyleConceptArt:  "The style of professional concept art, focusing on world-building, atmosphere, and visual storytelling for films or games.",
	domain.PhotoStyleDocumentary: "A candid, in-the-moment documentary style, suggesting an authentic, unfiltered snapshot of reality, with naturalistic lighting and film grain.",
	domain.PhotoStyleFantasy:     "An ethereal fantasy style with soft, glowing light, magical elements, and a dreamlike, otherworldly feel.",
	domain.PhotoStyleRetroFilm:   "The nostalgic look of an 80s retro film, with characteristic grain, lens flares, and a warm, analog color palette.",
	domain.PhotoStyleAnimeVisual: "The polished, dynamic style of an anime key visual, with sharp lines, vibrant colors, and dramatic composition.",
}

var colorToneDescriptions = map[domain.ColorTone]string{
	domain.ColorToneVibrant:      "Apply a vibrant color grade with rich, saturated colors to make the scene feel energetic and vivid.",
	domain.ColorToneMuted:        "Use a muted, desaturated color palette to create a gritty, somber, or serious atmosphere.",
	domain.ColorToneWarm:         "Grade the image with warm, golden tones (like sepia or orange/teal) to evoke a sense of nostalgia, memory, or comfort.",
	domain.ColorToneCool:         "Implement a cool color grade using blues, cyans, and greens to create a moody, mysterious, or futuristic feeling.",
	domain.ColorToneBlackWhite:   "Render the image in high-contrast black and white for a classic, dramatic, and timeless look.",
	domain.ColorToneHighContrast: "Create a punchy, high-contrast look with deep blacks and bright highlights for a bold and dramatic visual style.",
}

// aspectRatioExamples annotates every ratio with an example resolution.
// There is no sentinel: the table covers the whole domain.
var aspectRatioExamples = map[domain.AspectRatio]string{
	domain.AspectRatioWide:     "a widescreen format (e.g., 1920x1080)",
	domain.AspectRatioSquare:   "a square format (e.g., 1080x1080)",
	domain.AspectRatioVertical: "a vertical format (e.g., 1080x1920)",
	domain.AspectRatioStandard: "a standard format (e.g., 1024x768)",
	domain.AspectRatioPortrait: "a vertical portrait format (e.g., 768x1024)",
}

// Compact keyword tables drive the comma-separated prompt used on the
// text-to-image batch path.

var photoStyleKeywords = map[domain.PhotoStyle]string{
	domain.PhotoStylePhotoreal:   "photorealistic photograph, high-end DSLR camera photo",
	domain.PhotoStyleHyperreal:   "hyper-realistic, extreme detail, 8k",
	domain.PhotoStylePortrait:    "cinematic portrait, shallow depth of field, bokeh, dramatic lighting",
	domain.PhotoStylePainting:    "digital painting, illustrative, detailed brushstrokes",
	domain.PhotoStyleConceptArt:  "concept art, atmospheric, world-building style",
	domain.PhotoStyleDocumentary: "gritty documentary photo, candid, naturalistic lighting, film grain",
	domain.PhotoStyleFantasy:     "ethereal fantasy, soft glowing light, magical, dreamlike",
	domain.PhotoStyleRetroFilm:   "80s retro film photo, analog color palette, lens flares, film grain",
	domain.PhotoStyleAnimeVisual: "anime key visual style, vibrant colors, sharp lines, dynamic composition",
}

var colorToneKeywords = map[domain.ColorTone]string{
	domain.ColorToneVibrant:      "vibrant, saturated colors",
	domain.ColorToneMuted:        "muted, desaturated color palette",
	domain.ColorToneWarm:         "warm golden tones, nostalgic color grading",
	domain.ColorToneCool:         "cool blue tones, moody color grading",
	domain.ColorToneBlackWhite:   "black and white, monochrome",
	domain.ColorToneHighContrast: "high contrast, punchy colors",
}

// DescribeShotType returns the long-form clause for a shot type, or "" for
// the sentinel. The remaining Describe functions follow the same contract.
func DescribeShotType(s domain.ShotType) string       { return shotTypeDescriptions[s] }
func DescribeCameraAngle(c domain.CameraAngle) string { return cameraAngleDescriptions[c] }
func DescribeCameraZoom(c domain.CameraZoom) string   { return cameraZoomDescriptions[c] }
func DescribeLighting(l domain.Lighting) string       { return lightingDescriptions[l] }
func DescribePhotoStyle(p domain.PhotoStyle) string   { return photoStyleDescriptions[p] }
func DescribeColorTone(c domain.ColorTone) string     { return colorToneDescriptions[c] }

// AspectRatioExample returns the example-resolution annotation for a ratio.
func AspectRatioExample(a domain.AspectRatio) string { return aspectRatioExamples[a] }

// PhotoStyleKeywords and ColorToneKeywords return the compact keyword
// clauses; the sentinel is simply omitted (empty string).
func PhotoStyleKeywords(p domain.PhotoStyle) string { return photoStyleKeywords[p] }
func ColorToneKeywords(c domain.ColorTone) string   { return colorToneKeywords[c] }
