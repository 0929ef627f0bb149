package domain

// Each cinematographic control is a typed string drawn from a fixed domain.
// The "None" member is the unspecified sentinel meaning "let the model
// decide"; aspect ratio has no sentinel and always carries a concrete value.

type ShotType string

const (
	ShotTypeNone         ShotType = "None"
	ShotTypeExtremeClose ShotType = "Extreme Close Up"
	ShotTypeCloseUp      ShotType = "Close Up"
	ShotTypeMedium       ShotType = "Medium Shot"
	ShotTypeFull         ShotType = "Full Shot"
	ShotTypeLong         ShotType = "Long Shot"
	ShotTypeEstablishing ShotType = "Establishing Shot"
)

type CameraAngle string

const (
	CameraAngleNone     CameraAngle = "None"
	CameraAngleEyeLevel CameraAngle = "Eye Level"
	CameraAngleHigh     CameraAngle = "High Angle"
	CameraAngleLow      CameraAngle = "Low Angle"
	CameraAngleDutch    CameraAngle = "Dutch Angle"
	CameraAngleBirdsEye CameraAngle = "Bird's Eye View"
)

type CameraZoom string

const (
	CameraZoomNone      CameraZoom = "None"
	CameraZoomCloseUp   CameraZoom = "Close Up"
	CameraZoomMedium    CameraZoom = "Medium"
	CameraZoomWide      CameraZoom = "Wide Angle"
	CameraZoomSuperWide CameraZoom = "Super Wide Angle"
)

type Lighting string

const (
	LightingNone        Lighting = "None"
	LightingCinematic   Lighting = "Cinematic"
	LightingFilmNoir    Lighting = "Film Noir"
	LightingNatural     Lighting = "Natural Light"
	LightingMorning     Lighting = "Morning Natural Light"
	LightingDaylight    Lighting = "Bright Daylight"
	LightingGoldenHour  Lighting = "Sunset / Golden Hour"
	LightingBlueHour    Lighting = "Blue Hour"
	LightingNight       Lighting = "Night Cinematic"
	LightingHighKey     Lighting = "High Key"
	LightingLowKey      Lighting = "Low Key"
	LightingHorrorDim   Lighting = "Horror Dim Light"
	LightingNeon        Lighting = "Neon Cyberpunk"
	LightingCandle      Lighting = "Candlelight / Firelight"
	LightingFlashlight  Lighting = "Flashlight / Dramatic"
)

type PhotoStyle string

const (
	PhotoStyleNone          PhotoStyle = "None"
	PhotoStylePhotoreal     PhotoStyle = "Photorealistic"
	PhotoStyleHyperreal     PhotoStyle = "Hyper-realistic"
	PhotoStylePortrait      PhotoStyle = "Cinematic Portrait"
	PhotoStylePainting      PhotoStyle = "Digital Painting"
	PhotoStyleConceptArt    PhotoStyle = "Concept Art"
	PhotoStyleDocumentary   PhotoStyle = "Gritty Documentary"
	PhotoStyleFantasy       PhotoStyle = "Ethereal Fantasy"
	PhotoStyleRetroFilm     PhotoStyle = "80s Retro Film"
	PhotoStyleAnimeVisual   PhotoStyle = "Anime Key Visual"
)

type ColorTone string

const (
	ColorToneNone         ColorTone = "None"
	ColorToneVibrant      ColorTone = "Vibrant & Saturated"
	ColorToneMuted        ColorTone = "Muted & Desaturated"
	ColorToneWarm         ColorTone = "Warm & Nostalgic"
	ColorToneCool         ColorTone = "Cool & Moody"
	ColorToneBlackWhite   ColorTone = "Black & White"
	ColorToneHighContrast ColorTone = "High Contrast"
)

type AspectRatio string

const (
	AspectRatioWide     AspectRatio = "16:9"
	AspectRatioSquare   AspectRatio = "1:1"
	AspectRatioVertical AspectRatio = "9:16"
	AspectRatioStandard AspectRatio = "4:3"
	AspectRatioPortrait AspectRatio = "3:4"
)

var (
	shotTypes = map[ShotType]struct{}{
		ShotTypeNone: {}, ShotTypeExtremeClose: {}, ShotTypeCloseUp: {},
		ShotTypeMedium: {}, ShotTypeFull: {}, ShotTypeLong: {}, ShotTypeEstablishing: {},
	}
	cameraAngles = map[CameraAngle]struct{}{
		CameraAngleNone: {}, CameraAngleEyeLevel: {}, CameraAngleHigh: {},
		CameraAngleLow: {}, CameraAngleDutch: {}, CameraAngleBirdsEye: {},
	}
	cameraZooms = map[CameraZoom]struct{}{
		CameraZoomNone: {}, CameraZoomCloseUp: {}, CameraZoomMedium: {},
		CameraZoomWide: {}, CameraZoomSuperWide: {},
	}
	lightings = map[Lighting]struct{}{
		LightingNone: {}, LightingCinematic: {}, LightingFilmNoir: {},
		LightingNatural: {}, LightingMorning: {}, LightingDaylight: {},
		LightingGoldenHour: {}, LightingBlueHour: {}, LightingNight: {},
		LightingHighKey: {}, LightingLowKey: {}, LightingHorrorDim: {},
		LightingNeon: {}, LightingCandle: {}, LightingFlashlight: {},
	}
	photoStyles = map[PhotoStyle]struct{}{
		PhotoStyleNone: {}, PhotoStylePhotoreal: {}, PhotoStyleHyperreal: {},
		PhotoStylePortrait: {}, PhotoStylePainting: {}, PhotoStyleConceptArt: {},
		PhotoStyleDocumentary: {}, PhotoStyleFantasy: {}, PhotoStyleRetroFilm: {},
		PhotoStyleAnimeVisual: {},
	}
	colorTones = map[ColorTone]struct{}{
		ColorToneNone: {}, ColorToneVibrant: {}, ColorToneMuted: {},
		ColorToneWarm: {}, ColorToneCool: {}, ColorToneBlackWhite: {},
		ColorToneHighContrast: {},
	}
	aspectRatios = map[AspectRatio]struct{}{
		AspectRatioWide: {}, AspectRatioSquare: {}, AspectRatioVertical: {},
		AspectRatioStandard: {}, AspectRatioPortrait: {},
	}
)

func (s ShotType) Valid() bool    { _, ok := shotTypes[s]; return ok }
func (c CameraAngle) Valid() bool { _, ok := cameraAngles[c]; return ok }
func (c CameraZoom) Valid() bool  { _, ok := cameraZooms[c]; return ok }
func (l Lighting) Valid() bool    { _, ok := lightings[l]; return ok }
func (p PhotoStyle) Valid() bool  { _, ok := photoStyles[p]; return ok }
func (c ColorTone) Valid() bool   { _, ok := colorTones[c]; return ok }
func (a AspectRatio) Valid() bool { _, ok := aspectRatios[a]; return ok }

// CinematicControls is the set of enumerated cinematographic parameters
// attached to every generation.
type CinematicControls struct {
	ShotType       ShotType    `json:"shot_type"`
	CameraAngle    CameraAngle `json:"camera_angle"`
	CameraZoom     CameraZoom  `json:"camera_zoom"`
	Lighting       Lighting    `json:"lighting"`
	PhotoStyle     PhotoStyle  `json:"photo_style"`
	ColorTone      ColorTone   `json:"color_tone"`
	AspectRatio    AspectRatio `json:"aspect_ratio"`
	NumberOfImages int         `json:"number_of_images"`
}

// DefaultControls mirrors the control panel's initial state.
func DefaultControls() CinematicControls {
	return CinematicControls{
		ShotType:       ShotTypeNone,
		CameraAngle:    CameraAngleNone,
		CameraZoom:     CameraZoomNone,
		Lighting:       LightingCinematic,
		PhotoStyle:     PhotoStylePhotoreal,
		ColorTone:      ColorToneNone,
		AspectRatio:    AspectRatioWide,
		NumberOfImages: 1,
	}
}

// Normalize coerces out-of-domain enum values to their sentinel (16:9 for
// the aspect ratio, which has none) and clamps NumberOfImages into
// [1, maxImages].
func (c *CinematicControls) Normalize(maxImages int) {
	if !c.ShotType.Valid() {
		c.ShotType = ShotTypeNone
	}
	if !c.CameraAngle.Valid() {
		c.CameraAngle = CameraAngleNone
	}
	if !c.CameraZoom.Valid() {
		c.CameraZoom = CameraZoomNone
	}
	if !c.Lighting.Valid() {
		c.Lighting = LightingNone
	}
	if !c.PhotoStyle.Valid() {
		c.PhotoStyle = PhotoStyleNone
	}
	if !c.ColorTone.Valid() {
		c.ColorTone = ColorToneNone
	}
	if !c.AspectRatio.Valid() {
		c.AspectRatio = AspectRatioWide
	}
	if maxImages < 1 {
		maxImages = 1
	}
	if c.NumberOfImages < 1 {
		c.NumberOfImages = 1
	}
	if c.NumberOfImages > maxImages {
		c.NumberOfImages = maxImages
	}
}
