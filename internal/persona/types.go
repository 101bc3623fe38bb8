package persona

type Outfit string

const (
	OutfitSuit     Outfit = "suit"
	OutfitDress    Outfit = "dress"
	OutfitCasual   Outfit = "casual"
	OutfitTee      Outfit = "tee"
	OutfitCoat     Outfit = "coat"
	OutfitKnitwear Outfit = "knitwear"
	OutfitLeather  Outfit = "leather"
	OutfitDefault  Outfit = "default"
)

type Hairstyle string

const (
	HairstyleUpdo     Hairstyle = "updo"
	HairstyleWaves    Hairstyle = "waves"
	HairstyleBob      Hairstyle = "bob"
	HairstyleNatural  Hairstyle = "natural"
	HairstyleMessyBun Hairstyle = "messy_bun"
	HairstyleBraid    Hairstyle = "braid"
	HairstyleDefault  Hairstyle = "default"
)

// Background has no "default" entry; unknown values resolve to Berlin.
type Background string

const (
	BackgroundBerlin Background = "berlin"
	BackgroundTokyo  Background = "tokyo"
	BackgroundNY     Background = "ny"
	BackgroundParis  Background = "paris"
	BackgroundStudio Background = "studio"
)

type CameraAngle string

const (
	CameraEyeLevel     CameraAngle = "eye_level"
	CameraLowAngle     CameraAngle = "low_angle"
	CameraHighAngle    CameraAngle = "high_angle"
	CameraThreeQuarter CameraAngle = "three_quarter"
	CameraDefault      CameraAngle = "default"
)

type ColorPalette string

const (
	PaletteMonochromatic ColorPalette = "monochromatic"
	PaletteAnalogous     ColorPalette = "analogous"
	PaletteComplementary ColorPalette = "complementary"
	PaletteDefault       ColorPalette = "default"
)

type Expression string

const (
	ExpressionNatural Expression = "natural"
	ExpressionSmile   Expression = "smile"
	ExpressionSerious Expression = "serious"
	ExpressionSmirk   Expression = "smirk"
	ExpressionDefault Expression = "default"
)

// Config is one full set of selections, one value per axis.
type Config struct {
	Outfit       Outfit       `json:"outfit"`
	Hairstyle    Hairstyle    `json:"hairstyle"`
	Background   Background   `json:"background"`
	CameraAngle  CameraAngle  `json:"cameraAngle"`
	ColorPalette ColorPalette `json:"colorPalette"`
	Expression   Expression   `json:"expression"`
}

func DefaultConfig() Config {
	return Config{
		Outfit:       OutfitSuit,
		Hairstyle:    HairstyleWaves,
		Background:   BackgroundBerlin,
		CameraAngle:  CameraEyeLevel,
		ColorPalette: PaletteDefault,
		Expression:   ExpressionNatural,
	}
}

// Prompt composes the transformation prompt for the current selections.
func (c Config) Prompt() string {
	return Compose(c.Outfit, c.Hairstyle, c.Background, c.CameraAngle, c.ColorPalette, c.Expression)
}

// Valid reports whether every axis holds a value from its enumeration.
func (c Config) Valid() bool {
	_, okOutfit := outfitDescriptions[c.Outfit]
	_, okHair := hairstyleDescriptions[c.Hairstyle]
	_, okBg := backgroundDescriptions[c.Background]
	_, okCamera := cameraAngleDescriptions[c.CameraAngle]
	_, okPalette := colorPaletteDescriptions[c.ColorPalette]
	_, okExpr := expressionDescriptions[c.Expression]
	return okOutfit && okHair && okBg && okCamera && okPalette && okExpr
}

func ParseOutfit(value string) (Outfit, bool) {
	return parseKey(outfitDescriptions, value)
}

func ParseHairstyle(value string) (Hairstyle, bool) {
	return parseKey(hairstyleDescriptions, value)
}

func ParseBackground(value string) (Background, bool) {
	return parseKey(backgroundDescriptions, value)
}

func ParseCameraAngle(value string) (CameraAngle, bool) {
	return parseKey(cameraAngleDescriptions, value)
}

func ParseColorPalette(value string) (ColorPalette, bool) {
	return parseKey(colorPaletteDescriptions, value)
}

func ParseExpression(value string) (Expression, bool) {
	return parseKey(expressionDescriptions, value)
}
