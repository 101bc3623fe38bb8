package persona

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	AxisOutfit       = "outfit"
	AxisHairstyle    = "hairstyle"
	AxisBackground   = "background"
	AxisCameraAngle  = "cameraAngle"
	AxisColorPalette = "colorPalette"
	AxisExpression   = "expression"
)

// Axes lists the selection axes in menu order.
func Axes() []string {
	return []string{AxisExpression, AxisOutfit, AxisHairstyle, AxisBackground, AxisCameraAngle, AxisColorPalette}
}

type NamedOption struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

type AxisOptions struct {
	Axis    string        `json:"axis"`
	Title   string        `json:"title"`
	Default string        `json:"default"`
	Options []NamedOption `json:"options"`
}

var axisTitles = map[string]string{
	AxisExpression:   "Facial Presence",
	AxisOutfit:       "Global Attire",
	AxisHairstyle:    "Hairstyle",
	AxisBackground:   "Location & Atmosphere",
	AxisCameraAngle:  "Camera Logic",
	AxisColorPalette: "Color Theory",
}

var optionLabels = map[string]string{
	"expression:natural":         "Natural",
	"expression:smile":           "Warm Smile",
	"expression:serious":         "Serious / Focus",
	"expression:smirk":           "Confident Smirk",
	"outfit:suit":                "Business Suit",
	"outfit:dress":               "Power Dress",
	"outfit:coat":                "Executive Coat",
	"outfit:knitwear":            "Premium Knit",
	"outfit:leather":             "Leather Studio",
	"outfit:casual":              "Smart Casual",
	"outfit:tee":                 "Minimalist Tee",
	"background:berlin":          "Berlin District",
	"background:tokyo":           "Tokyo View",
	"background:ny":              "NY Financial",
	"background:paris":           "Parisian Cafe",
	"background:studio":          "Blank Studio",
	"cameraAngle:eye_level":      "Eye-Level",
	"cameraAngle:three_quarter":  "Dynamic 3/4",
	"colorPalette:default":       "Natural",
	"colorPalette:monochromatic": "Monochrome",
	"colorPalette:analogous":     "Analogous",
	"colorPalette:complementary": "Complementary",
}

// Catalog returns every axis with its options in display order.
func Catalog() []AxisOptions {
	defaults := DefaultConfig()
	return []AxisOptions{
		axisOptions(AxisExpression, string(defaults.Expression), expressionDescriptions,
			ExpressionNatural, ExpressionSmile, ExpressionSerious, ExpressionSmirk, ExpressionDefault),
		axisOptions(AxisOutfit, string(defaults.Outfit), outfitDescriptions,
			OutfitSuit, OutfitDress, OutfitCoat, OutfitKnitwear, OutfitLeather, OutfitCasual, OutfitTee, OutfitDefault),
		axisOptions(AxisHairstyle, string(defaults.Hairstyle), hairstyleDescriptions,
			HairstyleWaves, HairstyleUpdo, HairstyleBob, HairstyleNatural, HairstyleMessyBun, HairstyleBraid, HairstyleDefault),
		axisOptions(AxisBackground, string(defaults.Background), backgroundDescriptions,
			BackgroundBerlin, BackgroundTokyo, BackgroundNY, BackgroundParis, BackgroundStudio),
		axisOptions(AxisCameraAngle, string(defaults.CameraAngle), cameraAngleDescriptions,
			CameraEyeLevel, CameraThreeQuarter, CameraLowAngle, CameraHighAngle, CameraDefault),
		axisOptions(AxisColorPalette, string(defaults.ColorPalette), colorPaletteDescriptions,
			PaletteDefault, PaletteMonochromatic, PaletteAnalogous, PaletteComplementary),
	}
}

// OptionsFor returns the catalog entry for one axis.
func OptionsFor(axis string) (AxisOptions, bool) {
	for _, a := range Catalog() {
		if a.Axis == axis {
			return a, true
		}
	}
	return AxisOptions{}, false
}

// Label returns the display label of an option.
func Label(axis, key string) string {
	if label, ok := optionLabels[axis+":"+key]; ok {
		return label
	}
	if key == "default" {
		return "Default"
	}
	return titleCase(strings.ReplaceAll(key, "_", " "))
}

// AxisTitle returns the display title of an axis.
func AxisTitle(axis string) string {
	if title, ok := axisTitles[axis]; ok {
		return title
	}
	return titleCase(axis)
}

// Get returns the value of one axis in cfg.
func (c Config) Get(axis string) string {
	switch axis {
	case AxisOutfit:
		return string(c.Outfit)
	case AxisHairstyle:
		return string(c.Hairstyle)
	case AxisBackground:
		return string(c.Background)
	case AxisCameraAngle:
		return string(c.CameraAngle)
	case AxisColorPalette:
		return string(c.ColorPalette)
	case AxisExpression:
		return string(c.Expression)
	}
	return ""
}

// Set assigns one axis from its string form. Unknown axes or values are
// rejected and leave c unchanged.
func (c *Config) Set(axis, value string) bool {
	switch axis {
	case AxisOutfit:
		v, ok := ParseOutfit(value)
		if ok {
			c.Outfit = v
		}
		return ok
	case AxisHairstyle:
		v, ok := ParseHairstyle(value)
		if ok {
			c.Hairstyle = v
		}
		return ok
	case AxisBackground:
		v, ok := ParseBackground(value)
		if ok {
			c.Background = v
		}
		return ok
	case AxisCameraAngle:
		v, ok := ParseCameraAngle(value)
		if ok {
			c.CameraAngle = v
		}
		return ok
	case AxisColorPalette:
		v, ok := ParseColorPalette(value)
		if ok {
			c.ColorPalette = v
		}
		return ok
	case AxisExpression:
		v, ok := ParseExpression(value)
		if ok {
			c.Expression = v
		}
		return ok
	}
	return false
}

func axisOptions[K ~string](axis, def string, table map[K]string, order ...K) AxisOptions {
	out := AxisOptions{
		Axis:    axis,
		Title:   AxisTitle(axis),
		Default: def,
		Options: make([]NamedOption, 0, len(order)),
	}
	for _, key := range order {
		desc, ok := table[key]
		if !ok {
			continue
		}
		out.Options = append(out.Options, NamedOption{
			Key:         string(key),
			Label:       Label(axis, string(key)),
			Description: desc,
		})
	}
	return out
}

// Casers carry state, so one is built per call.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
