package persona

import (
	"strings"
)

const (
	// IdentityClause is always the opening line of a composed prompt.
	IdentityClause = "Using the provided image as the primary reference, preserve the person’s facial features, skin tone, body structure, and identity with 100% accuracy."

	// DistortionClause is always the closing line of a composed prompt.
	DistortionClause = "Strictly do not alter facial identity or exaggerate features. No distortion. Preserve all unique facial characteristics of the person in the original photo including eye shape, nose structure, and mouth proportions."
)

var outfitDescriptions = map[Outfit]string{
	OutfitSuit:     "a high-end, perfectly tailored charcoal or navy business suit with a crisp white professional shirt",
	OutfitDress:    "a sophisticated, structured professional power dress in a solid elegant tone with a modern silhouette",
	OutfitCasual:   "a smart-casual modern blazer over a premium silk or knit top, looking contemporary and approachable",
	OutfitTee:      "a premium well-fitted minimalist high-quality t-shirt and clean dark-wash jeans, creating a polished 'tech-creative' casual look",
	OutfitCoat:     "a formal, high-end tailored executive wool coat in a neutral tone, layered over professional attire",
	OutfitKnitwear: "a premium, high-quality cashmere or fine-knit turtleneck, looking intelligent, soft, and approachable",
	OutfitLeather:  "a sleek, modern, high-quality professional leather jacket, projecting a creative and bold modern leadership style",
	OutfitDefault:  "high-end tailored blazer or structured professional wear",
}

var hairstyleDescriptions = map[Hairstyle]string{
	HairstyleUpdo:     "a polished, elegant professional updo, looking modern and clean",
	HairstyleWaves:    "soft, loose professional waves with a healthy editorial sheen and natural flow",
	HairstyleBob:      "a sleek, sharp professional bob with minimalist clean lines",
	HairstyleNatural:  "beautifully styled natural hair texture with professional definition and shine",
	HairstyleMessyBun: "a chic, effortless but professional messy bun, looking soft, voluminous, and modern with a few loose tendrils",
	HairstyleBraid:    "a sophisticated, loose side braid or intricate crown braid, looking elegant, feminine, and professionally styled",
	HairstyleDefault:  "a polished, professional hairstyle that complements the face",
}

var backgroundDescriptions = map[Background]string{
	BackgroundBerlin: "Set in Berlin with clean urban lines, modern glass architecture, and minimalist European design.",
	BackgroundTokyo:  "Set in Tokyo with a breathtaking view of the Shinjuku skyline, featuring modern skyscrapers and a high-tech global urban atmosphere.",
	BackgroundNY:     "Set in the New York Financial District, featuring classic granite architecture and the iconic energy of Wall Street with a shallow depth of field.",
	BackgroundParis:  "Set on a chic Parisian cafe terrace with elegant classic architecture and soft, warm European morning light in the background.",
	BackgroundStudio: "Set in a high-end professional photography studio with a clean, solid minimalist backdrop and perfect professional softbox lighting.",
}

var cameraAngleDescriptions = map[CameraAngle]string{
	CameraEyeLevel:     "captured at eye-level, direct and engaging perspective",
	CameraLowAngle:     "captured from a slightly lower angle to project confidence and subtle authority",
	CameraHighAngle:    "captured from a slightly higher angle for a friendly and approachable look",
	CameraThreeQuarter: "three-quarter view perspective for a dynamic and professional profile",
	CameraDefault:      "captured at eye-level",
}

var colorPaletteDescriptions = map[ColorPalette]string{
	PaletteMonochromatic: "a minimalist monochromatic palette focusing on subtle tonal shifts for a high-fashion, cohesive professional aesthetic",
	PaletteAnalogous:     "a balanced analogous palette using closely related professional hues for a smooth, sophisticated visual flow",
	PaletteComplementary: "a bold complementary palette utilizing sophisticated contrasting accents to make the subject pop against the environment",
	PaletteDefault:       "a professional and balanced color palette",
}

var expressionDescriptions = map[Expression]string{
	ExpressionNatural: "a natural, calm, and neutral professional facial expression",
	ExpressionSmile:   "a warm, genuine, and approachable smile with a friendly professional spark in the eyes",
	ExpressionSerious: "a serious, focused, and analytical expression, projecting determination and deep expertise",
	ExpressionSmirk:   "a subtle, confident smirk, projecting intelligence, wit, and self-assured leadership",
	ExpressionDefault: "a polished, natural professional expression",
}

// Compose builds the transformation prompt. It never fails: a value missing
// from its table resolves to that axis's default phrase (Berlin for background).
func Compose(outfit Outfit, hairstyle Hairstyle, background Background, cameraAngle CameraAngle, colorPalette ColorPalette, expression Expression) string {
	outfitDesc := lookup(outfitDescriptions, outfit, OutfitDefault)
	hairDesc := lookup(hairstyleDescriptions, hairstyle, HairstyleDefault)
	bgDesc := lookup(backgroundDescriptions, background, BackgroundBerlin)
	angleDesc := lookup(cameraAngleDescriptions, cameraAngle, CameraDefault)
	colorDesc := lookup(colorPaletteDescriptions, colorPalette, PaletteDefault)
	exprDesc := lookup(expressionDescriptions, expression, ExpressionDefault)

	var b strings.Builder
	b.Grow(2048)

	b.WriteString(IdentityClause + "\n\n")
	b.WriteString("Transform the image into a polished, high-end professional portrait with a confident, globally relevant presence.\n\n")

	writeField(&b, "Facial Presence", "The subject must have "+exprDesc+". Maintain absolute likeness to the original face.")
	writeField(&b, "Overall Aesthetic", colorDesc+".")
	writeField(&b, "Style", "modern, intelligent, calm authority, high-fidelity professional render.")
	writeField(&b, "Outfit", outfitDesc+" suitable for an international professional context.")
	writeField(&b, "Hairstyle", hairDesc+", projecting a sophisticated and polished energy with feminine style.")
	writeField(&b, "Lighting", "natural, soft, cinematic daylight or professional studio lighting depending on the location, with clean contrast and editorial quality.")
	writeField(&b, "Image quality", "ultra-realistic, 8k resolution, editorial-grade photography.")
	writeField(&b, "Camera", angleDesc+", shallow depth of field, sharp focus on subject, subtle professional background blur (bokeh).")
	writeField(&b, "Background", bgDesc)
	writeField(&b, "Mood", "confident, thoughtful, globally connected, trustworthy, and analytical.")

	b.WriteString("\n" + DistortionClause)

	return b.String()
}

// Describe returns the resolved phrase for every axis of cfg, keyed by axis name.
func Describe(cfg Config) map[string]string {
	return map[string]string{
		AxisOutfit:       lookup(outfitDescriptions, cfg.Outfit, OutfitDefault),
		AxisHairstyle:    lookup(hairstyleDescriptions, cfg.Hairstyle, HairstyleDefault),
		AxisBackground:   lookup(backgroundDescriptions, cfg.Background, BackgroundBerlin),
		AxisCameraAngle:  lookup(cameraAngleDescriptions, cfg.CameraAngle, CameraDefault),
		AxisColorPalette: lookup(colorPaletteDescriptions, cfg.ColorPalette, PaletteDefault),
		AxisExpression:   lookup(expressionDescriptions, cfg.Expression, ExpressionDefault),
	}
}

func lookup[K ~string](table map[K]string, key K, fallback K) string {
	if desc, ok := table[key]; ok {
		return desc
	}
	return table[fallback]
}

func parseKey[K ~string](table map[K]string, value string) (K, bool) {
	key := K(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := table[key]; !ok {
		return "", false
	}
	return key, true
}

func writeField(b *strings.Builder, title, text string) {
	b.WriteString(title + ": " + text + "\n")
}
