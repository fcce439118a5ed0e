package provider

import "strings"

type UseCase string

const (
	UseCaseLogo       UseCase = "logo"
	UseCaseMockup     UseCase = "mockup"
	UseCasePoster     UseCase = "poster"
	UseCaseSocial     UseCase = "social"
	UseCaseCarousel   UseCase = "carousel"
	UseCaseBrandAsset UseCase = "brand-asset"
	UseCaseRemix      UseCase = "remix"
	UseCaseGeneral    UseCase = "general"
)

type promptStyle struct {
	Prefix   string
	Suffix   string
	Negative string
}

// Per-use-case art direction. Pure lookup: the tag picks a template, nothing
// is inferred from the prompt itself.
var promptStyles = map[UseCase]promptStyle{
	UseCaseLogo: {
		Prefix:   "Professional vector-style logo design:",
		Suffix:   "Flat design, centered on a plain background, crisp edges, balanced negative space, suitable for scaling down to a favicon.",
		Negative: "photo, photorealistic, 3d render, busy background, gradients banding, watermark, text artifacts",
	},
	UseCaseMockup: {
		Prefix:   "Premium product mockup photograph:",
		Suffix:   "Studio lighting, shallow depth of field, realistic materials and shadows, commercial product photography quality.",
		Negative: "cartoon, illustration, deformed product, extra limbs, watermark, low resolution",
	},
	UseCasePoster: {
		Prefix:   "Bold advertising poster visual:",
		Suffix:   "Strong focal hierarchy, dramatic lighting, print-quality composition with room for headline copy.",
		Negative: "cluttered layout, illegible text, watermark, clip art, low contrast",
	},
	UseCaseSocial: {
		Prefix:   "Scroll-stopping social media visual:",
		Suffix:   "Vibrant color palette, high contrast, mobile-first composition, thumb-stopping energy.",
		Negative: "dull colors, tiny details, watermark, stock-photo feel, borders",
	},
	UseCaseCarousel: {
		Prefix:   "Cohesive carousel slide visual:",
		Suffix:   "Consistent style across a slide series, clean composition, generous margin for overlaid captions.",
		Negative: "inconsistent style, busy edges, watermark, embedded text, collage",
	},
	UseCaseBrandAsset: {
		Prefix:   "On-brand marketing asset:",
		Suffix:   "Refined, consistent brand aesthetic, studio-grade lighting, pristine finish.",
		Negative: "off-brand colors, clutter, watermark, amateur lighting",
	},
	UseCaseRemix: {
		Prefix:   "Reimagined variation of the provided image:",
		Suffix:   "Preserve the subject's identity and proportions, change only styling and setting.",
		Negative: "distorted subject, identity drift, watermark, artifacts",
	},
	UseCaseGeneral: {
		Prefix:   "",
		Suffix:   "High quality, detailed, professional finish.",
		Negative: "watermark, low quality, artifacts",
	},
}

func styleFor(useCase UseCase) promptStyle {
	if style, ok := promptStyles[useCase]; ok {
		return style
	}
	return promptStyles[UseCaseGeneral]
}

func enhancePrompt(useCase UseCase, prompt string) string {
	style := styleFor(useCase)

	parts := make([]string, 0, 3)
	if style.Prefix != "" {
		parts = append(parts, style.Prefix)
	}
	parts = append(parts, strings.TrimSpace(prompt))
	if style.Suffix != "" {
		parts = append(parts, style.Suffix)
	}
	return strings.Join(parts, " ")
}

func negativeFor(useCase UseCase, extra string) string {
	style := styleFor(useCase)
	extra = strings.TrimSpace(extra)
	if extra == "" {
		return style.Negative
	}
	if style.Negative == "" {
		return extra
	}
	return style.Negative + ", " + extra
}
