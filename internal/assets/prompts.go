package assets

import (
	"fmt"

	"brand-studio-api/internal/campaign"
)

const copywriterSystem = `You are a social media copywriter. You answer with raw JSON only: no markdown, no commentary.`

func socialCopyPrompt(camp campaign.Campaign, brand string) string {
	return fmt.Sprintf(`Write an Instagram post for the brand "%s".

Campaign: %s
Description: %s
Key message: %s
Audience: %s

Return a JSON object with two string fields:
"caption" (an engaging caption of 2-4 sentences) and
"hashtags" (8-12 space-separated hashtags, each starting with #).`,
		brand, camp.Title, camp.Description, camp.KeyMessage, camp.TargetAudience)
}

func socialImagePrompt(camp campaign.Campaign, brand string) string {
	return fmt.Sprintf("Hero visual for the %q campaign by %s: %s. Key message: %s.",
		camp.Title, brand, camp.Description, camp.KeyMessage)
}

func carouselPlanPrompt(camp campaign.Campaign, theme, brand string) string {
	visual := theme
	if visual == "" {
		visual = "clean, modern, on-brand"
	}
	return fmt.Sprintf(`Plan a 5-slide Instagram carousel for the brand "%s".

Campaign: %s
Description: %s
Objective: %s
Key message: %s
Audience: %s
Visual theme: %s

Return a JSON object with:
"slides": an array of exactly 5 objects, each with "description" (a detailed
image description for that slide, matching the visual theme) and "caption"
(an overlay caption of at most 50 characters),
"caption": a main post caption of 200-350 words,
"hashtags": 8-12 space-separated hashtags.`,
		brand, camp.Title, camp.Description, camp.Objective, camp.KeyMessage, camp.TargetAudience, visual)
}

func videoPrompt(camp campaign.Campaign, brand string) string {
	return fmt.Sprintf("A short, energetic promotional video for %s. Campaign: %s. %s Key message: %s.",
		brand, camp.Title, camp.Description, camp.KeyMessage)
}
