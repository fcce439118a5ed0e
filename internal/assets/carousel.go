package assets

import (
	"context"
	"fmt"

	"brand-studio-api/internal/campaign"
	"brand-studio-api/internal/provider"
	"brand-studio-api/internal/structured"
)

const slideCount = 5

// PlanningError marks a failed carousel plan. Without a plan there is no
// partial carousel, so this is fatal to the whole asset.
type PlanningError struct {
	Err error
}

func (e *PlanningError) Error() string {
	return "carousel planning: " + e.Err.Error()
}

func (e *PlanningError) Unwrap() error {
	return e.Err
}

type carouselPlan struct {
	Slides []struct {
		Description string `json:"description"`
		Caption     string `json:"caption"`
	} `json:"slides"`
	Caption  string `json:"caption"`
	Hashtags string `json:"hashtags"`
}

// assembleCarousel runs in two phases. Phase one asks the text model for a
// five-slide plan and must succeed in full. Phase two renders one image per
// slide concurrently; a slide whose image fails keeps its caption and ships
// with an empty image, and never takes the rest of the batch down.
func (o *Orchestrator) assembleCarousel(ctx context.Context, camp campaign.Campaign, theme, brand string) (*Carousel, error) {
	raw, err := o.text.GenerateText(ctx, provider.TextRequest{
		Prompt:    carouselPlanPrompt(camp, theme, brand),
		MaxTokens: 2048,
		System:    copywriterSystem,
	})
	if err != nil {
		return nil, &PlanningError{Err: err}
	}

	var plan carouselPlan
	if err := structured.Decode(raw, &plan); err != nil {
		return nil, &PlanningError{Err: err}
	}
	if len(plan.Slides) != slideCount {
		return nil, &PlanningError{Err: fmt.Errorf("expected %d slide plans, got %d", slideCount, len(plan.Slides))}
	}

	slides := make([]Slide, slideCount)
	for i := range slides {
		slides[i].Caption = plan.Slides[i].Caption
	}

	errs := settleAll(ctx, slideCount, func(ctx context.Context, i int) error {
		img, err := o.images.GenerateImage(ctx, plan.Slides[i].Description, provider.ImageOptions{
			Width:   1080,
			Height:  1350,
			UseCase: provider.UseCaseCarousel,
		})
		if err != nil {
			return err
		}
		slides[i].Image = img
		return nil
	})
	for i, err := range errs {
		if err != nil {
			o.logger.Warn("carousel slide image failed", "slide", i, "err", err)
		}
	}

	return &Carousel{
		Slides:   slides,
		Caption:  plan.Caption,
		Hashtags: plan.Hashtags,
	}, nil
}
