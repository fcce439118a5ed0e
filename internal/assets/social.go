package assets

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"brand-studio-api/internal/campaign"
	"brand-studio-api/internal/provider"
	"brand-studio-api/internal/structured"
)

type socialPlan struct {
	Caption  string `json:"caption"`
	Hashtags string `json:"hashtags"`
}

// generateSocial produces the copy and the visual concurrently. Either
// failure fails the whole asset: the post is atomic and is only ever replaced
// as a unit.
func (o *Orchestrator) generateSocial(ctx context.Context, camp campaign.Campaign, brand string) (*SocialPost, error) {
	var plan socialPlan
	var image string

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		raw, err := o.text.GenerateText(egCtx, provider.TextRequest{
			Prompt:    socialCopyPrompt(camp, brand),
			MaxTokens: 1024,
			System:    copywriterSystem,
		})
		if err != nil {
			return fmt.Errorf("social copy: %w", err)
		}
		if err := structured.Decode(raw, &plan); err != nil {
			return err
		}
		if plan.Caption == "" {
			return &structured.MalformedResponseError{Reason: "social plan has no caption"}
		}
		return nil
	})
	eg.Go(func() error {
		img, err := o.images.GenerateImage(egCtx, socialImagePrompt(camp, brand), provider.ImageOptions{
			Width:   1080,
			Height:  1080,
			UseCase: provider.UseCaseSocial,
		})
		if err != nil {
			return fmt.Errorf("social image: %w", err)
		}
		image = img
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return &SocialPost{
		Image:    image,
		Caption:  plan.Caption,
		Hashtags: plan.Hashtags,
	}, nil
}
