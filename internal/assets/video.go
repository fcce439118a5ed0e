package assets

import (
	"context"
	"fmt"

	"brand-studio-api/internal/campaign"
	"brand-studio-api/internal/media"
	"brand-studio-api/internal/provider"
)

// runVideo drives the long-running video job and mirrors its progress into
// the snapshot so the HTTP layer can report status without touching the
// gateway. Completed bytes land in the media store; the snapshot carries the
// served URL.
func (o *Orchestrator) runVideo(ctx context.Context, camp campaign.Campaign, brand string, seq int) error {
	o.updateVideo(seq, func(v *VideoSnapshot) {
		*v = VideoSnapshot{State: VideoSubmitted, Status: "Submitting video job..."}
	})

	data, err := o.videos.GenerateVideo(ctx, videoPrompt(camp, brand), func(phase provider.VideoPhase, status string) {
		o.updateVideo(seq, func(v *VideoSnapshot) {
			v.Status = status
			switch phase {
			case provider.VideoPhaseSubmitting:
				v.State = VideoSubmitted
			case provider.VideoPhaseDone:
				// The state flips to complete below, once the bytes are stored.
			default:
				v.State = VideoPolling
			}
		})
	})
	if err != nil {
		o.updateVideo(seq, func(v *VideoSnapshot) {
			*v = VideoSnapshot{State: VideoFailed, Error: err.Error()}
		})
		return fmt.Errorf("video generation: %w", err)
	}
	if len(data) == 0 {
		o.updateVideo(seq, func(v *VideoSnapshot) {
			*v = VideoSnapshot{State: VideoFailed, Error: "video result is empty"}
		})
		return fmt.Errorf("video generation: empty result")
	}

	id := o.media.Put(data, "video/mp4")
	o.updateVideo(seq, func(v *VideoSnapshot) {
		*v = VideoSnapshot{State: VideoComplete, Status: "Video ready!", MediaURL: media.URL(id)}
	})

	o.logger.Info("video asset stored", "campaign", camp.ID, "media", id, "bytes", len(data))
	return nil
}
