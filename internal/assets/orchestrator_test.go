package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brand-studio-api/internal/campaign"
	"brand-studio-api/internal/media"
	"brand-studio-api/internal/provider"
)

type stubText struct {
	fn func(ctx context.Context, req provider.TextRequest) (string, error)
}

func (s *stubText) GenerateText(ctx context.Context, req provider.TextRequest) (string, error) {
	return s.fn(ctx, req)
}

type stubImages struct {
	fn func(ctx context.Context, prompt string, opts provider.ImageOptions) (string, error)
}

func (s *stubImages) GenerateImage(ctx context.Context, prompt string, opts provider.ImageOptions) (string, error) {
	return s.fn(ctx, prompt, opts)
}

type stubVideos struct {
	fn func(ctx context.Context, prompt string, onStatus func(provider.VideoPhase, string)) ([]byte, error)
}

func (s *stubVideos) GenerateVideo(ctx context.Context, prompt string, onStatus func(provider.VideoPhase, string)) ([]byte, error) {
	return s.fn(ctx, prompt, onStatus)
}

func socialPlanJSON(caption string) string {
	encoded, _ := json.Marshal(map[string]string{"caption": caption, "hashtags": "#mugs #handmade"})
	return string(encoded)
}

func carouselPlanJSON(slides int) string {
	plan := map[string]any{
		"caption":  "Five mugs, five moods",
		"hashtags": "#mugs",
	}
	items := make([]map[string]string, 0, slides)
	for i := 0; i < slides; i++ {
		items = append(items, map[string]string{
			"description": fmt.Sprintf("mug scene %d", i+1),
			"caption":     fmt.Sprintf("Slide %d", i+1),
		})
	}
	plan["slides"] = items
	encoded, _ := json.Marshal(plan)
	return string(encoded)
}

func testCampaign() campaign.Campaign {
	return campaign.Campaign{
		ID:         "1700000000000-0",
		Title:      "Acme Mornings",
		Objective:  "Grow awareness",
		KeyMessage: "Mugs worth waking up for",
	}
}

func newTestOrchestrator(text *stubText, images *stubImages, videos *stubVideos) *Orchestrator {
	return NewOrchestrator(Options{
		Text:   text,
		Images: images,
		Videos: videos,
		Media:  media.NewStore(),
	})
}

func alwaysText(response string) *stubText {
	return &stubText{fn: func(context.Context, provider.TextRequest) (string, error) {
		return response, nil
	}}
}

func alwaysImage(data string) *stubImages {
	return &stubImages{fn: func(context.Context, string, provider.ImageOptions) (string, error) {
		return data, nil
	}}
}

func TestStartWithoutSelection(t *testing.T) {
	orch := newTestOrchestrator(alwaysText(""), alwaysImage(""), nil)

	err := orch.Start(context.Background(), KindSocial)
	assert.ErrorIs(t, err, ErrNoCampaignSelected)
}

func TestStartSocial(t *testing.T) {
	orch := newTestOrchestrator(alwaysText(socialPlanJSON("Morning ritual, upgraded")), alwaysImage("aW1n"), nil)
	orch.Select(testCampaign(), "Acme Co.", "earthy minimalism")

	require.NoError(t, orch.Start(context.Background(), KindSocial))

	snap := orch.Snapshot()
	require.NotNil(t, snap.Social)
	assert.Equal(t, "aW1n", snap.Social.Image)
	assert.Equal(t, "Morning ritual, upgraded", snap.Social.Caption)
	assert.Equal(t, "#mugs #handmade", snap.Social.Hashtags)
	assert.False(t, snap.Busy[KindSocial])
}

func TestStartRejectsSameKindOverlap(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	videos := &stubVideos{fn: func(ctx context.Context, _ string, _ func(provider.VideoPhase, string)) ([]byte, error) {
		close(started)
		<-release
		return []byte("mp4"), nil
	}}

	orch := newTestOrchestrator(alwaysText(socialPlanJSON("caption")), alwaysImage("aW1n"), videos)
	orch.Select(testCampaign(), "Acme Co.", "")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, orch.Start(context.Background(), KindVideo))
	}()
	<-started

	err := orch.Start(context.Background(), KindVideo)
	assert.ErrorIs(t, err, ErrGenerationInFlight)

	// A different kind is free to run while the video is in flight.
	assert.NoError(t, orch.Start(context.Background(), KindSocial))

	close(release)
	wg.Wait()
	assert.False(t, orch.Snapshot().Busy[KindVideo])
}

func TestSocialIsAtomic(t *testing.T) {
	images := &stubImages{fn: func(context.Context, string, provider.ImageOptions) (string, error) {
		return "", &provider.ProviderError{Status: 500, Message: "render failed"}
	}}
	orch := newTestOrchestrator(alwaysText(socialPlanJSON("caption")), images, nil)
	orch.Select(testCampaign(), "Acme Co.", "")

	err := orch.Start(context.Background(), KindSocial)
	require.Error(t, err)
	assert.Nil(t, orch.Snapshot().Social, "a failed post must not be stored partially")
}

func TestCarouselSurvivesSlideImageFailure(t *testing.T) {
	images := &stubImages{fn: func(_ context.Context, prompt string, _ provider.ImageOptions) (string, error) {
		if prompt == "mug scene 3" {
			return "", &provider.ProviderError{Status: 500, Message: "render failed"}
		}
		return "aW1n", nil
	}}
	orch := newTestOrchestrator(alwaysText(carouselPlanJSON(5)), images, nil)
	orch.Select(testCampaign(), "Acme Co.", "earthy minimalism")

	require.NoError(t, orch.Start(context.Background(), KindCarousel))

	snap := orch.Snapshot()
	require.NotNil(t, snap.Carousel)
	require.Len(t, snap.Carousel.Slides, 5)
	for i, slide := range snap.Carousel.Slides {
		assert.Equal(t, fmt.Sprintf("Slide %d", i+1), slide.Caption)
		if i == 2 {
			assert.Empty(t, slide.Image, "failed slide ships without an image")
		} else {
			assert.Equal(t, "aW1n", slide.Image)
		}
	}
	assert.Equal(t, "Five mugs, five moods", snap.Carousel.Caption)
}

func TestCarouselPlanFailureIsFatal(t *testing.T) {
	orch := newTestOrchestrator(alwaysText(carouselPlanJSON(3)), alwaysImage("aW1n"), nil)
	orch.Select(testCampaign(), "Acme Co.", "")

	err := orch.Start(context.Background(), KindCarousel)

	var planErr *PlanningError
	require.True(t, errors.As(err, &planErr), "got %v", err)
	assert.Nil(t, orch.Snapshot().Carousel)
}

func TestRegenerateReplacesOnlyOneSlot(t *testing.T) {
	captions := []string{"first take", "second take"}
	calls := 0
	text := &stubText{fn: func(_ context.Context, req provider.TextRequest) (string, error) {
		if req.MaxTokens == 2048 {
			return carouselPlanJSON(5), nil
		}
		caption := captions[calls]
		calls++
		return socialPlanJSON(caption), nil
	}}
	orch := newTestOrchestrator(text, alwaysImage("aW1n"), nil)
	orch.Select(testCampaign(), "Acme Co.", "")

	require.NoError(t, orch.Start(context.Background(), KindSocial))
	require.NoError(t, orch.Start(context.Background(), KindCarousel))
	require.NoError(t, orch.Regenerate(context.Background(), KindSocial))

	snap := orch.Snapshot()
	require.NotNil(t, snap.Social)
	assert.Equal(t, "second take", snap.Social.Caption)
	require.NotNil(t, snap.Carousel, "regenerating the post must leave the carousel alone")
	assert.Len(t, snap.Carousel.Slides, 5)
}

func TestSelectDiscardsStaleResult(t *testing.T) {
	release := make(chan struct{})
	videos := &stubVideos{fn: func(context.Context, string, func(provider.VideoPhase, string)) ([]byte, error) {
		<-release
		return []byte("mp4"), nil
	}}
	orch := newTestOrchestrator(alwaysText(""), alwaysImage(""), videos)
	orch.Select(testCampaign(), "Acme Co.", "")

	done := make(chan error, 1)
	go func() { done <- orch.Start(context.Background(), KindVideo) }()

	require.Eventually(t, func() bool {
		return orch.Snapshot().Busy[KindVideo]
	}, time.Second, time.Millisecond)

	next := testCampaign()
	next.ID = "1700000000000-1"
	orch.Select(next, "Acme Co.", "")

	close(release)
	require.NoError(t, <-done)

	snap := orch.Snapshot()
	assert.Equal(t, VideoIdle, snap.Video.State, "a result from before reselection is dropped")
	assert.False(t, snap.Busy[KindVideo])
}

func TestVideoLifecycle(t *testing.T) {
	videos := &stubVideos{fn: func(_ context.Context, _ string, onStatus func(provider.VideoPhase, string)) ([]byte, error) {
		onStatus(provider.VideoPhasePolling, "Generating your video, this can take a few minutes...")
		return []byte("mp4-bytes"), nil
	}}
	orch := newTestOrchestrator(alwaysText(""), alwaysImage(""), videos)
	orch.Select(testCampaign(), "Acme Co.", "")

	require.NoError(t, orch.Start(context.Background(), KindVideo))

	status := orch.VideoStatus()
	assert.Equal(t, VideoComplete, status.State)
	assert.Contains(t, status.MediaURL, "/media/")
}

func TestVideoStateFollowsPhases(t *testing.T) {
	var orch *Orchestrator
	var observed []string
	videos := &stubVideos{fn: func(_ context.Context, _ string, onStatus func(provider.VideoPhase, string)) ([]byte, error) {
		onStatus(provider.VideoPhaseSubmitting, "Warming up the video engine...")
		observed = append(observed, orch.VideoStatus().State)
		onStatus(provider.VideoPhaseGenerating, "Generating your video, this can take a few minutes...")
		observed = append(observed, orch.VideoStatus().State)
		onStatus(provider.VideoPhasePolling, "Still rendering... (check 1)")
		observed = append(observed, orch.VideoStatus().State)
		onStatus(provider.VideoPhaseDone, "Video ready!")
		observed = append(observed, orch.VideoStatus().State)
		return []byte("mp4"), nil
	}}
	orch = newTestOrchestrator(alwaysText(""), alwaysImage(""), videos)
	orch.Select(testCampaign(), "Acme Co.", "")

	require.NoError(t, orch.Start(context.Background(), KindVideo))

	// The job reads as submitted until the operation handle exists, and the
	// final phase never demotes a finished run back to polling.
	assert.Equal(t, []string{VideoSubmitted, VideoPolling, VideoPolling, VideoPolling}, observed)
	assert.Equal(t, VideoComplete, orch.VideoStatus().State)
}

func TestVideoFailureRecordsError(t *testing.T) {
	videos := &stubVideos{fn: func(context.Context, string, func(provider.VideoPhase, string)) ([]byte, error) {
		return nil, &provider.ProviderError{Status: 13, Message: "render farm on fire"}
	}}
	orch := newTestOrchestrator(alwaysText(""), alwaysImage(""), videos)
	orch.Select(testCampaign(), "Acme Co.", "")

	err := orch.Start(context.Background(), KindVideo)
	require.Error(t, err)

	status := orch.VideoStatus()
	assert.Equal(t, VideoFailed, status.State)
	assert.Contains(t, status.Error, "render farm")
}

func TestParseKind(t *testing.T) {
	for _, valid := range []string{"social", "carousel", "video"} {
		kind, ok := ParseKind(valid)
		assert.True(t, ok)
		assert.Equal(t, Kind(valid), kind)
	}
	_, ok := ParseKind("podcast")
	assert.False(t, ok)
}
