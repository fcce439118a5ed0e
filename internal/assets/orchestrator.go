package assets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"brand-studio-api/internal/campaign"
	"brand-studio-api/internal/media"
	"brand-studio-api/internal/provider"
)

type TextGenerator interface {
	GenerateText(ctx context.Context, req provider.TextRequest) (string, error)
}

type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, opts provider.ImageOptions) (string, error)
}

type VideoGenerator interface {
	GenerateVideo(ctx context.Context, prompt string, onStatus func(provider.VideoPhase, string)) ([]byte, error)
}

type Options struct {
	Text   TextGenerator
	Images ImageGenerator
	Videos VideoGenerator
	Media  *media.Store
	Logger *slog.Logger
}

// Orchestrator manages the three sibling assets of one selected campaign.
// Each kind has its own busy guard: two generations of the same kind cannot
// overlap, while different kinds run fully in parallel. A failure in one kind
// never touches another kind's stored result.
type Orchestrator struct {
	text   TextGenerator
	images ImageGenerator
	videos VideoGenerator
	media  *media.Store
	logger *slog.Logger

	mu          sync.Mutex
	seq         int
	campaign    *campaign.Campaign
	brandName   string
	visualTheme string
	busy        map[Kind]bool
	social      *SocialPost
	carousel    *Carousel
	video       VideoSnapshot
}

func NewOrchestrator(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Orchestrator{
		text:   opts.Text,
		images: opts.Images,
		videos: opts.Videos,
		media:  opts.Media,
		logger: logger,
		busy:   make(map[Kind]bool),
		video:  VideoSnapshot{State: VideoIdle},
	}
}

// Select pins a campaign concept and resets all three asset slots. A result
// from a generation started before Select lands is discarded when it
// completes.
func (o *Orchestrator) Select(c campaign.Campaign, brandName, visualTheme string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.seq++
	o.campaign = &c
	o.brandName = brandName
	o.visualTheme = visualTheme
	o.busy = make(map[Kind]bool)
	o.social = nil
	o.carousel = nil
	o.video = VideoSnapshot{State: VideoIdle}
}

// Start runs the generation pipeline for one asset kind and blocks until it
// finishes. Starting a kind that is already in flight fails immediately.
func (o *Orchestrator) Start(ctx context.Context, kind Kind) error {
	o.mu.Lock()
	if o.campaign == nil {
		o.mu.Unlock()
		return ErrNoCampaignSelected
	}
	if o.busy[kind] {
		o.mu.Unlock()
		return fmt.Errorf("%s: %w", kind, ErrGenerationInFlight)
	}
	o.busy[kind] = true
	seq := o.seq
	camp := *o.campaign
	brand := o.brandName
	theme := o.visualTheme
	o.mu.Unlock()

	// The busy flag is cleared only by the call that set it, and only if the
	// selection has not changed underneath it.
	defer func() {
		o.mu.Lock()
		if o.seq == seq {
			o.busy[kind] = false
		}
		o.mu.Unlock()
	}()

	switch kind {
	case KindSocial:
		post, err := o.generateSocial(ctx, camp, brand)
		if err != nil {
			return err
		}
		o.storeSocial(seq, post)
	case KindCarousel:
		car, err := o.assembleCarousel(ctx, camp, theme, brand)
		if err != nil {
			return err
		}
		o.storeCarousel(seq, car)
	case KindVideo:
		if err := o.runVideo(ctx, camp, brand, seq); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown asset kind %q", kind)
	}
	return nil
}

// Regenerate discards the stored result for one kind only, then runs the
// pipeline again with the inputs cached at selection time.
func (o *Orchestrator) Regenerate(ctx context.Context, kind Kind) error {
	o.mu.Lock()
	if o.busy[kind] {
		o.mu.Unlock()
		return fmt.Errorf("%s: %w", kind, ErrGenerationInFlight)
	}
	switch kind {
	case KindSocial:
		o.social = nil
	case KindCarousel:
		o.carousel = nil
	case KindVideo:
		o.video = VideoSnapshot{State: VideoIdle}
	}
	o.mu.Unlock()

	return o.Start(ctx, kind)
}

type Snapshot struct {
	Campaign *campaign.Campaign `json:"campaign,omitempty"`
	Busy     map[Kind]bool      `json:"busy"`
	Social   *SocialPost        `json:"social,omitempty"`
	Carousel *Carousel          `json:"carousel,omitempty"`
	Video    VideoSnapshot      `json:"video"`
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	busy := make(map[Kind]bool, len(o.busy))
	for kind, flag := range o.busy {
		busy[kind] = flag
	}

	snap := Snapshot{Busy: busy, Video: o.video}
	if o.campaign != nil {
		c := *o.campaign
		snap.Campaign = &c
	}
	if o.social != nil {
		p := *o.social
		snap.Social = &p
	}
	if o.carousel != nil {
		c := Carousel{
			Slides:   append([]Slide(nil), o.carousel.Slides...),
			Caption:  o.carousel.Caption,
			Hashtags: o.carousel.Hashtags,
		}
		snap.Carousel = &c
	}
	return snap
}

func (o *Orchestrator) VideoStatus() VideoSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.video
}

func (o *Orchestrator) storeSocial(seq int, post *SocialPost) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.seq == seq {
		o.social = post
	}
}

func (o *Orchestrator) storeCarousel(seq int, car *Carousel) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.seq == seq {
		o.carousel = car
	}
}

func (o *Orchestrator) updateVideo(seq int, fn func(*VideoSnapshot)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.seq == seq {
		fn(&o.video)
	}
}
