package assets

import "errors"

type Kind string

const (
	KindSocial   Kind = "social"
	KindCarousel Kind = "carousel"
	KindVideo    Kind = "video"
)

func ParseKind(value string) (Kind, bool) {
	switch Kind(value) {
	case KindSocial, KindCarousel, KindVideo:
		return Kind(value), true
	default:
		return "", false
	}
}

var (
	ErrGenerationInFlight = errors.New("generation already in flight")
	ErrNoCampaignSelected = errors.New("no campaign selected")
)

// SocialPost is produced whole or not at all; regeneration replaces the
// record, never patches it.
type SocialPost struct {
	Image    string `json:"image"`
	Caption  string `json:"caption"`
	Hashtags string `json:"hashtags"`
}

// Slide order is fixed at planning time. A slide without an image is a valid
// terminal state, not an error.
type Slide struct {
	Image   string `json:"image,omitempty"`
	Caption string `json:"caption"`
}

type Carousel struct {
	Slides   []Slide `json:"slides"`
	Caption  string  `json:"caption"`
	Hashtags string  `json:"hashtags"`
}

const (
	VideoIdle      = "idle"
	VideoSubmitted = "submitted"
	VideoPolling   = "polling"
	VideoComplete  = "complete"
	VideoFailed    = "failed"
)

type VideoSnapshot struct {
	State    string `json:"state"`
	Status   string `json:"status,omitempty"`
	MediaURL string `json:"mediaUrl,omitempty"`
	Error    string `json:"error,omitempty"`
}
