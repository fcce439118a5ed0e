package campaign

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"brand-studio-api/internal/provider"
	"brand-studio-api/internal/structured"
)

const conceptCount = 5

const generatorSystem = `You are a senior brand strategist. You answer with raw JSON only: no markdown, no commentary.`

// Campaign is one generated concept. The id is batch-scoped: the studio never
// compares ids across sessions, so a millisecond timestamp plus the array
// index is enough.
type Campaign struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Objective      string `json:"objective"`
	TargetAudience string `json:"targetAudience"`
	KeyMessage     string `json:"keyMessage"`
}

type TextGenerator interface {
	GenerateText(ctx context.Context, req provider.TextRequest) (string, error)
}

type GeneratorOptions struct {
	Text   TextGenerator
	Logger *slog.Logger
	Now    func() time.Time
}

type Generator struct {
	text   TextGenerator
	logger *slog.Logger
	now    func() time.Time
}

func NewGenerator(opts GeneratorOptions) *Generator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Generator{
		text:   opts.Text,
		logger: logger,
		now:    now,
	}
}

// Generate turns one brief into five distinct campaign concepts with a single
// provider call. Invalid briefs fail before any network traffic.
func (g *Generator) Generate(ctx context.Context, in Input) ([]Campaign, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	raw, err := g.text.GenerateText(ctx, provider.TextRequest{
		Prompt:    buildConceptPrompt(in),
		MaxTokens: 3072,
		System:    generatorSystem,
	})
	if err != nil {
		return nil, fmt.Errorf("campaign generation: %w", err)
	}

	var concepts []conceptPayload
	if err := structured.Decode(raw, &concepts); err != nil {
		return nil, err
	}
	if len(concepts) != conceptCount {
		return nil, &structured.MalformedResponseError{
			Reason: fmt.Sprintf("expected %d campaign concepts, got %d", conceptCount, len(concepts)),
		}
	}

	batch := g.now().UnixMilli()
	out := make([]Campaign, 0, conceptCount)
	for i, concept := range concepts {
		out = append(out, Campaign{
			ID:             fmt.Sprintf("%d-%d", batch, i),
			Title:          concept.Title,
			Description:    concept.Description,
			Objective:      concept.Objective,
			TargetAudience: concept.TargetAudience,
			KeyMessage:     concept.KeyMessage,
		})
	}

	g.logger.Info("campaigns generated", "brand", in.BrandName, "count", len(out))
	return out, nil
}

type conceptPayload struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Objective      string `json:"objective"`
	TargetAudience string `json:"targetAudience"`
	KeyMessage     string `json:"keyMessage"`
}

func buildConceptPrompt(in Input) string {
	return fmt.Sprintf(`Develop exactly %d distinct marketing campaign concepts for the brand below.

Brand name: %s
Tone of voice: %s
Target audience: %s
Products: %s

Every concept must mention the brand name "%s" in its title or description.
Return a JSON array of exactly %d objects, each with these string fields:
"title", "description", "objective", "targetAudience", "keyMessage".`,
		conceptCount, in.BrandName, in.Tone, in.TargetAudience, in.Products, in.BrandName, conceptCount)
}
