package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"brand-studio-api/internal/assets"
	"brand-studio-api/internal/auth"
	"brand-studio-api/internal/campaign"
	"brand-studio-api/internal/media"
	"brand-studio-api/internal/notify"
)

const sessionHeader = "X-Session-Id"

type CampaignGenerator interface {
	Generate(ctx context.Context, in campaign.Input) ([]campaign.Campaign, error)
}

type Options struct {
	Campaigns       CampaignGenerator
	NewOrchestrator func() *assets.Orchestrator
	Media           *media.Store
	Auth            *auth.Client
	Notifier        *notify.Notifier
	ProxyTargets    map[string]ProxyTarget
	HTTPClient      *http.Client
	Logger          *slog.Logger
	MaxConcurrent   int
	RequestTimeout  time.Duration

	// VideoTimeout bounds the detached video run, which must outlive
	// RequestTimeout to use its full poll budget. Zero picks a default;
	// a negative value removes the deadline entirely.
	VideoTimeout time.Duration
}

type Server struct {
	campaigns    CampaignGenerator
	media        *media.Store
	auth         *auth.Client
	notifier     *notify.Notifier
	proxyTargets map[string]ProxyTarget
	httpClient   *http.Client
	logger       *slog.Logger
	sessions     *sessionStore
	sem          chan struct{}
	timeout      time.Duration
	videoTimeout time.Duration
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 8
	}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 240 * time.Second
	}

	videoTimeout := opts.VideoTimeout
	if videoTimeout == 0 {
		videoTimeout = 15 * time.Minute
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Server{
		campaigns:    opts.Campaigns,
		media:        opts.Media,
		auth:         opts.Auth,
		notifier:     opts.Notifier,
		proxyTargets: opts.ProxyTargets,
		httpClient:   httpClient,
		logger:       logger,
		sessions:     newSessionStore(opts.NewOrchestrator),
		sem:          make(chan struct{}, maxConcurrent),
		timeout:      timeout,
		videoTimeout: videoTimeout,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", s.handleHealth)
	e.GET("/media/:id", s.handleMedia)

	api := e.Group("/api", s.requireSession)
	api.POST("/campaigns", s.handleGenerateCampaigns)
	api.GET("/campaigns/options", s.handleCampaignOptions)
	api.POST("/campaigns/select", s.handleSelectCampaign)
	api.POST("/assets/:kind", s.handleStartAsset)
	api.GET("/assets", s.handleAssets)
	api.GET("/assets/video/status", s.handleVideoStatus)
	api.POST("/proxy/:provider", s.handleProxy)
}

// requireSession checks the bearer token against the auth backend when one is
// configured. Without an auth backend the studio runs open, which is the
// local development mode.
func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.auth == nil {
			return next(c)
		}

		token := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
		session, err := s.auth.CurrentSession(c.Request().Context(), strings.TrimSpace(token))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "sign in to continue"})
		}

		c.Set("user", session.User)
		return next(c)
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMedia(c echo.Context) error {
	blob, ok := s.media.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "media not found"})
	}
	return c.Blob(http.StatusOK, blob.MimeType, blob.Data)
}

func (s *Server) handleCampaignOptions(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"tones":     campaign.Tones(),
		"audiences": campaign.Audiences(),
	})
}

func (s *Server) handleGenerateCampaigns(c echo.Context) error {
	var in campaign.Input
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	sess := s.session(c)

	release, err := s.acquire(c.Request().Context())
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.timeout)
	defer cancel()

	generated, err := s.campaigns.Generate(ctx, in)
	if err != nil {
		return s.apiError(c, err)
	}

	s.sessions.update(sess, func(sess *studioSession) {
		sess.Campaigns = generated
		sess.LastInput = &in
	})

	if s.notifier != nil {
		go s.notifier.CampaignBatchReady(in.BrandName, len(generated))
	}

	return c.JSON(http.StatusOK, map[string]any{
		"sessionId": sess.ID,
		"campaigns": generated,
	})
}

type selectRequest struct {
	CampaignID  string `json:"campaignId"`
	VisualTheme string `json:"visualTheme"`
}

func (s *Server) handleSelectCampaign(c echo.Context) error {
	var req selectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	sess := s.session(c)
	campaigns, input := s.sessions.snapshotCampaigns(sess)

	for _, camp := range campaigns {
		if camp.ID != req.CampaignID {
			continue
		}

		brand := ""
		if input != nil {
			brand = input.BrandName
		}
		sess.Orchestrator.Select(camp, brand, req.VisualTheme)

		return c.JSON(http.StatusOK, map[string]any{
			"sessionId": sess.ID,
			"selected":  camp,
		})
	}

	return c.JSON(http.StatusNotFound, map[string]string{"error": "campaign not found in this session"})
}

type startAssetRequest struct {
	Regenerate bool `json:"regenerate"`
}

func (s *Server) handleStartAsset(c echo.Context) error {
	kind, ok := assets.ParseKind(c.Param("kind"))
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown asset kind"})
	}

	var req startAssetRequest
	if err := c.Bind(&req); err != nil && c.Request().ContentLength > 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	sess := s.session(c)
	orch := sess.Orchestrator

	run := orch.Start
	if req.Regenerate {
		run = orch.Regenerate
	}

	// The video job outlives any sensible request deadline, so it runs
	// detached and the client follows it via the status endpoint.
	if kind == assets.KindVideo {
		if snap := orch.Snapshot(); snap.Busy[assets.KindVideo] {
			return s.apiError(c, assets.ErrGenerationInFlight)
		}

		go func() {
			ctx := context.Background()
			cancel := func() {}
			if s.videoTimeout > 0 {
				ctx, cancel = context.WithTimeout(ctx, s.videoTimeout)
			}
			defer cancel()

			if err := run(ctx, assets.KindVideo); err != nil {
				s.logger.Error("video generation failed", "session", sess.ID, "err", err)
				return
			}
			s.notifyAsset(orch, assets.KindVideo)
		}()

		return c.JSON(http.StatusAccepted, map[string]any{
			"sessionId": sess.ID,
			"video":     orch.VideoStatus(),
		})
	}

	release, err := s.acquire(c.Request().Context())
	if err != nil {
		return err
	}
	defer release()

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.timeout)
	defer cancel()

	if err := run(ctx, kind); err != nil {
		return s.apiError(c, err)
	}
	s.notifyAsset(orch, kind)

	return c.JSON(http.StatusOK, map[string]any{
		"sessionId": sess.ID,
		"assets":    orch.Snapshot(),
	})
}

func (s *Server) handleAssets(c echo.Context) error {
	sess := s.session(c)
	return c.JSON(http.StatusOK, map[string]any{
		"sessionId": sess.ID,
		"assets":    sess.Orchestrator.Snapshot(),
	})
}

func (s *Server) handleVideoStatus(c echo.Context) error {
	sess := s.session(c)
	return c.JSON(http.StatusOK, map[string]any{
		"sessionId": sess.ID,
		"video":     sess.Orchestrator.VideoStatus(),
	})
}

func (s *Server) session(c echo.Context) *studioSession {
	sess := s.sessions.getOrCreate(strings.TrimSpace(c.Request().Header.Get(sessionHeader)))
	c.Response().Header().Set(sessionHeader, sess.ID)
	return sess
}

func (s *Server) acquire(ctx context.Context) (func(), error) {
	select {
	case s.sem <- struct{}{}:
		return func() { <-s.sem }, nil
	case <-ctx.Done():
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "server busy")
	}
}

func (s *Server) notifyAsset(orch *assets.Orchestrator, kind assets.Kind) {
	if s.notifier == nil {
		return
	}
	snap := orch.Snapshot()
	title := ""
	if snap.Campaign != nil {
		title = snap.Campaign.Title
	}
	go s.notifier.AssetReady(title, string(kind))
}
