package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"brand-studio-api/internal/assets"
	"brand-studio-api/internal/campaign"
	"brand-studio-api/internal/provider"
	"brand-studio-api/internal/structured"
)

// Upstream error bodies can be verbose; anything past this is noise to a
// person reading a toast message.
const maxUserMessage = 200

func (s *Server) apiError(c echo.Context, err error) error {
	var validationErr *campaign.ValidationError
	var planningErr *assets.PlanningError
	var malformedErr *structured.MalformedResponseError
	var providerErr *provider.ProviderError

	switch {
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": validationErr.Error(),
			"field": validationErr.Field,
		})
	case errors.Is(err, assets.ErrGenerationInFlight):
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "this asset is already being generated, hang tight",
		})
	case errors.Is(err, assets.ErrNoCampaignSelected):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "select a campaign concept first",
		})
	case errors.As(err, &planningErr), errors.As(err, &malformedErr):
		s.logger.Error("unusable model response", "err", err)
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "the model returned an unusable response, try again",
		})
	case errors.As(err, &providerErr):
		s.logger.Error("provider call failed", "status", providerErr.Status, "err", providerErr.Message)
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": truncate(providerErr.Message, maxUserMessage),
		})
	default:
		s.logger.Error("request failed", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "something went wrong",
		})
	}
}

func truncate(message string, limit int) string {
	if len(message) <= limit {
		return message
	}
	return message[:limit] + "..."
}
