package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ProxyTarget is one upstream the browser may call through us. The point of
// the relay is that the secret header values never reach the client.
type ProxyTarget struct {
	URL     string
	Headers map[string]string
}

const maxProxyBody = 1 << 20

// handleProxy relays the request body to the named provider and hands the
// upstream response back untouched, except that non-2xx bodies are folded
// into an {error} envelope.
func (s *Server) handleProxy(c echo.Context) error {
	target, ok := s.proxyTargets[c.Param("provider")]
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown provider"})
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxProxyBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
	}

	req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodPost, target.URL, bytes.NewReader(body))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to build upstream request"})
	}
	req.Header.Set("content-type", "application/json")
	for key, value := range target.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("proxy request failed", "provider", c.Param("provider"), "err", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "upstream request failed"})
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "failed to read upstream response"})
	}

	if resp.StatusCode >= 300 {
		return c.JSON(resp.StatusCode, map[string]string{"error": upstreamMessage(raw)})
	}
	return c.JSONBlob(http.StatusOK, raw)
}

func upstreamMessage(raw []byte) string {
	var decoded struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &decoded); err == nil {
		if decoded.Error.Message != "" {
			return truncate(decoded.Error.Message, maxUserMessage)
		}
		if decoded.Message != "" {
			return truncate(decoded.Message, maxUserMessage)
		}
	}
	return truncate(string(raw), maxUserMessage)
}
