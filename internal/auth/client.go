package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// Client wraps the external auth backend. The studio only consumes it:
// sessions, sign-in/up, OAuth redirects, sign-out, and a session-change
// subscription. The backend's internals are not our concern.

type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger

	mu          sync.Mutex
	subscribers []func(*Session)
}

type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		httpClient: opts.HTTPClient,
		logger:     logger,
	}
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	session := &Session{}
	err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", map[string]string{
		"email":    email,
		"password": password,
	}, session)
	if err != nil {
		return nil, err
	}
	c.notify(session)
	return session, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	session := &Session{}
	err := c.do(ctx, http.MethodPost, "/signup", "", map[string]string{
		"email":    email,
		"password": password,
	}, session)
	if err != nil {
		return nil, err
	}
	c.notify(session)
	return session, nil
}

// OAuthURL builds the redirect the browser follows for third-party sign-in.
func (c *Client) OAuthURL(provider, redirectTo string) string {
	query := url.Values{}
	query.Set("provider", provider)
	if redirectTo != "" {
		query.Set("redirect_to", redirectTo)
	}
	return c.baseURL + "/authorize?" + query.Encode()
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	if err := c.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil); err != nil {
		return err
	}
	c.notify(nil)
	return nil
}

// CurrentSession resolves the user behind an access token, or an error when
// the token is missing or stale.
func (c *Client) CurrentSession(ctx context.Context, accessToken string) (*Session, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, errors.New("no access token")
	}

	var user User
	if err := c.do(ctx, http.MethodGet, "/user", accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &Session{AccessToken: accessToken, User: user}, nil
}

// OnSessionChange registers a callback fired after every sign-in, sign-up,
// and sign-out that goes through this client.
func (c *Client) OnSessionChange(fn func(*Session)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

func (c *Client) notify(session *Session) {
	c.mu.Lock()
	subscribers := append(([]func(*Session))(nil), c.subscribers...)
	c.mu.Unlock()

	for _, fn := range subscribers {
		fn(session)
	}
}

func (c *Client) do(ctx context.Context, method, path, accessToken string, payload, out any) error {
	if c.httpClient == nil {
		return errors.New("http client is nil")
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("content-type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	if accessToken != "" {
		req.Header.Set("authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("auth %s: %s", resp.Status, errorMessage(raw))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func errorMessage(raw []byte) string {
	var decoded struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
		Message     string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &decoded); err == nil {
		switch {
		case decoded.Description != "":
			return decoded.Description
		case decoded.Message != "":
			return decoded.Message
		case decoded.Error != "":
			return decoded.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
