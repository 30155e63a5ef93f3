package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseSize = 1 << 20
	requestIDHeader = "X-Request-ID"
)

// Config captures the backend endpoints the gateway talks to.
type Config struct {
	BaseURL          string
	LoginPath        string
	MemberSignupPath string
	ParentSignupPath string
	ProfilePath      string
	// RedirectURL is the callback registered with the provider. The backend
	// needs it to complete the code exchange.
	RedirectURL string
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *zerolog.Logger
}

// Client is the IdentityGateway: it performs the login exchange, the
// enrollment submissions and profile fetches against the backend.
type Client struct {
	baseURL          string
	loginPath        string
	memberSignupPath string
	parentSignupPath string
	profilePath      string
	redirectURL      string
	httpClient       *http.Client
	logger           zerolog.Logger
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("backend base url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("backend base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Client{
		baseURL:          base,
		loginPath:        cfg.LoginPath,
		memberSignupPath: cfg.MemberSignupPath,
		parentSignupPath: cfg.ParentSignupPath,
		profilePath:      cfg.ProfilePath,
		redirectURL:      cfg.RedirectURL,
		httpClient:       hc,
		logger:           logger.With().Str("component", "identity").Logger(),
	}, nil
}

// call sends one request and decodes the backend envelope. The envelope is
// decoded whatever the transport status; an error means no usable envelope
// arrived.
func (c *Client) call(ctx context.Context, method, path string, header http.Header, body any) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("request_id", requestID).Str("method", method).Str("path", path).
			Dur("elapsed", time.Since(start)).Msg("backend request failed")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().Str("request_id", requestID).Str("method", method).Str("path", path).
		Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("backend request")

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	return &env, nil
}
