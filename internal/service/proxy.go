// Package service implements the core proxy forwarding logic.
package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github-proxy-go/internal/client"
	"github-proxy-go/internal/config"
	"github-proxy-go/internal/metrics"
	"github-proxy-go/internal/model"
)

// ErrDecodeUpstream is returned when an upstream body declared as JSON cannot
// be decoded or re-encoded.
var ErrDecodeUpstream = errors.New("decode upstream response")

// allowedUpstreamHosts restricts which hosts the proxy will forward to.
var allowedUpstreamHosts = map[string]bool{
	"api.github.com": true,
}

const (
	userAgent = "github-proxy-go/1.0"
	// acceptMediaType pins the REST API version.
	acceptMediaType = "application/vnd.github.v3+json"
	// authScheme is the scheme for classic personal access tokens.
	authScheme = "token"
)

// ProxyService handles the forwarding logic for proxy requests.
type ProxyService struct {
	client  *client.GitHubClient
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	baseURL string

	missingTokenLog *rate.Sometimes
}

// NewProxyService creates a ProxyService.
// The metrics parameter is optional; pass nil to disable body-kind metrics.
func NewProxyService(c *client.GitHubClient, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*ProxyService, error) {
	u, err := url.Parse(cfg.Upstream.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream base_url: %w", err)
	}

	if !allowedUpstreamHosts[u.Hostname()] {
		return nil, fmt.Errorf("upstream host %q is not in the allowlist", u.Hostname())
	}

	return newProxyService(c, cfg, logger, m), nil
}

// NewProxyServiceForTest creates a ProxyService without host allowlist validation.
// This is intended only for tests that use httptest servers on localhost.
func NewProxyServiceForTest(c *client.GitHubClient, cfg *config.Config, logger *slog.Logger) (*ProxyService, error) {
	if _, err := url.Parse(cfg.Upstream.BaseURL); err != nil {
		return nil, fmt.Errorf("parse upstream base_url: %w", err)
	}
	return newProxyService(c, cfg, logger, nil), nil
}

func newProxyService(c *client.GitHubClient, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *ProxyService {
	return &ProxyService{
		client:          c,
		cfg:             cfg,
		logger:          logger.With("component", "proxy_service"),
		metrics:         m,
		baseURL:         strings.TrimRight(cfg.Upstream.BaseURL, "/"),
		missingTokenLog: &rate.Sometimes{First: 1, Interval: 10 * time.Minute},
	}
}

// CredentialState reports whether a token is attached to upstream calls.
func (s *ProxyService) CredentialState() string {
	return s.cfg.GitHub.CredentialState()
}

// Redact replaces every occurrence of the configured token in msg.
func (s *ProxyService) Redact(msg string) string {
	if !s.cfg.GitHub.HasToken() {
		return msg
	}
	return strings.ReplaceAll(msg, s.cfg.GitHub.Token, "[REDACTED]")
}

// Forward sends a ProxyRequest to the upstream GitHub API, reads the full
// response, and returns it normalized to JSON or plain text. The upstream
// status code is returned unchanged; only transport and decode faults are
// reported as errors.
func (s *ProxyService) Forward(pr *model.ProxyRequest) (*model.ProxyResponse, error) {
	if !s.cfg.GitHub.HasToken() {
		s.missingTokenLog.Do(func() {
			s.logger.Warn("github token not configured; upstream calls are unauthenticated")
		})
	}

	upstreamURL := s.buildUpstreamURL(pr.Path, pr.RawQuery)
	body := requestBody(pr)
	header := s.buildRequestHeaders(pr, body != nil)

	s.logger.Debug("forwarding request",
		"method", pr.Method,
		"path", pr.Path,
	)

	resp, err := s.client.Send(pr.Ctx, pr.Method, upstreamURL, header, body, pr.ContentLength)
	if err != nil {
		return nil, fmt.Errorf("forward to upstream: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}

	out, err := normalize(resp.StatusCode, resp.Header.Get("Content-Type"), raw)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		kind := "text"
		if out.ContentType == contentTypeJSON {
			kind = "json"
		}
		s.metrics.ResponseBodies.WithLabelValues(kind).Inc()
	}
	return out, nil
}

// buildUpstreamURL joins the base, the path remainder and the raw query verbatim.
func (s *ProxyService) buildUpstreamURL(path, rawQuery string) string {
	u := s.baseURL + "/" + path
	if rawQuery != "" {
		u += "?" + rawQuery
	}
	return u
}

// buildRequestHeaders returns a fresh header set. Inbound headers are never
// relayed except Content-Type when a body is forwarded.
func (s *ProxyService) buildRequestHeaders(pr *model.ProxyRequest, hasBody bool) http.Header {
	h := make(http.Header)
	h.Set("User-Agent", userAgent)
	h.Set("Accept", acceptMediaType)
	if s.cfg.GitHub.HasToken() {
		h.Set("Authorization", authScheme+" "+s.cfg.GitHub.Token)
	}
	if hasBody && pr.ContentType != "" {
		h.Set("Content-Type", pr.ContentType)
	}
	return h
}

// requestBody returns the body to forward, or nil for methods without body semantics.
func requestBody(pr *model.ProxyRequest) io.Reader {
	if pr.Method == http.MethodGet || pr.Method == http.MethodHead {
		return nil
	}
	return pr.Body
}
