package handler

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github-proxy-go/internal/model"
	"github-proxy-go/internal/service"
)

// upstreamFailure is the error field of every handler-level failure body.
const upstreamFailure = "Failed to fetch from GitHub"

// ProxyHandler forwards /api/* requests to the upstream GitHub API.
type ProxyHandler struct {
	service *service.ProxyService
	logger  *slog.Logger
}

// NewProxyHandler creates a ProxyHandler.
func NewProxyHandler(svc *service.ProxyService, logger *slog.Logger) *ProxyHandler {
	return &ProxyHandler{
		service: svc,
		logger:  logger.With("component", "proxy_handler"),
	}
}

// Handle proxies the request to the upstream API and writes the normalized
// response. It always writes exactly one complete response and never returns
// an error to Echo.
func (h *ProxyHandler) Handle(c echo.Context) error {
	req := c.Request()

	pr := &model.ProxyRequest{
		Ctx:           req.Context(),
		Method:        req.Method,
		Path:          upstreamPath(req.URL),
		RawQuery:      req.URL.RawQuery,
		Body:          req.Body,
		ContentType:   req.Header.Get(echo.HeaderContentType),
		ContentLength: req.ContentLength,
	}

	resp, err := h.service.Forward(pr)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.Blob(resp.StatusCode, resp.ContentType, resp.Body)
}

// upstreamPath returns the escaped remainder after the /api prefix. The
// decoded wildcard param cannot be used: %23 and %3F would decode to
// fragment and query delimiters once the upstream URL is re-parsed.
func upstreamPath(u *url.URL) string {
	p := strings.TrimPrefix(u.EscapedPath(), "/api")
	return strings.TrimPrefix(p, "/")
}

// mapError converts a forwarding failure into the fixed 500 error body.
func (h *ProxyHandler) mapError(c echo.Context, err error) error {
	h.logger.Error("proxy error",
		"err", h.sanitizeError(err),
		"path", c.Request().URL.Path,
	)

	return c.JSON(http.StatusInternalServerError, model.ErrorResponse{
		Error:   upstreamFailure,
		Message: classify(err),
	})
}

// classify returns a caller-safe description of err.
func classify(err error) string {
	if errors.Is(err, service.ErrDecodeUpstream) {
		return "upstream response could not be decoded"
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "upstream request timed out"
	}

	if errors.Is(err, context.Canceled) {
		return "request canceled"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "upstream host unreachable"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "upstream request timed out"
		}
		return "upstream connection failed"
	}

	return "upstream request failed"
}

// sanitizeError redacts the upstream token from error messages.
func (h *ProxyHandler) sanitizeError(err error) string {
	if h.service == nil {
		return err.Error()
	}
	return h.service.Redact(err.Error())
}
