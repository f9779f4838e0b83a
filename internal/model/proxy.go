// Package model defines shared types for the proxy.
package model

import (
	"context"
	"io"
	"net/http"
)

// ProxyRequest represents a client request to be forwarded upstream.
type ProxyRequest struct {
	Ctx    context.Context
	Method string
	// Path is the escaped remainder after the /api/ prefix, without a leading
	// slash.
	Path     string
	RawQuery string
	Body     io.Reader

	// ContentType and ContentLength describe Body and are only used when a
	// body is forwarded.
	ContentType   string
	ContentLength int64
}

// UpstreamResponse is the raw upstream response as returned by the client.
// The caller is responsible for closing Body.
type UpstreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// ProxyResponse is the normalized response relayed to the caller.
type ProxyResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// ErrorResponse is the fixed-shape body returned for handler-level failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
