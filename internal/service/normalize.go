package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github-proxy-go/internal/model"
)

const (
	contentTypeJSON = "application/json"
	contentTypeText = "text/plain"
)

// normalize converts an upstream body into a relayable response: JSON bodies
// are decoded and re-encoded, everything else passes through as text.
func normalize(status int, contentType string, raw []byte) (*model.ProxyResponse, error) {
	if !isJSON(contentType) {
		return &model.ProxyResponse{StatusCode: status, ContentType: contentTypeText, Body: raw}, nil
	}

	// HEAD and 204 responses declare JSON but carry nothing.
	if len(bytes.TrimSpace(raw)) == 0 {
		return &model.ProxyResponse{StatusCode: status, ContentType: contentTypeJSON, Body: nil}, nil
	}

	body, err := reencodeJSON(raw)
	if err != nil {
		return nil, err
	}
	return &model.ProxyResponse{StatusCode: status, ContentType: contentTypeJSON, Body: body}, nil
}

// isJSON reports whether contentType is application/json or a +json type
// such as application/vnd.github+json.
func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == contentTypeJSON || strings.HasSuffix(mt, "+json")
}

// reencodeJSON decodes exactly one JSON value and encodes it back. Numbers are
// kept as json.Number so large IDs survive unchanged.
func reencodeJSON(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeUpstream, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrDecodeUpstream)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeUpstream, err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
