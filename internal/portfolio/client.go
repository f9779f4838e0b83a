// Package portfolio is a typed client of the proxy's /api surface. It fetches
// the data the portfolio front end displays: recently updated repositories,
// the public activity feed, commit details and READMEs.
package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// reposPerPage matches the number of repository cards on the home page.
const reposPerPage = 8

// maxErrorBody bounds how much of a failed response is kept in StatusError.
const maxErrorBody = 512

// StatusError is returned when the proxy relays a non-2xx upstream status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a StatusError carrying 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Client calls the proxy. BaseURL points at the proxy's /api prefix, for
// example http://localhost:8000/api.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client. A nil httpClient uses http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger.With("component", "portfolio_client"),
	}
}

// Repos returns the user's most recently updated repositories.
func (c *Client) Repos(ctx context.Context, user string) ([]Repo, error) {
	q := url.Values{}
	q.Set("sort", "updated")
	q.Set("per_page", fmt.Sprint(reposPerPage))

	var repos []Repo
	if err := c.get(ctx, "users/"+url.PathEscape(user)+"/repos", q, &repos); err != nil {
		return nil, fmt.Errorf("list repos for %s: %w", user, err)
	}
	return repos, nil
}

// Events returns the user's public activity feed.
func (c *Client) Events(ctx context.Context, user string) ([]Event, error) {
	var events []Event
	if err := c.get(ctx, "users/"+url.PathEscape(user)+"/events/public", nil, &events); err != nil {
		return nil, fmt.Errorf("list events for %s: %w", user, err)
	}
	return events, nil
}

// Commits returns the latest commits of repo ("owner/name").
func (c *Client) Commits(ctx context.Context, repo string) ([]CommitDetail, error) {
	var commits []CommitDetail
	if err := c.get(ctx, "repos/"+repo+"/commits", nil, &commits); err != nil {
		return nil, fmt.Errorf("list commits for %s: %w", repo, err)
	}
	return commits, nil
}

// Commit returns a single commit of repo.
func (c *Client) Commit(ctx context.Context, repo, sha string) (*CommitDetail, error) {
	var commit CommitDetail
	if err := c.get(ctx, "repos/"+repo+"/commits/"+url.PathEscape(sha), nil, &commit); err != nil {
		return nil, fmt.Errorf("get commit %s@%s: %w", repo, sha, err)
	}
	return &commit, nil
}

// Readme returns the README metadata and encoded content of repo.
func (c *Client) Readme(ctx context.Context, repo string) (*Readme, error) {
	var readme Readme
	if err := c.get(ctx, "repos/"+repo+"/readme", nil, &readme); err != nil {
		return nil, fmt.Errorf("get readme for %s: %w", repo, err)
	}
	return &readme, nil
}

// CommitMessage resolves the message shown for a push event. The first pushed
// commit's message wins. Otherwise, when a head SHA is known, the commit is
// fetched. Every other case, including fetch failures, yields
// "Update to <branch>".
func (c *Client) CommitMessage(ctx context.Context, ev Event) string {
	if len(ev.Payload.Commits) > 0 {
		return ev.Payload.Commits[0].Message
	}

	fallback := "Update to " + ev.Branch()
	if ev.Payload.Head == "" {
		return fallback
	}

	commit, err := c.Commit(ctx, ev.Repo.Name, ev.Payload.Head)
	if err != nil {
		c.logger.Debug("commit lookup failed", "repo", ev.Repo.Name, "err", err)
		return fallback
	}
	return commit.Commit.Message
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + "/" + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
