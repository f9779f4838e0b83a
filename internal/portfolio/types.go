package portfolio

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// Repo is the subset of a GitHub repository the portfolio renders.
type Repo struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Description     string    `json:"description"`
	HTMLURL         string    `json:"html_url"`
	Language        string    `json:"language"`
	StargazersCount int       `json:"stargazers_count"`
	Fork            bool      `json:"fork"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DisplayLanguage returns the repository language or "Code" when unset.
func (r Repo) DisplayLanguage() string {
	if r.Language == "" {
		return "Code"
	}
	return r.Language
}

// Event is an entry of a user's public activity feed.
type Event struct {
	ID        string       `json:"id"`
	Type      string       `json:"type"`
	Repo      EventRepo    `json:"repo"`
	Payload   EventPayload `json:"payload"`
	CreatedAt time.Time    `json:"created_at"`
}

// EventRepo identifies the repository an event belongs to.
type EventRepo struct {
	Name string `json:"name"`
}

// EventPayload carries the push details of an event. Fields are empty for
// event types that do not push commits.
type EventPayload struct {
	Ref     string        `json:"ref"`
	Head    string        `json:"head"`
	Commits []EventCommit `json:"commits"`
}

// EventCommit is a commit summary embedded in a push event.
type EventCommit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
}

// Branch returns the ref without its refs/heads/ prefix, or "repository"
// when the event carries no ref.
func (e Event) Branch() string {
	if e.Payload.Ref == "" {
		return "repository"
	}
	return strings.TrimPrefix(e.Payload.Ref, "refs/heads/")
}

// SHA returns the first pushed commit's SHA, falling back to the head SHA.
func (e Event) SHA() string {
	if len(e.Payload.Commits) > 0 {
		return e.Payload.Commits[0].SHA
	}
	return e.Payload.Head
}

// ShortSHA returns the abbreviated SHA, or a placeholder when none is known.
func (e Event) ShortSHA() string {
	sha := e.SHA()
	if sha == "" {
		return "???????"
	}
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

// CommitURL links to the commit on github.com.
func (e Event) CommitURL() string {
	return fmt.Sprintf("https://github.com/%s/commit/%s", e.Repo.Name, e.SHA())
}

// CommitDetail is a single commit as returned by repos/{repo}/commits.
type CommitDetail struct {
	SHA     string     `json:"sha"`
	HTMLURL string     `json:"html_url"`
	Commit  CommitInfo `json:"commit"`
}

// CommitInfo holds the git-level commit data.
type CommitInfo struct {
	Message string       `json:"message"`
	Author  CommitAuthor `json:"author"`
}

// CommitAuthor is the git author of a commit.
type CommitAuthor struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// Readme is a repository README with base64-encoded content.
type Readme struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	HTMLURL  string `json:"html_url"`
}

// Decode returns the README text. GitHub wraps base64 content at 60 columns,
// so line breaks are removed before decoding.
func (r *Readme) Decode() (string, error) {
	if r.Encoding != "" && r.Encoding != "base64" {
		return "", fmt.Errorf("unsupported readme encoding %q", r.Encoding)
	}
	clean := strings.NewReplacer("\n", "", "\r", "").Replace(r.Content)
	b, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		return "", fmt.Errorf("decode readme: %w", err)
	}
	return string(b), nil
}
