package portfolio

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/", srv.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRepos(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/octocat/repos", r.URL.Path)
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		assert.Equal(t, "8", r.URL.Query().Get("per_page"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":1,"name":"hello","html_url":"https://github.com/octocat/hello","stargazers_count":42,"language":""}]`)
	})

	repos, err := c.Repos(context.Background(), "octocat")
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "hello", repos[0].Name)
	assert.Equal(t, 42, repos[0].StargazersCount)
	assert.Equal(t, "Code", repos[0].DisplayLanguage())
}

func TestEvents(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/octocat/events/public", r.URL.Path)
		_, _ = io.WriteString(w, `[{"id":"1","type":"PushEvent","repo":{"name":"octocat/hello"},
			"payload":{"ref":"refs/heads/main","head":"abcdef0123456","commits":[{"sha":"abcdef0123456","message":"init"}]},
			"created_at":"2024-05-01T10:00:00Z"}]`)
	})

	events, err := c.Events(context.Background(), "octocat")
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "octocat/hello", ev.Repo.Name)
	assert.Equal(t, "main", ev.Branch())
	assert.Equal(t, "abcdef0", ev.ShortSHA())
	assert.Equal(t, "https://github.com/octocat/hello/commit/abcdef0123456", ev.CommitURL())
	assert.Equal(t, 2024, ev.CreatedAt.Year())
}

func TestCommits(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/repos/octocat/hello/commits", r.URL.Path)
		_, _ = io.WriteString(w, `[{"sha":"a1","commit":{"message":"first","author":{"name":"Mona"}}}]`)
	})

	commits, err := c.Commits(context.Background(), "octocat/hello")
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "first", commits[0].Commit.Message)
	assert.Equal(t, "Mona", commits[0].Commit.Author.Name)
}

func TestReadme(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/repos/octocat/hello/readme", r.URL.Path)
		// "# Hello\n" wrapped the way GitHub wraps base64 content.
		_, _ = io.WriteString(w, `{"name":"README.md","path":"README.md","encoding":"base64","content":"IyBI\nZWxs\nbwo=\n","html_url":"https://github.com/octocat/hello/blob/main/README.md"}`)
	})

	readme, err := c.Readme(context.Background(), "octocat/hello")
	require.NoError(t, err)

	text, err := readme.Decode()
	require.NoError(t, err)
	assert.Equal(t, "# Hello\n", text)
}

func TestReadme_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Not Found"}`)
	})

	_, err := c.Readme(context.Background(), "octocat/missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Body, "Not Found")
}

func TestReadme_Decode(t *testing.T) {
	tests := []struct {
		name    string
		readme  Readme
		want    string
		wantErr bool
	}{
		{"base64", Readme{Encoding: "base64", Content: "aGk="}, "hi", false},
		{"no encoding field", Readme{Content: "aGk="}, "hi", false},
		{"crlf wrapped", Readme{Encoding: "base64", Content: "aG\r\nk="}, "hi", false},
		{"unsupported encoding", Readme{Encoding: "utf-8", Content: "hi"}, "", true},
		{"corrupt content", Readme{Encoding: "base64", Content: "!!!"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.readme.Decode()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommitMessage(t *testing.T) {
	tests := []struct {
		name       string
		event      Event
		status     int
		body       string
		want       string
		wantLookup bool
	}{
		{
			name: "pushed commit message",
			event: Event{
				Repo:    EventRepo{Name: "octocat/hello"},
				Payload: EventPayload{Ref: "refs/heads/main", Commits: []EventCommit{{SHA: "a1", Message: "fix typo"}}},
			},
			want: "fix typo",
		},
		{
			name:       "head sha fetched",
			event:      Event{Repo: EventRepo{Name: "octocat/hello"}, Payload: EventPayload{Ref: "refs/heads/main", Head: "b2"}},
			status:     http.StatusOK,
			body:       `{"sha":"b2","commit":{"message":"from lookup"}}`,
			want:       "from lookup",
			wantLookup: true,
		},
		{
			name:       "lookup fails",
			event:      Event{Repo: EventRepo{Name: "octocat/private"}, Payload: EventPayload{Ref: "refs/heads/dev", Head: "c3"}},
			status:     http.StatusNotFound,
			body:       `{"message":"Not Found"}`,
			want:       "Update to dev",
			wantLookup: true,
		},
		{
			name:  "no sha",
			event: Event{Repo: EventRepo{Name: "octocat/hello"}, Payload: EventPayload{Ref: "refs/heads/feature"}},
			want:  "Update to feature",
		},
		{
			name:  "no ref",
			event: Event{Repo: EventRepo{Name: "octocat/hello"}},
			want:  "Update to repository",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			looked := false
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				looked = true
				assert.Equal(t, "/api/repos/"+tt.event.Repo.Name+"/commits/"+tt.event.Payload.Head, r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			got := c.CommitMessage(context.Background(), tt.event)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantLookup, looked)
		})
	}
}

func TestShortSHA_Unknown(t *testing.T) {
	assert.Equal(t, "???????", Event{}.ShortSHA())
}
