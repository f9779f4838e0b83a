package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github-proxy-go/internal/config"
	"github-proxy-go/internal/logging"
	"github-proxy-go/internal/portfolio"
)

const activityTimeLayout = "Jan 02, 2006 15:04"

// proxyFlags are shared by the subcommands that talk to a running proxy.
type proxyFlags struct {
	ProxyURL string        `name:"proxy-url" help:"Base URL of the proxy's /api prefix." default:"http://localhost:8000/api" env:"PROXY_URL"`
	Timeout  time.Duration `help:"Overall request timeout." default:"30s"`
}

func (f proxyFlags) client(cli *config.CLI) *portfolio.Client {
	logger := logging.NewWithWriter(os.Stderr, config.LogConfig{Level: cli.LogLevel, Format: "text"})
	return portfolio.NewClient(f.ProxyURL, &http.Client{Timeout: f.Timeout}, logger)
}

type reposCmd struct {
	proxyFlags `embed:""`

	User string `arg:"" help:"GitHub user name."`
}

func (r *reposCmd) Run(cli *config.CLI) error {
	repos, err := r.client(cli).Repos(context.Background(), r.User)
	if err != nil {
		return err
	}
	return printRepos(os.Stdout, repos)
}

func printRepos(w io.Writer, repos []portfolio.Repo) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, repo := range repos {
		fmt.Fprintf(tw, "%s\t%s\t★ %d\t%s\n", repo.Name, repo.DisplayLanguage(), repo.StargazersCount, repo.HTMLURL)
	}
	return tw.Flush()
}

type activityCmd struct {
	proxyFlags `embed:""`

	User  string `arg:"" help:"GitHub user name."`
	Limit int    `help:"Maximum number of pushes to show." default:"5"`
}

func (a *activityCmd) Run(cli *config.CLI) error {
	ctx := context.Background()
	c := a.client(cli)

	events, err := c.Events(ctx, a.User)
	if err != nil {
		return err
	}
	return printActivity(ctx, os.Stdout, c, events, a.Limit)
}

// printActivity writes one row per push event, up to limit rows. Messages are
// resolved through c, which may look up the head commit.
func printActivity(ctx context.Context, w io.Writer, c *portfolio.Client, events []portfolio.Event, limit int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	shown := 0
	for _, ev := range events {
		if shown == limit {
			break
		}
		if ev.Type != "PushEvent" {
			continue
		}
		shown++
		fmt.Fprintf(tw, "%s\t[%s]\t%s\t%s\n",
			ev.Repo.Name,
			ev.ShortSHA(),
			c.CommitMessage(ctx, ev),
			ev.CreatedAt.Local().Format(activityTimeLayout),
		)
	}
	return tw.Flush()
}

type readmeCmd struct {
	proxyFlags `embed:""`

	Repo string `arg:"" help:"Repository as owner/name."`
}

func (r *readmeCmd) Run(cli *config.CLI) error {
	readme, err := r.client(cli).Readme(context.Background(), r.Repo)
	if portfolio.IsNotFound(err) {
		fmt.Printf("No README found; see https://github.com/%s\n", r.Repo)
		return nil
	}
	if err != nil {
		return err
	}

	text, err := readme.Decode()
	if err != nil {
		return fmt.Errorf("%w (open %s)", err, readme.HTMLURL)
	}
	fmt.Print(text)
	return nil
}
