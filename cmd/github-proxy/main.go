package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/alecthomas/kong"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github-proxy-go/internal/client"
	"github-proxy-go/internal/config"
	"github-proxy-go/internal/handler"
	"github-proxy-go/internal/logging"
	"github-proxy-go/internal/metrics"
	"github-proxy-go/internal/service"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type app struct {
	config.CLI `embed:""`

	Version kong.VersionFlag `help:"Print version and exit."`

	Serve    serveCmd    `cmd:"" default:"1" help:"Run the GitHub API proxy (default)."`
	Repos    reposCmd    `cmd:"" help:"List a user's recently updated repositories through a running proxy."`
	Activity activityCmd `cmd:"" help:"Show a user's recent pushes through a running proxy."`
	Readme   readmeCmd   `cmd:"" help:"Print a repository README through a running proxy."`
}

func main() {
	var cli app
	ctx := kong.Parse(&cli,
		kong.Name("github-proxy"),
		kong.Description("Credential-injecting proxy for the GitHub REST API."),
		kong.Vars{"version": fmt.Sprintf("%s (%s, %s)", version, commit, date)},
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.CLI))
}

type serveCmd struct{}

func (serveCmd) Run(cli *config.CLI) error {
	fx.New(appOptions(cli)).Run()
	return nil
}

func appOptions(cli *config.CLI) fx.Option {
	return fx.Options(
		fx.Provide(
			func() *config.CLI { return cli },
			func() handler.Version { return handler.Version(version) },
			config.Load,
			logging.New,
			metrics.New,
			handler.NewEcho,
			client.NewGitHubClient,
			service.NewProxyService,
			handler.NewProxyHandler,
			handler.NewHealthHandler,
		),
		fx.Invoke(handler.RegisterRoutes, warnConfigPermissions, startServer),
	)
}

func warnConfigPermissions(cfg *config.Config, logger *slog.Logger) {
	cfg.WarnPermissions(logger)
}

func startServer(lc fx.Lifecycle, e *echo.Echo, cfg *config.Config, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			addr := cfg.Server.Addr()
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("bind %s: %w", addr, err)
			}
			logger.Info("starting server",
				"addr", addr,
				"upstream", cfg.Upstream.BaseURL,
				"credential", cfg.GitHub.CredentialState(),
			)
			go func() {
				if err := e.Server.Serve(ln); err != nil && err != http.ErrServerClosed {
					logger.Error("server error", "err", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down server")
			return e.Shutdown(ctx)
		},
	})
}
