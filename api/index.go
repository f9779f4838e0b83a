// Package api is the serverless entry point. Platforms that invoke a Go
// http.HandlerFunc per request (Vercel, Netlify) call Handler; the echo stack
// is built once per cold start from the environment.
package api

import (
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/labstack/echo/v4"

	"github-proxy-go/internal/client"
	"github-proxy-go/internal/config"
	"github-proxy-go/internal/handler"
	"github-proxy-go/internal/logging"
	"github-proxy-go/internal/middleware"
	"github-proxy-go/internal/service"
)

var (
	buildOnce sync.Once
	stack     http.Handler
)

// Handler serves one inbound request.
func Handler(w http.ResponseWriter, r *http.Request) {
	buildOnce.Do(func() {
		stack = build(&config.CLI{
			Config:   os.Getenv("CONFIG_PATH"),
			Token:    os.Getenv("GITHUB_TOKEN"),
			LogLevel: os.Getenv("LOG_LEVEL"),
		})
	})
	stack.ServeHTTP(w, r)
}

// build assembles the same stack the server command wires through fx, minus
// metrics. A configuration fault yields a handler that answers every request
// with 500 in the proxy's error shape.
func build(cli *config.CLI) http.Handler {
	cfg, err := config.Load(cli)
	if err != nil {
		logger := logging.NewWithWriter(os.Stderr, config.LogConfig{})
		logger.Error("load config", "err", err)
		return misconfigured(logger)
	}
	logger := logging.New(cfg)

	svc, err := service.NewProxyService(client.NewGitHubClient(cfg, logger, nil), cfg, logger, nil)
	if err != nil {
		logger.Error("create proxy service", "err", err)
		return misconfigured(logger)
	}

	return newEcho(cfg, logger, svc)
}

func newEcho(cfg *config.Config, logger *slog.Logger, svc *service.ProxyService) *echo.Echo {
	cfg.Metrics.Enabled = false
	e := handler.NewEcho(cfg, logger, nil)
	handler.RegisterRoutes(e,
		handler.NewProxyHandler(svc, logger),
		handler.NewHealthHandler(cfg, handler.Version("serverless")),
		cfg, nil,
	)
	return e
}

func misconfigured(logger *slog.Logger) http.Handler {
	e := echo.New()
	e.HTTPErrorHandler = handler.ErrorHandler(logger)
	e.Use(middleware.EdgeHeaders(config.CredentialMissing))
	e.Any("/*", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusInternalServerError, "proxy is misconfigured")
	})
	return e
}
