// Package server exposes stored forms and screens over HTTP for previewing,
// together with the collections component that feeds server-side tables.
package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/goliatone/go-formscreen/components/collections"
	"github.com/goliatone/go-formscreen/pkg/form"
	"github.com/goliatone/go-formscreen/pkg/orchestrator"
)

// LocaleMatcher resolves an Accept-Language header to a supported locale.
type LocaleMatcher interface {
	Match(accept string) string
}

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		Debug          bool
		Orchestrator   *orchestrator.Orchestrator
		Locales        LocaleMatcher
		// Collections is mounted at its RoutePath when set.
		Collections *collections.Component
		// Assets is served under AssetsPrefix when set.
		Assets       fs.FS
		AssetsPrefix string
		// OnSubmit receives valid submissions. Nil echoes them back as JSON.
		OnSubmit func(ctx context.Context, formID string, result map[string]any) error
		Logger   *slog.Logger
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.AssetsPrefix == "" {
		opts.AssetsPrefix = "/assets"
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.HideBanner = true
	s.app.HidePort = true
	s.app.Debug = s.opts.Debug

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(requestLogger(s.opts.Logger))
	}
	if !s.opts.Debug {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.HTTPErrorHandler = newHTTPErrorHandler(s.opts.Logger)

	s.app.GET("/", s.index)

	h := &handlers{opts: s.opts}
	s.app.GET("/forms/:id", h.renderForm)
	s.app.POST("/forms/:id", h.renderForm)
	s.app.GET("/screens/:id", h.renderScreen)

	if s.opts.Collections != nil {
		route := strings.TrimRight(s.opts.Collections.Options().RoutePath, "/")
		s.app.Match([]string{http.MethodGet, http.MethodHead}, route+"/*", echo.WrapHandler(s.opts.Collections.Handler()))
	}
	if s.opts.Assets != nil {
		s.app.StaticFS(strings.TrimRight(s.opts.AssetsPrefix, "/"), s.opts.Assets)
	}
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.app.ServeHTTP(w, r)
}

func (s *server) index(c echo.Context) error {
	store := s.opts.Orchestrator.Store()
	return c.JSON(http.StatusOK, echo.Map{
		"forms":     store.FormIDs(),
		"screens":   store.ScreenIDs(),
		"renderers": s.opts.Orchestrator.Renderers(),
	})
}

func (o *Options) submitFunc(formID string) form.SubmitFunc {
	if o.OnSubmit == nil {
		return nil
	}
	return func(ctx context.Context, result map[string]any) error {
		return o.OnSubmit(ctx, formID, result)
	}
}
