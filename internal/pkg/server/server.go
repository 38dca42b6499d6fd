// Package server exposes the dashboard over HTTP: the composed single page
// at the root, plus a small JSON API over the same computed aggregates.
//
// The dataset is loaded once at startup and held by the dashboard builder;
// every request recomputes the filtered view from scratch.
package server

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"bankdash/internal/pkg/analytics"
	"bankdash/internal/pkg/chart"
	"bankdash/internal/pkg/config"
	"bankdash/internal/pkg/dashboard"
	"bankdash/internal/pkg/dataset"
)

// Server serves the dashboard page and its JSON API.
type Server struct {
	options

	cfg     *config.Config
	builder *dashboard.Builder
	router  *gin.Engine
	l       *slog.Logger
}

// New creates a [Server] from a [config.Config] and a [dashboard.Builder]
// holding the loaded dataset.
func New(cfg *config.Config, builder *dashboard.Builder, opts ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		options: optionsWithDefaults(opts),
		cfg:     cfg,
		builder: builder,
		router:  gin.New(),
		l:       slog.Default().With(slog.String("module", "server")),
	}

	s.router.Use(gin.Recovery())
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleDashboard)

	api := s.router.Group("/api")
	api.GET("/summary", s.handleSummary)
	api.GET("/rates/:chart", s.handleRates)
	api.GET("/correlation", s.handleCorrelation)
	api.GET("/options", s.handleOptions)
	api.GET("/profile", s.handleProfile)
}

// Handler returns the underlying HTTP handler, e.g. to mount in tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server on the configured address. It blocks until
// the server stops.
func (s *Server) Start() error {
	s.l.Info("serving dashboard", slog.String("addr", s.Addr))

	if err := s.router.Run(s.Addr); err != nil {
		return fmt.Errorf("serve on %s: %w", s.Addr, err)
	}

	return nil
}

// selection decodes the filter selection from the request query: one
// optional parameter per configured filter field. The sentinel "All" means
// no restriction, like an absent parameter.
func (s *Server) selection(c *gin.Context) dataset.Selection {
	sel := make(dataset.Selection, len(s.cfg.Filters))

	for _, field := range s.cfg.Filters {
		value := c.Query(field)
		if value == "" || value == dataset.AllValues {
			continue
		}
		sel[field] = value
	}

	return sel
}

// handleDashboard recomputes the dashboard for the requested filters and
// renders the full page, with the filter form submitting back to this route.
func (s *Server) handleDashboard(c *gin.Context) {
	dash := s.builder.Build(s.selection(c))

	page := chart.New(s.cfg, dash).BuildPage()
	page.Header.FormAction = "/"

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		s.l.Error("render page", slog.String("error", err.Error()))
		c.String(http.StatusInternalServerError, "render failure")

		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) handleSummary(c *gin.Context) {
	filtered := s.builder.Dataset().Filter(s.selection(c))

	c.JSON(http.StatusOK, gin.H{
		"rows": filtered.Len(),
		"kpis": analytics.Summary(filtered, s.cfg.Metrics),
	})
}

// handleRates serves the grouped rate behind one configured bar chart.
func (s *Server) handleRates(c *gin.Context) {
	id := c.Param("chart")

	cc, ok := s.cfg.GetChart(id)
	if !ok || cc.Kind != config.ChartBar {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no rate chart with id %q", id)})

		return
	}

	filtered := s.builder.Dataset().Filter(s.selection(c))

	c.JSON(http.StatusOK, gin.H{
		"chart": cc.ID,
		"group": cc.X,
		"rate":  cc.Rate,
		"rates": analytics.RateByGroup(filtered, cc.X, cc.Rate),
	})
}

func (s *Server) handleCorrelation(c *gin.Context) {
	filtered := s.builder.Dataset().Filter(s.selection(c))

	c.JSON(http.StatusOK, analytics.Correlation(filtered))
}

// handleOptions serves the filter controls. Option lists always come from
// the full dataset, so they do not shrink under the current selection.
func (s *Server) handleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, s.builder.FilterControls(s.selection(c)))
}

func (s *Server) handleProfile(c *gin.Context) {
	filtered := s.builder.Dataset().Filter(s.selection(c))

	c.JSON(http.StatusOK, filtered.Profile())
}
