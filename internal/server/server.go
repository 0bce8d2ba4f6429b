// Package server exposes the create-issue form over HTTP so an admin
// extension (or any other client) can drive it remotely.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/idilsaglam/issuetracker/internal/issueform"
	"github.com/idilsaglam/issuetracker/internal/model"
	"github.com/idilsaglam/issuetracker/internal/store"
)

// requestHost is the per-request form host: the product comes from the
// path and closing just records that the form finished.
type requestHost struct {
	productID string
	closed    bool
}

func (h *requestHost) SelectedProductID() string { return h.productID }
func (h *requestHost) Close()                    { h.closed = true }

// Server serves the issue endpoints.
type Server struct {
	echo   *echo.Echo
	store  store.Store
	logger *zap.Logger
}

type createResponse struct {
	Issue     model.Issue `json:"issue"`
	Persisted bool        `json:"persisted"`
}

// validationResponse flags offending fields; Reason says whether they are
// missing or over their length limit.
type validationResponse struct {
	Errors model.FieldErrors `json:"errors"`
	Reason string            `json:"reason"`
}

const (
	reasonMissing = "missing"
	reasonTooLong = "too_long"
)

// New builds the server and registers its routes.
func New(st store.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status))
			return nil
		},
	}))

	s := &Server{echo: e, store: st, logger: logger}
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/products/:id/issues", s.listIssues)
	e.POST("/products/:id/issues", s.createIssue)
	return s
}

// Handler exposes the routes for embedding or httptest.
func (s *Server) Handler() http.Handler { return s.echo }

// ListenAndServe blocks until ctx is done or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		errCh <- s.echo.Start(addr)
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		return s.echo.Shutdown(context.Background())
	}
}

func productID(c echo.Context) (string, error) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "product id is required")
	}
	return id, nil
}

// listIssues returns the product's issues; like the form, a failed read
// yields an empty list.
func (s *Server) listIssues(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	f := issueform.New(&requestHost{productID: id}, s.store, s.logger)
	return c.JSON(http.StatusOK, f.Load(c.Request().Context()))
}

func (s *Server) createIssue(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}
	var d model.Draft
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	// there is no input widget to cap length here
	if tooLong := model.WithinLimits(d); tooLong.Any() {
		return c.JSON(http.StatusUnprocessableEntity, validationResponse{Errors: tooLong, Reason: reasonTooLong})
	}

	ctx := c.Request().Context()
	f := issueform.New(&requestHost{productID: id}, s.store, s.logger)
	f.Load(ctx)
	res := f.Submit(ctx, d)
	if res.Errors.Any() {
		return c.JSON(http.StatusUnprocessableEntity, validationResponse{Errors: res.Errors, Reason: reasonMissing})
	}
	return c.JSON(http.StatusCreated, createResponse{Issue: *res.Created, Persisted: res.Persisted})
}
