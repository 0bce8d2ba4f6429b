// Package sandbox serves a local stand-in for the slice of the Shopify Admin
// GraphQL API the issue form talks to: reading a product metafield and
// metafieldsSet. Data lives in memory for the lifetime of the process.
package sandbox

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

//go:embed schema.graphqls
var schemaSource string

// Path is the route the Admin API exposes GraphQL on.
const Path = "/admin/api/:version/graphql.json"

// Options configure a sandbox server.
type Options struct {
	// AccessToken, when set, must match the X-Shopify-Access-Token header.
	AccessToken string
	Metafields  *Metafields
	Logger      *zap.Logger
}

// Server is the sandbox HTTP server.
type Server struct {
	echo       *echo.Echo
	metafields *Metafields
	logger     *zap.Logger
}

// NewSchema parses the sandbox schema against the given metafield table.
func NewSchema(m *Metafields, logger *zap.Logger) (*gql.Schema, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return gql.ParseSchema(schemaSource, &rootResolver{store: m, logger: logger})
}

// New builds the server and its routes.
func New(opt Options) (*Server, error) {
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	if opt.Metafields == nil {
		opt.Metafields = NewMetafields()
	}
	schema, err := NewSchema(opt.Metafields, opt.Logger)
	if err != nil {
		return nil, fmt.Errorf("sandbox schema: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	h := echo.WrapHandler(&relay.Handler{Schema: schema})
	e.POST(Path, h, accessTokenMiddleware(opt.AccessToken))

	return &Server{echo: e, metafields: opt.Metafields, logger: opt.Logger}, nil
}

// Handler exposes the routes for embedding or httptest.
func (s *Server) Handler() http.Handler { return s.echo }

// Metafields is the table the server reads and writes.
func (s *Server) Metafields() *Metafields { return s.metafields }

// ListenAndServe blocks until ctx is done or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("sandbox listening", zap.String("addr", addr))
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

func accessTokenMiddleware(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token != "" && c.Request().Header.Get("X-Shopify-Access-Token") != token {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"errors": "[API] Invalid API key or access token (unrecognized login or wrong password)",
				})
			}
			return next(c)
		}
	}
}
