// Package server exposes the book pipeline over HTTP. Degraded upstreams
// surface as empty result sets, never as 5xx; callers cannot tell "no
// candidates" from "catalog unreachable".
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/csheth/bookscout/internal/llm"
	"github.com/csheth/bookscout/internal/ndl"
	"github.com/csheth/bookscout/internal/openbd"
	"github.com/csheth/bookscout/internal/webpage"
)

// CatalogSearcher is the slice of the ndl client the handlers need.
type CatalogSearcher interface {
	SearchTitle(ctx context.Context, title string) ([]ndl.Book, error)
	Aggregate(ctx context.Context, queries []ndl.SearchQuery) []ndl.Candidate
}

// ISBNVerifier is the slice of the openbd client the handlers need.
type ISBNVerifier interface {
	VerifyISBNs(ctx context.Context, isbns []string) map[string]openbd.VerifiedBook
}

// Server wires the pipeline clients into echo handlers.
type Server struct {
	catalog   CatalogSearcher
	verifier  ISBNVerifier
	selector  llm.Client // nil disables AI recommendations
	extractor *webpage.Extractor
	logger    *log.Logger
}

// New builds a Server. selector may be nil; a nil extractor gets defaults;
// logger defaults to the standard logger.
func New(catalog CatalogSearcher, verifier ISBNVerifier, selector llm.Client, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	}
	return &Server{
		catalog:   catalog,
		verifier:  verifier,
		selector:  selector,
		extractor: webpage.NewExtractor(nil, 0),
		logger:    logger,
	}
}

// WithExtractor replaces the default page extractor.
func (s *Server) WithExtractor(e *webpage.Extractor) *Server {
	s.extractor = e
	return s
}

// Echo assembles the router with middleware and all routes registered.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		s.logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]any{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	api := e.Group("/api")
	api.GET("/books/search", s.handleSearch)
	api.POST("/books/recommend", s.handleRecommend)
	api.POST("/books/verify", s.handleVerify)
	api.GET("/page", s.handlePage)
	return e
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	return s.Echo().Start(addr)
}
