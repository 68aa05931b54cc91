package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sitequery/sitequery/internal/config"
	"github.com/sitequery/sitequery/internal/crawler"
	"github.com/sitequery/sitequery/internal/database"
	"github.com/sitequery/sitequery/internal/model"
	"github.com/sitequery/sitequery/internal/pipeline"
)

// readHeaderTimeout bounds how long a client may take to send headers.
const readHeaderTimeout = 10 * time.Second

// Server exposes the crawler and answer engine over HTTP.
//
// Every request runs a fresh crawl: the server holds no crawl state
// between requests, only the optional history database for completed
// results.
type Server struct {
	// addr is the listen address, e.g. "127.0.0.1:8080".
	addr string

	// client is the HTTP client used for outbound page fetches.
	client *http.Client

	// delay is the politeness delay applied to crawls.
	delay time.Duration

	// userAgent identifies the crawler to target servers.
	userAgent string

	// db is the optional history database. When nil, results are not
	// persisted.
	db *database.HistoryDB

	// logger for structured logging.
	logger *slog.Logger

	httpServer *http.Server
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) ServerOption {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithClient sets the HTTP client used for page fetches.
func WithClient(client *http.Client) ServerOption {
	return func(s *Server) {
		s.client = client
	}
}

// WithServerDelay sets the politeness delay applied to crawls.
func WithServerDelay(d time.Duration) ServerOption {
	return func(s *Server) {
		s.delay = d
	}
}

// WithServerUserAgent sets the crawler's User-Agent header.
func WithServerUserAgent(ua string) ServerOption {
	return func(s *Server) {
		s.userAgent = ua
	}
}

// WithHistoryDB sets the history database used to persist results.
func WithHistoryDB(db *database.HistoryDB) ServerOption {
	return func(s *Server) {
		s.db = db
	}
}

// WithServerLogger sets the logger for request and crawl logging.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates an API server with the given options.
func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		addr:      config.DefaultServerAddr,
		client:    &http.Client{Timeout: config.DefaultTimeout},
		delay:     config.DefaultCrawlDelay,
		userAgent: config.DefaultUserAgent,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Router builds the Gin router with all routes registered.
func (s *Server) Router() *gin.Engine {
	// Disable Gin's default logging
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.loggingMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/site-map", s.handleSiteMap)
	router.POST("/query", s.handleQuery)
	router.GET("/history", s.handleHistory)
	router.GET("/history/:id", s.handleHistoryByID)

	return router
}

// Start runs the HTTP server until the context is cancelled, then shuts
// it down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "addr", s.addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("stopping API server", "addr", s.addr)
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// loggingMiddleware logs each HTTP request with latency and status.
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		s.logger.Info("http request",
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

// handleSiteMap crawls the requested site and returns its page and link
// graph as JSON.
func (s *Server) handleSiteMap(c *gin.Context) {
	seed := strings.TrimSpace(c.Query("url"))
	if seed == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
		return
	}

	maxPages := config.DefaultSiteMapMaxPages
	if raw := c.Query("max_pages"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_pages must be an integer"})
			return
		}
		maxPages = n
	}

	pages, err := s.crawl(c.Request.Context(), seed, maxPages)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.NewSiteMap(seed, pages))
}

// QueryRequest is the POST /query request body.
type QueryRequest struct {
	// URL is the seed to crawl.
	URL string `json:"url"`

	// Prompt is the question to answer from the crawled pages.
	Prompt string `json:"prompt"`

	// MaxPages bounds the crawl; zero means the default.
	MaxPages int `json:"max_pages"`
}

// QueryResponse is the POST /query response body.
type QueryResponse struct {
	// Answer is the heuristic answer text.
	Answer string `json:"answer"`
}

// handleQuery crawls the requested site and answers the prompt.
func (s *Server) handleQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": config.ErrEmptySeedURL.Error()})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": config.ErrEmptyPrompt.Error()})
		return
	}

	maxPages := req.MaxPages
	if maxPages == 0 {
		maxPages = config.DefaultMaxPages
	}

	report := model.NewQueryReport(req.URL, req.Prompt)
	p := pipeline.New(pipeline.WithLogger(s.logger), pipeline.WithContinueOnError(true))
	p.AddSteps(
		pipeline.NewCrawlStep(
			s.client,
			pipeline.WithCrawlMaxPages(maxPages),
			pipeline.WithCrawlDelay(s.delay),
			pipeline.WithCrawlUserAgent(s.userAgent),
			pipeline.WithCrawlLogger(s.logger),
		),
		pipeline.NewAnswerStep(pipeline.WithAnswerLogger(s.logger)),
	)
	if s.db != nil {
		p.AddStep(pipeline.NewSaveStep(s.db, pipeline.WithSaveLogger(s.logger)))
	}

	if err := p.Execute(c.Request.Context(), report); err != nil && report.Answer == "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, QueryResponse{Answer: report.Answer})
}

// handleHistory lists stored report metadata, optionally filtered by seed.
func (s *Server) handleHistory(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history is not enabled"})
		return
	}

	metas, err := s.db.GetHistoryWithMetadata(c.Request.Context(), c.Query("url"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if metas == nil {
		metas = []database.ReportMetadata{}
	}

	c.JSON(http.StatusOK, gin.H{"reports": metas})
}

// handleHistoryByID returns one stored report in full.
func (s *Server) handleHistoryByID(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history is not enabled"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return
	}

	report, err := s.db.GetReportByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// crawl runs a bounded crawl with the server's fetch settings.
func (s *Server) crawl(ctx context.Context, seed string, maxPages int) ([]*model.Page, error) {
	fetcher := crawler.NewFetcher(
		s.client,
		crawler.WithUserAgent(s.userAgent),
		crawler.WithFetcherLogger(s.logger),
	)
	spider := crawler.NewSpider(
		fetcher,
		crawler.WithMaxPages(maxPages),
		crawler.WithDelay(s.delay),
		crawler.WithSpiderLogger(s.logger),
	)
	pages, err := spider.Crawl(ctx, seed)
	if err != nil && len(pages) == 0 {
		return nil, err
	}
	return pages, nil
}
