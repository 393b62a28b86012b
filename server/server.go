package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/existflow/dayboard/internal/cache"
	"github.com/existflow/dayboard/internal/dateutil"
	"github.com/existflow/dayboard/internal/db"
	"github.com/existflow/dayboard/internal/gateway"
)

// Options configures a Server
type Options struct {
	DB            *db.DB
	Redis         *redis.Client // nil disables caching
	CacheTTL      time.Duration
	JWT           *JWTAuth // nil accepts session tokens only
	AdminSubjects []string
	Location      *time.Location
	Clock         dateutil.Clock
}

// Server serves the tasks and schedule collections and the derived views
type Server struct {
	db     *db.DB
	cache  *cache.Cache
	gw     *gateway.Gateway
	jwt    *JWTAuth
	admins map[string]bool
	loc    *time.Location
	clock  dateutil.Clock
	cron   *cron.Cron
	echo   *echo.Echo
}

// New creates a new server
func New(opts Options) (*Server, error) {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Clock == nil {
		opts.Clock = dateutil.SystemClock
	}

	s := &Server{
		db:     opts.DB,
		cache:  cache.New(opts.DB, opts.Redis, opts.CacheTTL),
		jwt:    opts.JWT,
		admins: map[string]bool{},
		loc:    opts.Location,
		clock:  opts.Clock,
	}
	s.gw = gateway.New(s.cache)
	for _, sub := range opts.AdminSubjects {
		s.admins[sub] = true
	}

	// Run migrations
	if err := s.migrate(); err != nil {
		return nil, err
	}

	// Setup Echo
	s.setupEcho()

	return s, nil
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true

	e.Use(requestLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	// Health check
	e.GET("/health", s.handleHealth)

	// API v1
	api := e.Group("/api/v1")
	api.Use(s.identify)

	// Auth endpoints (public)
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)

	// Protected endpoints
	api.GET("/me", s.handleMe, requireUser)
	api.POST("/logout", s.handleLogout, requireUser)

	// Collections: reads are public, writes need an admin
	api.GET("/rest/:collection", s.handleSelect)
	api.POST("/rest/:collection", s.handleInsert, requireUser, requireAdmin)
	api.PATCH("/rest/:collection/:id", s.handleUpdate, requireUser, requireAdmin)
	api.DELETE("/rest/:collection/:id", s.handleDelete, requireUser, requireAdmin)

	// Derived views
	api.GET("/calendar/:month", s.handleCalendar)
	api.GET("/days/:date", s.handleDay)
	api.GET("/upcoming", s.handleUpcoming)

	s.echo = e
}

// Close stops the rollover job and closes the database connection
func (s *Server) Close() error {
	s.StopRollover()
	return s.db.Close()
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start starts the server
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests and waits for running ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) today() string {
	return dateutil.KeyIn(s.clock(), s.loc)
}

func (s *Server) handleHealth(c echo.Context) error {
	ctx := c.Request().Context()
	if err := s.db.PingContext(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
	}
	if err := s.cache.Ping(ctx); err != nil {
		return c.JSON(http.StatusOK, map[string]string{"status": "degraded", "cache": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
