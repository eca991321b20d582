package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/commentguard/commentguard/automod"
	"github.com/commentguard/commentguard/automod/auditlog"
	"github.com/commentguard/commentguard/automod/blocklist"
	"github.com/commentguard/commentguard/automod/classifier"
	"github.com/commentguard/commentguard/automod/rules"
	"github.com/commentguard/commentguard/automod/store"
	"github.com/commentguard/commentguard/automod/tokenstore"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type Server struct {
	echo   *echo.Echo
	httpd  *http.Server
	logger *slog.Logger

	engine    *automod.Engine
	comments  *store.CommentStore
	options   *store.OptionStore
	blocklist *blocklist.Manager
	audit     *auditlog.Logger
	tokens    tokenstore.TokenStore
	jwtSecret []byte
}

type Config struct {
	Logger    *slog.Logger
	Bind      string
	AuditDir  string
	Tokens    tokenstore.TokenStore
	JWTSecret string
	// max requests per second to the external classifier; zero for no limit
	ClassifierQPS float64
	// registry for HTTP request metrics; defaults to the global prometheus registry
	Registerer prometheus.Registerer
}

// Services shared by the HTTP server and the operator subcommands.
type services struct {
	engine    *automod.Engine
	comments  *store.CommentStore
	options   *store.OptionStore
	blocklist *blocklist.Manager
	audit     *auditlog.Logger
	tokens    tokenstore.TokenStore
}

func newServices(db *gorm.DB, config Config) (*services, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := store.AutoMigrate(db); err != nil {
		return nil, err
	}

	comments := store.NewCommentStore(db)
	options := store.NewOptionStore(db)
	audit := auditlog.NewLogger(config.AuditDir)

	tokens := config.Tokens
	if tokens == nil {
		tokens = tokenstore.NewMemTokenStore(100, tokenstore.DefaultTTL)
	}
	cc := classifier.NewClient(tokens, logger)
	if config.ClassifierQPS > 0 {
		cc.Limiter = rate.NewLimiter(rate.Limit(config.ClassifierQPS), 1)
	}

	engine := automod.Engine{
		Logger:     logger,
		Rules:      rules.DefaultRules(),
		Config:     options,
		Classifier: cc,
		Audit:      audit,
		Comments:   comments,
	}

	return &services{
		engine:    &engine,
		comments:  comments,
		options:   options,
		blocklist: blocklist.NewManager(options, comments, logger),
		audit:     audit,
		tokens:    tokens,
	}, nil
}

func NewServer(db *gorm.DB, config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		config.Logger = logger
	}

	svc, err := newServices(db, config)
	if err != nil {
		return nil, err
	}

	e := echo.New()

	// httpd
	var (
		httpTimeout        = 1 * time.Minute
		httpMaxHeaderBytes = 1 * (1024 * 1024)
	)

	srv := &Server{
		echo:      e,
		logger:    logger,
		engine:    svc.engine,
		comments:  svc.comments,
		options:   svc.options,
		blocklist: svc.blocklist,
		audit:     svc.audit,
		tokens:    svc.tokens,
		jwtSecret: []byte(config.JWTSecret),
	}
	srv.httpd = &http.Server{
		Handler:        srv,
		Addr:           config.Bind,
		WriteTimeout:   httpTimeout,
		ReadTimeout:    httpTimeout,
		MaxHeaderBytes: httpMaxHeaderBytes,
	}

	e.HideBanner = true
	// X-Forwarded-For is only trusted from loopback and private-range proxies
	e.IPExtractor = echo.ExtractIPFromXFFHeader()
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware("commentguard"))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "commentguard",
		Registerer: config.Registerer,
	}))
	e.Use(middleware.BodyLimit("1M"))
	e.HTTPErrorHandler = srv.errorHandler
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		HSTSMaxAge:         31536000, // 365 days
	}))
	e.Use(srv.authMiddleware)

	e.GET("/_health", srv.HandleHealthCheck)
	e.POST("/precheck", srv.HandlePrecheck)
	e.GET("/precheck/config", srv.HandlePrecheckConfig)
	e.POST("/comments", srv.HandleCreateComment)
	e.POST("/comments/:id/recheck", srv.HandleRecheckComment)

	admin := e.Group("/admin", requireAdmin)
	admin.POST("/blacklist", srv.HandleBlacklist)
	admin.GET("/logs", srv.HandleListLogs)
	admin.GET("/logs/:file", srv.HandleViewLog)
	admin.DELETE("/logs/:file", srv.HandleDeleteLog)
	admin.POST("/logs/delete", srv.HandleDeleteLogs)
	admin.POST("/logs/purge", srv.HandlePurgeLogs)
	admin.DELETE("/token", srv.HandleResetToken)
	admin.GET("/options", srv.HandleGetOptions)
	admin.PUT("/options/:name", srv.HandleSetOption)

	return srv, nil
}

func (srv *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	srv.echo.ServeHTTP(rw, req)
}

func (srv *Server) RunAPI() error {
	srv.logger.Info("starting server", "bind", srv.httpd.Addr)
	go func() {
		if err := srv.httpd.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				srv.logger.Error("HTTP server shutting down unexpectedly", "err", err)
			}
		}
	}()

	// Wait for a signal to exit.
	srv.logger.Info("registering OS exit signal handler")
	quit := make(chan struct{})
	exitSignals := make(chan os.Signal, 1)
	signal.Notify(exitSignals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-exitSignals
		srv.logger.Info("received OS exit signal", "signal", sig)

		if err := srv.Shutdown(); err != nil {
			srv.logger.Error("HTTP server shutdown error", "err", err)
		}

		close(quit)
	}()
	<-quit
	srv.logger.Info("graceful shutdown complete")
	return nil
}

func (srv *Server) RunMetrics(listen string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, mux)
}

func (srv *Server) Shutdown() error {
	srv.logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.httpd.Shutdown(ctx)
}
