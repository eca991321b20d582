package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/commentguard/commentguard/automod/tokenstore"
	"github.com/commentguard/commentguard/util/cliutil"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "commentguard",
		Usage:   "comment moderation service",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "database connection string (sqlite or postgres)",
			Value:   "sqlite://data/commentguard/commentguard.sqlite",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.IntFlag{
			Name:    "max-db-connections",
			EnvVars: []string{"COMMENTGUARD_MAX_DB_CONNECTIONS", "MAX_DB_CONNECTIONS"},
			Value:   20,
		},
		&cli.BoolFlag{
			Name:    "enable-db-tracing",
			Usage:   "trace database queries with OpenTelemetry",
			EnvVars: []string{"COMMENTGUARD_ENABLE_DB_TRACING"},
		},
		&cli.StringFlag{
			Name:    "audit-dir",
			Usage:   "directory for blocked-comment audit logs",
			Value:   "data/commentguard/logs",
			EnvVars: []string{"COMMENTGUARD_AUDIT_DIR"},
		},
		&cli.StringFlag{
			Name:    "token-store",
			Usage:   "where to cache the classifier access token: file, memory, or redis",
			Value:   "file",
			EnvVars: []string{"COMMENTGUARD_TOKEN_STORE"},
		},
		&cli.StringFlag{
			Name:    "token-file",
			Usage:   "path of the classifier token cache file, when token-store is 'file'",
			Value:   "data/commentguard/classifier_token.json",
			EnvVars: []string{"COMMENTGUARD_TOKEN_FILE"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL, when token-store is 'redis'",
			EnvVars: []string{"COMMENTGUARD_REDIS_URL", "REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "jwt-secret",
			Usage:   "HMAC secret for caller bearer tokens",
			EnvVars: []string{"COMMENTGUARD_JWT_SECRET"},
		},
		&cli.Float64Flag{
			Name:    "classifier-qps",
			Usage:   "max requests per second to the external classifier (0 for no limit)",
			Value:   10,
			EnvVars: []string{"COMMENTGUARD_CLASSIFIER_QPS"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (eg: warn, info, debug)",
			EnvVars: []string{"COMMENTGUARD_LOG_LEVEL", "LOG_LEVEL"},
		},
	}

	app.Commands = []*cli.Command{
		serveCmd,
		checkCmd,
		blacklistCmd,
		logsCmd,
		tokenCmd,
		adminTokenCmd,
		optionsCmd,
	}

	return app.Run(args)
}

func configLogger(cctx *cli.Context) (*slog.Logger, error) {
	return cliutil.SetupSlog(cliutil.LogOptions{
		LogLevel: cctx.String("log-level"),
	})
}

func openDatabase(cctx *cli.Context) (*gorm.DB, error) {
	db, err := cliutil.SetupDatabase(cctx.String("database-url"), cctx.Int("max-db-connections"))
	if err != nil {
		return nil, err
	}
	if cctx.Bool("enable-db-tracing") {
		if err := db.Use(tracing.NewPlugin()); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func openTokenStore(cctx *cli.Context) (tokenstore.TokenStore, error) {
	switch cctx.String("token-store") {
	case "file", "":
		return tokenstore.NewFileTokenStore(cctx.String("token-file")), nil
	case "memory":
		return tokenstore.NewMemTokenStore(100, tokenstore.DefaultTTL), nil
	case "redis":
		if cctx.String("redis-url") == "" {
			return nil, fmt.Errorf("redis token store requires --redis-url")
		}
		return tokenstore.NewRedisTokenStore(cctx.String("redis-url"))
	}
	return nil, fmt.Errorf("unknown token store: %s", cctx.String("token-store"))
}

// Common setup for every subcommand which touches the database.
func setup(cctx *cli.Context) (*services, Config, error) {
	logger, err := configLogger(cctx)
	if err != nil {
		return nil, Config{}, err
	}
	db, err := openDatabase(cctx)
	if err != nil {
		return nil, Config{}, err
	}
	tokens, err := openTokenStore(cctx)
	if err != nil {
		return nil, Config{}, err
	}
	config := Config{
		Logger:        logger,
		AuditDir:      cctx.String("audit-dir"),
		Tokens:        tokens,
		JWTSecret:     cctx.String("jwt-secret"),
		ClassifierQPS: cctx.Float64("classifier-qps"),
	}
	svc, err := newServices(db, config)
	if err != nil {
		return nil, Config{}, err
	}
	return svc, config, nil
}

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "run the HTTP service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for HTTP APIs",
			Value:   ":3999",
			EnvVars: []string{"COMMENTGUARD_BIND"},
		},
		&cli.StringFlag{
			Name:    "jaeger-endpoint",
			Usage:   "jaeger collector URL for traces, if OTEL_EXPORTER_OTLP_ENDPOINT isn't set",
			EnvVars: []string{"COMMENTGUARD_JAEGER_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3998",
			EnvVars: []string{"COMMENTGUARD_METRICS_LISTEN"},
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := context.Background()
		logger, err := configLogger(cctx)
		if err != nil {
			return err
		}

		shutdownTracing, err := configOTEL(ctx, "commentguard", cctx.String("jaeger-endpoint"))
		if err != nil {
			return err
		}
		defer shutdownTracing()

		if cctx.String("jwt-secret") == "" {
			logger.Warn("no JWT secret configured; admin endpoints and caller identity are disabled")
		}

		db, err := openDatabase(cctx)
		if err != nil {
			return err
		}
		tokens, err := openTokenStore(cctx)
		if err != nil {
			return err
		}

		srv, err := NewServer(db, Config{
			Logger:        logger,
			Bind:          cctx.String("bind"),
			AuditDir:      cctx.String("audit-dir"),
			Tokens:        tokens,
			JWTSecret:     cctx.String("jwt-secret"),
			ClassifierQPS: cctx.Float64("classifier-qps"),
		})
		if err != nil {
			return fmt.Errorf("failed to construct server: %w", err)
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				logger.Error("failed to start metrics endpoint", "error", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		return srv.RunAPI()
	},
}
