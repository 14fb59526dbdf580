package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal"
	"github.com/letmevibethatforyou/seal/algolia"
	"github.com/letmevibethatforyou/seal/dynamodb"
	"github.com/letmevibethatforyou/seal/internal/metrics"
	"github.com/letmevibethatforyou/seal/memory"
	"github.com/letmevibethatforyou/seal/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	app := &cli.App{
		Name:  "reindex",
		Usage: "Rebuild search indexes from the DynamoDB table",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "schema",
				Aliases:  []string{"s"},
				Usage:    "Path to the schema YAML file",
				EnvVars:  []string{"SCHEMA_PATH"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "table-name",
				Aliases:  []string{"t"},
				Usage:    "DynamoDB table name",
				EnvVars:  []string{"TABLE_NAME"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				Usage:   "Search backend: memory or algolia",
				Value:   "algolia",
			},
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Environment name for AWS Secrets Manager",
				EnvVars: []string{"ENV", "ENVIRONMENT"},
			},
			&cli.StringFlag{
				Name:    "index",
				Aliases: []string{"i"},
				Usage:   "Only reindex this index",
			},
			&cli.BoolFlag{
				Name:  "drop",
				Usage: "Drop and recreate indexes before writing",
			},
			&cli.IntFlag{
				Name:  "log-every",
				Usage: "Log progress every n documents",
				Value: 100,
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "Serve Prometheus metrics on this address, e.g. :9090",
				EnvVars: []string{"METRICS_ADDR"},
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	ctx := c.Context

	s, err := schema.Load(c.String("schema"))
	if err != nil {
		return err
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load AWS config")
	}

	backend, err := newBackend(ctx, c.String("backend"), func() algolia.FetchSecrets {
		if env := c.String("env"); env != "" {
			return algolia.AWSSecrets(ctx, secretsmanager.NewFromConfig(cfg), env)
		}
		return algolia.EnvSecrets()
	})
	if err != nil {
		return err
	}

	adapter, err := metrics.New(backend, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	if addr := c.String("metrics-addr"); addr != "" {
		server := serveMetrics(ctx, addr)
		defer server.Close()
	}

	engine := seal.NewEngine(adapter, s)
	providers := dynamodb.Providers(awsdynamodb.NewFromConfig(cfg), c.String("table-name"), s)

	start := time.Now()
	err = engine.Reindex(ctx, providers, seal.ReindexOptions{
		Index:     c.String("index"),
		DropIndex: c.Bool("drop"),
		Progress:  logProgress(ctx, slog.Default(), c.Int("log-every")),
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Reindex finished", "took", time.Since(start))
	return nil
}

func newBackend(ctx context.Context, backend string, secrets func() algolia.FetchSecrets) (seal.Adapter, error) {
	switch backend {
	case "memory":
		slog.WarnContext(ctx, "Reindexing into the memory backend discards the result on exit")
		return memory.New()
	case "algolia":
		return algolia.New(algolia.NewClient(secrets())), nil
	default:
		return nil, errors.Newf("unknown backend %q", backend)
	}
}

func serveMetrics(ctx context.Context, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.InfoContext(ctx, "Serving metrics", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "Metrics server failed", "error", err)
		}
	}()
	return server
}

// logProgress logs every n documents and at the end of each index.
func logProgress(ctx context.Context, logger *slog.Logger, every int) seal.ProgressFunc {
	if every <= 0 {
		every = 1
	}
	return func(index string, count, total int) {
		if count%every == 0 || count == total {
			logger.InfoContext(ctx, "Reindex progress", "index", index, "count", count, "total", total)
		}
	}
}
