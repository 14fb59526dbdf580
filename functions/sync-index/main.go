package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal"
	"github.com/letmevibethatforyou/seal/algolia"
	"github.com/letmevibethatforyou/seal/internal/ddb"
	"github.com/letmevibethatforyou/seal/schema"
	"github.com/urfave/cli/v2"
)

// Handler applies DynamoDB stream records to the search indexes.
type Handler struct {
	engine *seal.Engine
}

func NewHandler(engine *seal.Engine) *Handler {
	return &Handler{engine: engine}
}

func (h *Handler) HandleDynamoDBEvent(ctx context.Context, e ddb.DynamoDBEvent) error {
	slog.InfoContext(ctx, "Processing DynamoDB stream records", "record_count", len(e.Records))

	for _, record := range e.Records {
		if err := h.processRecord(ctx, record); err != nil {
			slog.ErrorContext(ctx, "Error processing record", "event_id", record.EventID, "error", err)
			return err
		}
	}

	return nil
}

// processRecord skips records that can never succeed, so they do not block the
// stream, and returns the errors a retry may fix.
func (h *Handler) processRecord(ctx context.Context, record ddb.DynamoDBEventRecord) error {
	change, err := ddb.DecodeChange(record)
	switch {
	case errors.Is(err, ddb.ErrIgnoredEvent):
		slog.InfoContext(ctx, "Ignoring event type", "event_type", record.EventName)
		return nil
	case err != nil:
		slog.WarnContext(ctx, "Skipping record", "event_id", record.EventID, "error", err)
		return nil
	}

	index, err := h.engine.Schema().Index(change.Record.IndexName)
	if err != nil {
		slog.WarnContext(ctx, "Skipping record for unknown index", "index", change.Record.IndexName, "id", change.Record.ID)
		return nil
	}

	if change.Delete {
		slog.InfoContext(ctx, "Deleting document", "id", change.Record.ID, "index", index.Name())
		_, err = h.engine.DeleteDocument(ctx, index.Name(), change.Record.ID)
	} else {
		slog.InfoContext(ctx, "Saving document", "id", change.Record.ID, "index", index.Name())
		_, err = h.engine.SaveDocument(ctx, index.Name(), change.Record.Document(index))
	}

	if errors.Is(err, seal.ErrInvalidDocument) {
		slog.WarnContext(ctx, "Skipping invalid document", "id", change.Record.ID, "index", index.Name(), "error", err)
		return nil
	}
	return err
}

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	app := &cli.App{
		Name:  "sync-index",
		Usage: "Sync DynamoDB stream events to the search indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "schema",
				Usage:    "Path to the schema YAML file",
				EnvVars:  []string{"SCHEMA_PATH"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "env",
				Usage:   "Environment name for AWS Secrets Manager (takes precedence over API key/ID flags)",
				EnvVars: []string{"ENV", "ENVIRONMENT"},
			},
			&cli.StringFlag{
				Name:    "algolia-app-id",
				Usage:   "Algolia application ID",
				EnvVars: []string{"ALGOLIA_APP_ID"},
			},
			&cli.StringFlag{
				Name:    "algolia-api-key",
				Usage:   "Algolia API key",
				EnvVars: []string{"ALGOLIA_API_KEY"},
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
	env := c.String("env")

	s, err := schema.Load(c.String("schema"))
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Starting DynamoDB to search index sync", "indexes", len(s.Indexes()), "environment", env)

	fetchSecrets, err := secrets(ctx, env, c.String("algolia-app-id"), c.String("algolia-api-key"))
	if err != nil {
		return err
	}

	adapter := algolia.New(algolia.NewClient(fetchSecrets))
	handler := NewHandler(seal.NewEngine(adapter, s))

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		slog.InfoContext(ctx, "Running in Lambda environment")
		lambda.Start(handler.HandleDynamoDBEvent)
	} else {
		slog.InfoContext(ctx, "Function cannot run outside of AWS Lambda environment")
	}

	return nil
}

// secrets prefers AWS Secrets Manager, then static flags, then the environment.
func secrets(ctx context.Context, env, appID, apiKey string) (algolia.FetchSecrets, error) {
	switch {
	case env != "":
		slog.InfoContext(ctx, "Using AWS Secrets Manager for credentials", "environment", env)
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load AWS config")
		}
		return algolia.AWSSecrets(ctx, secretsmanager.NewFromConfig(cfg), env), nil
	case appID != "" && apiKey != "":
		slog.InfoContext(ctx, "Using static credentials from flags")
		return algolia.StaticSecrets(appID, apiKey), nil
	default:
		slog.InfoContext(ctx, "Using environment variables for credentials")
		return algolia.EnvSecrets(), nil
	}
}
