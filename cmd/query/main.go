package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal"
	"github.com/letmevibethatforyou/seal/algolia"
	"github.com/letmevibethatforyou/seal/memory"
	"github.com/letmevibethatforyou/seal/schema"
	"github.com/urfave/cli/v2"
)

const (
	defaultLimit   = 10
	defaultTimeout = 5 * time.Second

	backendMemory  = "memory"
	backendAlgolia = "algolia"
)

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	app := &cli.App{
		Name:  "query",
		Usage: "Execute search queries against the in-memory evaluator or Algolia",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "schema",
				Aliases:  []string{"s"},
				Usage:    "Path to the schema YAML file",
				EnvVars:  []string{"SCHEMA_PATH"},
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:     "index",
				Aliases:  []string{"i"},
				Usage:    "Index to search; repeatable",
				EnvVars:  []string{"SEAL_INDEX"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				Usage:   "Search backend: memory or algolia",
				Value:   backendMemory,
			},
			&cli.StringFlag{
				Name:    "fixtures",
				Aliases: []string{"f"},
				Usage:   `JSON lines of {"index": ..., "document": {...}} loaded into the memory backend`,
			},
			&cli.StringFlag{
				Name:    "algolia-secret-arn",
				Usage:   "ARN of AWS Secrets Manager secret containing Algolia credentials",
				EnvVars: []string{"ALGOLIA_SECRET_ARN"},
			},
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Full-text query; positional arg is a fallback",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Maximum number of results to return, 0 for all",
				Value:   defaultLimit,
			},
			&cli.IntFlag{
				Name:    "offset",
				Aliases: []string{"o"},
				Usage:   "Number of results to skip before returning hits",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for the search request",
				Value: defaultTimeout,
			},
			&cli.StringSliceFlag{
				Name:  "filter",
				Usage: "Filter as field<op>value with op one of = != > >= < <=; repeatable",
			},
			&cli.StringSliceFlag{
				Name:  "sort",
				Usage: "Sort key as field[:asc|desc]; repeatable, primary first",
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

	query := strings.TrimSpace(c.String("query"))
	if query == "" && c.NArg() > 0 {
		query = strings.TrimSpace(c.Args().First())
	}

	limit := c.Int("limit")
	if limit < 0 {
		slog.WarnContext(ctx, "limit cannot be negative; falling back to default", "limit", limit, "default", defaultLimit)
		limit = defaultLimit
	}

	offset := c.Int("offset")
	if offset < 0 {
		slog.WarnContext(ctx, "offset cannot be negative; resetting to 0", "offset", offset)
		offset = 0
	}

	timeout := c.Duration("timeout")
	if timeout <= 0 {
		slog.WarnContext(ctx, "timeout must be positive; using default", "timeout", timeout, "default", defaultTimeout)
		timeout = defaultTimeout
	}

	opts := []seal.SearchOption{seal.WithLimit(limit), seal.WithOffset(offset)}
	if query != "" {
		opts = append(opts, seal.FullText(query))
	}
	for _, raw := range c.StringSlice("filter") {
		filter, err := parseFilter(raw)
		if err != nil {
			return errors.Wrap(err, "invalid filter")
		}
		opts = append(opts, filter)
	}
	for _, raw := range c.StringSlice("sort") {
		sort, err := parseSort(raw)
		if err != nil {
			return errors.Wrap(err, "invalid sort")
		}
		opts = append(opts, sort)
	}

	adapter, err := newAdapter(ctx, c.String("backend"), c.String("algolia-secret-arn"))
	if err != nil {
		return err
	}
	engine := seal.NewEngine(adapter, s)

	if path := c.String("fixtures"); path != "" {
		if c.String("backend") != backendMemory {
			return errors.New("fixtures can only be loaded into the memory backend")
		}
		if err := loadFixtures(ctx, engine, path); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	indexes := c.StringSlice("index")
	slog.InfoContext(ctx, "executing query",
		"indexes", indexes,
		"backend", c.String("backend"),
		"query", query,
		"limit", limit,
		"offset", offset,
		"option_count", len(opts),
		"timeout", timeout,
	)

	start := time.Now()
	res, err := engine.Search(ctx, indexes, opts...)
	if err != nil {
		return errors.Wrap(err, "search failed")
	}

	return printResults(os.Stdout, res, time.Since(start))
}

func newAdapter(ctx context.Context, backend, secretArn string) (seal.Adapter, error) {
	switch backend {
	case backendMemory:
		return memory.New()
	case backendAlgolia:
		var fetchSecrets algolia.FetchSecrets
		if secretArn = strings.TrimSpace(secretArn); secretArn != "" {
			slog.InfoContext(ctx, "using AWS Secrets Manager for Algolia credentials", "secret_arn", secretArn)
			cfg, err := config.LoadDefaultConfig(ctx)
			if err != nil {
				return nil, errors.Wrap(err, "failed to load AWS config")
			}
			fetchSecrets = algolia.AWSSecretsFromARN(ctx, secretsmanager.NewFromConfig(cfg), secretArn)
		} else {
			fetchSecrets = algolia.EnvSecrets()
		}
		return algolia.New(algolia.NewClient(fetchSecrets)), nil
	default:
		return nil, errors.Newf("unknown backend %q", backend)
	}
}

type fixture struct {
	Index    string        `json:"index"`
	Document seal.Document `json:"document"`
}

// loadFixtures creates the schema and saves each JSON line of path.
func loadFixtures(ctx context.Context, engine *seal.Engine, path string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return errors.Wrapf(err, "failed to open fixtures %s", path)
	}
	defer f.Close()

	if _, err := engine.CreateSchema(ctx); err != nil {
		return err
	}

	count, err := readFixtures(f, func(fx fixture) error {
		_, err := engine.SaveDocument(ctx, fx.Index, fx.Document)
		return err
	})
	if err != nil {
		return errors.Wrapf(err, "fixtures %s", path)
	}

	slog.InfoContext(ctx, "loaded fixtures", "path", path, "count", count)
	return nil
}

func readFixtures(r io.Reader, save func(fixture) error) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	line, count := 0, 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var fx fixture
		if err := json.Unmarshal([]byte(text), &fx); err != nil {
			return count, errors.Wrapf(err, "line %d", line)
		}
		if err := save(fx); err != nil {
			return count, errors.Wrapf(err, "line %d", line)
		}
		count++
	}
	return count, scanner.Err()
}

func printResults(w io.Writer, res *seal.Result, took time.Duration) error {
	payload := struct {
		Total int             `json:"total"`
		Took  int64           `json:"took_ms"`
		Items []seal.Document `json:"items"`
	}{
		Total: res.Total(),
		Took:  took.Milliseconds(),
		Items: res.Collect(),
	}
	if payload.Items == nil {
		payload.Items = []seal.Document{}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal results")
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}
