package main

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal/internal/ddb"
	"github.com/segmentio/ksuid"
	"github.com/urfave/cli/v2"
)

// PutItemAPI is the part of the DynamoDB client the generator uses.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

var (
	subjects = []string{"Blog", "Release", "Tutorial", "Story", "Recipe", "Review", "Guide"}
	moods    = []string{"New", "Other", "Quick", "Deep", "Weekly", "Hidden", "Final"}
	tags     = []string{"Tech", "UI", "UX", "Go", "Search", "Cloud", "Data", "Design"}
)

func generatePost(r *rand.Rand, id string, now time.Time) map[string]any {
	title := moods[r.IntN(len(moods))] + " " + subjects[r.IntN(len(subjects))]

	picked := make([]any, 0, 3)
	for _, i := range r.Perm(len(tags))[:r.IntN(3)+1] {
		picked = append(picked, tags[i])
	}

	return map[string]any{
		"uuid":          id,
		"title":         title,
		"article":       "<article><h2>" + title + "</h2><p>Generated content</p></article>",
		"footer":        map[string]any{"title": title + " Footer"},
		"created":       now.Add(-time.Duration(r.IntN(365*24)) * time.Hour).Format(time.RFC3339),
		"commentsCount": r.IntN(50),
		"rating":        float64(r.IntN(9)+2) / 2,
		"tags":          picked,
		"categoryIds":   []any{r.IntN(5) + 1},
	}
}

func insertPost(ctx context.Context, client PutItemAPI, tableName, index string, post map[string]any) error {
	id, _ := post["uuid"].(string)

	item, err := attributevalue.MarshalMap(ddb.Record{
		ID:        id,
		IndexName: index,
		Object:    post,
	})
	if err != nil {
		return errors.Wrap(err, "failed to marshal post record")
	}

	_, err = client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      item,
	})
	if err != nil {
		return errors.Wrap(err, "failed to put item in DynamoDB")
	}

	slog.InfoContext(ctx, "Successfully inserted post",
		"id", id,
		"index", index,
		"title", post["title"],
		"rating", post["rating"],
	)

	return nil
}

func generate(ctx context.Context, client PutItemAPI, r *rand.Rand, tableName, index string, count int) error {
	for i := 0; i < count; i++ {
		post := generatePost(r, ksuid.New().String(), time.Now())
		if err := insertPost(ctx, client, tableName, index, post); err != nil {
			return errors.Wrapf(err, "failed to insert post %d", i+1)
		}
	}
	return nil
}

func runAction(c *cli.Context) error {
	ctx := c.Context
	env := c.String("env")
	tableName := c.String("table-name")
	index := c.String("index")
	count := c.Int("count")

	slog.InfoContext(ctx, "Starting blog generator",
		"environment", env,
		"table", tableName,
		"index", index,
		"count", count,
	)

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load AWS config")
	}

	r := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	if err := generate(ctx, dynamodb.NewFromConfig(cfg), r, tableName, index, count); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Successfully generated and inserted all posts", "count", count)
	return nil
}

func main() {
	// Configure JSON logging for AWS environments
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	app := &cli.App{
		Name:  "generator",
		Usage: "Generate random blog posts and insert them into DynamoDB",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "env",
				Aliases:  []string{"e"},
				Usage:    "Environment name",
				EnvVars:  []string{"ENVIRONMENT"},
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
				Name:    "index",
				Aliases: []string{"i"},
				Usage:   "Index name stored in the sort key",
				Value:   "complex",
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"c"},
				Usage:   "Number of posts to generate",
				Value:   1,
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}
