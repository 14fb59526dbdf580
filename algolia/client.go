// Package algolia is a seal adapter backed by Algolia. The search client is created
// lazily on first use from configurable secrets, and every call is traced.
package algolia

import (
	"context"
	"os"
	"sync"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Secrets holds the Algolia application credentials.
type Secrets struct {
	// AppID is the Algolia application ID.
	AppID string `json:"app_id"`
	// WriteApiKey is the Algolia write API key.
	WriteApiKey string `json:"write_api_key"`
}

// FetchSecrets is a function type that retrieves Algolia credentials.
// It allows for different secret retrieval strategies (static, environment variables, etc.).
type FetchSecrets func() (Secrets, error)

// StaticSecrets returns a FetchSecrets function that provides static credentials.
func StaticSecrets(appID, writeApiKey string) FetchSecrets {
	return func() (Secrets, error) {
		return Secrets{
			AppID:       appID,
			WriteApiKey: writeApiKey,
		}, nil
	}
}

// EnvSecrets reads ALGOLIA_APP_ID and ALGOLIA_API_KEY.
func EnvSecrets() FetchSecrets {
	return func() (Secrets, error) {
		appID := os.Getenv("ALGOLIA_APP_ID")
		if appID == "" {
			return Secrets{}, errors.New("ALGOLIA_APP_ID environment variable is not set")
		}

		apiKey := os.Getenv("ALGOLIA_API_KEY")
		if apiKey == "" {
			return Secrets{}, errors.New("ALGOLIA_API_KEY environment variable is not set")
		}

		return Secrets{
			AppID:       appID,
			WriteApiKey: apiKey,
		}, nil
	}
}

// Index is the part of the Algolia index API the adapter uses. *search.Index
// implements it.
type Index interface {
	SaveObject(object interface{}, opts ...interface{}) (search.SaveObjectRes, error)
	DeleteObject(objectID string, opts ...interface{}) (search.DeleteTaskRes, error)
	Search(query string, opts ...interface{}) (search.QueryRes, error)
	SetSettings(settings search.Settings, opts ...interface{}) (search.UpdateTaskRes, error)
	Delete(opts ...interface{}) (search.DeleteTaskRes, error)
	Exists() (bool, error)
}

// Client opens traced Algolia indexes.
type Client struct {
	initIndex func(name string) (Index, error)
	tracer    trace.Tracer
}

// NewClient creates a client that fetches secrets and connects on first use.
func NewClient(fetchSecrets FetchSecrets) *Client {
	getClient := sync.OnceValues(func() (*search.Client, error) {
		secrets, err := fetchSecrets()
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch secrets")
		}

		if secrets.AppID == "" {
			return nil, errors.New("AppID is empty")
		}

		if secrets.WriteApiKey == "" {
			return nil, errors.New("WriteApiKey is empty")
		}

		return search.NewClient(secrets.AppID, secrets.WriteApiKey), nil
	})

	return newClient(func(name string) (Index, error) {
		client, err := getClient()
		if err != nil {
			return nil, err
		}
		return client.InitIndex(name), nil
	})
}

func newClient(initIndex func(name string) (Index, error)) *Client {
	return &Client{
		initIndex: initIndex,
		tracer:    otel.Tracer("seal-algolia"),
	}
}

// call runs fn against the named index inside a span.
func (c *Client) call(ctx context.Context, op, indexName string, fn func(Index) error, attrs ...attribute.KeyValue) error {
	_, span := c.tracer.Start(ctx, "algolia."+op,
		trace.WithAttributes(append(attrs, attribute.String("algolia.index_name", indexName))...),
	)
	defer span.End()

	index, err := c.initIndex(indexName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return errors.WithSecondaryError(seal.ErrBackendUnavailable, errors.Wrap(err, "failed to get Algolia client"))
	}

	if err := fn(index); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, op+" failed on index "+indexName)
		return errors.Wrapf(err, "algolia %s on index %s", op, indexName)
	}

	span.SetStatus(codes.Ok, op+" succeeded")
	return nil
}

func (c *Client) SaveObject(ctx context.Context, indexName string, object map[string]any) (search.SaveObjectRes, error) {
	var res search.SaveObjectRes
	objectID, _ := object["objectID"].(string)

	err := c.call(ctx, "save_object", indexName, func(index Index) (err error) {
		res, err = index.SaveObject(object)
		return err
	}, attribute.String("algolia.object_id", objectID))
	return res, err
}

func (c *Client) DeleteObject(ctx context.Context, indexName, objectID string) (search.DeleteTaskRes, error) {
	var res search.DeleteTaskRes

	err := c.call(ctx, "delete_object", indexName, func(index Index) (err error) {
		res, err = index.DeleteObject(objectID)
		return err
	}, attribute.String("algolia.object_id", objectID))
	return res, err
}

func (c *Client) Search(ctx context.Context, indexName, query string, params ...interface{}) (search.QueryRes, error) {
	var res search.QueryRes

	err := c.call(ctx, "search", indexName, func(index Index) (err error) {
		res, err = index.Search(query, params...)
		return err
	}, attribute.String("algolia.query", query))
	return res, err
}

func (c *Client) SetSettings(ctx context.Context, indexName string, settings search.Settings) (search.UpdateTaskRes, error) {
	var res search.UpdateTaskRes

	err := c.call(ctx, "set_settings", indexName, func(index Index) (err error) {
		res, err = index.SetSettings(settings)
		return err
	})
	return res, err
}

func (c *Client) DeleteIndex(ctx context.Context, indexName string) (search.DeleteTaskRes, error) {
	var res search.DeleteTaskRes

	err := c.call(ctx, "delete_index", indexName, func(index Index) (err error) {
		res, err = index.Delete()
		return err
	})
	return res, err
}

func (c *Client) IndexExists(ctx context.Context, indexName string) (bool, error) {
	var exists bool

	err := c.call(ctx, "index_exists", indexName, func(index Index) (err error) {
		exists, err = index.Exists()
		return err
	})
	return exists, err
}
