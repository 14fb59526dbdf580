// Package dynamodb reads seal documents back from the DynamoDB table they are synced
// from, so indexes can be rebuilt with seal.Engine.Reindex.
package dynamodb

import (
	"context"
	"iter"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal"
	"github.com/letmevibethatforyou/seal/internal/ddb"
	"github.com/letmevibethatforyou/seal/schema"
)

// Provider scans the items of one index, identified by their sort key.
type Provider struct {
	client    dynamodb.ScanAPIClient
	tableName string
	index     *schema.Index
}

// NewProvider creates a provider for the items of index in tableName.
func NewProvider(client dynamodb.ScanAPIClient, tableName string, index *schema.Index) *Provider {
	return &Provider{
		client:    client,
		tableName: tableName,
		index:     index,
	}
}

// Providers returns one provider per index of the schema.
func Providers(client dynamodb.ScanAPIClient, tableName string, s *schema.Schema) []seal.ReindexProvider {
	providers := make([]seal.ReindexProvider, 0, len(s.Indexes()))
	for _, index := range s.Indexes() {
		providers = append(providers, NewProvider(client, tableName, index))
	}
	return providers
}

func (p *Provider) Index() string {
	return p.index.Name()
}

// Total counts the matching items. It is a full table scan.
func (p *Provider) Total(ctx context.Context) (int, error) {
	input := p.scanInput()
	input.Select = types.SelectCount

	total := 0
	paginator := dynamodb.NewScanPaginator(p.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to count items of %s in %s", p.index.Name(), p.tableName)
		}
		total += int(page.Count)
	}
	return total, nil
}

func (p *Provider) Provide(ctx context.Context) iter.Seq2[seal.Document, error] {
	return func(yield func(seal.Document, error) bool) {
		paginator := dynamodb.NewScanPaginator(p.client, p.scanInput())
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield(nil, errors.Wrapf(err, "failed to scan %s in %s", p.index.Name(), p.tableName))
				return
			}

			for _, item := range page.Items {
				record, err := ddb.UnmarshalRecord(item)
				if err != nil {
					yield(nil, errors.Wrap(err, "failed to unmarshal item"))
					return
				}
				if !yield(record.Document(p.index), nil) {
					return
				}
			}
		}
	}
}

func (p *Provider) scanInput() *dynamodb.ScanInput {
	return &dynamodb.ScanInput{
		TableName:                aws.String(p.tableName),
		FilterExpression:         aws.String("#sk = :index"),
		ExpressionAttributeNames: map[string]string{"#sk": "sk"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":index": &types.AttributeValueMemberS{Value: p.index.Name()},
		},
	}
}

var _ seal.ReindexProvider = (*Provider)(nil)
