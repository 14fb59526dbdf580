package dynamodb

import (
	"context"
	"reflect"
	"strconv"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal"
	"github.com/letmevibethatforyou/seal/internal/ddb"
	"github.com/letmevibethatforyou/seal/memory"
	"github.com/letmevibethatforyou/seal/sealtest"
)

// mockScanClient serves pages of items and records the inputs it was called with.
type mockScanClient struct {
	pages  [][]map[string]types.AttributeValue
	err    error
	inputs []*dynamodb.ScanInput
}

func (m *mockScanClient) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}

	page := 0
	if params.ExclusiveStartKey != nil {
		page, _ = strconv.Atoi(params.ExclusiveStartKey["page"].(*types.AttributeValueMemberN).Value)
	}

	out := &dynamodb.ScanOutput{
		Items: m.pages[page],
		Count: int32(len(m.pages[page])),
	}
	if params.Select == types.SelectCount {
		out.Items = nil
	}
	if page+1 < len(m.pages) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"page": &types.AttributeValueMemberN{Value: strconv.Itoa(page + 1)},
		}
	}
	return out, nil
}

func item(t *testing.T, index, id string, object map[string]any) map[string]types.AttributeValue {
	t.Helper()

	av, err := attributevalue.MarshalMap(ddb.Record{ID: id, IndexName: index, Object: object})
	if err != nil {
		t.Fatalf("Failed to marshal item: %v", err)
	}
	return av
}

func TestProvider(t *testing.T) {
	client := &mockScanClient{
		pages: [][]map[string]types.AttributeValue{
			{
				item(t, sealtest.IndexSimple, "1", map[string]any{"id": "1", "title": "First"}),
				item(t, sealtest.IndexSimple, "2", map[string]any{"title": "Second"}),
			},
			{
				item(t, sealtest.IndexSimple, "3", map[string]any{"id": "3", "title": "Third"}),
			},
		},
	}
	p := NewProvider(client, "documents", sealtest.SimpleIndex())
	ctx := context.Background()

	if p.Index() != sealtest.IndexSimple {
		t.Errorf("Expected index %s, got %s", sealtest.IndexSimple, p.Index())
	}

	total, err := p.Total(ctx)
	if err != nil {
		t.Fatalf("Total failed: %v", err)
	}
	if total != 3 {
		t.Errorf("Expected total 3, got %d", total)
	}

	var docs []seal.Document
	for doc, err := range p.Provide(ctx) {
		if err != nil {
			t.Fatalf("Provide failed: %v", err)
		}
		docs = append(docs, doc)
	}

	want := []seal.Document{
		{"id": "1", "title": "First"},
		{"id": "2", "title": "Second"},
		{"id": "3", "title": "Third"},
	}
	if !reflect.DeepEqual(docs, want) {
		t.Errorf("Expected %v, got %v", want, docs)
	}

	last := client.inputs[len(client.inputs)-1]
	if aws.ToString(last.TableName) != "documents" {
		t.Errorf("Expected table documents, got %s", aws.ToString(last.TableName))
	}
	if v, ok := last.ExpressionAttributeValues[":index"].(*types.AttributeValueMemberS); !ok || v.Value != sealtest.IndexSimple {
		t.Errorf("Expected sort key filter on %s, got %v", sealtest.IndexSimple, last.ExpressionAttributeValues)
	}
}

func TestProviderScanError(t *testing.T) {
	boom := errors.New("throttled")
	p := NewProvider(&mockScanClient{err: boom}, "documents", sealtest.SimpleIndex())

	if _, err := p.Total(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Expected throttled, got %v", err)
	}

	for _, err := range p.Provide(context.Background()) {
		if !errors.Is(err, boom) {
			t.Errorf("Expected throttled, got %v", err)
		}
	}
}

func TestReindexFromTable(t *testing.T) {
	client := &mockScanClient{
		pages: [][]map[string]types.AttributeValue{
			{item(t, sealtest.IndexSimple, "1", map[string]any{"title": "Hello"})},
		},
	}

	adapter, err := memory.New()
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}
	engine := seal.NewEngine(adapter, sealtest.Schema())
	ctx := context.Background()

	err = engine.Reindex(ctx, []seal.ReindexProvider{
		NewProvider(client, "documents", sealtest.SimpleIndex()),
	}, seal.ReindexOptions{})
	if err != nil {
		t.Fatalf("Reindex failed: %v", err)
	}

	doc, err := engine.GetDocument(ctx, sealtest.IndexSimple, "1")
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if doc["title"] != "Hello" {
		t.Errorf("Expected title Hello, got %v", doc["title"])
	}
}

func TestProviders(t *testing.T) {
	providers := Providers(&mockScanClient{}, "documents", sealtest.Schema())

	var names []string
	for _, p := range providers {
		names = append(names, p.Index())
	}
	want := []string{sealtest.IndexComplex, sealtest.IndexSimple}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("Expected %v, got %v", want, names)
	}
}
