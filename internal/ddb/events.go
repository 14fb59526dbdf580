// Package ddb decodes the DynamoDB items that hold seal documents, both from table
// scans and from stream events. An item stores the identifier in pk, the index name
// in sk and the document in object.
package ddb

import (
	"encoding/base64"
	"encoding/json"
	"maps"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/seal/schema"
)

var (
	// ErrIgnoredEvent is returned for stream events that do not change documents.
	ErrIgnoredEvent = errors.New("ignored stream event")
	// ErrIncompleteRecord is returned when an item lacks pk, sk or object.
	ErrIncompleteRecord = errors.New("incomplete record")
)

// DynamoDBEvent represents a DynamoDB stream event
type DynamoDBEvent struct {
	Records []DynamoDBEventRecord `json:"Records"`
}

// DynamoDBEventRecord represents a single DynamoDB stream record
type DynamoDBEventRecord struct {
	AWSRegion      string               `json:"awsRegion"`
	Change         DynamoDBStreamRecord `json:"dynamodb"`
	EventID        string               `json:"eventID"`
	EventName      string               `json:"eventName"`
	EventSource    string               `json:"eventSource"`
	EventVersion   string               `json:"eventVersion"`
	EventSourceArn string               `json:"eventSourceARN"`
}

// DynamoDBStreamRecord represents the DynamoDB stream data
type DynamoDBStreamRecord struct {
	ApproximateCreationDateTime int64                           `json:"ApproximateCreationDateTime,omitempty"`
	Keys                        map[string]types.AttributeValue `json:"Keys,omitempty"`
	NewImage                    map[string]types.AttributeValue `json:"NewImage,omitempty"`
	OldImage                    map[string]types.AttributeValue `json:"OldImage,omitempty"`
	SequenceNumber              string                          `json:"SequenceNumber"`
	SizeBytes                   int64                           `json:"SizeBytes"`
	StreamViewType              string                          `json:"StreamViewType"`
}

// UnmarshalJSON decodes the attribute value maps, which the SDK types cannot do on
// their own.
func (r *DynamoDBStreamRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ApproximateCreationDateTime int64           `json:"ApproximateCreationDateTime,omitempty"`
		Keys                        json.RawMessage `json:"Keys,omitempty"`
		NewImage                    json.RawMessage `json:"NewImage,omitempty"`
		OldImage                    json.RawMessage `json:"OldImage,omitempty"`
		SequenceNumber              string          `json:"SequenceNumber"`
		SizeBytes                   int64           `json:"SizeBytes"`
		StreamViewType              string          `json:"StreamViewType"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = DynamoDBStreamRecord{
		ApproximateCreationDateTime: raw.ApproximateCreationDateTime,
		SequenceNumber:              raw.SequenceNumber,
		SizeBytes:                   raw.SizeBytes,
		StreamViewType:              raw.StreamViewType,
	}

	var err error
	if r.Keys, err = unmarshalOptionalMap(raw.Keys); err != nil {
		return errors.Wrap(err, "Keys")
	}
	if r.NewImage, err = unmarshalOptionalMap(raw.NewImage); err != nil {
		return errors.Wrap(err, "NewImage")
	}
	if r.OldImage, err = unmarshalOptionalMap(raw.OldImage); err != nil {
		return errors.Wrap(err, "OldImage")
	}
	return nil
}

func unmarshalOptionalMap(data json.RawMessage) (map[string]types.AttributeValue, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	return UnmarshalAttributeValueMap(data)
}

// UnmarshalAttributeValueMap decodes DynamoDB JSON such as {"pk": {"S": "1"}}.
func UnmarshalAttributeValueMap(data []byte) (map[string]types.AttributeValue, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to decode attribute value map")
	}

	out := make(map[string]types.AttributeValue, len(raw))
	for name, value := range raw {
		av, err := unmarshalAttributeValue(value)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %q", name)
		}
		out[name] = av
	}
	return out, nil
}

func unmarshalAttributeValue(data json.RawMessage) (types.AttributeValue, error) {
	var raw struct {
		S    *string           `json:"S"`
		N    *string           `json:"N"`
		B    *string           `json:"B"`
		BOOL *bool             `json:"BOOL"`
		NULL *bool             `json:"NULL"`
		M    json.RawMessage   `json:"M"`
		L    []json.RawMessage `json:"L"`
		SS   []string          `json:"SS"`
		NS   []string          `json:"NS"`
		BS   []string          `json:"BS"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	switch {
	case raw.S != nil:
		return &types.AttributeValueMemberS{Value: *raw.S}, nil
	case raw.N != nil:
		return &types.AttributeValueMemberN{Value: *raw.N}, nil
	case raw.B != nil:
		b, err := base64.StdEncoding.DecodeString(*raw.B)
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberB{Value: b}, nil
	case raw.BOOL != nil:
		return &types.AttributeValueMemberBOOL{Value: *raw.BOOL}, nil
	case raw.NULL != nil:
		return &types.AttributeValueMemberNULL{Value: *raw.NULL}, nil
	case raw.M != nil:
		m, err := UnmarshalAttributeValueMap(raw.M)
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	case raw.L != nil:
		list := make([]types.AttributeValue, 0, len(raw.L))
		for _, item := range raw.L {
			av, err := unmarshalAttributeValue(item)
			if err != nil {
				return nil, err
			}
			list = append(list, av)
		}
		return &types.AttributeValueMemberL{Value: list}, nil
	case raw.SS != nil:
		return &types.AttributeValueMemberSS{Value: raw.SS}, nil
	case raw.NS != nil:
		return &types.AttributeValueMemberNS{Value: raw.NS}, nil
	case raw.BS != nil:
		bs := make([][]byte, 0, len(raw.BS))
		for _, s := range raw.BS {
			b, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return nil, err
			}
			bs = append(bs, b)
		}
		return &types.AttributeValueMemberBS{Value: bs}, nil
	default:
		return nil, errors.Newf("unknown attribute value %s", string(data))
	}
}

// DynamoDBOperationType represents the type of DynamoDB operation
type DynamoDBOperationType string

const (
	DynamoDBOperationTypeInsert DynamoDBOperationType = "INSERT"
	DynamoDBOperationTypeModify DynamoDBOperationType = "MODIFY"
	DynamoDBOperationTypeRemove DynamoDBOperationType = "REMOVE"
)

// Record is a seal document as stored in DynamoDB.
type Record struct {
	ID        string         `dynamodbav:"pk"`
	IndexName string         `dynamodbav:"sk"`
	Object    map[string]any `dynamodbav:"object"`
}

// UnmarshalRecord converts a DynamoDB item into a Record.
func UnmarshalRecord(item map[string]types.AttributeValue) (Record, error) {
	var record Record
	err := attributevalue.UnmarshalMap(item, &record)
	if err != nil {
		return Record{}, err
	}
	return record, nil
}

// Document returns the stored object with the identifier field filled from pk when
// the object does not carry it.
func (r Record) Document(index *schema.Index) map[string]any {
	doc := maps.Clone(r.Object)
	if doc == nil {
		doc = make(map[string]any)
	}
	id := index.IdentifierField().Name()
	if v, ok := doc[id]; !ok || v == nil || v == "" {
		doc[id] = r.ID
	}
	return doc
}

// Change is a decoded stream record. Delete is set for removals, in which case
// Record.Object is nil.
type Change struct {
	Record Record
	Delete bool
}

// DecodeChange extracts the document change from a stream record. Events that do
// not touch documents return ErrIgnoredEvent; malformed items return
// ErrIncompleteRecord.
func DecodeChange(record DynamoDBEventRecord) (Change, error) {
	switch DynamoDBOperationType(record.EventName) {
	case DynamoDBOperationTypeInsert, DynamoDBOperationTypeModify:
		if record.Change.NewImage == nil {
			return Change{}, errors.Wrapf(ErrIncompleteRecord, "no new image for %s", record.EventName)
		}
		parsed, err := UnmarshalRecord(record.Change.NewImage)
		if err != nil {
			return Change{}, errors.WithSecondaryError(errors.Wrap(ErrIncompleteRecord, "failed to unmarshal new image"), err)
		}
		if parsed.ID == "" || parsed.IndexName == "" || parsed.Object == nil {
			return Change{}, errors.Wrapf(ErrIncompleteRecord, "pk %q sk %q", parsed.ID, parsed.IndexName)
		}
		return Change{Record: parsed}, nil

	case DynamoDBOperationTypeRemove:
		parsed, err := UnmarshalRecord(record.Change.Keys)
		if err != nil {
			return Change{}, errors.WithSecondaryError(errors.Wrap(ErrIncompleteRecord, "failed to unmarshal keys"), err)
		}
		if parsed.ID == "" || parsed.IndexName == "" {
			return Change{}, errors.Wrapf(ErrIncompleteRecord, "pk %q sk %q", parsed.ID, parsed.IndexName)
		}
		return Change{Record: Record{ID: parsed.ID, IndexName: parsed.IndexName}, Delete: true}, nil

	default:
		return Change{}, errors.Wrapf(ErrIgnoredEvent, "event %q", record.EventName)
	}
}
