// Package awsfake provides in-memory stand-ins for the DynamoDB and S3 APIs
// used by the repository, for tests that should not touch AWS or LocalStack.
//
// It is for tests only. Only _test.go files may import it; production
// wiring always goes through internal/awsutil.
package awsfake

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDB is a single-table, string-hash-key fake of the DynamoDB client.
// Only unconditional writes and attribute_exists/attribute_not_exists
// conditions on the hash key are understood.
type DynamoDB struct {
	HashKey string

	// Err, when set for an operation name ("PutItem", "Scan", ...), is returned
	// instead of performing it.
	Err map[string]error

	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
	calls map[string]int
}

// NewDynamoDB returns an empty table keyed by hashKey.
func NewDynamoDB(hashKey string) *DynamoDB {
	return &DynamoDB{
		HashKey: hashKey,
		Err:     map[string]error{},
		items:   map[string]map[string]types.AttributeValue{},
		calls:   map[string]int{},
	}
}

// Calls returns how many times op was invoked.
func (d *DynamoDB) Calls(op string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[op]
}

// Len returns the number of stored items.
func (d *DynamoDB) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.items)
}

func (d *DynamoDB) begin(op string) error {
	d.calls[op]++
	return d.Err[op]
}

func (d *DynamoDB) hashOf(key map[string]types.AttributeValue) (string, error) {
	s, ok := key[d.HashKey].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("missing string key %q", d.HashKey)
	}
	return s.Value, nil
}

func (d *DynamoDB) checkCondition(cond *string, exists bool) error {
	if cond == nil {
		return nil
	}
	c := *cond
	switch {
	case strings.Contains(c, "attribute_not_exists"):
		if exists {
			return &types.ConditionalCheckFailedException{Message: strPtr("item exists")}
		}
	case strings.Contains(c, "attribute_exists"):
		if !exists {
			return &types.ConditionalCheckFailedException{Message: strPtr("item missing")}
		}
	}
	return nil
}

// PutItem implements ddb.API.
func (d *DynamoDB) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("PutItem"); err != nil {
		return nil, err
	}
	h, err := d.hashOf(in.Item)
	if err != nil {
		return nil, err
	}
	_, exists := d.items[h]
	if err := d.checkCondition(in.ConditionExpression, exists); err != nil {
		return nil, err
	}
	d.items[h] = cloneItem(in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

// GetItem implements ddb.API.
func (d *DynamoDB) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("GetItem"); err != nil {
		return nil, err
	}
	h, err := d.hashOf(in.Key)
	if err != nil {
		return nil, err
	}
	item, ok := d.items[h]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: cloneItem(item)}, nil
}

// Scan implements ddb.API. Items are returned in hash-key order.
func (d *DynamoDB) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("Scan"); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(d.items))
	for k := range d.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	start := 0
	if in.ExclusiveStartKey != nil {
		after, err := d.hashOf(in.ExclusiveStartKey)
		if err != nil {
			return nil, err
		}
		start = sort.SearchStrings(keys, after)
		if start < len(keys) && keys[start] == after {
			start++
		}
	}
	end := len(keys)
	if in.Limit != nil && int(*in.Limit) < end-start {
		end = start + int(*in.Limit)
	}

	out := &dynamodb.ScanOutput{}
	for _, k := range keys[start:end] {
		out.Items = append(out.Items, cloneItem(d.items[k]))
	}
	out.Count = int32(len(out.Items))
	if end < len(keys) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			d.HashKey: &types.AttributeValueMemberS{Value: keys[end-1]},
		}
	}
	return out, nil
}

// DeleteItem implements ddb.API.
func (d *DynamoDB) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("DeleteItem"); err != nil {
		return nil, err
	}
	h, err := d.hashOf(in.Key)
	if err != nil {
		return nil, err
	}
	delete(d.items, h)
	return &dynamodb.DeleteItemOutput{}, nil
}

// UpdateItem implements ddb.API for "SET #a = :a, #b = :b" expressions.
func (d *DynamoDB) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.begin("UpdateItem"); err != nil {
		return nil, err
	}
	h, err := d.hashOf(in.Key)
	if err != nil {
		return nil, err
	}
	item, exists := d.items[h]
	if err := d.checkCondition(in.ConditionExpression, exists); err != nil {
		return nil, err
	}
	if in.UpdateExpression == nil {
		return nil, errors.New("missing update expression")
	}
	expr := strings.TrimSpace(*in.UpdateExpression)
	if !strings.HasPrefix(expr, "SET ") {
		return nil, fmt.Errorf("unsupported update expression %q", expr)
	}
	if !exists {
		item = map[string]types.AttributeValue{d.HashKey: &types.AttributeValueMemberS{Value: h}}
	} else {
		item = cloneItem(item)
	}
	for _, clause := range strings.Split(strings.TrimPrefix(expr, "SET "), ",") {
		lhs, rhs, ok := strings.Cut(clause, "=")
		if !ok {
			return nil, fmt.Errorf("bad clause %q", clause)
		}
		name := strings.TrimSpace(lhs)
		if n, ok := in.ExpressionAttributeNames[name]; ok {
			name = n
		}
		val, ok := in.ExpressionAttributeValues[strings.TrimSpace(rhs)]
		if !ok {
			return nil, fmt.Errorf("missing value for %q", rhs)
		}
		item[name] = val
	}
	d.items[h] = item
	return &dynamodb.UpdateItemOutput{Attributes: cloneItem(item)}, nil
}

func cloneItem(in map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func strPtr(s string) *string { return &s }
