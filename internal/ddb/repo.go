// Package ddb provides a simple repository for interacting with DynamoDB for image records.
package ddb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kylejryan/image-upload-service/internal/metrics"
	"github.com/kylejryan/image-upload-service/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	// ErrNotFound is returned when no record exists for the requested image_id.
	ErrNotFound = errors.New("record not found")
	// ErrExists is returned when a put would overwrite an existing record.
	ErrExists = errors.New("record already exists")
)

// API is the subset of the DynamoDB client used by Repo.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// Cursor is an opaque continuation token for Scan. The empty cursor starts
// from the beginning and is returned once the table is exhausted.
type Cursor string

// Page is one batch of records returned by Scan.
type Page struct {
	Items []models.Image
	Next  Cursor
}

// Repo wraps a DynamoDB client and table name for image operations.
type Repo struct {
	DB       API
	Table    string
	PageSize int32 // optional Scan limit; 0 lets DynamoDB decide
	Observer metrics.StoreObserver
}

// Put inserts a new image record, ensuring no record with the same id exists.
func (r *Repo) Put(ctx context.Context, img models.Image) (err error) {
	defer r.observe("put", time.Now(), &err)

	item, err := attributevalue.MarshalMap(img)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", img.ImageID, err)
	}
	_, err = r.DB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &r.Table,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(image_id)"),
	})
	if isConditionFailed(err) {
		return ErrExists
	}
	return err
}

// Get fetches the record for id, returning ErrNotFound when absent.
func (r *Repo) Get(ctx context.Context, id string) (img models.Image, err error) {
	defer r.observe("get", time.Now(), &err)

	out, err := r.DB.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &r.Table,
		Key:            key(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return img, err
	}
	if len(out.Item) == 0 {
		return img, ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(out.Item, &img); err != nil {
		return img, fmt.Errorf("unmarshal %s: %w", id, err)
	}
	return img, nil
}

// Scan returns one page of records starting after cursor.
func (r *Repo) Scan(ctx context.Context, cursor Cursor) (page Page, err error) {
	defer r.observe("scan", time.Now(), &err)

	in := &dynamodb.ScanInput{TableName: &r.Table}
	if cursor != "" {
		in.ExclusiveStartKey = key(string(cursor))
	}
	if r.PageSize > 0 {
		in.Limit = aws.Int32(r.PageSize)
	}
	out, err := r.DB.Scan(ctx, in)
	if err != nil {
		return page, err
	}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &page.Items); err != nil {
		return page, fmt.Errorf("unmarshal scan page: %w", err)
	}
	if s, ok := out.LastEvaluatedKey[models.AttrImageID].(*types.AttributeValueMemberS); ok {
		page.Next = Cursor(s.Value)
	}
	return page, nil
}

// Delete removes the record for id. Deleting a missing record is not an error.
func (r *Repo) Delete(ctx context.Context, id string) (err error) {
	defer r.observe("delete", time.Now(), &err)

	_, err = r.DB.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &r.Table,
		Key:       key(id),
	})
	return err
}

// Update sets the given attributes on an existing record and returns the
// record as stored afterwards. ErrNotFound is returned if the record is gone.
func (r *Repo) Update(ctx context.Context, id string, fields map[string]any) (img models.Image, err error) {
	defer r.observe("update", time.Now(), &err)

	if len(fields) == 0 {
		return img, errors.New("update: no fields")
	}
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	var upd expression.UpdateBuilder
	for i, n := range names {
		if i == 0 {
			upd = expression.Set(expression.Name(n), expression.Value(fields[n]))
			continue
		}
		upd = upd.Set(expression.Name(n), expression.Value(fields[n]))
	}
	cond := expression.AttributeExists(expression.Name(models.AttrImageID))
	expr, err := expression.NewBuilder().WithUpdate(upd).WithCondition(cond).Build()
	if err != nil {
		return img, fmt.Errorf("build update: %w", err)
	}

	out, err := r.DB.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 &r.Table,
		Key:                       key(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if isConditionFailed(err) {
		return img, ErrNotFound
	}
	if err != nil {
		return img, err
	}
	if err := attributevalue.UnmarshalMap(out.Attributes, &img); err != nil {
		return img, fmt.Errorf("unmarshal %s: %w", id, err)
	}
	return img, nil
}

func key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		models.AttrImageID: &types.AttributeValueMemberS{Value: id},
	}
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func (r *Repo) observe(op string, start time.Time, errp *error) {
	if r.Observer == nil {
		return
	}
	err := *errp
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	r.Observer.ObserveStoreOp("dynamodb", op, time.Since(start), err)
}
