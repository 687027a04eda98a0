package dynamorepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/leadvet/prospectval/internal/model"
)

// DynamoRepository is a DynamoDB implementation of RecordRepository
type DynamoRepository struct {
	client    *dynamodb.Client
	tableName string
}

// NewDynamoRepository creates a new DynamoDB-backed repository
func NewDynamoRepository(client *dynamodb.Client, tableName string) *DynamoRepository {
	return &DynamoRepository{
		client:    client,
		tableName: tableName,
	}
}

func (r *DynamoRepository) marshalRecord(rec *model.ValidationRecord) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(FromDomain(rec))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal validation record: %w", err)
	}
	return item, nil
}

// Store saves a validation record to DynamoDB.
// Uses the domain as the PK and the check time as the SK.
func (r *DynamoRepository) Store(ctx context.Context, rec *model.ValidationRecord) error {
	if rec == nil {
		return fmt.Errorf("validation record cannot be nil")
	}

	item, err := r.marshalRecord(rec)
	if err != nil {
		return err
	}

	// Use ConditionExpression to ensure the item doesn't already exist.
	// This matches the behavior of MemoryRepository.Store which returns
	// ErrAlreadyExists.
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(pk) AND attribute_not_exists(sk)"),
	})

	if err != nil {
		var ccfe *types.ConditionalCheckFailedException
		if errors.As(err, &ccfe) {
			return model.ErrAlreadyExists
		}
		return fmt.Errorf("failed to store validation record: %w", err)
	}

	return nil
}

// UnconditionalStore saves a validation record to DynamoDB, replacing any
// existing item with the same domain and check time
func (r *DynamoRepository) UnconditionalStore(ctx context.Context, rec *model.ValidationRecord) error {
	if rec == nil {
		return fmt.Errorf("validation record cannot be nil")
	}

	item, err := r.marshalRecord(rec)
	if err != nil {
		return err
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to store validation record: %w", err)
	}

	return nil
}

// Get retrieves a validation record by domain and check time from DynamoDB
func (r *DynamoRepository) Get(ctx context.Context, domain string, checkedAt time.Time) (*model.ValidationRecord, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: domain},
			"sk": &types.AttributeValueMemberS{Value: model.TimeKey(checkedAt)},
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get validation record: %w", err)
	}

	if result.Item == nil {
		return nil, model.ErrNotFound
	}

	var dto DynamoDTO
	if err := attributevalue.UnmarshalMap(result.Item, &dto); err != nil {
		return nil, fmt.Errorf("failed to unmarshal validation record: %w", err)
	}

	return dto.ToDomain(), nil
}

// ListByDomain retrieves one domain's validation records, newest first.
// The SK is lexically time-ordered, so a descending key-condition query
// returns records in reverse check order.
func (r *DynamoRepository) ListByDomain(ctx context.Context, domain string) ([]*model.ValidationRecord, error) {
	var records []*model.ValidationRecord

	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("pk = :domain"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":domain": &types.AttributeValueMemberS{Value: domain},
		},
		ScanIndexForward: aws.Bool(false),
	}

	for {
		result, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query validation records: %w", err)
		}

		for _, item := range result.Items {
			var dto DynamoDTO
			if err := attributevalue.UnmarshalMap(item, &dto); err != nil {
				return nil, fmt.Errorf("failed to unmarshal validation record: %w", err)
			}
			records = append(records, dto.ToDomain())
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	return records, nil
}

// List retrieves all validation records from DynamoDB, newest first
func (r *DynamoRepository) List(ctx context.Context) ([]*model.ValidationRecord, error) {
	var records []*model.ValidationRecord

	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	}

	for {
		result, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan validation records: %w", err)
		}

		for _, item := range result.Items {
			var dto DynamoDTO
			if err := attributevalue.UnmarshalMap(item, &dto); err != nil {
				return nil, fmt.Errorf("failed to unmarshal validation record: %w", err)
			}
			records = append(records, dto.ToDomain())
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	model.SortRecords(records, "")
	return records, nil
}

// Delete removes a validation record by domain and check time from DynamoDB
func (r *DynamoRepository) Delete(ctx context.Context, domain string, checkedAt time.Time) error {
	// Use ConditionExpression to ensure the item exists before deleting.
	// This matches the behavior of MemoryRepository.Delete which returns
	// ErrNotFound.
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: domain},
			"sk": &types.AttributeValueMemberS{Value: model.TimeKey(checkedAt)},
		},
		ConditionExpression: aws.String("attribute_exists(pk) AND attribute_exists(sk)"),
	})

	if err != nil {
		var ccfe *types.ConditionalCheckFailedException
		if errors.As(err, &ccfe) {
			return model.ErrNotFound
		}
		return fmt.Errorf("failed to delete validation record: %w", err)
	}

	return nil
}
