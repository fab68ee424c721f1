package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/trip-planner-api/internal/domain"
)

// AccommodationRepo provides typed DynamoDB operations for the
// accommodations table.
type AccommodationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAccommodationRepo(client *dynamodb.Client, tableName string) *AccommodationRepo {
	return &AccommodationRepo{client: client, tableName: tableName}
}

func (r *AccommodationRepo) Put(ctx context.Context, a *domain.Accommodation) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal accommodation: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *AccommodationRepo) Get(ctx context.Context, accommodationID string) (*domain.Accommodation, error) {
	a, err := r.GetIncludingDeleted(ctx, accommodationID)
	if err != nil {
		return nil, err
	}
	if a.Deleted() {
		return nil, fmt.Errorf("accommodation %s: %w", accommodationID, domain.ErrNotFound)
	}
	return a, nil
}

// GetIncludingDeleted returns the row even when soft-deleted. Used by the
// restore path.
func (r *AccommodationRepo) GetIncludingDeleted(ctx context.Context, accommodationID string) (*domain.Accommodation, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("accommodation_id", accommodationID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("accommodation %s: %w", accommodationID, domain.ErrNotFound)
	}
	var a domain.Accommodation
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByTrip returns the trip's non-deleted accommodations.
func (r *AccommodationRepo) ListByTrip(ctx context.Context, tripID string) ([]domain.Accommodation, error) {
	var accommodations []domain.Accommodation
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String("trip_id-index"),
			KeyConditionExpression: aws.String("trip_id = :t"),
			FilterExpression:       aws.String("attribute_not_exists(deleted_at)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":t": &types.AttributeValueMemberS{Value: tripID},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Accommodation
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		accommodations = append(accommodations, page...)
		if out.LastEvaluatedKey == nil {
			return accommodations, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *AccommodationRepo) Update(ctx context.Context, accommodationID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	expr, names, values, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("accommodation_id", accommodationID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	return err
}

func (r *AccommodationRepo) SoftDelete(ctx context.Context, accommodationID, deletedBy string) error {
	return r.Update(ctx, accommodationID, map[string]interface{}{
		"deleted_at": time.Now().UTC().Format(time.RFC3339),
		"deleted_by": deletedBy,
	})
}

// Restore clears the soft-delete markers so the row is visible again.
func (r *AccommodationRepo) Restore(ctx context.Context, accommodationID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              strKey("accommodation_id", accommodationID),
		UpdateExpression: aws.String("SET updated_at = :u REMOVE deleted_at, deleted_by"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	return err
}
