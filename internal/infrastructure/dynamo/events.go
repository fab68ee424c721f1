package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/trip-planner-api/internal/domain"
)

// EventRepo provides typed DynamoDB operations for the events table.
type EventRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewEventRepo(client *dynamodb.Client, tableName string) *EventRepo {
	return &EventRepo{client: client, tableName: tableName}
}

func (r *EventRepo) Put(ctx context.Context, e *domain.Event) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *EventRepo) Get(ctx context.Context, eventID string) (*domain.Event, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("event_id", eventID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("event %s: %w", eventID, domain.ErrNotFound)
	}
	var e domain.Event
	if err := attributevalue.UnmarshalMap(out.Item, &e); err != nil {
		return nil, err
	}
	if e.Deleted() {
		return nil, fmt.Errorf("event %s: %w", eventID, domain.ErrNotFound)
	}
	return &e, nil
}

// ListByTrip returns the trip's events ordered by start time ascending.
// Soft-deleted events are filtered out.
func (r *EventRepo) ListByTrip(ctx context.Context, tripID string) ([]domain.Event, error) {
	var events []domain.Event
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String("trip_id-start_time-index"),
			KeyConditionExpression: aws.String("trip_id = :t"),
			FilterExpression:       aws.String("attribute_not_exists(deleted_at)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":t": &types.AttributeValueMemberS{Value: tripID},
			},
			ScanIndexForward:  aws.Bool(true),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Event
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		events = append(events, page...)
		if out.LastEvaluatedKey == nil {
			return events, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// ListStartingBetween returns timed events whose start falls in [from, to],
// across all trips. All-day and soft-deleted events are excluded. start_time
// is stored as a unix timestamp so the range compares numerically.
func (r *EventRepo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Event, error) {
	var events []domain.Event
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName: aws.String(r.tableName),
			FilterExpression: aws.String(
				"start_time BETWEEN :from AND :to AND all_day = :f AND attribute_not_exists(deleted_at)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":from": &types.AttributeValueMemberN{Value: strconv.FormatInt(from.Unix(), 10)},
				":to":   &types.AttributeValueMemberN{Value: strconv.FormatInt(to.Unix(), 10)},
				":f":    &types.AttributeValueMemberBOOL{Value: false},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Event
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		events = append(events, page...)
		if out.LastEvaluatedKey == nil {
			return events, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *EventRepo) Update(ctx context.Context, eventID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	expr, names, values, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("event_id", eventID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	return err
}

func (r *EventRepo) SoftDelete(ctx context.Context, eventID, deletedBy string) error {
	return r.Update(ctx, eventID, map[string]interface{}{
		"deleted_at": time.Now().UTC().Format(time.RFC3339),
		"deleted_by": deletedBy,
	})
}
