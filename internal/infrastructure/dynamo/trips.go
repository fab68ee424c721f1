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

// TripRepo provides typed DynamoDB operations for the trips table.
type TripRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewTripRepo(client *dynamodb.Client, tableName string) *TripRepo {
	return &TripRepo{client: client, tableName: tableName}
}

func (r *TripRepo) Put(ctx context.Context, t *domain.Trip) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal trip: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *TripRepo) Get(ctx context.Context, tripID string) (*domain.Trip, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("trip_id", tripID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("trip %s: %w", tripID, domain.ErrNotFound)
	}
	var t domain.Trip
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListActive scans for non-cancelled trips. The daily itinerary pass further
// requires both dates to be set; that check stays in the scheduler.
func (r *TripRepo) ListActive(ctx context.Context) ([]domain.Trip, error) {
	var trips []domain.Trip
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(r.tableName),
			FilterExpression: aws.String("cancelled = :f"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":f": &types.AttributeValueMemberBOOL{Value: false},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Trip
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		trips = append(trips, page...)
		if out.LastEvaluatedKey == nil {
			return trips, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *TripRepo) Update(ctx context.Context, tripID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	expr, names, values, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("trip_id", tripID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	return err
}

func (r *TripRepo) Cancel(ctx context.Context, tripID string) error {
	return r.Update(ctx, tripID, map[string]interface{}{"cancelled": true})
}
