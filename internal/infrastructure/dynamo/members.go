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

// MemberRepo provides typed DynamoDB operations for the trip members table.
// The table is keyed (trip_id, user_id) so a user appears at most once per trip.
type MemberRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewMemberRepo(client *dynamodb.Client, tableName string) *MemberRepo {
	return &MemberRepo{client: client, tableName: tableName}
}

func (r *MemberRepo) Put(ctx context.Context, m *domain.Member) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("marshal member: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *MemberRepo) GetByTripAndUser(ctx context.Context, tripID, userID string) (*domain.Member, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("trip_id", tripID, "user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("member %s/%s: %w", tripID, userID, domain.ErrNotFound)
	}
	var m domain.Member
	if err := attributevalue.UnmarshalMap(out.Item, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepo) ListByTrip(ctx context.Context, tripID string) ([]domain.Member, error) {
	return r.queryByTrip(ctx, tripID, "")
}

// ListGoing returns members of the trip whose RSVP is "going".
func (r *MemberRepo) ListGoing(ctx context.Context, tripID string) ([]domain.Member, error) {
	return r.queryByTrip(ctx, tripID, domain.RSVPGoing)
}

func (r *MemberRepo) queryByTrip(ctx context.Context, tripID, status string) ([]domain.Member, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("trip_id = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberS{Value: tripID},
		},
	}
	if status != "" {
		input.FilterExpression = aws.String("#s = :s")
		input.ExpressionAttributeNames = map[string]string{"#s": "status"}
		input.ExpressionAttributeValues[":s"] = &types.AttributeValueMemberS{Value: status}
	}

	var members []domain.Member
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		var page []domain.Member
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		members = append(members, page...)
		if out.LastEvaluatedKey == nil {
			return members, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// ListByUser returns all memberships for a user across trips.
func (r *MemberRepo) ListByUser(ctx context.Context, userID string) ([]domain.Member, error) {
	var members []domain.Member
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String("user_id-index"),
			KeyConditionExpression: aws.String("user_id = :u"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":u": &types.AttributeValueMemberS{Value: userID},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Member
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		members = append(members, page...)
		if out.LastEvaluatedKey == nil {
			return members, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *MemberRepo) UpdateStatus(ctx context.Context, tripID, userID, status string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              compositeKey("trip_id", tripID, "user_id", userID),
		UpdateExpression: aws.String("SET #s = :s, updated_at = :u"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s": &types.AttributeValueMemberS{Value: status},
			":u": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_exists(trip_id)"),
	})
	return err
}

func (r *MemberRepo) Delete(ctx context.Context, tripID, userID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("trip_id", tripID, "user_id", userID),
	})
	return err
}
