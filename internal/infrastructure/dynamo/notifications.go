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

// NotificationRepo provides typed DynamoDB operations for the notifications table.
type NotificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewNotificationRepo(client *dynamodb.Client, tableName string) *NotificationRepo {
	return &NotificationRepo{client: client, tableName: tableName}
}

func (r *NotificationRepo) Put(ctx context.Context, n *domain.Notification) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *NotificationRepo) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("notification_id", notificationID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
	}
	var n domain.Notification
	if err := attributevalue.UnmarshalMap(out.Item, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListByUser returns a page of the user's notifications, newest first.
// unreadOnly and tripID narrow the page; cursor paginates ("" for the first page).
func (r *NotificationRepo) ListByUser(ctx context.Context, userID string, limit int32, cursor string, unreadOnly bool, tripID string) ([]domain.Notification, string, error) {
	startKey, err := decodeCursor(cursor)
	if err != nil {
		return nil, "", fmt.Errorf("bad cursor: %w", domain.ErrBadRequest)
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-created_at-index"),
		KeyConditionExpression: aws.String("user_id = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward:  aws.Bool(false),
		Limit:             aws.Int32(limit),
		ExclusiveStartKey: startKey,
	}

	var filters []string
	if unreadOnly {
		filters = append(filters, "attribute_not_exists(read_at)")
	}
	if tripID != "" {
		filters = append(filters, "trip_id = :t")
		input.ExpressionAttributeValues[":t"] = &types.AttributeValueMemberS{Value: tripID}
	}
	if len(filters) == 1 {
		input.FilterExpression = aws.String(filters[0])
	} else if len(filters) == 2 {
		input.FilterExpression = aws.String(filters[0] + " AND " + filters[1])
	}

	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var ns []domain.Notification
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &ns); err != nil {
		return nil, "", err
	}
	next, err := encodeCursor(out.LastEvaluatedKey)
	if err != nil {
		return nil, "", err
	}
	return ns, next, nil
}

// UnreadCount counts the user's unread notifications, optionally for one trip.
func (r *NotificationRepo) UnreadCount(ctx context.Context, userID, tripID string) (int, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-created_at-index"),
		KeyConditionExpression: aws.String("user_id = :u"),
		FilterExpression:       aws.String("attribute_not_exists(read_at)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: userID},
		},
		Select: types.SelectCount,
	}
	if tripID != "" {
		input.FilterExpression = aws.String("attribute_not_exists(read_at) AND trip_id = :t")
		input.ExpressionAttributeValues[":t"] = &types.AttributeValueMemberS{Value: tripID}
	}

	count := 0
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return 0, err
		}
		count += int(out.Count)
		if out.LastEvaluatedKey == nil {
			return count, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              strKey("notification_id", notificationID),
		UpdateExpression: aws.String("SET read_at = :r"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":r": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_exists(notification_id)"),
	})
	return err
}

// MarkAllRead marks every unread notification for the user (optionally scoped
// to a trip) as read. DynamoDB has no update-where, so this queries unread IDs
// and updates them one by one.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID, tripID string) (int, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-created_at-index"),
		KeyConditionExpression: aws.String("user_id = :u"),
		FilterExpression:       aws.String("attribute_not_exists(read_at)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: userID},
		},
	}
	if tripID != "" {
		input.FilterExpression = aws.String("attribute_not_exists(read_at) AND trip_id = :t")
		input.ExpressionAttributeValues[":t"] = &types.AttributeValueMemberS{Value: tripID}
	}

	marked := 0
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return marked, err
		}
		var page []domain.Notification
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return marked, err
		}
		for i := range page {
			if err := r.MarkRead(ctx, page[i].NotificationID); err != nil {
				return marked, err
			}
			marked++
		}
		if out.LastEvaluatedKey == nil {
			return marked, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}
