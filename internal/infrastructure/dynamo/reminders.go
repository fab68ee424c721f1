package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/trip-planner-api/internal/domain"
)

// ReminderRepo is the delivery ledger. Each row records that one reminder
// occurrence was delivered to one user; rows are written once and never
// changed, so the scheduler can re-scan overlapping windows safely.
type ReminderRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewReminderRepo(client *dynamodb.Client, tableName string) *ReminderRepo {
	return &ReminderRepo{client: client, tableName: tableName}
}

func dedupKey(reminderType, referenceID, userID string) string {
	return reminderType + "#" + referenceID + "#" + userID
}

// IsSent reports whether the (type, referenceID, userID) triple is already in
// the ledger.
func (r *ReminderRepo) IsSent(ctx context.Context, reminderType, referenceID, userID string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("dedup_key", dedupKey(reminderType, referenceID, userID)),
	})
	if err != nil {
		return false, err
	}
	return out.Item != nil, nil
}

// RecordSent inserts the ledger row. The conditional put makes the insert
// first-writer-wins: when another process already recorded the same triple,
// RecordSent returns (false, nil) and the caller treats it as a no-op.
func (r *ReminderRepo) RecordSent(ctx context.Context, reminderType, referenceID, userID string) (bool, error) {
	item, err := attributevalue.MarshalMap(&domain.SentReminder{
		DedupKey:    dedupKey(reminderType, referenceID, userID),
		Type:        reminderType,
		ReferenceID: referenceID,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("marshal reminder: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(dedup_key)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
