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

// InvitationRepo provides typed DynamoDB operations for the invitations table.
type InvitationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewInvitationRepo(client *dynamodb.Client, tableName string) *InvitationRepo {
	return &InvitationRepo{client: client, tableName: tableName}
}

func (r *InvitationRepo) Put(ctx context.Context, inv *domain.Invitation) error {
	item, err := attributevalue.MarshalMap(inv)
	if err != nil {
		return fmt.Errorf("marshal invitation: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *InvitationRepo) Get(ctx context.Context, invitationID string) (*domain.Invitation, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("invitation_id", invitationID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("invitation %s: %w", invitationID, domain.ErrNotFound)
	}
	var inv domain.Invitation
	if err := attributevalue.UnmarshalMap(out.Item, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvitationRepo) ListByTrip(ctx context.Context, tripID string) ([]domain.Invitation, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("trip_id-index"),
		KeyConditionExpression: aws.String("trip_id = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberS{Value: tripID},
		},
	})
	if err != nil {
		return nil, err
	}
	var invs []domain.Invitation
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &invs); err != nil {
		return nil, err
	}
	return invs, nil
}

// ListPendingByPhone returns open invitations addressed to a phone number.
// Used when a new user registers so their pending invites surface immediately.
func (r *InvitationRepo) ListPendingByPhone(ctx context.Context, phone string) ([]domain.Invitation, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("invitee_phone-index"),
		KeyConditionExpression: aws.String("invitee_phone = :p"),
		FilterExpression:       aws.String("#s = :pending"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p":       &types.AttributeValueMemberS{Value: phone},
			":pending": &types.AttributeValueMemberS{Value: domain.InvitationPending},
		},
	})
	if err != nil {
		return nil, err
	}
	var invs []domain.Invitation
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &invs); err != nil {
		return nil, err
	}
	return invs, nil
}

// FindOpen returns a pending invitation for the phone on this trip, if any.
func (r *InvitationRepo) FindOpen(ctx context.Context, tripID, phone string) (*domain.Invitation, error) {
	invs, err := r.ListPendingByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	for i := range invs {
		if invs[i].TripID == tripID {
			return &invs[i], nil
		}
	}
	return nil, fmt.Errorf("invitation for %s on trip %s: %w", phone, tripID, domain.ErrNotFound)
}

// UpdateStatus transitions an invitation and stamps the response time.
func (r *InvitationRepo) UpdateStatus(ctx context.Context, invitationID, status string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              strKey("invitation_id", invitationID),
		UpdateExpression: aws.String("SET #s = :s, responded_at = :r, updated_at = :u"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s": &types.AttributeValueMemberS{Value: status},
			":r": &types.AttributeValueMemberS{Value: now},
			":u": &types.AttributeValueMemberS{Value: now},
		},
		ConditionExpression: aws.String("attribute_exists(invitation_id)"),
	})
	return err
}
