package domain

import "time"

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
)

type Invitation struct {
	InvitationID string     `json:"id" dynamodbav:"invitation_id"`
	TripID       string     `json:"trip_id" dynamodbav:"trip_id"`
	InviterID    string     `json:"inviter_id" dynamodbav:"inviter_id"`
	InviteePhone string     `json:"invitee_phone" dynamodbav:"invitee_phone"`
	Status       string     `json:"status" dynamodbav:"status"`
	RespondedAt  *time.Time `json:"responded_at,omitempty" dynamodbav:"responded_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" dynamodbav:"updated_at"`
}

type CreateInvitationRequest struct {
	InviteePhone string `json:"invitee_phone" validate:"required,e164"`
}
