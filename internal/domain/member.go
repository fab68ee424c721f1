package domain

import "time"

// RSVP statuses. Only "going" members receive trip notifications.
const (
	RSVPGoing      = "going"
	RSVPNotGoing   = "not_going"
	RSVPMaybe      = "maybe"
	RSVPNoResponse = "no_response"
)

type Member struct {
	MemberID    string    `json:"id" dynamodbav:"member_id"`
	TripID      string    `json:"trip_id" dynamodbav:"trip_id"`
	UserID      string    `json:"user_id" dynamodbav:"user_id"`
	Status      string    `json:"status" dynamodbav:"status"`
	IsOrganizer bool      `json:"is_organizer" dynamodbav:"is_organizer"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

type UpdateRSVPRequest struct {
	Status string `json:"status" validate:"required,oneof=going not_going maybe no_response"`
}
