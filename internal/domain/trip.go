package domain

import "time"

// Trip dates are stored as YYYY-MM-DD strings interpreted in the trip's
// preferred timezone. A trip without both dates never qualifies for the
// daily itinerary digest.
type Trip struct {
	TripID                 string    `json:"id" dynamodbav:"trip_id"`
	Name                   string    `json:"name" dynamodbav:"name"`
	Destination            string    `json:"destination" dynamodbav:"destination"`
	StartDate              string    `json:"start_date,omitempty" dynamodbav:"start_date"`
	EndDate                string    `json:"end_date,omitempty" dynamodbav:"end_date"`
	PreferredTimezone      string    `json:"preferred_timezone" dynamodbav:"preferred_timezone"`
	Description            string    `json:"description,omitempty" dynamodbav:"description"`
	CoverPhotoURL          string    `json:"cover_photo_url,omitempty" dynamodbav:"cover_photo_url"`
	CreatedBy              string    `json:"created_by" dynamodbav:"created_by"`
	AllowMembersToAddEvents bool     `json:"allow_members_to_add_events" dynamodbav:"allow_members_to_add_events"`
	Cancelled              bool      `json:"cancelled" dynamodbav:"cancelled"`
	CreatedAt              time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt              time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

type CreateTripRequest struct {
	Name                    string `json:"name" validate:"required,max=100"`
	Destination             string `json:"destination" validate:"required"`
	StartDate               string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate                 string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	PreferredTimezone       string `json:"preferred_timezone" validate:"required,max=100"`
	Description             string `json:"description"`
	AllowMembersToAddEvents *bool  `json:"allow_members_to_add_events"`
}

type UpdateTripRequest struct {
	Name                    *string `json:"name" validate:"omitempty,max=100"`
	Destination             *string `json:"destination"`
	StartDate               *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate                 *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	PreferredTimezone       *string `json:"preferred_timezone" validate:"omitempty,max=100"`
	Description             *string `json:"description"`
	AllowMembersToAddEvents *bool   `json:"allow_members_to_add_events"`
}
