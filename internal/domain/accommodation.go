package domain

import "time"

// Accommodation check-in/out times are UTC instants, like event times.
type Accommodation struct {
	AccommodationID string     `json:"id" dynamodbav:"accommodation_id"`
	TripID          string     `json:"trip_id" dynamodbav:"trip_id"`
	CreatedBy       string     `json:"created_by" dynamodbav:"created_by"`
	Name            string     `json:"name" dynamodbav:"name"`
	Address         string     `json:"address,omitempty" dynamodbav:"address"`
	Description     string     `json:"description,omitempty" dynamodbav:"description"`
	CheckIn         time.Time  `json:"check_in" dynamodbav:"check_in"`
	CheckOut        time.Time  `json:"check_out" dynamodbav:"check_out"`
	Links           []string   `json:"links,omitempty" dynamodbav:"links,omitempty"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at,omitempty"`
	DeletedBy       string     `json:"deleted_by,omitempty" dynamodbav:"deleted_by"`
	CreatedAt       time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" dynamodbav:"updated_at"`
}

func (a *Accommodation) Deleted() bool { return a.DeletedAt != nil }

type CreateAccommodationRequest struct {
	Name        string    `json:"name" validate:"required,max=255"`
	Address     string    `json:"address" validate:"max=500"`
	Description string    `json:"description" validate:"max=2000"`
	CheckIn     time.Time `json:"check_in" validate:"required"`
	CheckOut    time.Time `json:"check_out" validate:"required"`
	Links       []string  `json:"links" validate:"max=10,dive,url"`
}

type UpdateAccommodationRequest struct {
	Name        *string    `json:"name" validate:"omitempty,max=255"`
	Address     *string    `json:"address" validate:"omitempty,max=500"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	CheckIn     *time.Time `json:"check_in"`
	CheckOut    *time.Time `json:"check_out"`
	Links       []string   `json:"links" validate:"omitempty,max=10,dive,url"`
}
