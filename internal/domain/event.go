package domain

import "time"

const (
	EventTypeTravel   = "travel"
	EventTypeMeal     = "meal"
	EventTypeActivity = "activity"
)

// Event start/end times are UTC instants; conversion into the trip's
// timezone happens only at scheduling and rendering time.
type Event struct {
	EventID     string     `json:"id" dynamodbav:"event_id"`
	TripID      string     `json:"trip_id" dynamodbav:"trip_id"`
	CreatedBy   string     `json:"created_by" dynamodbav:"created_by"`
	Name        string     `json:"name" dynamodbav:"name"`
	Description string     `json:"description,omitempty" dynamodbav:"description"`
	EventType   string     `json:"event_type" dynamodbav:"event_type"`
	Location    string     `json:"location,omitempty" dynamodbav:"location"`
	StartTime   time.Time  `json:"start_time" dynamodbav:"start_time,unixtime"`
	EndTime     *time.Time `json:"end_time,omitempty" dynamodbav:"end_time,omitempty"`
	AllDay      bool       `json:"all_day" dynamodbav:"all_day"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at,omitempty"`
	DeletedBy   string     `json:"deleted_by,omitempty" dynamodbav:"deleted_by"`
	CreatedAt   time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" dynamodbav:"updated_at"`
}

func (e *Event) Deleted() bool { return e.DeletedAt != nil }

type CreateEventRequest struct {
	Name        string     `json:"name" validate:"required,max=255"`
	Description string     `json:"description"`
	EventType   string     `json:"event_type" validate:"required,oneof=travel meal activity"`
	Location    string     `json:"location"`
	StartTime   time.Time  `json:"start_time" validate:"required"`
	EndTime     *time.Time `json:"end_time"`
	AllDay      bool       `json:"all_day"`
}

type UpdateEventRequest struct {
	Name        *string    `json:"name" validate:"omitempty,max=255"`
	Description *string    `json:"description"`
	EventType   *string    `json:"event_type" validate:"omitempty,oneof=travel meal activity"`
	Location    *string    `json:"location"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	AllDay      *bool      `json:"all_day"`
}
