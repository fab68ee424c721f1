package domain

import "time"

// Notification types. The preference flag guarding each type is resolved by
// PreferenceAllows; types without a flag (e.g. trip_update) always deliver.
const (
	NotificationEventReminder  = "event_reminder"
	NotificationDailyItinerary = "daily_itinerary"
	NotificationTripMessage    = "trip_message"
	NotificationTripUpdate     = "trip_update"
)

// Notification is one delivered-to-one-user event. Created only by the
// notification service; never mutated except to set ReadAt.
type Notification struct {
	NotificationID string                 `json:"id" dynamodbav:"notification_id"`
	UserID         string                 `json:"user_id" dynamodbav:"user_id"`
	TripID         string                 `json:"trip_id,omitempty" dynamodbav:"trip_id"`
	Type           string                 `json:"type" dynamodbav:"type"`
	Title          string                 `json:"title" dynamodbav:"title"`
	Body           string                 `json:"body" dynamodbav:"body"`
	Data           map[string]interface{} `json:"data,omitempty" dynamodbav:"data"`
	ReadAt         *time.Time             `json:"read_at,omitempty" dynamodbav:"read_at,omitempty"`
	CreatedAt      time.Time              `json:"created_at" dynamodbav:"created_at"`
}

type CreateNotificationInput struct {
	UserID string
	TripID string
	Type   string
	Title  string
	Body   string
	Data   map[string]interface{}
}

// NotificationBatch is one logical fan-out to all going members of a trip.
// It is the payload handed to the batch queue when one is configured.
type NotificationBatch struct {
	TripID        string                 `json:"trip_id"`
	Type          string                 `json:"type"`
	Title         string                 `json:"title"`
	Body          string                 `json:"body"`
	Data          map[string]interface{} `json:"data,omitempty"`
	ExcludeUserID string                 `json:"exclude_user_id,omitempty"`
}

// SentReminder is a delivery-ledger entry: "this reminder occurrence was
// already delivered to this user". The (Type, ReferenceID, UserID) triple is
// unique; DedupKey is the table's partition key built from it. Entries are
// never updated or deleted.
type SentReminder struct {
	DedupKey    string    `json:"-" dynamodbav:"dedup_key"`
	Type        string    `json:"type" dynamodbav:"type"`
	ReferenceID string    `json:"reference_id" dynamodbav:"reference_id"`
	UserID      string    `json:"user_id" dynamodbav:"user_id"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
}

// NotificationPreferences holds per-user, per-trip delivery flags.
// The absence of a row means all flags are true (default opt-in).
type NotificationPreferences struct {
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	TripID         string    `json:"trip_id" dynamodbav:"trip_id"`
	EventReminders bool      `json:"event_reminders" dynamodbav:"event_reminders"`
	DailyItinerary bool      `json:"daily_itinerary" dynamodbav:"daily_itinerary"`
	TripMessages   bool      `json:"trip_messages" dynamodbav:"trip_messages"`
	UpdatedAt      time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// DefaultNotificationPreferences returns the all-true defaults used when no
// row exists for a (user, trip) pair.
func DefaultNotificationPreferences(userID, tripID string) *NotificationPreferences {
	return &NotificationPreferences{
		UserID:         userID,
		TripID:         tripID,
		EventReminders: true,
		DailyItinerary: true,
		TripMessages:   true,
	}
}

// PreferenceAllows reports whether the flags permit a notification of the
// given type. Types without a dedicated flag always deliver.
func (p *NotificationPreferences) PreferenceAllows(notificationType string) bool {
	switch notificationType {
	case NotificationEventReminder:
		return p.EventReminders
	case NotificationDailyItinerary:
		return p.DailyItinerary
	case NotificationTripMessage:
		return p.TripMessages
	default:
		return true
	}
}

type UpdatePreferencesRequest struct {
	EventReminders bool `json:"event_reminders"`
	DailyItinerary bool `json:"daily_itinerary"`
	TripMessages   bool `json:"trip_messages"`
}
