package domain

import "time"

type Message struct {
	MessageID string     `json:"id" dynamodbav:"message_id"`
	TripID    string     `json:"trip_id" dynamodbav:"trip_id"`
	AuthorID  string     `json:"author_id" dynamodbav:"author_id"`
	Content   string     `json:"content" dynamodbav:"content"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" dynamodbav:"updated_at"`
}

func (m *Message) Deleted() bool { return m.DeletedAt != nil }

type CreateMessageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}
