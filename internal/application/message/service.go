package message

import (
	"context"
	"log/slog"
	"time"

	"github.com/trip-planner-api/internal/domain"
	"github.com/trip-planner-api/internal/pkg/id"
)

// Preview length for the trip_message notification body.
const previewLimit = 100

type Service interface {
	Create(ctx context.Context, tripID, authorID string, req domain.CreateMessageRequest) (*domain.Message, error)
	ListByTrip(ctx context.Context, tripID, userID string, limit int32, cursor string) ([]domain.Message, string, error)
	Delete(ctx context.Context, tripID, messageID, userID string) error
}

type messageStore interface {
	Put(ctx context.Context, m *domain.Message) error
	Get(ctx context.Context, messageID string) (*domain.Message, error)
	ListByTrip(ctx context.Context, tripID string, limit int32, cursor string) ([]domain.Message, string, error)
	SoftDelete(ctx context.Context, messageID string) error
}

type tripStore interface {
	Get(ctx context.Context, tripID string) (*domain.Trip, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type permissionChecker interface {
	RequireMember(ctx context.Context, tripID, userID string) (*domain.Member, error)
	RequireOrganizer(ctx context.Context, tripID, userID string) error
}

type notifier interface {
	NotifyTripMembers(ctx context.Context, batch *domain.NotificationBatch) error
}

type service struct {
	messages      messageStore
	trips         tripStore
	users         userStore
	perms         permissionChecker
	notifications notifier
}

type ServiceDeps struct {
	MessageRepo   messageStore
	TripRepo      tripStore
	UserRepo      userStore
	Permissions   permissionChecker
	Notifications notifier
}

func NewService(deps ServiceDeps) Service {
	return &service{
		messages:      deps.MessageRepo,
		trips:         deps.TripRepo,
		users:         deps.UserRepo,
		perms:         deps.Permissions,
		notifications: deps.Notifications,
	}
}

// Create posts a message and notifies the other going members. The author is
// excluded from the fan-out so people don't get pinged by their own posts.
func (s *service) Create(ctx context.Context, tripID, authorID string, req domain.CreateMessageRequest) (*domain.Message, error) {
	if _, err := s.perms.RequireMember(ctx, tripID, authorID); err != nil {
		return nil, err
	}
	t, err := s.trips.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	m := &domain.Message{
		MessageID: id.New(),
		TripID:    tripID,
		AuthorID:  authorID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.messages.Put(ctx, m); err != nil {
		return nil, err
	}

	author, err := s.users.Get(ctx, authorID)
	authorName := authorID
	if err == nil {
		authorName = author.DisplayName
	}
	err = s.notifications.NotifyTripMembers(ctx, &domain.NotificationBatch{
		TripID:        tripID,
		Type:          domain.NotificationTripMessage,
		Title:         t.Name,
		Body:          authorName + ": " + preview(req.Content),
		Data:          map[string]interface{}{"tripId": tripID, "messageId": m.MessageID},
		ExcludeUserID: authorID,
	})
	if err != nil {
		slog.Warn("message fan-out failed", "trip_id", tripID, "message_id", m.MessageID, "err", err)
	}
	return m, nil
}

func (s *service) ListByTrip(ctx context.Context, tripID, userID string, limit int32, cursor string) ([]domain.Message, string, error) {
	if _, err := s.perms.RequireMember(ctx, tripID, userID); err != nil {
		return nil, "", err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.messages.ListByTrip(ctx, tripID, limit, cursor)
}

// Delete soft-deletes a message. Authors may delete their own; organizers may
// delete any message on their trip.
func (s *service) Delete(ctx context.Context, tripID, messageID, userID string) error {
	m, err := s.messages.Get(ctx, messageID)
	if err != nil {
		return err
	}
	if m.TripID != tripID {
		return domain.ErrNotFound
	}
	if m.AuthorID != userID {
		if err := s.perms.RequireOrganizer(ctx, tripID, userID); err != nil {
			return err
		}
	}
	return s.messages.SoftDelete(ctx, messageID)
}

// preview truncates on rune boundaries so multi-byte characters are never
// split mid-sequence.
func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLimit {
		return content
	}
	return string(runes[:previewLimit-3]) + "..."
}
