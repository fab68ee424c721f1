package permission

import (
	"context"
	"errors"
	"fmt"

	"github.com/trip-planner-api/internal/domain"
)

// Service answers "may this user do that on this trip" questions. It owns no
// state; every check reads the membership table.
type Service interface {
	Member(ctx context.Context, tripID, userID string) (*domain.Member, error)
	RequireMember(ctx context.Context, tripID, userID string) (*domain.Member, error)
	RequireOrganizer(ctx context.Context, tripID, userID string) error
	CanAddEvent(ctx context.Context, trip *domain.Trip, userID string) error
	CanModifyEvent(ctx context.Context, trip *domain.Trip, event *domain.Event, userID string) error
}

type memberStore interface {
	GetByTripAndUser(ctx context.Context, tripID, userID string) (*domain.Member, error)
}

type service struct {
	members memberStore
}

type ServiceDeps struct {
	MemberRepo memberStore
}

func NewService(deps ServiceDeps) Service {
	return &service{members: deps.MemberRepo}
}

func (s *service) Member(ctx context.Context, tripID, userID string) (*domain.Member, error) {
	return s.members.GetByTripAndUser(ctx, tripID, userID)
}

func (s *service) RequireMember(ctx context.Context, tripID, userID string) (*domain.Member, error) {
	m, err := s.members.GetByTripAndUser(ctx, tripID, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("not a member of trip %s: %w", tripID, domain.ErrForbidden)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) RequireOrganizer(ctx context.Context, tripID, userID string) error {
	m, err := s.RequireMember(ctx, tripID, userID)
	if err != nil {
		return err
	}
	if !m.IsOrganizer {
		return fmt.Errorf("organizer role required on trip %s: %w", tripID, domain.ErrForbidden)
	}
	return nil
}

// CanAddEvent allows organizers always, and plain members only when the trip
// has opted in to member-added events.
func (s *service) CanAddEvent(ctx context.Context, trip *domain.Trip, userID string) error {
	m, err := s.RequireMember(ctx, trip.TripID, userID)
	if err != nil {
		return err
	}
	if m.IsOrganizer || trip.AllowMembersToAddEvents {
		return nil
	}
	return fmt.Errorf("members may not add events on trip %s: %w", trip.TripID, domain.ErrForbidden)
}

// CanModifyEvent allows the event's creator and trip organizers.
func (s *service) CanModifyEvent(ctx context.Context, trip *domain.Trip, event *domain.Event, userID string) error {
	if event.CreatedBy == userID {
		return nil
	}
	return s.RequireOrganizer(ctx, trip.TripID, userID)
}
