package member

import (
	"context"
	"log/slog"

	"github.com/trip-planner-api/internal/domain"
)

type Service interface {
	ListByTrip(ctx context.Context, tripID, userID string) ([]domain.Member, error)
	UpdateRSVP(ctx context.Context, tripID, userID, status string) (*domain.Member, error)
	Leave(ctx context.Context, tripID, userID string) error
	Remove(ctx context.Context, tripID, targetUserID, actorID string) error
}

type memberStore interface {
	GetByTripAndUser(ctx context.Context, tripID, userID string) (*domain.Member, error)
	ListByTrip(ctx context.Context, tripID string) ([]domain.Member, error)
	UpdateStatus(ctx context.Context, tripID, userID, status string) error
	Delete(ctx context.Context, tripID, userID string) error
}

type permissionChecker interface {
	RequireMember(ctx context.Context, tripID, userID string) (*domain.Member, error)
	RequireOrganizer(ctx context.Context, tripID, userID string) error
}

type notifier interface {
	CreateDefaultPreferences(ctx context.Context, userID, tripID string) error
}

type service struct {
	members       memberStore
	perms         permissionChecker
	notifications notifier
}

type ServiceDeps struct {
	MemberRepo    memberStore
	Permissions   permissionChecker
	Notifications notifier
}

func NewService(deps ServiceDeps) Service {
	return &service{
		members:       deps.MemberRepo,
		perms:         deps.Permissions,
		notifications: deps.Notifications,
	}
}

func (s *service) ListByTrip(ctx context.Context, tripID, userID string) ([]domain.Member, error) {
	if _, err := s.perms.RequireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return s.members.ListByTrip(ctx, tripID)
}

// UpdateRSVP changes the caller's own status. A transition to "going" lazily
// creates the member's default notification preferences for this trip.
func (s *service) UpdateRSVP(ctx context.Context, tripID, userID, status string) (*domain.Member, error) {
	m, err := s.perms.RequireMember(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	wasGoing := m.Status == domain.RSVPGoing
	if err := s.members.UpdateStatus(ctx, tripID, userID, status); err != nil {
		return nil, err
	}
	if status == domain.RSVPGoing && !wasGoing {
		if err := s.notifications.CreateDefaultPreferences(ctx, userID, tripID); err != nil {
			slog.Warn("default preference insert failed", "trip_id", tripID, "user_id", userID, "err", err)
		}
	}
	return s.members.GetByTripAndUser(ctx, tripID, userID)
}

func (s *service) Leave(ctx context.Context, tripID, userID string) error {
	m, err := s.perms.RequireMember(ctx, tripID, userID)
	if err != nil {
		return err
	}
	if m.IsOrganizer {
		return domain.ErrForbidden
	}
	return s.members.Delete(ctx, tripID, userID)
}

func (s *service) Remove(ctx context.Context, tripID, targetUserID, actorID string) error {
	if err := s.perms.RequireOrganizer(ctx, tripID, actorID); err != nil {
		return err
	}
	target, err := s.members.GetByTripAndUser(ctx, tripID, targetUserID)
	if err != nil {
		return err
	}
	if target.IsOrganizer {
		return domain.ErrForbidden
	}
	return s.members.Delete(ctx, tripID, targetUserID)
}
