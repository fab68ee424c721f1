package invitation

import (
	"context"
	"fmt"
	"time"

	"github.com/trip-planner-api/internal/domain"
	"github.com/trip-planner-api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, tripID, inviterID string, req domain.CreateInvitationRequest) (*domain.Invitation, error)
	ListByTrip(ctx context.Context, tripID, userID string) ([]domain.Invitation, error)
	ListPendingForUser(ctx context.Context, userID string) ([]domain.Invitation, error)
	Accept(ctx context.Context, invitationID, userID string) (*domain.Member, error)
	Decline(ctx context.Context, invitationID, userID string) error
}

type invitationStore interface {
	Put(ctx context.Context, inv *domain.Invitation) error
	Get(ctx context.Context, invitationID string) (*domain.Invitation, error)
	ListByTrip(ctx context.Context, tripID string) ([]domain.Invitation, error)
	ListPendingByPhone(ctx context.Context, phone string) ([]domain.Invitation, error)
	FindOpen(ctx context.Context, tripID, phone string) (*domain.Invitation, error)
	UpdateStatus(ctx context.Context, invitationID, status string) error
}

type memberStore interface {
	GetByTripAndUser(ctx context.Context, tripID, userID string) (*domain.Member, error)
	Put(ctx context.Context, m *domain.Member) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type permissionChecker interface {
	RequireOrganizer(ctx context.Context, tripID, userID string) error
}

type notifier interface {
	CreateDefaultPreferences(ctx context.Context, userID, tripID string) error
}

type service struct {
	invitations   invitationStore
	members       memberStore
	users         userStore
	perms         permissionChecker
	notifications notifier
}

type ServiceDeps struct {
	InvitationRepo invitationStore
	MemberRepo     memberStore
	UserRepo       userStore
	Permissions    permissionChecker
	Notifications  notifier
}

func NewService(deps ServiceDeps) Service {
	return &service{
		invitations:   deps.InvitationRepo,
		members:       deps.MemberRepo,
		users:         deps.UserRepo,
		perms:         deps.Permissions,
		notifications: deps.Notifications,
	}
}

// Create issues an invitation by phone number. Only organizers may invite,
// and an open invitation for the same phone on the same trip is a conflict.
func (s *service) Create(ctx context.Context, tripID, inviterID string, req domain.CreateInvitationRequest) (*domain.Invitation, error) {
	if err := s.perms.RequireOrganizer(ctx, tripID, inviterID); err != nil {
		return nil, err
	}
	if _, err := s.invitations.FindOpen(ctx, tripID, req.InviteePhone); err == nil {
		return nil, fmt.Errorf("invitation already pending for %s: %w", req.InviteePhone, domain.ErrConflict)
	}
	now := time.Now().UTC()
	inv := &domain.Invitation{
		InvitationID: id.New(),
		TripID:       tripID,
		InviterID:    inviterID,
		InviteePhone: req.InviteePhone,
		Status:       domain.InvitationPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.invitations.Put(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *service) ListByTrip(ctx context.Context, tripID, userID string) ([]domain.Invitation, error) {
	if err := s.perms.RequireOrganizer(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return s.invitations.ListByTrip(ctx, tripID)
}

// ListPendingForUser surfaces invitations addressed to the user's phone.
func (s *service) ListPendingForUser(ctx context.Context, userID string) ([]domain.Invitation, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Phone == "" {
		return []domain.Invitation{}, nil
	}
	return s.invitations.ListPendingByPhone(ctx, u.Phone)
}

// Accept turns a pending invitation into a "going" membership and seeds the
// member's default notification preferences.
func (s *service) Accept(ctx context.Context, invitationID, userID string) (*domain.Member, error) {
	inv, err := s.resolve(ctx, invitationID, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.members.GetByTripAndUser(ctx, inv.TripID, userID); err == nil {
		return nil, fmt.Errorf("already a member of trip %s: %w", inv.TripID, domain.ErrConflict)
	}
	now := time.Now().UTC()
	m := &domain.Member{
		MemberID:  id.New(),
		TripID:    inv.TripID,
		UserID:    userID,
		Status:    domain.RSVPGoing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.members.Put(ctx, m); err != nil {
		return nil, err
	}
	if err := s.invitations.UpdateStatus(ctx, invitationID, domain.InvitationAccepted); err != nil {
		return nil, err
	}
	if err := s.notifications.CreateDefaultPreferences(ctx, userID, inv.TripID); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *service) Decline(ctx context.Context, invitationID, userID string) error {
	if _, err := s.resolve(ctx, invitationID, userID); err != nil {
		return err
	}
	return s.invitations.UpdateStatus(ctx, invitationID, domain.InvitationDeclined)
}

// resolve loads a pending invitation and checks it is addressed to the
// caller's phone number.
func (s *service) resolve(ctx context.Context, invitationID, userID string) (*domain.Invitation, error) {
	inv, err := s.invitations.Get(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if inv.Status != domain.InvitationPending {
		return nil, fmt.Errorf("invitation %s already %s: %w", invitationID, inv.Status, domain.ErrConflict)
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Phone == "" || u.Phone != inv.InviteePhone {
		return nil, fmt.Errorf("invitation %s: %w", invitationID, domain.ErrForbidden)
	}
	return inv, nil
}
