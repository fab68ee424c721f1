package accommodation

import (
	"context"
	"fmt"
	"time"

	"github.com/trip-planner-api/internal/domain"
	"github.com/trip-planner-api/internal/pkg/id"
)

// Each trip carries at most this many live accommodations.
const maxPerTrip = 10

// DynamoDB attribute names used in partial update maps.
const (
	fieldName        = "name"
	fieldAddress     = "address"
	fieldDescription = "description"
	fieldCheckIn     = "check_in"
	fieldCheckOut    = "check_out"
	fieldLinks       = "links"
)

type Service interface {
	Create(ctx context.Context, tripID, userID string, req domain.CreateAccommodationRequest) (*domain.Accommodation, error)
	Get(ctx context.Context, tripID, accommodationID, userID string) (*domain.Accommodation, error)
	ListByTrip(ctx context.Context, tripID, userID string) ([]domain.Accommodation, error)
	Update(ctx context.Context, tripID, accommodationID, userID string, req domain.UpdateAccommodationRequest) (*domain.Accommodation, error)
	Delete(ctx context.Context, tripID, accommodationID, userID string) error
	Restore(ctx context.Context, tripID, accommodationID, userID string) (*domain.Accommodation, error)
}

type accommodationStore interface {
	Put(ctx context.Context, a *domain.Accommodation) error
	Get(ctx context.Context, accommodationID string) (*domain.Accommodation, error)
	GetIncludingDeleted(ctx context.Context, accommodationID string) (*domain.Accommodation, error)
	ListByTrip(ctx context.Context, tripID string) ([]domain.Accommodation, error)
	Update(ctx context.Context, accommodationID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, accommodationID, deletedBy string) error
	Restore(ctx context.Context, accommodationID string) error
}

type tripStore interface {
	Get(ctx context.Context, tripID string) (*domain.Trip, error)
}

type permissionChecker interface {
	RequireMember(ctx context.Context, tripID, userID string) (*domain.Member, error)
	RequireOrganizer(ctx context.Context, tripID, userID string) error
}

type service struct {
	accommodations accommodationStore
	trips          tripStore
	perms          permissionChecker
}

type ServiceDeps struct {
	AccommodationRepo accommodationStore
	TripRepo          tripStore
	Permissions       permissionChecker
}

func NewService(deps ServiceDeps) Service {
	return &service{
		accommodations: deps.AccommodationRepo,
		trips:          deps.TripRepo,
		perms:          deps.Permissions,
	}
}

// Create adds a place to stay. Organizer only; a trip holds at most ten live
// accommodations and check-out must come after check-in.
func (s *service) Create(ctx context.Context, tripID, userID string, req domain.CreateAccommodationRequest) (*domain.Accommodation, error) {
	if _, err := s.trips.Get(ctx, tripID); err != nil {
		return nil, err
	}
	if err := s.perms.RequireOrganizer(ctx, tripID, userID); err != nil {
		return nil, err
	}
	if !req.CheckOut.After(req.CheckIn) {
		return nil, fmt.Errorf("check_out must be after check_in: %w", domain.ErrBadRequest)
	}
	existing, err := s.accommodations.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= maxPerTrip {
		return nil, fmt.Errorf("trip already has %d accommodations: %w", maxPerTrip, domain.ErrBadRequest)
	}
	now := time.Now().UTC()
	a := &domain.Accommodation{
		AccommodationID: id.New(),
		TripID:          tripID,
		CreatedBy:       userID,
		Name:            req.Name,
		Address:         req.Address,
		Description:     req.Description,
		CheckIn:         req.CheckIn.UTC(),
		CheckOut:        req.CheckOut.UTC(),
		Links:           req.Links,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.accommodations.Put(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) Get(ctx context.Context, tripID, accommodationID, userID string) (*domain.Accommodation, error) {
	if _, err := s.perms.RequireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return s.getForTrip(ctx, tripID, accommodationID)
}

func (s *service) ListByTrip(ctx context.Context, tripID, userID string) ([]domain.Accommodation, error) {
	if _, err := s.perms.RequireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return s.accommodations.ListByTrip(ctx, tripID)
}

// Update applies an organizer's partial changes. The effective check-in and
// check-out (stored value merged with the request) must stay ordered.
func (s *service) Update(ctx context.Context, tripID, accommodationID, userID string, req domain.UpdateAccommodationRequest) (*domain.Accommodation, error) {
	if err := s.perms.RequireOrganizer(ctx, tripID, userID); err != nil {
		return nil, err
	}
	a, err := s.getForTrip(ctx, tripID, accommodationID)
	if err != nil {
		return nil, err
	}
	checkIn, checkOut := a.CheckIn, a.CheckOut
	if req.CheckIn != nil {
		checkIn = req.CheckIn.UTC()
	}
	if req.CheckOut != nil {
		checkOut = req.CheckOut.UTC()
	}
	if !checkOut.After(checkIn) {
		return nil, fmt.Errorf("check_out must be after check_in: %w", domain.ErrBadRequest)
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates[fieldName] = *req.Name
	}
	if req.Address != nil {
		updates[fieldAddress] = *req.Address
	}
	if req.Description != nil {
		updates[fieldDescription] = *req.Description
	}
	if req.CheckIn != nil {
		updates[fieldCheckIn] = checkIn.Format(time.RFC3339)
	}
	if req.CheckOut != nil {
		updates[fieldCheckOut] = checkOut.Format(time.RFC3339)
	}
	if req.Links != nil {
		updates[fieldLinks] = req.Links
	}
	if len(updates) > 0 {
		if err := s.accommodations.Update(ctx, accommodationID, updates); err != nil {
			return nil, err
		}
	}
	return s.accommodations.Get(ctx, accommodationID)
}

func (s *service) Delete(ctx context.Context, tripID, accommodationID, userID string) error {
	if err := s.perms.RequireOrganizer(ctx, tripID, userID); err != nil {
		return err
	}
	if _, err := s.getForTrip(ctx, tripID, accommodationID); err != nil {
		return err
	}
	return s.accommodations.SoftDelete(ctx, accommodationID, userID)
}

// Restore brings a soft-deleted accommodation back. A live row is a no-op.
func (s *service) Restore(ctx context.Context, tripID, accommodationID, userID string) (*domain.Accommodation, error) {
	if err := s.perms.RequireOrganizer(ctx, tripID, userID); err != nil {
		return nil, err
	}
	a, err := s.accommodations.GetIncludingDeleted(ctx, accommodationID)
	if err != nil {
		return nil, err
	}
	if a.TripID != tripID {
		return nil, domain.ErrNotFound
	}
	if !a.Deleted() {
		return a, nil
	}
	if err := s.accommodations.Restore(ctx, accommodationID); err != nil {
		return nil, err
	}
	return s.accommodations.Get(ctx, accommodationID)
}

func (s *service) getForTrip(ctx context.Context, tripID, accommodationID string) (*domain.Accommodation, error) {
	a, err := s.accommodations.Get(ctx, accommodationID)
	if err != nil {
		return nil, err
	}
	if a.TripID != tripID {
		return nil, domain.ErrNotFound
	}
	return a, nil
}
