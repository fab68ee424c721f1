package user

import (
	"context"

	"github.com/trip-planner-api/internal/domain"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldDisplayName = "display_name"
	fieldPhone       = "phone"
	fieldPhotoURL    = "photo_url"
	fieldTimezone    = "timezone"
)

type Service interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error)
	Disable(ctx context.Context, userID string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, userID string) error
}

type service struct {
	repo userStore
}

type ServiceDeps struct {
	UserRepo userStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.UserRepo}
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	if _, err := s.repo.Get(ctx, userID); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates[fieldDisplayName] = *req.DisplayName
	}
	if req.Phone != nil {
		updates[fieldPhone] = *req.Phone
	}
	if req.PhotoURL != nil {
		updates[fieldPhotoURL] = *req.PhotoURL
	}
	if req.Timezone != nil {
		updates[fieldTimezone] = *req.Timezone
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, userID, updates); err != nil {
			return nil, err
		}
	}
	return s.repo.Get(ctx, userID)
}

func (s *service) Disable(ctx context.Context, userID string) error {
	return s.repo.SoftDelete(ctx, userID)
}
