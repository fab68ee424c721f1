package permission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trip-planner-api/internal/domain"
)

type mockMemberStore struct{ mock.Mock }

func (m *mockMemberStore) GetByTripAndUser(ctx context.Context, tripID, userID string) (*domain.Member, error) {
	args := m.Called(ctx, tripID, userID)
	if mem, _ := args.Get(0).(*domain.Member); mem != nil {
		return mem, args.Error(1)
	}
	return nil, args.Error(1)
}

func newSvc(ms *mockMemberStore) Service {
	return NewService(ServiceDeps{MemberRepo: ms})
}

func TestRequireMember_NotFoundBecomesForbidden(t *testing.T) {
	ms := &mockMemberStore{}
	ms.On("GetByTripAndUser", mock.Anything, "trip-1", "mallory").Return(nil, domain.ErrNotFound)

	_, err := newSvc(ms).RequireMember(context.Background(), "trip-1", "mallory")
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRequireOrganizer_PlainMemberRejected(t *testing.T) {
	ms := &mockMemberStore{}
	ms.On("GetByTripAndUser", mock.Anything, "trip-1", "bob").
		Return(&domain.Member{TripID: "trip-1", UserID: "bob"}, nil)

	err := newSvc(ms).RequireOrganizer(context.Background(), "trip-1", "bob")
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCanAddEvent_MemberAllowedWhenTripOptsIn(t *testing.T) {
	ms := &mockMemberStore{}
	ms.On("GetByTripAndUser", mock.Anything, "trip-1", "bob").
		Return(&domain.Member{TripID: "trip-1", UserID: "bob"}, nil)

	trip := &domain.Trip{TripID: "trip-1", AllowMembersToAddEvents: true}
	require.NoError(t, newSvc(ms).CanAddEvent(context.Background(), trip, "bob"))
}

func TestCanAddEvent_MemberRejectedWhenTripOptsOut(t *testing.T) {
	ms := &mockMemberStore{}
	ms.On("GetByTripAndUser", mock.Anything, "trip-1", "bob").
		Return(&domain.Member{TripID: "trip-1", UserID: "bob"}, nil)

	trip := &domain.Trip{TripID: "trip-1", AllowMembersToAddEvents: false}
	err := newSvc(ms).CanAddEvent(context.Background(), trip, "bob")
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCanAddEvent_OrganizerAlwaysAllowed(t *testing.T) {
	ms := &mockMemberStore{}
	ms.On("GetByTripAndUser", mock.Anything, "trip-1", "alice").
		Return(&domain.Member{TripID: "trip-1", UserID: "alice", IsOrganizer: true}, nil)

	trip := &domain.Trip{TripID: "trip-1", AllowMembersToAddEvents: false}
	require.NoError(t, newSvc(ms).CanAddEvent(context.Background(), trip, "alice"))
}

func TestCanModifyEvent_CreatorAllowedWithoutLookup(t *testing.T) {
	ms := &mockMemberStore{}
	trip := &domain.Trip{TripID: "trip-1"}
	event := &domain.Event{EventID: "ev-1", TripID: "trip-1", CreatedBy: "bob"}

	require.NoError(t, newSvc(ms).CanModifyEvent(context.Background(), trip, event, "bob"))
	ms.AssertNotCalled(t, "GetByTripAndUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestCanModifyEvent_OtherMemberNeedsOrganizer(t *testing.T) {
	ms := &mockMemberStore{}
	ms.On("GetByTripAndUser", mock.Anything, "trip-1", "carol").
		Return(&domain.Member{TripID: "trip-1", UserID: "carol"}, nil)

	trip := &domain.Trip{TripID: "trip-1"}
	event := &domain.Event{EventID: "ev-1", TripID: "trip-1", CreatedBy: "bob"}
	err := newSvc(ms).CanModifyEvent(context.Background(), trip, event, "carol")
	require.ErrorIs(t, err, domain.ErrForbidden)
}
