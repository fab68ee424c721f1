package trip

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trip-planner-api/internal/domain"
)

// --- mocks ---

type mockTripStore struct{ mock.Mock }

func (m *mockTripStore) Put(ctx context.Context, t *domain.Trip) error {
	return m.Called(ctx, t).Error(0)
}
func (m *mockTripStore) Get(ctx context.Context, tripID string) (*domain.Trip, error) {
	args := m.Called(ctx, tripID)
	if t, _ := args.Get(0).(*domain.Trip); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockTripStore) Update(ctx context.Context, tripID string, updates map[string]interface{}) error {
	return m.Called(ctx, tripID, updates).Error(0)
}
func (m *mockTripStore) Cancel(ctx context.Context, tripID string) error {
	return m.Called(ctx, tripID).Error(0)
}

type mockMemberStore struct{ mock.Mock }

func (m *mockMemberStore) Put(ctx context.Context, mem *domain.Member) error {
	return m.Called(ctx, mem).Error(0)
}
func (m *mockMemberStore) ListByUser(ctx context.Context, userID string) ([]domain.Member, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Member), args.Error(1)
}

type mockPermissions struct{ mock.Mock }

func (m *mockPermissions) RequireMember(ctx context.Context, tripID, userID string) (*domain.Member, error) {
	args := m.Called(ctx, tripID, userID)
	if mem, _ := args.Get(0).(*domain.Member); mem != nil {
		return mem, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPermissions) RequireOrganizer(ctx context.Context, tripID, userID string) error {
	return m.Called(ctx, tripID, userID).Error(0)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) NotifyTripMembers(ctx context.Context, batch *domain.NotificationBatch) error {
	return m.Called(ctx, batch).Error(0)
}
func (m *mockNotifier) CreateDefaultPreferences(ctx context.Context, userID, tripID string) error {
	return m.Called(ctx, userID, tripID).Error(0)
}

// --- helpers ---

type fixture struct {
	trips   *mockTripStore
	members *mockMemberStore
	perms   *mockPermissions
	notifs  *mockNotifier
	svc     Service
}

func newFixture() *fixture {
	f := &fixture{
		trips:   &mockTripStore{},
		members: &mockMemberStore{},
		perms:   &mockPermissions{},
		notifs:  &mockNotifier{},
	}
	f.svc = NewService(ServiceDeps{
		TripRepo:      f.trips,
		MemberRepo:    f.members,
		Permissions:   f.perms,
		Notifications: f.notifs,
	})
	return f
}

func baseReq() domain.CreateTripRequest {
	return domain.CreateTripRequest{
		Name:              "Tokyo 2026",
		Destination:       "Tokyo",
		StartDate:         "2026-06-01",
		EndDate:           "2026-06-10",
		PreferredTimezone: "Asia/Tokyo",
	}
}

// --- tests ---

func TestCreate_EnrollsCreatorAsGoingOrganizer(t *testing.T) {
	f := newFixture()
	f.trips.On("Put", mock.Anything, mock.Anything).Return(nil)
	f.members.On("Put", mock.Anything, mock.MatchedBy(func(m *domain.Member) bool {
		return m.UserID == "alice" && m.Status == domain.RSVPGoing && m.IsOrganizer
	})).Return(nil)
	f.notifs.On("CreateDefaultPreferences", mock.Anything, "alice", mock.Anything).Return(nil)

	trip, err := f.svc.Create(context.Background(), "alice", baseReq())
	require.NoError(t, err)
	require.Equal(t, "alice", trip.CreatedBy)
	require.True(t, trip.AllowMembersToAddEvents)
	f.members.AssertExpectations(t)
}

func TestCreate_PreferenceSeedFailureDoesNotAbort(t *testing.T) {
	f := newFixture()
	f.trips.On("Put", mock.Anything, mock.Anything).Return(nil)
	f.members.On("Put", mock.Anything, mock.Anything).Return(nil)
	f.notifs.On("CreateDefaultPreferences", mock.Anything, "alice", mock.Anything).
		Return(errors.New("table throttled"))

	trip, err := f.svc.Create(context.Background(), "alice", baseReq())
	require.NoError(t, err)
	require.NotEmpty(t, trip.TripID)
}

func TestCreate_EndBeforeStartRejected(t *testing.T) {
	f := newFixture()
	req := baseReq()
	req.StartDate, req.EndDate = req.EndDate, req.StartDate

	_, err := f.svc.Create(context.Background(), "alice", req)
	require.ErrorIs(t, err, domain.ErrBadRequest)
	f.trips.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestCreate_UnknownTimezoneRejected(t *testing.T) {
	f := newFixture()
	req := baseReq()
	req.PreferredTimezone = "Mars/Olympus_Mons"

	_, err := f.svc.Create(context.Background(), "alice", req)
	require.ErrorIs(t, err, domain.ErrBadRequest)
	f.trips.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestCancel_NotifiesGoingMembers(t *testing.T) {
	f := newFixture()
	f.perms.On("RequireOrganizer", mock.Anything, "trip-1", "alice").Return(nil)
	f.trips.On("Get", mock.Anything, "trip-1").
		Return(&domain.Trip{TripID: "trip-1", Name: "Tokyo 2026"}, nil)
	f.trips.On("Cancel", mock.Anything, "trip-1").Return(nil)
	f.notifs.On("NotifyTripMembers", mock.Anything, mock.MatchedBy(func(b *domain.NotificationBatch) bool {
		return b.Type == domain.NotificationTripUpdate &&
			b.Body == "The trip was cancelled" &&
			b.ExcludeUserID == "alice"
	})).Return(nil)

	require.NoError(t, f.svc.Cancel(context.Background(), "trip-1", "alice"))
	f.notifs.AssertExpectations(t)
}
