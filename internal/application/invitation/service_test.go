package invitation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trip-planner-api/internal/domain"
)

// --- mocks ---

type mockInvitationStore struct{ mock.Mock }

func (m *mockInvitationStore) Put(ctx context.Context, inv *domain.Invitation) error {
	return m.Called(ctx, inv).Error(0)
}
func (m *mockInvitationStore) Get(ctx context.Context, invitationID string) (*domain.Invitation, error) {
	args := m.Called(ctx, invitationID)
	if inv, _ := args.Get(0).(*domain.Invitation); inv != nil {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockInvitationStore) ListByTrip(ctx context.Context, tripID string) ([]domain.Invitation, error) {
	args := m.Called(ctx, tripID)
	return args.Get(0).([]domain.Invitation), args.Error(1)
}
func (m *mockInvitationStore) ListPendingByPhone(ctx context.Context, phone string) ([]domain.Invitation, error) {
	args := m.Called(ctx, phone)
	return args.Get(0).([]domain.Invitation), args.Error(1)
}
func (m *mockInvitationStore) FindOpen(ctx context.Context, tripID, phone string) (*domain.Invitation, error) {
	args := m.Called(ctx, tripID, phone)
	if inv, _ := args.Get(0).(*domain.Invitation); inv != nil {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockInvitationStore) UpdateStatus(ctx context.Context, invitationID, status string) error {
	return m.Called(ctx, invitationID, status).Error(0)
}

type mockMemberStore struct{ mock.Mock }

func (m *mockMemberStore) GetByTripAndUser(ctx context.Context, tripID, userID string) (*domain.Member, error) {
	args := m.Called(ctx, tripID, userID)
	if mem, _ := args.Get(0).(*domain.Member); mem != nil {
		return mem, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockMemberStore) Put(ctx context.Context, mem *domain.Member) error {
	return m.Called(ctx, mem).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPermissions struct{ mock.Mock }

func (m *mockPermissions) RequireOrganizer(ctx context.Context, tripID, userID string) error {
	return m.Called(ctx, tripID, userID).Error(0)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) CreateDefaultPreferences(ctx context.Context, userID, tripID string) error {
	return m.Called(ctx, userID, tripID).Error(0)
}

// --- helpers ---

type fixture struct {
	invitations *mockInvitationStore
	members     *mockMemberStore
	users       *mockUserStore
	perms       *mockPermissions
	notifs      *mockNotifier
	svc         Service
}

func newFixture() *fixture {
	f := &fixture{
		invitations: &mockInvitationStore{},
		members:     &mockMemberStore{},
		users:       &mockUserStore{},
		perms:       &mockPermissions{},
		notifs:      &mockNotifier{},
	}
	f.svc = NewService(ServiceDeps{
		InvitationRepo: f.invitations,
		MemberRepo:     f.members,
		UserRepo:       f.users,
		Permissions:    f.perms,
		Notifications:  f.notifs,
	})
	return f
}

func pendingInvite() *domain.Invitation {
	return &domain.Invitation{
		InvitationID: "inv-1",
		TripID:       "trip-1",
		InviterID:    "alice",
		InviteePhone: "+14155550100",
		Status:       domain.InvitationPending,
	}
}

// --- tests ---

func TestCreate_OrganizerOnly(t *testing.T) {
	f := newFixture()
	f.perms.On("RequireOrganizer", mock.Anything, "trip-1", "bob").Return(domain.ErrForbidden)

	_, err := f.svc.Create(context.Background(), "trip-1", "bob",
		domain.CreateInvitationRequest{InviteePhone: "+14155550100"})
	require.ErrorIs(t, err, domain.ErrForbidden)
	f.invitations.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestCreate_DuplicatePendingConflicts(t *testing.T) {
	f := newFixture()
	f.perms.On("RequireOrganizer", mock.Anything, "trip-1", "alice").Return(nil)
	f.invitations.On("FindOpen", mock.Anything, "trip-1", "+14155550100").Return(pendingInvite(), nil)

	_, err := f.svc.Create(context.Background(), "trip-1", "alice",
		domain.CreateInvitationRequest{InviteePhone: "+14155550100"})
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreate_Succeeds(t *testing.T) {
	f := newFixture()
	f.perms.On("RequireOrganizer", mock.Anything, "trip-1", "alice").Return(nil)
	f.invitations.On("FindOpen", mock.Anything, "trip-1", "+14155550100").Return(nil, domain.ErrNotFound)
	f.invitations.On("Put", mock.Anything, mock.MatchedBy(func(inv *domain.Invitation) bool {
		return inv.TripID == "trip-1" && inv.Status == domain.InvitationPending
	})).Return(nil)

	inv, err := f.svc.Create(context.Background(), "trip-1", "alice",
		domain.CreateInvitationRequest{InviteePhone: "+14155550100"})
	require.NoError(t, err)
	require.Equal(t, domain.InvitationPending, inv.Status)
}

func TestAccept_CreatesGoingMemberAndPreferences(t *testing.T) {
	f := newFixture()
	f.invitations.On("Get", mock.Anything, "inv-1").Return(pendingInvite(), nil)
	f.users.On("Get", mock.Anything, "bob").Return(&domain.User{UserID: "bob", Phone: "+14155550100"}, nil)
	f.members.On("GetByTripAndUser", mock.Anything, "trip-1", "bob").Return(nil, domain.ErrNotFound)
	f.members.On("Put", mock.Anything, mock.MatchedBy(func(m *domain.Member) bool {
		return m.TripID == "trip-1" && m.UserID == "bob" &&
			m.Status == domain.RSVPGoing && !m.IsOrganizer
	})).Return(nil)
	f.invitations.On("UpdateStatus", mock.Anything, "inv-1", domain.InvitationAccepted).Return(nil)
	f.notifs.On("CreateDefaultPreferences", mock.Anything, "bob", "trip-1").Return(nil)

	m, err := f.svc.Accept(context.Background(), "inv-1", "bob")
	require.NoError(t, err)
	require.Equal(t, domain.RSVPGoing, m.Status)
	f.notifs.AssertExpectations(t)
}

func TestAccept_WrongPhoneForbidden(t *testing.T) {
	f := newFixture()
	f.invitations.On("Get", mock.Anything, "inv-1").Return(pendingInvite(), nil)
	f.users.On("Get", mock.Anything, "mallory").Return(&domain.User{UserID: "mallory", Phone: "+19995550000"}, nil)

	_, err := f.svc.Accept(context.Background(), "inv-1", "mallory")
	require.ErrorIs(t, err, domain.ErrForbidden)
	f.members.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestAccept_AlreadyRespondedConflicts(t *testing.T) {
	f := newFixture()
	inv := pendingInvite()
	inv.Status = domain.InvitationDeclined
	f.invitations.On("Get", mock.Anything, "inv-1").Return(inv, nil)

	_, err := f.svc.Accept(context.Background(), "inv-1", "bob")
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestDecline_Succeeds(t *testing.T) {
	f := newFixture()
	f.invitations.On("Get", mock.Anything, "inv-1").Return(pendingInvite(), nil)
	f.users.On("Get", mock.Anything, "bob").Return(&domain.User{UserID: "bob", Phone: "+14155550100"}, nil)
	f.invitations.On("UpdateStatus", mock.Anything, "inv-1", domain.InvitationDeclined).Return(nil)

	require.NoError(t, f.svc.Decline(context.Background(), "inv-1", "bob"))
	f.invitations.AssertExpectations(t)
}
