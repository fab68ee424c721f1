package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trip-planner-api/internal/domain"
)

// --- mocks ---

type mockEventStore struct{ mock.Mock }

func (m *mockEventStore) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Event, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]domain.Event), args.Error(1)
}
func (m *mockEventStore) ListByTrip(ctx context.Context, tripID string) ([]domain.Event, error) {
	args := m.Called(ctx, tripID)
	return args.Get(0).([]domain.Event), args.Error(1)
}

type mockTripStore struct{ mock.Mock }

func (m *mockTripStore) Get(ctx context.Context, tripID string) (*domain.Trip, error) {
	args := m.Called(ctx, tripID)
	if t, _ := args.Get(0).(*domain.Trip); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockTripStore) ListActive(ctx context.Context) ([]domain.Trip, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Trip), args.Error(1)
}

type mockMemberStore struct{ mock.Mock }

func (m *mockMemberStore) ListGoing(ctx context.Context, tripID string) ([]domain.Member, error) {
	args := m.Called(ctx, tripID)
	return args.Get(0).([]domain.Member), args.Error(1)
}

type mockPreferenceStore struct{ mock.Mock }

func (m *mockPreferenceStore) Get(ctx context.Context, userID, tripID string) (*domain.NotificationPreferences, error) {
	args := m.Called(ctx, userID, tripID)
	if p, _ := args.Get(0).(*domain.NotificationPreferences); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockLedger struct{ mock.Mock }

func (m *mockLedger) IsSent(ctx context.Context, reminderType, referenceID, userID string) (bool, error) {
	args := m.Called(ctx, reminderType, referenceID, userID)
	return args.Bool(0), args.Error(1)
}
func (m *mockLedger) RecordSent(ctx context.Context, reminderType, referenceID, userID string) (bool, error) {
	args := m.Called(ctx, reminderType, referenceID, userID)
	return args.Bool(0), args.Error(1)
}

type mockNotificationCreator struct{ mock.Mock }

func (m *mockNotificationCreator) Create(ctx context.Context, in domain.CreateNotificationInput) (*domain.Notification, error) {
	args := m.Called(ctx, in)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

type fixture struct {
	events  *mockEventStore
	trips   *mockTripStore
	members *mockMemberStore
	prefs   *mockPreferenceStore
	ledger  *mockLedger
	notifs  *mockNotificationCreator
	svc     Service
}

func newFixture() *fixture {
	f := &fixture{
		events:  &mockEventStore{},
		trips:   &mockTripStore{},
		members: &mockMemberStore{},
		prefs:   &mockPreferenceStore{},
		ledger:  &mockLedger{},
		notifs:  &mockNotificationCreator{},
	}
	f.svc = NewService(ServiceDeps{
		EventRepo:        f.events,
		TripRepo:         f.trips,
		MemberRepo:       f.members,
		PreferenceRepo:   f.prefs,
		ReminderRepo:     f.ledger,
		NotificationsSvc: f.notifs,
	})
	return f
}

func going(userID string) domain.Member {
	return domain.Member{MemberID: "m-" + userID, TripID: "trip-1", UserID: userID, Status: domain.RSVPGoing}
}

func upcomingEvent(start time.Time) domain.Event {
	return domain.Event{
		EventID:   "ev-1",
		TripID:    "trip-1",
		Name:      "Dinner at Nobu",
		EventType: domain.EventTypeMeal,
		Location:  "Nobu Malibu",
		StartTime: start,
	}
}

func sampleTrip() *domain.Trip {
	return &domain.Trip{
		TripID:            "trip-1",
		Name:              "Tokyo 2026",
		PreferredTimezone: "UTC",
		StartDate:         "2026-06-01",
		EndDate:           "2026-06-10",
	}
}

// --- event reminders ---

func TestProcessEventReminders_SendsAndRecords(t *testing.T) {
	f := newFixture()
	now := time.Date(2026, 6, 2, 12, 0, 0, 0, time.UTC)

	f.events.On("ListStartingBetween", mock.Anything, now.Add(55*time.Minute), now.Add(65*time.Minute)).
		Return([]domain.Event{upcomingEvent(now.Add(time.Hour))}, nil)
	f.trips.On("Get", mock.Anything, "trip-1").Return(sampleTrip(), nil)
	f.members.On("ListGoing", mock.Anything, "trip-1").Return([]domain.Member{going("alice")}, nil)
	f.prefs.On("Get", mock.Anything, "alice", "trip-1").Return(nil, domain.ErrNotFound)
	f.ledger.On("IsSent", mock.Anything, domain.NotificationEventReminder, "ev-1", "alice").Return(false, nil)
	f.notifs.On("Create", mock.Anything, mock.MatchedBy(func(in domain.CreateNotificationInput) bool {
		return in.UserID == "alice" &&
			in.TripID == "trip-1" &&
			in.Type == domain.NotificationEventReminder &&
			in.Title == "Tokyo 2026" &&
			in.Body == "Dinner at Nobu starts in 1 hour at Nobu Malibu" &&
			in.Data["eventId"] == "ev-1"
	})).Return(&domain.Notification{NotificationID: "n-1"}, nil)
	f.ledger.On("RecordSent", mock.Anything, domain.NotificationEventReminder, "ev-1", "alice").Return(true, nil)

	err := f.svc.ProcessEventReminders(context.Background(), now)
	require.NoError(t, err)
	f.notifs.AssertExpectations(t)
	f.ledger.AssertExpectations(t)
}

func TestProcessEventReminders_BodyWithoutLocation(t *testing.T) {
	f := newFixture()
	now := time.Date(2026, 6, 2, 12, 0, 0, 0, time.UTC)
	ev := upcomingEvent(now.Add(time.Hour))
	ev.Location = ""

	f.events.On("ListStartingBetween", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Event{ev}, nil)
	f.trips.On("Get", mock.Anything, "trip-1").Return(sampleTrip(), nil)
	f.members.On("ListGoing", mock.Anything, "trip-1").Return([]domain.Member{going("alice")}, nil)
	f.prefs.On("Get", mock.Anything, "alice", "trip-1").Return(nil, domain.ErrNotFound)
	f.ledger.On("IsSent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	f.notifs.On("Create", mock.Anything, mock.MatchedBy(func(in domain.CreateNotificationInput) bool {
		return in.Body == "Dinner at Nobu starts in 1 hour"
	})).Return(&domain.Notification{}, nil)
	f.ledger.On("RecordSent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

	require.NoError(t, f.svc.ProcessEventReminders(context.Background(), now))
	f.notifs.AssertExpectations(t)
}

func TestProcessEventReminders_SkipsAlreadySent(t *testing.T) {
	f := newFixture()
	now := time.Date(2026, 6, 2, 12, 0, 0, 0, time.UTC)

	f.events.On("ListStartingBetween", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Event{upcomingEvent(now.Add(time.Hour))}, nil)
	f.trips.On("Get", mock.Anything, "trip-1").Return(sampleTrip(), nil)
	f.members.On("ListGoing", mock.Anything, "trip-1").Return([]domain.Member{going("alice")}, nil)
	f.prefs.On("Get", mock.Anything, "alice", "trip-1").Return(nil, domain.ErrNotFound)
	f.ledger.On("IsSent", mock.Anything, domain.NotificationEventReminder, "ev-1", "alice").Return(true, nil)

	require.NoError(t, f.svc.ProcessEventReminders(context.Background(), now))
	f.notifs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.ledger.AssertNotCalled(t, "RecordSent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessEventReminders_PreferenceGates(t *testing.T) {
	f := newFixture()
	now := time.Date(2026, 6, 2, 12, 0, 0, 0, time.UTC)

	optedOut := domain.DefaultNotificationPreferences("alice", "trip-1")
	optedOut.EventReminders = false

	f.events.On("ListStartingBetween", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Event{upcomingEvent(now.Add(time.Hour))}, nil)
	f.trips.On("Get", mock.Anything, "trip-1").Return(sampleTrip(), nil)
	f.members.On("ListGoing", mock.Anything, "trip-1").Return([]domain.Member{going("alice")}, nil)
	f.prefs.On("Get", mock.Anything, "alice", "trip-1").Return(optedOut, nil)

	require.NoError(t, f.svc.ProcessEventReminders(context.Background(), now))
	f.notifs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.ledger.AssertNotCalled(t, "IsSent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessEventReminders_MissingTripSkippedSilently(t *testing.T) {
	f := newFixture()
	now := time.Date(2026, 6, 2, 12, 0, 0, 0, time.UTC)

	f.events.On("ListStartingBetween", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Event{upcomingEvent(now.Add(time.Hour))}, nil)
	f.trips.On("Get", mock.Anything, "trip-1").Return(nil, domain.ErrNotFound)

	require.NoError(t, f.svc.ProcessEventReminders(context.Background(), now))
	f.members.AssertNotCalled(t, "ListGoing", mock.Anything, mock.Anything)
}

func TestProcessEventReminders_PartialFailureIsolation(t *testing.T) {
	f := newFixture()
	now := time.Date(2026, 6, 2, 12, 0, 0, 0, time.UTC)

	f.events.On("ListStartingBetween", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Event{upcomingEvent(now.Add(time.Hour))}, nil)
	f.trips.On("Get", mock.Anything, "trip-1").Return(sampleTrip(), nil)
	f.members.On("ListGoing", mock.Anything, "trip-1").
		Return([]domain.Member{going("alice"), going("bob"), going("carol")}, nil)
	f.prefs.On("Get", mock.Anything, mock.Anything, "trip-1").Return(nil, domain.ErrNotFound)
	f.ledger.On("IsSent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

	createdFor := func(userID string) interface{} {
		return mock.MatchedBy(func(in domain.CreateNotificationInput) bool { return in.UserID == userID })
	}
	f.notifs.On("Create", mock.Anything, createdFor("alice")).Return(&domain.Notification{}, nil)
	f.notifs.On("Create", mock.Anything, createdFor("bob")).Return(nil, errors.New("storage down"))
	f.notifs.On("Create", mock.Anything, createdFor("carol")).Return(&domain.Notification{}, nil)
	f.ledger.On("RecordSent", mock.Anything, domain.NotificationEventReminder, "ev-1", "alice").Return(true, nil)
	f.ledger.On("RecordSent", mock.Anything, domain.NotificationEventReminder, "ev-1", "carol").Return(true, nil)

	require.NoError(t, f.svc.ProcessEventReminders(context.Background(), now))
	f.ledger.AssertNotCalled(t, "RecordSent", mock.Anything, domain.NotificationEventReminder, "ev-1", "bob")
	f.ledger.AssertExpectations(t)
}

func TestProcessEventReminders_TopLevelErrorPropagates(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()

	f.events.On("ListStartingBetween", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Event(nil), errors.New("scan throttled"))

	err := f.svc.ProcessEventReminders(context.Background(), now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan throttled")
}

// --- daily itineraries ---

func nyTrip() domain.Trip {
	return domain.Trip{
		TripID:            "trip-1",
		Name:              "NYC Weekend",
		PreferredTimezone: "America/New_York",
		StartDate:         "2026-06-01",
		EndDate:           "2026-06-01",
	}
}

func TestProcessDailyItineraries_LocalWindowEligibility(t *testing.T) {
	f := newFixture()
	// 11:50 UTC is 07:50 in New York, inside the send window.
	now := time.Date(2026, 6, 1, 11, 50, 0, 0, time.UTC)

	// One event at 19:00 UTC = 15:00 local on the same local day.
	ev := domain.Event{EventID: "ev-9", TripID: "trip-1", Name: "Broadway show",
		StartTime: time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC)}

	f.trips.On("ListActive", mock.Anything).Return([]domain.Trip{nyTrip()}, nil)
	f.events.On("ListByTrip", mock.Anything, "trip-1").Return([]domain.Event{ev}, nil)
	f.members.On("ListGoing", mock.Anything, "trip-1").Return([]domain.Member{going("alice")}, nil)
	f.prefs.On("Get", mock.Anything, "alice", "trip-1").Return(nil, domain.ErrNotFound)
	f.ledger.On("IsSent", mock.Anything, domain.NotificationDailyItinerary, "trip-1:2026-06-01", "alice").
		Return(false, nil)
	f.notifs.On("Create", mock.Anything, mock.MatchedBy(func(in domain.CreateNotificationInput) bool {
		return in.Type == domain.NotificationDailyItinerary &&
			in.Title == "NYC Weekend - Today's Schedule" &&
			in.Body == "1. 3:00 PM - Broadway show" &&
			in.Data["tripId"] == "trip-1"
	})).Return(&domain.Notification{}, nil)
	f.ledger.On("RecordSent", mock.Anything, domain.NotificationDailyItinerary, "trip-1:2026-06-01", "alice").
		Return(true, nil)

	require.NoError(t, f.svc.ProcessDailyItineraries(context.Background(), now))
	f.notifs.AssertExpectations(t)
	f.ledger.AssertExpectations(t)
}

func TestProcessDailyItineraries_OutsideLocalWindow(t *testing.T) {
	f := newFixture()
	// Same UTC date, five hours earlier: 06:50 UTC is 02:50 in New York.
	now := time.Date(2026, 6, 1, 6, 50, 0, 0, time.UTC)

	f.trips.On("ListActive", mock.Anything).Return([]domain.Trip{nyTrip()}, nil)

	require.NoError(t, f.svc.ProcessDailyItineraries(context.Background(), now))
	f.members.AssertNotCalled(t, "ListGoing", mock.Anything, mock.Anything)
	f.notifs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProcessDailyItineraries_OutsideDateRange(t *testing.T) {
	f := newFixture()
	// In the local morning window, but the day after the trip ends.
	now := time.Date(2026, 6, 2, 11, 50, 0, 0, time.UTC)

	f.trips.On("ListActive", mock.Anything).Return([]domain.Trip{nyTrip()}, nil)

	require.NoError(t, f.svc.ProcessDailyItineraries(context.Background(), now))
	f.notifs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProcessDailyItineraries_EmptyAgenda(t *testing.T) {
	f := newFixture()
	now := time.Date(2026, 6, 1, 11, 50, 0, 0, time.UTC)

	// The only event falls on a different local day.
	ev := domain.Event{EventID: "ev-2", TripID: "trip-1", Name: "Flight home",
		StartTime: time.Date(2026, 6, 2, 16, 0, 0, 0, time.UTC)}

	f.trips.On("ListActive", mock.Anything).Return([]domain.Trip{nyTrip()}, nil)
	f.events.On("ListByTrip", mock.Anything, "trip-1").Return([]domain.Event{ev}, nil)
	f.members.On("ListGoing", mock.Anything, "trip-1").Return([]domain.Member{going("alice")}, nil)
	f.prefs.On("Get", mock.Anything, "alice", "trip-1").Return(nil, domain.ErrNotFound)
	f.ledger.On("IsSent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	f.notifs.On("Create", mock.Anything, mock.MatchedBy(func(in domain.CreateNotificationInput) bool {
		return in.Body == "No events scheduled for today."
	})).Return(&domain.Notification{}, nil)
	f.ledger.On("RecordSent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

	require.NoError(t, f.svc.ProcessDailyItineraries(context.Background(), now))
	f.notifs.AssertExpectations(t)
}

func TestProcessDailyItineraries_NumbersMultipleEvents(t *testing.T) {
	f := newFixture()
	now := time.Date(2026, 6, 1, 11, 50, 0, 0, time.UTC)

	morning := domain.Event{EventID: "ev-a", TripID: "trip-1", Name: "Brunch",
		StartTime: time.Date(2026, 6, 1, 14, 30, 0, 0, time.UTC)} // 10:30 local
	evening := domain.Event{EventID: "ev-b", TripID: "trip-1", Name: "Broadway show",
		StartTime: time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC)} // 3:00 PM local

	f.trips.On("ListActive", mock.Anything).Return([]domain.Trip{nyTrip()}, nil)
	f.events.On("ListByTrip", mock.Anything, "trip-1").Return([]domain.Event{morning, evening}, nil)
	f.members.On("ListGoing", mock.Anything, "trip-1").Return([]domain.Member{going("alice")}, nil)
	f.prefs.On("Get", mock.Anything, "alice", "trip-1").Return(nil, domain.ErrNotFound)
	f.ledger.On("IsSent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	f.notifs.On("Create", mock.Anything, mock.MatchedBy(func(in domain.CreateNotificationInput) bool {
		return in.Body == "1. 10:30 AM - Brunch\n2. 3:00 PM - Broadway show"
	})).Return(&domain.Notification{}, nil)
	f.ledger.On("RecordSent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

	require.NoError(t, f.svc.ProcessDailyItineraries(context.Background(), now))
	f.notifs.AssertExpectations(t)
}

func TestProcessDailyItineraries_SkipsTripsWithoutDates(t *testing.T) {
	f := newFixture()
	trip := nyTrip()
	trip.EndDate = ""

	f.trips.On("ListActive", mock.Anything).Return([]domain.Trip{trip}, nil)

	require.NoError(t, f.svc.ProcessDailyItineraries(context.Background(), time.Date(2026, 6, 1, 11, 50, 0, 0, time.UTC)))
	f.events.AssertNotCalled(t, "ListByTrip", mock.Anything, mock.Anything)
}

func TestProcessDailyItineraries_BadTimezoneDoesNotHaltScan(t *testing.T) {
	f := newFixture()
	bad := nyTrip()
	bad.TripID = "trip-bad"
	bad.PreferredTimezone = "Mars/Olympus_Mons"
	good := nyTrip()

	now := time.Date(2026, 6, 1, 11, 50, 0, 0, time.UTC)

	f.trips.On("ListActive", mock.Anything).Return([]domain.Trip{bad, good}, nil)
	f.events.On("ListByTrip", mock.Anything, "trip-1").Return([]domain.Event{}, nil)
	f.members.On("ListGoing", mock.Anything, "trip-1").Return([]domain.Member{going("alice")}, nil)
	f.prefs.On("Get", mock.Anything, "alice", "trip-1").Return(nil, domain.ErrNotFound)
	f.ledger.On("IsSent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	f.notifs.On("Create", mock.Anything, mock.Anything).Return(&domain.Notification{}, nil)
	f.ledger.On("RecordSent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

	require.NoError(t, f.svc.ProcessDailyItineraries(context.Background(), now))
	f.notifs.AssertNumberOfCalls(t, "Create", 1)
}

// --- lifecycle ---

func TestStopWithoutStartIsSafe(t *testing.T) {
	f := newFixture()
	assert.NotPanics(t, func() { f.svc.Stop() })
}

func TestStartStopCycle(t *testing.T) {
	f := newFixture()
	// The immediate passes hit the mocks, so arm them permissively.
	f.events.On("ListStartingBetween", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Event{}, nil).Maybe()
	f.trips.On("ListActive", mock.Anything).Return([]domain.Trip{}, nil).Maybe()

	f.svc.Start()
	f.svc.Start() // second call is a no-op
	f.svc.Stop()
	f.svc.Stop()
}
