package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/trip-planner-api/internal/domain"
)

// Reminder timing. Event reminders fire when an event's start falls roughly
// one hour out; the window is wider than the tick so no start time can slip
// between two passes, and the ledger absorbs the overlap.
const (
	reminderTickSpec = "@every 5m"
	digestTickSpec   = "@every 15m"
	windowStart      = 55 * time.Minute
	windowEnd        = 65 * time.Minute
	tickTimeout      = 4 * time.Minute

	// Daily digest local-time send window, minutes after midnight (inclusive).
	digestWindowOpen  = 7*60 + 45
	digestWindowClose = 8*60 + 15

	emptyAgenda = "No events scheduled for today."
)

type Service interface {
	Start()
	Stop()
	ProcessEventReminders(ctx context.Context, now time.Time) error
	ProcessDailyItineraries(ctx context.Context, now time.Time) error
}

type eventStore interface {
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Event, error)
	ListByTrip(ctx context.Context, tripID string) ([]domain.Event, error)
}

type tripStore interface {
	Get(ctx context.Context, tripID string) (*domain.Trip, error)
	ListActive(ctx context.Context) ([]domain.Trip, error)
}

type memberStore interface {
	ListGoing(ctx context.Context, tripID string) ([]domain.Member, error)
}

type preferenceStore interface {
	Get(ctx context.Context, userID, tripID string) (*domain.NotificationPreferences, error)
}

type ledger interface {
	IsSent(ctx context.Context, reminderType, referenceID, userID string) (bool, error)
	RecordSent(ctx context.Context, reminderType, referenceID, userID string) (bool, error)
}

type notificationCreator interface {
	Create(ctx context.Context, in domain.CreateNotificationInput) (*domain.Notification, error)
}

type service struct {
	events        eventStore
	trips         tripStore
	members       memberStore
	prefs         preferenceStore
	ledger        ledger
	notifications notificationCreator

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
}

type ServiceDeps struct {
	EventRepo        eventStore
	TripRepo         tripStore
	MemberRepo       memberStore
	PreferenceRepo   preferenceStore
	ReminderRepo     ledger
	NotificationsSvc notificationCreator
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		events:        deps.EventRepo,
		trips:         deps.TripRepo,
		members:       deps.MemberRepo,
		prefs:         deps.PreferenceRepo,
		ledger:        deps.ReminderRepo,
		notifications: deps.NotificationsSvc,
		cron:          cron.New(),
	}
	// Jobs are registered once here so repeated Start/Stop cycles never
	// accumulate duplicate entries.
	s.cron.AddFunc(reminderTickSpec, func() { s.tick("event reminders", s.ProcessEventReminders) })
	s.cron.AddFunc(digestTickSpec, func() { s.tick("daily itineraries", s.ProcessDailyItineraries) })
	return s
}

// Start runs an immediate pass of both processes and arms the timers, so a
// restarted server does not wait a full period before its first pass.
func (s *service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	go s.tick("event reminders", s.ProcessEventReminders)
	go s.tick("daily itineraries", s.ProcessDailyItineraries)
	s.cron.Start()
	slog.Info("notification scheduler started")
}

// Stop disarms the timers. Safe to call when never started.
func (s *service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	slog.Info("notification scheduler stopped")
}

func (s *service) tick(name string, pass func(context.Context, time.Time) error) {
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()
	if err := pass(ctx, time.Now().UTC()); err != nil {
		slog.Error("scheduler pass failed", "pass", name, "err", err)
	}
}

// ProcessEventReminders notifies going members about events starting in about
// an hour. Top-level query errors propagate; everything below is best-effort.
func (s *service) ProcessEventReminders(ctx context.Context, now time.Time) error {
	events, err := s.events.ListStartingBetween(ctx, now.Add(windowStart), now.Add(windowEnd))
	if err != nil {
		return fmt.Errorf("list upcoming events: %w", err)
	}

	tripCache := map[string]*domain.Trip{}
	for i := range events {
		e := &events[i]
		trip, ok := tripCache[e.TripID]
		if !ok {
			trip, err = s.trips.Get(ctx, e.TripID)
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			if err != nil {
				slog.Error("trip load failed", "trip_id", e.TripID, "err", err)
				continue
			}
			tripCache[e.TripID] = trip
		}
		if trip.Cancelled {
			continue
		}

		members, err := s.members.ListGoing(ctx, e.TripID)
		if err != nil {
			slog.Error("member list failed", "trip_id", e.TripID, "err", err)
			continue
		}

		body := e.Name + " starts in 1 hour"
		if e.Location != "" {
			body += " at " + e.Location
		}
		for j := range members {
			err := s.deliverOnce(ctx, members[j].UserID, e.TripID,
				domain.NotificationEventReminder, e.EventID,
				trip.Name, body, map[string]interface{}{"eventId": e.EventID})
			if err != nil {
				slog.Error("event reminder failed",
					"event_id", e.EventID, "user_id", members[j].UserID, "err", err)
			}
		}
	}
	return nil
}

// ProcessDailyItineraries sends each trip's agenda for the local day, once per
// day per member, when the trip's local clock is in the morning send window.
func (s *service) ProcessDailyItineraries(ctx context.Context, now time.Time) error {
	trips, err := s.trips.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list active trips: %w", err)
	}
	for i := range trips {
		if err := s.processTripDigest(ctx, &trips[i], now); err != nil {
			slog.Error("daily itinerary failed", "trip_id", trips[i].TripID, "err", err)
		}
	}
	return nil
}

func (s *service) processTripDigest(ctx context.Context, trip *domain.Trip, now time.Time) error {
	if trip.StartDate == "" || trip.EndDate == "" {
		return nil
	}
	loc, err := time.LoadLocation(trip.PreferredTimezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", trip.PreferredTimezone, err)
	}
	local := now.In(loc)
	minute := local.Hour()*60 + local.Minute()
	if minute < digestWindowOpen || minute > digestWindowClose {
		return nil
	}
	localDate := local.Format("2006-01-02")
	if localDate < trip.StartDate || localDate > trip.EndDate {
		return nil
	}
	referenceID := trip.TripID + ":" + localDate

	events, err := s.events.ListByTrip(ctx, trip.TripID)
	if err != nil {
		return fmt.Errorf("list trip events: %w", err)
	}
	body := renderAgenda(events, loc, localDate)

	members, err := s.members.ListGoing(ctx, trip.TripID)
	if err != nil {
		return fmt.Errorf("list going members: %w", err)
	}
	title := trip.Name + " - Today's Schedule"
	for j := range members {
		err := s.deliverOnce(ctx, members[j].UserID, trip.TripID,
			domain.NotificationDailyItinerary, referenceID,
			title, body, map[string]interface{}{"tripId": trip.TripID})
		if err != nil {
			slog.Error("daily itinerary delivery failed",
				"trip_id", trip.TripID, "user_id", members[j].UserID, "err", err)
		}
	}
	return nil
}

// deliverOnce runs the per-member pipeline: preference gate, ledger check,
// notification insert, ledger record. The ledger write happens only after the
// insert succeeds, so a failed insert is retried on the next pass.
func (s *service) deliverOnce(ctx context.Context, userID, tripID, reminderType, referenceID, title, body string, data map[string]interface{}) error {
	prefs, err := s.prefs.Get(ctx, userID, tripID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("load preferences: %w", err)
	}
	if prefs != nil && !prefs.PreferenceAllows(reminderType) {
		return nil
	}

	sent, err := s.ledger.IsSent(ctx, reminderType, referenceID, userID)
	if err != nil {
		return fmt.Errorf("ledger check: %w", err)
	}
	if sent {
		return nil
	}

	_, err = s.notifications.Create(ctx, domain.CreateNotificationInput{
		UserID: userID,
		TripID: tripID,
		Type:   reminderType,
		Title:  title,
		Body:   body,
		Data:   data,
	})
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	if _, err := s.ledger.RecordSent(ctx, reminderType, referenceID, userID); err != nil {
		return fmt.Errorf("ledger record: %w", err)
	}
	return nil
}

// renderAgenda lists the day's events in start order, numbered, with times in
// the trip's local zone.
func renderAgenda(events []domain.Event, loc *time.Location, localDate string) string {
	agenda := ""
	n := 0
	for i := range events {
		start := events[i].StartTime.In(loc)
		if start.Format("2006-01-02") != localDate {
			continue
		}
		n++
		if n > 1 {
			agenda += "\n"
		}
		agenda += fmt.Sprintf("%d. %s - %s", n, start.Format("3:04 PM"), events[i].Name)
	}
	if n == 0 {
		return emptyAgenda
	}
	return agenda
}
