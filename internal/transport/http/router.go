package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/trip-planner-api/internal/application/accommodation"
	"github.com/trip-planner-api/internal/application/auth"
	"github.com/trip-planner-api/internal/application/event"
	"github.com/trip-planner-api/internal/application/invitation"
	"github.com/trip-planner-api/internal/application/member"
	"github.com/trip-planner-api/internal/application/message"
	"github.com/trip-planner-api/internal/application/notification"
	"github.com/trip-planner-api/internal/application/permission"
	"github.com/trip-planner-api/internal/application/trip"
	"github.com/trip-planner-api/internal/application/user"
	"github.com/trip-planner-api/internal/config"
	"github.com/trip-planner-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/trip-planner-api/internal/infrastructure/jwt"
	s3infra "github.com/trip-planner-api/internal/infrastructure/s3"
	"github.com/trip-planner-api/internal/transport/http/handler"
	appmiddleware "github.com/trip-planner-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo          *dynamo.UserRepo
	TripRepo          *dynamo.TripRepo
	EventRepo         *dynamo.EventRepo
	AccommodationRepo *dynamo.AccommodationRepo
	MemberRepo        *dynamo.MemberRepo
	InvitationRepo    *dynamo.InvitationRepo
	MessageRepo       *dynamo.MessageRepo
	NotificationRepo  *dynamo.NotificationRepo
	PreferenceRepo    *dynamo.PreferenceRepo
	S3Store           *s3infra.Store
	BatchSender       notification.BatchSender
	JWTProvider       *jwtinfra.Provider
}

// NewRouter builds and returns the application router. It also returns the
// notification service so the caller can wire the scheduler and batch worker
// onto the same fan-out path the handlers use.
func NewRouter(cfg *config.Config, deps *Deps) (http.Handler, notification.Service) {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second with a burst of 10 on the public auth endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	permSvc := permission.NewService(permission.ServiceDeps{MemberRepo: deps.MemberRepo})
	notifSvc := notification.NewService(notification.ServiceDeps{
		NotificationRepo: deps.NotificationRepo,
		MemberRepo:       deps.MemberRepo,
		PreferenceRepo:   deps.PreferenceRepo,
		BatchSender:      deps.BatchSender,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:    deps.UserRepo,
		JWTProvider: deps.JWTProvider,
	})
	userSvc := user.NewService(user.ServiceDeps{UserRepo: deps.UserRepo})
	tripDeps := trip.ServiceDeps{
		TripRepo:        deps.TripRepo,
		MemberRepo:      deps.MemberRepo,
		Permissions:     permSvc,
		Notifications:   notifSvc,
		ContentTypeFunc: s3infra.DetectContentType,
	}
	if deps.S3Store != nil {
		tripDeps.PhotoStore = deps.S3Store
	}
	tripSvc := trip.NewService(tripDeps)
	eventSvc := event.NewService(event.ServiceDeps{
		EventRepo:     deps.EventRepo,
		TripRepo:      deps.TripRepo,
		Permissions:   permSvc,
		Notifications: notifSvc,
	})
	accommodationSvc := accommodation.NewService(accommodation.ServiceDeps{
		AccommodationRepo: deps.AccommodationRepo,
		TripRepo:          deps.TripRepo,
		Permissions:       permSvc,
	})
	memberSvc := member.NewService(member.ServiceDeps{
		MemberRepo:    deps.MemberRepo,
		Permissions:   permSvc,
		Notifications: notifSvc,
	})
	invitationSvc := invitation.NewService(invitation.ServiceDeps{
		InvitationRepo: deps.InvitationRepo,
		MemberRepo:     deps.MemberRepo,
		UserRepo:       deps.UserRepo,
		Permissions:    permSvc,
		Notifications:  notifSvc,
	})
	messageSvc := message.NewService(message.ServiceDeps{
		MessageRepo:   deps.MessageRepo,
		TripRepo:      deps.TripRepo,
		UserRepo:      deps.UserRepo,
		Permissions:   permSvc,
		Notifications: notifSvc,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	userH := handler.NewUserHandler(userSvc)
	tripH := handler.NewTripHandler(tripSvc)
	eventH := handler.NewEventHandler(eventSvc)
	accommodationH := handler.NewAccommodationHandler(accommodationSvc)
	memberH := handler.NewMemberHandler(memberSvc)
	invitationH := handler.NewInvitationHandler(invitationSvc)
	messageH := handler.NewMessageHandler(messageSvc)
	notifH := handler.NewNotificationHandler(notifSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/register", authH.Register)
		r.With(sensitiveRL.Limit).Post("/auth/login", authH.Login)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/me", userH.GetMe)
			r.Put("/me", userH.UpdateMe)
			r.Get("/users/{id}", userH.Get)

			r.Post("/trips", tripH.Create)
			r.Get("/trips", tripH.List)
			r.Get("/trips/{tripID}", tripH.Get)
			r.Put("/trips/{tripID}", tripH.Update)
			r.Delete("/trips/{tripID}", tripH.Cancel)
			r.Post("/trips/{tripID}/cover-photo", tripH.UploadCoverPhoto)

			r.Post("/trips/{tripID}/events", eventH.Create)
			r.Get("/trips/{tripID}/events", eventH.List)
			r.Get("/trips/{tripID}/events/{eventID}", eventH.Get)
			r.Put("/trips/{tripID}/events/{eventID}", eventH.Update)
			r.Delete("/trips/{tripID}/events/{eventID}", eventH.Delete)

			r.Post("/trips/{tripID}/accommodations", accommodationH.Create)
			r.Get("/trips/{tripID}/accommodations", accommodationH.List)
			r.Get("/trips/{tripID}/accommodations/{accommodationID}", accommodationH.Get)
			r.Put("/trips/{tripID}/accommodations/{accommodationID}", accommodationH.Update)
			r.Delete("/trips/{tripID}/accommodations/{accommodationID}", accommodationH.Delete)
			r.Post("/trips/{tripID}/accommodations/{accommodationID}/restore", accommodationH.Restore)

			r.Get("/trips/{tripID}/members", memberH.List)
			r.Put("/trips/{tripID}/members/rsvp", memberH.UpdateRSVP)
			r.Delete("/trips/{tripID}/members/me", memberH.Leave)
			r.Delete("/trips/{tripID}/members/{userID}", memberH.Remove)

			r.Post("/trips/{tripID}/invitations", invitationH.Create)
			r.Get("/trips/{tripID}/invitations", invitationH.ListByTrip)
			r.Get("/invitations", invitationH.ListMine)
			r.Post("/invitations/{invitationID}/accept", invitationH.Accept)
			r.Post("/invitations/{invitationID}/decline", invitationH.Decline)

			r.Post("/trips/{tripID}/messages", messageH.Create)
			r.Get("/trips/{tripID}/messages", messageH.List)
			r.Delete("/trips/{tripID}/messages/{messageID}", messageH.Delete)

			r.Get("/notifications", notifH.List)
			r.Get("/notifications/unread-count", notifH.UnreadCount)
			r.Put("/notifications/read-all", notifH.MarkAllRead)
			r.Put("/notifications/{notificationID}/read", notifH.MarkRead)
			r.Get("/trips/{tripID}/notification-preferences", notifH.GetPreferences)
			r.Put("/trips/{tripID}/notification-preferences", notifH.UpdatePreferences)
		})
	})

	return r, notifSvc
}
