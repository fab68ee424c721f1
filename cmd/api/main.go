package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/trip-planner-api/internal/application/scheduler"
	"github.com/trip-planner-api/internal/config"
	"github.com/trip-planner-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/trip-planner-api/internal/infrastructure/jwt"
	"github.com/trip-planner-api/internal/infrastructure/rabbitmq"
	s3infra "github.com/trip-planner-api/internal/infrastructure/s3"
	transporthttp "github.com/trip-planner-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider is optional; auth routes are disabled without keys.
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 store for trip cover photos.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	// RabbitMQ batch queue is optional; fan-out runs inline when absent.
	var batchQueue *rabbitmq.Queue
	if cfg.RabbitMQURL != "" {
		q, err := rabbitmq.New(cfg.RabbitMQURL, cfg.NotificationQueue)
		if err != nil {
			log.Printf("WARN: RabbitMQ not available, using inline fan-out: %v", err)
		} else {
			batchQueue = q
			defer batchQueue.Close()
		}
	}

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	tripRepo := dynamo.NewTripRepo(dynamoClient, cfg.DynamoTables.Trips)
	eventRepo := dynamo.NewEventRepo(dynamoClient, cfg.DynamoTables.Events)
	accommodationRepo := dynamo.NewAccommodationRepo(dynamoClient, cfg.DynamoTables.Accommodations)
	memberRepo := dynamo.NewMemberRepo(dynamoClient, cfg.DynamoTables.Members)
	invitationRepo := dynamo.NewInvitationRepo(dynamoClient, cfg.DynamoTables.Invitations)
	messageRepo := dynamo.NewMessageRepo(dynamoClient, cfg.DynamoTables.Messages)
	notificationRepo := dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications)
	preferenceRepo := dynamo.NewPreferenceRepo(dynamoClient, cfg.DynamoTables.Preferences)
	reminderRepo := dynamo.NewReminderRepo(dynamoClient, cfg.DynamoTables.SentReminders)

	deps := &transporthttp.Deps{
		UserRepo:          userRepo,
		TripRepo:          tripRepo,
		EventRepo:         eventRepo,
		AccommodationRepo: accommodationRepo,
		MemberRepo:        memberRepo,
		InvitationRepo:    invitationRepo,
		MessageRepo:       messageRepo,
		NotificationRepo:  notificationRepo,
		PreferenceRepo:    preferenceRepo,
		S3Store:           s3Store,
		JWTProvider:       jwtProvider,
	}
	if batchQueue != nil {
		deps.BatchSender = batchQueue
	}

	router, notifSvc := transporthttp.NewRouter(cfg, deps)

	// Batch worker: drains queued fan-outs through the same delivery loop the
	// inline path uses.
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	if batchQueue != nil {
		go func() {
			if err := batchQueue.Consume(workerCtx, notifSvc.Deliver); err != nil && workerCtx.Err() == nil {
				log.Printf("WARN: batch worker stopped: %v", err)
			}
		}()
	}

	// Background notification scheduler.
	sched := scheduler.NewService(scheduler.ServiceDeps{
		EventRepo:        eventRepo,
		TripRepo:         tripRepo,
		MemberRepo:       memberRepo,
		PreferenceRepo:   preferenceRepo,
		ReminderRepo:     reminderRepo,
		NotificationsSvc: notifSvc,
	})
	if cfg.SchedulerEnabled {
		sched.Start()
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
