package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	// RabbitMQURL enables the batch fan-out queue when non-empty. When empty
	// the notification service falls back to inline synchronous fan-out.
	RabbitMQURL        string
	NotificationQueue  string

	SchedulerEnabled bool

	AllowedOrigins []string
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users          string
	Trips          string
	Events         string
	Accommodations string
	Members        string
	Invitations    string
	Messages       string
	Notifications  string
	Preferences    string
	SentReminders  string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:          getEnv("DYNAMO_TABLE_USERS", "users"),
			Trips:          getEnv("DYNAMO_TABLE_TRIPS", "trips"),
			Events:         getEnv("DYNAMO_TABLE_EVENTS", "events"),
			Accommodations: getEnv("DYNAMO_TABLE_ACCOMMODATIONS", "accommodations"),
			Members:        getEnv("DYNAMO_TABLE_MEMBERS", "members"),
			Invitations:    getEnv("DYNAMO_TABLE_INVITATIONS", "invitations"),
			Messages:       getEnv("DYNAMO_TABLE_MESSAGES", "messages"),
			Notifications:  getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			Preferences:    getEnv("DYNAMO_TABLE_NOTIFICATION_PREFERENCES", "notification_preferences"),
			SentReminders:  getEnv("DYNAMO_TABLE_SENT_REMINDERS", "sent_reminders"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "trip-planner-files"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,

		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		NotificationQueue: getEnv("NOTIFICATION_BATCH_QUEUE", "notification.batch"),

		SchedulerEnabled: getEnvBool("SCHEDULER_ENABLED", true),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
