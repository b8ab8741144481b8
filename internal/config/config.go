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

	// Document store backend: "file" (default), "s3" or "dynamo".
	StoreBackend  string
	StoreFilePath string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	S3BucketName  string
	S3DocumentKey string

	DynamoTableDocument string

	// OTP delivery channel: "log" (default, echoes via the logger),
	// "email" or "sms".
	NotifyChannel string
	NotifySMSTo   string // shared destination number for the sms channel
	OTPTTL        time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion string

	AuditLogPath string // empty disables the audit trail

	AllowedOrigins []string // CORS allowed origins
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		StoreBackend:  getEnv("STORE_BACKEND", "file"),
		StoreFilePath: getEnv("STORE_FILE_PATH", "./data/user.json"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		S3BucketName:  getEnv("S3_BUCKET_NAME", "otpgate-documents"),
		S3DocumentKey: getEnv("S3_DOCUMENT_KEY", "user.json"),

		DynamoTableDocument: getEnv("DYNAMO_TABLE_DOCUMENT", "documents"),

		NotifyChannel: getEnv("NOTIFY_CHANNEL", "log"),
		NotifySMSTo:   getEnv("NOTIFY_SMS_TO", ""),
		OTPTTL:        time.Duration(getEnvInt("OTP_TTL_MINUTES", 5)) * time.Minute,

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

		AuditLogPath: getEnv("AUDIT_LOG_PATH", ""),

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
