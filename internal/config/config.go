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

	DynamoTables DynamoTables

	SESRegion string
	SNSRegion string

	// EmailFrom is the sender identity for all transactional mail.
	// EmailBcc is the operations mailbox copied on every send.
	EmailFromName    string
	EmailFromAddress string
	EmailBcc         string

	// InvoiceBucket receives an archive copy of each generated invoice PDF.
	InvoiceBucket string

	// PDFRenderTimeout bounds the headless-browser invoice render.
	PDFRenderTimeout time.Duration

	BaseURL        string // public site URL used in unsubscribe links
	AllowedOrigins []string
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	VerificationCodes  string
	EmailLogs          string
	UnsubscribedEmails string
	Users              string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "ap-south-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			VerificationCodes:  getEnv("DYNAMO_TABLE_VERIFICATION_CODES", "verification_codes"),
			EmailLogs:          getEnv("DYNAMO_TABLE_EMAIL_LOGS", "email_logs"),
			UnsubscribedEmails: getEnv("DYNAMO_TABLE_UNSUBSCRIBED_EMAILS", "unsubscribed_emails"),
			Users:              getEnv("DYNAMO_TABLE_USERS", "users"),
		},

		SESRegion: getEnv("SES_REGION", "ap-south-1"),
		SNSRegion: getEnv("SNS_REGION", "ap-south-1"),

		EmailFromName:    getEnv("EMAIL_FROM_NAME", "ExpertResume"),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", "support@expertresume.us"),
		EmailBcc:         getEnv("EMAIL_BCC", "support@expertresume.us"),

		InvoiceBucket: getEnv("S3_INVOICE_BUCKET", "expertresume-invoices"),

		PDFRenderTimeout: time.Duration(getEnvInt("PDF_RENDER_TIMEOUT_SECONDS", 30)) * time.Second,

		BaseURL:        getEnv("BASE_URL", "https://expertresume.us"),
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
