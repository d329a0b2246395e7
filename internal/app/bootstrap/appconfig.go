// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, logging, CORS); AppConfig holds
// everything specific to this application: backing stores, provider
// credentials, and token lifetimes.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Redis cache for staged registrations, OTP flags, and OAuth state
	RedisAddr     string // host:port of the Redis server
	RedisPassword string // empty when auth is disabled
	RedisDB       int    // logical database number

	// Token signing
	JWTSecret    string // HMAC secret for access and refresh tokens
	StateHashKey string // signing key for the OAuth state cookie

	// File storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files")

	// S3/CloudFront configuration (only used if StorageType is "s3")
	StorageS3Region    string // AWS region
	StorageS3Bucket    string // S3 bucket name
	StorageS3Prefix    string // Key prefix (e.g., "lms/")
	StorageCFURL       string // CloudFront distribution URL
	StorageCFKeyPairID string // CloudFront key pair ID
	StorageCFKeyPath   string // Path to CloudFront private key file

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host
	MailSMTPPort int    // SMTP server port
	MailSMTPUser string // SMTP username
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address
	MailFromName string // From display name

	// Phone verification (Twilio Verify)
	TwilioBaseURL    string // Verify API root, overridable for tests
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioVerifySID  string // Verify service SID

	// Video host
	VideoHostBaseURL   string // videos API root
	VideoHostAPISecret string

	// AI provider
	AIBaseURL string
	AIAPIKey  string

	// OAuth providers
	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string

	// URLs
	BaseURL     string // public URL of this API, used for OAuth callbacks
	FrontendURL string // web client URL, used for post-OAuth redirects

	SiteName string // display name used in OTP emails

	// Verification lifetimes
	RegistrationOTPExpiry  time.Duration // staged registration wait for the phone OTP
	PasswordResetOTPExpiry time.Duration // password-reset email OTP and verified flag
}
