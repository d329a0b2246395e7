// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/Thomas-Sedhom/LMS/internal/app/clients/openai"
	"github.com/Thomas-Sedhom/LMS/internal/app/clients/smsotp"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the LMS.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: LMS_MONGO_URI, LMS_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "lms", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	// Redis
	{Name: "redis_addr", Default: "localhost:6379", Desc: "Redis address (host:port)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis logical database"},

	// Token signing
	{Name: "jwt_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "JWT signing secret (must be strong in production)"},
	{Name: "state_hash_key", Default: "dev-only-oauth-state-key-0123456789ABCDE", Desc: "OAuth state cookie signing key"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded files"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local files"},

	// S3/CloudFront configuration
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "lms/", Desc: "S3 key prefix"},
	{Name: "storage_cf_url", Default: "", Desc: "CloudFront distribution URL"},
	{Name: "storage_cf_keypair_id", Default: "", Desc: "CloudFront key pair ID"},
	{Name: "storage_cf_key_path", Default: "", Desc: "Path to CloudFront private key file"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@lms.local", Desc: "From email address"},
	{Name: "mail_from_name", Default: "LMS", Desc: "From display name"},

	// Phone verification (Twilio Verify)
	{Name: "twilio_base_url", Default: smsotp.DefaultBaseURL, Desc: "Twilio Verify API root"},
	{Name: "twilio_account_sid", Default: "", Desc: "Twilio account SID"},
	{Name: "twilio_auth_token", Default: "", Desc: "Twilio auth token"},
	{Name: "twilio_verify_sid", Default: "", Desc: "Twilio Verify service SID"},

	// Video host
	{Name: "video_host_base_url", Default: "https://dev.vdocipher.com/api/videos", Desc: "Video host API root"},
	{Name: "video_host_api_secret", Default: "", Desc: "Video host API secret"},

	// AI provider
	{Name: "ai_base_url", Default: openai.DefaultBaseURL, Desc: "AI provider API root"},
	{Name: "ai_api_key", Default: "", Desc: "AI provider API key"},

	// OAuth providers
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},
	{Name: "facebook_client_id", Default: "", Desc: "Facebook OAuth2 client ID"},
	{Name: "facebook_client_secret", Default: "", Desc: "Facebook OAuth2 client secret"},

	// URLs
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Public URL of this API (OAuth callbacks)"},
	{Name: "frontend_url", Default: "http://localhost:5173", Desc: "Web client URL (post-OAuth redirects)"},

	{Name: "site_name", Default: "LMS", Desc: "Display name used in OTP emails"},

	// Verification lifetimes
	{Name: "registration_otp_expiry", Default: "10m", Desc: "How long a staged registration waits for its phone OTP"},
	{Name: "password_reset_otp_expiry", Default: "10m", Desc: "Password-reset email OTP expiry"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, LMS_* for app), and
// command-line flags, merging with precedence flags > env > files >
// defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "LMS", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),

		JWTSecret:    appValues.String("jwt_secret"),
		StateHashKey: appValues.String("state_hash_key"),

		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageCFURL:       appValues.String("storage_cf_url"),
		StorageCFKeyPairID: appValues.String("storage_cf_keypair_id"),
		StorageCFKeyPath:   appValues.String("storage_cf_key_path"),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		TwilioBaseURL:    appValues.String("twilio_base_url"),
		TwilioAccountSID: appValues.String("twilio_account_sid"),
		TwilioAuthToken:  appValues.String("twilio_auth_token"),
		TwilioVerifySID:  appValues.String("twilio_verify_sid"),

		VideoHostBaseURL:   appValues.String("video_host_base_url"),
		VideoHostAPISecret: appValues.String("video_host_api_secret"),

		AIBaseURL: appValues.String("ai_base_url"),
		AIAPIKey:  appValues.String("ai_api_key"),

		GoogleClientID:       appValues.String("google_client_id"),
		GoogleClientSecret:   appValues.String("google_client_secret"),
		FacebookClientID:     appValues.String("facebook_client_id"),
		FacebookClientSecret: appValues.String("facebook_client_secret"),

		BaseURL:     appValues.String("base_url"),
		FrontendURL: appValues.String("frontend_url"),
		SiteName:    appValues.String("site_name"),

		RegistrationOTPExpiry:  appValues.Duration("registration_otp_expiry", 10*time.Minute),
		PasswordResetOTPExpiry: appValues.Duration("password_reset_otp_expiry", 10*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// This catches configuration mistakes early, before attempting to connect
// to any backend.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret must be set")
	}
	if len(appCfg.StateHashKey) < 32 {
		return fmt.Errorf("state_hash_key must be at least 32 characters")
	}

	switch appCfg.StorageType {
	case "local":
		if appCfg.StorageLocalPath == "" {
			return fmt.Errorf("storage_local_path must be set for local storage")
		}
	case "s3":
		if appCfg.StorageS3Bucket == "" || appCfg.StorageS3Region == "" {
			return fmt.Errorf("storage_s3_bucket and storage_s3_region must be set for s3 storage")
		}
	default:
		return fmt.Errorf("storage_type must be 'local' or 's3', got %q", appCfg.StorageType)
	}

	return nil
}
