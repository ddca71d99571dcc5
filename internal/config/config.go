package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-isme/paperdrop-api/internal/admission"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	JWTExpires             time.Duration
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	SendGridAPIKey         string
	MailFrom               string
	MailFromName           string
	MailTo                 string
	FilenamePolicy         string
	MaxFileMB              int
	VerifyContent          bool
	BodyLimitMB            int
	RateLimitMax           int
	RateLimitWindow        time.Duration
	AdminEmail             string
	AdminPassword          string
	AdminName              string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// MaxFileBytes is the largest accepted submission file.
func (c Config) MaxFileBytes() int64 {
	return int64(c.MaxFileMB) * 1024 * 1024
}

// JSONBodyLimit caps every request body that is not a multipart upload.
func (c Config) JSONBodyLimit() int {
	return c.BodyLimitMB * 1024 * 1024
}

// RequestBodyLimit is the fiber body limit; it must leave room for a full-size upload plus multipart framing.
func (c Config) RequestBodyLimit() int {
	limit := c.BodyLimitMB
	if upload := c.MaxFileMB + 1; upload > limit {
		limit = upload
	}
	return limit * 1024 * 1024
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PAPERDROP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "PaperDrop API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("jwt.expires", "1h")
	v.SetDefault("cloudinary.folder", "paperdrop/submissions")
	v.SetDefault("mail.from_name", "PaperDrop")
	v.SetDefault("submission.filename_policy", admission.PolicyCJK)
	v.SetDefault("submission.max_file_mb", 20)
	v.SetDefault("submission.verify_content", true)
	v.SetDefault("http.body_limit_mb", 10)
	v.SetDefault("rate_limit.max", 100)
	v.SetDefault("rate_limit.window", "15m")
	v.SetDefault("admin.name", "Administrator")

	expires, err := parseDuration(v.GetString("jwt.expires"), time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid jwt expiry: %w", err)
	}

	window, err := parseDuration(v.GetString("rate_limit.window"), 15*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid rate limit window: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		JWTExpires:             expires,
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		SendGridAPIKey:         v.GetString("sendgrid.api_key"),
		MailFrom:               v.GetString("mail.from"),
		MailFromName:           v.GetString("mail.from_name"),
		MailTo:                 v.GetString("mail.to"),
		FilenamePolicy:         strings.ToLower(strings.TrimSpace(v.GetString("submission.filename_policy"))),
		MaxFileMB:              v.GetInt("submission.max_file_mb"),
		VerifyContent:          v.GetBool("submission.verify_content"),
		BodyLimitMB:            v.GetInt("http.body_limit_mb"),
		RateLimitMax:           v.GetInt("rate_limit.max"),
		RateLimitWindow:        window,
		AdminEmail:             strings.ToLower(strings.TrimSpace(v.GetString("admin.email"))),
		AdminPassword:          v.GetString("admin.password"),
		AdminName:              v.GetString("admin.name"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if _, err := admission.PolicyFor(cfg.FilenamePolicy); err != nil {
		return Config{}, err
	}

	if cfg.MaxFileMB <= 0 {
		cfg.MaxFileMB = 20
	}

	if cfg.BodyLimitMB <= 0 {
		cfg.BodyLimitMB = 10
	}

	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = 100
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}
