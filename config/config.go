package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Port           string
	AllowedOrigins []string
	AdminToken     string

	Database   DatabaseConfig
	Tournament TournamentConfig
	Uploads    UploadConfig
	R2         R2Config
	Sheets     SheetsConfig
	KillFeed   KillFeedConfig
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type TournamentConfig struct {
	SquadsPerRoom   int
	StrictKillInput bool
}

type UploadConfig struct {
	TmpDir                      string
	SweepInterval               time.Duration
	LeaderboardSnapshotInterval time.Duration
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	CDNBaseURL      string
}

// Enabled reports whether enough R2 settings are present to publish objects.
func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.AccessKeySecret != "" && c.Bucket != ""
}

type SheetsConfig struct {
	CredentialsJSON string
}

func (c SheetsConfig) Enabled() bool {
	return c.CredentialsJSON != ""
}

// KillFeedConfig points at an external feed of per-map kill counts that is
// polled and applied like a bulk sync.
type KillFeedConfig struct {
	URL          string
	Token        string
	PollInterval time.Duration
}

func (c KillFeedConfig) Enabled() bool {
	return c.URL != ""
}

// Load reads .env (if present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", DriverPostgres))
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" && driver == DriverSQLite {
		dsn = "tournament.db"
	}

	return &Config{
		Port:           getEnv("PORT", "5200"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		AdminToken:     os.Getenv("ADMIN_TOKEN"),
		Database: DatabaseConfig{
			Driver: driver,
			DSN:    dsn,
		},
		Tournament: TournamentConfig{
			SquadsPerRoom:   getEnvInt("SQUADS_PER_ROOM", 12),
			StrictKillInput: getEnvBool("STRICT_KILL_INPUT", false),
		},
		Uploads: UploadConfig{
			TmpDir:                      getEnv("UPLOAD_TMP_DIR", filepath.Join(os.TempDir(), "ff-imports")),
			SweepInterval:               getEnvDuration("TMP_SWEEP_INTERVAL", 15*time.Minute),
			LeaderboardSnapshotInterval: getEnvDuration("LEADERBOARD_SNAPSHOT_INTERVAL", 0),
		},
		R2: R2Config{
			AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			AccessKeySecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
			Bucket:          os.Getenv("R2_BUCKET_NAME"),
			CDNBaseURL:      os.Getenv("CDN_BASE_URL"),
		},
		Sheets: SheetsConfig{
			CredentialsJSON: os.Getenv("GOOGLE_CREDENTIALS_JSON"),
		},
		KillFeed: KillFeedConfig{
			URL:          os.Getenv("KILL_FEED_URL"),
			Token:        os.Getenv("KILL_FEED_TOKEN"),
			PollInterval: getEnvDuration("KILL_FEED_POLL_INTERVAL", 30*time.Second),
		},
	}
}

// Validate returns an error naming every missing or malformed required setting.
func (c *Config) Validate() error {
	var problems []string
	if c.AdminToken == "" {
		problems = append(problems, "ADMIN_TOKEN is required")
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.DSN == "" {
			problems = append(problems, "DATABASE_URL is required for the postgres driver")
		}
	case DriverSQLite:
	default:
		problems = append(problems, fmt.Sprintf("DB_DRIVER %q is not supported (postgres, sqlite)", c.Database.Driver))
	}
	if c.Tournament.SquadsPerRoom <= 0 {
		problems = append(problems, "SQUADS_PER_ROOM must be positive")
	}
	if c.KillFeed.Enabled() && c.KillFeed.PollInterval <= 0 {
		problems = append(problems, "KILL_FEED_POLL_INTERVAL must be positive when KILL_FEED_URL is set")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("⚠️  %s=%q is not an integer, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("⚠️  %s=%q is not a boolean, using %t", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("⚠️  %s=%q is not a duration, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
