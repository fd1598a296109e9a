package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/bitvote/ledger"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	SessionSecret string
	SessionTTL    time.Duration

	AdminID           string
	OpenSignup        bool
	IdentityCacheSize int

	OAuthClientID     string
	OAuthClientSecret string
	OAuthRedirectURL  string

	LogLevel string
}

const defaultEnvFile = ".env"

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string

	fs := flag.NewFlagSet("bitvote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL (directory for pebble)")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (pebble, sqlite or postgres)")
	fs.StringVar(&envFile, "env", defaultEnvFile, "Dotenv file to load before reading the environment")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSecret, "session-secret", "", "Session signing secret (prefer env)")

	fs.StringVar(&cfg.AdminID, "admin", "", "Participant id of the bootstrap admin")
	fs.BoolVar(&cfg.OpenSignup, "open-signup", false, "Let signed-in users register themselves")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = ledger.TypePebble
		}
	}
	switch cfg.DatabaseType {
	case ledger.TypePebble, ledger.TypeSQLite, ledger.TypePostgres:
	default:
		return Config{}, fmt.Errorf("invalid database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	// Secrets - MUST be provided
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	}
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}

	cfg.SessionTTL = 12 * time.Hour
	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil || d <= 0 {
			return Config{}, errors.New("invalid SESSION_TTL env variable")
		}
		cfg.SessionTTL = d
	}

	if cfg.AdminID == "" {
		cfg.AdminID = os.Getenv("ADMIN_ID")
		if cfg.AdminID == "" {
			cfg.AdminID = "admin"
		}
	}

	if !cfg.OpenSignup {
		if v := os.Getenv("OPEN_SIGNUP"); v != "" {
			open, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, errors.New("invalid OPEN_SIGNUP env variable")
			}
			cfg.OpenSignup = open
		}
	}

	cfg.IdentityCacheSize = 1024
	if v := os.Getenv("IDENTITY_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, errors.New("invalid IDENTITY_CACHE_SIZE env variable")
		}
		cfg.IdentityCacheSize = n
	}

	// Sign-in is optional; without a client id the issuer routes answer 501
	cfg.OAuthClientID = os.Getenv("GOOGLE_CLIENT_ID")
	cfg.OAuthClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	cfg.OAuthRedirectURL = os.Getenv("OAUTH_REDIRECT_URL")

	if cfg.LogLevel == "" {
		cfg.LogLevel = os.Getenv("LOG_LEVEL")
	}

	return cfg, nil
}

// loadEnvFile loads a dotenv file without overriding variables that are
// already set. A missing default file is not an error.
func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrNotExist) && path == defaultEnvFile {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}
