// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"
)

// Secure storage providers.
const (
	SecureStorageKeyring = "keyring"
	SecureStorageKMS     = "kms"
)

// Logging decorator placement in the repository pipeline.
const (
	LogDecoratorOuter = "outer"
	LogDecoratorInner = "inner"
)

// Config holds all application configuration.
type Config struct {
	// DBPath is the filesystem path of the SQLite database.
	DBPath string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBBusyTimeout is how long SQLite waits on a locked database before failing.
	DBBusyTimeout time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// SecureStorageProvider selects where the master key lives ("keyring" or "kms").
	SecureStorageProvider string
	// KeyringService is the service name used for OS credential store entries.
	KeyringService string
	// EncryptionKeyName is the entry name of the master key inside secure storage.
	EncryptionKeyName string
	// KMSKeyURI is the gocloud.dev secrets URI sealing the key file (kms provider only).
	KMSKeyURI string
	// SecureStorageDir is the directory holding sealed key files (kms provider only).
	SecureStorageDir string

	// LegacyKeyFile is the dotenv file that may still carry a plaintext ENCRYPTION_KEY.
	LegacyKeyFile string
	// LegacyKeyEnv is the environment variable that may still carry a plaintext key.
	LegacyKeyEnv string

	// CacheTTL is how long decrypted entities stay cached.
	CacheTTL time.Duration
	// CacheSize is the maximum number of cached entries.
	CacheSize int

	// AuditWriteTimeout bounds a single audit append against storage.
	AuditWriteTimeout time.Duration
	// AuditSealEnabled enables the HMAC seal over each audit entry hash.
	AuditSealEnabled bool
	// AuditVerifyOnStartup runs a full chain verification when the app starts.
	AuditVerifyOnStartup bool
	// AuditReads also records successful reads of sensitive fields.
	AuditReads bool

	// LogDecoratorPosition places the logging decorator "outer" or "inner" in the pipeline.
	LogDecoratorPosition string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string

	// AdminServerHost is the host address the admin server binds to.
	AdminServerHost string
	// AdminServerPort is the port number the admin server listens on.
	AdminServerPort int

	// RateLimitEnabled indicates whether rate limiting for the admin server is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for rate limiting.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Database configuration
		DBPath:               env.GetString("DB_PATH", "casevault.db"),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 1),
		DBBusyTimeout:        env.GetDuration("DB_BUSY_TIMEOUT", 5000, time.Millisecond),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Secure storage
		SecureStorageProvider: env.GetString("SECURE_STORAGE_PROVIDER", SecureStorageKeyring),
		KeyringService:        env.GetString("KEYRING_SERVICE", "casevault"),
		EncryptionKeyName:     env.GetString("ENCRYPTION_KEY_NAME", "master-encryption-key"),
		KMSKeyURI:             env.GetString("KMS_KEY_URI", ""),
		SecureStorageDir:      env.GetString("SECURE_STORAGE_DIR", ".casevault"),

		// Legacy key sources
		LegacyKeyFile: env.GetString("LEGACY_KEY_FILE", ".env"),
		LegacyKeyEnv:  env.GetString("LEGACY_KEY_ENV", "ENCRYPTION_KEY"),

		// Cache
		CacheTTL:  env.GetDuration("CACHE_TTL_SECONDS", 300, time.Second),
		CacheSize: env.GetInt("CACHE_SIZE", 1024),

		// Audit
		AuditWriteTimeout:    env.GetDuration("AUDIT_WRITE_TIMEOUT_SECONDS", 5, time.Second),
		AuditSealEnabled:     env.GetBool("AUDIT_SEAL_ENABLED", true),
		AuditVerifyOnStartup: env.GetBool("AUDIT_VERIFY_ON_STARTUP", false),
		AuditReads:           env.GetBool("AUDIT_READS", false),

		// Repository pipeline
		LogDecoratorPosition: env.GetString("LOG_DECORATOR_POSITION", LogDecoratorOuter),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "casevault"),

		// Admin server
		AdminServerHost: env.GetString("ADMIN_SERVER_HOST", "127.0.0.1"),
		AdminServerPort: env.GetInt("ADMIN_SERVER_PORT", 8090),

		// Rate Limiting
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),
	}
}

// Validate checks the values that select behavior at startup.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DBPath, validation.Required),
		validation.Field(&c.DBMaxOpenConnections, validation.Min(1)),
		validation.Field(&c.SecureStorageProvider,
			validation.Required,
			validation.In(SecureStorageKeyring, SecureStorageKMS),
		),
		validation.Field(&c.EncryptionKeyName, validation.Required),
		validation.Field(&c.KMSKeyURI,
			validation.When(c.SecureStorageProvider == SecureStorageKMS, validation.Required),
		),
		validation.Field(&c.LogDecoratorPosition,
			validation.In(LogDecoratorOuter, LogDecoratorInner),
		),
		validation.Field(&c.CacheSize, validation.Min(1)),
	)
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
