package service

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	cryptoDomain "github.com/allisson/casevault/internal/crypto/domain"
)

// MigratedAtSuffix is appended to the variable name to record when a legacy key was moved.
const MigratedAtSuffix = "_MIGRATED_AT"

// DotEnvLegacyKeySource reads the key from a plaintext dotenv config file, the way keys
// were kept before secure storage existed.
type DotEnvLegacyKeySource struct {
	path     string
	variable string
}

// NewDotEnvLegacyKeySource creates a source reading variable from the dotenv file at path.
func NewDotEnvLegacyKeySource(path, variable string) *DotEnvLegacyKeySource {
	return &DotEnvLegacyKeySource{path: path, variable: variable}
}

// Name identifies the source in operator-facing messages.
func (s *DotEnvLegacyKeySource) Name() string {
	return "dotenv:" + s.path
}

// Load returns the decoded key, or ErrLegacyKeyNotFound when the file or variable is absent.
func (s *DotEnvLegacyKeySource) Load(ctx context.Context) ([]byte, error) {
	values, err := godotenv.Read(s.path)
	if os.IsNotExist(err) {
		return nil, cryptoDomain.ErrLegacyKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy config file: %w", err)
	}

	encoded := strings.TrimSpace(values[s.variable])
	if encoded == "" {
		return nil, cryptoDomain.ErrLegacyKeyNotFound
	}
	return DecodeLegacyKey(encoded)
}

// MarkMigrated rewrites the file without the key and records when it was migrated.
func (s *DotEnvLegacyKeySource) MarkMigrated(ctx context.Context) error {
	values, err := godotenv.Read(s.path)
	if err != nil {
		return fmt.Errorf("failed to read legacy config file: %w", err)
	}

	delete(values, s.variable)
	values[s.variable+MigratedAtSuffix] = time.Now().UTC().Format(time.RFC3339)

	if err := godotenv.Write(values, s.path); err != nil {
		return fmt.Errorf("failed to rewrite legacy config file: %w", err)
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		return fmt.Errorf("failed to restrict legacy config file: %w", err)
	}
	return nil
}

// EnvLegacyKeySource reads the key from a process environment variable. The variable is
// owned by whoever launches the process, so the source can only warn about it.
type EnvLegacyKeySource struct {
	variable string
}

// NewEnvLegacyKeySource creates a source reading the given environment variable.
func NewEnvLegacyKeySource(variable string) *EnvLegacyKeySource {
	return &EnvLegacyKeySource{variable: variable}
}

// Name identifies the source in operator-facing messages.
func (s *EnvLegacyKeySource) Name() string {
	return "env:" + s.variable
}

// Load returns the decoded key, or ErrLegacyKeyNotFound when the variable is unset.
func (s *EnvLegacyKeySource) Load(ctx context.Context) ([]byte, error) {
	encoded := strings.TrimSpace(os.Getenv(s.variable))
	if encoded == "" {
		return nil, cryptoDomain.ErrLegacyKeyNotFound
	}
	return DecodeLegacyKey(encoded)
}

// MarkMigrated clears the variable for this process only. The operator still has to
// remove it from the launch environment, which the key manager warns about.
func (s *EnvLegacyKeySource) MarkMigrated(ctx context.Context) error {
	return os.Unsetenv(s.variable)
}

// DecodeLegacyKey accepts a 64-character hex string or standard base64. Length is
// checked by the caller so a wrong-length key reports ErrInvalidKeyLength.
func DecodeLegacyKey(encoded string) ([]byte, error) {
	if len(encoded) == 2*cryptoDomain.KeySize {
		if raw, err := hex.DecodeString(encoded); err == nil {
			return raw, nil
		}
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("legacy key is neither hex nor base64")
	}
	return raw, nil
}
