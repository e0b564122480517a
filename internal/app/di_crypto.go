package app

import (
	"context"
	"fmt"

	"github.com/allisson/casevault/internal/config"
	cryptoService "github.com/allisson/casevault/internal/crypto/service"
)

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// SecureStorage returns the configured master key store: the OS credential store, or a
// KMS-sealed key file.
func (c *Container) SecureStorage(ctx context.Context) (cryptoService.SecureStorage, error) {
	var err error
	c.secureStorageInit.Do(func() {
		c.secureStorage, err = c.initSecureStorage(ctx)
		if err != nil {
			c.initErrors["secureStorage"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secureStorage"]; exists {
		return nil, storedErr
	}
	return c.secureStorage, nil
}

// KeyManager returns the key manager with the master key loaded. The key is loaded once;
// every failure of the startup sequence is returned as-is and is terminal.
func (c *Container) KeyManager(ctx context.Context) (*cryptoService.KeyManager, error) {
	var err error
	c.keyManagerInit.Do(func() {
		c.keyManager, err = c.initKeyManager(ctx)
		if err != nil {
			c.initErrors["keyManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyManager"]; exists {
		return nil, storedErr
	}
	return c.keyManager, nil
}

// NewUnloadedKeyManager builds a key manager without running the startup sequence. Key
// provisioning and health checks start from it.
func (c *Container) NewUnloadedKeyManager(ctx context.Context) (*cryptoService.KeyManager, error) {
	storage, err := c.SecureStorage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get secure storage for key manager: %w", err)
	}
	return cryptoService.NewKeyManager(
		storage,
		c.config.EncryptionKeyName,
		c.Logger(),
		c.legacyKeySources()...,
	), nil
}

// EncryptionService returns the field encryption service.
func (c *Container) EncryptionService(ctx context.Context) (*cryptoService.EncryptionService, error) {
	var err error
	c.encryptionServiceInit.Do(func() {
		var keyManager *cryptoService.KeyManager
		keyManager, err = c.KeyManager(ctx)
		if err != nil {
			err = fmt.Errorf("failed to get key manager for encryption service: %w", err)
			c.initErrors["encryptionService"] = err
			return
		}
		c.encryptionService = cryptoService.NewEncryptionService(keyManager)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["encryptionService"]; exists {
		return nil, storedErr
	}
	return c.encryptionService, nil
}

func (c *Container) initSecureStorage(ctx context.Context) (cryptoService.SecureStorage, error) {
	switch c.config.SecureStorageProvider {
	case config.SecureStorageKeyring:
		return cryptoService.NewKeyringStorage(c.config.KeyringService), nil
	case config.SecureStorageKMS:
		keeper, err := c.KMSService().OpenKeeper(ctx, c.config.KMSKeyURI)
		if err != nil {
			return nil, err
		}
		c.kmsKeeper = keeper
		return cryptoService.NewKMSFileStorage(c.config.SecureStorageDir, keeper), nil
	default:
		return nil, fmt.Errorf("unsupported secure storage provider: %s", c.config.SecureStorageProvider)
	}
}

func (c *Container) initKeyManager(ctx context.Context) (*cryptoService.KeyManager, error) {
	keyManager, err := c.NewUnloadedKeyManager(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := keyManager.GetOrCreateKey(ctx); err != nil {
		return nil, err
	}
	return keyManager, nil
}

// legacyKeySources lists where a pre-secure-storage key may still live: the dotenv file
// first, then the process environment.
func (c *Container) legacyKeySources() []cryptoService.LegacyKeySource {
	var sources []cryptoService.LegacyKeySource
	if c.config.LegacyKeyFile != "" && c.config.LegacyKeyEnv != "" {
		sources = append(sources, cryptoService.NewDotEnvLegacyKeySource(c.config.LegacyKeyFile, c.config.LegacyKeyEnv))
	}
	if c.config.LegacyKeyEnv != "" {
		sources = append(sources, cryptoService.NewEnvLegacyKeySource(c.config.LegacyKeyEnv))
	}
	return sources
}
