package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/casevault/internal/crypto/domain"

	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KeeperSchemes lists the key URI schemes OpenKeeper accepts.
//
//   - base64key://<key>              local key, for development and tests
//   - awskms://<key-id>?region=...   AWS KMS
//   - gcpkms://projects/...          Google Cloud KMS
//   - azurekeyvault://<vault>/keys/<name>
//   - hashivault://<key-name>        HashiCorp Vault transit
var KeeperSchemes = []string{"base64key", "awskms", "gcpkms", "azurekeyvault", "hashivault"}

// KMSService opens keepers that seal the master key file on hosts without an OS
// credential store.
type KMSService interface {
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}

type kmsService struct{}

// NewKMSService creates a KMSService.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper opens the keeper behind keyURI. The caller closes it. Errors name the scheme
// only, since a base64key URI embeds the sealing key.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	scheme, _, found := strings.Cut(keyURI, "://")
	if !found || !slices.Contains(KeeperSchemes, scheme) {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", cryptoDomain.ErrUnsupportedKMSScheme)
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s keeper: %w", scheme, cryptoDomain.ErrSecureStorageUnavailable)
	}
	return keeper, nil
}
