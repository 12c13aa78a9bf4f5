package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keepon-app/keepon-ledger/internal/apperrors"
	"github.com/keepon-app/keepon-ledger/internal/core/domain"
	portsrepo "github.com/keepon-app/keepon-ledger/internal/core/ports/repositories"
	portssvc "github.com/keepon-app/keepon-ledger/internal/core/ports/services"
	"github.com/keepon-app/keepon-ledger/internal/utils"
)

// apiKeySecretBytes is the entropy of the generated secret (hex doubles the length).
const apiKeySecretBytes = 32

// apiKeyService manages machine-client credentials for businesses.
type apiKeyService struct {
	BaseService
	apiKeyRepo portsrepo.APIKeyRepository
}

// NewAPIKeyService creates a new APIKeyService.
func NewAPIKeyService(apiKeyRepo portsrepo.APIKeyRepository, businessAuthorizer portssvc.BusinessAuthorizerSvc) portssvc.APIKeySvc {
	return &apiKeyService{
		BaseService: BaseService{BusinessAuthorizer: businessAuthorizer},
		apiKeyRepo:  apiKeyRepo,
	}
}

// Ensure apiKeyService implements the portssvc.APIKeySvc interface
var _ portssvc.APIKeySvc = (*apiKeyService)(nil)

// CreateKey generates a new API key for a business. The plaintext secret is
// returned exactly once; only its bcrypt hash is stored.
func (s *apiKeyService) CreateKey(ctx context.Context, businessID, name, userID string, expiresIn *time.Duration) (string, *domain.APIKey, error) {
	if err := s.AuthorizeUser(ctx, userID, businessID, domain.RoleAdmin); err != nil {
		return "", nil, err
	}
	if name == "" {
		return "", nil, fmt.Errorf("%w: key name is required", apperrors.ErrValidation)
	}

	secret, err := utils.GenerateSecureRandomString(apiKeySecretBytes)
	if err != nil {
		s.LogError(ctx, err, "Failed to generate API key secret")
		return "", nil, fmt.Errorf("failed to generate key: %w", err)
	}
	hash, err := utils.HashSecret(secret)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash API key secret")
		return "", nil, fmt.Errorf("failed to hash key: %w", err)
	}

	now := time.Now().UTC()
	key := domain.APIKey{
		KeyID:      uuid.NewString(),
		BusinessID: businessID,
		Name:       name,
		SecretHash: hash,
		CreatedBy:  userID,
		CreatedAt:  now,
	}
	if expiresIn != nil {
		expiry := now.Add(*expiresIn)
		key.ExpiresAt = &expiry
	}

	if err := s.apiKeyRepo.SaveAPIKey(ctx, key); err != nil {
		s.LogError(ctx, err, "Failed to save API key", "business_id", businessID)
		return "", nil, fmt.Errorf("failed to save key: %w", err)
	}

	s.LogInfo(ctx, "API key created", "key_id", key.KeyID, "business_id", businessID)
	// The wire format keyID.secret lets validation look the key up without
	// scanning every hash.
	return fmt.Sprintf("%s.%s", key.KeyID, secret), &key, nil
}

// ListKeys returns all API keys of a business.
func (s *apiKeyService) ListKeys(ctx context.Context, businessID, userID string) ([]domain.APIKey, error) {
	if err := s.AuthorizeUser(ctx, userID, businessID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	keys, err := s.apiKeyRepo.ListAPIKeysByBusiness(ctx, businessID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list API keys", "business_id", businessID)
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

// RevokeKey revokes a specific API key.
func (s *apiKeyService) RevokeKey(ctx context.Context, businessID, keyID, userID string) error {
	if err := s.AuthorizeUser(ctx, userID, businessID, domain.RoleAdmin); err != nil {
		return err
	}
	if err := s.apiKeyRepo.RevokeAPIKey(ctx, businessID, keyID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to revoke API key", "key_id", keyID)
		return err
	}
	s.LogInfo(ctx, "API key revoked", "key_id", keyID, "business_id", businessID)
	return nil
}

// ValidateKey checks if a key string is valid and returns the key.
func (s *apiKeyService) ValidateKey(ctx context.Context, keyString string) (*domain.APIKey, error) {
	keyID, secret, found := strings.Cut(keyString, ".")
	if !found || keyID == "" || secret == "" {
		return nil, apperrors.ErrUnauthorized
	}

	key, err := s.apiKeyRepo.FindAPIKeyByID(ctx, keyID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	if key.IsRevoked() || key.IsExpired() {
		return nil, apperrors.ErrUnauthorized
	}
	if !utils.CheckSecretHash(secret, key.SecretHash) {
		return nil, apperrors.ErrUnauthorized
	}

	if err := s.apiKeyRepo.MarkAPIKeyUsed(ctx, key.KeyID, time.Now().UTC()); err != nil {
		// Usage tracking must not block an otherwise valid request.
		s.LogDebug(ctx, "Failed to update API key last_used_at", "key_id", key.KeyID, "error", err.Error())
	}
	return key, nil
}
