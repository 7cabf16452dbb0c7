package usecases

import (
	"context"
	"errors"

	"github.com/orris-inc/licensegate/internal/application/entitlement/dto"
	"github.com/orris-inc/licensegate/internal/domain/store"
	"github.com/orris-inc/licensegate/internal/infrastructure/auth"
	"github.com/orris-inc/licensegate/internal/infrastructure/ratelimit"
	apperrors "github.com/orris-inc/licensegate/internal/shared/errors"
	"github.com/orris-inc/licensegate/internal/shared/logger"
	"github.com/orris-inc/licensegate/internal/shared/utils"
)

// AuthenticateRequestUseCase admits inbound store calls. Signed calls are
// checked in a fixed order: credentials present, timestamp in window, store
// exists, signature valid, rate limit. The first failure wins.
type AuthenticateRequestUseCase struct {
	storeRepo store.Repository
	verifier  *auth.SignatureVerifier
	limiter   RateLimiter
	logger    logger.Interface
}

func NewAuthenticateRequestUseCase(
	storeRepo store.Repository,
	verifier *auth.SignatureVerifier,
	limiter RateLimiter,
	logger logger.Interface,
) *AuthenticateRequestUseCase {
	return &AuthenticateRequestUseCase{
		storeRepo: storeRepo,
		verifier:  verifier,
		limiter:   limiter,
		logger:    logger,
	}
}

// Execute authenticates a signed mutating request and returns the store.
func (uc *AuthenticateRequestUseCase) Execute(ctx context.Context, req dto.SignedRequest) (*store.Store, error) {
	if req.StoreToken == "" {
		return nil, apperrors.NewMissingCredentialsError("store token is required")
	}
	if err := uc.verifier.CheckHeaders(req.Timestamp, req.Signature); err != nil {
		return nil, apperrors.NewMissingCredentialsError("X-Timestamp and X-Signature headers are required")
	}

	if err := uc.verifier.CheckTimestamp(req.Timestamp); err != nil {
		uc.logger.Warnw("request timestamp outside window",
			"token", utils.MaskToken(req.StoreToken),
			"timestamp", req.Timestamp,
		)
		return nil, apperrors.NewTimestampOutOfWindowError(uc.verifier.Skew())
	}

	s, err := uc.lookup(ctx, req.StoreToken)
	if err != nil {
		return nil, err
	}

	if err := uc.verifier.VerifySignature(s.SecretMaterial(), req.StoreToken, req.Timestamp, req.Body, req.Signature); err != nil {
		uc.logger.Warnw("request signature rejected", "token", utils.MaskToken(req.StoreToken))
		return nil, apperrors.NewInvalidSignatureError()
	}

	if err := uc.checkRate(ctx, req.StoreToken); err != nil {
		return nil, err
	}
	return s, nil
}

// AuthorizeStatus admits an unsigned status read: the token must name a store
// and the store must be within its rate limit.
func (uc *AuthenticateRequestUseCase) AuthorizeStatus(ctx context.Context, token string) (*store.Store, error) {
	if token == "" {
		return nil, apperrors.NewMissingCredentialsError("store token is required")
	}

	s, err := uc.lookup(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := uc.checkRate(ctx, token); err != nil {
		return nil, err
	}
	return s, nil
}

func (uc *AuthenticateRequestUseCase) lookup(ctx context.Context, token string) (*store.Store, error) {
	s, err := uc.storeRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrStoreNotFound) {
			return nil, apperrors.NewStoreNotFoundError()
		}
		uc.logger.Errorw("failed to load store for authentication",
			"token", utils.MaskToken(token),
			"error", err,
		)
		return nil, apperrors.NewPersistenceFailureError()
	}
	return s, nil
}

// checkRate denies when the limiter cannot answer.
func (uc *AuthenticateRequestUseCase) checkRate(ctx context.Context, token string) error {
	err := uc.limiter.Check(ctx, token)
	if err == nil {
		return nil
	}

	var exceeded *ratelimit.ExceededError
	if errors.As(err, &exceeded) {
		uc.logger.Infow("store rate limited",
			"token", utils.MaskToken(token),
			"retry_after", exceeded.RetryAfter,
		)
		return apperrors.NewRateLimitedError(exceeded.RetryAfter)
	}

	uc.logger.Errorw("rate limiter unavailable, denying request",
		"token", utils.MaskToken(token),
		"error", err,
	)
	return apperrors.NewPersistenceFailureError()
}
