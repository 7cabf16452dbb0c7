package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/licensegate/internal/application/entitlement/dto"
	"github.com/orris-inc/licensegate/internal/domain/store"
	"github.com/orris-inc/licensegate/internal/shared/constants"
	apperrors "github.com/orris-inc/licensegate/internal/shared/errors"
	"github.com/orris-inc/licensegate/internal/shared/logger"
	"github.com/orris-inc/licensegate/internal/shared/utils"
)

// MaxSignedBodyBytes caps the body read for signature verification.
const MaxSignedBodyBytes = 64 << 10

// StoreAuthenticator is implemented by the entitlement service.
type StoreAuthenticator interface {
	Authenticate(ctx context.Context, req dto.SignedRequest) (*store.Store, error)
	AuthorizeStatus(ctx context.Context, token string) (*store.Store, error)
}

// SignedRequestMiddleware verifies the HMAC signature of mutating store
// calls. The raw body is signed, so it is read once here and restored for
// the handler.
type SignedRequestMiddleware struct {
	authenticator StoreAuthenticator
	logger        logger.Interface
}

func NewSignedRequestMiddleware(authenticator StoreAuthenticator, logger logger.Interface) *SignedRequestMiddleware {
	return &SignedRequestMiddleware{
		authenticator: authenticator,
		logger:        logger,
	}
}

func (m *SignedRequestMiddleware) RequireSignature() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := readBody(c.Request)
		if err != nil {
			m.logger.Warnw("failed to read signed request body", "error", err, "ip", c.ClientIP())
			utils.AbortWithError(c, apperrors.NewBadRequestError("request body too large or unreadable"))
			return
		}

		token := c.GetHeader(constants.HeaderStoreToken)
		if token == "" {
			token = storeTokenFromBody(body)
		}

		s, err := m.authenticator.Authenticate(c.Request.Context(), dto.SignedRequest{
			StoreToken: token,
			Timestamp:  c.GetHeader(constants.HeaderTimestamp),
			Signature:  c.GetHeader(constants.HeaderSignature),
			Body:       body,
		})
		if err != nil {
			if apperrors.ShouldLogAuthError(err) {
				m.logger.Warnw("signed request rejected",
					"error", err,
					"token", utils.MaskToken(token),
					"ip", c.ClientIP(),
					"path", c.Request.URL.Path,
				)
			}
			utils.AbortWithError(c, err)
			return
		}

		c.Set(constants.ContextKeyStore, s)
		c.Set(constants.ContextKeyStoreToken, s.Token())
		c.Next()
	}
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxSignedBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxSignedBodyBytes {
		return nil, io.ErrShortBuffer
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// storeTokenFromBody accepts the token as a "store_token" JSON field for
// clients that cannot set custom headers.
func storeTokenFromBody(body []byte) string {
	var envelope struct {
		StoreToken string `json:"store_token"`
	}
	if len(body) == 0 || json.Unmarshal(body, &envelope) != nil {
		return ""
	}
	return envelope.StoreToken
}
