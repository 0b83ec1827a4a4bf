package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-api-service/internal/adapter/token"
	"user-api-service/pkg/logger"
)

const claimKey = "authClaim"

// Client-facing messages for rejected requests.
const (
	MsgUnauthorized = "Acceso no autorizado"
	MsgInvalidToken = "Token inválido o expirado"
)

// TokenVerifier validates a raw bearer token.
type TokenVerifier interface {
	Verify(raw string) (*token.Claim, error)
}

// Auth rejects requests that do not carry a valid bearer token and attaches
// the verified claim to the request for downstream handlers.
func Auth(verifier TokenVerifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": MsgUnauthorized})
			return
		}

		claim, err := verifier.Verify(raw)
		if err != nil {
			reason := "invalid"
			if errors.Is(err, token.ErrTokenExpired) {
				reason = "expired"
			}
			logger.WithContext(c.Request.Context(), log).Info("bearer token rejected",
				zap.String("reason", reason), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": MsgInvalidToken})
			return
		}

		c.Set(claimKey, claim)
		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, strconv.FormatInt(claim.Subject, 10))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ClaimFromContext returns the claim stored by Auth, if any.
func ClaimFromContext(c *gin.Context) (*token.Claim, bool) {
	value, ok := c.Get(claimKey)
	if !ok {
		return nil, false
	}
	claim, ok := value.(*token.Claim)
	return claim, ok
}

// bearerToken extracts the token from "Bearer <token>". Any other shape yields "".
func bearerToken(header string) string {
	scheme, raw, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(raw)
}
