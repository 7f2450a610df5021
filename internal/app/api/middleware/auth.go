package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/fatflowers/pulseboard/pkg/config"
	"github.com/fatflowers/pulseboard/pkg/logctx"
	"github.com/fatflowers/pulseboard/pkg/response"
)

const ClaimsKey = "claims"

var (
	ErrMissingToken  = errors.New("missing bearer token")
	ErrInvalidToken  = errors.New("invalid token")
	ErrOrgForbidden  = errors.New("token does not grant access to organization")
	ErrAuthDisabled  = errors.New("authentication is not configured")
	errSigningMethod = errors.New("unexpected signing method")
)

// Claims is the dashboard session token payload.
type Claims struct {
	OrgIDs []string `json:"org_ids"`
	Admin  bool     `json:"admin"`
	jwt.StandardClaims
}

// Allows reports whether the token may act on orgID.
func (c *Claims) Allows(orgID string) bool {
	if c == nil {
		return false
	}
	return c.Admin || lo.Contains(c.OrgIDs, orgID)
}

// SignToken issues an HS256 token for claims.
func SignToken(secret string, claims *Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken verifies raw against secret and, when issuer is set, its iss
// claim.
func ParseToken(secret, issuer, raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", errSigningMethod, token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if issuer != "" && !claims.VerifyIssuer(issuer, true) {
		return nil, fmt.Errorf("%w: issuer mismatch", ErrInvalidToken)
	}
	return claims, nil
}

func bearer(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// AuthMiddleware requires a valid bearer token and, when the request names
// an org_id, that the token grants access to it.
func AuthMiddleware(cfg *config.Config, base *zap.SugaredLogger) gin.HandlerFunc {
	secret := strings.TrimSpace(cfg.Auth.JWTSecret)
	issuer := strings.TrimSpace(cfg.Auth.Issuer)
	return func(c *gin.Context) {
		log := logctx.FromGin(c, base)
		if secret == "" {
			log.Errorw("rejecting request", "err", ErrAuthDisabled)
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT(ErrAuthDisabled.Error()))
			return
		}
		raw := bearer(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT(ErrMissingToken.Error()))
			return
		}
		claims, err := ParseToken(secret, issuer, raw)
		if err != nil {
			log.Infow("token rejected", "err", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT(ErrInvalidToken.Error()))
			return
		}
		if orgID := strings.TrimSpace(c.Query("org_id")); orgID != "" && !claims.Allows(orgID) {
			log.Infow("organization not granted", "org_id", orgID, "subject", claims.Subject)
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT(ErrOrgForbidden.Error()))
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}
