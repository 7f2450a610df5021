package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fatflowers/pulseboard/pkg/config"
	"github.com/fatflowers/pulseboard/pkg/logctx"
)

const secret = "test-secret"

func authCfg() *config.Config {
	return &config.Config{Auth: config.AuthConfig{JWTSecret: secret, Issuer: "pulseboard"}}
}

func token(t *testing.T, key string, claims *Claims) string {
	t.Helper()
	s, err := SignToken(key, claims)
	require.NoError(t, err)
	return s
}

func claimsFor(orgs ...string) *Claims {
	return &Claims{
		OrgIDs: orgs,
		StandardClaims: jwt.StandardClaims{
			Issuer:    "pulseboard",
			Subject:   "user-1",
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	}
}

func authEngine(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(cfg, zap.NewNop().Sugar()))
	r.GET("/x", func(c *gin.Context) {
		claims := c.MustGet(ClaimsKey).(*Claims)
		c.String(http.StatusOK, claims.Subject)
	})
	return r
}

func doAuth(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := authEngine(authCfg())
	expired := claimsFor("org-1")
	expired.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	wrongIssuer := claimsFor("org-1")
	wrongIssuer.Issuer = "someone-else"
	admin := claimsFor()
	admin.Admin = true

	tests := []struct {
		name   string
		path   string
		auth   string
		status int
	}{
		{"no header", "/x?org_id=org-1", "", http.StatusUnauthorized},
		{"not bearer", "/x?org_id=org-1", "Basic abc", http.StatusUnauthorized},
		{"garbage", "/x?org_id=org-1", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"wrong key", "/x?org_id=org-1", "Bearer " + token(t, "other", claimsFor("org-1")), http.StatusUnauthorized},
		{"expired", "/x?org_id=org-1", "Bearer " + token(t, secret, expired), http.StatusUnauthorized},
		{"wrong issuer", "/x?org_id=org-1", "Bearer " + token(t, secret, wrongIssuer), http.StatusUnauthorized},
		{"other org", "/x?org_id=org-2", "Bearer " + token(t, secret, claimsFor("org-1")), http.StatusUnauthorized},
		{"granted org", "/x?org_id=org-1", "Bearer " + token(t, secret, claimsFor("org-1")), http.StatusOK},
		{"lowercase scheme", "/x?org_id=org-1", "bearer " + token(t, secret, claimsFor("org-1")), http.StatusOK},
		{"no org in request", "/x", "Bearer " + token(t, secret, claimsFor("org-1")), http.StatusOK},
		{"admin", "/x?org_id=org-9", "Bearer " + token(t, secret, admin), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doAuth(r, tt.path, tt.auth)
			require.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusUnauthorized {
				require.Contains(t, w.Body.String(), `"error"`)
			} else {
				require.Equal(t, "user-1", w.Body.String())
			}
		})
	}
}

func TestAuthMiddleware_NoSecretRejects(t *testing.T) {
	r := authEngine(&config.Config{})
	w := doAuth(r, "/x?org_id=org-1", "Bearer "+token(t, secret, claimsFor("org-1")))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), ErrAuthDisabled.Error())
}

func TestParseToken_RejectsNoneAlg(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claimsFor("org-1")).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseToken(secret, "", raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTraceAndRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core).Sugar()

	r := gin.New()
	r.Use(TraceMiddleware(), RequestLoggerMiddleware(base), AccessLogMiddleware(base))
	r.GET("/x", func(c *gin.Context) {
		logctx.FromCtx(c.Request.Context(), zap.NewNop().Sugar()).Infow("inside")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x?org_id=org-1", nil)
	req.Header.Set(HeaderRequestID, "trace-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "trace-123", w.Header().Get(HeaderRequestID))
	require.Equal(t, 2, logs.Len())
	for _, e := range logs.All() {
		fields := e.ContextMap()
		require.Equal(t, "trace-123", fields["trace_id"])
		require.Equal(t, "org-1", fields["org_id"])
	}
	access := logs.FilterMessage("http_access").All()
	require.Len(t, access, 1)
	require.EqualValues(t, http.StatusNoContent, access[0].ContextMap()["status"])
}

func TestTraceMiddleware_GeneratesID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceMiddleware(), RequestLoggerMiddleware(zap.NewNop().Sugar()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Len(t, w.Header().Get(HeaderRequestID), 36)
}
