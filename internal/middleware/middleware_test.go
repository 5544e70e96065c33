package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"shortlink-go/internal/apperrors"
	"shortlink-go/internal/i18n"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret, subject string, method jwt.SigningMethod, expires time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(method, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newCatalog(t *testing.T) *i18n.Catalog {
	t.Helper()
	dir := t.TempDir()
	en := filepath.Join(dir, "en.toml")
	zh := filepath.Join(dir, "zh.toml")
	require.NoError(t, os.WriteFile(en, []byte(`"error.link_expired" = "This short link has expired"
"error.unauthorized" = "Authentication required"`), 0o644))
	require.NoError(t, os.WriteFile(zh, []byte(`"error.link_expired" = "短链已过期"
"error.unauthorized" = "需要登录"`), 0o644))
	catalog, err := i18n.InitI18n([]string{en, zh}, "en")
	require.NoError(t, err)
	return catalog
}

func newRouter(t *testing.T) *gin.Engine {
	r := gin.New()
	r.Use(I18nMiddleware(newCatalog(t)))
	r.Use(GlobalErrorMiddleware(zap.NewNop()))
	return r
}

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

func TestJWTAuth(t *testing.T) {
	r := newRouter(t)
	r.GET("/api/me", JWTAuth(testSecret), func(c *gin.Context) {
		id, _ := AccountID(c)
		c.String(http.StatusOK, id)
	})

	future := time.Now().Add(time.Hour)
	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "missing header", status: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + signToken(t, "other", "acc-1", jwt.SigningMethodHS256, future), status: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + signToken(t, testSecret, "acc-1", jwt.SigningMethodHS256, time.Now().Add(-time.Hour)), status: http.StatusUnauthorized},
		{name: "wrong alg", header: "Bearer " + signToken(t, testSecret, "acc-1", jwt.SigningMethodHS512, future), status: http.StatusUnauthorized},
		{name: "no subject", header: "Bearer " + signToken(t, testSecret, "", jwt.SigningMethodHS256, future), status: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + signToken(t, testSecret, "acc-1", jwt.SigningMethodHS256, future), status: http.StatusOK, body: "acc-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestJWTAuthRejectsEmptySecret(t *testing.T) {
	r := newRouter(t)
	r.GET("/api/me", JWTAuth(""), func(c *gin.Context) {
		id, _ := AccountID(c)
		c.String(http.StatusOK, id)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "", "victim", jwt.SigningMethodHS256, time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "victim")
}

func TestGlobalErrorMiddlewareLocalizes(t *testing.T) {
	r := newRouter(t)
	r.GET("/gone", func(c *gin.Context) {
		_ = c.Error(apperrors.Gone(apperrors.ReasonExpired))
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
	})

	req := httptest.NewRequest(http.MethodGet, "/gone", nil)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusGone, w.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "短链已过期", body.Message)
	assert.Equal(t, "expired", body.Reason)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCorsPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CorsMiddleware())
	r.GET("/api/links", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/links", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
