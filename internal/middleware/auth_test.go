package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/example/contentapi/internal/platform/logger"
)

func protectedRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	auth := NewServiceAuth(secret, logger.NewNop())
	router.POST("/", auth.RequireServiceToken(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func request(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	router.ServeHTTP(rec, req)
	return rec
}

func signToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "api.example.org",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	router := protectedRouter("s3cret")
	if rec := request(router, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWrongSecretIsUnauthorized(t *testing.T) {
	router := protectedRouter("s3cret")
	token := signToken(t, "other-secret")
	if rec := request(router, "Bearer "+token); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestValidTokenPasses(t *testing.T) {
	router := protectedRouter("s3cret")
	token := signToken(t, "s3cret")
	if rec := request(router, "Bearer "+token); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestEmptySecretDisablesAuth(t *testing.T) {
	router := protectedRouter("")
	if rec := request(router, ""); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
