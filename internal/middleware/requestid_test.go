package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func requestIDRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})
	return router
}

func TestRequestIDIsGenerated(t *testing.T) {
	router := requestIDRouter()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	id := rec.Header().Get("X-Request-Id")
	if id == "" {
		t.Fatal("expected a generated request id header")
	}
	if rec.Body.String() != id {
		t.Fatalf("context id %q does not match header %q", rec.Body.String(), id)
	}
}

func TestRequestIDIsKeptWhenSupplied(t *testing.T) {
	router := requestIDRouter()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "caller-supplied")
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "caller-supplied" {
		t.Fatalf("expected caller id to be kept, got %q", got)
	}
}
