package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRateLimitPerAddress(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(newRateLimiterStore(0, 2).middleware())
	r.POST("/hook", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/hook", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := do("149.154.167.1"); code != http.StatusOK {
			t.Fatalf("request %d: got %d", i, code)
		}
	}
	if code := do("149.154.167.1"); code != http.StatusTooManyRequests {
		t.Fatalf("over burst: got %d", code)
	}
	if code := do("91.108.4.1"); code != http.StatusOK {
		t.Fatalf("other address: got %d", code)
	}
}

func TestGetClientIPFallsBackToRemoteAddr(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "203.0.113.5:4431"
	if got := getClientIP(c); got != "203.0.113.5" {
		t.Fatalf("got %q", got)
	}
	c.Request.Header.Set("X-Real-IP", " 198.51.100.7 ")
	if got := getClientIP(c); got != "198.51.100.7" {
		t.Fatalf("got %q", got)
	}
}
