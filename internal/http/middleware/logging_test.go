package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRequestID_GeneratesWhenAbsent(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID())
	r.GET("/ok", func(c *gin.Context) {
		rid, _ := c.Get(requestIDKey)
		c.String(http.StatusOK, asString(rid))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	r.ServeHTTP(w, req)

	header := w.Header().Get(requestIDHeader)
	if header == "" {
		t.Fatal("expected a generated X-Request-ID header")
	}
	if w.Body.String() != header {
		t.Fatalf("context id %q and header %q must match", w.Body.String(), header)
	}
}

func TestRequestID_PropagatesIncoming(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(requestIDHeader, "client-supplied-id")
	r.ServeHTTP(w, req)

	if got := w.Header().Get(requestIDHeader); got != "client-supplied-id" {
		t.Fatalf("expected propagated id, got %q", got)
	}
}

func TestLogger_AttachesRequestScopedLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var sawLogger bool
	r := gin.New()
	r.Use(RequestID(), Logger())
	r.GET("/ok", func(c *gin.Context) {
		if _, exists := c.Get("logger"); exists {
			sawLogger = true
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if !sawLogger {
		t.Fatal("expected a request-scoped logger in the context")
	}
}

func TestLoggerFrom_FallbackWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if LoggerFrom(c) == nil {
		t.Fatal("LoggerFrom must never return nil")
	}
}

func TestRecovery_PanicBecomesJSON500(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v (body: %s)", err, w.Body.String())
	}
	if body["code"] != "internal_error" {
		t.Fatalf("expected internal_error envelope, got %s", w.Body.String())
	}
	if body["request_id"] == "" {
		t.Fatal("expected the correlation id in the envelope")
	}
}

func TestAsString(t *testing.T) {
	if got := asString("abc"); got != "abc" {
		t.Errorf("asString(string) = %q", got)
	}
	if got := asString(42); got != "" {
		t.Errorf("asString(non-string) = %q", got)
	}
	if got := asString(nil); got != "" {
		t.Errorf("asString(nil) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("within max: %q", got)
	}
	long := strings.Repeat("a", 20)
	got := truncate(long, 5)
	if !strings.HasPrefix(got, "aaaaa") || !strings.HasSuffix(got, "…") {
		t.Errorf("truncated: %q", got)
	}
	if got := truncate(long, 0); got != long {
		t.Errorf("max<=0 must disable truncation: %q", got)
	}
}
