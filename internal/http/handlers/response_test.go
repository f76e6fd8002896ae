package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestFail_WritesEnvelopeAndAborts(t *testing.T) {
	r := gin.New()
	r.GET("/err", func(c *gin.Context) {
		c.Writer.Header().Set("X-Request-ID", "rid-789")
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "bad input")
		// Anything after fail() must not run.
		c.String(http.StatusOK, "unreachable")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/err", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v (body: %s)", err, w.Body.String())
	}
	if resp.RequestID != "rid-789" || resp.Code != ErrCodeBadRequest || resp.Message != "bad input" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestFail_OmitsEmptyRequestID(t *testing.T) {
	r := gin.New()
	r.GET("/err", func(c *gin.Context) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "nope")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/err", nil))

	var raw map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, present := raw["request_id"]; present {
		t.Fatalf("empty request_id must be omitted: %s", w.Body.String())
	}
}

func TestOk_WritesJSONBody(t *testing.T) {
	r := gin.New()
	r.GET("/ok", func(c *gin.Context) {
		ok(c, http.StatusCreated, gin.H{"hello": "world"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["hello"] != "world" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}
