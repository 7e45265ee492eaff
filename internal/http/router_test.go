package http

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHealthzIdentifiesService(t *testing.T) {
	router := NewRouter(&Handler{}, func(c *gin.Context) { c.Next() }, "test")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != 200 {
		t.Fatalf("expected 200 from /healthz, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"status":"ok"`) || !strings.Contains(body, `"service":"itad-service"`) {
		t.Fatalf("unexpected health payload: %s", body)
	}
}
