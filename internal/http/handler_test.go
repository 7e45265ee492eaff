package http

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"itad-service/internal/repository"
)

func pageForQuery(t *testing.T, query string) repository.Page {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/bookings"+query, nil)
	return parsePage(c)
}

func TestParsePageAppliesDefaultsAndBounds(t *testing.T) {
	cases := []struct {
		query  string
		limit  int
		offset int
	}{
		{"", 20, 0},
		{"?limit=7&offset=14", 7, 14},
		{"?limit=500", 100, 0},
		{"?limit=-5&offset=-3", 20, 0},
		{"?limit=abc&offset=xyz", 20, 0},
	}
	for _, c := range cases {
		page := pageForQuery(t, c.query)
		if page.Limit != c.limit || page.Offset != c.offset {
			t.Fatalf("query %q: got limit=%d offset=%d, want limit=%d offset=%d",
				c.query, page.Limit, page.Offset, c.limit, c.offset)
		}
	}
}

func TestPaginatedResponseEchoesEffectivePage(t *testing.T) {
	page := pageForQuery(t, "")
	resp := paginatedResponse([]string{"a", "b"}, 2, page)
	if resp["limit"] != 20 || resp["offset"] != 0 {
		t.Fatalf("expected envelope to report the effective page, got limit=%v offset=%v",
			resp["limit"], resp["offset"])
	}
	if resp["total"] != int64(2) {
		t.Fatalf("expected total 2, got %v", resp["total"])
	}
}
