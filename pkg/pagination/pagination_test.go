package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/labs?"+query, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContextDefaults(t *testing.T) {
	p := paramsFor(t, "")
	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected offset 0, got %d", p.Offset)
	}
}

func TestFromContextCapsLimit(t *testing.T) {
	p := paramsFor(t, "limit=5000")
	if p.Limit != MaxLimit {
		t.Errorf("expected capped limit %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContextParsesValues(t *testing.T) {
	p := paramsFor(t, "limit=10&offset=40")
	if p.Limit != 10 || p.Offset != 40 {
		t.Errorf("expected 10/40, got %d/%d", p.Limit, p.Offset)
	}
}

func TestFromContextNegativeValues(t *testing.T) {
	p := paramsFor(t, "limit=-5&offset=-1")
	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit, got %d", p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected offset 0, got %d", p.Offset)
	}
}

func TestNewResponseHasMore(t *testing.T) {
	resp := NewResponse([]string{"a"}, 50, 20, 0)
	if !resp.HasMore {
		t.Error("expected has_more for first page of 50")
	}

	resp = NewResponse([]string{"a"}, 50, 20, 40)
	if resp.HasMore {
		t.Error("expected no more pages at offset 40 of 50")
	}
}

func TestOffsetNavigation(t *testing.T) {
	p := Params{Limit: 20, Offset: 10}
	if p.NextOffset() != 30 {
		t.Errorf("expected next offset 30, got %d", p.NextOffset())
	}
	if p.PreviousOffset() != 0 {
		t.Errorf("expected previous offset 0, got %d", p.PreviousOffset())
	}
	if !p.HasPrevious() {
		t.Error("expected HasPrevious at offset 10")
	}
}
