package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGateway_ProxiesDashboard(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/dashboard/missing" {
			RespondWithError(w, http.StatusNotFound, "nope")
			return
		}
		w.Write([]byte("upstream:" + r.URL.Path))
	}))
	defer upstream.Close()

	h, err := NewGatewayHandler(upstream.URL)
	if err != nil {
		t.Fatalf("NewGatewayHandler: %v", err)
	}
	gw := httptest.NewServer(h)
	defer gw.Close()

	resp, err := http.Get(gw.URL + "/dashboard/data")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "upstream:/dashboard/data" {
		t.Fatalf("want=200 upstream:/dashboard/data got=%d %s", resp.StatusCode, body)
	}

	resp, err = http.Get(gw.URL + "/dashboard/missing")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want=404 got=%d", resp.StatusCode)
	}
}

func TestGateway_HealthAndFallback(t *testing.T) {
	h, err := NewGatewayHandler("http://127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewGatewayHandler: %v", err)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health want=200 got=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/elsewhere", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("fallback want=404 got=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/data", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("unreachable upstream want=502 got=%d", rec.Code)
	}
}

func TestGateway_BadTarget(t *testing.T) {
	if _, err := NewGatewayHandler("://bad"); err == nil {
		t.Fatalf("want error for malformed target")
	}
}
