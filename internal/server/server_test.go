package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ayusman/mudra/internal/arbiter"
	"github.com/ayusman/mudra/internal/interact"
	"github.com/ayusman/mudra/internal/replicated"
	"github.com/ayusman/mudra/internal/store"
)

func newTestServer(t *testing.T) (*Server, *arbiter.Arbiter, *store.Store) {
	t.Helper()

	st, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	doc := replicated.NewDoc("site-test")
	arb := arbiter.New(doc, "scatter", "user-test", nil)

	s := New(Config{Store: st, Doc: doc, Arbiter: arb})
	t.Cleanup(s.Close)
	return s, arb, st
}

func TestHealth(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestSessionsAPI(t *testing.T) {
	s, _, st := newTestServer(t)

	if err := st.Sessions().Create(&store.Session{ID: "sess-1", SiteID: "site-test"}); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	t.Run("list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var body struct {
			Sessions []struct {
				ID     string `json:"id"`
				SiteID string `json:"site_id"`
			} `json:"sessions"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(body.Sessions) != 1 || body.Sessions[0].ID != "sess-1" {
			t.Errorf("sessions = %+v, want [sess-1]", body.Sessions)
		}
	})

	t.Run("get", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions/sess-1", nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions/ghost", nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("write rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})
}

func TestBrushesAPI(t *testing.T) {
	s, arb, _ := newTestServer(t)

	arb.Apply(interact.Event{
		Type:  interact.EventCreateBrush,
		Hand:  interact.HandLeft,
		Brush: &interact.Brush{ID: "brush-1", X: 10, Y: 20, Radius: 25, Kind: interact.BrushKindSticky},
	})

	t.Run("list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/brushes", nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var body struct {
			Viz     string `json:"viz"`
			Brushes []struct {
				ID     string  `json:"id"`
				Radius float64 `json:"radius"`
			} `json:"brushes"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if body.Viz != "scatter" {
			t.Errorf("viz = %q, want scatter", body.Viz)
		}
		if len(body.Brushes) != 1 || body.Brushes[0].ID != "brush-1" || body.Brushes[0].Radius != 25 {
			t.Errorf("brushes = %+v, want [brush-1 r=25]", body.Brushes)
		}
	})

	t.Run("get", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/brushes/brush-1", nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/brushes/brush-1", nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
		if len(arb.Brushes()) != 0 {
			t.Error("brush still live after DELETE")
		}
	})

	t.Run("delete missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/brushes/ghost", nil)
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}
