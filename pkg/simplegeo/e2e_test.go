package simplegeo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/simplegeo-client/internal/logger"
)

type fakeService struct {
	mu       sync.Mutex
	requests []string
	auth     []string
	bodies   [][]byte
}

func (s *fakeService) track(r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	_ = r.Body.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)
	s.auth = append(s.auth, r.Header.Get("Authorization"))
	s.bodies = append(s.bodies, b)
}

func (s *fakeService) router() http.Handler {
	r := chi.NewRouter()
	r.Route("/0.1", func(r chi.Router) {
		r.Get("/records/{layer}/{id}.json", func(w http.ResponseWriter, r *http.Request) {
			s.track(r)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"type": "Feature",
				"id":   chi.URLParam(r, "id"),
				"geometry": map[string]any{
					"type": "Point", "coordinates": []float64{-122.4, 37.75},
				},
				"properties": map[string]any{"layer": chi.URLParam(r, "layer")},
			})
		})
		r.Post("/records/{layer}.json", func(w http.ResponseWriter, r *http.Request) {
			s.track(r)
			w.WriteHeader(http.StatusAccepted)
		})
		r.Get("/contains/*", func(w http.ResponseWriter, r *http.Request) {
			s.track(r)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id":"Neighborhood:SoMa","type":"Neighborhood"}]`))
		})
		r.Get("/boundary/{id}.json", func(w http.ResponseWriter, r *http.Request) {
			s.track(r)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"` + chi.URLParam(r, "id") + `"}`))
		})
		r.Get("/layer/{layer}.json", func(w http.ResponseWriter, r *http.Request) {
			s.track(r)
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	})
	return r
}

func TestEndToEnd_GetRecord(t *testing.T) {
	svc := &fakeService{}
	srv := httptest.NewServer(svc.router())
	defer srv.Close()

	c := New(WithRealm(srv.URL), WithHTTPClient(srv.Client()))
	c.SetCredentials("tok", "sec")

	rec, err := c.GetRecord(context.Background(), "layer1", "abc")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if rec.ID != "abc" || rec.Layer != "layer1" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if lat, lon, ok := rec.Geometry.LatLon(); !ok || lat != 37.75 || lon != -122.4 {
		t.Fatalf("LatLon=%v,%v,%v", lat, lon, ok)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.requests) != 1 || svc.requests[0] != "GET /0.1/records/layer1/abc.json" {
		t.Fatalf("requests=%v", svc.requests)
	}
	if !strings.Contains(svc.auth[0], `oauth_consumer_key="tok"`) {
		t.Fatalf("request not signed: %q", svc.auth[0])
	}
}

func TestEndToEnd_AddRecordsBody(t *testing.T) {
	svc := &fakeService{}
	srv := httptest.NewServer(svc.router())
	defer srv.Close()

	c := NewWithCredentials("tok", "sec", WithRealm(srv.URL), WithHTTPClient(srv.Client()))
	recs := []Record{
		{Layer: "l", ID: "1", Geometry: Point(1, 2)},
		{Layer: "l", ID: "2", Geometry: Point(3, 4)},
	}
	if _, err := c.AddRecords(context.Background(), "l", recs); err != nil {
		t.Fatalf("AddRecords: %v", err)
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.requests) != 1 || svc.requests[0] != "POST /0.1/records/l.json" {
		t.Fatalf("requests=%v", svc.requests)
	}
	var body struct {
		Type     string           `json:"type"`
		Features []map[string]any `json:"features"`
	}
	if err := json.Unmarshal(svc.bodies[0], &body); err != nil {
		t.Fatalf("decode body %q: %v", svc.bodies[0], err)
	}
	if body.Type != "FeatureCollection" || len(body.Features) != 2 {
		t.Fatalf("unexpected body: %s", svc.bodies[0])
	}
	if body.Features[0]["id"] != "1" || body.Features[1]["id"] != "2" {
		t.Fatalf("order not preserved: %s", svc.bodies[0])
	}
}

func TestEndToEnd_StatusError(t *testing.T) {
	svc := &fakeService{}
	srv := httptest.NewServer(svc.router())
	defer srv.Close()

	c := NewWithCredentials("tok", "sec", WithRealm(srv.URL), WithHTTPClient(srv.Client()))
	_, err := c.GetLayerInformation(context.Background(), "secret")
	var serr *StatusError
	if !errors.As(err, &serr) || serr.StatusCode != http.StatusForbidden {
		t.Fatalf("err=%v want 403 StatusError", err)
	}
}

func TestEndToEnd_ContainsArray(t *testing.T) {
	svc := &fakeService{}
	srv := httptest.NewServer(svc.router())
	defer srv.Close()

	c := NewWithCredentials("tok", "sec", WithRealm(srv.URL), WithHTTPClient(srv.Client()))
	got, err := c.GetContains(context.Background(), 37.75, -122.4)
	if err != nil {
		t.Fatalf("GetContains: %v", err)
	}
	arr, ok := got.([]any)
	if !ok || len(arr) != 1 {
		t.Fatalf("contains=%#v want one-element array", got)
	}
	if m, _ := arr[0].(map[string]any); m["id"] != "Neighborhood:SoMa" {
		t.Fatalf("unexpected element: %#v", arr[0])
	}
}

// captureStderr swaps os.Stderr while fn runs and returns what was written.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := os.Stderr
	os.Stderr = w
	done := make(chan []byte)
	go func() {
		b, _ := io.ReadAll(r)
		done <- b
	}()

	fn()

	os.Stderr = orig
	_ = w.Close()
	out := <-done
	_ = r.Close()
	return string(out)
}

func TestDefaultLogger_DebugWritesToStderr(t *testing.T) {
	svc := &fakeService{}
	srv := httptest.NewServer(svc.router())
	defer srv.Close()

	out := captureStderr(t, func() {
		c := New(WithRealm(srv.URL), WithHTTPClient(srv.Client()))
		c.SetCredentials("tok", "sec")
		if _, err := c.GetBoundary(context.Background(), "quiet"); err != nil {
			t.Errorf("GetBoundary: %v", err)
		}
		c.SetDebug(true)
		if _, err := c.GetBoundary(context.Background(), "loud"); err != nil {
			t.Errorf("GetBoundary: %v", err)
		}
	})

	if strings.Contains(out, "quiet") {
		t.Fatalf("request before debug should not be logged: %q", out)
	}
	if !strings.Contains(out, "simplegeo request done") || !strings.Contains(out, "boundary/loud.json") {
		t.Fatalf("expected debug request log on stderr, got %q", out)
	}
}

func TestWithDebug_AppliesToFirstConnection(t *testing.T) {
	svc := &fakeService{}
	srv := httptest.NewServer(svc.router())
	defer srv.Close()

	var buf bytes.Buffer
	zl := logger.Build(logger.Config{Level: "info"}, &buf)
	log := logger.NewSlog(&zl)
	c := NewWithCredentials("tok", "sec",
		WithRealm(srv.URL), WithHTTPClient(srv.Client()), WithLogger(log), WithDebug(true))
	if !c.Debug() {
		t.Fatalf("WithDebug(true) not applied")
	}
	if _, err := c.GetBoundary(context.Background(), "b1"); err != nil {
		t.Fatalf("GetBoundary: %v", err)
	}
	if !strings.Contains(buf.String(), "simplegeo request done") {
		t.Fatalf("expected request log, got %q", buf.String())
	}
}

func TestResolver_FollowsRealm(t *testing.T) {
	c := New(WithRealm("http://localhost:9000/"))
	if got := c.Resolver().Boundary("b"); got != "http://localhost:9000/0.1/boundary/b.json" {
		t.Fatalf("boundary path=%q", got)
	}
	if got := New().Resolver().Realm; got != DefaultRealm {
		t.Fatalf("default realm=%q", got)
	}
}
