package upstream

import (
	"encoding/json"
	"encoding/pem"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yndnr/ptagate/internal/core/domain"
	"github.com/yndnr/ptagate/internal/server/config"
	"github.com/yndnr/ptagate/internal/telemetry/logger"
)

type countingErrors struct {
	n atomic.Int32
}

func (c *countingErrors) IncUpstreamError() { c.n.Add(1) }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_InvalidURL(t *testing.T) {
	tests := []string{"", "/relative", "://bad"}
	for _, u := range tests {
		if _, err := New(config.UpstreamSection{URL: u}, nil, testLogger()); err == nil {
			t.Errorf("New(%q) expected error", u)
		}
	}
}

func TestProxy_Forwards(t *testing.T) {
	var gotPath, gotQuery, gotHost, gotReqID, gotVia, gotXFF string
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotHost = r.Host
		gotReqID = r.Header.Get("X-Request-ID")
		gotVia = r.Header.Get("Via")
		gotXFF = r.Header.Get("X-Forwarded-For")
		w.Header().Set("X-Origin", "yes")
		w.WriteHeader(http.StatusTeapot)
		io.WriteString(w, "payload")
	}))
	defer origin.Close()

	p, err := New(config.UpstreamSection{URL: origin.URL}, nil, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p.Target().String() != origin.URL {
		t.Errorf("Target() = %s, want %s", p.Target(), origin.URL)
	}

	req := httptest.NewRequest(http.MethodGet, "http://cdn.example.com/videos/a.mp4?x=1", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	req = req.WithContext(logger.WithRequestID(req.Context(), "req-42"))
	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
	if rec.Body.String() != "payload" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if rec.Header().Get("X-Origin") != "yes" {
		t.Error("origin headers should be copied")
	}
	if gotPath != "/videos/a.mp4" || gotQuery != "x=1" {
		t.Errorf("origin saw %s?%s", gotPath, gotQuery)
	}
	if gotHost != "cdn.example.com" {
		t.Errorf("origin Host = %q, want client host", gotHost)
	}
	if gotReqID != "req-42" {
		t.Errorf("origin X-Request-ID = %q", gotReqID)
	}
	if !strings.Contains(gotVia, "ptagate/") {
		t.Errorf("origin Via = %q", gotVia)
	}
	if gotXFF != "203.0.113.9" {
		t.Errorf("origin X-Forwarded-For = %q", gotXFF)
	}
}

func TestProxy_UpstreamDown(t *testing.T) {
	origin := httptest.NewServer(http.NotFoundHandler())
	url := origin.URL
	origin.Close()

	counter := &countingErrors{}
	p, err := New(config.UpstreamSection{URL: url}, counter, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/videos/a.mp4", nil)
	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if got := rec.Header().Get("X-Error-Code"); got != domain.ErrUpstream.Code {
		t.Errorf("X-Error-Code = %q", got)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Contains(body["message"], "connection refused") {
		t.Error("transport error leaked to client")
	}
	if counter.n.Load() != 1 {
		t.Errorf("upstream errors = %d, want 1", counter.n.Load())
	}
}

func TestProxy_Timeout(t *testing.T) {
	release := make(chan struct{})
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer origin.Close()
	defer close(release)

	p, err := New(config.UpstreamSection{URL: origin.URL, Timeout: 50 * time.Millisecond}, nil, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/slow", nil)
	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestProxy_TLSUpstream(t *testing.T) {
	origin := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer origin.Close()

	caFile := filepath.Join(t.TempDir(), "origin-ca.pem")
	caPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: origin.Certificate().Raw})
	if err := os.WriteFile(caFile, caPEM, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		caFile     string
		wantStatus int
		wantErrors int32
	}{
		{"trusted", caFile, http.StatusNoContent, 0},
		{"unknown authority", "", http.StatusBadGateway, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := &countingErrors{}
			p, err := New(config.UpstreamSection{URL: origin.URL, CAFile: tt.caFile}, counter, testLogger())
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}

			rec := httptest.NewRecorder()
			p.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/a", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if n := counter.n.Load(); n != tt.wantErrors {
				t.Errorf("upstream errors = %d, want %d", n, tt.wantErrors)
			}
		})
	}
}

func TestNew_BadCAFile(t *testing.T) {
	_, err := New(config.UpstreamSection{URL: "https://origin", CAFile: filepath.Join(t.TempDir(), "missing.pem")}, nil, testLogger())
	if !errors.Is(err, domain.ErrConfigInvalid) {
		t.Errorf("New() error = %v, want config error", err)
	}
}
