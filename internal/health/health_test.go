package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func get(t *testing.T, h http.Handler, path string) (int, status) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var st status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	return rec.Code, st
}

func TestNotReadyUntilSet(t *testing.T) {
	s := New(0)
	h := s.Handler()

	for _, path := range []string{"/healthz", "/readyz"} {
		if code, st := get(t, h, path); code != http.StatusServiceUnavailable || st.Status != "not_ready" {
			t.Fatalf("%s = %d %+v", path, code, st)
		}
	}

	s.SetReady(true)
	for _, path := range []string{"/healthz", "/readyz"} {
		if code, st := get(t, h, path); code != http.StatusOK || st.Status != "ok" {
			t.Fatalf("%s = %d %+v", path, code, st)
		}
	}
}

func TestReadinessChecks(t *testing.T) {
	s := New(0)
	s.SetReady(true)
	s.AddCheck("prefs", func(context.Context) error { return nil })
	s.AddCheck("disk", func(context.Context) error { return errors.New("read-only") })
	h := s.Handler()

	code, st := get(t, h, "/readyz")
	if code != http.StatusServiceUnavailable || st.Status != "degraded" {
		t.Fatalf("/readyz = %d %+v", code, st)
	}
	if len(st.Failed) != 1 || st.Failed["disk"] != "read-only" {
		t.Fatalf("failed = %v", st.Failed)
	}

	// Liveness ignores dependency checks.
	if code, _ := get(t, h, "/healthz"); code != http.StatusOK {
		t.Fatalf("/healthz = %d", code)
	}
}
