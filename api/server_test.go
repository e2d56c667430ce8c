package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"threatwatch/config"
	"threatwatch/core/advisory"
	"threatwatch/core/store"
	"threatwatch/core/threats"
	"threatwatch/core/utils"
)

func newTestServer(t *testing.T, cfg *config.AppConfig) *httptest.Server {
	t.Helper()
	if cfg == nil {
		cfg = &config.AppConfig{}
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(t.TempDir(), "api.db")
	}
	logger := utils.NewLogger()
	db, err := store.NewDB(cfg, logger)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.ApplyMigrations(context.Background(), db, logger); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	svc := threats.NewService(store.NewThreatsStore(db), store.NewActivityStore(db), store.NewMessagesStore(db), logger)
	deps := ServerDeps{DB: db, Threats: svc, Advisory: advisory.NewClient(cfg.Advisory)}
	srv := httptest.NewServer(NewServer(cfg, deps, logger).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func decodeInto(t *testing.T, data []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode %s: %v", string(data), err)
	}
}

func TestThreatLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t, nil)

	// The create form submits the level under the threatLevel key.
	resp, data := doJSON(t, http.MethodPost, srv.URL+"/api/threats", map[string]any{
		"username":    "analyst",
		"name":        "Phishing Campaign",
		"description": "credential harvesting emails targeting finance",
		"status":      "Active",
		"categories":  []string{"Sensitive Data", "IT Services"},
		"threatLevel": 4,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.StatusCode, data)
	}
	var created store.Threat
	decodeInto(t, data, &created)
	if created.ID == 0 || created.Level != 4 || created.Resolution != nil {
		t.Fatalf("unexpected created threat %+v", created)
	}

	resp, data = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/threats/%d", srv.URL, created.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(data), `"resolution":null`) {
		t.Fatalf("expected explicit null resolution in body, got %s", data)
	}

	// The edit form submits the level under the level key, as a string.
	resp, data = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/threats/%d", srv.URL, created.ID), map[string]any{
		"username":    "analyst",
		"name":        "Phishing Campaign",
		"description": "credential harvesting emails targeting finance",
		"status":      "Resolved",
		"categories":  []string{"Sensitive Data", "IT Services"},
		"level":       "4",
		"resolution":  "blocked sender domain and reset affected accounts",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("resolve: expected 200, got %d: %s", resp.StatusCode, data)
	}
	var resolved store.Threat
	decodeInto(t, data, &resolved)
	if resolved.Status != "Resolved" || resolved.Resolution == nil {
		t.Fatalf("expected resolved threat, got %+v", resolved)
	}

	resp, data = doJSON(t, http.MethodGet, srv.URL+"/api/threats/unresolved", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unresolved: expected 200, got %d", resp.StatusCode)
	}
	var open []store.Threat
	decodeInto(t, data, &open)
	if len(open) != 0 {
		t.Fatalf("expected no unresolved threats, got %+v", open)
	}

	resp, data = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/threats/%d/logs", srv.URL, created.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logs: expected 200, got %d", resp.StatusCode)
	}
	var entries []store.ActivityEntry
	decodeInto(t, data, &entries)
	if len(entries) != 2 {
		t.Fatalf("expected create and update log entries, got %d", len(entries))
	}
	if entries[0].Action != threats.ActionUpdated || entries[1].Action != threats.ActionCreated {
		t.Fatalf("expected newest-first logs, got %+v", entries)
	}
}

func TestListFilterByStatus(t *testing.T) {
	srv := newTestServer(t, nil)
	for _, status := range []string{"Potential", "Active"} {
		resp, data := doJSON(t, http.MethodPost, srv.URL+"/api/threats", map[string]any{
			"name":        status + " threat",
			"description": "d",
			"status":      status,
			"categories":  []string{"Environment"},
			"threatLevel": 2,
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create: expected 201, got %d: %s", resp.StatusCode, data)
		}
	}
	resp, data := doJSON(t, http.MethodGet, srv.URL+"/api/threats?status=Active", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.StatusCode)
	}
	var items []store.Threat
	decodeInto(t, data, &items)
	if len(items) != 1 || items[0].Status != "Active" {
		t.Fatalf("expected only the active threat, got %+v", items)
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/threats?status=Bogus", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status filter, got %d", resp.StatusCode)
	}
}

func TestValidationAndNotFoundResponses(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, data := doJSON(t, http.MethodPost, srv.URL+"/api/threats", map[string]any{
		"name": "incomplete",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var errResp struct {
		Error   string            `json:"error"`
		Details map[string]string `json:"details"`
	}
	decodeInto(t, data, &errResp)
	if errResp.Error != "validation failed" || len(errResp.Details) == 0 {
		t.Fatalf("expected field details, got %+v", errResp)
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/threats/999", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/threats", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	raw, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer raw.Body.Close()
	if raw.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", raw.StatusCode)
	}
}

func TestMessageThreadOverHTTP(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, data := doJSON(t, http.MethodPost, srv.URL+"/api/threats", map[string]any{
		"name":        "Insider Risk",
		"description": "d",
		"status":      "Potential",
		"categories":  []string{"Personnel / Human Life"},
		"threatLevel": 3,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.StatusCode, data)
	}
	var created store.Threat
	decodeInto(t, data, &created)

	base := fmt.Sprintf("%s/api/threats/%d/messages", srv.URL, created.ID)
	for _, text := range []string{"first note", "second note"} {
		resp, data = doJSON(t, http.MethodPost, base, map[string]string{"sender": "analyst", "message": text})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("post message: expected 201, got %d: %s", resp.StatusCode, data)
		}
	}

	resp, data = doJSON(t, http.MethodGet, base, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list messages: expected 200, got %d", resp.StatusCode)
	}
	var msgs []store.Message
	decodeInto(t, data, &msgs)
	if len(msgs) != 2 || msgs[0].Message != "first note" || msgs[1].Message != "second note" {
		t.Fatalf("expected chronological thread, got %+v", msgs)
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/threats/999/messages", map[string]string{"sender": "a", "message": "m"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 posting to missing threat, got %d", resp.StatusCode)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	for _, level := range []int{1, 1, 3, 5} {
		resp, data := doJSON(t, http.MethodPost, srv.URL+"/api/threats", map[string]any{
			"name":        fmt.Sprintf("threat level %d", level),
			"description": "d",
			"status":      "Active",
			"categories":  []string{"General Security"},
			"threatLevel": level,
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create: expected 201, got %d: %s", resp.StatusCode, data)
		}
	}
	resp, data := doJSON(t, http.MethodGet, srv.URL+"/api/threats/stats", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", resp.StatusCode)
	}
	var stats threats.Stats
	decodeInto(t, data, &stats)
	want := []threats.LevelCount{{Level: 1, Count: 2}, {Level: 3, Count: 1}, {Level: 5, Count: 1}}
	if len(stats.Levels) != len(want) {
		t.Fatalf("expected sparse buckets %v, got %v", want, stats.Levels)
	}
	for i, w := range want {
		if stats.Levels[i] != w {
			t.Fatalf("bucket %d: expected %v, got %v", i, w, stats.Levels[i])
		}
	}
	if len(stats.Categories) != 1 || stats.Categories[0].Count != 4 {
		t.Fatalf("expected one category with 4 hits, got %+v", stats.Categories)
	}
	if len(stats.Monthly) != 1 {
		t.Fatalf("expected a single month bucket, got %+v", stats.Monthly)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, data := doJSON(t, http.MethodGet, srv.URL+"/api/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, data)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, &config.AppConfig{CORSAllowOrigin: "http://localhost:3000"})
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/threats", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}
