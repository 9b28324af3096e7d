package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"filadash"
	"filadash/internal/repository"
	"filadash/internal/service"
)

func TestArchiveHandlers_CreateAndList(t *testing.T) {
	arch := &mockArchive{createID: 7, listResp: []filadash.PrintArchive{
		{ID: 7, FileName: "benchy.3mf", Status: "SUCCESS"},
	}}
	r := newTestRouter(authedService(&service.Service{Archive: arch}))

	w := doJSON(t, r, http.MethodPost, "/api/v1/archives/",
		`{"file_name":"benchy.3mf","status":"SUCCESS","duration_sec":5400,"filament_grams":13.5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("create status=%d, body=%s", w.Code, w.Body.String())
	}
	var created map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if int(created["id"].(float64)) != 7 {
		t.Fatalf("expected id=7, got %v", created["id"])
	}
	if arch.lastCreated.FileName != "benchy.3mf" || arch.lastCreated.FilamentGrams != 13.5 {
		t.Fatalf("payload not forwarded: %+v", arch.lastCreated)
	}

	// Missing required fields → 400 before the service is reached.
	if w := doJSON(t, r, http.MethodPost, "/api/v1/archives/", `{"status":"SUCCESS"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing file_name, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/archives/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status=%d", w.Code)
	}
	var out struct {
		Count    int                     `json:"count"`
		Archives []filadash.PrintArchive `json:"archives"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 1 || out.Archives[0].FileName != "benchy.3mf" {
		t.Fatalf("unexpected list: %+v", out)
	}
}

func TestArchiveHandlers_GetAndDelete(t *testing.T) {
	arch := &mockArchive{getResp: filadash.PrintArchive{ID: 3, FileName: "calicat.3mf", Status: "FAILED"}}
	r := newTestRouter(authedService(&service.Service{Archive: arch}))

	w := doJSON(t, r, http.MethodGet, "/api/v1/archives/3", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status=%d, body=%s", w.Code, w.Body.String())
	}
	var a filadash.PrintArchive
	_ = json.Unmarshal(w.Body.Bytes(), &a)
	if a.ID != 3 || a.FileName != "calicat.3mf" {
		t.Fatalf("unexpected archive: %+v", a)
	}
	if arch.lastGetID != 3 {
		t.Fatalf("id not forwarded: %d", arch.lastGetID)
	}

	// Non-numeric id → 400
	if w := doJSON(t, r, http.MethodGet, "/api/v1/archives/zero", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", w.Code)
	}

	// Missing record → 404
	arch.getErr = repository.ErrNotFound
	if w := doJSON(t, r, http.MethodGet, "/api/v1/archives/99", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	arch.deleteErr = repository.ErrNotFound
	if w := doJSON(t, r, http.MethodDelete, "/api/v1/archives/99", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on delete, got %d", w.Code)
	}
	arch.deleteErr = nil
	if w := doJSON(t, r, http.MethodDelete, "/api/v1/archives/3", ""); w.Code != http.StatusOK {
		t.Fatalf("delete status=%d", w.Code)
	}
}

func TestArchiveHandlers_Stats(t *testing.T) {
	arch := &mockArchive{stats: filadash.PrintStats{
		TotalPrints: 4, Succeeded: 3, Failed: 1, SuccessRate: 0.75, TotalFilamentGrams: 60,
	}}
	r := newTestRouter(authedService(&service.Service{Archive: arch}))

	w := doJSON(t, r, http.MethodGet, "/api/v1/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("stats status=%d, body=%s", w.Code, w.Body.String())
	}
	var st filadash.PrintStats
	_ = json.Unmarshal(w.Body.Bytes(), &st)
	if st.TotalPrints != 4 || st.SuccessRate != 0.75 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestSettingsHandlers_RoundTrip(t *testing.T) {
	set := &mockSettings{
		getResp: filadash.Setting{Key: "theme", Value: "dark"},
		all:     []filadash.Setting{{Key: "theme", Value: "dark"}},
	}
	r := newTestRouter(authedService(&service.Service{Settings: set}))

	if w := doJSON(t, r, http.MethodPut, "/api/v1/settings/theme", `{"value":"dark"}`); w.Code != http.StatusOK {
		t.Fatalf("put status=%d, body=%s", w.Code, w.Body.String())
	}
	if set.lastPutKey != "theme" || set.lastPutValue != "dark" {
		t.Fatalf("put not forwarded: %q=%q", set.lastPutKey, set.lastPutValue)
	}

	w := doJSON(t, r, http.MethodGet, "/api/v1/settings/theme", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status=%d", w.Code)
	}
	var s filadash.Setting
	_ = json.Unmarshal(w.Body.Bytes(), &s)
	if s.Value != "dark" {
		t.Fatalf("unexpected setting: %+v", s)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/settings/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status=%d", w.Code)
	}
	var out struct {
		Count int `json:"count"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 1 {
		t.Fatalf("unexpected count: %d", out.Count)
	}
}
