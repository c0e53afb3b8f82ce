package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/noteforge/internal/api"
	"github.com/starford/noteforge/internal/codec"
	"github.com/starford/noteforge/internal/models"
	"github.com/starford/noteforge/internal/noteservice"
	"github.com/starford/noteforge/internal/store"
	"github.com/starford/noteforge/internal/testutil"
)

type testEnv struct {
	srv *httptest.Server
	st  *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := testutil.TestStore(t)
	svc := noteservice.NewService(st, nil)
	srv := httptest.NewServer(api.NewRouter(svc, false, "", nil))
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, st: st}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestNoteCRUD(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/notes", api.NoteRequest{Title: "meeting", Body: "agenda items", Tags: "work"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	created := decode[models.Note](t, resp)
	if created.ID == 0 || created.Title != "meeting" {
		t.Fatalf("created = %+v", created)
	}

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/notes/%d", created.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	got := decode[models.Note](t, resp)
	if got.Body != "agenda items" || got.Tags != "work" {
		t.Errorf("got = %+v", got)
	}

	resp = env.do(t, http.MethodPut, fmt.Sprintf("/notes/%d", created.ID),
		api.NoteRequest{Title: "meeting", Body: "revised agenda", Tags: "work,urgent"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d", resp.StatusCode)
	}
	updated := decode[models.Note](t, resp)
	if updated.Body != "revised agenda" {
		t.Errorf("updated = %+v", updated)
	}

	resp = env.do(t, http.MethodDelete, fmt.Sprintf("/notes/%d", created.ID), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp = env.do(t, http.MethodGet, fmt.Sprintf("/notes/%d", created.ID), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", resp.StatusCode)
	}
}

func TestGetNote_Missing(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/notes/12345", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestUpdateNote_Missing(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPut, "/notes/12345", api.NoteRequest{Title: "ghost"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestDeleteNote_MissingSucceeds(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodDelete, "/notes/12345", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}

func TestNoteID_Invalid(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/notes/abc", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestListNotes_SearchAndTag(t *testing.T) {
	env := newTestEnv(t)

	env.st.Create("alpha", "quarterly planning", "work")
	env.st.Create("beta", "quarterly review", "home")
	env.st.Create("gamma", "grocery list", "home")

	resp := env.do(t, http.MethodGet, "/notes?search=quarterly", nil)
	list := decode[api.NoteListResponse](t, resp)
	if list.Total != 2 {
		t.Errorf("search total = %d, want 2", list.Total)
	}

	resp = env.do(t, http.MethodGet, "/notes?search=quarterly&tag=home", nil)
	list = decode[api.NoteListResponse](t, resp)
	if list.Total != 1 || list.Notes[0].Title != "beta" {
		t.Errorf("combined filter = %+v", list)
	}

	resp = env.do(t, http.MethodGet, "/notes?search=nothing+matches+this", nil)
	list = decode[api.NoteListResponse](t, resp)
	if list.Notes == nil || list.Total != 0 {
		t.Errorf("empty result should be an empty array, got %+v", list)
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	env := newTestEnv(t)

	env.st.Create("first", "body one", "a")
	env.st.Create("second", "body two", "b")

	resp := env.do(t, http.MethodGet, "/export", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "noteforge_export.json") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	exported, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var doc codec.Document
	if err := json.Unmarshal(exported, &doc); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if doc.App != codec.AppName || len(doc.Notes) != 2 {
		t.Fatalf("doc = %+v", doc)
	}

	// Importing our own export back should update, not duplicate.
	req, _ := http.NewRequest(http.MethodPost, env.srv.URL+"/import", bytes.NewReader(exported))
	resp2, err := env.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("import status = %d", resp2.StatusCode)
	}
	stats := decode[store.ImportStats](t, resp2)
	if stats.Inserted != 0 || stats.Updated != 2 {
		t.Errorf("stats = %+v, want inserted=0 updated=2", stats)
	}
}

func TestImport_BadFormat(t *testing.T) {
	env := newTestEnv(t)

	req, _ := http.NewRequest(http.MethodPost, env.srv.URL+"/import", strings.NewReader(`{"no_notes": true}`))
	resp, err := env.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAuthMiddleware(t *testing.T) {
	st := testutil.TestStore(t)
	svc := noteservice.NewService(st, nil)
	srv := httptest.NewServer(api.NewRouter(svc, true, "secret-token", nil))
	t.Cleanup(srv.Close)

	resp, err := srv.Client().Get(srv.URL + "/notes")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/notes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong token status = %d, want 401", resp.StatusCode)
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/notes", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	resp, err = srv.Client().Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("valid token status = %d, want 200", resp.StatusCode)
	}
}
