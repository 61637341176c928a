package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tuaspower/signupflow/internal/models"
	"github.com/tuaspower/signupflow/internal/session"
	"github.com/tuaspower/signupflow/internal/store"
)

func newTestServer() (*Server, *store.InMemoryStore) {
	st := store.NewInMemoryStore()
	clock := func() time.Time { return time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC) }
	mgr := session.NewManagerWithClock(st, nil, clock)
	return NewServer(mgr, st), st
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return resp
}

func createSession(t *testing.T, handler http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session status = %d, want 201", rec.Code)
	}
	resp := decodeResponse(t, rec)
	data, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("result = %T, want object", resp.Result)
	}
	id, _ := data["id"].(string)
	if id == "" {
		t.Fatal("created session has no id")
	}
	return id
}

func TestCreateAndGetSession(t *testing.T) {
	srv, _ := newTestServer()
	handler := srv.Handler()
	id := createSession(t, handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get session status = %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Status != string(models.APIStatusOK) {
		t.Errorf("status = %q, want ok", resp.Status)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	srv, _ := newTestServer()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/does-not-exist", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestPostMessage(t *testing.T) {
	srv, st := newTestServer()
	handler := srv.Handler()
	id := createSession(t, handler)

	body := bytes.NewBufferString(`{"message":"1"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/messages", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("post message status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	stored, _ := st.GetSession(id)
	if stored.Stage != models.StageEdgeCaseCheck {
		t.Errorf("stage = %v, want EDGE_CASE_CHECK", stored.Stage)
	}
}

func TestPostMessageEmptyBadRequest(t *testing.T) {
	srv, _ := newTestServer()
	handler := srv.Handler()
	id := createSession(t, handler)

	body := bytes.NewBufferString(`{"message":"  "}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/messages", body))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPostMessageInvalidJSON(t *testing.T) {
	srv, _ := newTestServer()
	handler := srv.Handler()
	id := createSession(t, handler)

	body := bytes.NewBufferString(`{not json`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/messages", body))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestPostMessageTerminalConflict(t *testing.T) {
	srv, _ := newTestServer()
	handler := srv.Handler()
	id := createSession(t, handler)

	for _, msg := range []string{"1", "I have solar panels"} {
		body, _ := json.Marshal(map[string]string{"message": msg})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/messages", bytes.NewReader(body)))
		if rec.Code != http.StatusOK {
			t.Fatalf("post %q status = %d, want 200", msg, rec.Code)
		}
	}

	body := bytes.NewBufferString(`{"message":"hello?"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/"+id+"/messages", body))
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409 after rejection", rec.Code)
	}
}

func TestListSessionsAndApplications(t *testing.T) {
	srv, _ := newTestServer()
	handler := srv.Handler()
	createSession(t, handler)
	createSession(t, handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list sessions status = %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if list, ok := resp.Result.([]interface{}); !ok || len(list) != 2 {
		t.Errorf("result = %+v, want two sessions", resp.Result)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/applications", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("list applications status = %d, want 200", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/sessions", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Message != "Service is healthy" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("signup_sessions_started_total")) {
		t.Error("metrics output should include the sessions started counter")
	}
}
