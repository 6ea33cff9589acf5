package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"estateflow/api/internal/authpw"
	"estateflow/api/internal/store"
)

func newTestServer(svc *Service) *HTTPServer {
	return NewHTTPServer(svc, "http://localhost:3000")
}

func doJSON(t *testing.T, server *HTTPServer, method, path, token string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
	}
	return payload
}

func adminStore(t *testing.T) *fakeStore {
	t.Helper()
	hash, err := authpw.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	admin := store.AdminUser{
		ID:           "adm_1",
		Email:        "admin@estateflow.dev",
		DisplayName:  "Administrator",
		PasswordHash: hash,
	}
	return &fakeStore{
		getAdminByEmailFn: func(_ context.Context, emailAddr string) (store.AdminUser, error) {
			if emailAddr == admin.Email {
				return admin, nil
			}
			return store.AdminUser{}, store.ErrNotFound
		},
		getAdminByIDFn: func(_ context.Context, id string) (store.AdminUser, error) {
			if id == admin.ID {
				return admin, nil
			}
			return store.AdminUser{}, store.ErrNotFound
		},
	}
}

func TestLoginIssuesSession(t *testing.T) {
	server := newTestServer(newTestService(adminStore(t)))

	resp := doJSON(t, server, http.MethodPost, "/api/auth/login", "",
		`{"email":"admin@estateflow.dev","password":"correct-horse"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("login status = %d body %s", resp.Code, resp.Body.String())
	}
	payload := decodeResponse(t, resp)
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("missing access token")
	}
	if payload["admin"] != true {
		t.Fatalf("admin flag = %v", payload["admin"])
	}

	session := doJSON(t, server, http.MethodGet, "/api/session", token, "")
	sessionBody := decodeResponse(t, session)
	if sessionBody["authenticated"] != true {
		t.Fatalf("session payload %v", sessionBody)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	server := newTestServer(newTestService(adminStore(t)))

	resp := doJSON(t, server, http.MethodPost, "/api/auth/login", "",
		`{"email":"admin@estateflow.dev","password":"wrong"}`)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.Code)
	}
}

func TestFederatedDenialIsGeneric(t *testing.T) {
	server := newTestServer(newTestService(adminStore(t)))

	resp := doJSON(t, server, http.MethodPost, "/api/auth/federated", "",
		`{"email":"visitor@example.com","displayName":"Visitor"}`)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.Code)
	}
	payload := decodeResponse(t, resp)
	message, _ := payload["error"].(string)
	if message != "Only administrators can access this platform" {
		t.Fatalf("unexpected denial message %q", message)
	}
	// The allow-list itself must never leak.
	if strings.Contains(resp.Body.String(), "estateflow.dev") {
		t.Fatalf("denial response leaks allow-list: %s", resp.Body.String())
	}
}

func TestFederatedAdminGetsSession(t *testing.T) {
	server := newTestServer(newTestService(adminStore(t)))

	resp := doJSON(t, server, http.MethodPost, "/api/auth/federated", "",
		`{"email":"Admin@EstateFlow.dev","displayName":"Administrator"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", resp.Code, resp.Body.String())
	}
	payload := decodeResponse(t, resp)
	if payload["admin"] != true {
		t.Fatalf("admin flag = %v", payload["admin"])
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	server := newTestServer(newTestService(adminStore(t)))

	login := decodeResponse(t, doJSON(t, server, http.MethodPost, "/api/auth/login", "",
		`{"email":"admin@estateflow.dev","password":"correct-horse"}`))
	refreshToken, _ := login["refreshToken"].(string)
	if refreshToken == "" {
		t.Fatal("missing refresh token")
	}

	first := doJSON(t, server, http.MethodPost, "/api/auth/refresh", "",
		`{"refreshToken":"`+refreshToken+`"}`)
	if first.Code != http.StatusOK {
		t.Fatalf("refresh status = %d", first.Code)
	}

	// The old refresh token is single use.
	second := doJSON(t, server, http.MethodPost, "/api/auth/refresh", "",
		`{"refreshToken":"`+refreshToken+`"}`)
	if second.Code != http.StatusUnauthorized {
		t.Fatalf("reused refresh status = %d, want 401", second.Code)
	}
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	server := newTestServer(newTestService(adminStore(t)))

	login := decodeResponse(t, doJSON(t, server, http.MethodPost, "/api/auth/login", "",
		`{"email":"admin@estateflow.dev","password":"correct-horse"}`))
	token, _ := login["token"].(string)

	logout := doJSON(t, server, http.MethodPost, "/api/auth/logout", token, "{}")
	if logout.Code != http.StatusOK {
		t.Fatalf("logout status = %d", logout.Code)
	}

	after := doJSON(t, server, http.MethodGet, "/api/admin/dashboard", token, "")
	if after.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token status = %d, want 401", after.Code)
	}
}

func TestAdminRoutesRequireAdminSession(t *testing.T) {
	server := newTestServer(newTestService(adminStore(t)))

	noToken := doJSON(t, server, http.MethodGet, "/api/admin/dashboard", "", "")
	if noToken.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", noToken.Code)
	}

	garbage := doJSON(t, server, http.MethodGet, "/api/admin/dashboard", "not-a-token", "")
	if garbage.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d, want 401", garbage.Code)
	}
}

func TestSessionEndpointWithoutToken(t *testing.T) {
	server := newTestServer(newTestService(adminStore(t)))

	resp := doJSON(t, server, http.MethodGet, "/api/session", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	payload := decodeResponse(t, resp)
	if payload["authenticated"] != false {
		t.Fatalf("payload %v", payload)
	}
}
