package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"feeadmin/internal/log"
	"feeadmin/internal/session"
)

func testLogger() *log.Logger {
	return log.NewWithHandler(slog.NewTextHandler(io.Discard, nil), log.ComponentAPI)
}

func newTestClient(t *testing.T, serverURL string, tokens session.Tokens) (*Client, *session.Store) {
	t.Helper()
	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	if tokens.AccessToken != "" {
		if err := store.Set(tokens); err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}
	client := New(serverURL, store, Options{Logger: testLogger(), RateLimitRPS: 1000, RateLimitBurst: 1000})
	return client, store
}

func TestRefreshTransportRetriesOnceAfterRefresh(t *testing.T) {
	var refreshCalls, listCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/refresh":
			refreshCalls++
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["refresh_token"] != "refresh-old" {
				t.Errorf("refresh called with %q", body["refresh_token"])
			}
			_ = json.NewEncoder(w).Encode(session.Tokens{AccessToken: "access-new", RefreshToken: "refresh-new"})
		case "/api/v1/parents":
			listCalls++
			if r.Header.Get("Authorization") != "Bearer access-new" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`[{"id":"p1","first_name":"Jane","last_name":"Doe","email":"jane@x.example"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL, session.Tokens{AccessToken: "access-old", RefreshToken: "refresh-old"})

	parents, err := client.ListParents(context.Background())
	if err != nil {
		t.Fatalf("list parents: %v", err)
	}
	if len(parents) != 1 || parents[0].ID != "p1" {
		t.Fatalf("unexpected parents: %+v", parents)
	}
	if refreshCalls != 1 {
		t.Errorf("expected 1 refresh call, got %d", refreshCalls)
	}
	if listCalls != 2 {
		t.Errorf("expected 2 list calls (401 + retry), got %d", listCalls)
	}
	if store.AccessToken() != "access-new" || store.RefreshToken() != "refresh-new" {
		t.Errorf("session not updated: %q / %q", store.AccessToken(), store.RefreshToken())
	}
}

func TestRefreshTransportRetriesAtMostOnce(t *testing.T) {
	// The server rejects the refreshed token too. The retry response is
	// returned as-is (an API 401 error); no second refresh round happens.
	var listCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/refresh":
			_ = json.NewEncoder(w).Encode(session.Tokens{AccessToken: "access-new", RefreshToken: "refresh-new"})
		case "/api/v1/parents":
			listCalls++
			w.WriteHeader(http.StatusUnauthorized)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, session.Tokens{AccessToken: "a", RefreshToken: "r"})

	_, err := client.ListParents(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected API 401 error, got %v", err)
	}
	if listCalls != 2 {
		t.Errorf("expected exactly 2 list calls, got %d", listCalls)
	}
}

func TestRefreshTransportNoRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL, session.Tokens{AccessToken: "stale"})

	_, err := client.ListParents(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if store.Active() {
		t.Error("session should be cleared")
	}
}

func TestRefreshTransportFailedExchangeClearsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/auth/refresh" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":{"message":"refresh token revoked"}}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, store := newTestClient(t, server.URL, session.Tokens{AccessToken: "a", RefreshToken: "revoked"})

	_, err := client.ListParents(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if store.Active() {
		t.Error("session should be cleared after failed refresh")
	}
}

func TestRefreshTransportReplaysRequestBody(t *testing.T) {
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/refresh":
			_ = json.NewEncoder(w).Encode(session.Tokens{AccessToken: "access-new", RefreshToken: "refresh-new"})
		case "/api/v1/parents":
			body, _ := io.ReadAll(r.Body)
			bodies = append(bodies, string(body))
			if r.Header.Get("Authorization") != "Bearer access-new" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"p1","first_name":"Jane","last_name":"Doe","email":"jane@x.example"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, session.Tokens{AccessToken: "a", RefreshToken: "r"})

	_, err := client.CreateParent(context.Background(), ParentInput{
		FirstName: "Jane", LastName: "Doe", Email: "jane@x.example",
	})
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	if len(bodies) != 2 {
		t.Fatalf("expected body sent twice, got %d", len(bodies))
	}
	if bodies[0] != bodies[1] {
		t.Errorf("retried body differs:\n%s\n%s", bodies[0], bodies[1])
	}
}
