package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	account "github.com/mind-engage/quizparse/internal/auth"
	"github.com/mind-engage/quizparse/internal/rbac"
)

func whoami() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(SubjectFromContext(r.Context()) + "|" + rbac.RoleFromContext(r.Context()) + "|" + SessionIDFromContext(r.Context())))
	})
}

func TestAuthService_IssueAndParse(t *testing.T) {
	a := NewAuthService("test-secret", time.Hour)
	tok, err := a.IssueJWT("alice", account.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	c, err := a.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Sub != "alice" || c.Role != account.RoleAdmin {
		t.Fatalf("claims: %+v", c)
	}

	if _, err := NewAuthService("other-secret", time.Hour).Parse(tok); err == nil {
		t.Fatalf("token signed with another secret must not verify")
	}

	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := a.Parse(tok); err == nil {
		t.Fatalf("expired token must not verify")
	}
}

func TestAuthenticate_Bearer(t *testing.T) {
	a := NewAuthService("s", time.Hour)
	h := Authenticate(account.NewMemorySessions(time.Hour, nil), a)(whoami())

	tok, _ := a.IssueJWT("bob", account.RoleUser)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "bob|user|" {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "||" {
		t.Fatalf("non-bearer header should pass through anonymously, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestAuthenticate_BasicHeaderKeepsSessionCookie(t *testing.T) {
	sessions := account.NewMemorySessions(time.Hour, nil)
	s, err := sessions.Create(context.Background(), "erin", account.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}
	h := Authenticate(sessions, NewAuthService("s", time.Hour))(whoami())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: s.ID})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if want := "erin|admin|" + s.ID; rec.Code != http.StatusOK || rec.Body.String() != want {
		t.Fatalf("got %d %q want %q", rec.Code, rec.Body.String(), want)
	}
}

func TestAuthenticate_SessionCookie(t *testing.T) {
	sessions := account.NewMemorySessions(time.Hour, nil)
	s, err := sessions.Create(context.Background(), "carol", account.RoleUser)
	if err != nil {
		t.Fatal(err)
	}
	h := Authenticate(sessions, NewAuthService("s", time.Hour))(whoami())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: s.ID})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if want := "carol|user|" + s.ID; rec.Body.String() != want {
		t.Fatalf("got %q want %q", rec.Body.String(), want)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "stale"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "||" {
		t.Fatalf("unknown session should be anonymous, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestRequireUser(t *testing.T) {
	denied := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) }
	h := RequireUser(denied)(whoami())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("anonymous: expected onMissing, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithSubject(req.Context(), "dave"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated: got %d", rec.Code)
	}
}

func TestTokenHandler(t *testing.T) {
	a := NewAuthService("s", time.Hour)
	creds := account.NewCredentials(account.Account{Username: "erin", Password: "pw"})
	h := TokenHandler(a, creds)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"username":"erin","password":"pw"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	c, err := a.Parse(out["access_token"])
	if err != nil || c.Sub != "erin" || c.Role != account.RoleUser {
		t.Fatalf("token claims %+v, err=%v", c, err)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"username":"erin","password":"nope"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json: expected 400, got %d", rec.Code)
	}
}
