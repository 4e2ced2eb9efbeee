package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

var testSecret = []byte("testsecret")

func signTestToken(t *testing.T, username string, ttl time.Duration) string {
	t.Helper()
	claims := Claims{
		Username: username,
		UserID:   "u-1",
		Role:     []string{"admin"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestParseVerified(t *testing.T) {
	d, err := Parse("Bearer "+signTestToken(t, "maya", time.Hour), testSecret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Actor() != "maya" {
		t.Fatalf("expected actor maya, got %q", d.Actor())
	}
}

func TestParseWrongSecret(t *testing.T) {
	if _, err := Parse(signTestToken(t, "maya", time.Hour), []byte("other")); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseUnverifiedStillChecksExpiry(t *testing.T) {
	if _, err := Parse(signTestToken(t, "maya", time.Hour), nil); err != nil {
		t.Fatalf("unverified parse failed: %v", err)
	}
	_, err := Parse(signTestToken(t, "maya", -time.Minute), nil)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestAuthenticateMiddleware(t *testing.T) {
	var actor string
	h := Authenticate(testSecret)(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		actor = FromContext(r.Context()).Actor()
		if Token(r.Context()) == "" {
			t.Error("token not forwarded")
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/lists/destinations", nil)
	rec := httptest.NewRecorder()
	h(rec, req, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/lists/destinations", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: signTestToken(t, "maya", time.Hour)})
	rec = httptest.NewRecorder()
	h(rec, req, nil)
	if rec.Code != http.StatusOK || actor != "maya" {
		t.Fatalf("expected 200 for maya, got %d actor=%q", rec.Code, actor)
	}
}
