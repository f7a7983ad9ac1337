package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestMintVerifyRoundTrip(t *testing.T) {
	a := NewAuthComponent("test-secret", time.Hour, nil)

	token, err := a.Mint("user-42")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	owner, err := a.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if owner != "user-42" {
		t.Fatalf("owner = %q, want user-42", owner)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	a := NewAuthComponent("secret-a", time.Hour, nil)
	b := NewAuthComponent("secret-b", time.Hour, nil)

	token, err := a.Mint("user-1")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := b.Verify(token); err == nil {
		t.Fatalf("token signed with another secret must not verify")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	a := NewAuthComponent("test-secret", time.Hour, nil)
	a.tokenTTL = -time.Minute

	token, err := a.Mint("user-1")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := a.Verify(token); err == nil {
		t.Fatalf("expired token must not verify")
	}
}

func TestVerifyRejectsNonHMACAlg(t *testing.T) {
	a := NewAuthComponent("test-secret", time.Hour, nil)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	_, err = a.Verify(token)
	if err == nil {
		t.Fatalf("alg=none token must not verify")
	}
	if !strings.Contains(err.Error(), "unexpected signing method") {
		t.Fatalf("err = %v, want signing method rejection", err)
	}
}

func TestVerifyRejectsMissingSub(t *testing.T) {
	a := NewAuthComponent("test-secret", time.Hour, nil)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := a.Verify(token); err == nil {
		t.Fatalf("token without sub must not verify")
	}
}

func TestMiddlewareInjectsOwner(t *testing.T) {
	a := NewAuthComponent("test-secret", time.Hour, nil)
	token, _ := a.Mint("user-7")

	var gotOwner string
	h := a.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOwner, _ = OwnerID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotOwner != "user-7" {
		t.Fatalf("owner in context = %q, want user-7", gotOwner)
	}
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	a := NewAuthComponent("test-secret", time.Hour, nil)

	h := a.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Fatalf("missing WWW-Authenticate challenge")
	}
	if !strings.Contains(rec.Body.String(), `"code":"UNAUTHORIZED"`) {
		t.Fatalf("body = %s, want UNAUTHORIZED code", rec.Body.String())
	}
}

func TestMiddlewarePublicPathBypass(t *testing.T) {
	a := NewAuthComponent("test-secret", time.Hour, []string{"/healthz"})

	called := false
	h := a.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("public path must bypass auth")
	}
}

func TestOwnerIDAbsent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := OwnerID(req.Context()); ok {
		t.Fatalf("OwnerID on a bare context must report absent")
	}
}
