package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"seaview/pkg/client"
	apperrors "seaview/pkg/errors"
	"seaview/pkg/logger"
)

type stubVerifier struct {
	principal *client.Principal
	err       error
	gotToken  string
}

func (s *stubVerifier) VerifyPrincipal(ctx context.Context, token string) (*client.Principal, error) {
	s.gotToken = token
	if s.err != nil {
		return nil, s.err
	}
	return s.principal, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"})
}

func TestAuthenticationInjectsPrincipal(t *testing.T) {
	verifier := &stubVerifier{principal: &client.Principal{UserID: "guest-1", Role: "guest"}}

	var got client.Principal
	var ok bool
	handler := Authentication(verifier, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = PrincipalFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations", nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if verifier.gotToken != "token-abc" {
		t.Errorf("verifier got token %q", verifier.gotToken)
	}
	if !ok || got.UserID != "guest-1" {
		t.Fatalf("principal not in context: %+v ok=%v", got, ok)
	}
}

func TestAuthenticationPassThroughWithoutToken(t *testing.T) {
	verifier := &stubVerifier{}

	var ok bool
	handler := Authentication(verifier, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = PrincipalFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if ok {
		t.Fatal("anonymous request carries a principal")
	}
	if verifier.gotToken != "" {
		t.Fatal("verifier called without a token")
	}
}

func TestAuthenticationRejectsBadToken(t *testing.T) {
	verifier := &stubVerifier{err: apperrors.Unauthorized("token expired")}

	called := false
	handler := Authentication(verifier, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if called {
		t.Fatal("handler ran despite failed verification")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		if got := extractBearerToken(req); got != tc.want {
			t.Errorf("extractBearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
