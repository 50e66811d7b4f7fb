package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/interniverse/backend/internal/middleware"
	"github.com/interniverse/backend/internal/utils"
)

// mockFetcher implements middleware.SessionFetcher without any database dependency.
type mockFetcher struct {
	session utils.SessionData
	err     error
}

func (m mockFetcher) FindSession(userID int32, token string) (utils.SessionData, error) {
	return m.session, m.err
}

// callWithCookies wraps a simple 200-OK inner handler in the provided middleware,
// optionally setting the session cookies on the request, and returns the recorded
// response.
func callWithCookies(t *testing.T, mw func(http.Handler) http.Handler, userID, token string) *httptest.ResponseRecorder {
	t.Helper()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := mw(inner)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if userID != "" {
		req.AddCookie(&http.Cookie{Name: "user_id", Value: userID})
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// TestSessionMiddleware_MissingCookies verifies that a request without the
// session cookies receives a 401 response.
func TestSessionMiddleware_MissingCookies(t *testing.T) {
	mw := middleware.SessionMiddleware(mockFetcher{})

	if rec := callWithCookies(t, mw, "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("no cookies: expected 401, got %d", rec.Code)
	}
	if rec := callWithCookies(t, mw, "42", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token cookie: expected 401, got %d", rec.Code)
	}
	if rec := callWithCookies(t, mw, "", "sometoken"); rec.Code != http.StatusUnauthorized {
		t.Errorf("missing id cookie: expected 401, got %d", rec.Code)
	}
}

// TestSessionMiddleware_MalformedUserID verifies that a non-numeric user_id
// cookie is rejected before the fetcher runs.
func TestSessionMiddleware_MalformedUserID(t *testing.T) {
	mw := middleware.SessionMiddleware(mockFetcher{})

	rec := callWithCookies(t, mw, "not-a-number", "sometoken")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

// TestSessionMiddleware_ExpiredSession verifies that a matching session row
// past its expiry receives a 401 response containing "Session expired".
func TestSessionMiddleware_ExpiredSession(t *testing.T) {
	fetcher := mockFetcher{
		session: utils.SessionData{
			UserID:     42,
			Token:      "expired-token",
			ExpiryDate: time.Now().Add(-1 * time.Hour).UnixMilli(),
		},
	}
	mw := middleware.SessionMiddleware(fetcher)

	rec := callWithCookies(t, mw, "42", "expired-token")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "Session expired") {
		t.Errorf("expected body to contain %q, got: %q", "Session expired", body)
	}
}

// TestSessionMiddleware_FetcherError verifies that a fetcher error (e.g. session
// not found) results in a 401 response.
func TestSessionMiddleware_FetcherError(t *testing.T) {
	fetcher := mockFetcher{err: errors.New("session not found")}
	mw := middleware.SessionMiddleware(fetcher)

	rec := callWithCookies(t, mw, "42", "nonexistent-token")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

// TestSessionMiddleware_ValidSession verifies that a valid, non-expired session
// receives a 200 response and that the userID is injected into the context.
func TestSessionMiddleware_ValidSession(t *testing.T) {
	const wantUserID int32 = 123

	fetcher := mockFetcher{
		session: utils.SessionData{
			UserID:     wantUserID,
			Token:      "valid-token",
			ExpiryDate: time.Now().Add(1 * time.Hour).UnixMilli(),
		},
	}

	// inner handler reads and echoes the userID from context
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, ok := utils.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "userID not in context", http.StatusInternalServerError)
			return
		}
		if gotUserID != wantUserID {
			http.Error(w, "wrong userID in context", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.SessionMiddleware(fetcher)(inner)
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.AddCookie(&http.Cookie{Name: "user_id", Value: "123"})
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "valid-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d; body: %s", rec.Code, rec.Body.String())
	}
}

// TestThrottle_BlocksAfterBurst verifies the per-IP limiter lets the burst
// through and then answers 429.
func TestThrottle_BlocksAfterBurst(t *testing.T) {
	throttle := middleware.NewThrottle(1, 2)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := throttle.Middleware(inner)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("expected first two requests to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected third request to be throttled, got %v", codes)
	}
}

// TestThrottle_PerIP verifies a second client is not affected by another
// client exhausting its budget.
func TestThrottle_PerIP(t *testing.T) {
	throttle := middleware.NewThrottle(1, 1)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := throttle.Middleware(inner)

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("10.0.0.1:1"); code != http.StatusOK {
		t.Fatalf("first client first request: expected 200, got %d", code)
	}
	if code := send("10.0.0.1:1"); code != http.StatusTooManyRequests {
		t.Fatalf("first client second request: expected 429, got %d", code)
	}
	if code := send("10.0.0.2:1"); code != http.StatusOK {
		t.Fatalf("second client: expected 200, got %d", code)
	}
}
