package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/digikraal/ledgerview/pkg/errors"
	"github.com/digikraal/ledgerview/pkg/types"
)

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (f *fakeRateStore) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, 0, f.err
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

// limitedRequest sends body from remote through a fresh handler chain.
func limitedRequest(handler http.Handler, remote, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func passThrough(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAuthRateLimitRestoresBody(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 2)
	var seen string
	handler := AuthRateLimit(policy, newFakeRateStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		seen = string(body)
		w.WriteHeader(http.StatusOK)
	}))

	payload := `{"email":"tester@example.com","password":"secret"}`
	rec := limitedRequest(handler, "1.2.3.4:5678", payload)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payload, seen)
}

func TestAuthRateLimitEmailBudget(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 2)
	handler := AuthRateLimit(policy, newFakeRateStore(), nil)(http.HandlerFunc(passThrough))

	// Different source addresses share the per-email budget.
	for _, remote := range []string{"1.1.1.1:1", "2.2.2.2:2"} {
		rec := limitedRequest(handler, remote, `{"email":"blocked@example.com"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := limitedRequest(handler, "3.3.3.3:3", `{"email":"BLOCKED@example.com"}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, string(pkgerrors.CodeRateLimit), envelope.Error.Code)
}

func TestAuthRateLimitIPBudgetSetsRetryAfter(t *testing.T) {
	policy := NewAuthRateLimitPolicy("register", time.Minute, 1, 0)
	handler := AuthRateLimit(policy, newFakeRateStore(), nil)(http.HandlerFunc(passThrough))

	first := limitedRequest(handler, "5.6.7.8:1234", `{"email":"one@example.com"}`)
	second := limitedRequest(handler, "5.6.7.8:4321", `{"email":"two@example.com"}`)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
}

func TestAuthRateLimitFailsClosed(t *testing.T) {
	store := newFakeRateStore()
	store.err = errors.New("redis down")
	policy := NewAuthRateLimitPolicy("login", time.Minute, 5, 5)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	rec := limitedRequest(handler, "1.2.3.4:1", `{"email":"a@example.com"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuthRateLimitDisabledPolicy(t *testing.T) {
	store := newFakeRateStore()
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", 0, 5, 5), store, nil)(http.HandlerFunc(passThrough))

	rec := limitedRequest(handler, "1.2.3.4:1", `{"email":"a@example.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.counts)
}

func TestAuthRateLimitKeys(t *testing.T) {
	store := newFakeRateStore()
	policy := NewAuthRateLimitPolicy(" Login ", time.Minute, 5, 5)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(passThrough))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":" Ana@Example.com "}`))
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.EqualValues(t, 1, store.counts["login:ip:9.9.9.9"])
	assert.EqualValues(t, 1, store.counts["login:email:"+sha256Hex("ana@example.com")])
}

func TestClientIP(t *testing.T) {
	cases := map[string]struct {
		header, value, remote, want string
	}{
		"forwarded first hop": {"X-Forwarded-For", " 9.9.9.9 , 10.0.0.1", "1.1.1.1:1", "9.9.9.9"},
		"real ip":             {"X-Real-IP", "8.8.8.8", "1.1.1.1:1", "8.8.8.8"},
		"socket":              {"", "", "7.7.7.7:4000", "7.7.7.7"},
		"socket without port": {"", "", "7.7.7.7", "7.7.7.7"},
	}
	for name, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tc.remote
		if tc.header != "" {
			req.Header.Set(tc.header, tc.value)
		}
		assert.Equal(t, tc.want, clientIP(req), name)
	}
}
