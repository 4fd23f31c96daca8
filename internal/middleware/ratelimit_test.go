package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"intersect-backend/internal/models"
)

type fakeCache struct {
	counts map[string]int64
	err    error
}

func newFakeCache() *fakeCache {
	return &fakeCache{counts: make(map[string]int64)}
}

func (f *fakeCache) GetDevReport(orgID, date string) (*models.DevReport, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCache) SetDevReport(report *models.DevReport, ttl time.Duration) error {
	return nil
}

func (f *fakeCache) IncrWithTTL(key string, ttl time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeCache) Close() error { return nil }

func TestRateLimitSignIn(t *testing.T) {
	fc := newFakeCache()
	handler := RateLimitSignIn(fc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < signinLimit; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/signin", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/signin", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different IP is counted separately.
	req = httptest.NewRequest(http.MethodPost, "/v1/auth/signin", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitSignIn_CacheDownFailsOpen(t *testing.T) {
	fc := newFakeCache()
	fc.err = errors.New("redis down")

	handler := RateLimitSignIn(fc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/signin", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApplyKeyAllowed(t *testing.T) {
	fc := newFakeCache()
	key := "int_ok_deadbeefdeadbeef"

	for i := 0; i < applyKeyLimit; i++ {
		assert.True(t, ApplyKeyAllowed(fc, key))
	}
	assert.False(t, ApplyKeyAllowed(fc, key))

	// Only the public prefix is counted, a different suffix shares the bucket.
	assert.False(t, ApplyKeyAllowed(fc, "int_ok_deadbxxxxxxxx"))

	// A different prefix has its own budget.
	assert.True(t, ApplyKeyAllowed(fc, "int_ok_cafef00dcafef00d"))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.9:1234"
	assert.Equal(t, "10.0.0.9", clientIP(req))

	req.Header.Set("X-Real-IP", "203.0.113.7")
	assert.Equal(t, "203.0.113.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")
	assert.Equal(t, "198.51.100.4", clientIP(req))
}
