package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func viewerEcho(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(ViewerID(r.Context())))
}

func TestAuthenticate(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour, time.Hour)
	pair, err := tm.GeneratePair("u1", "alice")
	require.NoError(t, err)
	h := Authenticate(tm, zap.NewNop())(http.HandlerFunc(viewerEcho))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
		body   string
	}{
		{name: "bearer header", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+pair.AccessToken) }, status: http.StatusOK, body: "u1"},
		{name: "cookie", setup: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "accessToken", Value: pair.AccessToken}) }, status: http.StatusOK, body: "u1"},
		{name: "missing", setup: func(r *http.Request) {}, status: http.StatusUnauthorized},
		{name: "malformed header", setup: func(r *http.Request) { r.Header.Set("Authorization", pair.AccessToken) }, status: http.StatusUnauthorized},
		{name: "refresh token", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+pair.RefreshToken) }, status: http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, tc.body, rec.Body.String())
				return
			}
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour, time.Hour)
	pair, err := tm.GeneratePair("u1", "alice")
	require.NoError(t, err)
	h := OptionalAuth(tm)(http.HandlerFunc(viewerEcho))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	var seen string
	h := RequestLogger(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "fixed")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "fixed", seen)
}

func TestWriteError_HidesInternalCause_UntypedError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, zap.NewNop(), errors.New("mongo: connection refused on 10.0.0.3"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "something went wrong", resp.Message)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
	assert.Equal(t, []string{}, resp.Errors)
}

func TestWriteError_Validation(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, zap.NewNop(), ValidationError("all fields are required", "title is required"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "all fields are required", resp.Message)
	assert.Equal(t, []string{"title is required"}, resp.Errors)
}

func TestWriteJSON_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"a": "b"}, "created")

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, resp.Success)
	assert.Equal(t, "created", resp.Message)
}
