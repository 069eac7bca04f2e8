package user

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gotube/internal/common"
)

func fakeAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Test-User")
		if id == "" {
			common.WriteError(w, nil, common.AuthenticationError("unauthorized request"))
			return
		}
		next.ServeHTTP(w, r.WithContext(common.WithViewer(r.Context(), common.Viewer{UserID: id})))
	})
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, filename := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("png"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func cookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestUserRoutes(t *testing.T) {
	f := newFixture(t)
	r := mux.NewRouter()
	NewHandler(f.svc, zap.NewNop(), false, time.Hour, 24*time.Hour).RegisterRoutes(r, fakeAuth)

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	body, ct := multipartBody(t, map[string]string{
		"fullName": "Alice", "email": "alice@example.com", "username": "alice", "password": "secret123",
	}, nil)
	req := httptest.NewRequest(http.MethodPost, "/users/register", body)
	req.Header.Set("Content-Type", ct)
	assert.Equal(t, http.StatusBadRequest, serve(req).Code, "avatar is required")

	f.expectUpload("av1")
	body, ct = multipartBody(t, map[string]string{
		"fullName": "Alice", "email": "alice@example.com", "username": "alice", "password": "secret123",
	}, map[string]string{"avatar": "me.png"})
	req = httptest.NewRequest(http.MethodPost, "/users/register", body)
	req.Header.Set("Content-Type", ct)
	rec := serve(req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	var registered struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	userID := registered.Data["_id"].(string)

	rec = serve(httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(`{"username":"alice","password":"nope-nope"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(`{"username":"ghost","password":"secret123"}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(`{"email":"alice@example.com","password":"secret123"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	access, refresh := cookie(rec, common.AccessTokenCookie), cookie(rec, common.RefreshTokenCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.True(t, access.HttpOnly)
	assert.Contains(t, rec.Body.String(), `"accessToken"`)

	req = httptest.NewRequest(http.MethodPost, "/users/refresh-token", nil)
	req.AddCookie(refresh)
	rec = serve(req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(httptest.NewRequest(http.MethodPost, "/users/refresh-token", strings.NewReader(`{"refreshToken":"garbage"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/users/current-user", nil)
	req.Header.Set("X-Test-User", userID)
	rec = serve(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)

	req = httptest.NewRequest(http.MethodPatch, "/users/update-account", strings.NewReader(`{"fullName":"Alice B","email":"ab@x.io"}`))
	req.Header.Set("X-Test-User", userID)
	assert.Equal(t, http.StatusOK, serve(req).Code)

	req = httptest.NewRequest(http.MethodPost, "/users/change-password", strings.NewReader(`{"oldPassword":"bad-one","newPassword":"another1"}`))
	req.Header.Set("X-Test-User", userID)
	assert.Equal(t, http.StatusBadRequest, serve(req).Code)

	rec = serve(httptest.NewRequest(http.MethodGet, "/users/c/alice", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"subscribersCount":0`)

	assert.Equal(t, http.StatusNotFound, serve(httptest.NewRequest(http.MethodGet, "/users/c/ghost", nil)).Code)

	req = httptest.NewRequest(http.MethodGet, "/users/history", nil)
	req.Header.Set("X-Test-User", userID)
	rec = serve(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)

	req = httptest.NewRequest(http.MethodPost, "/users/logout", nil)
	req.Header.Set("X-Test-User", userID)
	rec = serve(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	cleared := cookie(rec, common.RefreshTokenCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Equal(t, -1, cleared.MaxAge)

	assert.Equal(t, http.StatusUnauthorized, serve(httptest.NewRequest(http.MethodPost, "/users/logout", nil)).Code)
}

func TestUpdateAvatarRoute(t *testing.T) {
	f := newFixture(t)
	r := mux.NewRouter()
	NewHandler(f.svc, zap.NewNop(), true, time.Hour, time.Hour).RegisterRoutes(r, fakeAuth)
	alice := f.register(t, "alice", "alice@example.com")

	f.expectUpload("av2")
	f.objects.EXPECT().Delete(gomock.Any(), "avatar-alice").Return(nil)
	body, ct := multipartBody(t, nil, map[string]string{"avatar": "new.png"})
	req := httptest.NewRequest(http.MethodPatch, "/users/avatar", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-Test-User", alice.ID())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http://media/av2")
}
