package video

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gotube/internal/common"
	"gotube/internal/pipeline"
	"gotube/internal/store"
	"gotube/internal/view"
)

// ---- fake VideoService ----

type fakeVideoSvc struct {
	FeedFn          func(ctx context.Context, q view.FeedQuery) (*pipeline.Page, error)
	PublishFn       func(ctx context.Context, ownerID string, in PublishInput) (store.Document, error)
	GetFn           func(ctx context.Context, videoID, viewerID string) (store.Document, error)
	UpdateFn        func(ctx context.Context, actorID, videoID string, in UpdateInput) (store.Document, error)
	DeleteFn        func(ctx context.Context, actorID, videoID string) error
	TogglePublishFn func(ctx context.Context, actorID, videoID string) (store.Document, error)
	CheckOwnerFn    func(ctx context.Context, actorID, videoID string) error
}

func (f *fakeVideoSvc) Feed(ctx context.Context, q view.FeedQuery) (*pipeline.Page, error) {
	return f.FeedFn(ctx, q)
}
func (f *fakeVideoSvc) Publish(ctx context.Context, o string, in PublishInput) (store.Document, error) {
	return f.PublishFn(ctx, o, in)
}
func (f *fakeVideoSvc) Get(ctx context.Context, v, viewer string) (store.Document, error) {
	return f.GetFn(ctx, v, viewer)
}
func (f *fakeVideoSvc) Update(ctx context.Context, a, v string, in UpdateInput) (store.Document, error) {
	return f.UpdateFn(ctx, a, v, in)
}
func (f *fakeVideoSvc) Delete(ctx context.Context, a, v string) error {
	return f.DeleteFn(ctx, a, v)
}
func (f *fakeVideoSvc) TogglePublish(ctx context.Context, a, v string) (store.Document, error) {
	return f.TogglePublishFn(ctx, a, v)
}
func (f *fakeVideoSvc) CheckOwner(ctx context.Context, a, v string) error {
	return f.CheckOwnerFn(ctx, a, v)
}

const viewerID = "64b7f0c2e1d3a4b5c6d7e8f9"

// fakeAuth stands in for the token middleware: requests carrying X-Test-User are authenticated.
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

func newRouter(svc VideoService) *mux.Router {
	r := mux.NewRouter()
	NewHandler(svc, zap.NewNop()).RegisterRoutes(r, fakeAuth)
	return r
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestFeed_PassesQuery(t *testing.T) {
	var got view.FeedQuery
	svc := &fakeVideoSvc{FeedFn: func(_ context.Context, q view.FeedQuery) (*pipeline.Page, error) {
		got = q
		return &pipeline.Page{Items: []store.Document{}, Page: 2, Limit: 5}, nil
	}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/videos?query=cats&sortBy=views&sortType=asc&page=2&limit=5&userId=abc", nil)
	newRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, view.FeedQuery{Query: "cats", UserID: "abc", SortBy: "views", SortType: "asc", Page: 2, Limit: 5}, got)
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["data"].(map[string]any)["page"])
}

func TestGet_AnonymousViewer(t *testing.T) {
	svc := &fakeVideoSvc{GetFn: func(_ context.Context, videoID, viewer string) (store.Document, error) {
		assert.Equal(t, "", viewer)
		return nil, common.NotFoundError("video not found")
	}}
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/videos/"+viewerID, nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "video not found", body["message"])
	assert.Equal(t, false, body["success"])
}

func TestPublish_RequiresAuth(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&fakeVideoSvc{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/videos", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func filePart(t *testing.T, mw *multipart.Writer, field, filename, contentType, content string) {
	t.Helper()
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
}

func TestPublish_Multipart(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "hello"))
	require.NoError(t, mw.WriteField("description", "world"))
	require.NoError(t, mw.WriteField("duration", "12.5"))
	filePart(t, mw, "videoFile", "clip.mp4", "video/mp4", "VIDEO")
	filePart(t, mw, "thumbnail", "thumb.png", "image/png", "PNG")
	require.NoError(t, mw.Close())

	svc := &fakeVideoSvc{PublishFn: func(_ context.Context, owner string, in PublishInput) (store.Document, error) {
		assert.Equal(t, viewerID, owner)
		assert.Equal(t, "hello", in.Title)
		assert.Equal(t, 12.5, in.Duration)
		require.NotNil(t, in.Video)
		assert.Equal(t, "clip.mp4", in.Video.Filename)
		assert.Equal(t, common.MediaFileTypeVideo, in.Video.FileType())
		data, _ := io.ReadAll(in.Thumbnail.Body)
		assert.Equal(t, "PNG", string(data))
		return store.Document{"_id": "v1", "title": in.Title}, nil
	}}

	req := httptest.NewRequest(http.MethodPost, "/videos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Test-User", viewerID)
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "hello", decode(t, rec)["data"].(map[string]any)["title"])
}

func TestPublish_BadDuration(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("duration", "long"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/videos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Test-User", viewerID)
	rec := httptest.NewRecorder()
	newRouter(&fakeVideoSvc{}).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDelete_Forbidden(t *testing.T) {
	svc := &fakeVideoSvc{DeleteFn: func(_ context.Context, actor, video string) error {
		assert.Equal(t, viewerID, actor)
		assert.Equal(t, "v1", video)
		return common.AuthorizationError("you are not allowed to modify this video")
	}}
	req := httptest.NewRequest(http.MethodDelete, "/videos/v1", nil)
	req.Header.Set("X-Test-User", viewerID)
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTogglePublish_Handler(t *testing.T) {
	svc := &fakeVideoSvc{TogglePublishFn: func(_ context.Context, actor, video string) (store.Document, error) {
		return store.Document{"_id": video, "isPublic": false}, nil
	}}
	req := httptest.NewRequest(http.MethodPost, "/videos/v9/toggle-publish", nil)
	req.Header.Set("X-Test-User", viewerID)
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["data"].(map[string]any)["isPublic"])
}

func TestUpdate_OwnershipOutranksBody(t *testing.T) {
	var checked int
	svc := &fakeVideoSvc{
		CheckOwnerFn: func(_ context.Context, actor, video string) error {
			checked++
			assert.Equal(t, "v1", video)
			if actor != viewerID {
				return common.AuthorizationError("you are not allowed to modify this video")
			}
			return nil
		},
	}
	for _, tc := range []struct {
		name   string
		user   string
		status int
	}{
		{"stranger", "64b7f0c2e1d3a4b5c6d7e800", http.StatusForbidden},
		{"owner", viewerID, http.StatusBadRequest},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/videos/v1", strings.NewReader(`{"title":"json, not multipart"}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Test-User", tc.user)
			rec := httptest.NewRecorder()
			newRouter(svc).ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
	assert.Equal(t, 2, checked)
}
