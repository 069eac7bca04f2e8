package video

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gotube/internal/common"
	"gotube/internal/view"
)

// Handler exposes VideoService over HTTP.
type Handler struct {
	videoService VideoService
	logger       *zap.Logger
}

func NewHandler(videoService VideoService, logger *zap.Logger) *Handler {
	return &Handler{videoService: videoService, logger: logger}
}

// RegisterRoutes mounts the video routes; auth guards the ones that need a viewer.
func (h *Handler) RegisterRoutes(r *mux.Router, auth mux.MiddlewareFunc) {
	r.HandleFunc("/videos", h.Feed).Methods(http.MethodGet)
	r.Handle("/videos", auth(http.HandlerFunc(h.Publish))).Methods(http.MethodPost)
	r.HandleFunc("/videos/{videoId}", h.Get).Methods(http.MethodGet)
	r.Handle("/videos/{videoId}", auth(http.HandlerFunc(h.Update))).Methods(http.MethodPatch)
	r.Handle("/videos/{videoId}", auth(http.HandlerFunc(h.Delete))).Methods(http.MethodDelete)
	r.Handle("/videos/{videoId}/toggle-publish", auth(http.HandlerFunc(h.TogglePublish))).Methods(http.MethodPost)
}

func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	page, err := h.videoService.Feed(r.Context(), view.FeedQuery{
		Query:    common.QueryString(r, "query"),
		UserID:   common.QueryString(r, "userId"),
		SortBy:   common.QueryString(r, "sortBy"),
		SortType: common.QueryString(r, "sortType"),
		Page:     common.QueryInt(r, "page"),
		Limit:    common.QueryInt(r, "limit"),
	})
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, page, "videos fetched successfully")
}

func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	ownerID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	if err := common.ParseMultipart(r); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	in := PublishInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}
	if raw := r.FormValue("duration"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			common.WriteError(w, h.logger, common.ValidationError("duration must be a number"))
			return
		}
		in.Duration = d
	}
	if in.Video, err = common.FormUpload(r, "videoFile"); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	if in.Thumbnail, err = common.FormUpload(r, "thumbnail"); err != nil {
		common.CloseUploads(in.Video)
		common.WriteError(w, h.logger, err)
		return
	}
	defer common.CloseUploads(in.Video, in.Thumbnail)

	video, err := h.videoService.Publish(r.Context(), ownerID, in)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, video, "video published successfully")
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	video, err := h.videoService.Get(r.Context(), common.PathVar(r, "videoId"), common.ViewerID(r.Context()))
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, video, "video fetched successfully")
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	videoID := common.PathVar(r, "videoId")
	checkOwner := func() error { return h.videoService.CheckOwner(r.Context(), actorID, videoID) }
	if err := common.ParseMultipart(r); err != nil {
		common.WriteError(w, h.logger, common.OwnerFirst(err, checkOwner))
		return
	}
	defer r.MultipartForm.RemoveAll()

	in := UpdateInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}
	if in.Thumbnail, err = common.FormUpload(r, "thumbnail"); err != nil {
		common.WriteError(w, h.logger, common.OwnerFirst(err, checkOwner))
		return
	}
	defer common.CloseUploads(in.Thumbnail)

	video, err := h.videoService.Update(r.Context(), actorID, videoID, in)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, video, "video updated successfully")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	if err := h.videoService.Delete(r.Context(), actorID, common.PathVar(r, "videoId")); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, struct{}{}, "video deleted successfully")
}

func (h *Handler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	actorID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	res, err := h.videoService.TogglePublish(r.Context(), actorID, common.PathVar(r, "videoId"))
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, res, "publish status toggled successfully")
}
