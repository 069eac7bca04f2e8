package like

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gotube/internal/common"
	"gotube/internal/model"
)

type Handler struct {
	likeService LikeService
	logger      *zap.Logger
}

func NewHandler(likeService LikeService, logger *zap.Logger) *Handler {
	return &Handler{likeService: likeService, logger: logger}
}

func (h *Handler) RegisterRoutes(r *mux.Router, auth mux.MiddlewareFunc) {
	r.Handle("/likes/video/{id}", auth(h.toggle(model.LikeVideo))).Methods(http.MethodPost)
	r.Handle("/likes/comment/{id}", auth(h.toggle(model.LikeComment))).Methods(http.MethodPost)
	r.Handle("/likes/tweet/{id}", auth(h.toggle(model.LikeTweet))).Methods(http.MethodPost)
	r.Handle("/likes/videos", auth(http.HandlerFunc(h.LikedVideos))).Methods(http.MethodGet)
}

func (h *Handler) toggle(kind model.LikeKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID, err := common.RequireViewer(r.Context())
		if err != nil {
			common.WriteError(w, h.logger, err)
			return
		}
		res, err := h.likeService.Toggle(r.Context(), actorID, kind, common.PathVar(r, "id"))
		if err != nil {
			common.WriteError(w, h.logger, err)
			return
		}
		msg := string(kind) + " unliked successfully"
		if res.Active {
			msg = string(kind) + " liked successfully"
		}
		common.WriteJSON(w, http.StatusOK, map[string]bool{"isLiked": res.Active}, msg)
	}
}

func (h *Handler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	viewerID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	videos, err := h.likeService.LikedVideos(r.Context(), viewerID)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, videos, "liked videos fetched successfully")
}
