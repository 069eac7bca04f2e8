package comment

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gotube/internal/common"
)

type Handler struct {
	commentService CommentService
	logger         *zap.Logger
}

func NewHandler(commentService CommentService, logger *zap.Logger) *Handler {
	return &Handler{commentService: commentService, logger: logger}
}

type contentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) RegisterRoutes(r *mux.Router, auth mux.MiddlewareFunc) {
	r.HandleFunc("/comments/{videoId}", h.List).Methods(http.MethodGet)
	r.Handle("/comments/{videoId}", auth(http.HandlerFunc(h.Add))).Methods(http.MethodPost)
	r.Handle("/comments/c/{commentId}", auth(http.HandlerFunc(h.Update))).Methods(http.MethodPatch)
	r.Handle("/comments/c/{commentId}", auth(http.HandlerFunc(h.Delete))).Methods(http.MethodDelete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.commentService.List(r.Context(),
		common.PathVar(r, "videoId"),
		common.ViewerID(r.Context()),
		common.QueryInt(r, "page"),
		common.QueryInt(r, "limit"),
	)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, page, "comments fetched successfully")
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	actorID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	var req contentRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	comment, err := h.commentService.Add(r.Context(), actorID, common.PathVar(r, "videoId"), req.Content)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, comment, "comment added successfully")
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	commentID := common.PathVar(r, "commentId")
	var req contentRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, h.logger, common.OwnerFirst(err, func() error {
			return h.commentService.CheckOwner(r.Context(), actorID, commentID)
		}))
		return
	}
	comment, err := h.commentService.Update(r.Context(), actorID, commentID, req.Content)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, comment, "comment updated successfully")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	if err := h.commentService.Delete(r.Context(), actorID, common.PathVar(r, "commentId")); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, struct{}{}, "comment deleted successfully")
}
