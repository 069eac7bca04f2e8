package tweet

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gotube/internal/common"
)

type Handler struct {
	tweetService TweetService
	logger       *zap.Logger
}

func NewHandler(tweetService TweetService, logger *zap.Logger) *Handler {
	return &Handler{tweetService: tweetService, logger: logger}
}

type contentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) RegisterRoutes(r *mux.Router, auth mux.MiddlewareFunc) {
	r.Handle("/tweets", auth(http.HandlerFunc(h.Create))).Methods(http.MethodPost)
	r.HandleFunc("/tweets/user/{userId}", h.UserTweets).Methods(http.MethodGet)
	r.Handle("/tweets/{tweetId}", auth(http.HandlerFunc(h.Update))).Methods(http.MethodPatch)
	r.Handle("/tweets/{tweetId}", auth(http.HandlerFunc(h.Delete))).Methods(http.MethodDelete)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	var req contentRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	tweet, err := h.tweetService.Create(r.Context(), ownerID, req.Content)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, tweet, "tweet created successfully")
}

func (h *Handler) UserTweets(w http.ResponseWriter, r *http.Request) {
	tweets, err := h.tweetService.UserTweets(r.Context(), common.PathVar(r, "userId"), common.ViewerID(r.Context()))
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, tweets, "tweets fetched successfully")
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	tweetID := common.PathVar(r, "tweetId")
	var req contentRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, h.logger, common.OwnerFirst(err, func() error {
			return h.tweetService.CheckOwner(r.Context(), actorID, tweetID)
		}))
		return
	}
	tweet, err := h.tweetService.Update(r.Context(), actorID, tweetID, req.Content)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, tweet, "tweet updated successfully")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	if err := h.tweetService.Delete(r.Context(), actorID, common.PathVar(r, "tweetId")); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, struct{}{}, "tweet deleted successfully")
}
