package subscription

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gotube/internal/common"
)

type Handler struct {
	subscriptionService SubscriptionService
	logger              *zap.Logger
}

func NewHandler(subscriptionService SubscriptionService, logger *zap.Logger) *Handler {
	return &Handler{subscriptionService: subscriptionService, logger: logger}
}

func (h *Handler) RegisterRoutes(r *mux.Router, auth mux.MiddlewareFunc) {
	r.HandleFunc("/subscriptions/user/{subscriberId}", h.Channels).Methods(http.MethodGet)
	r.Handle("/subscriptions/{channelId}", auth(http.HandlerFunc(h.Toggle))).Methods(http.MethodPost)
	r.HandleFunc("/subscriptions/{channelId}/subscribers", h.Subscribers).Methods(http.MethodGet)
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	res, err := h.subscriptionService.Toggle(r.Context(), subscriberID, common.PathVar(r, "channelId"))
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	msg := "unsubscribed successfully"
	if res.Active {
		msg = "subscribed successfully"
	}
	common.WriteJSON(w, http.StatusOK, map[string]bool{"subscribed": res.Active}, msg)
}

func (h *Handler) Subscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subscriptionService.Subscribers(r.Context(), common.PathVar(r, "channelId"), common.ViewerID(r.Context()))
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, subs, "subscribers fetched successfully")
}

func (h *Handler) Channels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.subscriptionService.Channels(r.Context(), common.PathVar(r, "subscriberId"), common.ViewerID(r.Context()))
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, channels, "subscribed channels fetched successfully")
}
