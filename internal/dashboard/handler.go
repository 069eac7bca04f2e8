package dashboard

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gotube/internal/common"
)

type Handler struct {
	dashboardService DashboardService
	logger           *zap.Logger
}

func NewHandler(dashboardService DashboardService, logger *zap.Logger) *Handler {
	return &Handler{dashboardService: dashboardService, logger: logger}
}

func (h *Handler) RegisterRoutes(r *mux.Router, auth mux.MiddlewareFunc) {
	r.Handle("/dashboard/stats", auth(http.HandlerFunc(h.Stats))).Methods(http.MethodGet)
	r.Handle("/dashboard/videos", auth(http.HandlerFunc(h.Videos))).Methods(http.MethodGet)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ownerID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	stats, err := h.dashboardService.Stats(r.Context(), ownerID)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, stats, "channel stats fetched successfully")
}

func (h *Handler) Videos(w http.ResponseWriter, r *http.Request) {
	ownerID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	page, err := h.dashboardService.Videos(r.Context(), ownerID, common.QueryInt(r, "page"), common.QueryInt(r, "limit"))
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, page, "channel videos fetched successfully")
}
