package playlist

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gotube/internal/common"
)

type Handler struct {
	playlistService PlaylistService
	logger          *zap.Logger
}

func NewHandler(playlistService PlaylistService, logger *zap.Logger) *Handler {
	return &Handler{playlistService: playlistService, logger: logger}
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) RegisterRoutes(r *mux.Router, auth mux.MiddlewareFunc) {
	r.Handle("/playlists", auth(http.HandlerFunc(h.Create))).Methods(http.MethodPost)
	r.HandleFunc("/playlists/user/{userId}", h.UserPlaylists).Methods(http.MethodGet)
	r.Handle("/playlists/add/{videoId}/{playlistId}", auth(http.HandlerFunc(h.AddVideo))).Methods(http.MethodPatch)
	r.Handle("/playlists/remove/{videoId}/{playlistId}", auth(http.HandlerFunc(h.RemoveVideo))).Methods(http.MethodPatch)
	r.HandleFunc("/playlists/{playlistId}", h.Get).Methods(http.MethodGet)
	r.Handle("/playlists/{playlistId}", auth(http.HandlerFunc(h.Update))).Methods(http.MethodPatch)
	r.Handle("/playlists/{playlistId}", auth(http.HandlerFunc(h.Delete))).Methods(http.MethodDelete)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	var req playlistRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	playlist, err := h.playlistService.Create(r.Context(), ownerID, req.Name, req.Description)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, playlist, "playlist created successfully")
}

func (h *Handler) UserPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.playlistService.UserPlaylists(r.Context(), common.PathVar(r, "userId"), common.ViewerID(r.Context()))
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, playlists, "playlists fetched successfully")
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.playlistService.Get(r.Context(), common.PathVar(r, "playlistId"), common.ViewerID(r.Context()))
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, playlist, "playlist fetched successfully")
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actorID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	playlistID := common.PathVar(r, "playlistId")
	var req playlistRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, h.logger, common.OwnerFirst(err, func() error {
			return h.playlistService.CheckOwner(r.Context(), actorID, playlistID)
		}))
		return
	}
	playlist, err := h.playlistService.Update(r.Context(), actorID, playlistID, req.Name, req.Description)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, playlist, "playlist updated successfully")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	if err := h.playlistService.Delete(r.Context(), actorID, common.PathVar(r, "playlistId")); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, struct{}{}, "playlist deleted successfully")
}

func (h *Handler) AddVideo(w http.ResponseWriter, r *http.Request) {
	actorID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	playlist, err := h.playlistService.AddVideo(r.Context(), actorID, common.PathVar(r, "playlistId"), common.PathVar(r, "videoId"))
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, playlist, "video added to playlist successfully")
}

func (h *Handler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	actorID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	playlist, err := h.playlistService.RemoveVideo(r.Context(), actorID, common.PathVar(r, "playlistId"), common.PathVar(r, "videoId"))
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, playlist, "video removed from playlist successfully")
}
