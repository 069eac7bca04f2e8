package user

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"gotube/internal/common"
	"gotube/internal/store"
)

type Handler struct {
	userService UserService
	logger      *zap.Logger
	secure      bool
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

// NewHandler wires the user routes. secure marks auth cookies Secure.
func NewHandler(userService UserService, logger *zap.Logger, secure bool, accessTTL, refreshTTL time.Duration) *Handler {
	return &Handler{
		userService: userService,
		logger:      logger,
		secure:      secure,
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router, auth mux.MiddlewareFunc) {
	r.HandleFunc("/users/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/users/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/users/refresh-token", h.RefreshToken).Methods(http.MethodPost)
	r.HandleFunc("/users/c/{username}", h.ChannelProfile).Methods(http.MethodGet)

	r.Handle("/users/logout", auth(http.HandlerFunc(h.Logout))).Methods(http.MethodPost)
	r.Handle("/users/current-user", auth(http.HandlerFunc(h.CurrentUser))).Methods(http.MethodGet)
	r.Handle("/users/update-account", auth(http.HandlerFunc(h.UpdateAccount))).Methods(http.MethodPatch)
	r.Handle("/users/change-password", auth(http.HandlerFunc(h.ChangePassword))).Methods(http.MethodPost)
	r.Handle("/users/avatar", auth(http.HandlerFunc(h.UpdateAvatar))).Methods(http.MethodPatch)
	r.Handle("/users/cover-image", auth(http.HandlerFunc(h.UpdateCoverImage))).Methods(http.MethodPatch)
	r.Handle("/users/history", auth(http.HandlerFunc(h.WatchHistory))).Methods(http.MethodGet)
}

func (h *Handler) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
	} else {
		c.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, c)
}

func (h *Handler) setTokens(w http.ResponseWriter, pair common.TokenPair) {
	h.setCookie(w, common.AccessTokenCookie, pair.AccessToken, h.accessTTL)
	h.setCookie(w, common.RefreshTokenCookie, pair.RefreshToken, h.refreshTTL)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := common.ParseMultipart(r); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	in := RegisterInput{
		FullName: r.FormValue("fullName"),
		Email:    r.FormValue("email"),
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}
	var err error
	if in.Avatar, err = common.FormUpload(r, "avatar"); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	if in.CoverImage, err = common.FormUpload(r, "coverImage"); err != nil {
		common.CloseUploads(in.Avatar)
		common.WriteError(w, h.logger, err)
		return
	}
	defer common.CloseUploads(in.Avatar, in.CoverImage)

	user, err := h.userService.Register(r.Context(), in)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, user, "user registered successfully")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in LoginInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	res, err := h.userService.Login(r.Context(), in)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	h.setTokens(w, res.TokenPair)
	common.WriteJSON(w, http.StatusOK, res, "user logged in successfully")
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	if err := h.userService.Logout(r.Context(), userID); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	h.setTokens(w, common.TokenPair{})
	common.WriteJSON(w, http.StatusOK, struct{}{}, "user logged out")
}

// RefreshToken reads the refresh token from its cookie, falling back to the JSON body.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var raw string
	if c, err := r.Cookie(common.RefreshTokenCookie); err == nil {
		raw = c.Value
	}
	if raw == "" && r.ContentLength != 0 {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := common.DecodeJSON(r, &body); err != nil {
			common.WriteError(w, h.logger, err)
			return
		}
		raw = body.RefreshToken
	}
	pair, err := h.userService.RefreshToken(r.Context(), raw)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	h.setTokens(w, *pair)
	common.WriteJSON(w, http.StatusOK, pair, "access token refreshed")
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	user, err := h.userService.CurrentUser(r.Context(), userID)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, user, "current user fetched successfully")
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	user, err := h.userService.UpdateAccount(r.Context(), userID, req.FullName, req.Email)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, user, "account details updated successfully")
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	if err := h.userService.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, struct{}{}, "password changed successfully")
}

func (h *Handler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "avatar", h.userService.UpdateAvatar)
}

func (h *Handler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "coverImage", h.userService.UpdateCoverImage)
}

func (h *Handler) replaceImage(w http.ResponseWriter, r *http.Request, field string, replace func(ctx context.Context, userID string, upload *common.Upload) (store.Document, error)) {
	userID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	if err := common.ParseMultipart(r); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	upload, err := common.FormUpload(r, field)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	defer common.CloseUploads(upload)

	user, err := replace(r.Context(), userID, upload)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, user, field+" updated successfully")
}

func (h *Handler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	channel, err := h.userService.ChannelProfile(r.Context(), common.PathVar(r, "username"), common.ViewerID(r.Context()))
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, channel, "user channel fetched successfully")
}

func (h *Handler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := common.RequireViewer(r.Context())
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	history, err := h.userService.WatchHistory(r.Context(), userID)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, history, "watch history fetched successfully")
}
