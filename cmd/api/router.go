package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"gotube/internal/common"
	"gotube/internal/wire"
)

type routeRegistrar interface {
	RegisterRoutes(r *mux.Router, auth mux.MiddlewareFunc)
}

// setupRouter mounts every resource under /api/v1. Viewer identity is
// resolved on all routes; auth additionally rejects anonymous requests.
// CORS wraps the router so preflights for unmatched methods still answer.
func setupRouter(app *wire.Application) http.Handler {
	router := mux.NewRouter()
	router.Use(common.RequestLogger(app.Logger))
	router.Use(common.OptionalAuth(app.Tokens))

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/healthcheck", app.Health.HTTPHandler).Methods(http.MethodGet)

	auth := common.Authenticate(app.Tokens, app.Logger)
	h := app.Handlers
	for _, reg := range []routeRegistrar{
		h.User, h.Video, h.Comment, h.Tweet, h.Like, h.Subscription, h.Playlist, h.Dashboard,
	} {
		reg.RegisterRoutes(api, auth)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		common.WriteError(w, app.Logger, common.NotFoundError("route not found"))
	})
	return corsMiddleware(router)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
