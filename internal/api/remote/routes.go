package remote

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// NewRouter registers all remote-control routes. auth guards the routes
// that change OBS or session state; reads and the state stream are open.
func NewRouter(handler *RemoteHandler, auth func(http.Handler) http.Handler) *mux.Router {
	router := mux.NewRouter()
	// Input and filter names may contain slashes.
	router.UseEncodedPath()
	router.Use(logRequests)

	guarded := func(h http.HandlerFunc) http.Handler {
		if auth == nil {
			return h
		}
		return auth(h)
	}

	// Flat paths: a subrouter answers 404 instead of 405 on a method mismatch.
	router.HandleFunc("/api/v1/state", handler.GetState).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/scenes/by-name/{sceneName}", handler.GetScene).Methods(http.MethodGet)
	router.Handle("/api/v1/scenes/current", guarded(handler.ChangeScene)).Methods(http.MethodPost)
	router.Handle("/api/v1/inputs/{inputName}/toggle-mute", guarded(handler.ToggleMute)).Methods(http.MethodPost)
	router.Handle("/api/v1/filters/{filterName}/enable", guarded(handler.EnableFilter)).Methods(http.MethodPost)
	router.Handle("/api/v1/session/activate", guarded(handler.Activate)).Methods(http.MethodPost)
	router.Handle("/api/v1/session/deactivate", guarded(handler.Deactivate)).Methods(http.MethodPost)
	router.Handle("/api/v1/session/reconnect", guarded(handler.Reconnect)).Methods(http.MethodPost)

	router.HandleFunc("/ws/state", handler.ServeWS)
	return router
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		next.ServeHTTP(w, r)
	})
}
