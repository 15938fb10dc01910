package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Router wires every API route. Gameplay routes sit behind the session
// check; content listings and registration do not.
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": "lodyland",
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/register", a.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/login", a.handleLogin).Methods(http.MethodPost)

	api.HandleFunc("/content/resources", a.handleResources).Methods(http.MethodGet)
	api.HandleFunc("/content/cards", a.handleCards).Methods(http.MethodGet)
	api.HandleFunc("/content/recipes", a.handleRecipes).Methods(http.MethodGet)
	api.HandleFunc("/content/levels", a.handleLevels).Methods(http.MethodGet)

	authed := api.NewRoute().Subrouter()
	authed.Use(func(next http.Handler) http.Handler { return a.Auth.RequireAPI(next) })

	authed.HandleFunc("/logout", a.handleLogout).Methods(http.MethodPost)
	authed.HandleFunc("/me", a.handleMe).Methods(http.MethodGet)
	authed.HandleFunc("/state", a.handleState).Methods(http.MethodGet)

	authed.HandleFunc("/tiles/unlock", a.handleUnlockTile).Methods(http.MethodPost)
	authed.HandleFunc("/tiles/{id}/collect", a.handleCollect).Methods(http.MethodPost)

	authed.HandleFunc("/sell", a.handleSell).Methods(http.MethodPost)
	authed.HandleFunc("/shop/cards/{key}/buy", a.handleBuyCard).Methods(http.MethodPost)

	authed.HandleFunc("/craft", a.handleCraft).Methods(http.MethodPost)
	authed.HandleFunc("/craft/jobs/{id}/claim", a.handleClaimCraft).Methods(http.MethodPost)

	authed.HandleFunc("/daily", a.handleDaily).Methods(http.MethodGet)
	authed.HandleFunc("/daily/claim", a.handleClaimDaily).Methods(http.MethodPost)

	authed.HandleFunc("/lands/{key}/slots/buy", a.handleBuyLandSlot).Methods(http.MethodPost)

	authed.HandleFunc("/stats", a.handleStats).Methods(http.MethodGet)

	return r
}
