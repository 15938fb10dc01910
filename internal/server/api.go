// Package server exposes the gameplay engine over a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/ReC82/LodyLand/internal/auth"
	"github.com/ReC82/LodyLand/internal/game"
	"github.com/ReC82/LodyLand/internal/telemetry"
)

// API holds what the handlers depend on.
type API struct {
	Engine game.Engine
	Auth   *auth.Service
	Events telemetry.Repository
	Logger *log.Logger
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBestEffort tolerates an empty or absent body.
func decodeBestEffort(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == io.EOF {
		return nil
	}
	return err
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
		return false
	}
	return true
}

// statusForCode maps gameplay rejection codes onto HTTP statuses: missing
// things are 404, malformed requests 400, gates 403, everything the player
// can fix by waiting or earning more is 409.
func statusForCode(code string) int {
	switch code {
	case game.CodePlayerNotFound, game.CodeTileNotFound, game.CodeCardNotFound,
		game.CodeRecipeNotFound, game.CodeResourceNotFound, game.CodeJobNotFound,
		game.CodeLandNotFound:
		return http.StatusNotFound
	case game.CodeInvalidName, game.CodeInvalidQuantity, game.CodeInvalidPriceIndex:
		return http.StatusBadRequest
	case game.CodeTileLocked, game.CodeLandLocked, game.CodeLevelTooLow,
		game.CodeLocked, game.CodeCraftTableTooLow, game.CodeCardDisabled:
		return http.StatusForbidden
	default:
		return http.StatusConflict
	}
}

// writeErr renders a gameplay rejection with its payload, or a 500 for
// anything unexpected.
func (a *API) writeErr(w http.ResponseWriter, err error) {
	var ge *game.Error
	if errors.As(err, &ge) {
		body := map[string]any{
			"error": ge.Code,
		}
		if ge.Message != "" {
			body["message"] = ge.Message
		}
		if ge.Until != nil {
			body["until"] = ge.Until
		}
		if ge.NextEligibleAt != nil {
			body["next_eligible_at"] = ge.NextEligibleAt
		}
		if len(ge.Missing) > 0 {
			body["missing"] = ge.Missing
		}
		if ge.Required != 0 {
			body["required"] = ge.Required
		}
		if ge.Current != 0 {
			body["current"] = ge.Current
		}
		if ge.Key != "" {
			body["key"] = ge.Key
		}
		writeJSON(w, statusForCode(ge.Code), body)
		return
	}
	if a.Logger != nil {
		a.Logger.Printf("internal error: %v", err)
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal server error"})
}

// playerID pulls the authenticated player from the request context.
func playerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := auth.PlayerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
		return 0, false
	}
	return id, true
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	res, err := a.Engine.Register(r.Context(), body.Name)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	token, exp, err := a.Auth.CreateSession(res.Player.ID, time.Now())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	a.Auth.SetSessionCookie(w, r, token, exp)
	writeJSON(w, http.StatusCreated, res)
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	ps, ok, err := a.Engine.State.FindByName(r.Context(), body.Name)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": game.CodePlayerNotFound})
		return
	}
	token, exp, err := a.Auth.CreateSession(ps.Player.ID, time.Now())
	if err != nil {
		a.writeErr(w, err)
		return
	}
	a.Auth.SetSessionCookie(w, r, token, exp)
	writeJSON(w, http.StatusOK, map[string]any{"player": ps.Player})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	a.Auth.RevokeSessionForRequest(r)
	a.Auth.ClearSessionCookie(w, r)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}
	v, err := a.Engine.View(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"player": v.Player})
}

func (a *API) handleState(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}
	v, err := a.Engine.View(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) handleResources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Engine.Content.ResourceList())
}

func (a *API) handleCards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Engine.Content.CardList())
}

func (a *API) handleRecipes(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		location = "craft_table"
	}
	writeJSON(w, http.StatusOK, a.Engine.Content.RecipeList(location))
}

func (a *API) handleLevels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Engine.Content.Levels)
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	since := time.Now().AddDate(0, 0, -7)
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "since must be YYYY-MM-DD"})
			return
		}
		since = t
	}
	events, err := a.Events.GetEvents(since, nil)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	stats, err := telemetry.CalculateStats(events, since)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
