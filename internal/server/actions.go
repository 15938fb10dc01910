package server

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

func (a *API) handleUnlockTile(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}
	var body struct {
		Resource string `json:"resource"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	res, err := a.Engine.UnlockTile(r.Context(), id, body.Resource)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (a *API) handleCollect(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}
	tileID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "tile id must be numeric"})
		return
	}
	res, err := a.Engine.Collect(r.Context(), id, tileID)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleSell(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}
	var body struct {
		Resource string  `json:"resource"`
		Quantity float64 `json:"quantity"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	res, err := a.Engine.SellResource(r.Context(), id, body.Resource, body.Quantity)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleBuyCard(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}
	var body struct {
		PriceIndex int `json:"price_index"`
	}
	// Body is optional; the first price bundle is the default.
	_ = decodeBestEffort(r, &body)
	res, err := a.Engine.BuyCard(r.Context(), id, mux.Vars(r)["key"], body.PriceIndex)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleCraft(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}
	var body struct {
		ItemKey  string `json:"item_key"`
		Location string `json:"location"`
		Times    int    `json:"times"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Location == "" {
		body.Location = "craft_table"
	}
	if body.Times == 0 {
		body.Times = 1
	}
	res, err := a.Engine.Craft(r.Context(), id, body.ItemKey, body.Location, body.Times)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleClaimCraft(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}
	res, err := a.Engine.ClaimCraft(r.Context(), id, mux.Vars(r)["id"])
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleDaily(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}
	res, err := a.Engine.Daily(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleClaimDaily(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}
	res, err := a.Engine.ClaimDaily(r.Context(), id)
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handleBuyLandSlot(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}
	res, err := a.Engine.BuyLandSlot(r.Context(), id, mux.Vars(r)["key"])
	if err != nil {
		a.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
