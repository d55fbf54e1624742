package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
	"github.com/jumpingmushroom/FlipStash-sub000/services"
	"github.com/jumpingmushroom/FlipStash-sub000/storage"
	"github.com/jumpingmushroom/FlipStash-sub000/taxonomy"
	"github.com/jumpingmushroom/FlipStash-sub000/utils"
)

const noDataMessage = "no market data found"

type Handlers struct {
	market   Market
	lister   storage.GameLister
	logger   *utils.Logger
	delayMin time.Duration
	delayMax time.Duration
}

type marketValueResponse struct {
	models.MarketValueResult
	Message string `json:"message,omitempty"`
}

type observationResponse struct {
	models.SourceObservation
	Message string `json:"message,omitempty"`
}

type refreshRequest struct {
	IDs  []int64 `json:"ids"`
	Mode string  `json:"mode"`
}

// HandleMarketValue serves GET /api/market-value.
func (h *Handlers) HandleMarketValue(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	q := models.PriceQuery{
		GameName:            qs.Get("name"),
		Platform:            qs.Get("platform"),
		Region:              taxonomy.ParseRegion(qs.Get("region")),
		Condition:           taxonomy.ParseCondition(qs.Get("condition")),
		WantMultipleResults: qs.Get("multiple") == "true" || qs.Get("multiple") == "1",
	}
	if q.GameName == "" {
		WriteJSONError(w, http.StatusBadRequest, "Query parameter 'name' is required")
		return
	}

	if q.WantMultipleResults {
		multi, err := h.market.Search(r.Context(), q)
		if err != nil {
			h.logger.Error("[server] search %q: %v", q.GameName, err)
			WriteJSONError(w, http.StatusInternalServerError, "Search failed")
			return
		}
		RespondWithJSON(w, http.StatusOK, multi)
		return
	}

	res, _, err := h.market.GetMarketValue(r.Context(), q)
	if err != nil {
		h.logger.Error("[server] market value %q: %v", q.GameName, err)
		WriteJSONError(w, http.StatusInternalServerError, "Lookup failed")
		return
	}
	out := marketValueResponse{MarketValueResult: res}
	if !res.Found() {
		out.Message = noDataMessage
	}
	RespondWithJSON(w, http.StatusOK, out)
}

// HandlePriceFromURL serves GET /api/price-from-url.
func (h *Handlers) HandlePriceFromURL(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		WriteJSONError(w, http.StatusBadRequest, "Query parameter 'url' is required")
		return
	}
	condition := taxonomy.ParseCondition(r.URL.Query().Get("condition"))

	obs, err := h.market.PriceFromURL(r.Context(), rawURL, condition)
	if errors.Is(err, services.ErrUnknownSource) {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("[server] price from %s: %v", rawURL, err)
		WriteJSONError(w, http.StatusInternalServerError, "Lookup failed")
		return
	}
	out := observationResponse{SourceObservation: obs}
	if !obs.Found() {
		out.Message = noDataMessage
	}
	RespondWithJSON(w, http.StatusOK, out)
}

// HandleRefreshGame serves POST /api/games/{id}/refresh.
func (h *Handlers) HandleRefreshGame(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		WriteJSONError(w, http.StatusBadRequest, "Invalid game id")
		return
	}

	res, err := h.market.RefreshGame(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		WriteJSONError(w, http.StatusNotFound, fmt.Sprintf("Game %d not found", id))
		return
	}
	if err != nil {
		h.logger.Error("[server] refresh game %d: %v", id, err)
		WriteJSONError(w, http.StatusInternalServerError, "Refresh failed")
		return
	}
	out := marketValueResponse{MarketValueResult: res}
	if !res.Found() {
		out.Message = noDataMessage
	}
	RespondWithJSON(w, http.StatusOK, out)
}

// HandleRefreshBatch serves POST /api/refresh as a stream of newline
// delimited JSON events. Games run in request order with the long pause
// between items. The batch keeps the item in flight when the client goes
// away and schedules nothing after it.
func (h *Handlers) HandleRefreshBatch(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	ids := req.IDs
	if len(ids) == 0 {
		if h.lister == nil {
			WriteJSONError(w, http.StatusBadRequest, "Field 'ids' is required")
			return
		}
		var err error
		ids, err = h.lister.ListGameIDs(r.Context(), false)
		if err != nil {
			h.logger.Error("[server] list games: %v", err)
			WriteJSONError(w, http.StatusInternalServerError, "Could not list games")
			return
		}
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	stream := newEventStream(r.Context(), w)
	opts := services.BatchOptions{
		Mode:     services.ParseBatchMode(req.Mode),
		DelayMin: h.delayMin,
		DelayMax: h.delayMax,
	}
	h.market.RunBatch(context.WithoutCancel(r.Context()), ids, opts, stream.Emit)
}
