package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/sports-auction/services"
	"github.com/go-chi/chi/v5"
)

type QueueHandler struct {
	queueService services.QueueService
}

func NewQueueHandler(queueService services.QueueService) *QueueHandler {
	return &QueueHandler{queueService: queueService}
}

func (h *QueueHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if tournamentID == "" {
		badRequestResponse(w, r, errors.New("missing tournament ID"))
		return
	}

	var input struct {
		PlayerID string `json:"player_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.PlayerID == "" {
		badRequestResponse(w, r, errors.New("player_id is required"))
		return
	}

	item, err := h.queueService.Enqueue(r.Context(), tournamentID, input.PlayerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusCreated, jsonResponse{"queue_item": item}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// BatchEnqueue ставит в очередь несколько игроков одним запросом.
// Ошибки по отдельным игрокам возвращаются в теле, не валят весь пакет.
func (h *QueueHandler) BatchEnqueue(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if tournamentID == "" {
		badRequestResponse(w, r, errors.New("missing tournament ID"))
		return
	}

	var input struct {
		PlayerIDs []string `json:"player_ids"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.PlayerIDs) == 0 {
		badRequestResponse(w, r, errors.New("player_ids must not be empty"))
		return
	}

	results := h.queueService.BatchEnqueue(r.Context(), tournamentID, input.PlayerIDs)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"results": results}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *QueueHandler) Remove(w http.ResponseWriter, r *http.Request) {
	queueItemID := chi.URLParam(r, "queueItemID")
	if queueItemID == "" {
		badRequestResponse(w, r, errors.New("missing queue item ID"))
		return
	}

	if err := h.queueService.Remove(r.Context(), queueItemID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *QueueHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	queueItemID := chi.URLParam(r, "queueItemID")
	if queueItemID == "" {
		badRequestResponse(w, r, errors.New("missing queue item ID"))
		return
	}

	var input struct {
		Position int `json:"position"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.queueService.Reorder(r.Context(), queueItemID, input.Position); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"position": input.Position}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *QueueHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if tournamentID == "" {
		badRequestResponse(w, r, errors.New("missing tournament ID"))
		return
	}
	includeProcessed := r.URL.Query().Get("include_processed") == "true"

	items, err := h.queueService.List(r.Context(), tournamentID, includeProcessed)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"queue": items}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
