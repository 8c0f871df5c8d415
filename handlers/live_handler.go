package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/sports-auction/services"
	"github.com/go-chi/chi/v5"
)

type LiveHandler struct {
	liveService services.LiveService
}

func NewLiveHandler(liveService services.LiveService) *LiveHandler {
	return &LiveHandler{liveService: liveService}
}

// Snapshot отдаёт публичное состояние аукциона: команды с бюджетами,
// очередь и последние раунды. Доступен без аутентификации.
func (h *LiveHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if tournamentID == "" {
		badRequestResponse(w, r, errors.New("missing tournament ID"))
		return
	}

	snapshot, err := h.liveService.Snapshot(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, snapshot, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
