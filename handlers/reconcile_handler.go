package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/sports-auction/services"
	"github.com/go-chi/chi/v5"
)

type ReconcileHandler struct {
	reconcileService services.ReconcileService
}

func NewReconcileHandler(reconcileService services.ReconcileService) *ReconcileHandler {
	return &ReconcileHandler{reconcileService: reconcileService}
}

// Reconcile запускает сверку бюджетов турнира по запросу администратора.
// Возвращает найденные расхождения; пустой список означает, что бюджеты сходятся.
func (h *ReconcileHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if tournamentID == "" {
		badRequestResponse(w, r, errors.New("missing tournament ID"))
		return
	}

	drifts, err := h.reconcileService.ReconcileTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if drifts == nil {
		drifts = []services.TeamDrift{}
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"drifts": drifts}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
