package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/sports-auction/services"
	"github.com/go-chi/chi/v5"
)

type ConsentHandler struct {
	consentService services.ConsentService
}

func NewConsentHandler(consentService services.ConsentService) *ConsentHandler {
	return &ConsentHandler{consentService: consentService}
}

func (h *ConsentHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	email := r.URL.Query().Get("email")
	if tournamentID == "" || email == "" {
		badRequestResponse(w, r, errors.New("tournament ID and email are required"))
		return
	}

	consent, err := h.consentService.Get(r.Context(), tournamentID, email)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"consent": consent}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Submit — публичная точка выбора режима аукциона игроком.
func (h *ConsentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if tournamentID == "" {
		badRequestResponse(w, r, errors.New("missing tournament ID"))
		return
	}

	var input services.SubmitConsentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	consent, err := h.consentService.Submit(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"consent": consent}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
