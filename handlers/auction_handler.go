package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/sports-auction/services"
	"github.com/go-chi/chi/v5"
)

type AuctionHandler struct {
	auctionService services.AuctionService
}

func NewAuctionHandler(auctionService services.AuctionService) *AuctionHandler {
	return &AuctionHandler{auctionService: auctionService}
}

// RecordBid закрепляет игрока за командой по итоговой цене.
func (h *AuctionHandler) RecordBid(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if tournamentID == "" {
		badRequestResponse(w, r, errors.New("missing tournament ID"))
		return
	}

	var input services.RecordBidInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.TournamentID = tournamentID
	if input.PlayerID == "" || input.TeamID == "" {
		badRequestResponse(w, r, errors.New("player_id and team_id are required"))
		return
	}

	round, err := h.auctionService.RecordBid(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UndoRound отменяет завершённый раунд. Повторная отмена — no-op.
func (h *AuctionHandler) UndoRound(w http.ResponseWriter, r *http.Request) {
	roundID := chi.URLParam(r, "roundID")
	if roundID == "" {
		badRequestResponse(w, r, errors.New("missing round ID"))
		return
	}

	round, err := h.auctionService.UndoRound(r.Context(), roundID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err = writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
