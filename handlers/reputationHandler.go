package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"julenisse/models"
	"julenisse/services"

	"github.com/gorilla/mux"
)

type ReputationHandler struct {
	service      *services.ReputationService
	defaultLimit int
}

func NewReputationHandler(service *services.ReputationService, defaultLimit int) *ReputationHandler {
	return &ReputationHandler{service: service, defaultLimit: defaultLimit}
}

func (h *ReputationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/leaderboard", h.GetLeaderboard).Methods("GET")
	router.HandleFunc("/reputations", h.SearchReputations).Methods("GET")
	router.HandleFunc("/reputations/{name}", h.GetStanding).Methods("GET")
}

func (h *ReputationHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeErrorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	board, err := h.service.Leaderboard(r.Context(), limit)
	if err != nil {
		log.Printf("[ERROR] Failed to load leaderboard: %v", err)
		writeErrorResponse(w, statusForError(err), "Failed to retrieve leaderboard")
		return
	}

	if board.Nice == nil {
		board.Nice = []*models.Reputation{}
	}
	if board.Naughty == nil {
		board.Naughty = []*models.Reputation{}
	}
	writeJSONResponse(w, http.StatusOK, board)
}

func (h *ReputationHandler) GetStanding(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	standing, reputation, err := h.service.CheckStanding(r.Context(), name)
	if err != nil {
		writeErrorResponse(w, statusForError(err), err.Error())
		return
	}

	name = strings.TrimSpace(name)
	if reputation != nil {
		name = reputation.Name
	}

	writeJSONResponse(w, http.StatusOK, models.StandingResponse{
		Name:       name,
		Standing:   standing,
		Reputation: reputation,
	})
}

func (h *ReputationHandler) SearchReputations(w http.ResponseWriter, r *http.Request) {
	matches, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeErrorResponse(w, statusForError(err), err.Error())
		return
	}

	if matches == nil {
		matches = []models.ReputationMatch{}
	}
	writeJSONResponse(w, http.StatusOK, matches)
}
