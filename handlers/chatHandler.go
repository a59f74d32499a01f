package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"julenisse/models"
	"julenisse/services"
	"julenisse/services/agent"

	"github.com/gorilla/mux"
)

type ChatHandler struct {
	agent   *agent.Service
	threads *services.ThreadService
}

func NewChatHandler(agentService *agent.Service, threads *services.ThreadService) *ChatHandler {
	return &ChatHandler{agent: agentService, threads: threads}
}

func (h *ChatHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/threads", h.CreateThread).Methods("POST")
	router.HandleFunc("/threads/{id}/messages", h.GetMessages).Methods("GET")
	router.HandleFunc("/agent/chat", h.ProcessMessage).Methods("POST")
}

func (h *ChatHandler) CreateThread(w http.ResponseWriter, r *http.Request) {
	threadID := h.threads.NewThreadID()
	log.Printf("[INFO] Created thread %s", threadID)

	writeJSONResponse(w, http.StatusCreated, models.ThreadResponse{
		ThreadID: threadID,
		Greeting: services.Greeting,
		Messages: []models.AgentMessage{},
	})
}

// GetMessages returns the rendered transcript, with the greeting attached when
// nothing has been said yet.
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	threadID := mux.Vars(r)["id"]

	messages, err := h.threads.VisibleHistory(r.Context(), threadID)
	if err != nil {
		writeErrorResponse(w, statusForError(err), err.Error())
		return
	}

	resp := models.ThreadResponse{ThreadID: threadID, Messages: messages}
	if len(messages) == 0 {
		resp.Greeting = services.Greeting
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

func (h *ChatHandler) ProcessMessage(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received agent chat request")

	var req models.AgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode agent request JSON: %v", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if req.ThreadID == "" {
		req.ThreadID = h.threads.NewThreadID()
	}

	result, err := h.agent.ProcessMessage(r.Context(), req.ThreadID, req.Message, nil)
	if err != nil {
		log.Printf("[ERROR] Agent message processing failed: %v", err)
		writeErrorResponse(w, statusForError(err), err.Error())
		return
	}

	log.Printf("[INFO] Agent message processing completed successfully")
	writeJSONResponse(w, http.StatusOK, result)
}
