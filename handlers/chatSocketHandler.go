package handlers

import (
	"log"
	"net/http"

	"julenisse/models"
	"julenisse/services/agent"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

type ChatSocketHandler struct {
	agent    *agent.Service
	upgrader websocket.Upgrader
}

func NewChatSocketHandler(agentService *agent.Service) *ChatSocketHandler {
	return &ChatSocketHandler{
		agent: agentService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *ChatSocketHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ws/chat/{id}", h.Chat).Methods("GET")
}

// Chat serves one thread over a websocket. Each client frame carries a user
// message; the reply is streamed back as token frames and closed by a done or
// error frame.
func (h *ChatSocketHandler) Chat(w http.ResponseWriter, r *http.Request) {
	threadID := mux.Vars(r)["id"]

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ERROR] Websocket upgrade failed for thread %s: %v", threadID, err)
		return
	}
	defer conn.Close()

	log.Printf("[INFO] Websocket connected for thread %s", threadID)

	for {
		var frame models.ChatFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[INFO] Websocket closed for thread %s", threadID)
			} else {
				log.Printf("[ERROR] Websocket read failed for thread %s: %v", threadID, err)
			}
			return
		}

		var writeErr error
		onToken := func(token string) {
			if writeErr != nil {
				return
			}
			writeErr = conn.WriteJSON(models.ChatFrame{Type: models.FrameToken, Content: token})
		}

		result, err := h.agent.ProcessMessage(r.Context(), threadID, frame.Message, onToken)
		if writeErr != nil {
			log.Printf("[ERROR] Websocket write failed for thread %s: %v", threadID, writeErr)
			return
		}

		reply := models.ChatFrame{Type: models.FrameDone}
		if err != nil {
			log.Printf("[ERROR] Agent message processing failed: %v", err)
			reply = models.ChatFrame{Type: models.FrameError, Error: err.Error()}
		} else {
			reply.Content = result.Reply
		}

		if err := conn.WriteJSON(reply); err != nil {
			log.Printf("[ERROR] Websocket write failed for thread %s: %v", threadID, err)
			return
		}
	}
}
