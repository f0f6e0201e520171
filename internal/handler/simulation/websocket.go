package simulation

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	simservice "github.com/mvasquez/persona-sim/internal/service/simulation"
)

// WebSocketHandler carries whole turns over a persistent connection so
// interactive clients avoid per-turn HTTP overhead. Frames are complete
// replies; token-level streaming is out of scope.
type WebSocketHandler struct {
	simSvc   *simservice.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the websocket turn handler.
func NewWebSocketHandler(simSvc *simservice.Service) *WebSocketHandler {
	return &WebSocketHandler{
		simSvc: simSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{simulationID}", h.handleWebSocket)
}

type turnRequest struct {
	Message string `json:"message"`
}

type turnReply struct {
	Type         string `json:"type"`
	SimulationID string `json:"simulationId"`
	Response     string `json:"response,omitempty"`
	Error        string `json:"error,omitempty"`
	Timestamp    int64  `json:"timestamp"`
}

// handleWebSocket upgrades the connection and processes one turn per
// inbound frame. Turn errors are reported on the socket and the
// conversation continues; only an unusable connection ends the loop.
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	simulationID := chi.URLParam(r, "simulationID")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for simulation=%s: %v", simulationID, err)
		return
	}
	defer conn.Close()

	log.Printf("[ws] connected simulation=%s", simulationID)

	for {
		var req turnRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read failed for simulation=%s: %v", simulationID, err)
			}
			return
		}

		reply, err := h.simSvc.ProcessTurn(r.Context(), simulationID, req.Message)
		if err != nil {
			if writeErr := conn.WriteJSON(turnReply{
				Type:         "error",
				SimulationID: simulationID,
				Error:        turnErrorMessage(err),
				Timestamp:    time.Now().UnixMilli(),
			}); writeErr != nil {
				log.Printf("[ws] write failed for simulation=%s: %v", simulationID, writeErr)
				return
			}
			// A missing simulation will not appear mid-connection.
			if errors.Is(err, simservice.ErrSimulationNotFound) {
				return
			}
			continue
		}

		if err := conn.WriteJSON(turnReply{
			Type:         "assistant",
			SimulationID: simulationID,
			Response:     reply,
			Timestamp:    time.Now().UnixMilli(),
		}); err != nil {
			log.Printf("[ws] write failed for simulation=%s: %v", simulationID, err)
			return
		}
	}
}

func turnErrorMessage(err error) string {
	switch {
	case errors.Is(err, simservice.ErrSimulationNotFound):
		return "simulation not found"
	case errors.Is(err, simservice.ErrMessageRequired):
		return "message is required"
	case errors.Is(err, simservice.ErrCompletionFailed):
		return "completion service unavailable"
	default:
		return "internal error"
	}
}
