package underwriting

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"agentic_underwriting/pkg/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The API is CORS-permissive; the socket follows.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ConnManager tracks WebSocket connections by client id. Only the manager
// mutates the table.
type ConnManager struct {
	mu    sync.RWMutex
	conns map[string]*websocket.Conn
}

func NewConnManager() *ConnManager {
	return &ConnManager{conns: make(map[string]*websocket.Conn)}
}

func (m *ConnManager) add(clientID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[clientID] = conn
	log.Info().Str("client_id", clientID).Msg("websocket connected")
}

func (m *ConnManager) remove(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.conns[clientID]; ok {
		delete(m.conns, clientID)
		log.Info().Str("client_id", clientID).Msg("websocket disconnected")
	}
}

// Count reports the number of live connections.
func (m *ConnManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// wsMessage is an inbound client frame.
type wsMessage struct {
	Action      string                  `json:"action"`
	Data        UnderwritingRequest     `json:"data"`
	MedicalData models.ExtractedMedical `json:"medicalData"`
}

// HandleWebSocket upgrades the connection and serves process and ping
// actions until the client disconnects. Workflow events are forwarded as
// JSON frames, ending with a workflow_complete frame.
func (h *Handler) HandleWebSocket(conns *ConnManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := mux.Vars(r)["clientId"]
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Str("client_id", clientID).Msg("websocket upgrade failed")
			return
		}
		conns.add(clientID, conn)
		defer func() {
			conns.remove(clientID)
			conn.Close()
		}()

		for {
			var msg wsMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("client_id", clientID).Msg("websocket read error")
				}
				return
			}

			switch msg.Action {
			case "process":
				if err := h.streamWorkflowToSocket(conn, msg); err != nil {
					return
				}

			case "ping":
				if err := conn.WriteJSON(map[string]interface{}{
					"type":      "pong",
					"timestamp": time.Now().Format(time.RFC3339Nano),
				}); err != nil {
					return
				}

			default:
				if err := conn.WriteJSON(map[string]interface{}{
					"type":    "error",
					"message": "Unknown action: " + msg.Action,
				}); err != nil {
					return
				}
			}
		}
	}
}

func (h *Handler) streamWorkflowToSocket(conn *websocket.Conn, msg wsMessage) error {
	med := msg.MedicalData
	if len(med.Reports) == 0 {
		med = msg.Data.MedicalData
	}

	id := h.Manager.Start(msg.Data.applicant(), med)
	o, err := h.Manager.Get(id)
	if err != nil {
		return conn.WriteJSON(map[string]interface{}{"type": "error", "message": err.Error()})
	}

	events, history := o.Bus.Subscribe()
	defer o.Bus.Unsubscribe(events)

	for _, evt := range history {
		if err := conn.WriteJSON(evt); err != nil {
			return err
		}
	}
	for evt := range events {
		if err := conn.WriteJSON(evt); err != nil {
			return err
		}
	}

	return conn.WriteJSON(map[string]interface{}{
		"type":      "workflow_complete",
		"timestamp": time.Now().Format(time.RFC3339Nano),
	})
}
