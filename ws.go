package main

import (
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"file-manager/actions"
	"file-manager/listing"
)

const (
	msgListing = "listing"
	msgTask    = "task"
	msgRefresh = "refresh"

	chunkSize = 10
)

// WSRequest asks for the listing of the current directory.
type WSRequest struct {
	RequestID int `json:"requestId"`
}

// wsMessage is every frame the server pushes. Listings arrive in chunks
// followed by one frame with no items.
type wsMessage struct {
	Type      string           `json:"type"`
	RequestID int              `json:"requestId,omitempty"`
	Cwd       string           `json:"cwd,omitempty"`
	Items     []listing.Entry  `json:"items"`
	Error     *actions.Failure `json:"error,omitempty"`
	Result    *actions.Result  `json:"result,omitempty"`
}

type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (cl *client) write(msg wsMessage) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.conn.WriteJSON(msg)
}

// hub fans task completions and refresh hints out to every open page.
type hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	logger  *zap.Logger
}

func newHub(logger *zap.Logger) *hub {
	return &hub{clients: make(map[*client]struct{}), logger: logger}
}

func (h *hub) add(cl *client) {
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(cl *client) {
	h.mu.Lock()
	delete(h.clients, cl)
	h.mu.Unlock()
}

func (h *hub) broadcast(msg wsMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for cl := range h.clients {
		if err := cl.write(msg); err != nil {
			h.logger.Debug("websocket push failed", zap.Error(err))
		}
	}
}

func (s *server) handleWebSocket(c *websocket.Conn) {
	defer c.Close()

	cl := &client{conn: c}
	s.hub.add(cl)
	defer s.hub.remove(cl)
	s.logger.Debug("websocket connected")

	// Listen for listing requests from the page
	for {
		var req WSRequest
		if err := c.ReadJSON(&req); err != nil {
			s.logger.Debug("websocket closed", zap.Error(err))
			return
		}
		if err := s.sendListing(cl, req.RequestID); err != nil {
			s.logger.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
}

func (s *server) sendListing(cl *client, requestID int) error {
	cwd := s.dispatcher.Session().Cwd()
	items, failure := s.dispatcher.List()

	for i := 0; i < len(items); i += chunkSize {
		end := min(i+chunkSize, len(items))
		msg := wsMessage{
			Type:      msgListing,
			RequestID: requestID,
			Cwd:       cwd,
			Items:     items[i:end],
		}
		if err := cl.write(msg); err != nil {
			return err
		}
	}

	// Send empty items to indicate completion
	return cl.write(wsMessage{
		Type:      msgListing,
		RequestID: requestID,
		Cwd:       cwd,
		Items:     []listing.Entry{},
		Error:     failure,
	})
}
