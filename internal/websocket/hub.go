package websocket

import (
	"codeberg.org/todoai/server/internal/logger"
)

// creates a new hub with no handlers registered
func NewHub() *Hub {
	return &Hub{
		clients:         make(map[string]*Client),
		handlers:        make(map[string]MessageHandler),
		userConnections: make(map[string]int),
		ipConnections:   make(map[string]int),
	}
}

// registers a handler for a specific message type
func (h *Hub) RegisterHandler(messageType string, handler MessageHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.handlers[messageType] = handler
}

// sets a callback invoked after a client is removed
func (h *Hub) SetOnClientDisconnect(callback func(client *Client)) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.onClientDisconnect = callback
}

// checks whether a new connection from this user and IP would stay within limits
func (h *Hub) CanAccept(userID, ipAddress string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.checkLimits(userID, ipAddress)
}

func (h *Hub) checkLimits(userID, ipAddress string) error {
	if h.shutdown {
		return ErrHubClosed
	}

	if userID != "" && h.userConnections[userID] >= maxConnectionsPerUser {
		return ErrTooManyConnections
	}

	if ipAddress != "" && h.ipConnections[ipAddress] >= maxConnectionsPerIP {
		return ErrTooManyConnections
	}

	return nil
}

// adds a client to the hub
func (h *Hub) Register(client *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.checkLimits(client.UserID, client.IPAddress); err != nil {
		return err
	}

	h.clients[client.ID] = client

	if client.UserID != "" {
		h.userConnections[client.UserID]++
	}

	if client.IPAddress != "" {
		h.ipConnections[client.IPAddress]++
	}

	logger.Info("client registered",
		"client_id", client.ID,
		"session_id", client.SessionID,
		"user_id", client.UserID,
	)

	return nil
}

// removes a client from the hub and closes it
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()

	callback := h.onClientDisconnect

	if _, exists := h.clients[client.ID]; !exists {
		h.mu.Unlock()
		return
	}

	delete(h.clients, client.ID)
	client.Close()

	if client.UserID != "" {
		h.userConnections[client.UserID]--

		if h.userConnections[client.UserID] <= 0 {
			delete(h.userConnections, client.UserID)
		}
	}

	if client.IPAddress != "" {
		h.ipConnections[client.IPAddress]--

		if h.ipConnections[client.IPAddress] <= 0 {
			delete(h.ipConnections, client.IPAddress)
		}
	}

	h.mu.Unlock()

	logger.Info("client unregistered",
		"client_id", client.ID,
		"session_id", client.SessionID,
	)

	// outside the lock, the callback may touch storage
	if callback != nil {
		callback(client)
	}
}

// returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

func (h *Hub) handler(messageType string) (MessageHandler, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	handler, ok := h.handlers[messageType]
	return handler, ok
}

// notifies every client, closes all connections and refuses new ones
func (h *Hub) Shutdown(reason string) {
	h.mu.Lock()

	h.shutdown = true

	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}

	h.mu.Unlock()

	logger.Info("shutting down websocket hub", "clients", len(clients))

	for _, client := range clients {
		client.Send(&Message{Type: TypeServerShutdown, Message: reason}) //nolint:errcheck,gosec // best effort
		h.Unregister(client)
	}
}
