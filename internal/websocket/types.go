package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// message types
const (
	// client -> server
	TypeUpdate = "update"

	// server -> client
	TypeResponse       = "response"
	TypeError          = "error"
	TypeServerShutdown = "server_shutdown"
)

const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// maximum message size allowed from peer
	maxMessageSize = 16 * 1024

	// maximum length of a single update
	maxUpdateLength = 4000

	// outbound queue size per client
	sendBufferSize = 64

	// updates waiting for the assistant per client
	inboxSize = 4

	// per-connection update rate
	updatesPerMinute = 20
	updateBurst      = 5
)

// connection limits
const (
	maxConnectionsPerUser = 5
	maxConnectionsPerIP   = 10
)

// errors
var (
	ErrInvalidMessage     = errors.New("invalid message format")
	ErrConnectionClosed   = errors.New("connection closed")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
	ErrUpdateTooLarge     = errors.New("update too large")
	ErrTooManyConnections = errors.New("too many connections")
	ErrHubClosed          = errors.New("hub is shut down")
)

// a message on the to-do socket. Inbound messages carry Update, outbound ones Content and State.
type Message struct {
	Type      string    `json:"type"`
	Update    string    `json:"update,omitempty"`
	Content   string    `json:"content,omitempty"`
	State     any       `json:"state,omitempty"`
	Error     string    `json:"error,omitempty"`
	Message   string    `json:"message,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// processes one inbound message. Handlers for a client run one at a time.
type MessageHandler func(ctx context.Context, client *Client, msg *Message) error

// represents a websocket client connection
type Client struct {
	// unique identifier for this client
	ID string

	// to-do session bound to this connection, empty for an ephemeral list
	SessionID string

	// user ID (empty for anonymous users)
	UserID string

	// IP address of the client (for connection tracking)
	IPAddress string

	conn *websocket.Conn
	hub  *Hub

	// buffered channel of outbound messages
	send chan []byte

	// inbound messages waiting for their handler
	inbox chan *Message

	// cancelled when the connection goes away
	ctx    context.Context
	cancel context.CancelFunc

	limiter *rate.Limiter

	mu     sync.RWMutex
	closed bool
}

// tracks active connections, enforces connection limits and dispatches messages to handlers
type Hub struct {
	clients map[string]*Client

	handlers map[string]MessageHandler

	// connection tracking: user ID -> count of connections
	userConnections map[string]int

	// connection tracking: IP address -> count of connections
	ipConnections map[string]int

	// called after a client is removed
	onClientDisconnect func(client *Client)

	mu       sync.RWMutex
	shutdown bool
}
