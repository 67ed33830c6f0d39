package websocket

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codeberg.org/todoai/server/internal/application"
	"codeberg.org/todoai/server/internal/auth"
	"codeberg.org/todoai/server/internal/errors"
	"codeberg.org/todoai/server/internal/logger"
	"codeberg.org/todoai/server/internal/sessions"
	ws "codeberg.org/todoai/server/internal/websocket"
	"codeberg.org/todoai/server/todoai/todos"
)

// open conversations by client ID
type conversations struct {
	mu    sync.RWMutex
	byKey map[string]*todos.Conversation
}

func newConversations() *conversations {
	return &conversations{byKey: make(map[string]*todos.Conversation)}
}

func (c *conversations) add(clientID string, conv *todos.Conversation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byKey[clientID] = conv
}

func (c *conversations) get(clientID string) (*todos.Conversation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	conv, ok := c.byKey[clientID]
	return conv, ok
}

func (c *conversations) remove(clientID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byKey, clientID)
}

// WebSocketHandler godoc
// @Summary Open a to-do conversation over WebSocket
// @Description Upgrades to a WebSocket. Send {"type":"update","update":"..."} and receive {"type":"response","content":"...","state":{...}} or {"type":"error","message":"..."}. History is kept for the life of the connection.
// @Tags todo
// @Param session_id query string false "Session ID to resume"
// @Success 101 "Switching Protocols"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/v1/todo/ws [get]
func WebSocketHandler(hub *ws.Hub, service *todos.Service, upgrader *websocket.Upgrader, open *conversations) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params ConnectParams
		if err := c.ShouldBindQuery(&params); err != nil {
			errors.BadRequest(c, "invalid parameters", err)
			return
		}

		userID, _ := auth.GetUserID(c)
		ipAddress := c.ClientIP()

		if err := hub.CanAccept(userID, ipAddress); err != nil {
			errors.TooManyRequests(c, "too many open connections")
			return
		}

		conv, err := service.Open(c.Request.Context(), params.SessionID, userID)
		if err != nil {
			if isSessionError(err) {
				errors.SessionNotFound(c)
				return
			}

			errors.InternalError(c, "failed to open conversation", err)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// the upgrader has already answered the request
			logger.Warn("websocket upgrade failed", "error", err)
			return
		}

		client := ws.NewClient(ws.GenerateClientID(), params.SessionID, userID, ipAddress, conn, hub)

		if err := hub.Register(client); err != nil {
			logger.Warn("websocket client rejected",
				"client_id", client.ID,
				"error", err,
			)

			client.SendError(errors.CodeTooManyRequests, err.Error())
			client.Close()
			go client.WritePump()
			return
		}

		open.add(client.ID, conv)
		client.Start()
	}
}

// UpdateHandler answers each update with the assistant's reply and the resulting list
func UpdateHandler(open *conversations) ws.MessageHandler {
	return func(ctx context.Context, client *ws.Client, msg *ws.Message) error {
		conv, ok := open.get(client.ID)
		if !ok {
			client.SendError(errors.CodeSessionNotFound, "conversation not found")
			return nil
		}

		resp, err := conv.Send(ctx, msg.Update)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			code, message := errorFrame(err)

			logger.ErrorErr(err, "to-do update failed",
				"client_id", client.ID,
				"session_id", client.SessionID,
			)

			client.SendError(code, message)
			return nil
		}

		return client.Send(&ws.Message{
			Type:      ws.TypeResponse,
			Content:   resp.Content,
			State:     resp.State,
			SessionID: resp.SessionID,
		})
	}
}

// maps an update failure to the error frame sent to the client
func errorFrame(err error) (string, string) {
	switch {
	case isSessionError(err):
		return errors.CodeSessionNotFound, "session not found"
	case stderrors.Is(err, application.ErrEmptyMessage):
		return errors.CodeValidationError, "update is required"
	default:
		return errors.CodeLLMError, "the assistant could not complete the update"
	}
}

func isSessionError(err error) bool {
	return stderrors.Is(err, sessions.ErrSessionNotFound) || stderrors.Is(err, sessions.ErrSessionExpired)
}
