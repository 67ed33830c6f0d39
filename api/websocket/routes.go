package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	ws "codeberg.org/todoai/server/internal/websocket"
	"codeberg.org/todoai/server/todoai/todos"
)

func RegisterRoutes(router *gin.RouterGroup, hub *ws.Hub, service *todos.Service, checkOrigin func(r *http.Request) bool) {
	conversations := newConversations()

	hub.RegisterHandler(ws.TypeUpdate, UpdateHandler(conversations))
	hub.SetOnClientDisconnect(func(client *ws.Client) {
		conversations.remove(client.ID)
	})

	upgrader := &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin,
	}

	router.GET("/todo/ws", WebSocketHandler(hub, service, upgrader, conversations))
}
