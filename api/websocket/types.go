package websocket

type ConnectParams struct {
	SessionID string `form:"session_id" binding:"omitempty,uuid"` // resume a stored to-do session
}
