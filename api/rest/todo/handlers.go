package todo

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/todoai/server/internal/application"
	"codeberg.org/todoai/server/internal/auth"
	"codeberg.org/todoai/server/internal/errors"
	"codeberg.org/todoai/server/internal/sessions"
	"codeberg.org/todoai/server/todoai/todos"
)

// GetTodoHandler godoc
// @Summary Update the to-do list
// @Description Sends a natural language update to the to-do assistant. Without a session the supplied state is used and the result echoed back.
// @Tags todo
// @Produce json
// @Param update query string true "What to change, in plain language"
// @Param state query string false "Current ToDoState as JSON"
// @Param session_id query string false "Session whose stored list to use"
// @Success 200 {object} todos.ToDoResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/todo [get]
func GetTodoHandler(service *todos.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var query UpdateQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			errors.ValidationError(c, err)
			return
		}

		var raw map[string]any
		if query.State != "" {
			if err := json.Unmarshal([]byte(query.State), &raw); err != nil {
				errors.BadRequest(c, "state must be a JSON object", err)
				return
			}
		}

		runUpdate(c, service, query.Update, raw, query.SessionID)
	}
}

// PostTodoHandler godoc
// @Summary Update the to-do list
// @Description Same as GET /todo with a JSON body.
// @Tags todo
// @Accept json
// @Produce json
// @Param request body UpdateRequest true "Update and optional state or session"
// @Success 200 {object} todos.ToDoResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /api/v1/todo [post]
func PostTodoHandler(service *todos.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		runUpdate(c, service, req.Update, req.State, req.SessionID)
	}
}

func runUpdate(c *gin.Context, service *todos.Service, update string, rawState map[string]any, sessionID string) {
	update = strings.TrimSpace(update)
	if update == "" {
		errors.ValidationError(c, fmt.Errorf("validation failed: update is required"))
		return
	}

	state, err := parseState(rawState)
	if err != nil {
		errors.ValidationError(c, err)
		return
	}

	userID, _ := auth.GetUserID(c)

	resp, err := service.Update(c.Request.Context(), todos.UpdateRequest{
		Update:    update,
		State:     state,
		SessionID: sessionID,
		OwnerID:   userID,
	})
	if err != nil {
		switch {
		case isSessionError(err):
			errors.SessionNotFound(c)
		case stderrors.Is(err, application.ErrEmptyMessage):
			errors.ValidationError(c, err)
		case stderrors.Is(err, todos.ErrInvalidState):
			errors.LLMError(c, "the assistant produced an invalid to-do list", err)
		default:
			errors.LLMError(c, "the assistant could not complete the update", err)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateSessionHandler godoc
// @Summary Start a to-do session
// @Description Creates a session whose list is kept in the state backend. Sessions expire after a period of inactivity.
// @Tags todo
// @Accept json
// @Produce json
// @Param request body CreateSessionRequest false "Initial state"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/todo/sessions [post]
func CreateSessionHandler(service *todos.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateSessionRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				errors.ValidationError(c, err)
				return
			}
		}

		initial, err := parseState(req.State)
		if err != nil {
			errors.ValidationError(c, err)
			return
		}

		userID, _ := auth.GetUserID(c)

		session, state, err := service.CreateSession(c.Request.Context(), userID, initial)
		if err != nil {
			errors.InternalError(c, "failed to create session", err)
			return
		}

		c.JSON(http.StatusCreated, SessionResponse{Session: session, State: state})
	}
}

// GetSessionHandler godoc
// @Summary Get a to-do session
// @Tags todo
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SessionResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/todo/sessions/{id} [get]
func GetSessionHandler(service *todos.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := errors.ValidatePathUUID(c, "id", "session")
		if !ok {
			return
		}

		userID, _ := auth.GetUserID(c)

		session, state, err := service.GetSession(c.Request.Context(), sessionID, userID)
		if err != nil {
			if isSessionError(err) {
				errors.SessionNotFound(c)
				return
			}

			errors.InternalError(c, "failed to load session", err)
			return
		}

		c.JSON(http.StatusOK, SessionResponse{Session: session, State: state})
	}
}

// DeleteSessionHandler godoc
// @Summary End a to-do session
// @Description Ends the session and removes its stored list.
// @Tags todo
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/todo/sessions/{id} [delete]
func DeleteSessionHandler(service *todos.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := errors.ValidatePathUUID(c, "id", "session")
		if !ok {
			return
		}

		userID, _ := auth.GetUserID(c)

		if err := service.DeleteSession(c.Request.Context(), sessionID, userID); err != nil {
			if isSessionError(err) {
				errors.SessionNotFound(c)
				return
			}

			errors.InternalError(c, "failed to delete session", err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// decodes a loose state object; nil means none was supplied
func parseState(raw map[string]any) (*todos.ToDoState, error) {
	if raw == nil {
		return nil, nil
	}

	state, err := todos.StateFromMap(raw)
	if err != nil {
		return nil, err
	}

	return &state, nil
}

func isSessionError(err error) bool {
	return stderrors.Is(err, sessions.ErrSessionNotFound) || stderrors.Is(err, sessions.ErrSessionExpired)
}
