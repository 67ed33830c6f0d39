package todos

import (
	"context"
	"fmt"

	"codeberg.org/todoai/server/internal/application"
	"codeberg.org/todoai/server/internal/kv"
	"codeberg.org/todoai/server/internal/llm"
	"codeberg.org/todoai/server/internal/sessions"
)

// coordinates sessions, their stored lists and the assistant
type Service struct {
	client   llm.ChatCompleter
	backend  kv.Backend
	sessions *sessions.Manager
}

// a one-shot update. Without a session the list lives only for this request.
type UpdateRequest struct {
	Update    string
	State     *ToDoState
	SessionID string
	OwnerID   string
}

func NewService(client llm.ChatCompleter, backend kv.Backend, manager *sessions.Manager) *Service {
	return &Service{client: client, backend: backend, sessions: manager}
}

// applies one update and returns the reply with the resulting list
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*ToDoResponse, error) {
	if req.SessionID == "" {
		app, err := s.ephemeral(ctx, req.State)
		if err != nil {
			return nil, err
		}

		return Apply(ctx, app, req.Update)
	}

	var resp *ToDoResponse

	err := s.sessions.WithSession(ctx, req.SessionID, req.OwnerID, func() error {
		store, err := s.backend.Open(ctx, req.SessionID)
		if err != nil {
			return fmt.Errorf("failed to open session state: %w", err)
		}

		if req.State != nil {
			if err := seedIfEmpty(ctx, store, *req.State); err != nil {
				return err
			}
		}

		app, err := NewAssistant(s.client, store)
		if err != nil {
			return err
		}

		resp, err = Apply(ctx, app, req.Update)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp.SessionID = req.SessionID
	return resp, nil
}

// starts a session, optionally seeded with an initial list
func (s *Service) CreateSession(ctx context.Context, ownerID string, initial *ToDoState) (sessions.Session, ToDoState, error) {
	session, err := s.sessions.Create(ctx, ownerID)
	if err != nil {
		return sessions.Session{}, ToDoState{}, err
	}

	store, err := s.backend.Open(ctx, session.ID)
	if err != nil {
		return s.abandon(ctx, session, fmt.Errorf("failed to open session state: %w", err))
	}

	state := ToDoState{Todos: []ToDo{}}
	if initial != nil {
		state = *initial
	}

	if err := Seed(ctx, store, state); err != nil {
		return s.abandon(ctx, session, fmt.Errorf("failed to seed session state: %w", err))
	}

	state, err = StateFromStore(ctx, store)
	if err != nil {
		return s.abandon(ctx, session, err)
	}

	return session, state, nil
}

func (s *Service) abandon(ctx context.Context, session sessions.Session, err error) (sessions.Session, ToDoState, error) {
	s.sessions.Delete(ctx, session.ID, session.OwnerID) //nolint:errcheck,gosec // best effort cleanup
	return sessions.Session{}, ToDoState{}, err
}

// returns a session and its current list
func (s *Service) GetSession(ctx context.Context, sessionID, ownerID string) (sessions.Session, ToDoState, error) {
	session, err := s.sessions.Get(sessionID, ownerID)
	if err != nil {
		return sessions.Session{}, ToDoState{}, err
	}

	store, err := s.backend.Open(ctx, sessionID)
	if err != nil {
		return sessions.Session{}, ToDoState{}, fmt.Errorf("failed to open session state: %w", err)
	}

	state, err := StateFromStore(ctx, store)
	if err != nil {
		return sessions.Session{}, ToDoState{}, err
	}

	return session, state, nil
}

// ends a session and drops its stored list
func (s *Service) DeleteSession(ctx context.Context, sessionID, ownerID string) error {
	return s.sessions.Delete(ctx, sessionID, ownerID)
}

// a running conversation that keeps its history between updates
type Conversation struct {
	service   *Service
	app       *application.Application
	sessionID string
	ownerID   string
}

// opens a conversation over a session, or over a fresh in-memory list when sessionID is empty
func (s *Service) Open(ctx context.Context, sessionID, ownerID string) (*Conversation, error) {
	conv := &Conversation{service: s, sessionID: sessionID, ownerID: ownerID}

	if sessionID == "" {
		app, err := s.ephemeral(ctx, nil)
		if err != nil {
			return nil, err
		}

		conv.app = app
		return conv, nil
	}

	if _, err := s.sessions.Get(sessionID, ownerID); err != nil {
		return nil, err
	}

	store, err := s.backend.Open(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to open session state: %w", err)
	}

	app, err := NewAssistant(s.client, store)
	if err != nil {
		return nil, err
	}

	conv.app = app
	return conv, nil
}

func (c *Conversation) SessionID() string {
	return c.sessionID
}

// sends one update, serialized with every other writer of the same session
func (c *Conversation) Send(ctx context.Context, update string) (*ToDoResponse, error) {
	if c.sessionID == "" {
		return Apply(ctx, c.app, update)
	}

	var resp *ToDoResponse

	err := c.service.sessions.WithSession(ctx, c.sessionID, c.ownerID, func() error {
		var err error
		resp, err = Apply(ctx, c.app, update)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp.SessionID = c.sessionID
	return resp, nil
}

func (s *Service) ephemeral(ctx context.Context, state *ToDoState) (*application.Application, error) {
	store := kv.NewMemoryStore()

	if state != nil {
		if err := Seed(ctx, store, *state); err != nil {
			return nil, fmt.Errorf("failed to seed state: %w", err)
		}
	}

	return NewAssistant(s.client, store)
}

// a supplied list only seeds a session that has nothing stored yet
func seedIfEmpty(ctx context.Context, store kv.Store, state ToDoState) error {
	keys, err := store.ListKeys(ctx)
	if err != nil {
		return fmt.Errorf("failed to read session state: %w", err)
	}

	if len(keys) > 0 {
		return nil
	}

	return Seed(ctx, store, state)
}
