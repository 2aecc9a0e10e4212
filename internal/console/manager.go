package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/pixil98/go-errors"
	"github.com/pixil98/mailsphere/internal/game"
	"github.com/pixil98/mailsphere/internal/sim"
)

// SessionHook is called for every new session. The returned func, if any,
// runs when the session ends.
type SessionHook func(id string, s *sim.Simulation) func()

type ManagerOpt func(*Manager)

// WithSessionHook registers a hook run as sessions begin.
func WithSessionHook(hook SessionHook) ManagerOpt {
	return func(m *Manager) {
		if hook != nil {
			m.hooks = append(m.hooks, hook)
		}
	}
}

// Manager gives every connection its own simulation and steps them all
// each frame.
type Manager struct {
	dict    *game.Dictionary
	cfg     sim.Config
	handler *Handler
	hooks   []SessionHook

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(dict *game.Dictionary, cfg sim.Config, opts ...ManagerOpt) *Manager {
	m := &Manager{
		dict:     dict,
		cfg:      cfg,
		handler:  NewHandler(),
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start blocks until ctx is cancelled. Sessions end with their connections.
func (m *Manager) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Tick advances every live simulation by one frame.
func (m *Manager) Tick(ctx context.Context) error {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	el := errors.NewErrorList()
	for _, s := range sessions {
		if err := s.sim.Tick(ctx); err != nil {
			el.Add(fmt.Errorf("session %s: %w", s.id, err))
		}
	}
	return el.Err()
}

// Broadcast shows msg on every console.
func (m *Manager) Broadcast(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		s.queue("[announcement] " + msg)
	}
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// NewSession creates a simulation and a console for it. The returned func
// ends the session and must be called once the caller is done with it.
func (m *Manager) NewSession(out io.Writer) (*Session, func()) {
	id := uuid.NewString()
	s := NewSession(id, sim.New(m.dict, m.cfg), m.handler, out)

	var cleanups []func()
	for _, hook := range m.hooks {
		if done := hook(id, s.sim); done != nil {
			cleanups = append(cleanups, done)
		}
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	return s, func() {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()

		for _, done := range cleanups {
			done()
		}
		s.Close()
		s.sim.Dispose()
	}
}

// RunSession plays one game over conn until it disconnects or quits.
func (m *Manager) RunSession(ctx context.Context, conn io.ReadWriter) error {
	s, end := m.NewSession(conn)
	defer end()

	slog.InfoContext(ctx, "session started", "session", s.id)
	err := s.Run(ctx, conn)
	slog.InfoContext(ctx, "session ended", "session", s.id, "quit", s.quit)

	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("session %s: %w", s.id, err)
	}
	return nil
}
