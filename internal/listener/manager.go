package listener

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"
)

// SessionRunner plays one game over a connection.
type SessionRunner interface {
	RunSession(ctx context.Context, conn io.ReadWriter) error
}

// ConnInfo describes where a connection came from.
type ConnInfo struct {
	Protocol string
	Remote   string
	User     string
}

func (i ConnInfo) attrs() []any {
	attrs := []any{"protocol", i.Protocol}
	if i.Remote != "" {
		attrs = append(attrs, "remote", i.Remote)
	}
	if i.User != "" {
		attrs = append(attrs, "user", i.User)
	}
	return attrs
}

// ConnectionManager hands accepted connections to the session runner.
type ConnectionManager struct {
	runner SessionRunner
	active atomic.Int64
}

func NewConnectionManager(r SessionRunner) *ConnectionManager {
	return &ConnectionManager{
		runner: r,
	}
}

// AcceptConnection runs a session on conn and returns when it ends.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, info ConnInfo, conn io.ReadWriter) {
	m.active.Add(1)
	defer m.active.Add(-1)

	logger := slog.With(info.attrs()...)
	logger.InfoContext(ctx, "courier connected", "active", m.Active())

	start := time.Now()
	if err := m.runner.RunSession(ctx, conn); err != nil {
		logger.WarnContext(ctx, "player session", "error", err)
	}
	logger.InfoContext(ctx, "courier disconnected", "duration", time.Since(start).Round(time.Second))
}

// Active is the number of connections currently playing.
func (m *ConnectionManager) Active() int {
	return int(m.active.Load())
}
