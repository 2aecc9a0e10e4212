package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pixil98/mailsphere/internal/display"
	"github.com/pixil98/mailsphere/internal/events"
	"github.com/pixil98/mailsphere/internal/sim"
)

const messageBuffer = 32

// Session is one console attached to its own simulation.
type Session struct {
	id      string
	sim     *sim.Simulation
	handler *Handler
	out     io.Writer
	width   int

	msgs chan string
	sub  events.Subscription
	quit bool
}

// NewSession attaches a console to s. Output goes to out.
func NewSession(id string, s *sim.Simulation, h *Handler, out io.Writer) *Session {
	sess := &Session{
		id:      id,
		sim:     s,
		handler: h,
		out:     out,
		width:   display.DefaultWidth,
		msgs:    make(chan string, messageBuffer),
	}
	sess.sub = s.Subscribe(sess.onEvent)
	return sess
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) Sim() *sim.Simulation {
	return s.sim
}

// Quit reports whether the player asked to leave.
func (s *Session) Quit() bool {
	return s.quit
}

// Close detaches the session from its simulation.
func (s *Session) Close() {
	s.sim.Unsubscribe(s.sub)
}

// onEvent runs while the simulation is locked, so it only queues text.
func (s *Session) onEvent(e events.Event) {
	if msg := describeEvent(e); msg != "" {
		s.queue(msg)
	}
}

func (s *Session) queue(msg string) {
	select {
	case s.msgs <- msg:
	default:
		slog.Debug("dropping console message", "session", s.id)
	}
}

// Exec runs one line of input and writes the result along with any
// messages raised while it ran.
func (s *Session) Exec(ctx context.Context, line string) error {
	err := s.handler.Exec(ctx, s, line)

	var userErr *UserError
	if errors.As(err, &userErr) {
		if writeErr := s.writeLine(userErr.Message); writeErr != nil {
			return writeErr
		}
		err = nil
	}
	if err != nil {
		return err
	}

	return s.drain()
}

func (s *Session) drain() error {
	for {
		select {
		case msg := <-s.msgs:
			if err := s.writeLine(msg); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// Run reads commands from conn until the player quits, the connection
// drops or ctx is cancelled.
func (s *Session) Run(ctx context.Context, conn io.Reader) error {
	inputChan := make(chan string)
	inputErrChan := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(inputChan)
		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			select {
			case inputChan <- scanner.Text():
			case <-done:
				// Nobody is listening any more; discard until the connection closes.
			}
		}
		inputErrChan <- scanner.Err()
	}()

	if err := s.writeLine(welcomeText); err != nil {
		return err
	}
	if err := s.prompt(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg := <-s.msgs:
			if err := s.writeLine("\n" + msg); err != nil {
				return err
			}
			if err := s.prompt(); err != nil {
				return err
			}

		case line, ok := <-inputChan:
			if !ok {
				select {
				case err := <-inputErrChan:
					return err
				default:
					return nil
				}
			}

			line = strings.TrimSpace(line)
			if line != "" {
				if err := s.Exec(ctx, line); err != nil {
					return fmt.Errorf("command execution failed: %w", err)
				}
			}

			if s.quit {
				_ = s.writeLine("Goodbye!")
				return nil
			}

			if err := s.prompt(); err != nil {
				return err
			}
		}
	}
}

func (s *Session) prompt() error {
	_, err := io.WriteString(s.out, fmt.Sprintf("[%s] > ", s.sim.Phase()))
	return err
}

func (s *Session) writeLine(msg string) error {
	_, err := io.WriteString(s.out, display.WrapWidth(msg, s.width)+"\n")
	return err
}

// print writes rendered command output. Template failures are system errors.
func (s *Session) print(tmpl string, data any) error {
	text, err := display.ExpandTemplate(tmpl, data)
	if err != nil {
		return err
	}
	return s.writeLine(strings.Trim(text, "\n"))
}
