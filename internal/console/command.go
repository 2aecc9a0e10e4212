package console

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pixil98/mailsphere/internal/game"
)

// CommandFunc runs a command for a session with the words that followed it.
type CommandFunc func(ctx context.Context, s *Session, args []string) error

// Command is one verb the console understands.
type Command struct {
	Name        string
	Aliases     []string
	Category    string
	Usage       string
	Description string
	Run         CommandFunc
}

// Handler maps typed words to commands. It is read-only once built and is
// shared by every session.
type Handler struct {
	commands map[string]*Command
	aliases  map[string]string
}

// NewHandler creates a handler with every built-in command registered.
func NewHandler() *Handler {
	h := &Handler{
		commands: make(map[string]*Command),
		aliases:  make(map[string]string),
	}
	for _, cmd := range builtinCommands(h) {
		if err := h.Register(cmd); err != nil {
			panic(fmt.Sprintf("registering built-in command: %v", err))
		}
	}
	return h
}

// Register adds a command. Names and aliases must be unique.
func (h *Handler) Register(cmd *Command) error {
	if cmd == nil {
		return fmt.Errorf("command cannot be nil")
	}
	if cmd.Name == "" {
		return fmt.Errorf("command name cannot be empty")
	}
	if cmd.Run == nil {
		return fmt.Errorf("command %q has no run func", cmd.Name)
	}

	names := append([]string{cmd.Name}, cmd.Aliases...)
	for _, n := range names {
		n = strings.ToLower(n)
		if _, exists := h.commands[n]; exists {
			return fmt.Errorf("command %q already registered", n)
		}
		if _, exists := h.aliases[n]; exists {
			return fmt.Errorf("command %q already registered", n)
		}
	}

	h.commands[strings.ToLower(cmd.Name)] = cmd
	for _, a := range cmd.Aliases {
		h.aliases[strings.ToLower(a)] = strings.ToLower(cmd.Name)
	}
	return nil
}

// Lookup finds a command by name or alias.
func (h *Handler) Lookup(name string) (*Command, bool) {
	name = strings.ToLower(name)
	if target, ok := h.aliases[name]; ok {
		name = target
	}
	cmd, ok := h.commands[name]
	return cmd, ok
}

// Exec parses and runs one line of input. User errors are returned as
// *UserError; anything else is a system failure.
func (h *Handler) Exec(ctx context.Context, s *Session, line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	name, args := parts[0], parts[1:]

	// A bare number picks a dialogue answer.
	if _, err := strconv.Atoi(name); err == nil && s.sim.Phase() == game.PhaseDialogue {
		name, args = "choose", parts
	}

	cmd, ok := h.Lookup(name)
	if !ok {
		return NewUserError(fmt.Sprintf("Unknown command: %s", name))
	}

	err := cmd.Run(ctx, s, args)
	var userErr *UserError
	if err != nil && !errors.As(err, &userErr) {
		return fmt.Errorf("running %s: %w", cmd.Name, err)
	}
	return err
}

// help lists every command grouped by category, or shows one command.
func (h *Handler) help(name string) (string, error) {
	if name != "" {
		cmd, ok := h.Lookup(name)
		if !ok {
			return "", NewUserError(fmt.Sprintf("Command %q is unknown.", name))
		}
		lines := []string{fmt.Sprintf("%s: %s", cmd.Name, cmd.Description)}
		if cmd.Usage != "" {
			lines = append(lines, fmt.Sprintf("Usage: %s", cmd.Usage))
		}
		if len(cmd.Aliases) > 0 {
			lines = append(lines, fmt.Sprintf("Aliases: %s", strings.Join(cmd.Aliases, ", ")))
		}
		return strings.Join(lines, "\n"), nil
	}

	groups := make(map[string][]string)
	for id, cmd := range h.commands {
		category := cmd.Category
		if category == "" {
			category = "other"
		}
		groups[category] = append(groups[category], id)
	}

	categories := make([]string, 0, len(groups))
	for cat := range groups {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	lines := []string{"Available commands:"}
	for _, cat := range categories {
		cmds := groups[cat]
		sort.Strings(cmds)
		label := strings.ToUpper(cat[:1]) + cat[1:]
		lines = append(lines, fmt.Sprintf("  %s: %s", label, strings.Join(cmds, ", ")))
	}
	return strings.Join(lines, "\n"), nil
}
