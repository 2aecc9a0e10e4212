package dialogue

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/pixil98/mailsphere/internal/events"
)

type effectKind string

const (
	effectGiveQuest effectKind = "givequest"
	effectGiveMail  effectKind = "givemail"
	effectGiveCoins effectKind = "givecoins"
)

// parseEffect splits a "kind:payload" directive. Kinds are matched without
// regard to case or underscores, so giveQuest, give_quest and GIVE_QUEST are
// the same.
func parseEffect(effect string) (effectKind, string, bool) {
	kind, payload, ok := strings.Cut(strings.TrimSpace(effect), ":")
	if !ok {
		return "", "", false
	}
	kind = strings.ToLower(strings.ReplaceAll(kind, "_", ""))
	return effectKind(kind), strings.TrimSpace(payload), true
}

// ExecuteEffect applies one effect directive to the store. Directives that
// are malformed, of an unknown kind, or name an unknown quest or letter
// change nothing. Returns whether the store changed.
func (m *Machine) ExecuteEffect(effect string) bool {
	kind, payload, ok := parseEffect(effect)
	if !ok {
		slog.Debug("ignoring malformed effect", "effect", effect)
		return false
	}

	switch kind {
	case effectGiveQuest:
		return m.giveQuest(payload)
	case effectGiveMail:
		return m.giveMail(payload)
	case effectGiveCoins:
		return m.giveCoins(payload)
	default:
		slog.Debug("ignoring unknown effect", "effect", effect)
		return false
	}
}

func (m *Machine) giveQuest(id string) bool {
	if m.dict == nil || m.dict.Quests == nil {
		return false
	}
	q, ok := m.dict.Quest(id)
	if !ok {
		slog.Debug("ignoring unknown quest", "quest", id)
		return false
	}
	if !m.store.AcceptQuest(q) {
		return false
	}

	m.publish(events.QuestGiven, map[string]any{"npc": m.npcId, "quest": id})
	return true
}

func (m *Machine) giveMail(id string) bool {
	if m.dict == nil || m.dict.Mail == nil {
		return false
	}
	item, ok := m.dict.MailItem(id)
	if !ok {
		slog.Debug("ignoring unknown mail", "mail", id)
		return false
	}
	if !m.store.AddMail(item) {
		return false
	}

	m.publish(events.MailGiven, map[string]any{"npc": m.npcId, "mail": id, "to": item.To})
	return true
}

func (m *Machine) giveCoins(amount string) bool {
	n, err := strconv.Atoi(amount)
	if err != nil || n <= 0 {
		slog.Debug("ignoring bad coin amount", "amount", amount)
		return false
	}
	m.store.AddCoins(n)

	m.publish(events.CoinsGiven, map[string]any{"npc": m.npcId, "coins": n})
	return true
}
