package game

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/mailsphere/internal/storage"
)

// Priority is how urgently a piece of mail has to be delivered. It decides
// the delivery reward.
type Priority string

const (
	PriorityNormal  Priority = "normal"
	PriorityExpress Priority = "express"
	PriorityUrgent  Priority = "urgent"
)

func (p Priority) Validate() error {
	switch p {
	case PriorityNormal, PriorityExpress, PriorityUrgent:
		return nil
	default:
		return fmt.Errorf("invalid priority %q (must be %s, %s, or %s)",
			p, PriorityNormal, PriorityExpress, PriorityUrgent)
	}
}

// DefaultDeliveryRewards are the coins paid out per delivered item.
var DefaultDeliveryRewards = map[Priority]int{
	PriorityNormal:  10,
	PriorityExpress: 15,
	PriorityUrgent:  25,
}

// DefaultDeliveryReputation is the reputation gained per delivered item.
const DefaultDeliveryReputation = 5

// MailItem is one letter. An id lives in at most one place: a mailbox's
// pending flag, the player's inventory, or nowhere.
type MailItem struct {
	Id       string   `json:"id"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Priority Priority `json:"priority"`
}

// MailSpec defines a named letter that dialogue can hand to the player.
type MailSpec struct {
	From     string                            `json:"from" yaml:"from"`
	To       storage.SmartIdentifier[*NPCSpec] `json:"to" yaml:"to"`
	Priority Priority                          `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (m *MailSpec) Validate() error {
	el := errors.NewErrorList()

	if m.From == "" {
		el.Add(fmt.Errorf("from is required"))
	}
	el.Add(m.To.Validate())
	if m.Priority != "" {
		el.Add(m.Priority.Validate())
	}

	return el.Err()
}

// NewMailItem builds the inventory item for a mail definition.
func NewMailItem(id string, spec *MailSpec) MailItem {
	p := spec.Priority
	if p == "" {
		p = PriorityNormal
	}
	return MailItem{
		Id:       id,
		From:     spec.From,
		To:       spec.To.Id(),
		Priority: p,
	}
}
