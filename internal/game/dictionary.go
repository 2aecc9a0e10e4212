package game

import (
	"fmt"

	"github.com/pixil98/mailsphere/internal/storage"
)

// Dictionary holds all game definition stores. It provides a single
// reference that can be passed to resolution methods so they all
// share the same signature.
type Dictionary struct {
	Quests    storage.Storer[*QuestSpec]
	Mail      storage.Storer[*MailSpec]
	Dialogues storage.Storer[*DialogueTree]
	NPCs      storage.Storer[*NPCSpec]
	Mailboxes storage.Storer[*MailboxSpec]
}

// Resolve resolves all foreign key references between definitions.
// Dialogue effects are not checked; unknown ids there are ignored at runtime.
func (d *Dictionary) Resolve() error {
	for id, npc := range d.NPCs.GetAll() {
		if err := npc.Resolve(d); err != nil {
			return fmt.Errorf("npc %s: %w", id, err)
		}
	}

	for id, mail := range d.Mail.GetAll() {
		if err := mail.To.Resolve(d.NPCs); err != nil {
			return fmt.Errorf("mail %s: %w", id, err)
		}
	}

	for id, mb := range d.Mailboxes.GetAll() {
		if err := mb.Resolve(d); err != nil {
			return fmt.Errorf("mailbox %s: %w", id, err)
		}
	}
	return nil
}

// Quest builds a fresh runtime quest from the definition with the given id.
func (d *Dictionary) Quest(id string) (Quest, bool) {
	spec, ok := d.Quests.Lookup(id)
	if !ok {
		return Quest{}, false
	}
	return NewQuest(id, spec), true
}

// MailItem builds the inventory item for the mail definition with the given id.
func (d *Dictionary) MailItem(id string) (MailItem, bool) {
	spec, ok := d.Mail.Lookup(id)
	if !ok {
		return MailItem{}, false
	}
	return NewMailItem(id, spec), true
}

// DialogueFor returns the conversation tree of the given NPC.
func (d *Dictionary) DialogueFor(npcId string) (*DialogueTree, bool) {
	npc, ok := d.NPCs.Lookup(npcId)
	if !ok || npc.Dialogue.Id() == "" {
		return nil, false
	}
	if tree := npc.Dialogue.Get(); tree != nil {
		return tree, true
	}
	return d.Dialogues.Lookup(npc.Dialogue.Id())
}
