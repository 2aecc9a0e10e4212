package game

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/mailsphere/internal/storage"
)

// NPCSpec defines a character placed on the planet surface.
// NPC IDs follow the convention <zone>-<name> (e.g., "town-baker").
type NPCSpec struct {
	Name string `json:"name" yaml:"name"`

	// Role is a short label shown alongside the name (e.g., "Baker").
	Role string `json:"role,omitempty" yaml:"role,omitempty"`

	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`

	// InteractionRadius is how close the player must be to talk. Unset uses
	// the registry default; zero means the player must stand on the spot.
	InteractionRadius *float64 `json:"interaction_radius,omitempty" yaml:"interaction_radius,omitempty"`

	// Dialogue is the conversation tree started when the player talks to
	// this NPC. NPCs without one cannot be talked to.
	Dialogue storage.SmartIdentifier[*DialogueTree] `json:"dialogue,omitempty" yaml:"dialogue,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (n *NPCSpec) Validate() error {
	el := errors.NewErrorList()

	if n.Name == "" {
		el.Add(fmt.Errorf("npc name is required"))
	}
	el.Add(validateLatitude(n.Latitude))
	if n.InteractionRadius != nil && *n.InteractionRadius < 0 {
		el.Add(fmt.Errorf("interaction_radius must not be negative"))
	}

	return el.Err()
}

// Resolve resolves foreign keys from the dictionary.
func (n *NPCSpec) Resolve(dict *Dictionary) error {
	if n.Dialogue.Id() == "" {
		return nil
	}
	return n.Dialogue.Resolve(dict.Dialogues)
}

// MailboxSpec defines a mailbox placed on the planet surface.
type MailboxSpec struct {
	LocationName string  `json:"location_name" yaml:"location_name"`
	Latitude     float64 `json:"latitude" yaml:"latitude"`
	Longitude    float64 `json:"longitude" yaml:"longitude"`

	// InteractionRadius is how close the player must be to collect. Unset
	// uses the registry default.
	InteractionRadius *float64 `json:"interaction_radius,omitempty" yaml:"interaction_radius,omitempty"`

	// HasMail is whether the mailbox starts out full.
	HasMail bool `json:"has_mail" yaml:"has_mail"`

	// Recipients are the NPCs mail collected here may be addressed to.
	Recipients []storage.SmartIdentifier[*NPCSpec] `json:"recipients" yaml:"recipients"`

	// Priorities are drawn from when mail is collected. Empty means normal.
	Priorities []Priority `json:"priorities,omitempty" yaml:"priorities,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (m *MailboxSpec) Validate() error {
	el := errors.NewErrorList()

	if m.LocationName == "" {
		el.Add(fmt.Errorf("location_name is required"))
	}
	el.Add(validateLatitude(m.Latitude))
	if m.InteractionRadius != nil && *m.InteractionRadius < 0 {
		el.Add(fmt.Errorf("interaction_radius must not be negative"))
	}
	if len(m.Recipients) == 0 {
		el.Add(fmt.Errorf("at least one recipient is required"))
	}
	for i, r := range m.Recipients {
		if err := r.Validate(); err != nil {
			el.Add(fmt.Errorf("recipient %d: %w", i, err))
		}
	}
	for _, p := range m.Priorities {
		el.Add(p.Validate())
	}

	return el.Err()
}

// Resolve resolves foreign keys from the dictionary.
func (m *MailboxSpec) Resolve(dict *Dictionary) error {
	el := errors.NewErrorList()
	for i := range m.Recipients {
		el.Add(m.Recipients[i].Resolve(dict.NPCs))
	}
	return el.Err()
}

func validateLatitude(lat float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", lat)
	}
	return nil
}
