package game

import (
	"fmt"
	"slices"

	"github.com/pixil98/go-errors"
)

// Objective is one step of a quest. DeliverTo and DeliverMail let a delivery
// complete the objective on its own.
type Objective struct {
	Description string `json:"description" yaml:"description"`
	Complete    bool   `json:"complete" yaml:"complete"`
	DeliverTo   string `json:"deliver_to,omitempty" yaml:"deliver_to,omitempty"`
	DeliverMail string `json:"deliver_mail,omitempty" yaml:"deliver_mail,omitempty"`
}

// matchesDelivery reports whether delivering item satisfies this objective.
func (o Objective) matchesDelivery(item MailItem) bool {
	if o.Complete {
		return false
	}
	if o.DeliverMail != "" {
		return o.DeliverMail == item.Id
	}
	return o.DeliverTo != "" && o.DeliverTo == item.To
}

type Rewards struct {
	Coins      int `json:"coins" yaml:"coins"`
	Reputation int `json:"reputation" yaml:"reputation"`
}

// Quest is a runtime quest held by the player.
type Quest struct {
	Id          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Objectives  []Objective `json:"objectives"`
	Rewards     Rewards     `json:"rewards"`
}

// Done reports whether the quest has objectives and all of them are complete.
func (q *Quest) Done() bool {
	if len(q.Objectives) == 0 {
		return false
	}
	for _, o := range q.Objectives {
		if !o.Complete {
			return false
		}
	}
	return true
}

func (q Quest) clone() Quest {
	q.Objectives = slices.Clone(q.Objectives)
	return q
}

// QuestSpec defines a quest loaded from asset files.
type QuestSpec struct {
	Title       string      `json:"title" yaml:"title"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Objectives  []Objective `json:"objectives" yaml:"objectives"`
	Rewards     Rewards     `json:"rewards" yaml:"rewards"`
}

// Validate satisfies storage.ValidatingSpec.
func (q *QuestSpec) Validate() error {
	el := errors.NewErrorList()

	if q.Title == "" {
		el.Add(fmt.Errorf("quest title is required"))
	}
	if len(q.Objectives) == 0 {
		el.Add(fmt.Errorf("quest needs at least one objective"))
	}
	for i, o := range q.Objectives {
		if o.Description == "" {
			el.Add(fmt.Errorf("objective %d: description is required", i))
		}
	}
	if q.Rewards.Coins < 0 {
		el.Add(fmt.Errorf("reward coins must not be negative"))
	}
	if q.Rewards.Reputation < 0 {
		el.Add(fmt.Errorf("reward reputation must not be negative"))
	}

	return el.Err()
}

// NewQuest builds a fresh runtime quest from its definition.
func NewQuest(id string, spec *QuestSpec) Quest {
	objectives := make([]Objective, len(spec.Objectives))
	for i, o := range spec.Objectives {
		o.Complete = false
		objectives[i] = o
	}
	return Quest{
		Id:          id,
		Title:       spec.Title,
		Description: spec.Description,
		Objectives:  objectives,
		Rewards:     spec.Rewards,
	}
}
