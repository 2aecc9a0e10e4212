package game

import (
	"fmt"
	"slices"

	"github.com/pixil98/go-errors"
)

// DialogueTree is a static conversation graph for one NPC.
type DialogueTree struct {
	StartNode string                   `json:"start_node" yaml:"start_node"`
	Nodes     map[string]*DialogueNode `json:"nodes" yaml:"nodes"`
}

// DialogueNode is one turn of a conversation.
type DialogueNode struct {
	Speaker string           `json:"speaker" yaml:"speaker"`
	Text    string           `json:"text" yaml:"text"`
	Choices []DialogueChoice `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// DialogueChoice is an answer the player can pick. An empty Next ends the
// conversation.
type DialogueChoice struct {
	Text    string   `json:"text" yaml:"text"`
	Effect  string   `json:"effect,omitempty" yaml:"effect,omitempty"`
	Effects []string `json:"effects,omitempty" yaml:"effects,omitempty"`
	Next    string   `json:"next,omitempty" yaml:"next,omitempty"`
}

// AllEffects returns the single Effect followed by Effects.
func (c DialogueChoice) AllEffects() []string {
	if c.Effect == "" {
		return slices.Clone(c.Effects)
	}
	return append([]string{c.Effect}, c.Effects...)
}

// Validate satisfies storage.ValidatingSpec.
func (d *DialogueTree) Validate() error {
	el := errors.NewErrorList()

	if d.StartNode == "" {
		el.Add(fmt.Errorf("start_node is required"))
	} else if _, ok := d.Nodes[d.StartNode]; !ok {
		el.Add(fmt.Errorf("start_node %q is not a node", d.StartNode))
	}

	for id, n := range d.Nodes {
		if n == nil {
			el.Add(fmt.Errorf("node %q is empty", id))
			continue
		}
		if n.Text == "" {
			el.Add(fmt.Errorf("node %q: text is required", id))
		}
		for i, c := range n.Choices {
			if c.Text == "" {
				el.Add(fmt.Errorf("node %q choice %d: text is required", id, i))
			}
			if c.Next == "" {
				continue
			}
			if _, ok := d.Nodes[c.Next]; !ok {
				el.Add(fmt.Errorf("node %q choice %d: next %q is not a node", id, i, c.Next))
			}
		}
	}

	return el.Err()
}

// Node returns the node with the given id, or nil.
func (d *DialogueTree) Node(id string) *DialogueNode {
	return d.Nodes[id]
}
