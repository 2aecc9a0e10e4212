// Package dialogue runs conversations between the player and NPCs. At most
// one conversation is active at a time; its progress is mirrored into the
// game store.
package dialogue

import (
	"log/slog"
	"slices"

	"github.com/pixil98/mailsphere/internal/display"
	"github.com/pixil98/mailsphere/internal/events"
	"github.com/pixil98/mailsphere/internal/game"
)

// Store is the part of the game store conversations act on.
type Store interface {
	StartDialogue(npcId, nodeId string) bool
	AdvanceDialogue(nodeId string)
	EndDialogue()
	RecordNPCTalk(npcId string)

	AcceptQuest(q game.Quest) bool
	AddMail(item game.MailItem) bool
	AddCoins(n int)

	Coins() int
	MailCount() int
}

// Choice is an answer as presented to the player.
type Choice struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Ends  bool   `json:"ends"`
}

// NodeView is the rendered form of the active node.
type NodeView struct {
	NPC     string   `json:"npc"`
	NodeId  string   `json:"node_id"`
	Speaker string   `json:"speaker"`
	Text    string   `json:"text"`
	Choices []Choice `json:"choices"`
}

// ConversationState summarizes the machine. Choices is empty when idle.
type ConversationState struct {
	Active  bool     `json:"active"`
	NPC     string   `json:"npc,omitempty"`
	Speaker string   `json:"speaker,omitempty"`
	Choices []Choice `json:"choices"`
}

// textData is what node text templates can reference.
type textData struct {
	NPC       string
	Coins     int
	MailCount int
}

type Machine struct {
	store Store
	dict  *game.Dictionary
	bus   *events.Bus
	trees map[string]*game.DialogueTree

	active  bool
	npcId   string
	tree    *game.DialogueTree
	nodeId  string
	history []string
}

// NewMachine builds a machine holding the conversation tree of every NPC in
// dict that has one.
func NewMachine(store Store, bus *events.Bus, dict *game.Dictionary) *Machine {
	m := &Machine{
		store: store,
		dict:  dict,
		bus:   bus,
		trees: make(map[string]*game.DialogueTree),
	}

	if dict != nil && dict.NPCs != nil {
		for _, id := range dict.NPCs.Ids() {
			if tree, ok := dict.DialogueFor(id); ok {
				m.trees[id] = tree
			}
		}
	}
	return m
}

// LoadTree sets the conversation tree used for npcId.
func (m *Machine) LoadTree(npcId string, tree *game.DialogueTree) {
	if tree == nil {
		delete(m.trees, npcId)
		return
	}
	m.trees[npcId] = tree
}

func (m *Machine) HasTree(npcId string) bool {
	_, ok := m.trees[npcId]
	return ok
}

// On subscribes handler to the named event.
func (m *Machine) On(name string, handler events.Handler) events.Subscription {
	return m.bus.Subscribe(name, handler)
}

// Off removes a handler added with On.
func (m *Machine) Off(sub events.Subscription) {
	m.bus.Unsubscribe(sub)
}

func (m *Machine) publish(name string, data map[string]any) {
	m.bus.Publish(events.Event{Name: name, Data: data})
}

// StartConversation opens the tree of npcId at its start node. It returns
// nil without touching any state if npcId has no tree or the game is not in
// a phase that allows conversation.
func (m *Machine) StartConversation(npcId string) *NodeView {
	tree, ok := m.trees[npcId]
	if !ok {
		slog.Debug("no dialogue for npc", "npc", npcId)
		return nil
	}
	if !m.store.StartDialogue(npcId, tree.StartNode) {
		slog.Debug("conversation not allowed now", "npc", npcId)
		return nil
	}

	m.active = true
	m.npcId = npcId
	m.tree = tree
	m.nodeId = tree.StartNode
	m.history = nil

	m.store.RecordNPCTalk(npcId)
	m.publish(events.ConversationStarted, map[string]any{
		"npc":  npcId,
		"node": tree.StartNode,
	})

	return m.CurrentNode()
}

func (m *Machine) node() *game.DialogueNode {
	if !m.active {
		return nil
	}
	return m.tree.Node(m.nodeId)
}

// CurrentNode returns the active node, or nil when no conversation is open.
func (m *Machine) CurrentNode() *NodeView {
	n := m.node()
	if n == nil {
		return nil
	}
	return &NodeView{
		NPC:     m.npcId,
		NodeId:  m.nodeId,
		Speaker: n.Speaker,
		Text:    m.render(n.Text),
		Choices: m.choices(n),
	}
}

// Choices returns the answers available at the active node.
func (m *Machine) Choices() []Choice {
	return m.choices(m.node())
}

func (m *Machine) choices(n *game.DialogueNode) []Choice {
	if n == nil {
		return []Choice{}
	}
	out := make([]Choice, len(n.Choices))
	for i, c := range n.Choices {
		out[i] = Choice{
			Index: i,
			Text:  m.render(c.Text),
			Ends:  c.Next == "",
		}
	}
	return out
}

// render expands node text against the player's current state. Text that
// fails to expand is shown as written.
func (m *Machine) render(text string) string {
	data := textData{
		NPC:       m.npcName(),
		Coins:     m.store.Coins(),
		MailCount: m.store.MailCount(),
	}
	out, err := display.ExpandTemplate(text, data)
	if err != nil {
		slog.Warn("rendering dialogue text", "npc", m.npcId, "node", m.nodeId, "error", err)
		return text
	}
	return out
}

func (m *Machine) npcName() string {
	if m.dict != nil && m.dict.NPCs != nil {
		if spec, ok := m.dict.NPCs.Lookup(m.npcId); ok {
			return spec.Name
		}
	}
	return m.npcId
}

// SelectChoice applies the effects of choice i at the active node and moves
// to its next node. It returns the node now active (nil if the conversation
// ended) and false if there is no such choice.
func (m *Machine) SelectChoice(i int) (*NodeView, bool) {
	n := m.node()
	if n == nil || i < 0 || i >= len(n.Choices) {
		return nil, false
	}
	choice := n.Choices[i]

	for _, effect := range choice.AllEffects() {
		m.ExecuteEffect(effect)
	}
	m.AdvanceToNode(choice.Next)

	return m.CurrentNode(), true
}

// AdvanceToNode records the active node in the history and makes nodeId
// active. An empty nodeId ends the conversation, as does a node missing from
// the tree.
func (m *Machine) AdvanceToNode(nodeId string) {
	if !m.active {
		return
	}
	if nodeId == "" {
		m.EndConversation()
		return
	}
	if m.tree.Node(nodeId) == nil {
		slog.Warn("dialogue node not found, ending conversation", "npc", m.npcId, "node", nodeId)
		m.EndConversation()
		return
	}

	m.history = append(m.history, m.nodeId)
	m.nodeId = nodeId
	m.store.AdvanceDialogue(nodeId)
}

// EndConversation closes the active conversation and returns to play.
func (m *Machine) EndConversation() {
	if !m.active {
		return
	}
	npcId := m.npcId

	m.active = false
	m.npcId = ""
	m.tree = nil
	m.nodeId = ""
	m.history = nil

	m.store.EndDialogue()
	m.publish(events.ConversationEnded, map[string]any{"npc": npcId})
}

func (m *Machine) Active() bool {
	return m.active
}

// ConversationState reports whether a conversation is open, who is speaking
// and the available answers.
func (m *Machine) ConversationState() ConversationState {
	n := m.node()
	if n == nil {
		return ConversationState{Choices: []Choice{}}
	}
	return ConversationState{
		Active:  true,
		NPC:     m.npcId,
		Speaker: n.Speaker,
		Choices: m.choices(n),
	}
}

// History returns the ids of the nodes left so far, oldest first.
func (m *Machine) History() []string {
	return slices.Clone(m.history)
}
