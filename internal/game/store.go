package game

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/pixil98/mailsphere/internal/events"
)

const DefaultMaxMail = 5

// Timers schedules and cancels keyed callbacks against game time.
type Timers interface {
	Now() time.Duration
	Schedule(key string, delay time.Duration, fn func())
	Cancel(key string) bool
}

// Publisher receives every event the store raises.
type Publisher interface {
	Publish(events.Event)
}

type Inventory struct {
	Mail       []MailItem `json:"mail"`
	MaxMail    int        `json:"max_mail"`
	Coins      int        `json:"coins"`
	Reputation int        `json:"reputation"`
}

// DialogueState mirrors the active conversation.
type DialogueState struct {
	Active  bool     `json:"active"`
	NPCId   string   `json:"npc_id,omitempty"`
	NodeId  string   `json:"node_id,omitempty"`
	History []string `json:"history,omitempty"`
}

type Stats struct {
	MailDelivered    int           `json:"mail_delivered"`
	QuestsCompleted  int           `json:"quests_completed"`
	NPCsTalkedTo     []string      `json:"npcs_talked_to"`
	CoinsEarned      int           `json:"coins_earned"`
	DistanceTraveled float64       `json:"distance_traveled"`
	PlayTime         time.Duration `json:"play_time"`
}

// State is everything the store knows. Values returned by Store.Snapshot
// share no memory with the store.
type State struct {
	Phase           Phase         `json:"phase"`
	Appearance      Appearance    `json:"appearance"`
	Inventory       Inventory     `json:"inventory"`
	AvailableQuests []Quest       `json:"available_quests"`
	ActiveQuests    []Quest       `json:"active_quests"`
	CompletedQuests []string      `json:"completed_quests"`
	Dialogue        DialogueState `json:"dialogue"`
	NearbyNPC       string        `json:"nearby_npc,omitempty"`
	NearbyMailbox   string        `json:"nearby_mailbox,omitempty"`
	UI              UIState       `json:"ui"`
	Notification    *Notification `json:"notification,omitempty"`
	Stats           Stats         `json:"stats"`
}

func (st State) clone() State {
	st.Inventory.Mail = slices.Clone(st.Inventory.Mail)
	st.AvailableQuests = cloneQuests(st.AvailableQuests)
	st.ActiveQuests = cloneQuests(st.ActiveQuests)
	st.CompletedQuests = slices.Clone(st.CompletedQuests)
	st.Dialogue.History = slices.Clone(st.Dialogue.History)
	st.Stats.NPCsTalkedTo = slices.Clone(st.Stats.NPCsTalkedTo)
	if st.Notification != nil {
		n := *st.Notification
		st.Notification = &n
	}
	return st
}

func cloneQuests(qs []Quest) []Quest {
	if qs == nil {
		return nil
	}
	out := make([]Quest, len(qs))
	for i, q := range qs {
		out[i] = q.clone()
	}
	return out
}

// Store is the single source of truth for game state. Every change goes
// through one of its actions. It is not safe for concurrent use; the owner
// serializes access.
type Store struct {
	state  State
	timers Timers
	pub    Publisher

	deliveryRewards    map[Priority]int
	deliveryReputation int
	toggleDebounce     time.Duration
	lastToggle         map[Panel]time.Duration
}

type StoreOpt func(*Store)

// WithMaxMail sets how many letters the player can carry.
func WithMaxMail(n int) StoreOpt {
	return func(s *Store) {
		if n > 0 {
			s.state.Inventory.MaxMail = n
		}
	}
}

// WithDeliveryRewards overrides the coins paid per priority. Priorities not
// in rewards keep their default.
func WithDeliveryRewards(rewards map[Priority]int) StoreOpt {
	return func(s *Store) {
		maps.Copy(s.deliveryRewards, rewards)
	}
}

// WithDeliveryReputation sets the reputation gained per delivery.
func WithDeliveryReputation(n int) StoreOpt {
	return func(s *Store) {
		s.deliveryReputation = n
	}
}

// WithToggleDebounce sets the minimum interval between toggles of one panel.
func WithToggleDebounce(d time.Duration) StoreOpt {
	return func(s *Store) {
		s.toggleDebounce = d
	}
}

// WithStartingCoins sets the player's opening balance.
func WithStartingCoins(n int) StoreOpt {
	return func(s *Store) {
		if n > 0 {
			s.state.Inventory.Coins = n
		}
	}
}

func NewStore(timers Timers, pub Publisher, opts ...StoreOpt) *Store {
	s := &Store{
		state: State{
			Phase:      PhaseLoading,
			Appearance: DefaultAppearance,
			Inventory: Inventory{
				MaxMail: DefaultMaxMail,
			},
		},
		timers:             timers,
		pub:                pub,
		deliveryRewards:    maps.Clone(DefaultDeliveryRewards),
		deliveryReputation: DefaultDeliveryReputation,
		toggleDebounce:     DefaultToggleDebounce,
		lastToggle:         make(map[Panel]time.Duration),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	return s.state.clone()
}

func (s *Store) publish(name string, data map[string]any) {
	if s.pub == nil {
		return
	}
	s.pub.Publish(events.Event{Name: name, Data: data})
}

/* Phase */

func (s *Store) Phase() Phase {
	return s.state.Phase
}

// SetGameState sets the phase without consulting the transition table.
func (s *Store) SetGameState(p Phase) {
	if s.state.Phase == p {
		return
	}
	from := s.state.Phase
	s.state.Phase = p
	s.publish(events.PhaseChanged, map[string]any{"from": from.String(), "to": p.String()})
}

// transition moves to p if the table allows it and ignores it otherwise.
func (s *Store) transition(p Phase) bool {
	if !CanTransition(s.state.Phase, p) {
		slog.Debug("ignoring illegal phase transition", "from", s.state.Phase, "to", p)
		return false
	}
	s.SetGameState(p)
	return true
}

func (s *Store) NewGame() bool {
	return s.transition(PhaseCustomization)
}

func (s *Store) StartGame() bool {
	if s.state.Phase != PhaseCustomization {
		return false
	}
	return s.transition(PhasePlaying)
}

func (s *Store) Pause() bool {
	return s.transition(PhasePaused)
}

func (s *Store) Resume() bool {
	if s.state.Phase != PhasePaused {
		return false
	}
	return s.transition(PhasePlaying)
}

/* Inventory */

func (s *Store) MailCount() int {
	return len(s.state.Inventory.Mail)
}

func (s *Store) InventoryFull() bool {
	return len(s.state.Inventory.Mail) >= s.state.Inventory.MaxMail
}

func (s *Store) HasMail(id string) bool {
	return s.mailIndex(id) >= 0
}

// MailFor returns the earliest held letter addressed to npcId.
func (s *Store) MailFor(npcId string) (MailItem, bool) {
	for _, m := range s.state.Inventory.Mail {
		if m.To == npcId {
			return m, true
		}
	}
	return MailItem{}, false
}

func (s *Store) mailIndex(id string) int {
	return slices.IndexFunc(s.state.Inventory.Mail, func(m MailItem) bool {
		return m.Id == id
	})
}

// AddMail appends item to the inventory. It is rejected when the inventory
// is full or already holds the same id.
func (s *Store) AddMail(item MailItem) bool {
	if s.InventoryFull() {
		slog.Debug("rejecting mail, inventory full", "mail", item.Id)
		return false
	}
	if s.HasMail(item.Id) {
		slog.Debug("rejecting mail, already held", "mail", item.Id)
		return false
	}
	s.state.Inventory.Mail = append(s.state.Inventory.Mail, item)
	return true
}

// RemoveMail drops the letter with the given id without rewarding anything.
func (s *Store) RemoveMail(id string) bool {
	i := s.mailIndex(id)
	if i < 0 {
		return false
	}
	s.state.Inventory.Mail = slices.Delete(s.state.Inventory.Mail, i, i+1)
	return true
}

func (s *Store) ClearInventory() {
	s.state.Inventory.Mail = nil
}

// DeliverMail hands the letter with the given id to recipientId. It fails if
// the letter is not held or is addressed to someone else. On success the
// letter is removed, coins and reputation are paid, and any quest objective
// waiting on this delivery is completed.
func (s *Store) DeliverMail(id, recipientId string) bool {
	i := s.mailIndex(id)
	if i < 0 {
		return false
	}
	item := s.state.Inventory.Mail[i]
	if item.To != recipientId {
		slog.Debug("rejecting delivery, wrong recipient", "mail", id, "to", item.To, "recipient", recipientId)
		return false
	}

	s.state.Inventory.Mail = slices.Delete(s.state.Inventory.Mail, i, i+1)

	reward := s.DeliveryReward(item.Priority)
	s.state.Inventory.Coins += reward
	s.state.Inventory.Reputation += s.deliveryReputation
	s.state.Stats.MailDelivered++
	s.state.Stats.CoinsEarned += reward

	s.publish(events.MailDelivered, map[string]any{
		"mail":     item.Id,
		"to":       item.To,
		"priority": string(item.Priority),
		"coins":    reward,
	})

	s.progressDeliveryObjectives(item)
	return true
}

// DeliveryReward returns the coins paid for delivering mail of priority p.
func (s *Store) DeliveryReward(p Priority) int {
	if r, ok := s.deliveryRewards[p]; ok {
		return r
	}
	return s.deliveryRewards[PriorityNormal]
}

func (s *Store) progressDeliveryObjectives(item MailItem) {
	ids := make([]string, len(s.state.ActiveQuests))
	for i, q := range s.state.ActiveQuests {
		ids[i] = q.Id
	}

	for _, qid := range ids {
		q := s.activeQuest(qid)
		if q == nil {
			continue
		}
		idx := slices.IndexFunc(q.Objectives, func(o Objective) bool {
			return o.matchesDelivery(item)
		})
		if idx >= 0 {
			s.UpdateQuestObjective(qid, idx, true)
		}
	}
}

/* Wallet */

func (s *Store) Coins() int {
	return s.state.Inventory.Coins
}

func (s *Store) AddCoins(n int) {
	if n <= 0 {
		return
	}
	s.state.Inventory.Coins += n
	s.state.Stats.CoinsEarned += n
}

// SpendCoins removes n coins. It fails without change if n exceeds the balance.
func (s *Store) SpendCoins(n int) bool {
	if n < 0 || n > s.state.Inventory.Coins {
		return false
	}
	s.state.Inventory.Coins -= n
	return true
}

func (s *Store) AddReputation(n int) {
	if n <= 0 {
		return
	}
	s.state.Inventory.Reputation += n
}

/* Quests */

// SetAvailableQuests replaces the list of quests on offer.
func (s *Store) SetAvailableQuests(quests []Quest) {
	s.state.AvailableQuests = cloneQuests(quests)
}

func (s *Store) IsQuestActive(id string) bool {
	return s.activeQuest(id) != nil
}

func (s *Store) IsQuestCompleted(id string) bool {
	return slices.Contains(s.state.CompletedQuests, id)
}

func (s *Store) activeQuest(id string) *Quest {
	for i := range s.state.ActiveQuests {
		if s.state.ActiveQuests[i].Id == id {
			return &s.state.ActiveQuests[i]
		}
	}
	return nil
}

// AcceptQuest makes q active. Accepting a quest that is already active or
// already completed does nothing.
func (s *Store) AcceptQuest(q Quest) bool {
	if s.IsQuestActive(q.Id) || s.IsQuestCompleted(q.Id) {
		slog.Debug("ignoring duplicate quest", "quest", q.Id)
		return false
	}

	s.state.AvailableQuests = slices.DeleteFunc(s.state.AvailableQuests, func(a Quest) bool {
		return a.Id == q.Id
	})
	s.state.ActiveQuests = append(s.state.ActiveQuests, q.clone())
	return true
}

// UpdateQuestObjective sets one objective's completion. Completing the last
// open objective completes the quest.
func (s *Store) UpdateQuestObjective(questId string, index int, complete bool) bool {
	q := s.activeQuest(questId)
	if q == nil || index < 0 || index >= len(q.Objectives) {
		return false
	}

	q.Objectives[index].Complete = complete
	if complete && q.Done() {
		s.CompleteQuest(questId)
	}
	return true
}

// CompleteQuest moves an active quest to the completed list and pays its
// rewards. A quest is only ever completed once.
func (s *Store) CompleteQuest(questId string) bool {
	if s.IsQuestCompleted(questId) {
		return false
	}
	q := s.activeQuest(questId)
	if q == nil {
		return false
	}
	done := *q

	s.state.ActiveQuests = slices.DeleteFunc(s.state.ActiveQuests, func(a Quest) bool {
		return a.Id == questId
	})
	s.state.CompletedQuests = append(s.state.CompletedQuests, questId)

	s.state.Inventory.Coins += done.Rewards.Coins
	s.state.Inventory.Reputation += done.Rewards.Reputation
	s.state.Stats.CoinsEarned += done.Rewards.Coins
	s.state.Stats.QuestsCompleted++

	s.publish(events.QuestCompleted, map[string]any{
		"quest":      questId,
		"coins":      done.Rewards.Coins,
		"reputation": done.Rewards.Reputation,
	})
	s.ShowNotification(NotificationSuccess, fmt.Sprintf("Quest complete: %s", done.Title), 0)
	return true
}

/* Dialogue */

// StartDialogue records the conversation and enters the dialogue phase. A
// conversation already in progress is replaced. Outside of play it does
// nothing.
func (s *Store) StartDialogue(npcId, nodeId string) bool {
	if s.state.Phase != PhaseDialogue && !s.transition(PhaseDialogue) {
		return false
	}
	s.state.Dialogue = DialogueState{
		Active: true,
		NPCId:  npcId,
		NodeId: nodeId,
	}
	return true
}

// AdvanceDialogue moves the conversation to nodeId, remembering the node left.
func (s *Store) AdvanceDialogue(nodeId string) {
	if !s.state.Dialogue.Active {
		return
	}
	s.state.Dialogue.History = append(s.state.Dialogue.History, s.state.Dialogue.NodeId)
	s.state.Dialogue.NodeId = nodeId
}

// EndDialogue clears the conversation and returns to play.
func (s *Store) EndDialogue() {
	s.state.Dialogue = DialogueState{}
	s.transition(PhasePlaying)
}

func (s *Store) Dialogue() DialogueState {
	d := s.state.Dialogue
	d.History = slices.Clone(d.History)
	return d
}

// RecordNPCTalk notes that the player has spoken with npcId.
func (s *Store) RecordNPCTalk(npcId string) {
	if slices.Contains(s.state.Stats.NPCsTalkedTo, npcId) {
		return
	}
	s.state.Stats.NPCsTalkedTo = append(s.state.Stats.NPCsTalkedTo, npcId)
}

/* Appearance */

// SetPlayerAppearance copies every non-empty field of patch onto the
// current appearance.
func (s *Store) SetPlayerAppearance(patch Appearance) {
	s.state.Appearance = s.state.Appearance.merge(patch)
}

func (s *Store) ResetAppearance() {
	s.state.Appearance = DefaultAppearance
}

/* Statistics */

// AddDistance adds to the distance travelled. Negative values are ignored.
func (s *Store) AddDistance(d float64) {
	if d > 0 {
		s.state.Stats.DistanceTraveled += d
	}
}

// AddPlayTime adds to the time played. Negative values are ignored.
func (s *Store) AddPlayTime(d time.Duration) {
	if d > 0 {
		s.state.Stats.PlayTime += d
	}
}

/* Proximity */

func (s *Store) NearbyNPC() string {
	return s.state.NearbyNPC
}

func (s *Store) NearbyMailbox() string {
	return s.state.NearbyMailbox
}

// SetNearbyNPC is written by the NPC registry's proximity check. An empty id
// means nobody is in range.
func (s *Store) SetNearbyNPC(id string) {
	s.state.NearbyNPC = id
}

// SetNearbyMailbox is written by the mailbox registry's proximity check.
func (s *Store) SetNearbyMailbox(id string) {
	s.state.NearbyMailbox = id
}
