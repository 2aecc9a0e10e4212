// Package sim ties the world, its entities, conversations and the game store
// into one frame-stepped simulation that input handlers drive.
package sim

import (
	"cmp"
	"context"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/mailsphere/internal/dialogue"
	"github.com/pixil98/mailsphere/internal/events"
	"github.com/pixil98/mailsphere/internal/game"
	"github.com/pixil98/mailsphere/internal/registry"
	"github.com/pixil98/mailsphere/internal/schedule"
	"github.com/pixil98/mailsphere/internal/sphere"
)

// Simulation owns one game. The store, registries and dialogue machine are
// not safe for concurrent use, so every exported method holds mu.
type Simulation struct {
	mu sync.Mutex

	cfg       Config
	dict      *game.Dictionary
	world     *sphere.World
	sched     *schedule.Scheduler
	bus       *events.Bus
	store     *game.Store
	npcs      *registry.NPCRegistry
	mailboxes *registry.MailboxRegistry
	dialogue  *dialogue.Machine

	position mgl64.Vec3
	heading  float64
}

// New builds a simulation in the loading phase from resolved definitions.
func New(dict *game.Dictionary, cfg Config) *Simulation {
	cfg = cfg.withDefaults()

	world := sphere.NewWorld(cfg.Radius)
	sched := schedule.NewScheduler()
	bus := events.NewBus()

	storeOpts := []game.StoreOpt{game.WithMaxMail(cfg.MaxMail)}
	if len(cfg.Rewards) > 0 {
		storeOpts = append(storeOpts, game.WithDeliveryRewards(cfg.Rewards))
	}
	store := game.NewStore(sched, bus, storeOpts...)

	return &Simulation{
		cfg:   cfg,
		dict:  dict,
		world: world,
		sched: sched,
		bus:   bus,
		store: store,
		npcs:  registry.NewNPCRegistry(world, dict.NPCs, store, registry.WithMaxEntities(cfg.MaxNPCs)),
		mailboxes: registry.NewMailboxRegistry(world, dict.Mailboxes, store, sched, bus,
			registry.WithMaxEntities(cfg.MaxMailboxes),
			registry.WithRespawnDelay(cfg.RespawnMin, cfg.RespawnMax),
			registry.WithSeed(cfg.Seed),
		),
		dialogue: dialogue.NewMachine(store, bus, dict),
		position: world.LatLonToPosition(cfg.StartLat, cfg.StartLon),
	}
}

// Subscribe registers handler for every event the simulation raises. Handlers
// run while the simulation is locked and must not call back into it.
func (s *Simulation) Subscribe(handler events.Handler) events.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bus.SubscribeAll(handler)
}

func (s *Simulation) Unsubscribe(sub events.Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bus.Unsubscribe(sub)
}

// Tick advances the simulation by one frame.
func (s *Simulation) Tick(ctx context.Context) error {
	s.Step(s.cfg.FrameLength)
	return nil
}

// FrameLength is the simulated time one Tick covers.
func (s *Simulation) FrameLength() time.Duration {
	return s.cfg.FrameLength
}

// Step advances simulated time by dt: due timers fire, play time accrues,
// entities animate and proximity is refreshed.
func (s *Simulation) Step(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sched.Advance(dt)
	if s.store.Phase() == game.PhasePlaying {
		s.store.AddPlayTime(dt)
	}
	s.npcs.Update(dt)
	s.mailboxes.Update(dt)
	s.refreshProximity()
}

// refreshProximity hands the player position to both registries and lets
// them update the store. Nothing is near the player outside of play, so it
// runs again after every phase change.
func (s *Simulation) refreshProximity() {
	s.npcs.SetPlayerPosition(s.position)
	s.mailboxes.SetPlayerPosition(s.position)

	if s.store.Phase() != game.PhasePlaying {
		s.store.SetNearbyNPC("")
		s.store.SetNearbyMailbox("")
		return
	}
	s.npcs.CheckPlayerProximity()
	s.mailboxes.CheckPlayerProximity()
}

/* Phase */

// NewGame leaves the loading screen for character customization and offers
// every defined quest.
func (s *Simulation) NewGame() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.store.NewGame() {
		return false
	}

	var quests []game.Quest
	for _, id := range s.dict.Quests.Ids() {
		if q, ok := s.dict.Quest(id); ok {
			quests = append(quests, q)
		}
	}
	s.store.SetAvailableQuests(quests)
	return true
}

func (s *Simulation) Customize(a game.Appearance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.SetPlayerAppearance(a)
}

// StartGame places the player at the start position and begins play.
func (s *Simulation) StartGame() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.store.StartGame() {
		return false
	}
	s.position = s.world.LatLonToPosition(s.cfg.StartLat, s.cfg.StartLon)
	s.heading = 0
	s.refreshProximity()
	slog.Info("game started", "zone", s.world.ZoneAt(s.position))
	return true
}

func (s *Simulation) Pause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.refreshProximity()
	return s.store.Pause()
}

func (s *Simulation) Resume() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.refreshProximity()
	return s.store.Resume()
}

func (s *Simulation) Phase() game.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Phase()
}

/* Movement */

// Turn rotates the player's heading by deg degrees. Positive turns left.
// Non-finite angles are refused.
func (s *Simulation) Turn(deg float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !finite(deg) || s.store.Phase() != game.PhasePlaying {
		return false
	}
	s.heading = math.Mod(s.heading+mgl64.DegToRad(deg), 2*math.Pi)
	return true
}

// Walk moves the player distance units along their heading. Negative
// distances walk backwards. Zero and non-finite distances are refused.
func (s *Simulation) Walk(distance float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !finite(distance) || distance == 0 || s.store.Phase() != game.PhasePlaying {
		return false
	}

	remaining := math.Abs(distance)
	sign := math.Copysign(1, distance)
	for remaining > 0 {
		stride := math.Min(remaining, maxStride)
		axes := s.world.LocalAxes(s.position, s.heading)
		next := s.world.MoveOnSurface(s.position, axes.Forward.Mul(sign), stride)
		s.store.AddDistance(sphere.Distance(s.position, next))
		s.position = next
		remaining -= stride
	}

	s.refreshProximity()
	return true
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Location is where the player stands and what is within reach.
type Location struct {
	sphere.LatLon
	Zone          sphere.Zone
	Heading       float64
	NearbyNPC     string
	NearbyMailbox string
}

func (s *Simulation) Where() Location {
	s.mu.Lock()
	defer s.mu.Unlock()

	heading := mgl64.RadToDeg(s.heading)
	if heading < 0 {
		heading += 360
	}
	return Location{
		LatLon:        s.world.PositionToLatLon(s.position),
		Zone:          s.world.ZoneAt(s.position),
		Heading:       heading,
		NearbyNPC:     s.store.NearbyNPC(),
		NearbyMailbox: s.store.NearbyMailbox(),
	}
}

/* Interaction */

type Action string

const (
	ActionNone    Action = "none"
	ActionCollect Action = "collect"
	ActionDeliver Action = "deliver"
	ActionTalk    Action = "talk"
)

// Interaction reports what Interact did.
type Interaction struct {
	Action Action
	Mail   *game.MailItem
	Node   *dialogue.NodeView
}

// Interact does the most useful thing within reach: collect waiting mail,
// hand a letter to the nearby NPC, or start talking to them.
func (s *Simulation) Interact() Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.Phase() != game.PhasePlaying {
		return Interaction{Action: ActionNone}
	}

	if item := s.mailboxes.CollectMailFromNearby(); item != nil {
		return Interaction{Action: ActionCollect, Mail: item}
	}

	npcId := s.store.NearbyNPC()
	if npcId == "" {
		return Interaction{Action: ActionNone}
	}
	if item, ok := s.deliverTo(npcId); ok {
		return Interaction{Action: ActionDeliver, Mail: &item}
	}
	if node := s.dialogue.StartConversation(npcId); node != nil {
		s.refreshProximity()
		return Interaction{Action: ActionTalk, Node: node}
	}
	return Interaction{Action: ActionNone}
}

// CollectMail takes the letter from the mailbox in reach, if any.
func (s *Simulation) CollectMail() *game.MailItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.Phase() != game.PhasePlaying {
		return nil
	}
	return s.mailboxes.CollectMailFromNearby()
}

// DeliverMailToNPC hands npcId the first held letter addressed to them.
func (s *Simulation) DeliverMailToNPC(npcId string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.deliverTo(npcId)
	return ok
}

func (s *Simulation) deliverTo(npcId string) (game.MailItem, bool) {
	item, ok := s.store.MailFor(npcId)
	if !ok {
		return game.MailItem{}, false
	}
	if !s.store.DeliverMail(item.Id, npcId) {
		return game.MailItem{}, false
	}
	return item, true
}

/* Dialogue */

// Talk starts a conversation with the NPC in reach.
func (s *Simulation) Talk() *dialogue.NodeView {
	s.mu.Lock()
	defer s.mu.Unlock()

	npcId := s.store.NearbyNPC()
	if npcId == "" {
		return nil
	}
	defer s.refreshProximity()
	return s.dialogue.StartConversation(npcId)
}

// Choose picks answer i of the current conversation node.
func (s *Simulation) Choose(i int) (*dialogue.NodeView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.refreshProximity()
	return s.dialogue.SelectChoice(i)
}

func (s *Simulation) CurrentNode() *dialogue.NodeView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dialogue.CurrentNode()
}

func (s *Simulation) EndConversation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialogue.EndConversation()
	s.refreshProximity()
}

/* UI */

func (s *Simulation) TogglePanel(p game.Panel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.TogglePanel(p)
}

/* Queries */

// Snapshot returns a copy of the game state.
func (s *Simulation) Snapshot() game.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// NPCName returns the display name of an NPC, or the id itself when no such
// NPC is placed.
func (s *Simulation) NPCName(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.npcs.GetNPCByID(id); ok {
		return n.Name()
	}
	return id
}

// Sighting is an entity as seen from the player's position.
type Sighting struct {
	Id       string
	Name     string
	Kind     string
	Zone     sphere.Zone
	Distance float64
	HasMail  bool
	InReach  bool
}

// Surroundings lists every NPC and mailbox within radius of the player,
// nearest first.
func (s *Simulation) Surroundings(radius float64) []Sighting {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Sighting
	for _, n := range s.npcs.NPCs() {
		d := sphere.Distance(s.position, n.Position())
		if d > radius {
			continue
		}
		out = append(out, Sighting{
			Id:       n.Id(),
			Name:     n.Name(),
			Kind:     "npc",
			Zone:     n.Zone(),
			Distance: d,
			InReach:  d <= n.InteractionRadius(),
		})
	}
	for _, mb := range s.mailboxes.Mailboxes() {
		d := sphere.Distance(s.position, mb.Position())
		if d > radius {
			continue
		}
		out = append(out, Sighting{
			Id:       mb.Id(),
			Name:     mb.LocationName(),
			Kind:     "mailbox",
			Zone:     mb.Zone(),
			Distance: d,
			HasMail:  mb.HasMail(),
			InReach:  d <= mb.InteractionRadius(),
		})
	}

	slices.SortFunc(out, func(a, b Sighting) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return out
}

// Dispose cancels every timer and releases all entities.
func (s *Simulation) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dialogue.EndConversation()
	s.npcs.Dispose()
	s.mailboxes.Dispose()
	s.sched.CancelAll()
}
