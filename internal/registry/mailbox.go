package registry

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/pixil98/mailsphere/internal/events"
	"github.com/pixil98/mailsphere/internal/game"
	"github.com/pixil98/mailsphere/internal/sphere"
	"github.com/pixil98/mailsphere/internal/storage"
)

const (
	DefaultRespawnMin = 10 * time.Second
	DefaultRespawnMax = 30 * time.Second
)

// MailStore is the part of the game store the mailbox registry uses.
type MailStore interface {
	NearbyMailbox() string
	SetNearbyMailbox(id string)
	InventoryFull() bool
	AddMail(item game.MailItem) bool
}

// Timers schedules keyed callbacks. Scheduling a key that is already
// pending replaces it.
type Timers interface {
	Schedule(key string, delay time.Duration, fn func())
	Cancel(key string) bool
	Pending(key string) bool
}

type MailboxRegistry struct {
	registry[*Mailbox]
	store  MailStore
	timers Timers
	pub    game.Publisher
	rng    *rand.Rand

	respawnMin time.Duration
	respawnMax time.Duration
}

// NewMailboxRegistry places one mailbox per definition, in id order.
func NewMailboxRegistry(w *sphere.World, defs storage.Storer[*game.MailboxSpec], store MailStore, timers Timers, pub game.Publisher, opts ...Opt) *MailboxRegistry {
	o := buildOptions(opts)

	ids := truncate(defs.Ids(), o.maxEntities)
	boxes := make([]*Mailbox, 0, len(ids))
	for _, id := range ids {
		boxes = append(boxes, newMailbox(w, id, defs.Get(id)))
	}
	slog.Debug("placed mailboxes", "count", len(boxes))

	return &MailboxRegistry{
		registry:   newRegistry(w, boxes),
		store:      store,
		timers:     timers,
		pub:        pub,
		rng:        rand.New(rand.NewPCG(o.seed, o.seed^0x9e3779b97f4a7c15)),
		respawnMin: o.respawnMin,
		respawnMax: o.respawnMax,
	}
}

func respawnKey(id string) string {
	return "respawn:" + id
}

// CheckPlayerProximity writes the nearest mailbox in range into the store,
// or clears it when none is close enough.
func (r *MailboxRegistry) CheckPlayerProximity() {
	if !r.enabled || !r.hasPlayer {
		return
	}

	id := ""
	if mb, ok := r.nearest(r.player, nil); ok {
		id = mb.Id()
	}
	r.store.SetNearbyMailbox(id)
}

// Mailboxes returns the placed mailboxes in id order.
func (r *MailboxRegistry) Mailboxes() []*Mailbox {
	out := make([]*Mailbox, len(r.entities))
	copy(out, r.entities)
	return out
}

func (r *MailboxRegistry) MailboxesWithMail() []*Mailbox {
	var out []*Mailbox
	for _, mb := range r.entities {
		if mb.hasMail {
			out = append(out, mb)
		}
	}
	return out
}

func (r *MailboxRegistry) AvailableMailCount() int {
	n := 0
	for _, mb := range r.entities {
		if mb.hasMail {
			n++
		}
	}
	return n
}

// NearestMailboxWithMail returns the closest mailbox holding mail, regardless
// of interaction radius, or nil if every mailbox is empty.
func (r *MailboxRegistry) NearestMailboxWithMail(p mgl64.Vec3) *Mailbox {
	var best *Mailbox
	bestDist := 0.0
	for _, mb := range r.entities {
		if !mb.hasMail {
			continue
		}
		d := sphere.Distance(p, mb.position)
		if best == nil || d < bestDist {
			best, bestDist = mb, d
		}
	}
	return best
}

// CollectMailFromNearby empties the mailbox the player is standing at and
// puts the letter in the player's inventory. It returns nil and leaves the
// mailbox untouched when there is no nearby mailbox, it is empty, or the
// inventory is full.
func (r *MailboxRegistry) CollectMailFromNearby() *game.MailItem {
	mb := r.GetMailboxByID(r.store.NearbyMailbox())
	if mb == nil || !mb.hasMail {
		return nil
	}
	if r.store.InventoryFull() {
		slog.Debug("not collecting mail, inventory full", "mailbox", mb.id)
		return nil
	}

	item := r.mint(mb)
	if !r.store.AddMail(item) {
		return nil
	}

	mb.hasMail = false
	r.ScheduleRespawn(mb)

	if r.pub != nil {
		r.pub.Publish(events.Event{
			Name: events.MailCollected,
			Data: map[string]any{
				"mailbox":  mb.id,
				"mail":     item.Id,
				"to":       item.To,
				"priority": string(item.Priority),
			},
		})
	}
	return &item
}

func (r *MailboxRegistry) mint(mb *Mailbox) game.MailItem {
	item := game.MailItem{
		Id:       "mail-" + uuid.NewString(),
		From:     mb.Spec.LocationName,
		Priority: game.PriorityNormal,
	}
	if n := len(mb.Spec.Recipients); n > 0 {
		item.To = mb.Spec.Recipients[r.rng.IntN(n)].Id()
	}
	if n := len(mb.Spec.Priorities); n > 0 {
		item.Priority = mb.Spec.Priorities[r.rng.IntN(n)]
	}
	return item
}

// ScheduleRespawn refills mb after a random delay. A refill already pending
// for mb is replaced.
func (r *MailboxRegistry) ScheduleRespawn(mb *Mailbox) {
	if mb == nil {
		return
	}
	delay := r.respawnDelay()
	r.timers.Schedule(respawnKey(mb.id), delay, func() {
		mb.hasMail = true
		slog.Debug("mailbox refilled", "mailbox", mb.id)
	})
}

func (r *MailboxRegistry) respawnDelay() time.Duration {
	span := r.respawnMax - r.respawnMin
	if span <= 0 {
		return r.respawnMin
	}
	return r.respawnMin + time.Duration(r.rng.Int64N(int64(span)+1))
}

// ForceRespawn refills the mailbox immediately, dropping any pending timer.
// It returns false if the mailbox is unknown or already full.
func (r *MailboxRegistry) ForceRespawn(id string) bool {
	mb := r.GetMailboxByID(id)
	if mb == nil || mb.hasMail {
		return false
	}
	r.timers.Cancel(respawnKey(id))
	mb.hasMail = true
	return true
}

// PendingRespawns returns the ids of mailboxes waiting to refill.
func (r *MailboxRegistry) PendingRespawns() []string {
	var ids []string
	for _, mb := range r.entities {
		if r.timers.Pending(respawnKey(mb.id)) {
			ids = append(ids, mb.id)
		}
	}
	return ids
}

func (r *MailboxRegistry) GetMailboxByID(id string) *Mailbox {
	if id == "" {
		return nil
	}
	mb, ok := r.lookup(id)
	if !ok {
		return nil
	}
	return mb
}

// Dispose cancels every pending refill and releases all mailboxes.
func (r *MailboxRegistry) Dispose() {
	for _, mb := range r.entities {
		r.timers.Cancel(respawnKey(mb.id))
	}
	r.dispose()
}
