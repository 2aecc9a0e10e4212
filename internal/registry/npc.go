package registry

import (
	"log/slog"

	"github.com/pixil98/mailsphere/internal/game"
	"github.com/pixil98/mailsphere/internal/sphere"
	"github.com/pixil98/mailsphere/internal/storage"
)

// NPCStore is the part of the game store the NPC registry writes to.
type NPCStore interface {
	SetNearbyNPC(id string)
}

type NPCRegistry struct {
	registry[*NPC]
	store NPCStore
}

// NewNPCRegistry places one NPC per definition, in id order.
func NewNPCRegistry(w *sphere.World, defs storage.Storer[*game.NPCSpec], store NPCStore, opts ...Opt) *NPCRegistry {
	o := buildOptions(opts)

	ids := truncate(defs.Ids(), o.maxEntities)
	npcs := make([]*NPC, 0, len(ids))
	for _, id := range ids {
		npcs = append(npcs, newNPC(w, id, defs.Get(id)))
	}
	slog.Debug("placed npcs", "count", len(npcs))

	return &NPCRegistry{
		registry: newRegistry(w, npcs),
		store:    store,
	}
}

// CheckPlayerProximity writes the nearest NPC in range into the store, or
// clears it when nobody is close enough.
func (r *NPCRegistry) CheckPlayerProximity() {
	if !r.enabled || !r.hasPlayer {
		return
	}

	id := ""
	if npc, ok := r.nearest(r.player, nil); ok {
		id = npc.Id()
	}
	r.store.SetNearbyNPC(id)
}

// NPCs returns the placed NPCs in id order.
func (r *NPCRegistry) NPCs() []*NPC {
	out := make([]*NPC, len(r.entities))
	copy(out, r.entities)
	return out
}

func (r *NPCRegistry) GetNPCByID(id string) (*NPC, bool) {
	return r.lookup(id)
}

// Dispose releases every NPC. The registry is empty afterwards.
func (r *NPCRegistry) Dispose() {
	r.dispose()
}
