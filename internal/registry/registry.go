package registry

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/mailsphere/internal/sphere"
)

// registry holds the entities of one kind and the player position they are
// measured against.
type registry[T Entity] struct {
	world    *sphere.World
	enabled  bool
	entities []T

	player    mgl64.Vec3
	hasPlayer bool
	light     mgl64.Vec3
}

func newRegistry[T Entity](w *sphere.World, entities []T) registry[T] {
	return registry[T]{
		world:    w,
		enabled:  true,
		entities: entities,
		light:    sphere.WorldUp,
	}
}

// SetEnabled turns the registry on or off. A disabled registry hides every
// entity and skips all update and proximity work.
func (r *registry[T]) SetEnabled(enabled bool) {
	r.enabled = enabled
	for _, e := range r.entities {
		e.SetVisible(enabled)
	}
}

func (r *registry[T]) Enabled() bool {
	return r.enabled
}

func (r *registry[T]) SetPlayerPosition(p mgl64.Vec3) {
	r.player = p
	r.hasPlayer = true
}

// PlayerPosition returns the last position set and whether one has been set.
func (r *registry[T]) PlayerPosition() (mgl64.Vec3, bool) {
	return r.player, r.hasPlayer
}

// SetLightDirection records the direction light arrives from. Zero vectors
// are ignored.
func (r *registry[T]) SetLightDirection(dir mgl64.Vec3) {
	if dir.Len() == 0 {
		return
	}
	r.light = dir.Normalize()
}

func (r *registry[T]) LightDirection() mgl64.Vec3 {
	return r.light
}

// Len returns how many entities the registry holds.
func (r *registry[T]) Len() int {
	return len(r.entities)
}

// Update advances every entity's animation state.
func (r *registry[T]) Update(dt time.Duration) {
	if !r.enabled {
		return
	}
	for _, e := range r.entities {
		e.Update(dt)
	}
}

// nearest returns the closest entity accepted by keep whose interaction
// radius contains p.
func (r *registry[T]) nearest(p mgl64.Vec3, keep func(T) bool) (T, bool) {
	var best T
	found := false
	bestDist := math.Inf(1)

	for _, e := range r.entities {
		if keep != nil && !keep(e) {
			continue
		}
		d := sphere.Distance(p, e.Position())
		if d <= e.InteractionRadius() && d < bestDist {
			best, bestDist, found = e, d, true
		}
	}
	return best, found
}

func (r *registry[T]) lookup(id string) (T, bool) {
	for _, e := range r.entities {
		if e.Id() == id {
			return e, true
		}
	}
	var zero T
	return zero, false
}

func (r *registry[T]) dispose() {
	for _, e := range r.entities {
		e.Dispose()
	}
	r.entities = nil
	r.hasPlayer = false
}

type options struct {
	maxEntities int
	respawnMin  time.Duration
	respawnMax  time.Duration
	seed        uint64
}

type Opt func(*options)

// WithMaxEntities caps how many definitions are placed. Zero places all of them.
func WithMaxEntities(n int) Opt {
	return func(o *options) {
		if n > 0 {
			o.maxEntities = n
		}
	}
}

// WithRespawnDelay sets the bounds of the random mailbox refill delay.
func WithRespawnDelay(lo, hi time.Duration) Opt {
	return func(o *options) {
		if lo < 0 || hi < lo {
			return
		}
		o.respawnMin = lo
		o.respawnMax = hi
	}
}

// WithSeed fixes the random source used for respawn delays and minted mail.
func WithSeed(seed uint64) Opt {
	return func(o *options) {
		o.seed = seed
	}
}

func buildOptions(opts []Opt) options {
	o := options{
		respawnMin: DefaultRespawnMin,
		respawnMax: DefaultRespawnMax,
		seed:       uint64(time.Now().UnixNano()),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func truncate(ids []string, limit int) []string {
	if limit > 0 && len(ids) > limit {
		return ids[:limit]
	}
	return ids
}
