package registry

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/mailsphere/internal/game"
	"github.com/pixil98/mailsphere/internal/sphere"
)

const (
	// DefaultInteractionRadius applies to definitions that leave the radius unset.
	DefaultInteractionRadius = 3.0

	idleSpeed = 1.5 // radians per second
	bobSpeed  = 4.0
)

// Entity is anything a registry places on the planet surface.
type Entity interface {
	Id() string
	Position() mgl64.Vec3
	InteractionRadius() float64
	SetVisible(bool)
	Update(dt time.Duration)
	Dispose()
}

// placement is the part every surface entity shares. Position is always
// derived from latitude and longitude.
type placement struct {
	id          string
	lat, lon    float64
	position    mgl64.Vec3
	orientation mgl64.Quat
	zone        sphere.Zone
	radius      float64
	visible     bool
}

func newPlacement(w *sphere.World, id string, lat, lon float64, r *float64) placement {
	radius := DefaultInteractionRadius
	if r != nil {
		radius = *r
	}
	pos := w.LatLonToPosition(lat, lon)
	return placement{
		id:          id,
		lat:         lat,
		lon:         sphere.WrapLongitude(lon),
		position:    pos,
		orientation: w.SurfaceOrientation(pos, 0),
		zone:        w.ZoneAt(pos),
		radius:      radius,
		visible:     true,
	}
}

func (p *placement) Id() string {
	return p.id
}

func (p *placement) LatLon() sphere.LatLon {
	return sphere.LatLon{Lat: p.lat, Lon: p.lon}
}

func (p *placement) Position() mgl64.Vec3 {
	return p.position
}

func (p *placement) Orientation() mgl64.Quat {
	return p.orientation
}

func (p *placement) Zone() sphere.Zone {
	return p.zone
}

func (p *placement) InteractionRadius() float64 {
	return p.radius
}

func (p *placement) Visible() bool {
	return p.visible
}

func (p *placement) SetVisible(v bool) {
	p.visible = v
}

// NPC is a character standing on the surface.
type NPC struct {
	placement
	Spec *game.NPCSpec

	idlePhase float64
}

func newNPC(w *sphere.World, id string, spec *game.NPCSpec) *NPC {
	return &NPC{
		placement: newPlacement(w, id, spec.Latitude, spec.Longitude, spec.InteractionRadius),
		Spec:      spec,
	}
}

func (n *NPC) Name() string {
	return n.Spec.Name
}

// IdlePhase is the position in the idle animation cycle, in radians.
func (n *NPC) IdlePhase() float64 {
	return n.idlePhase
}

func (n *NPC) Update(dt time.Duration) {
	n.idlePhase = math.Mod(n.idlePhase+dt.Seconds()*idleSpeed, 2*math.Pi)
}

func (n *NPC) Dispose() {
	n.visible = false
}

// Mailbox is a post box that periodically fills with new mail.
type Mailbox struct {
	placement
	Spec *game.MailboxSpec

	hasMail   bool
	flagPhase float64
}

func newMailbox(w *sphere.World, id string, spec *game.MailboxSpec) *Mailbox {
	return &Mailbox{
		placement: newPlacement(w, id, spec.Latitude, spec.Longitude, spec.InteractionRadius),
		Spec:      spec,
		hasMail:   spec.HasMail,
	}
}

func (m *Mailbox) LocationName() string {
	return m.Spec.LocationName
}

func (m *Mailbox) HasMail() bool {
	return m.hasMail
}

// FlagPhase drives the raised flag's bob while the mailbox holds mail.
func (m *Mailbox) FlagPhase() float64 {
	return m.flagPhase
}

func (m *Mailbox) Update(dt time.Duration) {
	if !m.hasMail {
		m.flagPhase = 0
		return
	}
	m.flagPhase = math.Mod(m.flagPhase+dt.Seconds()*bobSpeed, 2*math.Pi)
}

func (m *Mailbox) Dispose() {
	m.visible = false
	m.hasMail = false
}
