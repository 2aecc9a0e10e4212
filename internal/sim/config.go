package sim

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/mailsphere/internal/game"
	"github.com/pixil98/mailsphere/internal/registry"
	"github.com/pixil98/mailsphere/internal/sphere"
)

const (
	DefaultFrameLength = 100 * time.Millisecond

	// maxStride is the longest single step Walk takes before re-projecting.
	maxStride = 1.0
)

// Config tunes a Simulation. Zero values take the defaults.
type Config struct {
	Radius       float64
	FrameLength  time.Duration
	MaxMail      int
	MaxNPCs      int
	MaxMailboxes int
	RespawnMin   time.Duration
	RespawnMax   time.Duration
	Seed         uint64
	StartLat     float64
	StartLon     float64
	Rewards      map[game.Priority]int
}

// Validate reports every setting that is out of range.
func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.Radius < 0 {
		el.Add(fmt.Errorf("radius must not be negative"))
	}
	if c.FrameLength < 0 {
		el.Add(fmt.Errorf("frame_length must not be negative"))
	}
	if c.MaxMail < 0 {
		el.Add(fmt.Errorf("max_mail must not be negative"))
	}
	if c.RespawnMin < 0 || c.RespawnMax < 0 {
		el.Add(fmt.Errorf("respawn delays must not be negative"))
	}
	if c.RespawnMax != 0 && c.RespawnMax < c.RespawnMin {
		el.Add(fmt.Errorf("respawn_max must be at least respawn_min"))
	}
	if c.StartLat < -90 || c.StartLat > 90 {
		el.Add(fmt.Errorf("start_latitude %v out of range [-90, 90]", c.StartLat))
	}
	for p, coins := range c.Rewards {
		el.Add(p.Validate())
		if coins < 0 {
			el.Add(fmt.Errorf("delivery reward for %s must not be negative", p))
		}
	}

	return el.Err()
}

func (c Config) withDefaults() Config {
	if c.Radius <= 0 {
		c.Radius = sphere.DefaultRadius
	}
	if c.FrameLength <= 0 {
		c.FrameLength = DefaultFrameLength
	}
	if c.MaxMail <= 0 {
		c.MaxMail = game.DefaultMaxMail
	}
	if c.RespawnMin <= 0 && c.RespawnMax <= 0 {
		c.RespawnMin = registry.DefaultRespawnMin
		c.RespawnMax = registry.DefaultRespawnMax
	}
	if c.RespawnMax < c.RespawnMin {
		c.RespawnMax = c.RespawnMin
	}
	if c.Seed == 0 {
		c.Seed = uint64(time.Now().UnixNano())
	}
	return c
}
