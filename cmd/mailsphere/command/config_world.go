package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/mailsphere/internal/game"
	"github.com/pixil98/mailsphere/internal/sim"
)

type WorldConfig struct {
	Radius         float64        `json:"radius"`
	FrameLength    string         `json:"frame_length"`
	MaxMail        int            `json:"max_mail"`
	MaxNPCs        int            `json:"max_npcs"`
	MaxMailboxes   int            `json:"max_mailboxes"`
	RespawnMin     string         `json:"respawn_min"`
	RespawnMax     string         `json:"respawn_max"`
	Seed           uint64         `json:"seed"`
	StartLatitude  float64        `json:"start_latitude"`
	StartLongitude float64        `json:"start_longitude"`
	Rewards        map[string]int `json:"rewards,omitempty"`
}

func (c *WorldConfig) validate() error {
	cfg, err := c.buildSimConfig(0)
	if err != nil {
		return fmt.Errorf("world: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("world: %w", err)
	}
	return nil
}

// buildSimConfig converts the file settings. An unset frame length falls
// back to frame so that simulated time keeps pace with the wall clock.
func (c *WorldConfig) buildSimConfig(frame time.Duration) (sim.Config, error) {
	el := errors.NewErrorList()

	parse := func(name, v string) time.Duration {
		if v == "" {
			return 0
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			el.Add(fmt.Errorf("parsing %s: %w", name, err))
		}
		return d
	}

	cfg := sim.Config{
		Radius:       c.Radius,
		FrameLength:  parse("frame_length", c.FrameLength),
		MaxMail:      c.MaxMail,
		MaxNPCs:      c.MaxNPCs,
		MaxMailboxes: c.MaxMailboxes,
		RespawnMin:   parse("respawn_min", c.RespawnMin),
		RespawnMax:   parse("respawn_max", c.RespawnMax),
		Seed:         c.Seed,
		StartLat:     c.StartLatitude,
		StartLon:     c.StartLongitude,
	}
	if cfg.FrameLength == 0 {
		cfg.FrameLength = frame
	}

	if len(c.Rewards) > 0 {
		cfg.Rewards = make(map[game.Priority]int, len(c.Rewards))
		for p, coins := range c.Rewards {
			cfg.Rewards[game.Priority(p)] = coins
		}
	}

	return cfg, el.Err()
}
