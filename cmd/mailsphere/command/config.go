package command

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pixil98/go-errors"
	"github.com/pixil98/mailsphere/internal/driver"
)

type Config struct {
	TickInterval string           `json:"tick_interval"`
	World        WorldConfig      `json:"world"`
	Listeners    []ListenerConfig `json:"listeners"`
	Storage      StorageConfig    `json:"storage"`
	Nats         NatsConfig       `json:"nats"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing tick_interval: %w", err))
		} else if d <= 0 || d > time.Second {
			el.Add(fmt.Errorf("tick_interval must be between 0 and 1 second"))
		}
	}

	if len(c.Listeners) == 0 {
		el.Add(fmt.Errorf("at least one listener is required"))
	}
	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	el.Add(c.World.validate())
	el.Add(c.Storage.validate())
	el.Add(c.Nats.validate())

	return el.Err()
}

// tickLength is the wall clock time between frames.
func (c *Config) tickLength() time.Duration {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil || d <= 0 {
		return driver.DefaultTickLength
	}
	return d
}

// envOverrides are the settings the environment can override after the
// config file is read.
type envOverrides struct {
	TickInterval string `env:"MAILSPHERE_TICK_INTERVAL"`
	Seed         uint64 `env:"MAILSPHERE_SEED"`
	AssetRoot    string `env:"MAILSPHERE_ASSET_ROOT"`
	NatsHost     string `env:"MAILSPHERE_NATS_HOST"`
	NatsPort     int    `env:"MAILSPHERE_NATS_PORT"`
	NatsDisabled bool   `env:"MAILSPHERE_NATS_DISABLED"`
}

// applyEnv copies every override that is set onto c.
func (c *Config) applyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if o.TickInterval != "" {
		c.TickInterval = o.TickInterval
	}
	if o.Seed != 0 {
		c.World.Seed = o.Seed
	}
	if o.AssetRoot != "" {
		c.Storage.Root = o.AssetRoot
	}
	if o.NatsHost != "" {
		c.Nats.Host = o.NatsHost
	}
	if o.NatsPort != 0 {
		c.Nats.Port = o.NatsPort
	}
	if o.NatsDisabled {
		c.Nats.Disabled = true
	}
	return nil
}
