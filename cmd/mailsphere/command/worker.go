package command

import (
	"fmt"
	"log/slog"

	"github.com/pixil98/go-service"
	"github.com/pixil98/mailsphere/internal/console"
	"github.com/pixil98/mailsphere/internal/driver"
	"github.com/pixil98/mailsphere/internal/listener"
	"github.com/pixil98/mailsphere/internal/messaging"
	"github.com/pixil98/mailsphere/internal/sim"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	dict, err := cfg.Storage.BuildDictionary()
	if err != nil {
		return nil, fmt.Errorf("loading assets: %w", err)
	}
	slog.Info("assets loaded",
		"quests", len(dict.Quests.Ids()),
		"npcs", len(dict.NPCs.Ids()),
		"mailboxes", len(dict.Mailboxes.Ids()),
	)

	tick := cfg.tickLength()
	simCfg, err := cfg.World.buildSimConfig(tick)
	if err != nil {
		return nil, fmt.Errorf("building world config: %w", err)
	}

	workers := service.WorkerList{}

	var opts []console.ManagerOpt
	var natsServer *messaging.NatsServer
	if !cfg.Nats.Disabled {
		natsServer, err = cfg.Nats.buildNatsServer()
		if err != nil {
			return nil, fmt.Errorf("creating nats server: %w", err)
		}
		relay := messaging.NewEventRelay(natsServer, cfg.Nats.SubjectPrefix)
		opts = append(opts, console.WithSessionHook(func(id string, s *sim.Simulation) func() {
			return relay.Scoped(id).Attach(s)
		}))
		workers["nats"] = natsServer
	}

	sessions := console.NewManager(dict, simCfg, opts...)
	workers["sessions"] = sessions

	if natsServer != nil {
		workers["broadcast"] = messaging.NewInbox(natsServer, cfg.Nats.broadcastSubject(), func(data []byte) {
			sessions.Broadcast(string(data))
		})
	}

	// Create Listeners
	cm := listener.NewConnectionManager(sessions)
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		w, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%s-%d", l.Protocol, l.Port)] = w
	}
	workers["listeners"] = &listeners

	// Every live simulation advances once per tick
	workers["driver"] = driver.NewFrameDriver([]driver.Ticker{sessions}, driver.WithTickLength(tick))

	return workers, nil
}
