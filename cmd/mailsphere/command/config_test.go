package command

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/mailsphere/internal/game"
)

const assetRoot = "../../../assets"

func validConfig() *Config {
	return &Config{
		TickInterval: "100ms",
		World: WorldConfig{
			Radius:     50,
			RespawnMin: "10s",
			RespawnMax: "30s",
		},
		Listeners: []ListenerConfig{{Protocol: ListenerTypeTelnet, Port: 4000}},
		Storage:   StorageConfig{Root: assetRoot},
		Nats:      NatsConfig{StartTimeout: "5s"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]struct {
		mutate func(*Config)
		expErr string
	}{
		"valid": {
			mutate: func(*Config) {},
		},
		"default tick interval": {
			mutate: func(c *Config) { c.TickInterval = "" },
		},
		"unparsable tick interval": {
			mutate: func(c *Config) { c.TickInterval = "soon" },
			expErr: "parsing tick_interval",
		},
		"tick interval too long": {
			mutate: func(c *Config) { c.TickInterval = "2s" },
			expErr: "tick_interval must be between",
		},
		"no listeners": {
			mutate: func(c *Config) { c.Listeners = nil },
			expErr: "at least one listener",
		},
		"listener without port": {
			mutate: func(c *Config) { c.Listeners[0].Port = 0 },
			expErr: "listener 0: port must be set",
		},
		"host key on telnet": {
			mutate: func(c *Config) { c.Listeners[0].HostKeyPath = "key" },
			expErr: "host_key_path is only used by ssh",
		},
		"missing storage": {
			mutate: func(c *Config) { c.Storage = StorageConfig{} },
			expErr: "quests: path is required",
		},
		"bad asset path": {
			mutate: func(c *Config) { c.Storage.NPCs.Path = "nowhere" },
			expErr: "npcs: invalid path",
		},
		"bad start timeout": {
			mutate: func(c *Config) { c.Nats.StartTimeout = "later" },
			expErr: "parsing start_timeout",
		},
		"bad nats port": {
			mutate: func(c *Config) { c.Nats.Port = 70000 },
			expErr: "port 70000 out of range",
		},
		"bad respawn duration": {
			mutate: func(c *Config) { c.World.RespawnMin = "ten" },
			expErr: "parsing respawn_min",
		},
		"respawn bounds reversed": {
			mutate: func(c *Config) { c.World.RespawnMin = "1m" },
			expErr: "respawn_max must be at least respawn_min",
		},
		"bad start latitude": {
			mutate: func(c *Config) { c.World.StartLatitude = 91 },
			expErr: "start_latitude",
		},
		"bad reward priority": {
			mutate: func(c *Config) { c.World.Rewards = map[string]int{"overnight": 5} },
			expErr: "invalid priority",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_TickLength(t *testing.T) {
	c := validConfig()
	testutil.AssertEqual(t, "configured", c.tickLength(), 100*time.Millisecond)

	c.TickInterval = ""
	testutil.AssertEqual(t, "default", c.tickLength(), 100*time.Millisecond)

	c.TickInterval = "250ms"
	testutil.AssertEqual(t, "custom", c.tickLength(), 250*time.Millisecond)
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Setenv("MAILSPHERE_TICK_INTERVAL", "50ms")
	t.Setenv("MAILSPHERE_SEED", "9")
	t.Setenv("MAILSPHERE_NATS_HOST", "0.0.0.0")
	t.Setenv("MAILSPHERE_NATS_DISABLED", "true")

	c := validConfig()
	if err := c.applyEnv(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "tick interval", c.TickInterval, "50ms")
	testutil.AssertEqual(t, "seed", c.World.Seed, uint64(9))
	testutil.AssertEqual(t, "nats host", c.Nats.Host, "0.0.0.0")
	testutil.AssertEqual(t, "nats disabled", c.Nats.Disabled, true)
	testutil.AssertEqual(t, "asset root untouched", c.Storage.Root, assetRoot)
}

func TestConfig_ApplyEnvError(t *testing.T) {
	t.Setenv("MAILSPHERE_NATS_PORT", "not-an-int")

	err := validConfig().applyEnv()
	testutil.AssertErrorContains(t, err, "parse env:")
}

func TestWorldConfig_BuildSimConfig(t *testing.T) {
	w := WorldConfig{
		RespawnMin: "5s",
		RespawnMax: "8s",
		Rewards:    map[string]int{"urgent": 40},
	}

	cfg, err := w.buildSimConfig(200 * time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "frame falls back to tick", cfg.FrameLength, 200*time.Millisecond)
	testutil.AssertEqual(t, "respawn min", cfg.RespawnMin, 5*time.Second)
	testutil.AssertEqual(t, "respawn max", cfg.RespawnMax, 8*time.Second)
	testutil.AssertEqual(t, "urgent reward", cfg.Rewards[game.PriorityUrgent], 40)

	w.FrameLength = "1s"
	cfg, err = w.buildSimConfig(200 * time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "explicit frame", cfg.FrameLength, time.Second)
}

func TestStorageConfig_BuildDictionary(t *testing.T) {
	c := validConfig()

	dict, err := c.Storage.BuildDictionary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "npcs", strings.Join(dict.NPCs.Ids(), ","),
		"beach-surfer,forest-ranger,harbor-captain,mountain-hermit,town-baker,town-mayor")
	testutil.AssertEqual(t, "mailboxes", len(dict.Mailboxes.Ids()), 3)

	tree, ok := dict.DialogueFor("town-mayor")
	testutil.AssertEqual(t, "mayor dialogue", ok, true)
	testutil.AssertEqual(t, "start node", tree.StartNode, "greet")

	q, ok := dict.Quest("hermit-letter")
	testutil.AssertEqual(t, "quest", ok, true)
	testutil.AssertEqual(t, "objective mail", q.Objectives[0].DeliverMail, "mayors-letter")
}

func TestAssetConfig_Resolve(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "npcs")

	tests := map[string]struct {
		path string
		root string
		exp  string
	}{
		"root only":     {root: "assets", exp: filepath.Join("assets", "npcs")},
		"relative path": {root: "assets", path: "people", exp: filepath.Join("assets", "people")},
		"absolute path": {root: "assets", path: abs, exp: abs},
		"path only":     {path: "people", exp: "people"},
		"nothing":       {exp: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			a := AssetConfig[*game.NPCSpec]{Path: tt.path}
			testutil.AssertEqual(t, "path", a.resolve(tt.root, "npcs"), tt.exp)
		})
	}
}

func TestListenerType_UnmarshalText(t *testing.T) {
	tests := map[string]struct {
		input  string
		exp    ListenerType
		expErr string
	}{
		"telnet":  {input: "telnet", exp: ListenerTypeTelnet},
		"ssh":     {input: "ssh", exp: ListenerTypeSSH},
		"unknown": {input: "gopher", expErr: "unknown listener type: gopher"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var lt ListenerType
			err := lt.UnmarshalText([]byte(tt.input))
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "type", lt, tt.exp)
			testutil.AssertEqual(t, "string", lt.String(), tt.input)
		})
	}
}

func TestListenerConfig_HostKeyPersists(t *testing.T) {
	cl := ListenerConfig{
		Protocol:    ListenerTypeSSH,
		Port:        4022,
		HostKeyPath: filepath.Join(t.TempDir(), "host_key"),
	}

	first, err := cl.loadOrGenerateHostKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := cl.loadOrGenerateHostKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	same := bytes.Equal(first.PublicKey().Marshal(), second.PublicKey().Marshal())
	testutil.AssertEqual(t, "same key after reload", same, true)
}

func TestBuildWorkers(t *testing.T) {
	tests := map[string]struct {
		nats    bool
		expKeys []string
	}{
		"without nats": {
			expKeys: []string{"driver", "listeners", "sessions"},
		},
		"with nats": {
			nats:    true,
			expKeys: []string{"broadcast", "driver", "listeners", "nats", "sessions"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			c.Nats.Disabled = !tt.nats

			workers, err := BuildWorkers(c)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			testutil.AssertEqual(t, "worker count", len(workers), len(tt.expKeys))
			for _, k := range tt.expKeys {
				_, ok := workers[k]
				testutil.AssertEqual(t, "has "+k, ok, true)
			}
		})
	}
}

func TestBuildWorkers_WrongConfig(t *testing.T) {
	_, err := BuildWorkers(struct{}{})
	testutil.AssertErrorContains(t, err, "unable to cast config")
}
