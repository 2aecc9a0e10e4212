package game

import (
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/mailsphere/internal/storage"
)

func radius(r float64) *float64 {
	return &r
}

func testTree() *DialogueTree {
	return &DialogueTree{
		StartNode: "greeting",
		Nodes: map[string]*DialogueNode{
			"greeting": {
				Speaker: "Baker",
				Text:    "Morning, courier!",
				Choices: []DialogueChoice{
					{Text: "Any work?", Next: "job", Effect: "giveQuest:flour-run"},
					{Text: "Bye"},
				},
			},
			"job": {Speaker: "Baker", Text: "Take this to the miller."},
		},
	}
}

func newTestDictionary(t *testing.T) *Dictionary {
	t.Helper()

	npcs, err := storage.NewMemoryStore(map[string]*NPCSpec{
		"town-baker": {
			Name:     "Baker",
			Dialogue: storage.NewSmartIdentifier[*DialogueTree]("baker"),
		},
		"forest-miller": {Name: "Miller", Latitude: 10, Longitude: 80},
	})
	if err != nil {
		t.Fatalf("npc store: %v", err)
	}

	trees, err := storage.NewMemoryStore(map[string]*DialogueTree{"baker": testTree()})
	if err != nil {
		t.Fatalf("dialogue store: %v", err)
	}

	quests, err := storage.NewMemoryStore(map[string]*QuestSpec{
		"flour-run": {
			Title:      "Flour Run",
			Objectives: []Objective{{Description: "Deliver the order", DeliverTo: "forest-miller", Complete: true}},
			Rewards:    Rewards{Coins: 20},
		},
	})
	if err != nil {
		t.Fatalf("quest store: %v", err)
	}

	mail, err := storage.NewMemoryStore(map[string]*MailSpec{
		"flour-order": {From: "Baker", To: storage.NewSmartIdentifier[*NPCSpec]("forest-miller")},
	})
	if err != nil {
		t.Fatalf("mail store: %v", err)
	}

	boxes, err := storage.NewMemoryStore(map[string]*MailboxSpec{
		"town-square": {
			LocationName: "Town Square",
			Recipients:   []storage.SmartIdentifier[*NPCSpec]{storage.NewSmartIdentifier[*NPCSpec]("town-baker")},
		},
	})
	if err != nil {
		t.Fatalf("mailbox store: %v", err)
	}

	return &Dictionary{
		Quests:    quests,
		Mail:      mail,
		Dialogues: trees,
		NPCs:      npcs,
		Mailboxes: boxes,
	}
}

func TestDictionary_Resolve(t *testing.T) {
	dict := newTestDictionary(t)
	if err := dict.Resolve(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tree, ok := dict.DialogueFor("town-baker")
	testutil.AssertEqual(t, "found", ok, true)
	testutil.AssertEqual(t, "start node", tree.StartNode, "greeting")

	_, ok = dict.DialogueFor("forest-miller")
	testutil.AssertEqual(t, "no dialogue", ok, false)

	_, ok = dict.DialogueFor("nobody")
	testutil.AssertEqual(t, "unknown npc", ok, false)
}

func TestDictionary_Resolve_MissingReference(t *testing.T) {
	tests := map[string]struct {
		mutate func(d *Dictionary)
		expErr string
	}{
		"npc dialogue missing": {
			mutate: func(d *Dictionary) {
				d.NPCs.Get("forest-miller").Dialogue = storage.NewSmartIdentifier[*DialogueTree]("miller")
			},
			expErr: `"miller" not found`,
		},
		"mail recipient missing": {
			mutate: func(d *Dictionary) {
				d.Mail.Get("flour-order").To = storage.NewSmartIdentifier[*NPCSpec]("harbor-captain")
			},
			expErr: `"harbor-captain" not found`,
		},
		"mailbox recipient missing": {
			mutate: func(d *Dictionary) {
				mb := d.Mailboxes.Get("town-square")
				mb.Recipients = append(mb.Recipients, storage.NewSmartIdentifier[*NPCSpec]("beach-lifeguard"))
			},
			expErr: `"beach-lifeguard" not found`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dict := newTestDictionary(t)
			tt.mutate(dict)
			testutil.AssertErrorContains(t, dict.Resolve(), tt.expErr)
		})
	}
}

func TestDictionary_Quest(t *testing.T) {
	dict := newTestDictionary(t)

	q, ok := dict.Quest("flour-run")
	testutil.AssertEqual(t, "found", ok, true)
	testutil.AssertEqual(t, "title", q.Title, "Flour Run")
	testutil.AssertEqual(t, "objective reset", q.Objectives[0].Complete, false)
	testutil.AssertEqual(t, "definition untouched", dict.Quests.Get("flour-run").Objectives[0].Complete, true)

	_, ok = dict.Quest("missing")
	testutil.AssertEqual(t, "missing", ok, false)
}

func TestDictionary_MailItem(t *testing.T) {
	dict := newTestDictionary(t)

	m, ok := dict.MailItem("flour-order")
	testutil.AssertEqual(t, "found", ok, true)
	testutil.AssertEqual(t, "item", m, MailItem{Id: "flour-order", From: "Baker", To: "forest-miller", Priority: PriorityNormal})

	_, ok = dict.MailItem("missing")
	testutil.AssertEqual(t, "missing", ok, false)
}

func TestSpecValidation(t *testing.T) {
	tests := map[string]struct {
		spec   storage.ValidatingSpec
		expErr string
	}{
		"valid npc": {
			spec: &NPCSpec{Name: "Baker", Latitude: 45},
		},
		"npc without name": {
			spec:   &NPCSpec{},
			expErr: "npc name is required",
		},
		"npc latitude out of range": {
			spec:   &NPCSpec{Name: "Baker", Latitude: 91},
			expErr: "out of range",
		},
		"npc zero radius": {
			spec: &NPCSpec{Name: "Baker", InteractionRadius: radius(0)},
		},
		"npc negative radius": {
			spec:   &NPCSpec{Name: "Baker", InteractionRadius: radius(-1)},
			expErr: "interaction_radius must not be negative",
		},
		"mailbox without recipients": {
			spec:   &MailboxSpec{LocationName: "Pier"},
			expErr: "at least one recipient is required",
		},
		"mailbox bad priority": {
			spec: &MailboxSpec{
				LocationName: "Pier",
				Recipients:   []storage.SmartIdentifier[*NPCSpec]{storage.NewSmartIdentifier[*NPCSpec]("harbor-captain")},
				Priorities:   []Priority{"overnight"},
			},
			expErr: `invalid priority "overnight"`,
		},
		"mail without sender": {
			spec:   &MailSpec{To: storage.NewSmartIdentifier[*NPCSpec]("town-baker")},
			expErr: "from is required",
		},
		"mail without recipient": {
			spec:   &MailSpec{From: "Baker"},
			expErr: "identifier is required",
		},
		"quest without objectives": {
			spec:   &QuestSpec{Title: "Nothing"},
			expErr: "quest needs at least one objective",
		},
		"quest negative reward": {
			spec: &QuestSpec{
				Title:      "Debt",
				Objectives: []Objective{{Description: "pay"}},
				Rewards:    Rewards{Coins: -5},
			},
			expErr: "reward coins must not be negative",
		},
		"valid tree": {
			spec: testTree(),
		},
		"tree missing start": {
			spec:   &DialogueTree{StartNode: "nope", Nodes: map[string]*DialogueNode{"a": {Text: "hi"}}},
			expErr: `start_node "nope" is not a node`,
		},
		"tree dangling next": {
			spec: &DialogueTree{
				StartNode: "a",
				Nodes: map[string]*DialogueNode{
					"a": {Text: "hi", Choices: []DialogueChoice{{Text: "go", Next: "b"}}},
				},
			},
			expErr: `next "b" is not a node`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.expErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestDialogueChoice_AllEffects(t *testing.T) {
	c := DialogueChoice{Effect: "giveQuest:a", Effects: []string{"give_coins:5"}}
	got := c.AllEffects()
	testutil.AssertEqual(t, "len", len(got), 2)
	testutil.AssertEqual(t, "first", got[0], "giveQuest:a")

	testutil.AssertEqual(t, "none", len(DialogueChoice{}.AllEffects()), 0)
}
