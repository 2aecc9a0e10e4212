package console

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pixil98/mailsphere/internal/dialogue"
	"github.com/pixil98/mailsphere/internal/display"
	"github.com/pixil98/mailsphere/internal/game"
	"github.com/pixil98/mailsphere/internal/sim"
)

const (
	lookRadius      = 20.0
	defaultStride   = 5.0
	maxWalkDistance = 100.0
)

func builtinCommands(h *Handler) []*Command {
	return []*Command{
		{
			Name:        "help",
			Aliases:     []string{"?"},
			Category:    "general",
			Usage:       "help [command]",
			Description: "List commands, or describe one.",
			Run: func(ctx context.Context, s *Session, args []string) error {
				text, err := h.help(firstArg(args))
				if err != nil {
					return err
				}
				return s.writeLine(text)
			},
		},
		{Name: "quit", Aliases: []string{"exit"}, Category: "general", Description: "Leave the game.", Run: cmdQuit},

		{Name: "new", Category: "game", Description: "Begin a new route and dress your courier.", Run: cmdNew},
		{Name: "name", Category: "game", Usage: "name <name>", Description: "Name your courier.", Run: cmdName},
		{Name: "appearance", Aliases: []string{"wear"}, Category: "game", Usage: "appearance [skin|hair|haircolor|shirt|pants|hat] [value]", Description: "Show or change how your courier looks.", Run: cmdAppearance},
		{Name: "start", Category: "game", Description: "Step out onto the route.", Run: cmdStart},
		{Name: "pause", Category: "game", Description: "Pause the game.", Run: cmdPause},
		{Name: "resume", Category: "game", Description: "Resume a paused game.", Run: cmdResume},

		{Name: "look", Aliases: []string{"l"}, Category: "movement", Description: "Look around.", Run: cmdLook},
		{Name: "where", Category: "movement", Description: "Show your position and heading.", Run: cmdWhere},
		{Name: "turn", Category: "movement", Usage: "turn <left|right|around|degrees>", Description: "Turn on the spot. Positive degrees turn left.", Run: cmdTurn},
		{Name: "walk", Aliases: []string{"go", "forward"}, Category: "movement", Usage: "walk [distance]", Description: "Walk ahead. Negative distances walk backwards.", Run: cmdWalk},

		{Name: "collect", Aliases: []string{"take"}, Category: "mail", Description: "Take the letter from the mailbox in reach.", Run: cmdCollect},
		{Name: "deliver", Category: "mail", Usage: "deliver [npc]", Description: "Hand a letter to the person in reach.", Run: cmdDeliver},
		{Name: "interact", Aliases: []string{"use", "e"}, Category: "mail", Description: "Do whatever makes sense here.", Run: cmdInteract},

		{Name: "talk", Category: "conversation", Description: "Talk to the person in reach.", Run: cmdTalk},
		{Name: "choose", Aliases: []string{"say"}, Category: "conversation", Usage: "choose <number>", Description: "Pick an answer.", Run: cmdChoose},
		{Name: "bye", Aliases: []string{"leave"}, Category: "conversation", Description: "End the conversation.", Run: cmdBye},

		{Name: "inventory", Aliases: []string{"i", "inv"}, Category: "status", Description: "Show your mail bag and purse.", Run: cmdInventory},
		{Name: "quests", Aliases: []string{"q", "journal"}, Category: "status", Description: "Show your quests.", Run: cmdQuests},
		{Name: "stats", Aliases: []string{"score"}, Category: "status", Description: "Show your statistics.", Run: cmdStats},
		{Name: "panel", Category: "status", Usage: "panel <quest_log|inventory|map>", Description: "Open or close a panel.", Run: cmdPanel},
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func notNow(s *Session, what string) error {
	return NewUserError(fmt.Sprintf("You can't %s while %s.", what, s.sim.Phase()))
}

/* Game */

func cmdQuit(ctx context.Context, s *Session, args []string) error {
	s.quit = true
	return nil
}

func cmdNew(ctx context.Context, s *Session, args []string) error {
	if !s.sim.NewGame() {
		return notNow(s, "start a new route")
	}
	return s.writeLine("A fresh uniform waits for you. Use 'name' and 'appearance' to dress your courier, then 'start'.")
}

func cmdName(ctx context.Context, s *Session, args []string) error {
	if s.sim.Phase() != game.PhaseCustomization {
		return notNow(s, "change your name")
	}
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return NewUserError("Usage: name <name>")
	}
	s.sim.Customize(game.Appearance{Name: name})
	return s.writeLine(fmt.Sprintf("You are now %s.", name))
}

func cmdAppearance(ctx context.Context, s *Session, args []string) error {
	if len(args) == 0 {
		a := s.sim.Snapshot().Appearance
		return s.writeLine(fmt.Sprintf("%s: %s skin, %s %s hair, %s shirt, %s trousers, %s hat.",
			a.Name, a.SkinTone, a.HairColor, a.HairStyle, a.ShirtColor, a.PantsColor, a.Hat))
	}

	if s.sim.Phase() != game.PhaseCustomization {
		return notNow(s, "change clothes")
	}
	if len(args) < 2 {
		return NewUserError("Usage: appearance <skin|hair|haircolor|shirt|pants|hat> <value>")
	}

	value := strings.Join(args[1:], " ")
	var patch game.Appearance
	switch strings.ToLower(args[0]) {
	case "skin":
		patch.SkinTone = value
	case "hair":
		patch.HairStyle = value
	case "haircolor":
		patch.HairColor = value
	case "shirt":
		patch.ShirtColor = value
	case "pants", "trousers":
		patch.PantsColor = value
	case "hat":
		patch.Hat = value
	default:
		return NewUserError(fmt.Sprintf("There is no %q to change.", args[0]))
	}

	s.sim.Customize(patch)
	return s.writeLine("Looking sharp.")
}

func cmdStart(ctx context.Context, s *Session, args []string) error {
	if !s.sim.StartGame() {
		return notNow(s, "start")
	}
	if err := s.writeLine(fmt.Sprintf("%s sets out on the route.", s.sim.Snapshot().Appearance.Name)); err != nil {
		return err
	}
	return cmdLook(ctx, s, nil)
}

func cmdPause(ctx context.Context, s *Session, args []string) error {
	if !s.sim.Pause() {
		return notNow(s, "pause")
	}
	return s.writeLine("Paused. Type 'resume' to continue.")
}

func cmdResume(ctx context.Context, s *Session, args []string) error {
	if !s.sim.Resume() {
		return NewUserError("The game is not paused.")
	}
	return s.writeLine("Back on the route.")
}

/* Movement */

func cmdLook(ctx context.Context, s *Session, args []string) error {
	loc := s.sim.Where()
	view := lookView{
		Zone:   string(loc.Zone),
		Lat:    loc.Lat,
		Lon:    loc.Lon,
		Facing: compass(loc.Heading),
	}
	for _, sg := range s.sim.Surroundings(lookRadius) {
		view.Sightings = append(view.Sightings, sightingView{
			Name:     sg.Name,
			Kind:     sg.Kind,
			Distance: sg.Distance,
			HasMail:  sg.HasMail,
			InReach:  sg.InReach,
		})
	}
	return s.print(lookTemplate, view)
}

func cmdWhere(ctx context.Context, s *Session, args []string) error {
	loc := s.sim.Where()
	view := whereView{
		Zone:          display.Capitalize(string(loc.Zone)),
		Lat:           loc.Lat,
		Lon:           loc.Lon,
		Heading:       loc.Heading,
		Facing:        compass(loc.Heading),
		NearbyMailbox: loc.NearbyMailbox != "",
	}
	if loc.NearbyNPC != "" {
		view.NearbyNPC = s.sim.NPCName(loc.NearbyNPC)
	}
	return s.print(whereTemplate, view)
}

func cmdTurn(ctx context.Context, s *Session, args []string) error {
	var deg float64
	switch arg := strings.ToLower(firstArg(args)); arg {
	case "left":
		deg = 90
	case "right":
		deg = -90
	case "around":
		deg = 180
	case "":
		return NewUserError("Usage: turn <left|right|around|degrees>")
	default:
		d, err := strconv.ParseFloat(arg, 64)
		if err != nil || math.IsNaN(d) || math.IsInf(d, 0) {
			return NewUserError(fmt.Sprintf("%q is not a direction.", arg))
		}
		deg = d
	}

	if !s.sim.Turn(deg) {
		return notNow(s, "turn")
	}
	return s.writeLine(fmt.Sprintf("You face %s.", compass(s.sim.Where().Heading)))
}

func cmdWalk(ctx context.Context, s *Session, args []string) error {
	distance := defaultStride
	if arg := firstArg(args); arg != "" {
		d, err := strconv.ParseFloat(arg, 64)
		if err != nil || d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return NewUserError(fmt.Sprintf("%q is not a distance.", arg))
		}
		distance = d
	}
	if distance > maxWalkDistance || distance < -maxWalkDistance {
		return NewUserError(fmt.Sprintf("You can walk at most %.0f at a time.", maxWalkDistance))
	}

	if !s.sim.Walk(distance) {
		return notNow(s, "walk")
	}
	return cmdLook(ctx, s, nil)
}

/* Mail */

func cmdCollect(ctx context.Context, s *Session, args []string) error {
	if s.sim.Phase() != game.PhasePlaying {
		return notNow(s, "collect mail")
	}
	item := s.sim.CollectMail()
	if item == nil {
		return NewUserError(noMailReason(s))
	}
	return s.writeLine(collectedText(s, item))
}

func noMailReason(s *Session) string {
	st := s.sim.Snapshot()
	switch {
	case st.NearbyMailbox == "":
		return "There is no mailbox within reach."
	case len(st.Inventory.Mail) >= st.Inventory.MaxMail:
		return "Your mail bag is full."
	default:
		return "The mailbox is empty."
	}
}

func collectedText(s *Session, item *game.MailItem) string {
	return fmt.Sprintf("You take a %s letter from %s, addressed to %s.",
		item.Priority, item.From, s.sim.NPCName(item.To))
}

func cmdDeliver(ctx context.Context, s *Session, args []string) error {
	if s.sim.Phase() != game.PhasePlaying {
		return notNow(s, "deliver mail")
	}

	nearby := s.sim.Where().NearbyNPC
	if nearby == "" {
		return NewUserError("There is nobody within reach.")
	}
	if want := strings.Join(args, " "); want != "" &&
		!strings.EqualFold(want, nearby) && !strings.EqualFold(want, s.sim.NPCName(nearby)) {
		return NewUserError(fmt.Sprintf("%s is not close enough.", want))
	}

	name := s.sim.NPCName(nearby)
	if !s.sim.DeliverMailToNPC(nearby) {
		return NewUserError(fmt.Sprintf("You have nothing for %s.", name))
	}
	return s.writeLine(fmt.Sprintf("You hand %s a letter.", name))
}

func cmdInteract(ctx context.Context, s *Session, args []string) error {
	if s.sim.Phase() != game.PhasePlaying {
		return notNow(s, "do that")
	}

	res := s.sim.Interact()
	switch res.Action {
	case sim.ActionCollect:
		return s.writeLine(collectedText(s, res.Mail))
	case sim.ActionDeliver:
		return s.writeLine(fmt.Sprintf("You hand %s a letter.", s.sim.NPCName(res.Mail.To)))
	case sim.ActionTalk:
		return s.showNode(res.Node)
	default:
		return NewUserError("There is nothing to do here.")
	}
}

/* Conversation */

func (s *Session) showNode(n *dialogue.NodeView) error {
	if n == nil {
		return s.writeLine("The conversation is over.")
	}
	return s.print(nodeTemplate, n)
}

func cmdTalk(ctx context.Context, s *Session, args []string) error {
	if s.sim.Phase() != game.PhasePlaying {
		return notNow(s, "start a conversation")
	}
	if s.sim.Where().NearbyNPC == "" {
		return NewUserError("There is nobody within reach.")
	}
	node := s.sim.Talk()
	if node == nil {
		return NewUserError("They have nothing to say.")
	}
	return s.showNode(node)
}

func cmdChoose(ctx context.Context, s *Session, args []string) error {
	if s.sim.Phase() != game.PhaseDialogue {
		return NewUserError("You are not talking to anyone.")
	}
	n, err := strconv.Atoi(firstArg(args))
	if err != nil {
		return NewUserError("Usage: choose <number>")
	}

	node, ok := s.sim.Choose(n - 1)
	if !ok {
		return NewUserError(fmt.Sprintf("There is no answer %d.", n))
	}
	return s.showNode(node)
}

func cmdBye(ctx context.Context, s *Session, args []string) error {
	if s.sim.Phase() != game.PhaseDialogue {
		return NewUserError("You are not talking to anyone.")
	}
	s.sim.EndConversation()
	return s.writeLine("You say goodbye.")
}

/* Status */

func cmdInventory(ctx context.Context, s *Session, args []string) error {
	inv := s.sim.Snapshot().Inventory
	view := inventoryView{
		Coins:      inv.Coins,
		Reputation: inv.Reputation,
		MaxMail:    inv.MaxMail,
	}
	for _, m := range inv.Mail {
		view.Mail = append(view.Mail, mailView{
			From:     m.From,
			To:       s.sim.NPCName(m.To),
			Priority: string(m.Priority),
		})
	}
	return s.print(inventoryTemplate, view)
}

func cmdQuests(ctx context.Context, s *Session, args []string) error {
	st := s.sim.Snapshot()
	var view questsView
	for _, q := range st.ActiveQuests {
		qv := questView{Title: q.Title}
		for _, o := range q.Objectives {
			qv.Objectives = append(qv.Objectives, objectiveView{Description: o.Description, Complete: o.Complete})
		}
		view.Active = append(view.Active, qv)
	}
	for _, id := range st.CompletedQuests {
		view.Completed = append(view.Completed, display.Label(id))
	}
	return s.print(questsTemplate, view)
}

func cmdStats(ctx context.Context, s *Session, args []string) error {
	st := s.sim.Snapshot().Stats
	return s.print(statsTemplate, statsView{
		MailDelivered:   st.MailDelivered,
		QuestsCompleted: st.QuestsCompleted,
		NPCsMet:         len(st.NPCsTalkedTo),
		CoinsEarned:     st.CoinsEarned,
		Distance:        st.DistanceTraveled,
		PlayTime:        st.PlayTime.Truncate(time.Second).String(),
	})
}

func cmdPanel(ctx context.Context, s *Session, args []string) error {
	p := game.Panel(strings.ToLower(firstArg(args)))
	switch p {
	case game.PanelQuestLog, game.PanelInventory, game.PanelMap:
	default:
		return NewUserError("Usage: panel <quest_log|inventory|map>")
	}

	if !s.sim.TogglePanel(p) {
		return NewUserError("Easy there.")
	}

	ui := s.sim.Snapshot().UI
	open := map[game.Panel]bool{
		game.PanelQuestLog:  ui.QuestLogOpen,
		game.PanelInventory: ui.InventoryOpen,
		game.PanelMap:       ui.MapOpen,
	}[p]
	state := "closed"
	if open {
		state = "open"
	}
	return s.writeLine(fmt.Sprintf("%s %s.", display.Label(string(p)), state))
}
