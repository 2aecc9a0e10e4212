package console

import (
	"fmt"
	"math"

	"github.com/pixil98/mailsphere/internal/display"
	"github.com/pixil98/mailsphere/internal/events"
)

const welcomeText = `Welcome to Mailsphere.
Type 'new' to begin a route, or 'help' for a list of commands.`

const lookTemplate = `You are in the {{ .Zone }} ({{ printf "%.1f" .Lat }}, {{ printf "%.1f" .Lon }}), facing {{ .Facing }}.
{{- range .Sightings }}
  {{ .Name }} ({{ .Kind }}), {{ printf "%.1f" .Distance }} away
{{- if .HasMail }}, flag up{{ end }}{{ if .InReach }} [in reach]{{ end }}
{{- else }}
  Nothing else in sight.
{{- end }}`

const whereTemplate = `{{ .Zone }} at {{ printf "%.2f" .Lat }}, {{ printf "%.2f" .Lon }}, heading {{ printf "%.0f" .Heading }} ({{ .Facing }})
{{- if .NearbyNPC }}
{{ .NearbyNPC }} is close enough to talk to.
{{- end }}
{{- if .NearbyMailbox }}
A mailbox is within reach.
{{- end }}`

const inventoryTemplate = `Coins: {{ .Coins }}  Reputation: {{ .Reputation }}
Mail ({{ len .Mail }}/{{ .MaxMail }}):
{{- range $i, $m := .Mail }}
  {{ add1 $i }}. from {{ $m.From }} to {{ $m.To }} [{{ $m.Priority }}]
{{- else }}
  (empty)
{{- end }}`

const questsTemplate = `{{- range .Active }}
{{ .Title }}
{{- range .Objectives }}
  [{{ if .Complete }}x{{ else }} {{ end }}] {{ .Description }}
{{- end }}
{{- else }}
No active quests.
{{- end }}
{{- if .Completed }}
Completed: {{ join ", " .Completed }}
{{- end }}`

const statsTemplate = `Mail delivered: {{ .MailDelivered }}
Quests completed: {{ .QuestsCompleted }}
Neighbours met: {{ .NPCsMet }}
Coins earned: {{ .CoinsEarned }}
Distance walked: {{ printf "%.1f" .Distance }}
Play time: {{ .PlayTime }}`

const nodeTemplate = `{{ .Speaker }}: "{{ .Text }}"
{{- range .Choices }}
  {{ add1 .Index }}) {{ .Text }}
{{- end }}`

type sightingView struct {
	Name     string
	Kind     string
	Distance float64
	HasMail  bool
	InReach  bool
}

type lookView struct {
	Zone      string
	Lat       float64
	Lon       float64
	Facing    string
	Sightings []sightingView
}

type whereView struct {
	Zone          string
	Lat           float64
	Lon           float64
	Heading       float64
	Facing        string
	NearbyNPC     string
	NearbyMailbox bool
}

type mailView struct {
	From     string
	To       string
	Priority string
}

type inventoryView struct {
	Coins      int
	Reputation int
	MaxMail    int
	Mail       []mailView
}

type objectiveView struct {
	Description string
	Complete    bool
}

type questView struct {
	Title      string
	Objectives []objectiveView
}

type questsView struct {
	Active    []questView
	Completed []string
}

type statsView struct {
	MailDelivered   int
	QuestsCompleted int
	NPCsMet         int
	CoinsEarned     int
	Distance        float64
	PlayTime        string
}

var compassPoints = []string{
	"east", "northeast", "north", "northwest",
	"west", "southwest", "south", "southeast",
}

// compass names the heading, measured counterclockwise from east in degrees.
func compass(heading float64) string {
	i := int(math.Round(heading/45)) % len(compassPoints)
	if i < 0 {
		i += len(compassPoints)
	}
	return compassPoints[i]
}

// describeEvent is the line a console shows for an event, or "" for events
// the command output already covers.
func describeEvent(e events.Event) string {
	switch e.Name {
	case events.Notification:
		return fmt.Sprintf("[%v] %v", e.Data["type"], e.Data["message"])
	case events.QuestGiven:
		return fmt.Sprintf("New quest: %s.", display.Label(fmt.Sprint(e.Data["quest"])))
	case events.MailGiven:
		return "You are handed a letter to deliver."
	case events.MailDelivered:
		return fmt.Sprintf("Delivered! You earn %v coins.", e.Data["coins"])
	case events.CoinsGiven:
		return fmt.Sprintf("You receive %v coins.", e.Data["coins"])
	default:
		return ""
	}
}
