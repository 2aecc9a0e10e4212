package game

import "fmt"

// Phase is the top level mode the game is in.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseCustomization
	PhasePlaying
	PhasePaused
	PhaseDialogue
)

var phaseNames = map[Phase]string{
	PhaseLoading:       "loading",
	PhaseCustomization: "customization",
	PhasePlaying:       "playing",
	PhasePaused:        "paused",
	PhaseDialogue:      "dialogue",
}

func (p Phase) String() string {
	if n, ok := phaseNames[p]; ok {
		return n
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for ph, name := range phaseNames {
		if name == string(text) {
			*p = ph
			return nil
		}
	}
	return fmt.Errorf("unknown phase: %s", text)
}

// legalTransitions lists every phase change the game allows.
var legalTransitions = map[Phase][]Phase{
	PhaseLoading:       {PhaseCustomization},
	PhaseCustomization: {PhasePlaying},
	PhasePlaying:       {PhasePaused, PhaseDialogue},
	PhasePaused:        {PhasePlaying},
	PhaseDialogue:      {PhasePlaying},
}

// CanTransition reports whether the game may move from one phase to another.
func CanTransition(from, to Phase) bool {
	for _, p := range legalTransitions[from] {
		if p == to {
			return true
		}
	}
	return false
}
