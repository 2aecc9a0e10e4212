package game

// Appearance is how the player character looks. It is chosen during
// customization and only read by the rendering layer.
type Appearance struct {
	Name       string `json:"name"`
	SkinTone   string `json:"skin_tone"`
	HairStyle  string `json:"hair_style"`
	HairColor  string `json:"hair_color"`
	ShirtColor string `json:"shirt_color"`
	PantsColor string `json:"pants_color"`
	Hat        string `json:"hat"`
}

// DefaultAppearance is the look a new player starts with.
var DefaultAppearance = Appearance{
	Name:       "Courier",
	SkinTone:   "#f1c27d",
	HairStyle:  "short",
	HairColor:  "#4a3222",
	ShirtColor: "#3a6ea5",
	PantsColor: "#2f2f2f",
	Hat:        "cap",
}

// merge returns a with every non-empty field of patch copied over it.
func (a Appearance) merge(patch Appearance) Appearance {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&a.Name, patch.Name)
	set(&a.SkinTone, patch.SkinTone)
	set(&a.HairStyle, patch.HairStyle)
	set(&a.HairColor, patch.HairColor)
	set(&a.ShirtColor, patch.ShirtColor)
	set(&a.PantsColor, patch.PantsColor)
	set(&a.Hat, patch.Hat)
	return a
}
