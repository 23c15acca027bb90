package model

// Stage is the conversation controller state derived from collected preferences
type Stage string

const (
	StageIdle               Stage = "idle"
	StagePartiallyCollected Stage = "partially_collected"
	StageComplete           Stage = "complete"
)

// Preferences are the search criteria accumulated across a conversation
type Preferences struct {
	Type     *TransactionType `json:"type,omitempty"`
	Budget   *float64         `json:"budget,omitempty"`
	Bedrooms *int             `json:"bedrooms,omitempty"`
	Location *string          `json:"location,omitempty"`
}

// Known returns how many of the four criteria are set
func (p Preferences) Known() int {
	n := 0
	if p.Type != nil {
		n++
	}
	if p.Budget != nil {
		n++
	}
	if p.Bedrooms != nil {
		n++
	}
	if p.Location != nil {
		n++
	}
	return n
}

// Stage derives the controller state; there is no other hidden state
func (p Preferences) Stage() Stage {
	switch p.Known() {
	case 0:
		return StageIdle
	case 4:
		return StageComplete
	default:
		return StagePartiallyCollected
	}
}

// Apply merges a patch by overwrite. A flagged budget clear happens
// before the patch's own fields so a budget extracted in the same
// utterance survives.
func (p Preferences) Apply(patch PreferencePatch) Preferences {
	out := p
	if patch.ClearBudget {
		out.Budget = nil
	}
	if patch.Type != nil {
		v := *patch.Type
		out.Type = &v
	}
	if patch.Budget != nil {
		v := *patch.Budget
		out.Budget = &v
	}
	if patch.Bedrooms != nil {
		v := *patch.Bedrooms
		out.Bedrooms = &v
	}
	if patch.Location != nil {
		v := *patch.Location
		out.Location = &v
	}
	return out
}

// PreferencePatch is the partial update extracted from one utterance
type PreferencePatch struct {
	Type        *TransactionType `json:"type,omitempty"`
	Budget      *float64         `json:"budget,omitempty"`
	Bedrooms    *int             `json:"bedrooms,omitempty"`
	Location    *string          `json:"location,omitempty"`
	ClearBudget bool             `json:"clear_budget,omitempty"`
}

// SearchCriteria reports whether the patch names something only a property
// search asks for. A location alone does not count.
func (p PreferencePatch) SearchCriteria() bool {
	return p.Type != nil || p.Budget != nil || p.Bedrooms != nil
}

// Empty reports whether no extraction rule fired
func (p PreferencePatch) Empty() bool {
	return p.Type == nil && p.Budget == nil && p.Bedrooms == nil && p.Location == nil && !p.ClearBudget
}
