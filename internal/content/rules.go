package content

// Rule is a declarative unlock condition attached to resources and cards.
// A rule is either a leaf (Type + Value/Key) or an all/any combination.
type Rule struct {
	All []Rule `yaml:"all" json:"all,omitempty"`
	Any []Rule `yaml:"any" json:"any,omitempty"`

	Type  string `yaml:"type" json:"type,omitempty"` // level_at_least | coins_at_least | has_card
	Value int    `yaml:"value" json:"value,omitempty"`
	Key   string `yaml:"key" json:"key,omitempty"`
}

// RuleView is the slice of player state unlock rules read.
type RuleView struct {
	Level   int
	Coins   int
	HasCard func(key string) bool
}

// RuleFailure explains why a rule did not pass.
type RuleFailure struct {
	Reason   string `json:"reason"`
	Required int    `json:"required,omitempty"`
	Current  int    `json:"current,omitempty"`
	Key      string `json:"key,omitempty"`
}

// Eval evaluates the rule tree against a player view. A nil rule passes.
func (r *Rule) Eval(v RuleView) (bool, RuleFailure) {
	if r == nil {
		return true, RuleFailure{}
	}

	if len(r.All) > 0 {
		for i := range r.All {
			if ok, fail := r.All[i].Eval(v); !ok {
				return false, fail
			}
		}
		return true, RuleFailure{}
	}

	if len(r.Any) > 0 {
		var last RuleFailure
		for i := range r.Any {
			ok, fail := r.Any[i].Eval(v)
			if ok {
				return true, RuleFailure{}
			}
			last = fail
		}
		if last.Reason == "" {
			last.Reason = "no_variant_matches"
		}
		return false, last
	}

	switch r.Type {
	case "level_at_least":
		if v.Level >= r.Value {
			return true, RuleFailure{}
		}
		return false, RuleFailure{Reason: "level_too_low", Required: r.Value, Current: v.Level}
	case "coins_at_least":
		if v.Coins >= r.Value {
			return true, RuleFailure{}
		}
		return false, RuleFailure{Reason: "not_enough_coins", Required: r.Value, Current: v.Coins}
	case "has_card":
		if v.HasCard != nil && v.HasCard(r.Key) {
			return true, RuleFailure{}
		}
		return false, RuleFailure{Reason: "card_required", Key: r.Key}
	}

	// Unknown rule types pass; content may be newer than the server.
	return true, RuleFailure{}
}
