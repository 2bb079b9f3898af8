package model

import "fmt"

// Rule identifies one plausibility check of the anomaly validator.
type Rule int

const (
	// Universal rules, applied to every resolved class.
	RuleKillsHigh Rule = iota
	RuleAssistsRange
	RuleDamageDoneRange
	RuleDamageReceivedRange
	RuleHealingZero

	// Rules for classes that are neither tank nor healer.
	RuleDamageDealerAssistsLow
	RuleDamageDealerKillsLow
	RuleDamageDealerDamageDoneLow
	RuleDamageDealerDamageReceivedLow

	// Rules for the healer class.
	RuleHealerAssistsLow
	RuleHealerHealingRange
)

// ruleInfo holds the code and human description of each rule.
var ruleInfo = map[Rule]struct {
	code    string
	message string
}{
	RuleKillsHigh:                     {"kills_high", "suspicious kills"},
	RuleAssistsRange:                  {"assists_range", "suspicious assists"},
	RuleDamageDoneRange:               {"damage_done_range", "suspicious damage done"},
	RuleDamageReceivedRange:           {"damage_received_range", "suspicious damage received"},
	RuleHealingZero:                   {"healing_zero", "suspicious healing"},
	RuleDamageDealerAssistsLow:        {"dealer_assists_low", "suspicious assists for a damage dealer"},
	RuleDamageDealerKillsLow:          {"dealer_kills_low", "suspicious kills for a damage dealer"},
	RuleDamageDealerDamageDoneLow:     {"dealer_damage_done_low", "suspicious damage done for a damage dealer"},
	RuleDamageDealerDamageReceivedLow: {"dealer_damage_received_low", "suspicious damage received for a damage dealer"},
	RuleHealerAssistsLow:              {"healer_assists_low", "suspicious assists for a healer"},
	RuleHealerHealingRange:            {"healer_healing_range", "suspicious healing for a healer"},
}

// String returns the rule code, e.g. "kills_high".
func (r Rule) String() string {
	if info, ok := ruleInfo[r]; ok {
		return info.code
	}
	return "unknown"
}

// Message returns a short human description of the rule.
func (r Rule) Message() string {
	if info, ok := ruleInfo[r]; ok {
		return info.message
	}
	return "unknown rule"
}

// MarshalText implements encoding.TextMarshaler.
func (r Rule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rule) UnmarshalText(text []byte) error {
	for rule, info := range ruleInfo {
		if info.code == string(text) {
			*r = rule
			return nil
		}
	}
	return fmt.Errorf("unknown rule %q", text)
}

// Warning records one rule a player violated and the offending value.
type Warning struct {
	Rule   Rule   `json:"rule"`
	Player string `json:"player"`
	Class  string `json:"class"`
	Value  int64  `json:"value"`
}

// Message returns the rule description.
func (w Warning) Message() string {
	return w.Rule.Message()
}
