// Package validate flags players whose stats are implausible for a single
// match. It never changes or removes players; it only reports them.
package validate

import (
	"log/slog"
	"strings"

	"github.com/nao1215/thronescan/internal/model"
)

// Bounds applied to every player with a known class.
const (
	MaxKills          = 200
	MinAssists        = 5
	MaxAssists        = 150
	MinDamageDone     = 10_000
	MaxDamageDone     = 8_000_000
	MinDamageReceived = 200_000
	MaxDamageReceived = 3_000_000
)

// Tighter bounds for classes that are neither tank nor healer.
const (
	DealerMinAssists       = 20
	DealerMinKills         = 10
	DealerMinDamageDone    = 500_000
	DealerMinDamageReceive = 300_000
)

// Bounds for healers.
const (
	HealerMinAssists = 20
	HealerMinHealing = 800_000
	HealerMaxHealing = 5_000_000
)

// Class names with dedicated rule sets, matched without regard to case.
const (
	ClassTank   = "tank"
	ClassHealer = "healer"
)

// Report is the outcome of validating a set of players.
type Report struct {
	// Warnings lists every violated rule, player by player.
	Warnings []model.Warning

	// Diagnostics holds the unknown-class players followed by the flagged
	// players, each in input order.
	Diagnostics []model.Diagnostic
}

// Validator checks players against the plausibility rules.
type Validator struct {
	logger *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets a custom logger. Warnings are logged at WARN level.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// New returns a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	return v
}

// Validate checks every player. Players without a known class skip the
// rules and are reported as unknown-class diagnostics instead.
func (v *Validator) Validate(players []*model.Player) Report {
	var (
		report  Report
		unknown []model.Diagnostic
		flagged []model.Diagnostic
	)

	for _, p := range players {
		if !p.HasKnownClass() {
			unknown = append(unknown, model.Diagnostic{Kind: model.DiagnosticUnknownClass, Player: p})
			v.logger.Info("player has no known class", "player", p.Name)
			continue
		}

		warnings := Check(p)
		if len(warnings) == 0 {
			continue
		}
		for _, w := range warnings {
			v.logger.Warn(w.Message(),
				"player", w.Player,
				"class", w.Class,
				"rule", w.Rule.String(),
				"value", w.Value,
			)
		}
		report.Warnings = append(report.Warnings, warnings...)
		flagged = append(flagged, model.Diagnostic{
			Kind:     model.DiagnosticAnomaly,
			Player:   p,
			Warnings: warnings,
		})
	}

	report.Diagnostics = append(unknown, flagged...)
	return report
}

// Check evaluates the universal rules and the rules of p's class and
// returns one warning per violation. Tanks get the universal rules only.
func Check(p *model.Player) []model.Warning {
	var warnings []model.Warning
	flag := func(rule model.Rule, value int64) {
		warnings = append(warnings, model.Warning{
			Rule:   rule,
			Player: p.Name,
			Class:  p.Class,
			Value:  value,
		})
	}

	if p.Kills > MaxKills {
		flag(model.RuleKillsHigh, p.Kills)
	}
	if p.Assists < MinAssists || p.Assists > MaxAssists {
		flag(model.RuleAssistsRange, p.Assists)
	}
	if p.DamageDone < MinDamageDone || p.DamageDone > MaxDamageDone {
		flag(model.RuleDamageDoneRange, p.DamageDone)
	}
	if p.DamageReceived < MinDamageReceived || p.DamageReceived > MaxDamageReceived {
		flag(model.RuleDamageReceivedRange, p.DamageReceived)
	}
	if p.Healing == 0 {
		flag(model.RuleHealingZero, p.Healing)
	}

	switch {
	case strings.EqualFold(p.Class, ClassTank):
		// Universal rules only.
	case strings.EqualFold(p.Class, ClassHealer):
		if p.Assists < HealerMinAssists {
			flag(model.RuleHealerAssistsLow, p.Assists)
		}
		if p.Healing < HealerMinHealing || p.Healing > HealerMaxHealing {
			flag(model.RuleHealerHealingRange, p.Healing)
		}
	default:
		if p.Assists < DealerMinAssists {
			flag(model.RuleDamageDealerAssistsLow, p.Assists)
		}
		if p.Kills < DealerMinKills {
			flag(model.RuleDamageDealerKillsLow, p.Kills)
		}
		if p.DamageDone < DealerMinDamageDone {
			flag(model.RuleDamageDealerDamageDoneLow, p.DamageDone)
		}
		if p.DamageReceived < DealerMinDamageReceive {
			flag(model.RuleDamageDealerDamageReceivedLow, p.DamageReceived)
		}
	}

	return warnings
}
