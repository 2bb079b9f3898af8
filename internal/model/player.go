package model

import "strconv"

// ClassUnknown is the class given to players missing from the class registry.
// Such players bypass anomaly validation and are reported for manual review.
const ClassUnknown = "UNKNOWN"

// Team labels.
const (
	// TeamSuits is assigned to rows whose color marker matches the filter color.
	TeamSuits = "Suits"

	// DefaultEnemyLabel is assigned to every other row unless the operator
	// configures a different opposing-team label.
	DefaultEnemyLabel = "Enemy"
)

// StatCount is the number of numeric cells a leaderboard row must carry
// after its color marker to be considered valid.
const StatCount = 5

// CSVHeader lists the columns of the main output, in order.
var CSVHeader = []string{
	"date", "team", "name", "class",
	"kills", "assists", "damageDone", "damageReceived", "healing",
}

// Player is one leaderboard row after cleaning and name resolution.
//
// Players are created once per parsed line. The only field mutated after
// construction is Class, which is attached once the class registry has
// been consulted.
type Player struct {
	Name           string `json:"name"`
	Team           string `json:"team"`
	Date           string `json:"date"`
	Class          string `json:"class"`
	Kills          int64  `json:"kills"`
	Assists        int64  `json:"assists"`
	DamageDone     int64  `json:"damage_done"`
	DamageReceived int64  `json:"damage_received"`
	Healing        int64  `json:"healing"`

	// Valid is true when exactly StatCount numeric cells followed the
	// color marker. Invalid players never reach the main output.
	Valid bool `json:"valid"`
}

// NewPlayer builds a valid player from the five numeric stats in
// leaderboard order: kills, assists, damage done, damage received, healing.
func NewPlayer(name, team, date string, stats [StatCount]int64) *Player {
	return &Player{
		Name:           name,
		Team:           team,
		Date:           date,
		Class:          ClassUnknown,
		Kills:          stats[0],
		Assists:        stats[1],
		DamageDone:     stats[2],
		DamageReceived: stats[3],
		Healing:        stats[4],
		Valid:          true,
	}
}

// HasKnownClass reports whether the class registry resolved this player.
func (p *Player) HasKnownClass() bool {
	return p.Class != "" && p.Class != ClassUnknown
}

// CSVFields returns the player as main-output columns, matching CSVHeader.
func (p *Player) CSVFields() []string {
	return []string{
		p.Date,
		p.Team,
		p.Name,
		p.Class,
		strconv.FormatInt(p.Kills, 10),
		strconv.FormatInt(p.Assists, 10),
		strconv.FormatInt(p.DamageDone, 10),
		strconv.FormatInt(p.DamageReceived, 10),
		strconv.FormatInt(p.Healing, 10),
	}
}
