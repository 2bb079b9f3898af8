package recognize

import (
	"cmp"
	"slices"
	"strings"

	"github.com/nao1215/thronescan/internal/model"
)

// MergePolicy decides which record survives when two lines resolve to the
// same player name.
type MergePolicy int

const (
	// KeepFirst keeps the first record seen for a name and drops later ones.
	KeepFirst MergePolicy = iota

	// KeepLast replaces the stored record with each later one, keeping the
	// position of the first.
	KeepLast
)

// String returns the configuration spelling of the policy.
func (p MergePolicy) String() string {
	switch p {
	case KeepFirst:
		return "keep-first"
	case KeepLast:
		return "keep-last"
	default:
		return "unknown"
	}
}

// ParseMergePolicy parses "keep-first"/"first" or "keep-last"/"last".
// An empty string selects KeepFirst.
func ParseMergePolicy(s string) (MergePolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first", "keep-first":
		return KeepFirst, true
	case "last", "keep-last":
		return KeepLast, true
	default:
		return KeepFirst, false
	}
}

// RecordSet holds at most one player per name, in insertion order.
type RecordSet struct {
	policy     MergePolicy
	index      map[string]int
	players    []*model.Player
	duplicates int
}

// NewRecordSet returns an empty set using the given policy.
func NewRecordSet(policy MergePolicy) *RecordSet {
	return &RecordSet{
		policy: policy,
		index:  make(map[string]int),
	}
}

// Add inserts p and reports whether p is now the stored record for its
// name. Invalid players are never stored.
func (s *RecordSet) Add(p *model.Player) bool {
	if p == nil || !p.Valid {
		return false
	}
	if i, ok := s.index[p.Name]; ok {
		s.duplicates++
		if s.policy == KeepLast {
			s.players[i] = p
			return true
		}
		return false
	}
	s.index[p.Name] = len(s.players)
	s.players = append(s.players, p)
	return true
}

// Players returns the stored players in insertion order.
func (s *RecordSet) Players() []*model.Player {
	return slices.Clone(s.players)
}

// Len returns the number of distinct names.
func (s *RecordSet) Len() int {
	return len(s.players)
}

// Duplicates returns how many Add calls hit an already stored name.
func (s *RecordSet) Duplicates() int {
	return s.duplicates
}

// SortByKills orders players by kills, highest first. Ties keep their
// relative order.
func SortByKills(players []*model.Player) {
	slices.SortStableFunc(players, func(a, b *model.Player) int {
		return cmp.Compare(b.Kills, a.Kills)
	})
}
