package rules

import (
	"sort"
	"time"
)

// =============================================================================
// VERSION RESOLUTION - Which rule set version governs a date
// =============================================================================

// Resolve picks the version of a category's rule set history that governs
// the given instant. Deterministic tie-break: among active versions the one
// with the latest EffectiveFrom wins; if two share an EffectiveFrom, the
// higher Version number wins. Returns nil when no version is active.
func Resolve(versions []RuleSet, asOf time.Time) *RuleSet {
	candidates := make([]RuleSet, 0, len(versions))
	for _, v := range versions {
		if v.ActiveAt(asOf) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].EffectiveFrom.Equal(candidates[j].EffectiveFrom) {
			return candidates[i].EffectiveFrom.After(candidates[j].EffectiveFrom)
		}
		return candidates[i].Version > candidates[j].Version
	})
	picked := candidates[0]
	return &picked
}
