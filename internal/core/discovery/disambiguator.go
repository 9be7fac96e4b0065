package discovery

import (
	"fmt"
	"strings"

	"pellematic2mqtt/internal/core/domain"
)

// DisambiguateLabels rewrites duplicate display labels within one
// component by appending a parenthesized suffix derived from the field
// key. Groups are processed in definition order, so the result is
// deterministic for a given payload.
//
// The suffix is the shortest underscore-token suffix that tells all group
// members apart, chosen uniformly for the group; when no shorter suffix
// does, the full field key is used. A fixpoint pass guarantees totality:
// any label still colliding is rewritten to the full-key form, and a
// full-key form that still collides degrades to the raw field key, which
// is unique within a component. No entity is ever dropped.
func DisambiguateLabels(defs []domain.EntityDefinition) []domain.EntityDefinition {
	if len(defs) < 2 {
		return defs
	}

	base := make([]string, len(defs))
	for i := range defs {
		base[i] = defs[i].Label
	}

	for _, group := range labelGroups(defs) {
		if len(group) < 2 {
			continue
		}
		keys := make([]string, len(group))
		for j, i := range group {
			keys[j] = defs[i].FieldKey
		}
		suffixes := disambiguatingSuffixes(keys)
		for j, i := range group {
			defs[i].Label = fmt.Sprintf("%s (%s)", base[i], suffixes[j])
		}
	}

	// totality: cross-group collisions (a label that already looked like a
	// suffixed one) escalate to the full-key form, then to the raw field
	// key. Field keys are unique within a component, so every colliding
	// member moves at most two steps and the loop terminates.
	for {
		collided := false
		for _, group := range labelGroups(defs) {
			if len(group) < 2 {
				continue
			}
			collided = true
			for _, i := range group {
				fullKeyForm := fmt.Sprintf("%s (%s)", base[i], defs[i].FieldKey)
				if defs[i].Label == fullKeyForm || defs[i].Label == defs[i].FieldKey {
					defs[i].Label = defs[i].FieldKey
				} else {
					defs[i].Label = fullKeyForm
				}
			}
		}
		if !collided {
			return defs
		}
	}
}

// labelGroups collects indexes per label, ordered by first occurrence.
func labelGroups(defs []domain.EntityDefinition) [][]int {
	byLabel := make(map[string]int)
	var groups [][]int
	for i := range defs {
		if g, ok := byLabel[defs[i].Label]; ok {
			groups[g] = append(groups[g], i)
			continue
		}
		byLabel[defs[i].Label] = len(groups)
		groups = append(groups, []int{i})
	}
	return groups
}

// disambiguatingSuffixes picks, uniformly for the group, the smallest
// token count whose suffixes are pairwise distinct. Falls back to the
// full keys, which are distinct by construction.
func disambiguatingSuffixes(keys []string) []string {
	tokens := make([][]string, len(keys))
	maxTokens := 0
	for i, key := range keys {
		tokens[i] = strings.Split(key, "_")
		if len(tokens[i]) > maxTokens {
			maxTokens = len(tokens[i])
		}
	}
	for n := 1; n < maxTokens; n++ {
		suffixes := make([]string, len(keys))
		for i := range keys {
			suffixes[i] = tokenSuffix(tokens[i], n)
		}
		if allDistinct(suffixes) {
			return suffixes
		}
	}
	return keys
}

func tokenSuffix(tokens []string, n int) string {
	if n >= len(tokens) {
		return strings.Join(tokens, "_")
	}
	return strings.Join(tokens[len(tokens)-n:], "_")
}

func allDistinct(values []string) bool {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return false
		}
		seen[v] = struct{}{}
	}
	return true
}
