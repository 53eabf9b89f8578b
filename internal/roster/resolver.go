package roster

import (
	"fmt"
	"sort"
	"strings"
)

// ResolutionError names the participant phrase that could not be matched
// against the conversation roster.
type ResolutionError struct {
	Phrase string
	Reason string
}

func (e *ResolutionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Reason == "" {
		return fmt.Sprintf("roster: cannot resolve participant %q", e.Phrase)
	}
	return fmt.Sprintf("roster: cannot resolve participant %q: %s", e.Phrase, e.Reason)
}

// ResolveParticipants maps participant phrases to member IDs. Per phrase the
// resolution order is: literal collective, role alias, then fuzzy display
// name (exact, prefix, token subset); ties and misses are errors, never a
// guess. The organizer is always part of the result and duplicates collapse.
func ResolveParticipants(phrases []string, everyone bool, members []Member, organizerID string) ([]string, error) {
	resolved := make(map[string]struct{})
	if organizerID != "" {
		resolved[organizerID] = struct{}{}
	}

	if everyone {
		for _, member := range members {
			resolved[member.ID] = struct{}{}
		}
	}

	for _, phrase := range phrases {
		ids, err := resolvePhrase(phrase, members)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			resolved[id] = struct{}{}
		}
	}

	if len(resolved) == 0 {
		return nil, &ResolutionError{Phrase: strings.Join(phrases, ", "), Reason: "no participants resolved"}
	}

	ids := make([]string, 0, len(resolved))
	for id := range resolved {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func resolvePhrase(phrase string, members []Member) ([]string, error) {
	needle := strings.ToLower(strings.TrimSpace(phrase))
	if needle == "" {
		return nil, nil
	}

	if needle == "everyone" || needle == "everybody" || needle == "all" {
		ids := make([]string, 0, len(members))
		for _, member := range members {
			ids = append(ids, member.ID)
		}
		return ids, nil
	}

	// Collective phrases keep their role word after filler stripping
	// ("all designers" arrives as "designers").
	needle = strings.TrimPrefix(needle, "all ")
	needle = strings.TrimPrefix(needle, "the ")

	if role, ok := ParseRole(needle); ok {
		var ids []string
		for _, member := range members {
			if member.Role == role {
				ids = append(ids, member.ID)
			}
		}
		return ids, nil
	}

	return matchDisplayName(phrase, needle, members)
}

// matchDisplayName applies the fuzzy name tiers in order. Each tier must
// produce exactly one member before it wins; an ambiguous tier is an error.
func matchDisplayName(phrase, needle string, members []Member) ([]string, error) {
	var exact, prefix, subset []string
	needleTokens := strings.Fields(needle)

	for _, member := range members {
		name := strings.ToLower(strings.TrimSpace(member.DisplayName))
		if name == "" {
			continue
		}
		switch {
		case name == needle:
			exact = append(exact, member.ID)
		case strings.HasPrefix(name, needle):
			prefix = append(prefix, member.ID)
		case tokenSubset(needleTokens, strings.Fields(name)):
			subset = append(subset, member.ID)
		}
	}

	for _, tier := range [][]string{exact, prefix, subset} {
		switch len(tier) {
		case 0:
			continue
		case 1:
			return tier, nil
		default:
			return nil, &ResolutionError{Phrase: phrase, Reason: "matches more than one member"}
		}
	}

	return nil, &ResolutionError{Phrase: phrase, Reason: "no matching member"}
}

// tokenSubset reports whether every needle token appears among the name tokens.
func tokenSubset(needleTokens, nameTokens []string) bool {
	if len(needleTokens) == 0 {
		return false
	}
	nameSet := make(map[string]struct{}, len(nameTokens))
	for _, token := range nameTokens {
		nameSet[token] = struct{}{}
	}
	for _, token := range needleTokens {
		if _, ok := nameSet[token]; !ok {
			return false
		}
	}
	return true
}
