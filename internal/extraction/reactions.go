package extraction

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ReactionCounts folds a reaction edge list into num_<name>s buckets. When
// two edges land on the same key the later one wins.
func ReactionCounts(edges gjson.Result) map[string]int {
	if !edges.IsArray() {
		return nil
	}
	counts := make(map[string]int)
	edges.ForEach(func(_, edge gjson.Result) bool {
		name := strings.TrimSpace(edge.Get("node.localized_name").String())
		if name == "" {
			return true
		}
		key := "num_" + strings.ToLower(name) + "s"
		if n := optInt(edge, "reaction_count", "i18n_reaction_count"); n != nil {
			counts[key] = *n
		}
		return true
	})
	return counts
}

func reactionEdges(feedback gjson.Result) (gjson.Result, bool) {
	return firstOf(feedback,
		"cannot_see_top_custom_reactions.top_reactions.edges",
		"top_reactions.edges",
	)
}

// reactionsOf reads the reaction breakdown of a feedback object, falling back
// to the unified reactor total when no breakdown is served.
func reactionsOf(feedback gjson.Result) map[string]int {
	if edges, ok := reactionEdges(feedback); ok {
		return ReactionCounts(edges)
	}
	if total := optInt(feedback, "unified_reactors.count", "reactors.count", "reaction_count.count"); total != nil {
		return map[string]int{"num_reactions": *total}
	}
	return nil
}
