package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestReactionCounts(t *testing.T) {
	edges := gjson.Parse(`[
		{"node":{"localized_name":"Like"},"reaction_count":1200},
		{"node":{"localized_name":"Love"},"reaction_count":40},
		{"node":{"localized_name":"Yay"},"i18n_reaction_count":"1.1K"},
		{"node":{"localized_name":""},"reaction_count":3}
	]`)
	assert.Equal(t, map[string]int{
		"num_likes": 1200,
		"num_loves": 40,
		"num_yays":  1100,
	}, ReactionCounts(edges))
}

func TestReactionCountsCollisionLastWins(t *testing.T) {
	edges := gjson.Parse(`[
		{"node":{"localized_name":"Like"},"reaction_count":1},
		{"node":{"localized_name":"LIKE"},"reaction_count":2}
	]`)
	assert.Equal(t, map[string]int{"num_likes": 2}, ReactionCounts(edges))
}

func TestReactionCountsIsDeterministic(t *testing.T) {
	edges := gjson.Parse(`[
		{"node":{"localized_name":"Haha"},"reaction_count":5},
		{"node":{"localized_name":"Wow"},"reaction_count":9},
		{"node":{"localized_name":"haha"},"reaction_count":6}
	]`)
	first := ReactionCounts(edges)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ReactionCounts(edges))
	}
	assert.Equal(t, 6, first["num_hahas"])
}

func TestReactionCountsNotAList(t *testing.T) {
	assert.Nil(t, ReactionCounts(gjson.Parse(`{"edges":[]}`)))
	assert.Empty(t, ReactionCounts(gjson.Parse(`[]`)))
}

func TestReactionsOfFallsBackToTotal(t *testing.T) {
	assert.Equal(t, map[string]int{"num_reactions": 431},
		reactionsOf(gjson.Parse(`{"unified_reactors":{"count":431}}`)))
	assert.Equal(t, map[string]int{"num_likes": 3},
		reactionsOf(gjson.Parse(`{"cannot_see_top_custom_reactions":{"top_reactions":{"edges":[{"node":{"localized_name":"Like"},"reaction_count":3}]}},"unified_reactors":{"count":9}}`)))
	assert.Nil(t, reactionsOf(gjson.Parse(`{}`)))
}
