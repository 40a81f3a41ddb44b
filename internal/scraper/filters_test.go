package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"facebook-extractor/pkg/types"
)

func filterFixtures() []*types.PostRecord {
	now := time.Now().UTC()
	return []*types.PostRecord{
		{
			ID: "reel", Shape: "reel", HasVideo: true, Text: "Sunset timelapse",
			CreatedAt: now.Add(-2 * time.Hour), NumComments: types.IntPtr(1078), NumShares: types.IntPtr(8100),
			NumViews: types.IntPtr(500000), Reactions: map[string]int{"num_likes": 9000, "num_loves": 1000},
		},
		{
			ID: "photo", Shape: "image", Text: "Morning fog over the valley",
			CreatedAt: now.AddDate(0, 0, -3), NumComments: types.IntPtr(64), NumShares: types.IntPtr(19),
			Reactions: map[string]int{"num_likes": 1500},
		},
		{
			ID: "old", Shape: "text", Text: "Throwback sponsored post",
			CreatedAt: now.AddDate(0, 0, -40), NumComments: types.IntPtr(2),
			Reactions: map[string]int{"num_likes": 3},
		},
	}
}

func TestApplyFilter(t *testing.T) {
	posts := filterFixtures()

	assert.True(t, ApplyFilter(posts[0], &types.PostFilter{MinReactions: 10000, MinViews: 1000}))
	assert.False(t, ApplyFilter(posts[1], &types.PostFilter{MinViews: 1}))
	assert.False(t, ApplyFilter(posts[0], &types.PostFilter{MaxReactions: 100}))
	assert.True(t, ApplyFilter(posts[1], &types.PostFilter{Keywords: []string{"FOG"}}))
	assert.False(t, ApplyFilter(posts[2], &types.PostFilter{ExcludeKeywords: []string{"sponsored"}}))
	assert.False(t, ApplyFilter(posts[2], &types.PostFilter{DaysBack: 30}))
	assert.True(t, ApplyFilter(posts[1], &types.PostFilter{Shapes: []string{"IMAGE", "text"}}))
	assert.False(t, ApplyFilter(posts[1], &types.PostFilter{VideoOnly: true}))
}

func TestBatchFilter(t *testing.T) {
	filter := &types.PostFilter{MinReactions: 1000, DaysBack: 7}

	filtered, stats := BatchFilter(filterFixtures(), filter)

	assert.Len(t, filtered, 2)
	assert.Equal(t, 3, stats.TotalPosts)
	assert.Equal(t, 2, stats.FilteredPosts)
	assert.Equal(t, 1, stats.ReactionsFiltered)
	assert.Equal(t, 1, stats.TimeFiltered)
	assert.Zero(t, stats.KeywordFiltered)
}
