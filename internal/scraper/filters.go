package scraper

import (
	"strings"

	"facebook-extractor/internal/utils"
	"facebook-extractor/pkg/types"
)

// ApplyFilter reports whether post passes every threshold set in filter.
// Counts a post does not carry count as zero.
func ApplyFilter(post *types.PostRecord, filter *types.PostFilter) bool {
	return passesReactions(post, filter) &&
		passesCounts(post, filter) &&
		passesTime(post, filter) &&
		passesKeywords(post, filter) &&
		passesShape(post, filter)
}

func passesReactions(post *types.PostRecord, filter *types.PostFilter) bool {
	total := post.TotalReactions()
	if filter.MinReactions > 0 && total < filter.MinReactions {
		return false
	}
	return filter.MaxReactions == 0 || total <= filter.MaxReactions
}

func passesCounts(post *types.PostRecord, filter *types.PostFilter) bool {
	if filter.MinComments > 0 && valueOf(post.NumComments) < filter.MinComments {
		return false
	}
	if filter.MinShares > 0 && valueOf(post.NumShares) < filter.MinShares {
		return false
	}
	return filter.MinViews == 0 || valueOf(post.NumViews) >= filter.MinViews
}

func passesTime(post *types.PostRecord, filter *types.PostFilter) bool {
	if filter.DaysBack > 0 && !utils.IsWithinDays(post.CreatedAt, filter.DaysBack) {
		return false
	}
	if !filter.StartDate.IsZero() && post.CreatedAt.Before(filter.StartDate) {
		return false
	}
	return filter.EndDate.IsZero() || !post.CreatedAt.After(filter.EndDate)
}

func passesKeywords(post *types.PostRecord, filter *types.PostFilter) bool {
	if len(filter.Keywords) > 0 && !containsAnyKeyword(post.Text, filter.Keywords) {
		return false
	}
	return len(filter.ExcludeKeywords) == 0 || !containsAnyKeyword(post.Text, filter.ExcludeKeywords)
}

func passesShape(post *types.PostRecord, filter *types.PostFilter) bool {
	if filter.VideoOnly && !post.HasVideo {
		return false
	}
	if len(filter.Shapes) == 0 {
		return true
	}
	for _, shape := range filter.Shapes {
		if strings.EqualFold(post.Shape, shape) {
			return true
		}
	}
	return false
}

// BatchFilter applies filter to posts and counts why posts were dropped.
func BatchFilter(posts []*types.PostRecord, filter *types.PostFilter) ([]*types.PostRecord, types.FilterStats) {
	var filtered []*types.PostRecord
	stats := types.FilterStats{
		TotalPosts: len(posts),
	}

	for _, post := range posts {
		if !passesReactions(post, filter) {
			stats.ReactionsFiltered++
		}
		if !passesCounts(post, filter) {
			stats.CountsFiltered++
		}
		if !passesTime(post, filter) {
			stats.TimeFiltered++
		}
		if !passesKeywords(post, filter) {
			stats.KeywordFiltered++
		}
		if !passesShape(post, filter) {
			stats.ShapeFiltered++
		}

		if ApplyFilter(post, filter) {
			filtered = append(filtered, post)
		}
	}

	stats.FilteredPosts = len(filtered)
	return filtered, stats
}

func containsAnyKeyword(content string, keywords []string) bool {
	contentLower := strings.ToLower(content)
	for _, keyword := range keywords {
		if strings.Contains(contentLower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

func valueOf(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
