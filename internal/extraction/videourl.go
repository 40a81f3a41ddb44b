package extraction

import (
	"github.com/tidwall/gjson"
)

var (
	hdVideoPaths     = []string{"browser_native_hd_url", "playable_url_quality_hd"}
	sdVideoPaths     = []string{"browser_native_sd_url", "playable_url"}
	legacyVideoPaths = []string{
		"videoDeliveryLegacyFields.browser_native_hd_url",
		"videoDeliveryLegacyFields.browser_native_sd_url",
	}
)

// resolveVideoURL walks the quality tiers across all candidate nodes:
// progressive delivery, then HD, then SD, then the legacy field block.
func resolveVideoURL(nodes ...gjson.Result) (string, bool) {
	for _, node := range nodes {
		if u := progressiveURL(node); u != "" {
			return cleanURL(u), true
		}
	}
	for _, tier := range [][]string{hdVideoPaths, sdVideoPaths, legacyVideoPaths} {
		for _, node := range nodes {
			if u := str(node, tier...); u != "" {
				return cleanURL(u), true
			}
		}
	}
	return "", false
}

// progressiveURL returns the last non-null progressive_url; entries are
// ordered by ascending quality.
func progressiveURL(node gjson.Result) string {
	list, ok := dig(node, "videoDeliveryResponseFragment.videoDeliveryResponseResult.progressive_urls")
	if !ok || !list.IsArray() {
		return ""
	}
	last := ""
	list.ForEach(func(_, entry gjson.Result) bool {
		if u, ok := dig(entry, "progressive_url"); ok && u.String() != "" {
			last = u.String()
		}
		return true
	})
	return last
}

func previewImageURL(nodes ...gjson.Result) string {
	for _, node := range nodes {
		if u := str(node,
			"preferred_thumbnail.image.uri",
			"thumbnailImage.uri",
			"thumbnail_image.uri",
		); u != "" {
			return cleanURL(u)
		}
	}
	return ""
}
