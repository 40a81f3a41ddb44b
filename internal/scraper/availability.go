package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"facebook-extractor/internal/extraction"
	"facebook-extractor/pkg/types"
)

var unavailablePhrases = []string{
	"This Content Isn't Available Right Now",
	"This content isn't available right now",
	"This Page Isn't Available",
	"This video is no longer available",
	"Content not found",
}

var (
	viewsPattern     = regexp.MustCompile(`(?i)^([0-9][0-9.,KM ]*)\s+views?$`)
	followersPattern = regexp.MustCompile(`(?i)([0-9][0-9.,KM ]*)\s+followers`)
	likesPattern     = regexp.MustCompile(`(?i)([0-9][0-9.,KM ]*)\s+likes`)
)

func parseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return doc, nil
}

// CheckAvailability reports ErrContentUnavailable when the page shows one of
// Facebook's "not available" notices.
func CheckAvailability(doc *goquery.Document) error {
	var notice string
	doc.Find("span, h2").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		for _, phrase := range unavailablePhrases {
			if text == phrase {
				notice = text
				return false
			}
		}
		return true
	})
	if notice != "" {
		return fmt.Errorf("%w: %s", types.ErrContentUnavailable, notice)
	}
	return nil
}

// HasElementText reports whether an element matching selector has exactly text.
func HasElementText(doc *goquery.Document, selector, text string) bool {
	found := false
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found = strings.TrimSpace(s.Text()) == text
		return !found
	})
	return found
}

// findViewCount reads the "N views" label shown under watch-page videos.
func findViewCount(doc *goquery.Document) *int {
	var views *int
	doc.Find("span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		m := viewsPattern.FindStringSubmatch(strings.TrimSpace(s.Text()))
		if m == nil {
			return true
		}
		if n, err := extraction.ParseInteractionCount(m[1]); err == nil {
			views = types.IntPtr(n)
			return false
		}
		return true
	})
	return views
}

// findCount returns the first count matched by pattern in a link or span.
func findCount(doc *goquery.Document, pattern *regexp.Regexp) *int {
	var count *int
	doc.Find("a, span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		m := pattern.FindStringSubmatch(s.Text())
		if m == nil {
			return true
		}
		if n, err := extraction.ParseInteractionCount(m[1]); err == nil {
			count = types.IntPtr(n)
			return false
		}
		return true
	})
	return count
}

func metaContent(doc *goquery.Document, property string) string {
	content, _ := doc.Find(fmt.Sprintf(`meta[property=%q]`, property)).First().Attr("content")
	return strings.TrimSpace(content)
}
