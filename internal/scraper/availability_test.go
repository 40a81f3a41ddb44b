package scraper

import (
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facebook-extractor/pkg/types"
)

func mustDocument(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := parseDocument(html)
	require.NoError(t, err)
	return doc
}

func TestCheckAvailability(t *testing.T) {
	doc := mustDocument(t, `<div><h2>This Page Isn't Available</h2></div>`)
	err := CheckAvailability(doc)
	assert.ErrorIs(t, err, types.ErrContentUnavailable)
	assert.Contains(t, err.Error(), "This Page Isn't Available")

	doc = mustDocument(t, `<div><span>  This video is no longer available </span></div>`)
	assert.ErrorIs(t, CheckAvailability(doc), types.ErrContentUnavailable)

	doc = mustDocument(t, `<div><p>This Page Isn't Available</p><span>Nice post!</span></div>`)
	assert.NoError(t, CheckAvailability(doc))
}

func TestHasElementText(t *testing.T) {
	doc := mustDocument(t, `<h1>Home</h1><h1> Watch </h1>`)
	assert.True(t, HasElementText(doc, "h1", "Watch"))
	assert.False(t, HasElementText(doc, "h2", "Watch"))
}

func TestFindViewCount(t *testing.T) {
	doc := mustDocument(t, `<span>Live</span><span>1.5M views</span>`)
	views := findViewCount(doc)
	require.NotNil(t, views)
	assert.Equal(t, 1500000, *views)

	assert.Nil(t, findViewCount(mustDocument(t, `<span>no counts here</span>`)))
}

func TestFindCount(t *testing.T) {
	doc := mustDocument(t, `<a>118K likes</a><a>125K followers</a>`)
	assert.Equal(t, 125000, *findCount(doc, followersPattern))
	assert.Equal(t, 118000, *findCount(doc, likesPattern))
}
