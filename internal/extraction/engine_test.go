package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facebook-extractor/pkg/types"
)

func TestEngineRun(t *testing.T) {
	engine := NewEngine(testLogger())
	result, err := engine.Run(fixtureHTML(t, "reel.json"))
	require.NoError(t, err)
	assert.Equal(t, ShapeReel, result.Shape)
	assert.Equal(t, 3, result.Fragments)
	assert.Zero(t, result.Skipped)
	require.NotNil(t, result.Extraction)
	assert.Equal(t, "809749953859034", result.Extraction.ID)
}

func TestEngineRunUnrecognized(t *testing.T) {
	engine := NewEngine(testLogger())
	result, err := engine.Run(fixtureHTML(t, "watch_page_legacy.json"))
	require.NoError(t, err)
	assert.Equal(t, ShapeVideo, result.Shape)
	assert.Nil(t, result.Extraction)
	assert.Len(t, result.Objects, 2)
}

func TestEngineRunMalformed(t *testing.T) {
	engine := NewEngine(testLogger())
	_, err := engine.Run(`<script>{"data":{"video":{}</script>`)
	assert.ErrorIs(t, err, types.ErrMalformedData)
}

func TestEngineRunSieveError(t *testing.T) {
	engine := NewEngine(testLogger())
	result, err := engine.Run(fixtureHTML(t, "video_page_no_url.json"))
	assert.ErrorIs(t, err, types.ErrVideoURLUnresolved)
	require.NotNil(t, result)
	assert.Nil(t, result.Extraction)
}
