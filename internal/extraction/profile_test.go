package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractProfilePage(t *testing.T) {
	p := ExtractProfile(loadFixture(t, "profile_page.json"))
	assert.Equal(t, ShapePageProfile, p.Shape)
	assert.Equal(t, "100064027502345", p.ID)
	assert.Equal(t, "Nature Photos", p.Name)
	assert.True(t, p.Verified)
	assert.Equal(t, "Daily landscapes from around the world.", p.Bio)
	assert.Equal(t, "https://scontent.xx.fbcdn.net/v/nature_avatar.jpg", p.ImageURL)
	require.NotNil(t, p.Followers)
	assert.Equal(t, 125000, *p.Followers)
	require.NotNil(t, p.Likes)
	assert.Equal(t, 118000, *p.Likes)
}

func TestExtractProfileUser(t *testing.T) {
	p := ExtractProfile(loadFixture(t, "profile_user.json"))
	assert.Equal(t, ShapeUserProfile, p.Shape)
	assert.Equal(t, "100003", p.ID)
	assert.Equal(t, "Alex User", p.Name)
	assert.False(t, p.Verified)
	assert.Equal(t, "Gardener.", p.Bio)
	assert.Equal(t, "https://scontent.xx.fbcdn.net/v/alex_avatar.jpg", p.ImageURL)
	assert.Nil(t, p.Followers)
	assert.Nil(t, p.Likes)
}

func TestExtractProfileEmpty(t *testing.T) {
	p := ExtractProfile(nil)
	assert.Equal(t, ShapeUserProfile, p.Shape)
	assert.Empty(t, p.Name)
}
