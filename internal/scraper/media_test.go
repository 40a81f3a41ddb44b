package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facebook-extractor/internal/config"
	"facebook-extractor/pkg/types"
)

func TestMediaExtension(t *testing.T) {
	assert.Equal(t, ".mp4", mediaExtension("https://video.xx.fbcdn.net/v/clip.mp4?efg=abc&oh=1"))
	assert.Equal(t, ".jpg", mediaExtension("https://scontent.xx.fbcdn.net/v/photo.jpg"))
	assert.Equal(t, "", mediaExtension("https://scontent.xx.fbcdn.net/v/photo.webp"))
	assert.Equal(t, "", mediaExtension("https://scontent.xx.fbcdn.net/v/photo"))
	assert.Equal(t, "", mediaExtension("https://scontent.xx.fbcdn.net/v/photo.j-g"))
}

func TestMediaStoreSave(t *testing.T) {
	store, err := NewMediaStore(filepath.Join(t.TempDir(), "forki"))
	require.NoError(t, err)

	first, err := store.Save([]byte("one"), ".jpg")
	require.NoError(t, err)
	second, err := store.Save([]byte("two"), ".jpg")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(filepath.Base(first), mediaFilePrefix))
	assert.Equal(t, ".jpg", filepath.Ext(first))

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))
}

func newTestDownloader(t *testing.T) *MediaDownloader {
	t.Helper()
	store, err := NewMediaStore(t.TempDir())
	require.NoError(t, err)
	return NewMediaDownloader(config.MediaConfig{Timeout: 5, RequestsPerSecond: 100}, "test-agent", store, testLogger())
}

func TestMediaDownloaderRetrieve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/clip.mp4":
			assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
			w.Write([]byte("video-bytes"))
		case "/busy.jpg":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	downloader := newTestDownloader(t)

	file, err := downloader.Retrieve(context.Background(), server.URL+"/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, ".mp4", filepath.Ext(file))
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(data))

	_, err = downloader.Retrieve(context.Background(), server.URL+"/busy.jpg")
	require.Error(t, err)
	assert.True(t, types.IsRetryable(err))

	_, err = downloader.Retrieve(context.Background(), server.URL+"/gone.jpg")
	require.Error(t, err)
	assert.False(t, types.IsRetryable(err))
}
