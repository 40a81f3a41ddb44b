package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facebook-extractor/pkg/types"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(conn, logger), mock
}

func anyArgs(n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func samplePost() *types.PostRecord {
	return &types.PostRecord{
		ID:          "809749953859034",
		URL:         "https://www.facebook.com/reel/809749953859034",
		Shape:       "reel",
		Sieve:       "reel",
		HasVideo:    true,
		CreatedAt:   time.Unix(1689646427, 0).UTC(),
		NumComments: types.IntPtr(1078),
		NumShares:   types.IntPtr(8100),
		Reactions:   map[string]int{"num_likes": 9000},
		ProfileLink: "https://www.facebook.com/reelcreator",
		VideoURLs:   []string{"https://video.xx.fbcdn.net/v/reel_720.mp4"},
		VideoFiles:  []string{"/tmp/forki/facebook_media_1.mp4"},
		VideoFile:   "/tmp/forki/facebook_media_1.mp4",
	}
}

func TestRunMigrations(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS posts").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.RunMigrations(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePostWithUser(t *testing.T) {
	db, mock := newMockDB(t)
	record := samplePost()
	record.User = &types.UserRecord{
		ID:          "100064027502345",
		Name:        "Reel Creator",
		Kind:        types.UserKindPage,
		ProfileLink: "https://www.facebook.com/reelcreator",
	}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(anyArgs(10)...).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO posts").
		WithArgs(anyArgs(23)...).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, db.SavePost(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePostError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO posts").WillReturnError(sql.ErrConnDone)

	err := db.SavePost(context.Background(), samplePost())
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrConnDone))
	assert.Contains(t, err.Error(), "reel/809749953859034")
}

func postRow() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "post_id", "url", "shape", "sieve", "has_video", "text", "posted_at",
		"num_comments", "num_shares", "num_views", "reshare_warning", "reactions", "total_reactions",
		"profile_link", "image_urls", "image_files", "video_urls", "video_files",
		"video_preview_image_urls", "video_preview_image_files",
		"gallery_image_urls", "gallery_image_files", "screenshot_file",
		"scraped_at", "created_at", "updated_at",
	}).AddRow(
		1, "809749953859034", "https://www.facebook.com/reel/809749953859034", "reel", "reel", true, "", time.Unix(1689646427, 0).UTC(),
		1078, 8100, nil, nil, []byte(`{"num_likes":9000}`), 9000,
		"https://www.facebook.com/reelcreator", []byte(`[]`), []byte(`[]`),
		[]byte(`["https://video.xx.fbcdn.net/v/reel_720.mp4"]`), []byte(`["/tmp/forki/facebook_media_1.mp4"]`),
		[]byte(`[]`), []byte(`[]`), []byte(`[]`), []byte(`[]`), "",
		now, now, now,
	)
}

func TestGetPostsWithPagination(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT (.+) FROM posts WHERE total_reactions >= \\$1").
		WithArgs(1000, 20, 20).
		WillReturnRows(postRow())

	posts, err := db.GetPostsWithPagination(context.Background(), 2, 20, 1000)
	require.NoError(t, err)
	require.Len(t, posts, 1)

	record := posts[0].Record()
	assert.Equal(t, "809749953859034", record.ID)
	assert.Equal(t, 1078, *record.NumComments)
	assert.Nil(t, record.NumViews)
	assert.Nil(t, record.ReshareWarning)
	assert.Equal(t, map[string]int{"num_likes": 9000}, record.Reactions)
	assert.Equal(t, "/tmp/forki/facebook_media_1.mp4", record.VideoFile)
	assert.NoError(t, record.Validate())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPostsByShape(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT (.+) FROM posts WHERE shape = \\$1").
		WithArgs("reel", 50).
		WillReturnRows(postRow())

	posts, err := db.GetPostsByShape(context.Background(), "reel", 50)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestGetPostsCount(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM posts WHERE total_reactions").
		WithArgs(0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := db.GetPostsCount(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestGetUserNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("FROM users WHERE profile_link").WillReturnError(sql.ErrNoRows)

	user, err := db.GetUser(context.Background(), "https://www.facebook.com/ghost")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestGetScrapingStats(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\), COUNT\\(\\*\\) FILTER").
		WillReturnRows(sqlmock.NewRows([]string{"total", "video"}).AddRow(10, 4))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT AVG\\(total_reactions\\)").
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(nil))
	mock.ExpectQuery("SELECT MAX\\(scraped_at\\)").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow("2024-05-01 10:00:00+00"))
	mock.ExpectQuery("SELECT shape, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"shape", "count"}).AddRow("reel", 4).AddRow("image", 6))
	mock.ExpectQuery("SELECT sieve, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"sieve", "count"}).AddRow("reel", 4))

	stats, err := db.GetScrapingStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, stats["total_posts"])
	assert.Equal(t, 4, stats["video_posts"])
	assert.Equal(t, 3, stats["total_users"])
	assert.Equal(t, 0.0, stats["average_reactions"])
	assert.Equal(t, map[string]int{"reel": 4, "image": 6}, stats["posts_by_shape"])
	assert.Equal(t, map[string]int{"reel": 4}, stats["posts_by_sieve"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
