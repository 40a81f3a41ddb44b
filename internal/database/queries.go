package database

import (
	"context"
	"database/sql"
	"fmt"

	"facebook-extractor/internal/database/models"
)

const postColumns = `id, post_id, url, shape, sieve, has_video, text, posted_at,
	num_comments, num_shares, num_views, reshare_warning, reactions, total_reactions,
	profile_link, image_urls, image_files, video_urls, video_files,
	video_preview_image_urls, video_preview_image_files,
	gallery_image_urls, gallery_image_files, screenshot_file,
	scraped_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	post := &models.Post{}
	err := row.Scan(
		&post.ID, &post.PostID, &post.URL, &post.Shape, &post.Sieve, &post.HasVideo, &post.Text, &post.PostedAt,
		&post.NumComments, &post.NumShares, &post.NumViews, &post.ReshareWarning, &post.Reactions, &post.TotalReactions,
		&post.ProfileLink, &post.ImageURLs, &post.ImageFiles, &post.VideoURLs, &post.VideoFiles,
		&post.VideoPreviewImageURLs, &post.VideoPreviewImageFiles,
		&post.GalleryImageURLs, &post.GalleryImageFiles, &post.ScreenshotFile,
		&post.ScrapedAt, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan post: %w", err)
	}
	return post, nil
}

func (db *DB) queryPosts(ctx context.Context, query string, args ...interface{}) ([]*models.Post, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// GetPostsWithPagination retrieves posts with pagination support
func (db *DB) GetPostsWithPagination(ctx context.Context, page, pageSize, minReactions int) ([]*models.Post, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + postColumns + `
		FROM posts
		WHERE total_reactions >= $1
		ORDER BY total_reactions DESC, scraped_at DESC
		LIMIT $2 OFFSET $3`
	return db.queryPosts(ctx, query, minReactions, pageSize, offset)
}

// GetPostsCount returns the total count of posts matching criteria
func (db *DB) GetPostsCount(ctx context.Context, minReactions int) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE total_reactions >= $1`, minReactions).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get posts count: %w", err)
	}
	return count, nil
}

func (db *DB) GetPostsByShape(ctx context.Context, shape string, limit int) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + `
		FROM posts
		WHERE shape = $1
		ORDER BY posted_at DESC
		LIMIT $2`
	return db.queryPosts(ctx, query, shape, limit)
}

// GetPostsForExport retrieves posts for CSV export
func (db *DB) GetPostsForExport(ctx context.Context, minReactions int) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + `
		FROM posts
		WHERE total_reactions >= $1
		ORDER BY total_reactions DESC`
	return db.queryPosts(ctx, query, minReactions)
}

func (db *DB) GetUser(ctx context.Context, profileLink string) (*models.User, error) {
	user := &models.User{}
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, user_id, name, kind, followers, likes, verified, profile,
		       profile_image_url, profile_image_file, profile_link, scraped_at
		FROM users WHERE profile_link = $1`, profileLink).Scan(
		&user.ID, &user.UserID, &user.Name, &user.Kind, &user.Followers, &user.Likes, &user.Verified,
		&user.Profile, &user.ProfileImageURL, &user.ProfileImageFile, &user.ProfileLink, &user.ScrapedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetScrapingStats returns comprehensive scraping statistics
func (db *DB) GetScrapingStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalPosts, videoPosts int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(*) FILTER (WHERE has_video) FROM posts`).Scan(&totalPosts, &videoPosts)
	if err != nil {
		return nil, fmt.Errorf("failed to get total posts: %w", err)
	}
	stats["total_posts"] = totalPosts
	stats["video_posts"] = videoPosts

	var totalUsers int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&totalUsers); err != nil {
		return nil, fmt.Errorf("failed to get total users: %w", err)
	}
	stats["total_users"] = totalUsers

	var avgReactions sql.NullFloat64
	if err := db.conn.QueryRowContext(ctx, `SELECT AVG(total_reactions) FROM posts`).Scan(&avgReactions); err != nil {
		return nil, fmt.Errorf("failed to get average reactions: %w", err)
	}
	if avgReactions.Valid {
		stats["average_reactions"] = avgReactions.Float64
	} else {
		stats["average_reactions"] = 0.0
	}

	var lastScraped sql.NullString
	if err := db.conn.QueryRowContext(ctx, `SELECT MAX(scraped_at)::text FROM posts`).Scan(&lastScraped); err != nil {
		return nil, fmt.Errorf("failed to get last scraped time: %w", err)
	}
	if lastScraped.Valid {
		stats["last_scraped_at"] = lastScraped.String
	} else {
		stats["last_scraped_at"] = "Never"
	}

	byShape, err := db.countBy(ctx, "shape")
	if err != nil {
		return nil, err
	}
	stats["posts_by_shape"] = byShape

	bySieve, err := db.countBy(ctx, "sieve")
	if err != nil {
		return nil, err
	}
	stats["posts_by_sieve"] = bySieve

	return stats, nil
}

// countBy groups posts by a fixed column name.
func (db *DB) countBy(ctx context.Context, column string) (map[string]int, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+column+`, COUNT(*) FROM posts GROUP BY `+column)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts by %s: %w", column, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan %s count: %w", column, err)
		}
		counts[key] = count
	}
	return counts, rows.Err()
}

// Ping checks if the database connection is alive
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}
