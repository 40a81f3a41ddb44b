package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"facebook-extractor/internal/config"
	"facebook-extractor/internal/database/models"
	"facebook-extractor/pkg/types"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

type DB struct {
	conn   *sql.DB
	logger *logrus.Logger
}

func NewConnection(cfg *config.DatabaseConfig, logger *logrus.Logger) (*DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	logger.Infof("Connecting to database: host=%s port=%d dbname=%s user=%s", cfg.Host, cfg.Port, cfg.Name, cfg.User)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established")
	return New(conn, logger), nil
}

// New wraps an open connection.
func New(conn *sql.DB, logger *logrus.Logger) *DB {
	return &DB{conn: conn, logger: logger}
}

func (db *DB) RunMigrations(ctx context.Context) error {
	db.logger.Info("Running database migrations...")

	migrationFiles, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("failed to find migration files: %w", err)
	}

	names := make([]string, 0, len(migrationFiles))
	for _, f := range migrationFiles {
		names = append(names, f.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		db.logger.Infof("Running migration: %s", name)

		content, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		if _, err := db.conn.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
	}

	db.logger.Info("Migrations completed successfully")
	return nil
}

// SavePost upserts a post by URL, saving its author first.
func (db *DB) SavePost(ctx context.Context, record *types.PostRecord) error {
	if record.User != nil {
		if err := db.SaveUser(ctx, record.User); err != nil {
			return err
		}
	}

	post := models.NewPost(record)
	query := `
		INSERT INTO posts (
			post_id, url, shape, sieve, has_video, text, posted_at,
			num_comments, num_shares, num_views, reshare_warning, reactions, total_reactions,
			profile_link, image_urls, image_files, video_urls, video_files,
			video_preview_image_urls, video_preview_image_files,
			gallery_image_urls, gallery_image_files, screenshot_file, scraped_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, NOW()
		) ON CONFLICT (url) DO UPDATE SET
			num_comments = EXCLUDED.num_comments,
			num_shares = EXCLUDED.num_shares,
			num_views = EXCLUDED.num_views,
			reshare_warning = EXCLUDED.reshare_warning,
			reactions = EXCLUDED.reactions,
			total_reactions = EXCLUDED.total_reactions,
			image_files = EXCLUDED.image_files,
			video_files = EXCLUDED.video_files,
			video_preview_image_files = EXCLUDED.video_preview_image_files,
			gallery_image_files = EXCLUDED.gallery_image_files,
			screenshot_file = EXCLUDED.screenshot_file,
			scraped_at = EXCLUDED.scraped_at,
			updated_at = NOW()`

	_, err := db.conn.ExecContext(ctx, query,
		post.PostID, post.URL, post.Shape, post.Sieve, post.HasVideo, post.Text, post.PostedAt,
		post.NumComments, post.NumShares, post.NumViews, post.ReshareWarning, post.Reactions, post.TotalReactions,
		post.ProfileLink, post.ImageURLs, post.ImageFiles, post.VideoURLs, post.VideoFiles,
		post.VideoPreviewImageURLs, post.VideoPreviewImageFiles,
		post.GalleryImageURLs, post.GalleryImageFiles, post.ScreenshotFile,
	)
	if err != nil {
		return fmt.Errorf("failed to save post %s: %w", record.URL, err)
	}
	return nil
}

// SaveUser upserts a profile by its link.
func (db *DB) SaveUser(ctx context.Context, record *types.UserRecord) error {
	user := models.NewUser(record)
	query := `
		INSERT INTO users (
			user_id, name, kind, followers, likes, verified, profile,
			profile_image_url, profile_image_file, profile_link, scraped_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW()
		) ON CONFLICT (profile_link) DO UPDATE SET
			name = EXCLUDED.name,
			followers = EXCLUDED.followers,
			likes = EXCLUDED.likes,
			verified = EXCLUDED.verified,
			profile = EXCLUDED.profile,
			profile_image_url = EXCLUDED.profile_image_url,
			profile_image_file = EXCLUDED.profile_image_file,
			scraped_at = EXCLUDED.scraped_at`

	_, err := db.conn.ExecContext(ctx, query,
		user.UserID, user.Name, user.Kind, user.Followers, user.Likes, user.Verified, user.Profile,
		user.ProfileImageURL, user.ProfileImageFile, user.ProfileLink,
	)
	if err != nil {
		return fmt.Errorf("failed to save user %s: %w", record.ProfileLink, err)
	}
	return nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}
