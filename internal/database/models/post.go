package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"facebook-extractor/pkg/types"
)

type Post struct {
	ID                     int64          `json:"id" db:"id"`
	PostID                 string         `json:"post_id" db:"post_id"`
	URL                    string         `json:"url" db:"url"`
	Shape                  string         `json:"shape" db:"shape"`
	Sieve                  string         `json:"sieve" db:"sieve"`
	HasVideo               bool           `json:"has_video" db:"has_video"`
	Text                   string         `json:"text" db:"text"`
	PostedAt               time.Time      `json:"posted_at" db:"posted_at"`
	NumComments            sql.NullInt64  `json:"-" db:"num_comments"`
	NumShares              sql.NullInt64  `json:"-" db:"num_shares"`
	NumViews               sql.NullInt64  `json:"-" db:"num_views"`
	ReshareWarning         sql.NullBool   `json:"-" db:"reshare_warning"`
	Reactions              Reactions      `json:"reactions" db:"reactions"`
	TotalReactions         int            `json:"total_reactions" db:"total_reactions"`
	ProfileLink            string         `json:"profile_link" db:"profile_link"`
	ImageURLs              StringArray    `json:"image_urls" db:"image_urls"`
	ImageFiles             StringArray    `json:"image_files" db:"image_files"`
	VideoURLs              StringArray    `json:"video_urls" db:"video_urls"`
	VideoFiles             StringArray    `json:"video_files" db:"video_files"`
	VideoPreviewImageURLs  StringArray    `json:"video_preview_image_urls" db:"video_preview_image_urls"`
	VideoPreviewImageFiles StringArray    `json:"video_preview_image_files" db:"video_preview_image_files"`
	GalleryImageURLs       StringArray    `json:"gallery_image_urls" db:"gallery_image_urls"`
	GalleryImageFiles      StringArray    `json:"gallery_image_files" db:"gallery_image_files"`
	ScreenshotFile         string         `json:"screenshot_file" db:"screenshot_file"`
	ScrapedAt              time.Time      `json:"scraped_at" db:"scraped_at"`
	CreatedAt              time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at" db:"updated_at"`
}

// NewPost flattens a record into a posts row.
func NewPost(record *types.PostRecord) *Post {
	return &Post{
		PostID:                 record.ID,
		URL:                    record.URL,
		Shape:                  record.Shape,
		Sieve:                  record.Sieve,
		HasVideo:               record.HasVideo,
		Text:                   record.Text,
		PostedAt:               record.CreatedAt,
		NumComments:            nullInt(record.NumComments),
		NumShares:              nullInt(record.NumShares),
		NumViews:               nullInt(record.NumViews),
		ReshareWarning:         nullBool(record.ReshareWarning),
		Reactions:              Reactions(record.Reactions),
		TotalReactions:         record.TotalReactions(),
		ProfileLink:            record.ProfileLink,
		ImageURLs:              record.ImageURLs,
		ImageFiles:             record.ImageFiles,
		VideoURLs:              record.VideoURLs,
		VideoFiles:             record.VideoFiles,
		VideoPreviewImageURLs:  record.VideoPreviewImageURLs,
		VideoPreviewImageFiles: record.VideoPreviewImageFiles,
		GalleryImageURLs:       record.GalleryImageURLs,
		GalleryImageFiles:      record.GalleryImageFiles,
		ScreenshotFile:         record.ScreenshotFile,
	}
}

// Record rebuilds the post record. The author is not part of the row.
func (p *Post) Record() *types.PostRecord {
	return &types.PostRecord{
		ID:                     p.PostID,
		URL:                    p.URL,
		Shape:                  p.Shape,
		Sieve:                  p.Sieve,
		HasVideo:               p.HasVideo,
		Text:                   p.Text,
		CreatedAt:              p.PostedAt,
		NumComments:            intOf(p.NumComments),
		NumShares:              intOf(p.NumShares),
		NumViews:               intOf(p.NumViews),
		ReshareWarning:         boolOf(p.ReshareWarning),
		Reactions:              map[string]int(p.Reactions),
		ProfileLink:            p.ProfileLink,
		ImageURLs:              p.ImageURLs,
		ImageFiles:             p.ImageFiles,
		ImageFile:              first(p.ImageFiles),
		VideoURLs:              p.VideoURLs,
		VideoFiles:             p.VideoFiles,
		VideoFile:              first(p.VideoFiles),
		VideoPreviewImageURLs:  p.VideoPreviewImageURLs,
		VideoPreviewImageFiles: p.VideoPreviewImageFiles,
		VideoPreviewImageFile:  first(p.VideoPreviewImageFiles),
		GalleryImageURLs:       p.GalleryImageURLs,
		GalleryImageFiles:      p.GalleryImageFiles,
		ScreenshotFile:         p.ScreenshotFile,
	}
}

// StringArray for handling JSON arrays in PostgreSQL
type StringArray []string

func (sa StringArray) Value() (driver.Value, error) {
	if len(sa) == 0 {
		return "[]", nil
	}
	return json.Marshal(sa)
}

func (sa *StringArray) Scan(value interface{}) error {
	if value == nil {
		*sa = StringArray{}
		return nil
	}
	bytes, err := jsonBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, sa)
}

// Reactions stores the reaction buckets as a JSONB object.
type Reactions map[string]int

func (r Reactions) Value() (driver.Value, error) {
	if len(r) == 0 {
		return "{}", nil
	}
	return json.Marshal(map[string]int(r))
}

func (r *Reactions) Scan(value interface{}) error {
	if value == nil {
		*r = Reactions{}
		return nil
	}
	bytes, err := jsonBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, r)
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("type assertion to []byte failed")
	}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func intOf(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	return types.IntPtr(int(n.Int64))
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func boolOf(b sql.NullBool) *bool {
	if !b.Valid {
		return nil
	}
	return types.BoolPtr(b.Bool)
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
