package types

import (
	"fmt"
	"time"
)

// PostRecord is the normalized result of a post lookup.
type PostRecord struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Shape     string    `json:"shape"`
	Sieve     string    `json:"sieve"`
	HasVideo  bool      `json:"has_video"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`

	// nil means the count does not apply to this kind of post
	NumComments    *int           `json:"num_comments"`
	NumShares      *int           `json:"num_shares"`
	NumViews       *int           `json:"num_views"`
	ReshareWarning *bool          `json:"reshare_warning"`
	Reactions      map[string]int `json:"reactions"`
	ProfileLink    string         `json:"profile_link"`

	ImageURLs  []string `json:"image_urls,omitempty"`
	ImageFiles []string `json:"image_files,omitempty"`
	ImageFile  string   `json:"image_file,omitempty"`

	VideoURLs              []string `json:"video_urls,omitempty"`
	VideoFiles             []string `json:"video_files,omitempty"`
	VideoFile              string   `json:"video_file,omitempty"`
	VideoPreviewImageURLs  []string `json:"video_preview_image_urls,omitempty"`
	VideoPreviewImageFiles []string `json:"video_preview_image_files,omitempty"`
	VideoPreviewImageFile  string   `json:"video_preview_image_file,omitempty"`

	// Photos that sit next to videos in a mixed gallery.
	GalleryImageURLs  []string `json:"gallery_image_urls,omitempty"`
	GalleryImageFiles []string `json:"gallery_image_files,omitempty"`

	ScreenshotFile string      `json:"screenshot_file,omitempty"`
	User           *UserRecord `json:"user"`
}

// UserRecord describes a personal profile or a page.
type UserRecord struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Kind              string `json:"kind"`
	NumberOfFollowers *int   `json:"number_of_followers"`
	NumberOfLikes     *int   `json:"number_of_likes"`
	Verified          bool   `json:"verified"`
	Profile           string `json:"profile"`
	ProfileImageURL   string `json:"profile_image_url"`
	ProfileImageFile  string `json:"profile_image_file"`
	ProfileLink       string `json:"profile_link"`
}

const (
	UserKindPage = "page"
	UserKindUser = "user"
)

// TotalReactions sums every reaction bucket.
func (p *PostRecord) TotalReactions() int {
	total := 0
	for _, n := range p.Reactions {
		total += n
	}
	return total
}

func (p *PostRecord) hasImageFamily() bool {
	return len(p.ImageURLs) > 0 || len(p.ImageFiles) > 0 || p.ImageFile != ""
}

func (p *PostRecord) hasVideoFamily() bool {
	return len(p.VideoURLs) > 0 || len(p.VideoFiles) > 0 || p.VideoFile != "" ||
		len(p.VideoPreviewImageURLs) > 0 || len(p.VideoPreviewImageFiles) > 0 || p.VideoPreviewImageFile != ""
}

// Validate checks that the record is complete and that its media fields
// agree with HasVideo.
func (p *PostRecord) Validate() error {
	if p.CreatedAt.IsZero() {
		return fmt.Errorf("%w: created_at", ErrMissingField)
	}
	if p.HasVideo {
		if p.hasImageFamily() {
			return fmt.Errorf("video post carries image fields")
		}
		if len(p.VideoFiles) == 0 || p.VideoFile == "" {
			return fmt.Errorf("%w: video_file", ErrMissingField)
		}
		return nil
	}
	if p.hasVideoFamily() {
		return fmt.Errorf("non-video post carries video fields")
	}
	if len(p.GalleryImageFiles) > 0 {
		return fmt.Errorf("gallery images on a non-video post")
	}
	return nil
}

type PostFilter struct {
	MinReactions    int       `json:"min_reactions"`
	MaxReactions    int       `json:"max_reactions"`
	MinComments     int       `json:"min_comments"`
	MinShares       int       `json:"min_shares"`
	MinViews        int       `json:"min_views"`
	DaysBack        int       `json:"days_back"`
	Keywords        []string  `json:"keywords"`
	ExcludeKeywords []string  `json:"exclude_keywords"`
	Shapes          []string  `json:"shapes"`
	VideoOnly       bool      `json:"video_only"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
}

type FilterStats struct {
	TotalPosts        int `json:"total_posts"`
	FilteredPosts     int `json:"filtered_posts"`
	ReactionsFiltered int `json:"reactions_filtered"`
	CountsFiltered    int `json:"counts_filtered"`
	TimeFiltered      int `json:"time_filtered"`
	KeywordFiltered   int `json:"keyword_filtered"`
	ShapeFiltered     int `json:"shape_filtered"`
}

func (fs FilterStats) String() string {
	return fmt.Sprintf("Total: %d, Filtered: %d, Reactions: %d, Counts: %d, Time: %d, Keywords: %d, Shape: %d",
		fs.TotalPosts, fs.FilteredPosts, fs.ReactionsFiltered, fs.CountsFiltered, fs.TimeFiltered, fs.KeywordFiltered, fs.ShapeFiltered)
}

// IntPtr and BoolPtr build optional record fields.
func IntPtr(n int) *int { return &n }

func BoolPtr(b bool) *bool { return &b }
