package models

import (
	"database/sql"
	"time"

	"facebook-extractor/pkg/types"
)

type User struct {
	ID               int64         `json:"id" db:"id"`
	UserID           string        `json:"user_id" db:"user_id"`
	Name             string        `json:"name" db:"name"`
	Kind             string        `json:"kind" db:"kind"`
	Followers        sql.NullInt64 `json:"-" db:"followers"`
	Likes            sql.NullInt64 `json:"-" db:"likes"`
	Verified         bool          `json:"verified" db:"verified"`
	Profile          string        `json:"profile" db:"profile"`
	ProfileImageURL  string        `json:"profile_image_url" db:"profile_image_url"`
	ProfileImageFile string        `json:"profile_image_file" db:"profile_image_file"`
	ProfileLink      string        `json:"profile_link" db:"profile_link"`
	ScrapedAt        time.Time     `json:"scraped_at" db:"scraped_at"`
}

func NewUser(record *types.UserRecord) *User {
	return &User{
		UserID:           record.ID,
		Name:             record.Name,
		Kind:             record.Kind,
		Followers:        nullInt(record.NumberOfFollowers),
		Likes:            nullInt(record.NumberOfLikes),
		Verified:         record.Verified,
		Profile:          record.Profile,
		ProfileImageURL:  record.ProfileImageURL,
		ProfileImageFile: record.ProfileImageFile,
		ProfileLink:      record.ProfileLink,
	}
}

func (u *User) Record() *types.UserRecord {
	return &types.UserRecord{
		ID:                u.UserID,
		Name:              u.Name,
		Kind:              u.Kind,
		NumberOfFollowers: intOf(u.Followers),
		NumberOfLikes:     intOf(u.Likes),
		Verified:          u.Verified,
		Profile:           u.Profile,
		ProfileImageURL:   u.ProfileImageURL,
		ProfileImageFile:  u.ProfileImageFile,
		ProfileLink:       u.ProfileLink,
	}
}
