package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"facebook-extractor/internal/extraction"
	"facebook-extractor/pkg/types"
)

// UserScraper turns a profile or page URL into a UserRecord.
type UserScraper struct {
	browser Browser
	engine  *extraction.Engine
	media   MediaRetriever
	logger  *logrus.Logger
}

func NewUserScraper(browser Browser, engine *extraction.Engine, media MediaRetriever, logger *logrus.Logger) *UserScraper {
	return &UserScraper{browser: browser, engine: engine, media: media, logger: logger}
}

func (us *UserScraper) Parse(ctx context.Context, rawURL string) (*types.UserRecord, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	page, err := us.browser.Visit(ctx, target)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := page.Close(); err != nil {
			us.logger.WithError(err).Warn("Failed to close page")
		}
	}()

	doc, err := parseDocument(page.HTML())
	if err != nil {
		return nil, err
	}
	if err := CheckAvailability(doc); err != nil {
		return nil, err
	}

	result, err := us.engine.Parse(page.HTML())
	if err != nil {
		return nil, err
	}
	profile := extraction.ExtractProfile(result.Objects)
	fillFromDocument(&profile, doc)

	if profile.Name == "" {
		return nil, &types.UnhandledContentError{
			URL:       rawURL,
			Shape:     profile.Shape.String(),
			Fragments: result.Fragments,
			Sample:    extraction.TopLevelKeys(result.Objects, unhandledSampleKeys),
		}
	}

	record := &types.UserRecord{
		ID:                profile.ID,
		Name:              profile.Name,
		Kind:              types.UserKindUser,
		NumberOfFollowers: profile.Followers,
		Verified:          profile.Verified,
		Profile:           profile.Bio,
		ProfileImageURL:   profile.ImageURL,
		ProfileLink:       rawURL,
	}
	if profile.Shape == extraction.ShapePageProfile {
		record.Kind = types.UserKindPage
		record.NumberOfLikes = profile.Likes
	}
	if record.ID == "" {
		record.ID = profileIDFromURL(target)
	}

	if record.ProfileImageURL != "" {
		if record.ProfileImageFile, err = us.media.Retrieve(ctx, record.ProfileImageURL); err != nil {
			return nil, fmt.Errorf("failed to retrieve profile image: %w", err)
		}
	}

	us.logger.WithFields(logrus.Fields{
		"url":  rawURL,
		"id":   record.ID,
		"kind": record.Kind,
	}).Info("Profile extracted")
	return record, nil
}

// fillFromDocument completes profile fields the embedded data did not carry.
func fillFromDocument(profile *extraction.Profile, doc *goquery.Document) {
	if profile.Name == "" {
		profile.Name = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if profile.Name == "" {
		profile.Name = metaContent(doc, "og:title")
	}
	if profile.Followers == nil {
		profile.Followers = findCount(doc, followersPattern)
	}
	if profile.Likes == nil && profile.Shape == extraction.ShapePageProfile {
		profile.Likes = findCount(doc, likesPattern)
	}
	if profile.ImageURL == "" {
		profile.ImageURL = metaContent(doc, "og:image")
	}
	if profile.Bio == "" {
		profile.Bio = metaContent(doc, "og:description")
	}
}

// profileIDFromURL reads the numeric id of profile.php links, or the vanity
// name otherwise.
func profileIDFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if id := u.Query().Get("id"); id != "" {
		return id
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) > 0 && segments[0] != "profile.php" {
		return segments[0]
	}
	return ""
}
