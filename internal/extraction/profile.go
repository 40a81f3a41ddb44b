package extraction

import (
	"github.com/tidwall/gjson"
)

// Profile holds the profile fields recoverable from embedded data. Zero
// values mean the page did not carry them.
type Profile struct {
	Shape     Shape
	ID        string
	Name      string
	Verified  bool
	Bio       string
	ImageURL  string
	Followers *int
	Likes     *int
}

// ExtractProfile reads profile header, intro card and page fragments.
func ExtractProfile(objects []gjson.Result) Profile {
	p := Profile{Shape: ClassifyProfile(objects)}

	if obj, ok := withPath(objects, "user.profile_header_renderer.user"); ok {
		user := obj.Get("user.profile_header_renderer.user")
		p.ID = str(user, "id")
		p.Name = str(user, "name")
		p.Verified = user.Get("is_verified").Bool()
		p.ImageURL = cleanURL(str(user, "profilePicLarge.uri", "profilePicNormal.uri", "profile_picture.uri"))
	}
	if obj, ok := withPath(objects, "user.profilePicLarge"); ok && p.ImageURL == "" {
		p.ImageURL = cleanURL(str(obj, "user.profilePicLarge.uri"))
		if p.ID == "" {
			p.ID = str(obj, "user.id")
		}
	}
	if obj, ok := withPath(objects, "page.id"); ok {
		page := obj.Get("page")
		if p.ID == "" {
			p.ID = str(page, "id")
		}
		if p.Name == "" {
			p.Name = str(page, "name")
		}
		p.Verified = p.Verified || page.Get("is_verified").Bool()
		p.Followers = optInt(page, "follower_count", "page_likers.global_followers_count")
		p.Likes = optInt(page, "page_likers.global_likers_count", "likers_count")
	}
	if obj, ok := firstWithPath(objects, "profile_intro_card.bio.text", "user.profile_intro_card.bio.text"); ok {
		p.Bio = str(obj, "profile_intro_card.bio.text", "user.profile_intro_card.bio.text")
	}
	if p.Shape != ShapePageProfile {
		p.Likes = nil
	}
	return p
}

func firstWithPath(objects []gjson.Result, paths ...string) (gjson.Result, bool) {
	return findObject(objects, func(obj gjson.Result) bool {
		_, ok := firstOf(obj, paths...)
		return ok
	})
}
