package extraction

import (
	"github.com/tidwall/gjson"
)

// imageViewerSieve handles a photo opened in the photo viewer. Page photos
// expose their owner on the media; user photos only through the creation story.
type imageViewerSieve struct{}

func (imageViewerSieve) Name() string { return "image_viewer" }
func (imageViewerSieve) Shape() Shape { return ShapeImage }

func viewerParts(objects []gjson.Result) (viewer, media gjson.Result, ok bool) {
	viewerObj, ok1 := findObject(objects, func(obj gjson.Result) bool {
		return hasKey(obj, "viewer_actor") && hasKey(obj, "display_comments")
	})
	mediaObj, ok2 := withPath(objects, "currMedia")
	if !ok1 || !ok2 {
		return gjson.Result{}, gjson.Result{}, false
	}
	return viewerObj, mediaObj.Get("currMedia"), true
}

func (imageViewerSieve) Check(objects []gjson.Result) bool {
	_, _, ok := viewerParts(objects)
	return ok
}

func (s imageViewerSieve) Sieve(objects []gjson.Result) (*Extraction, error) {
	viewer, media, _ := viewerParts(objects)

	e := &Extraction{}
	imageURL := str(media, "image.uri", "photo_image.uri")
	if imageURL == "" {
		return nil, missing(s.Name(), "image_url")
	}
	e.ImageURLs = []string{cleanURL(imageURL)}

	feedback := viewer.Get("comet_ufi_summary_and_actions_renderer.feedback")
	e.NumComments = optInt(viewer, "comment_count.total_count")
	if e.NumComments == nil {
		e.NumComments = optInt(feedback, commentCountPaths...)
	}
	e.NumShares = optInt(feedback, "share_count.count")
	e.ReshareWarning = optBool(feedback, "should_show_reshare_warning")
	e.Reactions = reactionsOf(feedback)
	e.ID = str(media, "id")

	creation, hasCreation := findObject(objects, func(obj gjson.Result) bool {
		return hasKey(obj, "creation_story") && hasKey(obj, "message")
	})
	if hasCreation {
		e.Text = str(creation, "message.text")
		e.ProfileLink = cleanURL(str(creation, "creation_story.comet_sections.actor_photo.story.actors.0.url"))
	}
	if e.Text == "" {
		e.Text = str(media, "message.text", "accessibility_caption_text")
	}
	if e.ProfileLink == "" {
		e.ProfileLink = cleanURL(str(media, "owner.url", "container_story.actors.0.url"))
	}
	if t, ok := timeOf(media, "created_time", "creation_time"); ok {
		e.CreatedAt = t
	} else if hasCreation {
		storyCreated(e, creation.Get("creation_story"))
	}
	return e, nil
}

// imageStorySieve handles a single photo attached to a story. The story is
// either a feed node or, on web. hosts, the fragment itself.
type imageStorySieve struct{}

func (imageStorySieve) Name() string { return "image_story" }
func (imageStorySieve) Shape() Shape { return ShapeImage }

func photoAttachmentURL(attachment gjson.Result) string {
	if u := str(attachment, "media.photo_image.uri"); u != "" {
		return cleanURL(u)
	}
	if attachment.Get("media.__typename").String() == photoTypename {
		return cleanURL(str(attachment, "media.image.uri", "media.viewer_image.uri"))
	}
	return ""
}

func isPhotoStory(node gjson.Result) bool {
	return photoAttachmentURL(storyAttachment(node)) != ""
}

// webStory finds a fragment that is itself a story with a photo attachment.
func webStory(objects []gjson.Result) (gjson.Result, bool) {
	return findObject(objects, func(obj gjson.Result) bool {
		return photoAttachmentURL(obj.Get(storyAttachmentPath)) != ""
	})
}

func (imageStorySieve) Check(objects []gjson.Result) bool {
	if _, _, ok := storyNodeWith(objects, isPhotoStory); ok {
		return true
	}
	_, ok := webStory(objects)
	return ok
}

func (s imageStorySieve) Sieve(objects []gjson.Result) (*Extraction, error) {
	e := &Extraction{}
	if node, feedback, ok := storyNodeWith(objects, isPhotoStory); ok {
		attachment := storyAttachment(node)
		e.ImageURLs = []string{photoAttachmentURL(attachment)}
		feedbackCounts(e, feedback)
		e.ID = str(attachment, "media.id")
		if e.ID == "" {
			e.ID = storyID(node)
		}
		e.Text = storyText(node)
		e.ProfileLink = storyProfileLink(node)
		storyCreated(e, node)
		return e, nil
	}

	story, _ := webStory(objects)
	attachment := story.Get(storyAttachmentPath)
	e.ImageURLs = []string{photoAttachmentURL(attachment)}
	if feedback, ok := firstOf(story,
		"feedback.comet_ufi_summary_and_actions_renderer.feedback",
		"comet_ufi_summary_and_actions_renderer.feedback",
		"feedback",
	); ok {
		feedbackCounts(e, feedback)
	}
	e.ID = str(story, "post_id", "id")
	if e.ID == "" {
		e.ID = str(attachment, "media.id")
	}
	e.Text = str(story, "message.text")
	e.ProfileLink = cleanURL(str(story, "actors.0.url"))
	if t, ok := timeOf(story, "creation_time", "created_time"); ok {
		e.CreatedAt = t
	}
	return e, nil
}

// imageGallerySieve handles posts with several photos and no video.
type imageGallerySieve struct{}

func (imageGallerySieve) Name() string { return "image_gallery" }
func (imageGallerySieve) Shape() Shape { return ShapeImage }

func isPhotoGallery(node gjson.Result) bool {
	attachment := storyAttachment(node)
	return galleryHas(attachment, photoTypename) && !galleryHas(attachment, videoTypename)
}

func (imageGallerySieve) Check(objects []gjson.Result) bool {
	_, _, ok := storyNodeWith(objects, isPhotoGallery)
	return ok
}

func (s imageGallerySieve) Sieve(objects []gjson.Result) (*Extraction, error) {
	node, feedback, _ := storyNodeWith(objects, isPhotoGallery)

	e := &Extraction{}
	storyAttachment(node).Get(subattachmentsPath).ForEach(func(_, item gjson.Result) bool {
		if u := str(item, "media.image.uri", "media.viewer_image.uri", "media.photo_image.uri"); u != "" {
			e.ImageURLs = append(e.ImageURLs, cleanURL(u))
		}
		return true
	})
	if len(e.ImageURLs) == 0 {
		return nil, missing(s.Name(), "image_url")
	}

	feedbackCounts(e, feedback)
	e.ID = storyID(node)
	e.Text = storyText(node)
	e.ProfileLink = storyProfileLink(node)
	storyCreated(e, node)
	return e, nil
}
