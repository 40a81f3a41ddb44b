package extraction

import (
	"github.com/tidwall/gjson"
)

// Shape tags the kind of content a set of fragments describes.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeVideo
	ShapeReel
	ShapeCommentVideo
	ShapeImage
	ShapeText
	ShapePageProfile
	ShapeUserProfile
)

var shapeNames = map[Shape]string{
	ShapeUnknown:      "unknown",
	ShapeVideo:        "video",
	ShapeReel:         "reel",
	ShapeCommentVideo: "comment_video",
	ShapeImage:        "image",
	ShapeText:         "text",
	ShapePageProfile:  "page_profile",
	ShapeUserProfile:  "user_profile",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsVideo reports whether the shape carries the video media family.
func (s Shape) IsVideo() bool {
	return s == ShapeVideo || s == ShapeReel || s == ShapeCommentVideo
}

const (
	storyPath            = "node.comet_sections.content.story"
	storyAttachmentPath  = "attachments.0.styles.attachment"
	commentVideoTypePath = "nodes.0.attachments.0.style_type_renderer.attachment.media.__typename"
	subattachmentsPath   = "all_subattachments.nodes"
	photoImageSuffix     = ".media.photo_image"
	reelContextPath      = "video.creation_story.short_form_video_context"
	videoTypename        = "Video"
	photoTypename        = "Photo"
)

// Classify probes objects for shape signatures. Several probes can match the
// same page; video wins over comment video, which wins over image, then text.
func Classify(objects []gjson.Result) Shape {
	switch {
	case probeVideo(objects):
		if _, ok := withPath(objects, reelContextPath); ok {
			return ShapeReel
		}
		return ShapeVideo
	case probeCommentVideo(objects):
		return ShapeCommentVideo
	case probeImage(objects):
		return ShapeImage
	case probeText(objects):
		return ShapeText
	}
	return ShapeUnknown
}

func probeVideo(objects []gjson.Result) bool {
	for _, obj := range objects {
		if hasKey(obj, "video") || hasKey(obj, "is_live_streaming") {
			return true
		}
		attachment := obj.Get(storyPath + "." + storyAttachmentPath)
		if attachment.Get("media.__typename").String() == videoTypename {
			return true
		}
		if galleryHas(attachment, videoTypename) {
			return true
		}
	}
	return false
}

func probeCommentVideo(objects []gjson.Result) bool {
	_, ok := findObject(objects, func(obj gjson.Result) bool {
		return obj.Get(commentVideoTypePath).String() == videoTypename
	})
	return ok
}

func probeImage(objects []gjson.Result) bool {
	for _, obj := range objects {
		if hasKey(obj, "currMedia") || hasKey(obj, "image") {
			return true
		}
		if _, ok := dig(obj, storyAttachmentPath+photoImageSuffix); ok {
			return true
		}
		attachment := obj.Get(storyPath + "." + storyAttachmentPath)
		if _, ok := dig(attachment, "media.photo_image"); ok {
			return true
		}
		if attachment.Get("media.__typename").String() == photoTypename {
			return true
		}
		if galleryHas(attachment, photoTypename) {
			return true
		}
	}
	return false
}

func probeText(objects []gjson.Result) bool {
	_, ok := findObject(objects, func(obj gjson.Result) bool {
		story, ok := dig(obj, storyPath)
		if !ok || !hasMessage(story) {
			return false
		}
		return !hasAttachmentMedia(story)
	})
	return ok
}

func galleryHas(attachment gjson.Result, typename string) bool {
	return attachment.Get(subattachmentsPath + `.#(media.__typename=="` + typename + `")`).Exists()
}

func hasMessage(story gjson.Result) bool {
	_, ok := firstOf(story, "message.text", "comet_sections.message.story.message.text")
	return ok
}

func hasAttachmentMedia(story gjson.Result) bool {
	attachment := story.Get(storyAttachmentPath)
	if _, ok := dig(attachment, "media"); ok {
		return true
	}
	_, ok := dig(attachment, subattachmentsPath)
	return ok
}

// ClassifyProfile tells page profiles apart from personal ones.
func ClassifyProfile(objects []gjson.Result) Shape {
	for _, obj := range objects {
		if _, ok := firstOf(obj, "page.id", "user.delegate_page.id", "user.profile_header_renderer.user.delegate_page.id"); ok {
			return ShapePageProfile
		}
		if obj.Get("user.__typename").String() == "Page" {
			return ShapePageProfile
		}
	}
	return ShapeUserProfile
}
