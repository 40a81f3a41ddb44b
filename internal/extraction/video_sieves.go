package extraction

import (
	"time"

	"github.com/tidwall/gjson"

	"facebook-extractor/pkg/types"
)

const overlayWarningTypename = "OverlayWarningScreenViewModel"

func videoURLError(sieve string) error {
	return &types.SieveError{Sieve: sieve, Field: "video_url", Err: types.ErrVideoURLUnresolved}
}

// videoStory returns the creation story of the first fragment carrying a
// top-level video key.
func videoStory(objects []gjson.Result) (gjson.Result, bool) {
	obj, ok := findObject(objects, func(obj gjson.Result) bool { return hasKey(obj, "video") })
	if !ok {
		return gjson.Result{}, false
	}
	return firstOf(obj, "video.creation_story", "video.story")
}

func totalCommentFeedback(objects []gjson.Result) (gjson.Result, bool) {
	obj, ok := withPath(objects, "feedback.total_comment_count")
	if !ok {
		return gjson.Result{}, false
	}
	return obj.Get("feedback"), true
}

// watchTabSieve handles videos opened from the watch tab, both regular and
// live. Live videos carry their feedback inline on the story.
type watchTabSieve struct{}

func (watchTabSieve) Name() string { return "watch_tab" }
func (watchTabSieve) Shape() Shape { return ShapeVideo }

func (watchTabSieve) Check(objects []gjson.Result) bool {
	story, ok := videoStory(objects)
	if !ok {
		return false
	}
	media := story.Get("attachments.0.media")
	if !media.IsObject() {
		return false
	}
	if _, ok := resolveVideoURL(media, story.Get("short_form_video_context.playback_video")); !ok {
		return false
	}
	if _, ok := dig(story, "feedback_context.feedback_target_with_context"); ok {
		return true
	}
	_, ok = totalCommentFeedback(objects)
	return ok
}

func (s watchTabSieve) Sieve(objects []gjson.Result) (*Extraction, error) {
	story, _ := videoStory(objects)
	media := story.Get("attachments.0.media")
	playback := story.Get("short_form_video_context.playback_video")

	e := &Extraction{HasVideo: true}
	videoURL, ok := resolveVideoURL(media, playback)
	if !ok {
		return nil, videoURLError(s.Name())
	}
	e.VideoURLs = []string{videoURL}

	preview := previewImageURL(media)
	if preview == "" {
		preview = cleanURL(str(story, "short_form_video_context.video.first_frame_thumbnail"))
	}
	if preview == "" {
		return nil, missing(s.Name(), "video_preview_image_url")
	}
	e.VideoPreviewImageURLs = []string{preview}

	feedback, ok := dig(story, "feedback_context.feedback_target_with_context")
	if !ok {
		if feedback, ok = totalCommentFeedback(objects); !ok {
			return nil, missing(s.Name(), "feedback")
		}
	}
	e.NumComments = optInt(feedback, commentCountPaths...)
	e.NumViews = optInt(feedback, viewCountPaths...)
	e.ReshareWarning = optBool(feedback, "should_show_reshare_warning")
	e.Reactions = reactionsOf(feedback)

	e.ID = str(story, "shareable.id")
	if e.ID == "" {
		e.ID = str(media, "id")
	}
	e.ProfileLink = cleanURL(str(media, "owner.url"))
	if e.ProfileLink == "" {
		e.ProfileLink = cleanURL(str(story, "short_form_video_context.video_owner.url"))
	}
	if e.ProfileLink == "" {
		if obj, ok := withPath(objects, "attachments.0.media.creation_story"); ok {
			e.ProfileLink = cleanURL(str(obj, "attachments.0.media.creation_story.comet_sections.title.story.actors.0.url"))
		}
	}
	e.Text = watchTabText(objects, media)
	if t, ok := timeOf(media, "publish_time"); ok {
		e.CreatedAt = t
	} else {
		storyCreated(e, story)
	}
	return e, nil
}

func watchTabText(objects []gjson.Result, media gjson.Result) string {
	if obj, ok := withPath(objects, "attachments.0.media"); ok {
		attached := obj.Get("attachments.0.media")
		if text := str(attached, "title.text"); text != "" {
			return text
		}
		if text := str(attached, "creation_story.comet_sections.message.story.message.text"); text != "" {
			return text
		}
	}
	return str(media, "savable_description.text", "title.text")
}

// videoPageSieve handles a video post opened on its own permalink.
type videoPageSieve struct{}

func (videoPageSieve) Name() string { return "video_page" }
func (videoPageSieve) Shape() Shape { return ShapeVideo }

func (videoPageSieve) Check(objects []gjson.Result) bool {
	_, _, ok := storyNodeWith(objects, isVideoStory)
	return ok
}

func isVideoStory(node gjson.Result) bool {
	return storyAttachment(node).Get("media.__typename").String() == videoTypename
}

func (s videoPageSieve) Sieve(objects []gjson.Result) (*Extraction, error) {
	node, feedback, _ := storyNodeWith(objects, isVideoStory)
	media := storyAttachment(node).Get("media")

	e := &Extraction{HasVideo: true}
	videoURL, ok := resolveVideoURL(media)
	if !ok {
		return nil, videoURLError(s.Name())
	}
	e.VideoURLs = []string{videoURL}
	if preview := previewImageURL(media); preview != "" {
		e.VideoPreviewImageURLs = []string{preview}
	}

	feedbackCounts(e, feedback)
	e.ID = str(media, "id")
	if e.ID == "" {
		e.ID = storyID(node)
	}
	e.Text = storyText(node)
	e.ProfileLink = storyProfileLink(node)
	if t, ok := timeOf(media, "publish_time"); ok {
		e.CreatedAt = t
	} else {
		storyCreated(e, node)
	}
	return e, nil
}

// reelSieve handles short-form videos served without a total comment count.
type reelSieve struct{}

func (reelSieve) Name() string { return "reel" }
func (reelSieve) Shape() Shape { return ShapeReel }

func (reelSieve) Check(objects []gjson.Result) bool {
	story, ok := videoStory(objects)
	if !ok || !story.Get("short_form_video_context").IsObject() {
		return false
	}
	_, hasTotal := totalCommentFeedback(objects)
	return !hasTotal
}

func (s reelSieve) Sieve(objects []gjson.Result) (*Extraction, error) {
	story, _ := videoStory(objects)
	e, err := reelBase(s.Name(), story)
	if err != nil {
		return nil, err
	}

	if obj, ok := withPath(objects, "feedback.top_level_comments"); ok {
		feedback := obj.Get("feedback")
		e.NumComments = optInt(feedback, "top_level_comments.totalCountIncludingReplies", "top_level_comments.count")
		e.NumShares = optInt(feedback, "share_count_reduced", "share_count.count")
		if t, ok := publishTimeFromTracking(obj.Get("tracking")); ok {
			e.CreatedAt = t
		}
	}
	if e.CreatedAt.IsZero() {
		storyCreated(e, story)
	}
	return e, nil
}

// publishTimeFromTracking reads the publish time buried in the JSON-encoded
// tracking blob of reel feedback.
func publishTimeFromTracking(tracking gjson.Result) (time.Time, bool) {
	blob := tracking
	if tracking.Type == gjson.String {
		blob = gjson.Parse(tracking.String())
	}
	var (
		published time.Time
		found     bool
	)
	blob.Get("page_insights").ForEach(func(_, insight gjson.Result) bool {
		published, found = timeOf(insight, "post_context.publish_time")
		return false
	})
	return published, found
}

// reel2Sieve handles short-form videos whose feedback exposes a total
// comment count and a caption.
type reel2Sieve struct{}

func (reel2Sieve) Name() string { return "reel_2" }
func (reel2Sieve) Shape() Shape { return ShapeReel }

func (reel2Sieve) Check(objects []gjson.Result) bool {
	story, ok := videoStory(objects)
	if !ok || !story.Get("short_form_video_context").IsObject() {
		return false
	}
	_, hasTotal := totalCommentFeedback(objects)
	return hasTotal
}

func (s reel2Sieve) Sieve(objects []gjson.Result) (*Extraction, error) {
	story, _ := videoStory(objects)
	e, err := reelBase(s.Name(), story)
	if err != nil {
		return nil, err
	}
	feedback, _ := totalCommentFeedback(objects)
	e.NumComments = optInt(feedback, "total_comment_count")
	e.NumShares = optInt(feedback, "share_count_reduced", "share_count.count")
	e.Text = str(story, "message.text", "short_form_video_context.video.message.text")
	storyCreated(e, story)
	return e, nil
}

// reelBase extracts the fields both reel layouts share.
func reelBase(sieve string, story gjson.Result) (*Extraction, error) {
	shortForm := story.Get("short_form_video_context")
	playback := shortForm.Get("playback_video")

	e := &Extraction{HasVideo: true}
	videoURL, ok := resolveVideoURL(playback)
	if !ok {
		return nil, videoURLError(sieve)
	}
	e.VideoURLs = []string{videoURL}
	preview := previewImageURL(playback)
	if preview == "" {
		preview = cleanURL(str(shortForm, "video.first_frame_thumbnail"))
	}
	if preview != "" {
		e.VideoPreviewImageURLs = []string{preview}
	}

	warning := playback.Get("warning_screen_renderer.cix_screen.view_model.__typename").String()
	e.ReshareWarning = types.BoolPtr(warning == overlayWarningTypename)
	e.ID = str(shortForm, "video.id", "shareable_url_id")
	if e.ID == "" {
		e.ID = str(story, "id")
	}
	e.ProfileLink = cleanURL(str(shortForm, "video_owner.url"))
	return e, nil
}

// mixedGallerySieve handles posts whose gallery mixes videos and photos.
type mixedGallerySieve struct{}

func (mixedGallerySieve) Name() string { return "mixed_gallery" }
func (mixedGallerySieve) Shape() Shape { return ShapeVideo }

func (mixedGallerySieve) Check(objects []gjson.Result) bool {
	_, _, ok := storyNodeWith(objects, isMixedGallery)
	return ok
}

func isMixedGallery(node gjson.Result) bool {
	return galleryHas(storyAttachment(node), videoTypename)
}

func (s mixedGallerySieve) Sieve(objects []gjson.Result) (*Extraction, error) {
	node, feedback, _ := storyNodeWith(objects, isMixedGallery)

	e := &Extraction{HasVideo: true}
	var err error
	storyAttachment(node).Get(subattachmentsPath).ForEach(func(_, item gjson.Result) bool {
		media := item.Get("media")
		switch media.Get("__typename").String() {
		case videoTypename:
			if grid, ok := dig(media, "video_grid_renderer.video"); ok {
				media = grid
			}
			videoURL, ok := resolveVideoURL(media)
			if !ok {
				err = videoURLError(s.Name())
				return false
			}
			e.VideoURLs = append(e.VideoURLs, videoURL)
			e.VideoPreviewImageURLs = append(e.VideoPreviewImageURLs, previewImageURL(media))
		case photoTypename:
			if u := str(media, "image.uri", "viewer_image.uri", "photo_image.uri"); u != "" {
				e.GalleryImageURLs = append(e.GalleryImageURLs, cleanURL(u))
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	feedbackCounts(e, feedback)
	e.ID = storyID(node)
	e.Text = storyText(node)
	e.ProfileLink = storyProfileLink(node)
	storyCreated(e, node)
	return e, nil
}

// commentVideoSieve handles a video posted as a reply inside a comment thread.
type commentVideoSieve struct{}

func (commentVideoSieve) Name() string { return "comment_video" }
func (commentVideoSieve) Shape() Shape { return ShapeCommentVideo }

func (commentVideoSieve) Check(objects []gjson.Result) bool {
	return probeCommentVideo(objects)
}

func (s commentVideoSieve) Sieve(objects []gjson.Result) (*Extraction, error) {
	obj, _ := findObject(objects, func(obj gjson.Result) bool {
		return obj.Get(commentVideoTypePath).String() == videoTypename
	})
	comment := obj.Get("nodes.0")
	media := comment.Get("attachments.0.style_type_renderer.attachment.media")

	e := &Extraction{HasVideo: true}
	videoURL, ok := resolveVideoURL(media)
	if !ok {
		return nil, videoURLError(s.Name())
	}
	e.VideoURLs = []string{videoURL}
	if preview := previewImageURL(media); preview != "" {
		e.VideoPreviewImageURLs = []string{preview}
	}

	feedback := comment.Get("feedback")
	e.NumComments = optInt(feedback, "replies_fields.total_count", "total_comment_count", "replies_connection.count")
	e.NumViews = optInt(media, "video_view_count", "play_count")
	e.Reactions = reactionsOf(feedback)
	e.ID = str(comment, "legacy_fbid", "id")
	e.Text = str(comment, "body.text", "preferred_body.text")
	e.ProfileLink = cleanURL(str(comment, "author.url", "user.url"))
	if t, ok := timeOf(comment, "created_time", "comment_action_links.0.comment.created_time"); ok {
		e.CreatedAt = t
	} else if t, ok := timeOf(media, "publish_time"); ok {
		e.CreatedAt = t
	}
	return e, nil
}

// feedVideoSieve handles the sidepane layout, where the video, its
// creation story and its feedback arrive as separate fragments.
type feedVideoSieve struct{}

func (feedVideoSieve) Name() string { return "feed_video" }
func (feedVideoSieve) Shape() Shape { return ShapeVideo }

func (feedVideoSieve) Check(objects []gjson.Result) bool {
	_, _, _, ok := feedVideoParts(objects)
	return ok
}

func feedVideoParts(objects []gjson.Result) (feedback, sidepane, video gjson.Result, ok bool) {
	feedbackObj, ok1 := findObject(objects, func(obj gjson.Result) bool {
		return hasKey(obj, "creation_story") && hasKey(obj, "feedback")
	})
	sidepaneObj, ok2 := withPath(objects, "tahoe_sidepane_renderer")
	videoObj, ok3 := findObject(objects, func(obj gjson.Result) bool { return onlyKey(obj, "video") })
	if !ok1 || !ok2 || !ok3 {
		return gjson.Result{}, gjson.Result{}, gjson.Result{}, false
	}
	return feedbackObj.Get("feedback"), sidepaneObj.Get("tahoe_sidepane_renderer.video.creation_story"), videoObj.Get("video"), true
}

func (s feedVideoSieve) Sieve(objects []gjson.Result) (*Extraction, error) {
	feedback, sidepane, video, _ := feedVideoParts(objects)

	e := &Extraction{HasVideo: true}
	videoURL, ok := resolveVideoURL(video)
	if !ok {
		return nil, videoURLError(s.Name())
	}
	e.VideoURLs = []string{videoURL}
	if preview := previewImageURL(video); preview != "" {
		e.VideoPreviewImageURLs = []string{preview}
	}

	feedbackCounts(e, feedback)
	e.ID = str(video, "id")
	e.Text = str(sidepane, "comet_sections.message.story.message.text")
	e.ProfileLink = cleanURL(str(sidepane, "comet_sections.actor_photo.story.actors.0.url"))
	if t, ok := timeOf(video, "publish_time"); ok {
		e.CreatedAt = t
	}
	return e, nil
}
