package extraction

import (
	"strings"

	"github.com/tidwall/gjson"
)

const (
	legacyWatchSieve     = "legacy_watch"
	legacyWatchLiveSieve = "legacy_watch_live"
)

// WatchPage carries the page level facts the watch page layouts need beyond
// the embedded data.
type WatchPage struct {
	URL      string
	NumViews *int
}

// ExtractWatchPage handles watch-page videos that predate the sieve layouts.
// Live videos are recognized from the page URL.
func ExtractWatchPage(objects []gjson.Result, page WatchPage) (*Extraction, error) {
	var (
		e   *Extraction
		err error
	)
	if strings.Contains(page.URL, "live") {
		e, err = extractLiveWatchPage(objects, page)
	} else {
		e, err = extractWatchPage(objects)
	}
	if err != nil {
		return nil, err
	}
	e.Shape = ShapeVideo
	if err := e.validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func extractWatchPage(objects []gjson.Result) (*Extraction, error) {
	videoObj, ok := withPath(objects, "video.story.attachments.0.media")
	if !ok {
		return nil, missing(legacyWatchSieve, "video")
	}
	creation, ok := findObject(objects, func(obj gjson.Result) bool {
		return hasKey(obj, "creation_story") && obj.Get("creation_story.live_status").Exists()
	})
	if !ok {
		creation, ok = findObject(objects, func(obj gjson.Result) bool {
			return hasKey(obj, "creation_story") && hasKey(obj, "feedback")
		})
	}
	if !ok {
		return nil, missing(legacyWatchSieve, "creation_story")
	}
	media := videoObj.Get("video.story.attachments.0.media")
	feedback := creation.Get("feedback")

	e := &Extraction{Sieve: legacyWatchSieve, HasVideo: true}
	videoURL, ok := resolveVideoURL(media)
	if !ok {
		return nil, videoURLError(legacyWatchSieve)
	}
	e.VideoURLs = []string{videoURL}
	if preview := previewImageURL(media); preview != "" {
		e.VideoPreviewImageURLs = []string{preview}
	}

	e.ID = str(media, "id")
	e.NumComments = optInt(feedback, commentCountPaths...)
	e.NumViews = optInt(feedback, viewCountPaths...)
	e.ReshareWarning = optBool(feedback, "should_show_reshare_warning")
	e.Reactions = reactionsOf(feedback)
	e.Text = str(creation, "creation_story.message.text")
	e.ProfileLink = profileFromPermalink(str(creation, "creation_story.shareable.url"))
	if t, ok := timeOf(media, "publish_time"); ok {
		e.CreatedAt = t
	}
	return e, nil
}

func extractLiveWatchPage(objects []gjson.Result, page WatchPage) (*Extraction, error) {
	storyObj, ok := withPath(objects, "video.creation_story.feedback_context.feedback_target_with_context")
	if !ok {
		return nil, missing(legacyWatchLiveSieve, "creation_story")
	}
	story := storyObj.Get("video.creation_story")
	feedback := story.Get("feedback_context.feedback_target_with_context")

	var playable gjson.Result
	for _, obj := range objects {
		candidate := obj.Get("video.creation_story.attachments.0.media")
		if _, ok := resolveVideoURL(candidate); ok {
			playable = candidate
			break
		}
	}
	storyMedia := story.Get("attachments.0.media")

	e := &Extraction{Sieve: legacyWatchLiveSieve, HasVideo: true}
	videoURL, ok := resolveVideoURL(playable, storyMedia)
	if !ok {
		return nil, videoURLError(legacyWatchLiveSieve)
	}
	e.VideoURLs = []string{videoURL}
	if preview := previewImageURL(storyMedia, playable); preview != "" {
		e.VideoPreviewImageURLs = []string{preview}
	}

	e.ID = str(story, "shareable.id")
	e.NumComments = optInt(feedback, commentCountPaths...)
	e.NumViews = page.NumViews
	e.ReshareWarning = optBool(feedback, "should_show_reshare_warning")
	e.Reactions = reactionsOf(feedback)
	e.Text = str(storyMedia, "savable_description.text")
	e.ProfileLink = profileFromPermalink(str(story, "shareable.url"))
	if t, ok := firstTime(storyMedia, playable); ok {
		e.CreatedAt = t
	}
	return e, nil
}
