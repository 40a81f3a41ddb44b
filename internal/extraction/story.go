package extraction

import (
	"strings"

	"github.com/tidwall/gjson"
)

// UFI feedback locations on a story's comet_sections, tried in order.
var storyFeedbackPaths = []string{
	"feedback.story.story_ufi_container.story.feedback_context.feedback_target_with_context.comet_ufi_summary_and_actions_renderer.feedback",
	"feedback.story.comet_feed_ufi_container.story.feedback_context.feedback_target_with_context.ufi_renderer.feedback.comet_ufi_summary_and_actions_renderer.feedback",
	"feedback.story.feedback_context.feedback_target_with_context.ufi_renderer.feedback.comet_ufi_summary_and_actions_renderer.feedback",
	"feedback.story.feedback_context.feedback_target_with_context.comet_ufi_summary_and_actions_renderer.feedback",
}

var (
	commentCountPaths = []string{
		"total_comment_count",
		"comments_count_summary_renderer.feedback.comment_rendering_instance.comments.total_count",
		"comment_rendering_instance.comments.total_count",
		"comment_count.total_count",
	}
	viewCountPaths = []string{
		"video_view_count",
		"video_view_count_renderer.feedback.video_view_count",
	}
)

func storyFeedback(cometSections gjson.Result) (gjson.Result, bool) {
	return firstOf(cometSections, storyFeedbackPaths...)
}

// storyNode returns the first `node` carrying comet_sections.
func storyNode(objects []gjson.Result) (gjson.Result, bool) {
	obj, ok := withPath(objects, "node.comet_sections")
	if !ok {
		return gjson.Result{}, false
	}
	return obj.Get("node"), true
}

// feedbackCounts fills the UFI derived fields of e.
func feedbackCounts(e *Extraction, feedback gjson.Result) {
	e.NumComments = optInt(feedback, commentCountPaths...)
	e.NumShares = optInt(feedback, "share_count.count")
	e.ReshareWarning = optBool(feedback, "should_show_reshare_warning")
	e.Reactions = reactionsOf(feedback)
	if e.HasVideo {
		e.NumViews = optInt(feedback, viewCountPaths...)
	}
}

func storyText(node gjson.Result) string {
	return str(node,
		"comet_sections.content.story.comet_sections.message.story.message.text",
		"comet_sections.content.story.message.text",
		"comet_sections.message.story.message.text",
	)
}

func storyProfileLink(node gjson.Result) string {
	return cleanURL(str(node,
		"comet_sections.context_layout.story.comet_sections.actor_photo.story.actors.0.url",
		"comet_sections.content.story.actors.0.url",
		"comet_sections.actor_photo.story.actors.0.url",
	))
}

func storyID(node gjson.Result) string {
	return str(node, "post_id", "comet_sections.content.story.post_id", "id")
}

func storyAttachment(node gjson.Result) gjson.Result {
	return node.Get("comet_sections.content.story." + storyAttachmentPath)
}

// storyNodeWith finds a story node satisfying pred and returns it with its
// feedback object.
func storyNodeWith(objects []gjson.Result, pred func(node gjson.Result) bool) (gjson.Result, gjson.Result, bool) {
	for _, obj := range objects {
		node, ok := dig(obj, "node")
		if !ok || !node.Get("comet_sections").Exists() || !pred(node) {
			continue
		}
		feedback, ok := storyFeedback(node.Get("comet_sections"))
		if !ok {
			continue
		}
		return node, feedback, true
	}
	return gjson.Result{}, gjson.Result{}, false
}

// profileFromPermalink turns ".../page/videos/123" into ".../page/".
func profileFromPermalink(permalink string) string {
	permalink = cleanURL(permalink)
	idx := strings.Index(permalink, "/videos")
	if idx < 0 {
		return ""
	}
	return permalink[:idx+1]
}

func storyCreated(e *Extraction, node gjson.Result, extra ...gjson.Result) bool {
	paths := []string{
		"comet_sections.context_layout.story.comet_sections.metadata.0.story.creation_time",
		"comet_sections.content.story.creation_time",
		"comet_sections.timestamp.story.creation_time",
		"creation_time",
	}
	for _, candidate := range append([]gjson.Result{node}, extra...) {
		if t, ok := timeOf(candidate, paths...); ok {
			e.CreatedAt = t
			return true
		}
	}
	return false
}
