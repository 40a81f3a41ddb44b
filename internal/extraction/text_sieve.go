package extraction

import (
	"github.com/tidwall/gjson"
)

// textSieve handles stories without any attached media. The feedback object
// may sit under a UFI container, a feed UFI container or a bare context.
type textSieve struct{}

func (textSieve) Name() string { return "text" }
func (textSieve) Shape() Shape { return ShapeText }

func isTextStory(node gjson.Result) bool {
	story := node.Get("comet_sections.content.story")
	return !hasAttachmentMedia(story)
}

func (textSieve) Check(objects []gjson.Result) bool {
	_, _, ok := storyNodeWith(objects, isTextStory)
	return ok
}

func (s textSieve) Sieve(objects []gjson.Result) (*Extraction, error) {
	node, feedback, _ := storyNodeWith(objects, isTextStory)

	e := &Extraction{}
	feedbackCounts(e, feedback)
	e.ID = storyID(node)
	e.Text = storyText(node)
	e.ProfileLink = storyProfileLink(node)
	if !storyCreated(e, node) {
		return nil, missing(s.Name(), "created_at")
	}
	return e, nil
}
