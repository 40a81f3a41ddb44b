package extraction

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"facebook-extractor/pkg/types"
)

// Sieve extracts one known post layout from parsed fragments. Check must be
// cheap and must not fail; Sieve may fail when the layout was recognized but a
// required field is missing.
type Sieve interface {
	Name() string
	Shape() Shape
	Check(objects []gjson.Result) bool
	Sieve(objects []gjson.Result) (*Extraction, error)
}

// Extraction is the media-unresolved output of a sieve.
type Extraction struct {
	Sieve          string
	Shape          Shape
	ID             string
	HasVideo       bool
	Text           string
	CreatedAt      time.Time
	NumComments    *int
	NumShares      *int
	NumViews       *int
	ReshareWarning *bool
	Reactions      map[string]int
	ProfileLink    string

	ImageURLs             []string
	VideoURLs             []string
	VideoPreviewImageURLs []string
	GalleryImageURLs      []string
}

func (e *Extraction) validate() error {
	if e.CreatedAt.IsZero() {
		return &types.SieveError{Sieve: e.Sieve, Field: "created_at", Err: types.ErrMissingField}
	}
	if e.HasVideo {
		if len(e.VideoURLs) == 0 {
			return &types.SieveError{Sieve: e.Sieve, Field: "video_url", Err: types.ErrVideoURLUnresolved}
		}
		if len(e.ImageURLs) > 0 {
			return &types.SieveError{Sieve: e.Sieve, Field: "image_url", Err: fmt.Errorf("image urls on a video post")}
		}
		return nil
	}
	if len(e.VideoURLs) > 0 || len(e.VideoPreviewImageURLs) > 0 || len(e.GalleryImageURLs) > 0 {
		return &types.SieveError{Sieve: e.Sieve, Field: "video_url", Err: fmt.Errorf("video urls on a non-video post")}
	}
	if e.Shape == ShapeImage && len(e.ImageURLs) == 0 {
		return &types.SieveError{Sieve: e.Sieve, Field: "image_url", Err: types.ErrMissingField}
	}
	return nil
}

// Record converts the extraction into a PostRecord without media files.
func (e *Extraction) Record(url string) *types.PostRecord {
	return &types.PostRecord{
		ID:                    e.ID,
		URL:                   url,
		Shape:                 e.Shape.String(),
		Sieve:                 e.Sieve,
		HasVideo:              e.HasVideo,
		Text:                  e.Text,
		CreatedAt:             e.CreatedAt,
		NumComments:           e.NumComments,
		NumShares:             e.NumShares,
		NumViews:              e.NumViews,
		ReshareWarning:        e.ReshareWarning,
		Reactions:             e.Reactions,
		ProfileLink:           e.ProfileLink,
		ImageURLs:             e.ImageURLs,
		VideoURLs:             e.VideoURLs,
		VideoPreviewImageURLs: e.VideoPreviewImageURLs,
		GalleryImageURLs:      e.GalleryImageURLs,
	}
}

func missing(sieve, field string) error {
	return &types.SieveError{Sieve: sieve, Field: field, Err: types.ErrMissingField}
}

// DefaultSieves returns the sieves in dispatch priority order. Layouts overlap,
// so a later sieve may also accept input meant for an earlier one.
func DefaultSieves() []Sieve {
	return []Sieve{
		watchTabSieve{},
		videoPageSieve{},
		reelSieve{},
		reel2Sieve{},
		mixedGallerySieve{},
		commentVideoSieve{},
		feedVideoSieve{},
		imageViewerSieve{},
		imageStorySieve{},
		imageGallerySieve{},
		textSieve{},
	}
}

// Dispatcher runs the first sieve whose check accepts the fragments.
type Dispatcher struct {
	sieves []Sieve
	logger *logrus.Logger
}

func NewDispatcher(logger *logrus.Logger, sieves ...Sieve) *Dispatcher {
	if len(sieves) == 0 {
		sieves = DefaultSieves()
	}
	return &Dispatcher{sieves: sieves, logger: logger}
}

// Match returns the first sieve that accepts objects, or nil.
func (d *Dispatcher) Match(objects []gjson.Result) Sieve {
	for _, s := range d.sieves {
		if s.Check(objects) {
			return s
		}
	}
	return nil
}

// Dispatch returns (nil, nil) when no sieve accepts the input.
func (d *Dispatcher) Dispatch(objects []gjson.Result) (*Extraction, error) {
	s := d.Match(objects)
	if s == nil {
		d.logger.Debug("No sieve matched fragments")
		return nil, nil
	}
	d.logger.WithField("sieve", s.Name()).Debug("Sieve matched")

	extraction, err := s.Sieve(objects)
	if err != nil {
		return nil, err
	}
	extraction.Sieve = s.Name()
	extraction.Shape = s.Shape()
	if err := extraction.validate(); err != nil {
		return nil, err
	}
	return extraction, nil
}

func (d *Dispatcher) Sieves() []Sieve {
	return d.sieves
}
