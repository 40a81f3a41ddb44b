package extraction

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Result is the outcome of running the engine over one page.
type Result struct {
	Shape      Shape
	Objects    []gjson.Result
	Fragments  int
	Skipped    int
	Extraction *Extraction
}

// Engine scans, parses, classifies and dispatches a rendered page.
type Engine struct {
	dispatcher *Dispatcher
	logger     *logrus.Logger
}

func NewEngine(logger *logrus.Logger, sieves ...Sieve) *Engine {
	return &Engine{
		dispatcher: NewDispatcher(logger, sieves...),
		logger:     logger,
	}
}

func (e *Engine) Dispatcher() *Dispatcher {
	return e.dispatcher
}

// Parse scans html into parsed fragments without dispatching.
func (e *Engine) Parse(html string) (*Result, error) {
	fragments, err := ScanDataBlocks(html)
	if err != nil {
		return nil, fmt.Errorf("failed to scan data blocks: %w", err)
	}
	objects, skipped := ParseFragments(fragments)
	if skipped > 0 {
		e.logger.WithField("skipped", skipped).Debug("Dropped fragments that are not valid JSON")
	}
	return &Result{Objects: objects, Fragments: len(fragments), Skipped: skipped}, nil
}

// Run parses html and dispatches its fragments. Result.Extraction is nil when
// no sieve recognized the page.
func (e *Engine) Run(html string) (*Result, error) {
	result, err := e.Parse(html)
	if err != nil {
		return nil, err
	}
	result.Shape = Classify(result.Objects)
	e.logger.WithFields(logrus.Fields{
		"fragments": result.Fragments,
		"shape":     result.Shape.String(),
	}).Debug("Classified page")

	extraction, err := e.dispatcher.Dispatch(result.Objects)
	if err != nil {
		return result, err
	}
	result.Extraction = extraction
	return result, nil
}
