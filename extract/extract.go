// Package extract pulls positioned text fragments off the first page of a PDF.
//
// PDF parsing itself is delegated to a Parser. Two backends ship with the
// package: PDFCPU, which reads pages through pdfcpu and runs their content
// streams through tabula's text extractor, and Glyphs, which groups the
// glyphs reported by ledongthuc/pdf into runs.
package extract

import (
	"context"

	"github.com/pkg/errors"

	"github.com/shayanh/retitle/title"
)

// Progress checkpoints reported by FirstPageFragments. The caller reports
// Done once it has derived a title.
const (
	ProgressParsed = 0.3
	ProgressPage   = 0.6
	ProgressText   = 0.9
	ProgressDone   = 1.0
)

var (
	// ErrNoPages is returned for documents without a first page.
	ErrNoPages = errors.New("document has no pages")
	// ErrUnknownParser is returned by NewParser for unknown backend names.
	ErrUnknownParser = errors.New("unknown parser")
)

// ProgressFunc receives a completion fraction in [0, 1].
type ProgressFunc func(fraction float64)

// TextItem is a text run as reported by a page. The baseline is Transform[5].
type TextItem struct {
	Str       string
	Transform [6]float64
	Height    float64
}

// Parser turns raw bytes into a Document.
type Parser interface {
	Parse(ctx context.Context, data []byte) (Document, error)
}

// Document is a parsed PDF.
type Document interface {
	NumPages() int
	// Page returns the page at a zero-based index.
	Page(ctx context.Context, index int) (Page, error)
}

// Page is a single page of a Document.
type Page interface {
	TextContent(ctx context.Context) ([]TextItem, error)
}

// Stage names the step of FirstPageFragments that failed.
type Stage string

const (
	StageParse Stage = "parse"
	StagePage  Stage = "page"
	StageText  Stage = "text"
)

// ParseError is returned by FirstPageFragments for any failure.
type ParseError struct {
	Stage Stage
	Err   error
}

func (e *ParseError) Error() string {
	return "extract " + string(e.Stage) + " failed: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Cause lets errors.Cause reach the underlying error.
func (e *ParseError) Cause() error { return e.Err }

// FirstPageFragments parses data and returns the text fragments of the first
// page in the order the parser emits them. onProgress is called with
// ProgressParsed, ProgressPage and ProgressText, each exactly once, and may be
// nil. No fragments are returned on error.
func FirstPageFragments(ctx context.Context, parser Parser, data []byte, onProgress ProgressFunc) ([]title.Fragment, error) {
	report := func(fraction float64) {
		if onProgress != nil {
			onProgress(fraction)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, &ParseError{Stage: StageParse, Err: err}
	}
	doc, err := parser.Parse(ctx, data)
	if err != nil {
		return nil, &ParseError{Stage: StageParse, Err: err}
	}
	report(ProgressParsed)

	if err := ctx.Err(); err != nil {
		return nil, &ParseError{Stage: StagePage, Err: err}
	}
	if doc.NumPages() < 1 {
		return nil, &ParseError{Stage: StagePage, Err: ErrNoPages}
	}
	page, err := doc.Page(ctx, 0)
	if err != nil {
		return nil, &ParseError{Stage: StagePage, Err: err}
	}
	report(ProgressPage)

	if err := ctx.Err(); err != nil {
		return nil, &ParseError{Stage: StageText, Err: err}
	}
	items, err := page.TextContent(ctx)
	if err != nil {
		return nil, &ParseError{Stage: StageText, Err: err}
	}
	fragments := make([]title.Fragment, len(items))
	for i, item := range items {
		fragments[i] = title.Fragment{
			Text:      item.Str,
			BaselineY: item.Transform[5],
			Height:    item.Height,
		}
	}
	report(ProgressText)
	return fragments, nil
}

// Parser backend names accepted by NewParser.
const (
	ParserPDFCPU = "pdfcpu"
	ParserGlyphs = "glyphs"
)

// NewParser returns the backend registered under name. An empty name selects
// the pdfcpu backend.
func NewParser(name string) (Parser, error) {
	switch name {
	case "", ParserPDFCPU:
		return NewPDFCPU(), nil
	case ParserGlyphs:
		return NewGlyphs(), nil
	}
	return nil, errors.Wrapf(ErrUnknownParser, "parser %q", name)
}

func recoverPanic(err *error) {
	if r := recover(); r != nil {
		*err = errors.Errorf("parser panicked: %v", r)
	}
}
