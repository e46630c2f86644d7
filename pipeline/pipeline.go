// Package pipeline runs input files through title extraction and produces
// one tagged Result per file.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/shayanh/retitle/extract"
	"github.com/shayanh/retitle/title"
)

// ReasonNotPDF is the skip reason for files with another media type.
const ReasonNotPDF = "not a PDF"

// ProgressFunc observes the progress of file index within a batch.
type ProgressFunc func(index int, name string, fraction float64)

// Processor derives proposed filenames for PDF files.
type Processor struct {
	parser extract.Parser
	log    *logrus.Logger
}

func New(parser extract.Parser, log *logrus.Logger) *Processor {
	return &Processor{
		parser: parser,
		log:    log,
	}
}

// ProcessFile never fails: read and parse errors, and panics, come back as a
// failed Result.
func (p *Processor) ProcessFile(ctx context.Context, f File, onProgress extract.ProgressFunc) (res Result) {
	name := f.Name()
	defer func() {
		if r := recover(); r != nil {
			res = Failed(name, errors.Errorf("panic: %v", r))
		}
	}()

	if f.MediaType() != PDFMediaType {
		return Skipped(name, ReasonNotPDF)
	}

	data, err := f.ReadAll(ctx)
	if err != nil {
		var rerr *ReadError
		if !errors.As(err, &rerr) {
			err = &ReadError{Name: name, Err: err}
		}
		return Failed(name, err)
	}

	fragments, err := extract.FirstPageFragments(ctx, p.parser, data, onProgress)
	if err != nil {
		return Failed(name, err)
	}
	derived := title.Derive(fragments)
	if onProgress != nil {
		onProgress(extract.ProgressDone)
	}
	return Success(name, derived)
}

// Process handles files one at a time in input order. The result at index i
// belongs to files[i]; a failure never stops the batch.
func (p *Processor) Process(ctx context.Context, files []File, onProgress ProgressFunc) []Result {
	results := make([]Result, 0, len(files))
	for i, f := range files {
		var fileProgress extract.ProgressFunc
		if onProgress != nil {
			i, name := i, f.Name()
			fileProgress = func(fraction float64) { onProgress(i, name, fraction) }
		}

		results = append(results, p.ProcessLogged(ctx, f, fileProgress))
	}
	return results
}

// ProcessLogged runs ProcessFile and logs the outcome with its elapsed time.
func (p *Processor) ProcessLogged(ctx context.Context, f File, onProgress extract.ProgressFunc) Result {
	start := time.Now()
	res := p.ProcessFile(ctx, f, onProgress)
	p.logResult(res, time.Since(start))
	return res
}

func (p *Processor) logResult(res Result, elapsed time.Duration) {
	entry := p.log.WithFields(logrus.Fields{
		"File":    res.OriginalName,
		"Status":  res.Status.String(),
		"Elapsed": elapsed,
	})
	switch res.Status {
	case StatusSuccess:
		entry.WithField("NewName", res.NewName).Info("File retitled.")
	case StatusSkipped:
		entry.WithField("Reason", res.Reason).Info("File skipped.")
	case StatusFailed:
		entry.WithField("Error", res.Error).Warn("File failed.")
	default:
		entry.Error(fmt.Sprintf("unexpected status %d", int(res.Status)))
	}
}
