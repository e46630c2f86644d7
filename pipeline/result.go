package pipeline

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/shayanh/retitle/title"
)

// Status tags the outcome of processing one file.
type Status int

const (
	StatusSuccess Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "success":
		*s = StatusSuccess
	case "skipped":
		*s = StatusSkipped
	case "failed":
		*s = StatusFailed
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

// Result is the outcome for one input file. Which fields are set depends on
// Status: NewName and Title for success, Reason for skipped, Error for failed.
type Result struct {
	Status       Status `json:"status" yaml:"status"`
	OriginalName string `json:"originalName" yaml:"originalName"`
	NewName      string `json:"newName,omitempty" yaml:"newName,omitempty"`
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`
	Reason       string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

func Success(originalName, derivedTitle string) Result {
	return Result{
		Status:       StatusSuccess,
		OriginalName: originalName,
		NewName:      title.FileName(derivedTitle),
		Title:        derivedTitle,
	}
}

func Skipped(originalName, reason string) Result {
	return Result{
		Status:       StatusSkipped,
		OriginalName: originalName,
		Reason:       reason,
	}
}

func Failed(originalName string, err error) Result {
	return Result{
		Status:       StatusFailed,
		OriginalName: originalName,
		Error:        err.Error(),
	}
}

// Errors folds the failed results into one error, or nil if none failed.
func Errors(results []Result) error {
	var errs error
	for _, r := range results {
		if r.Status == StatusFailed {
			errs = multierr.Append(errs, fmt.Errorf("%s: %s", r.OriginalName, r.Error))
		}
	}
	return errs
}
