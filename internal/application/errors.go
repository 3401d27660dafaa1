package application

import (
	"errors"
	"fmt"
	"strings"

	"datasplit/internal/domain"
)

// Sentinel errors for common conditions
var (
	ErrMissingPositiveData = errors.New("missing positive data")
	ErrAmbiguousSource     = errors.New("no positive source")
	ErrAllocationMismatch  = errors.New("allocation mismatch")
	ErrAlreadyProcessed    = errors.New("already partially processed")
	ErrMoveConflict        = errors.New("move conflict")
	ErrManifestMismatch    = errors.New("manifest mismatch")
	ErrInvalidImageName    = errors.New("invalid image name")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MissingPositiveDataError reports an absent or empty positive pool
type MissingPositiveDataError struct {
	Dir string
}

func (e *MissingPositiveDataError) Error() string {
	return fmt.Sprintf("no positive images in %s: populate %s/%s or %s/%s with the concept's images before splitting",
		e.Dir, domain.ImagesDirName, domain.CroppedDirName, domain.ImagesDirName, domain.AllDirName)
}

func (e *MissingPositiveDataError) Is(target error) bool {
	return target == ErrMissingPositiveData
}

// AmbiguousSourceError reports that none of the candidate source dirs exist
type AmbiguousSourceError struct {
	Candidates []string
}

func (e *AmbiguousSourceError) Error() string {
	return fmt.Sprintf("no positive source directory found (looked for %s)", strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousSourceError) Is(target error) bool {
	return target == ErrAmbiguousSource
}

// AllocationMismatchError reports images left in the source after allocation
type AllocationMismatchError struct {
	Dir       string
	Remaining []string
}

func (e *AllocationMismatchError) Error() string {
	return fmt.Sprintf("%d images remain in %s after allocation (first: %s)", len(e.Remaining), e.Dir, e.Remaining[0])
}

func (e *AllocationMismatchError) Is(target error) bool {
	return target == ErrAllocationMismatch
}

// AlreadyProcessedError refuses to allocate on top of populated buckets
// that no journaled run accounts for
type AlreadyProcessedError struct {
	Dir   string
	Files int
}

func (e *AlreadyProcessedError) Error() string {
	return fmt.Sprintf("%s already holds %d files from an earlier split with no journal record; clear the buckets or restore the journal", e.Dir, e.Files)
}

func (e *AlreadyProcessedError) Is(target error) bool {
	return target == ErrAlreadyProcessed
}

// MoveError represents a failed plan entry
type MoveError struct {
	Source      string
	Destination string
	Reason      string
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("cannot move %s to %s: %s", e.Source, e.Destination, e.Reason)
}

func (e *MoveError) Is(target error) bool {
	return target == ErrMoveConflict
}

// ManifestMismatchError reports a manifest that does not describe its buckets
type ManifestMismatchError struct {
	Stage domain.Stage
	Lines int
	Files int
}

func (e *ManifestMismatchError) Error() string {
	return fmt.Sprintf("%s manifest has %d lines but its buckets hold %d files", e.Stage, e.Lines, e.Files)
}

func (e *ManifestMismatchError) Is(target error) bool {
	return target == ErrManifestMismatch
}

// InvalidImageNameError reports a file whose name cannot be listed in a manifest
type InvalidImageNameError struct {
	Path string
}

func (e *InvalidImageNameError) Error() string {
	return fmt.Sprintf("cannot list %q in a manifest: file names must not contain line breaks; rename it and run again", e.Path)
}

func (e *InvalidImageNameError) Is(target error) bool {
	return target == ErrInvalidImageName
}

// NegativeFetchShortfall records a negative stage that got fewer images than
// requested. It is a warning: runs continue and manifests list what exists.
type NegativeFetchShortfall struct {
	Stage     domain.Stage
	Requested int
	Fetched   int
}

func (s NegativeFetchShortfall) Missing() int {
	return s.Requested - s.Fetched
}

func (s NegativeFetchShortfall) Error() string {
	return fmt.Sprintf("%s negatives: requested %d, have %d (short by %d)", s.Stage, s.Requested, s.Fetched, s.Missing())
}
