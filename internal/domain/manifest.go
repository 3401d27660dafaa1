package domain

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnlistablePath marks a path that would break the one-entry-per-line format
var ErrUnlistablePath = errors.New("path contains a line break")

// CheckManifestPath rejects paths that cannot be written as a single manifest line
func CheckManifestPath(path string) error {
	if strings.ContainsAny(path, "\n\r") {
		return fmt.Errorf("%q: %w", path, ErrUnlistablePath)
	}
	return nil
}

// ManifestEntry is one labeled image line
type ManifestEntry struct {
	Path  string
	Label Label
}

// ManifestSummary describes a written manifest
type ManifestSummary struct {
	Stage    Stage
	Path     string
	Positive int
	Negative int
}

// Lines returns the number of entries in the manifest
func (s ManifestSummary) Lines() int {
	return s.Positive + s.Negative
}

// BuildManifest orders positive entries before negative ones
func BuildManifest(positives, negatives []string) []ManifestEntry {
	entries := make([]ManifestEntry, 0, len(positives)+len(negatives))
	for _, p := range positives {
		entries = append(entries, ManifestEntry{Path: p, Label: LabelPositive})
	}
	for _, p := range negatives {
		entries = append(entries, ManifestEntry{Path: p, Label: LabelNegative})
	}
	return entries
}

// FormatManifest renders entries as "<path> <label>\n" lines, no header
func FormatManifest(entries []ManifestEntry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		buf.WriteString(e.Path)
		buf.WriteByte(' ')
		buf.WriteString(e.Label.Value())
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// ParseManifest reads manifest lines back. The label is the text after the
// last space so paths containing spaces survive.
func ParseManifest(r io.Reader) ([]ManifestEntry, error) {
	var entries []ManifestEntry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		i := strings.LastIndexByte(line, ' ')
		if i <= 0 {
			return nil, fmt.Errorf("line %d: missing label", lineNo)
		}
		label, err := ParseLabelValue(line[i+1:])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entries = append(entries, ManifestEntry{Path: line[:i], Label: label})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
