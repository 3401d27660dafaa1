package domain

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultImagePatterns match jpg, jpeg and png files in any letter case
var DefaultImagePatterns = []string{
	"*.[Jj][Pp][Gg]",
	"*.[Jj][Pp][Ee][Gg]",
	"*.[Pp][Nn][Gg]",
}

// ImageMatcher decides which file names belong to an image pool
type ImageMatcher struct {
	patterns []string
}

// NewImageMatcher validates glob patterns; an empty list selects DefaultImagePatterns
func NewImageMatcher(patterns []string) (ImageMatcher, error) {
	if len(patterns) == 0 {
		patterns = DefaultImagePatterns
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return ImageMatcher{}, fmt.Errorf("invalid image pattern %q", p)
		}
	}
	return ImageMatcher{patterns: append([]string(nil), patterns...)}, nil
}

// Patterns returns the patterns in use
func (m ImageMatcher) Patterns() []string {
	if len(m.patterns) == 0 {
		return DefaultImagePatterns
	}
	return m.patterns
}

// Match reports whether a base file name is an image. Hidden files never match.
func (m ImageMatcher) Match(name string) bool {
	if IsHidden(name) {
		return false
	}
	for _, p := range m.Patterns() {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// IsHidden reports whether a base name is a dotfile (temp files, .DS_Store, ...)
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
