package domain

import "testing"

func TestImageMatcher_Match(t *testing.T) {
	m, err := NewImageMatcher(nil)
	if err != nil {
		t.Fatalf("NewImageMatcher() error = %v", err)
	}

	tests := []struct {
		name     string
		expected bool
	}{
		{"egg.jpg", true},
		{"EGG.JPG", true},
		{"egg.Jpeg", true},
		{"egg.png", true},
		{"egg.gif", false},
		{"notes.txt", false},
		{".hidden.jpg", false},
		{".egg.jpg.part", false},
		{"jpg", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Match(tt.name); got != tt.expected {
				t.Errorf("Match(%q) = %v, expected %v", tt.name, got, tt.expected)
			}
		})
	}
}

func TestImageMatcher_CustomPatterns(t *testing.T) {
	m, err := NewImageMatcher([]string{"*.{bmp,gif}"})
	if err != nil {
		t.Fatalf("NewImageMatcher() error = %v", err)
	}
	if !m.Match("a.gif") || !m.Match("b.bmp") {
		t.Error("expected brace pattern to match gif and bmp")
	}
	if m.Match("c.jpg") {
		t.Error("custom patterns replace the defaults")
	}
}

func TestNewImageMatcher_InvalidPattern(t *testing.T) {
	if _, err := NewImageMatcher([]string{"[unclosed"}); err == nil {
		t.Error("expected error for invalid pattern")
	}
}
