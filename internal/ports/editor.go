package ports

// ManifestReviewer opens a manifest for manual review
type ManifestReviewer interface {
	// OpenManifest opens path in the user's editor, positioned at line when supported
	OpenManifest(path string, line int) error
}
