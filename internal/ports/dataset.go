package ports

// DatasetRepository defines the file-system operations the splitter needs
type DatasetRepository interface {
	// DirExists reports whether path exists and is a directory
	DirExists(path string) (bool, error)

	// ListFiles returns full paths of non-hidden files in dir, in directory order.
	// A missing dir yields an empty list.
	ListFiles(dir string) ([]string, error)

	// EnsureDirs creates directories; existing ones are not an error
	EnsureDirs(dirs ...string) error

	// Move relocates src to dst. It returns false without error when the
	// move was already applied (dst present, src absent).
	Move(src, dst string) (bool, error)

	// WriteFileAtomic replaces path with data so readers never see a partial file
	WriteFileAtomic(path string, data []byte) error

	// ReadFile returns the contents of path
	ReadFile(path string) ([]byte, error)
}
