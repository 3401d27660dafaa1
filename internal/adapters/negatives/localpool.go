package negatives

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"datasplit/internal/domain"
	"datasplit/internal/ports"
)

// DefaultPoolPatterns select the positive images of every concept under a pool root
var DefaultPoolPatterns = []string{
	"*/images/all/*",
	"*/images/cropped/*",
	"*/images/train/positive/*",
	"*/images/test/positive/*",
}

// LocalPool implements ports.NegativeSource by copying other concepts'
// images out of a local directory tree
type LocalPool struct {
	root     string
	patterns []string
	matcher  domain.ImageMatcher
}

// Ensure LocalPool implements NegativeSource
var _ ports.NegativeSource = (*LocalPool)(nil)

// PoolOption configures a LocalPool
type PoolOption func(*LocalPool)

// WithPatterns sets the globs, relative to the pool root, whose first path
// segment names the concept an image belongs to
func WithPatterns(patterns ...string) PoolOption {
	return func(p *LocalPool) {
		if len(patterns) > 0 {
			p.patterns = patterns
		}
	}
}

// WithMatcher restricts the pool to image file names
func WithMatcher(m domain.ImageMatcher) PoolOption {
	return func(p *LocalPool) {
		p.matcher = m
	}
}

// NewLocalPool creates a pool rooted at root
func NewLocalPool(root string, opts ...PoolOption) (*LocalPool, error) {
	p := &LocalPool{
		root:     root,
		patterns: DefaultPoolPatterns,
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, pattern := range p.patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pool pattern %q", pattern)
		}
	}
	return p, nil
}

func (p *LocalPool) Name() string {
	return "localpool"
}

// FetchNegatives copies up to count images, in sorted order, into destDir.
// Images under the concept's own subtree are never used. Images already
// handed to any stage's bucket with the same label are skipped so train and
// test never share a negative.
func (p *LocalPool) FetchNegatives(ctx context.Context, concept string, count int, destDir string) (int, error) {
	if count <= 0 {
		return 0, nil
	}

	var matches []string
	for _, pattern := range p.patterns {
		found, err := doublestar.FilepathGlob(filepath.Join(p.root, pattern), doublestar.WithFilesOnly())
		if err != nil {
			return 0, fmt.Errorf("failed to scan pool %s: %w", p.root, err)
		}
		matches = append(matches, found...)
	}
	sort.Strings(matches)

	used, err := usedNames(destDir)
	if err != nil {
		return 0, err
	}

	fetched := 0
	for _, src := range matches {
		if fetched == count {
			break
		}
		if err := ctx.Err(); err != nil {
			return fetched, err
		}

		rel, err := filepath.Rel(p.root, src)
		if err != nil {
			continue
		}
		owner, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
		name := filepath.Base(src)
		if owner == concept || !p.matcher.Match(name) {
			continue
		}

		destName := owner + "_" + name
		if used[destName] {
			continue
		}
		if err := copyFile(src, filepath.Join(destDir, destName)); err != nil {
			return fetched, err
		}
		used[destName] = true
		fetched++
	}
	return fetched, nil
}

// usedNames collects file names in destDir and in the same-label bucket of
// every other stage
func usedNames(destDir string) (map[string]bool, error) {
	stagesDir := filepath.Dir(filepath.Dir(destDir))
	dirs, err := doublestar.FilepathGlob(filepath.Join(stagesDir, "*", filepath.Base(destDir)))
	if err != nil {
		return nil, err
	}
	dirs = append(dirs, destDir)

	used := make(map[string]bool)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", dir, err)
		}
		for _, e := range entries {
			used[e.Name()] = true
		}
	}
	return used, nil
}

// copyFile writes src to a hidden .part file next to dst and renames it
// into place so a partial copy is never counted
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	tmp := filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+".part")
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to place %s: %w", dst, err)
	}
	return nil
}
