package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Stage is either the training or the testing half of a dataset
type Stage string

const (
	StageTrain Stage = "train"
	StageTest  Stage = "test"
)

// Stages lists the stages in manifest order
var Stages = []Stage{StageTrain, StageTest}

// Label is the binary class of an image
type Label string

const (
	LabelPositive Label = "positive"
	LabelNegative Label = "negative"
)

// Value returns the manifest value of a label: "1" for positive, "0" for negative
func (l Label) Value() string {
	if l == LabelPositive {
		return "1"
	}
	return "0"
}

// ParseLabelValue is the inverse of Label.Value
func ParseLabelValue(v string) (Label, error) {
	switch v {
	case "1":
		return LabelPositive, nil
	case "0":
		return LabelNegative, nil
	default:
		return "", fmt.Errorf("invalid label %q (expected 0 or 1)", v)
	}
}

// Bucket is one of the four allocation destinations
type Bucket struct {
	Stage Stage
	Label Label
}

func (b Bucket) String() string {
	return string(b.Stage) + "/" + string(b.Label)
}

var (
	TrainPositive = Bucket{Stage: StageTrain, Label: LabelPositive}
	TrainNegative = Bucket{Stage: StageTrain, Label: LabelNegative}
	TestPositive  = Bucket{Stage: StageTest, Label: LabelPositive}
	TestNegative  = Bucket{Stage: StageTest, Label: LabelNegative}
)

// Buckets lists all four buckets
var Buckets = []Bucket{TrainPositive, TrainNegative, TestPositive, TestNegative}

// Directory names below <base>/images
const (
	ImagesDirName     = "images"
	AllDirName        = "all"
	CroppedDirName    = "cropped"
	CategoriesDirName = "image-categories"
)

// Layout resolves the on-disk tree of one concept:
//
//	<base>/images/all|cropped
//	<base>/images/{train,test}/{positive,negative}
//	<base>/image-categories/{train,test}.txt
type Layout struct {
	Base string
}

// NewLayout roots a layout at <dataRoot>/<concept>
func NewLayout(dataRoot, concept string) (Layout, error) {
	if err := ValidateConceptID(concept); err != nil {
		return Layout{}, err
	}
	return Layout{Base: filepath.Join(dataRoot, concept)}, nil
}

func (l Layout) ImagesDir() string {
	return filepath.Join(l.Base, ImagesDirName)
}

func (l Layout) AllDir() string {
	return filepath.Join(l.ImagesDir(), AllDirName)
}

func (l Layout) CroppedDir() string {
	return filepath.Join(l.ImagesDir(), CroppedDirName)
}

// SourceCandidates lists positive source directories, preferred first
func (l Layout) SourceCandidates() []string {
	return []string{l.CroppedDir(), l.AllDir()}
}

func (l Layout) BucketDir(b Bucket) string {
	return filepath.Join(l.ImagesDir(), string(b.Stage), string(b.Label))
}

// BucketDirs returns the four bucket directories in Buckets order
func (l Layout) BucketDirs() []string {
	dirs := make([]string, 0, len(Buckets))
	for _, b := range Buckets {
		dirs = append(dirs, l.BucketDir(b))
	}
	return dirs
}

func (l Layout) CategoriesDir() string {
	return filepath.Join(l.Base, CategoriesDirName)
}

// ManifestPath returns <base>/image-categories/<stage>.txt
func (l Layout) ManifestPath(s Stage) string {
	return filepath.Join(l.CategoriesDir(), string(s)+".txt")
}

// ValidateConceptID checks that a concept id can name a single directory
func ValidateConceptID(concept string) error {
	switch {
	case strings.TrimSpace(concept) == "":
		return fmt.Errorf("concept id is required")
	case concept == "." || concept == "..":
		return fmt.Errorf("invalid concept id %q", concept)
	case strings.ContainsAny(concept, `/\`):
		return fmt.Errorf("concept id %q must not contain path separators", concept)
	}
	return nil
}
