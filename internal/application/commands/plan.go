package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"datasplit/internal/application"
	"datasplit/internal/domain"
	"datasplit/internal/ports"
)

// PlanResult contains the allocation a split would perform
type PlanResult struct {
	Concept string
	Layout  domain.Layout
	Plan    domain.Plan
	Message string
}

// SplitRequest names what to split and how
type SplitRequest struct {
	Concept  string
	DataRoot string
	Ratios   domain.SplitRatios
}

// Validate checks the concept, data root and ratios
func (r SplitRequest) Validate() error {
	if err := application.ValidateConcept("wnid", r.Concept); err != nil {
		return err
	}
	if err := application.ValidateRequired("dataRoot", r.DataRoot); err != nil {
		return err
	}
	return application.ValidateSplitRatios(r.Ratios)
}

// PlanCommand computes counts and the allocation plan without touching disk
type PlanCommand struct {
	repo ports.DatasetRepository
	SplitRequest
}

// NewPlanCommand creates a new PlanCommand
func NewPlanCommand(repo ports.DatasetRepository, req SplitRequest) *PlanCommand {
	return &PlanCommand{
		repo:         repo,
		SplitRequest: req,
	}
}

// Execute resolves the positive source, snapshots it and builds the plan
func (c *PlanCommand) Execute(ctx context.Context) (*PlanResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	layout, err := resolveLayout(c.DataRoot, c.Concept)
	if err != nil {
		return nil, err
	}

	plan, err := buildPlan(c.repo, layout, c.Ratios)
	if err != nil {
		return nil, err
	}

	return &PlanResult{
		Concept: c.Concept,
		Layout:  layout,
		Plan:    plan,
		Message: fmt.Sprintf("Plan for %s from %s: %s", c.Concept, plan.SourceDir, plan.Counts),
	}, nil
}

// resolveLayout roots the concept layout at an absolute data root so
// manifest entries carry absolute paths
func resolveLayout(dataRoot, concept string) (domain.Layout, error) {
	abs, err := filepath.Abs(dataRoot)
	if err != nil {
		return domain.Layout{}, fmt.Errorf("failed to resolve data root: %w", err)
	}
	return domain.NewLayout(abs, concept)
}

// resolveSource picks images/cropped when it exists, else images/all
func resolveSource(repo ports.DatasetRepository, layout domain.Layout) (string, error) {
	candidates := layout.SourceCandidates()
	for _, dir := range candidates {
		ok, err := repo.DirExists(dir)
		if err != nil {
			return "", err
		}
		if ok {
			return dir, nil
		}
	}
	return "", &application.AmbiguousSourceError{Candidates: candidates}
}

// buildPlan takes the single snapshot of the source that every later
// allocation step works from. Every non-hidden file in the source is a
// positive, whatever its extension.
func buildPlan(repo ports.DatasetRepository, layout domain.Layout, ratios domain.SplitRatios) (domain.Plan, error) {
	source, err := resolveSource(repo, layout)
	if err != nil {
		return domain.Plan{}, err
	}

	files, err := repo.ListFiles(source)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("failed to list positive images: %w", err)
	}
	if len(files) == 0 {
		return domain.Plan{}, &application.MissingPositiveDataError{Dir: source}
	}

	snapshot := make([]string, 0, len(files))
	for _, path := range files {
		if err := domain.CheckManifestPath(path); err != nil {
			return domain.Plan{}, &application.InvalidImageNameError{Path: path}
		}
		snapshot = append(snapshot, filepath.Base(path))
	}

	counts, err := domain.Allocate(len(snapshot), ratios)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("failed to allocate counts: %w", err)
	}

	return domain.BuildPlan(layout, source, snapshot, counts)
}
