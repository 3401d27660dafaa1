package mcp

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"datasplit/internal/application/commands"
	"datasplit/internal/domain"
	"datasplit/internal/ports"
)

// Splitter runs plans and splits for tool calls. The data root and the
// negative source are fixed by the server; calls may override the concept
// and the ratios.
type Splitter struct {
	repo      ports.DatasetRepository
	negatives ports.NegativeSource
	journal   ports.Journal
	defaults  commands.SplitRequest
	opts      []commands.SplitOption

	// one split at a time per server
	mu sync.Mutex
}

func NewSplitter(repo ports.DatasetRepository, negatives ports.NegativeSource, journal ports.Journal, defaults commands.SplitRequest, opts ...commands.SplitOption) *Splitter {
	return &Splitter{
		repo:      repo,
		negatives: negatives,
		journal:   journal,
		defaults:  defaults,
		opts:      opts,
	}
}

// RegisterTools adds the dataset tools to the MCP server.
func RegisterTools(s *server.MCPServer, sp *Splitter) {
	s.AddTool(planTool(), planHandler(sp))
	s.AddTool(splitTool(), splitHandler(sp))
}

func splitArgs(description string) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("wnid",
			mcp.Description("WordNet concept ID of the positive class (e.g. n07840804). Defaults to the configured concept."),
		),
		mcp.WithString("train_to_test_ratio",
			mcp.Description("Positives kept for training per positive held out for testing (e.g. 20 or 9/2)."),
		),
		mcp.WithString("negative_to_positive_train_ratio",
			mcp.Description("Negatives per positive in the train stage."),
		),
		mcp.WithString("negative_to_positive_test_ratio",
			mcp.Description("Negatives per positive in the test stage."),
		),
	}
}

func (sp *Splitter) request(req mcp.CallToolRequest) (commands.SplitRequest, error) {
	r := sp.defaults
	r.Concept = req.GetString("wnid", r.Concept)

	for name, ratio := range map[string]*domain.Ratio{
		"train_to_test_ratio":              &r.Ratios.TrainToTest,
		"negative_to_positive_train_ratio": &r.Ratios.NegativeToPositiveTrain,
		"negative_to_positive_test_ratio":  &r.Ratios.NegativeToPositiveTest,
	} {
		s := req.GetString(name, "")
		if s == "" {
			continue
		}
		parsed, err := domain.ParseRatio(s)
		if err != nil {
			return r, fmt.Errorf("%s: %w", name, err)
		}
		*ratio = parsed
	}
	return r, nil
}

// --- plan_split ---

func planTool() mcp.Tool {
	return mcp.NewTool("plan_split",
		splitArgs("Compute the bucket counts and source folder of a split without moving or writing anything.")...,
	)
}

func planHandler(sp *Splitter) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		r, err := sp.request(req)
		if err != nil {
			return toolError(err)
		}

		result, err := commands.NewPlanCommand(sp.repo, r).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		sb.WriteString(result.Message)
		sb.WriteString("\n")
		sb.WriteString(formatCounts(result.Plan.Counts))
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- split_dataset ---

func splitTool() mcp.Tool {
	return mcp.NewTool("split_dataset",
		splitArgs("Split a concept's positive images into train/test buckets, fetch negatives and write train.txt and test.txt. Interrupted runs resume.")...,
	)
}

func splitHandler(sp *Splitter) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		r, err := sp.request(req)
		if err != nil {
			return toolError(err)
		}

		sp.mu.Lock()
		defer sp.mu.Unlock()

		result, err := commands.NewSplitCommand(sp.repo, sp.negatives, sp.journal, r, sp.opts...).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "run %s\n", result.RunID)
		sb.WriteString(result.Message)
		sb.WriteString("\n")
		sb.WriteString(formatCounts(result.Counts))
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatCounts(c domain.Counts) string {
	var sb strings.Builder
	for _, b := range domain.Buckets {
		fmt.Fprintf(&sb, "%-15s %d\n", b, c.Quota(b))
	}
	return sb.String()
}
