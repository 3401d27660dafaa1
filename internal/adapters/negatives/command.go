package negatives

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"datasplit/internal/ports"
)

// Command implements ports.NegativeSource by running an external fetcher:
//
//	<path> [args...] --wnid <concept> --count <n> --dest <dir>
//
// The fetcher reports on stdout with a JSON object such as {"fetched": 42}.
type Command struct {
	path string
	args []string
}

// Ensure Command implements NegativeSource
var _ ports.NegativeSource = (*Command)(nil)

// NewCommand creates a command-backed negative source
func NewCommand(path string, args ...string) *Command {
	return &Command{path: path, args: args}
}

func (c *Command) Name() string {
	return "command:" + filepath.Base(c.path)
}

// fetchResponse represents the JSON output of a fetcher
type fetchResponse struct {
	Fetched *int   `json:"fetched"`
	Error   string `json:"error"`
}

// FetchNegatives runs the fetcher and returns the count it reports
func (c *Command) FetchNegatives(ctx context.Context, concept string, count int, destDir string) (int, error) {
	if count <= 0 {
		return 0, nil
	}

	args := append(append([]string(nil), c.args...),
		"--wnid", concept,
		"--count", strconv.Itoa(count),
		"--dest", destDir,
	)

	cmd := exec.CommandContext(ctx, c.path, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return 0, fmt.Errorf("fetcher error: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return 0, fmt.Errorf("fetcher error: %w", err)
	}

	return parseFetchResponse(string(output))
}

// parseFetchResponse extracts the JSON object from fetcher output, which may
// be surrounded by progress text
func parseFetchResponse(output string) (int, error) {
	output = strings.TrimSpace(output)

	start := strings.Index(output, "{")
	end := strings.LastIndex(output, "}")
	if start == -1 || end == -1 || end <= start {
		return 0, fmt.Errorf("no JSON object found in fetcher output")
	}

	var resp fetchResponse
	if err := json.Unmarshal([]byte(output[start:end+1]), &resp); err != nil {
		return 0, fmt.Errorf("failed to parse fetcher output: %w", err)
	}
	if resp.Error != "" {
		return 0, fmt.Errorf("fetcher reported an error: %s", resp.Error)
	}
	if resp.Fetched == nil {
		return 0, fmt.Errorf("fetcher output has no fetched count")
	}
	if *resp.Fetched < 0 {
		return 0, fmt.Errorf("fetcher reported a negative count %d", *resp.Fetched)
	}
	return *resp.Fetched, nil
}

// IsAvailable checks if the fetcher can be found
func (c *Command) IsAvailable() bool {
	_, err := exec.LookPath(c.path)
	return err == nil
}
