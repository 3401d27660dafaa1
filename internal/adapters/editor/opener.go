package editor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Opener implements ports.ManifestReviewer with the user's editor
type Opener struct {
	getenv   func(string) string
	lookPath func(string) (string, error)
}

func NewOpener() *Opener {
	return &Opener{getenv: os.Getenv, lookPath: exec.LookPath}
}

// OpenManifest opens a manifest with the cursor on line (1-based)
func (o *Opener) OpenManifest(path string, line int) error {
	cmd, err := o.Command(path, line)
	if err != nil {
		return err
	}
	return cmd.Run()
}

// Command returns the editor process for a manifest line.
// Used directly by bubbletea's ExecProcess.
func (o *Opener) Command(path string, line int) (*exec.Cmd, error) {
	editor := o.findEditor()
	if editor == "" {
		return nil, fmt.Errorf("no editor found: set $EDITOR environment variable")
	}

	fields := strings.Fields(editor)
	args := append(fields[1:], lineArgs(fields[0], path, line)...)

	cmd := exec.Command(fields[0], args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd, nil
}

// lineArgs builds the jump-to-line arguments understood by the editor
func lineArgs(editor, path string, line int) []string {
	if line < 1 {
		return []string{path}
	}
	switch filepath.Base(editor) {
	case "code", "codium":
		return []string{"--goto", path + ":" + strconv.Itoa(line)}
	case "vi", "vim", "nvim", "nano", "emacs", "micro", "kak", "hx":
		return []string{"+" + strconv.Itoa(line), path}
	default:
		return []string{path}
	}
}

func (o *Opener) findEditor() string {
	if editor := o.getenv("EDITOR"); editor != "" {
		return editor
	}
	if visual := o.getenv("VISUAL"); visual != "" {
		return visual
	}

	for _, editor := range []string{"nvim", "vim", "vi", "nano", "code"} {
		if path, err := o.lookPath(editor); err == nil {
			return path
		}
	}
	return ""
}
