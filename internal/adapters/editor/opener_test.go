package editor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOpener(env map[string]string, installed ...string) *Opener {
	return &Opener{
		getenv: func(k string) string { return env[k] },
		lookPath: func(name string) (string, error) {
			for _, n := range installed {
				if n == name {
					return "/usr/bin/" + name, nil
				}
			}
			return "", errors.New("not found")
		},
	}
}

func TestCommand_LineArguments(t *testing.T) {
	tests := []struct {
		name   string
		editor string
		line   int
		want   []string
	}{
		{"vim jumps with plus", "vim", 101, []string{"vim", "+101", "/data/train.txt"}},
		{"nvim absolute path", "/usr/local/bin/nvim", 7, []string{"/usr/local/bin/nvim", "+7", "/data/train.txt"}},
		{"code uses goto", "code --wait", 12, []string{"code", "--wait", "--goto", "/data/train.txt:12"}},
		{"unknown editor gets path only", "ed", 5, []string{"ed", "/data/train.txt"}},
		{"no line", "vim", 0, []string{"vim", "/data/train.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := testOpener(map[string]string{"EDITOR": tt.editor})

			cmd, err := o.Command("/data/train.txt", tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd.Args)
		})
	}
}

func TestFindEditor(t *testing.T) {
	assert.Equal(t, "nano", testOpener(map[string]string{"VISUAL": "nano"}).findEditor())
	assert.Equal(t, "vim", testOpener(map[string]string{"EDITOR": "vim", "VISUAL": "nano"}).findEditor())
	assert.Equal(t, "/usr/bin/vi", testOpener(nil, "vi", "nano").findEditor())
	assert.Empty(t, testOpener(nil).findEditor())
}

func TestCommand_NoEditor(t *testing.T) {
	_, err := testOpener(nil).Command("/data/train.txt", 1)
	assert.Error(t, err)
}
