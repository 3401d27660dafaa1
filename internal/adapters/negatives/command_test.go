package negatives

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFetchResponse(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    int
		wantErr bool
	}{
		{
			name:   "plain object",
			output: `{"fetched": 42}`,
			want:   42,
		},
		{
			name:   "progress text around object",
			output: "downloading...\n{\"fetched\": 7}\ndone\n",
			want:   7,
		},
		{
			name:   "zero fetched",
			output: `{"fetched": 0}`,
			want:   0,
		},
		{
			name:    "fetcher error",
			output:  `{"fetched": 0, "error": "quota exceeded"}`,
			wantErr: true,
		},
		{
			name:    "missing count",
			output:  `{"ok": true}`,
			wantErr: true,
		},
		{
			name:    "negative count",
			output:  `{"fetched": -1}`,
			wantErr: true,
		},
		{
			name:    "no JSON",
			output:  "fetched 3 images",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFetchResponse(tt.output)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommand_FetchNegatives(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "fetch.sh")
	body := `#!/bin/sh
while [ $# -gt 0 ]; do
  case "$1" in
    --wnid) wnid="$2"; shift ;;
    --count) count="$2"; shift ;;
    --dest) dest="$2"; shift ;;
  esac
  shift
done
echo "fetching $count for $wnid" >&2
touch "$dest/a.jpg" "$dest/b.jpg"
echo '{"fetched": 2}'
`
	require.NoError(t, os.WriteFile(script, []byte(body), 0755))
	dest := filepath.Join(dir, "negative")
	require.NoError(t, os.Mkdir(dest, 0755))

	src := NewCommand(script)
	assert.Equal(t, "command:fetch.sh", src.Name())
	assert.True(t, src.IsAvailable())

	fetched, err := src.FetchNegatives(context.Background(), "n07840804", 5, dest)
	require.NoError(t, err)
	assert.Equal(t, 2, fetched)
	assert.FileExists(t, filepath.Join(dest, "a.jpg"))
}

func TestCommand_FailureIncludesStderr(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	script := filepath.Join(t.TempDir(), "fail.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho 'index unreachable' >&2\nexit 3\n"), 0755))

	_, err := NewCommand(script).FetchNegatives(context.Background(), "n07840804", 1, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index unreachable")
}
