package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		wantErr  string
		warnings []string
	}{
		{
			name: "valid",
			yaml: `
widgets:
  - name: main
    kind: text
    streams: [main]
  - name: health
    kind: progress
    progress_id: health
`,
		},
		{
			name: "unknown field",
			yaml: `
widgets:
  - name: main
    kind: text
    colour: red
`,
			wantErr: "strict YAML",
		},
		{
			name:    "empty",
			yaml:    "",
			wantErr: "layout is empty",
		},
		{
			name: "bad kind",
			yaml: `
widgets:
  - name: main
    kind: hologram
`,
			wantErr: "validation errors",
		},
		{
			name: "shared stream",
			yaml: `
widgets:
  - name: main
    kind: text
    streams: [main, thoughts]
  - name: comms
    kind: tabbed
    tabs:
      - name: Thoughts
        streams: [thoughts]
`,
			warnings: []string{`stream "thoughts" is bound to widget "main" and tab "Thoughts" of "comms"`},
		},
		{
			name: "no main",
			yaml: `
widgets:
  - name: log
    kind: text
    streams: [logons]
  - name: rt
    kind: countdown
`,
			warnings: []string{`no text widget named "main"`, `countdown widget "rt" has no countdown_id`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			v := &LayoutValidator{out: &out}
			err := v.validate([]byte(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, w := range tt.warnings {
				assert.Contains(t, out.String(), w)
			}
			if len(tt.warnings) == 0 {
				assert.Empty(t, v.warnings)
			}
		})
	}
}

func TestValidateFile_Extension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	v := &LayoutValidator{out: &bytes.Buffer{}}
	err := v.validateFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extension")
}

func TestValidateFile_Missing(t *testing.T) {
	v := &LayoutValidator{out: &bytes.Buffer{}}
	assert.Error(t, v.validateFile(filepath.Join(t.TempDir(), "missing.yaml")))
}
