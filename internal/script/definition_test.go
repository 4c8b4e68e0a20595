package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"python", KindPython, false},
		{"BASH", KindBash, false},
		{"PowerShell", KindPowerShell, false},
		{"exec", KindExec, false},
		{"ruby", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParseKind(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseKind(%q)", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestDefinitionValidate(t *testing.T) {
	valid := Definition{
		ID:         "s1",
		Name:       "Script One",
		Kind:       KindBash,
		SourcePath: "/opt/s1.sh",
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Definition)
	}{
		{"missing id", func(d *Definition) { d.ID = "" }},
		{"missing name", func(d *Definition) { d.Name = "" }},
		{"bad kind", func(d *Definition) { d.Kind = "cobol" }},
		{"missing source", func(d *Definition) { d.SourcePath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			assert.Error(t, d.Validate())
		})
	}
}

func TestLoadDefinitions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scripts.json")
	data := `[
	  {"id": "a", "name": "A", "kind": "bash", "source_path": "/opt/a.sh", "auto_start": true, "enabled": true},
	  {"id": "b", "name": "B", "kind": "python", "source_path": "/opt/b.py", "arguments": "--x 1", "enabled": true}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	defs, err := LoadDefinitions(path)
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "a", defs[0].ID)
	assert.True(t, defs[0].AutoStart)
	assert.Equal(t, KindPython, defs[1].Kind)
	assert.Equal(t, "--x 1", defs[1].Arguments)
}

func TestLoadDefinitionsRejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scripts.json")
	data := `[
	  {"id": "a", "name": "A", "kind": "bash", "source_path": "/opt/a.sh", "enabled": true},
	  {"id": "a", "name": "A again", "kind": "bash", "source_path": "/opt/a2.sh", "enabled": true}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := LoadDefinitions(path)
	assert.ErrorContains(t, err, "duplicate script id")
}

func TestLoadDefinitionsRejectsInvalidEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scripts.json")
	data := `[{"id": "a", "name": "A", "kind": "cobol", "source_path": "/opt/a.sh"}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := LoadDefinitions(path)
	assert.ErrorContains(t, err, "unknown kind")
}

func TestLoadDefinitionsMissingFile(t *testing.T) {
	_, err := LoadDefinitions(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
