package bcl2fastq

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConverterDefaultExecutable(t *testing.T) {
	conv := NewConverter("")
	assert.Equal(t, DEFAULT_EXECUTABLE, conv.Executable)
}

func TestConverterRunRecordsCommand(t *testing.T) {
	conv := NewConverter("true")
	err := conv.Run(context.Background(), map[string]string{"output_dir": "out"}, nil)
	require.NoError(t, err)

	require.Len(t, conv.ToolsUsed.Commands, 1)
	assert.Contains(t, conv.ToolsUsed.Commands[0], "--output-dir out")
}

func TestConverterRunFailure(t *testing.T) {
	conv := NewConverter("false")
	err := conv.Run(context.Background(), nil, nil)
	assert.Error(t, err)

	// The failed command is still recorded for provenance.
	assert.Len(t, conv.ToolsUsed.Commands, 1)
}

func TestToolsUsedWriteFile(t *testing.T) {
	manifest := &ToolsUsed{
		Name:     "Bcl to Fastq Conversion and Demultiplexing",
		Version:  "bcl2fastq v2.20.0.422",
		Commands: []string{"bcl2fastq --output-dir out"},
	}
	path := filepath.Join(t.TempDir(), "tools_used.json")
	require.NoError(t, manifest.WriteFile(path))

	bytes, err := os.ReadFile(path)
	require.NoError(t, err)
	parsed := &ToolsUsed{}
	require.NoError(t, json.Unmarshal(bytes, parsed))
	assert.Equal(t, manifest, parsed)
}
