package runinfo

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestFilePath(relPath string) string {
	absRoot, err := filepath.Abs("testdata")
	if err != nil {
		return ""
	}
	return filepath.Join(absRoot, relPath)
}

func TestParseRunInfo(t *testing.T) {
	ri, err := Parse(getTestFilePath("RunInfo.xml"))
	require.NoError(t, err)

	assert.Equal(t, "HKNNGBCXX", ri.FlowcellID())
	assert.Equal(t, "D00547", ri.Run.Instrument)
	assert.Equal(t, 652, ri.Run.Number)
	assert.Equal(t, 2, ri.Run.FlowcellLayout.LaneCount)
	assert.Equal(t, 98+8+8+98, ri.NumCycles())

	reads := ri.ReadList()
	require.Len(t, reads, 4)
	assert.False(t, reads[0].IsIndexed())
	assert.True(t, reads[1].IsIndexed())
	assert.True(t, reads[2].IsIndexed())
	assert.False(t, reads[3].IsIndexed())

	assert.Len(t, ri.IndexReads(), 2)
}

func TestParseRunInfoMissing(t *testing.T) {
	_, err := Parse(getTestFilePath("nonexistent.xml"))
	assert.Error(t, err)
}

func TestTruncateFlowcellID(t *testing.T) {
	assert.Equal(t, "HFNKG", TruncateFlowcellID("HFNKGBBXX"))
	assert.Equal(t, "AMG8G", TruncateFlowcellID("000000000-AMG8G"))
	assert.Equal(t, "AN5A6", TruncateFlowcellID("AN5A6"))
}
