package runinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRunFolderHiSeq(t *testing.T) {
	folder, err := ParseRunFolder("/mnt/fleet/hiseq002a/160318_D00547_0652_BHKNNGBCXX")
	require.NoError(t, err)
	assert.Equal(t, "2016-03-18", folder.Fdate)
	assert.Equal(t, "D00547", folder.InstrId)
	assert.Equal(t, 652, folder.Num)
	assert.Equal(t, "HKNNGBCXX", folder.Fcid)
}

func TestParseRunFolderMiSeq(t *testing.T) {
	folder, err := ParseRunFolder("/mnt/fleet/miseq001a/160316_M00308_0356_000000000-AN5A6")
	require.NoError(t, err)
	assert.Equal(t, "2016-03-16", folder.Fdate)
	assert.Equal(t, "M00308", folder.InstrId)
	assert.Equal(t, 356, folder.Num)
	assert.Equal(t, "AN5A6", folder.Fcid)
}

func TestParseRunFolderBad(t *testing.T) {
	_, err := ParseRunFolder("/mnt/fleet/iontorrent/hypothetical")
	assert.Error(t, err)
}

func TestPlatform(t *testing.T) {
	assert.Equal(t, SEQ_HISEQ_2500, Platform("/mnt/fleet/hiseq002a/160318_D00547_0652_BHKNNGBCXX"))
	assert.Equal(t, SEQ_HISEQ_4000, Platform("/mnt/fleet/4kseq001a/160318_ST-K00126_0164_AH77VLBBXX"))
	assert.Equal(t, SEQ_NEXTSEQ, Platform("/mnt/fleet/nxseq001a/160318_NB500915_0167_AHYMTVBGXX"))
	assert.Equal(t, SEQ_MISEQ, Platform("/mnt/fleet/miseq001a/160316_M00308_0356_000000000-AN5A6"))
	assert.Equal(t, SEQ_XTEN, Platform("/mnt/fleet/xtseqEXTa/160131_ST-E00314_0132_BHLCJTCCXX"))
	assert.Equal(t, SEQ_UNKNOWN, Platform("/mnt/fleet/iontorrent/hypothetical"))
}
