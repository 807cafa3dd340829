package bcl2fastq

import (
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFastqNameDualBarcode(t *testing.T) {
	info, err := ParseFastqName("output/TCTCGCGC_TCAGAGCC_S47_L001_R2_001.fastq.gz")
	require.NoError(t, err)
	assert.Equal(t, "TCTCGCGC-TCAGAGCC", info.Barcode)
	assert.Equal(t, 2, info.ReadIndex)
}

func TestParseFastqNameSingleBarcode(t *testing.T) {
	info, err := ParseFastqName("TCAGAGCC_S47_L001_R2_001.fastq.gz")
	require.NoError(t, err)
	assert.Equal(t, "TCAGAGCC", info.Barcode)
	assert.Equal(t, 2, info.ReadIndex)
}

func TestParseFastqNameUndetermined(t *testing.T) {
	info, err := ParseFastqName("Undetermined_S1_L001_R1_001.fastq.gz")
	require.NoError(t, err)
	assert.Equal(t, "Undetermined", info.Barcode)
	assert.Equal(t, 1, info.ReadIndex)
}

func TestParseFastqNameBad(t *testing.T) {
	_, err := ParseFastqName("weird.fastq.gz")
	assert.Error(t, err)

	_, err = ParseFastqName("a_b_c_d_e_f_g.fastq.gz")
	assert.Error(t, err)
}

func TestFormatLibraryName(t *testing.T) {
	assert.Equal(t, "My-Library", FormatLibraryName("My Library rcvd 2016-03-18"))
	assert.Equal(t, "lib-01", FormatLibraryName("lib_01"))
	assert.Equal(t, "plain", FormatLibraryName("plain"))
}

func TestScgpmFastqName(t *testing.T) {
	info := &FastqInfo{Barcode: "TCAGAGCC", ReadIndex: 1}
	assert.Equal(t, "SCGPM_lib1_HKNNG_L3_TCAGAGCC_R1.fastq.gz",
		ScgpmFastqName("lib1", "HKNNG", 3, info))
}

func TestFindFastqs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Project1"), 0755))
	for _, name := range []string{
		"Project1/A_S1_L001_R1_001.fastq.gz",
		"Undetermined_S0_L001_R1_001.fastq.gz",
		"notafastq.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	fastqs, err := FindFastqs(dir)
	require.NoError(t, err)
	assert.Len(t, fastqs, 2)
}

func TestLaneHTML(t *testing.T) {
	assert.Equal(t, path.Join("output", "Reports", "html", "HKNNGBCXX",
		"all", "all", "all", "lane.html"), LaneHTMLPath("output", "HKNNGBCXX"))
	assert.Equal(t, "run1_L2.lane.html", LaneHTMLName("run1", 2))
}
