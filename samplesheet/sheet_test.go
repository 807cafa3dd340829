package samplesheet

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheetFilename(t *testing.T) {
	sheet := NewSampleSheet("160318_D00547_0652_BHKNNGBCXX", 3, nil)
	assert.Equal(t, "160318_D00547_0652_BHKNNGBCXX-L3-samplesheet.csv", sheet.Filename())
}

func TestSheetRender(t *testing.T) {
	barcodes, err := ParseBarcodes(strings.NewReader(
		"TCTCGCGC-TCAGAGCC SampleA\nGGACTTGG-CGTCTGCG\n"))
	require.NoError(t, err)

	sheet := NewSampleSheet("run1", 2, barcodes)
	lines := strings.Split(strings.TrimRight(string(sheet.Render()), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "[Data]", lines[0])
	assert.Equal(t, "Lane,Sample_ID,index,index2", lines[1])
	assert.Equal(t, "2,SampleA,TCTCGCGC,TCAGAGCC", lines[2])
	assert.Equal(t, "2,GGACTTGG-CGTCTGCG,GGACTTGG,CGTCTGCG", lines[3])
}

func TestSheetRenderSingleIndex(t *testing.T) {
	barcodes, err := ParseBarcodes(strings.NewReader("ATCGG SampleA\n"))
	require.NoError(t, err)

	sheet := NewSampleSheet("run1", 1, barcodes)
	assert.Contains(t, string(sheet.Render()), "1,SampleA,ATCGG,\n")
}

func TestSheetWrite(t *testing.T) {
	barcodes, err := ParseBarcodes(strings.NewReader("ATCGG SampleA\n"))
	require.NoError(t, err)

	dir := t.TempDir()
	sheet := NewSampleSheet("run1", 1, barcodes)
	sheetPath, err := sheet.Write(dir)
	require.NoError(t, err)

	contents, err := os.ReadFile(sheetPath)
	require.NoError(t, err)
	assert.Equal(t, string(sheet.Render()), string(contents))
}
