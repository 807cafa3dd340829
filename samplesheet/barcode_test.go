package samplesheet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBarcodesSingle(t *testing.T) {
	barcodes, err := ParseBarcodes(strings.NewReader("ATCGG\tSampleA\ngctca\n"))
	require.NoError(t, err)
	require.Len(t, barcodes, 2)

	assert.Equal(t, "ATCGG", barcodes[0].Seq)
	assert.Equal(t, "ATCGG", barcodes[0].I7)
	assert.Equal(t, "", barcodes[0].I5)
	assert.Equal(t, "SampleA", barcodes[0].SampleId)
	assert.False(t, barcodes[0].IsDual())

	// Lowercase input is uppercased; missing name defaults to the barcode.
	assert.Equal(t, "GCTCA", barcodes[1].Seq)
	assert.Equal(t, "GCTCA", barcodes[1].SampleId)
}

func TestParseBarcodesDual(t *testing.T) {
	barcodes, err := ParseBarcodes(strings.NewReader("TCTCGCGC-TCAGAGCC SampleB\n"))
	require.NoError(t, err)
	require.Len(t, barcodes, 1)

	assert.Equal(t, "TCTCGCGC", barcodes[0].I7)
	assert.Equal(t, "TCAGAGCC", barcodes[0].I5)
	assert.True(t, barcodes[0].IsDual())
}

func TestParseBarcodesSkipsBlankLines(t *testing.T) {
	barcodes, err := ParseBarcodes(strings.NewReader("ATCGG\n\n\nGCTCA\n"))
	require.NoError(t, err)
	assert.Len(t, barcodes, 2)
}

func TestParseBarcodesTooManyIndexes(t *testing.T) {
	_, err := ParseBarcodes(strings.NewReader("AAA-CCC-GGG\n"))
	assert.Error(t, err)
}

func TestParseBarcodesDuplicate(t *testing.T) {
	_, err := ParseBarcodes(strings.NewReader("ATCGG\natcgg\n"))
	assert.Error(t, err)
}

func TestIndexLengths(t *testing.T) {
	barcodes, err := ParseBarcodes(strings.NewReader("TCTCGCGC-TCAGAGCC\nAAGTCCAA-TACTCATA\n"))
	require.NoError(t, err)

	i7len, i5len, err := IndexLengths(barcodes)
	require.NoError(t, err)
	assert.Equal(t, 8, i7len)
	assert.Equal(t, 8, i5len)
}

func TestIndexLengthsEmpty(t *testing.T) {
	i7len, i5len, err := IndexLengths(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, i7len)
	assert.Equal(t, 0, i5len)
}

func TestIndexLengthsInconsistent(t *testing.T) {
	barcodes, err := ParseBarcodes(strings.NewReader("TCTCGCGC-TCAGAGCC\nAAGTC\n"))
	require.NoError(t, err)

	_, _, err = IndexLengths(barcodes)
	assert.Error(t, err)
}
