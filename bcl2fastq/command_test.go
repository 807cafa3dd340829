package bcl2fastq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgv(t *testing.T) {
	argv := Argv(map[string]string{
		"use_bases_mask":     "y98,I8,I8,y98",
		"barcode_mismatches": "1",
	}, []string{"ignore_missing_bcls", "with_failed_reads"})

	assert.Equal(t, []string{
		"--barcode-mismatches", "1",
		"--use-bases-mask", "y98,I8,I8,y98",
		"--ignore-missing-bcls",
		"--with-failed-reads",
	}, argv)
}

func TestArgvEmpty(t *testing.T) {
	assert.Empty(t, Argv(nil, nil))
}
